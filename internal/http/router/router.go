// Package router wires the HTTP routes of the registry.
package router

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/raffle-registry/internal/http/handlers/participant"
	"github.com/aanand-mishra/raffle-registry/internal/http/middleware"
	"github.com/aanand-mishra/raffle-registry/internal/utils/response"
)

// New returns the full handler tree.
//
// Route table:
//
//	POST /api/participants            → register the caller's participant record
//	GET  /api/participants            → list all participants
//	GET  /api/participants/{account}  → get one participant by account
//	GET  /metrics                     → Prometheus metrics from gatherer
//	GET  /healthz                     → liveness
func New(svc participant.Service, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/participants", participant.Register(svc))
	mux.HandleFunc("GET /api/participants", participant.GetList(svc))
	mux.HandleFunc("GET /api/participants/{account}", participant.GetByAccount(svc))

	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
	})

	return middleware.RequestID(logger)(mux)
}
