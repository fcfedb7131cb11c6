// Package participant contains the HTTP handlers for the raffle registry.
//
// Handlers are factories: each receives the registration service once at
// startup and returns the http.HandlerFunc the router calls per request.
//
//	router.HandleFunc("POST /api/participants", participant.Register(svc))
//
// The caller's account and attached payment arrive as request headers
// (HeaderAccount, HeaderPayment) and are passed to the service explicitly.
package participant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/aanand-mishra/raffle-registry/internal/http/middleware"
	"github.com/aanand-mishra/raffle-registry/internal/registration"
	"github.com/aanand-mishra/raffle-registry/internal/types"
	"github.com/aanand-mishra/raffle-registry/internal/utils/response"
)

const (
	// HeaderAccount identifies the calling account. Records are keyed by it.
	HeaderAccount = "X-Account-ID"

	// HeaderPayment is the attached payment as a base-10 integer in the
	// smallest denomination. A missing header means no payment.
	HeaderPayment = "X-Attached-Payment"
)

// Service is the subset of *registration.Service the handlers need.
type Service interface {
	Register(ctx context.Context, account string, payment *big.Int, p types.Participant) error
	GetOne(ctx context.Context, account string) (types.Participant, bool, error)
	GetAll(ctx context.Context) ([]types.Participant, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Register handles POST /api/participants
//
// Request body (JSON):
//
//	{ "firstName": "Ana", "lastName": "Lopez", "nationalId": 14000001,
//	  "email": "a@b.com", "ticketNumber": 11 }
//
// Success response (201 Created):
//
//	{ "status": "ok" }
//
// Error responses:
//
//	400 Bad Request  — missing account, bad payment header, empty or
//	                   malformed body, or a broken registration rule
//	500 Internal     — storage error
//
// ─────────────────────────────────────────────────────────────────────────────
func Register(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context())

		account := r.Header.Get(HeaderAccount)
		if account == "" {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("missing "+HeaderAccount+" header")))
			return
		}
		log = log.With(slog.String("account", account))
		log.Info("registering a participant")

		payment, err := parsePayment(r.Header.Get(HeaderPayment))
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		var p types.Participant
		err = json.NewDecoder(r.Body).Decode(&p)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("request body is empty")))
			return
		}
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := svc.Register(r.Context(), account, payment, p); err != nil {
			var verr *registration.ValidationError
			if errors.As(err, &verr) {
				log.Info("registration rejected",
					slog.String("field", verr.Field),
					slog.String("reason", verr.Reason))
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verr))
				return
			}
			log.Error("error registering participant", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusCreated, response.Response{Status: response.StatusOK})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByAccount handles GET /api/participants/{account}
//
// Success response (200 OK): the stored record.
// 404 Not Found when the account never registered.
// ─────────────────────────────────────────────────────────────────────────────
func GetByAccount(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := r.PathValue("account")
		log := middleware.Logger(r.Context()).With(slog.String("account", account))
		log.Info("getting a participant")

		p, found, err := svc.GetOne(r.Context(), account)
		if err != nil {
			log.Error("error getting participant", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if !found {
			response.WriteJSON(w, http.StatusNotFound,
				response.GeneralError(errors.New("participant not found")))
			return
		}

		response.WriteJSON(w, http.StatusOK, p)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/participants
// Returns every registered record; [] (not null) when there are none.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := middleware.Logger(r.Context())
		log.Info("getting all participants")

		participants, err := svc.GetAll(r.Context())
		if err != nil {
			log.Error("error getting participants", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, participants)
	}
}

func parsePayment(raw string) (*big.Int, error) {
	if raw == "" {
		return new(big.Int), nil
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, errors.New("invalid " + HeaderPayment + " header: must be a non-negative integer")
	}
	return amount, nil
}
