// Package registration validates raffle registrations and writes them to
// the participant registry.
//
// Caller identity and the attached payment are explicit arguments, never
// read from ambient state, so the rules can be exercised without any
// hosting platform.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/aanand-mishra/raffle-registry/internal/logger"
	"github.com/aanand-mishra/raffle-registry/internal/metrics"
	"github.com/aanand-mishra/raffle-registry/internal/storage"
	"github.com/aanand-mishra/raffle-registry/internal/types"
)

// Service owns no records itself; every call goes straight to the registry.
// Logs go to the request-scoped logger in ctx when there is one, otherwise
// to the logger set with WithLogger.
type Service struct {
	registry storage.Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used when ctx carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables registration and lookup counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New returns a Service writing to registry. It logs to slog.Default
// unless WithLogger is given.
func New(registry storage.Registry, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores p under account once every rule passes. A
// *ValidationError means nothing was written. A later successful call for
// the same account replaces the record entirely.
func (s *Service) Register(ctx context.Context, account string, payment *big.Int, p types.Participant) error {
	if err := check(p, payment); err != nil {
		if errors.Is(err, ErrValidation) {
			s.metrics.ObserveRegistration(metrics.OutcomeRejected)
		} else {
			s.metrics.ObserveRegistration(metrics.OutcomeFailed)
		}
		return err
	}

	if err := s.registry.Upsert(ctx, account, p); err != nil {
		s.metrics.ObserveRegistration(metrics.OutcomeFailed)
		return fmt.Errorf("register %s: %w", account, err)
	}

	s.metrics.ObserveRegistration(metrics.OutcomeCreated)
	logger.FromContext(ctx, s.logger).InfoContext(ctx, "registration created",
		slog.String("account", account),
		slog.Uint64("ticket_number", uint64(p.TicketNumber)),
	)
	return nil
}

// GetOne returns the record stored under account. found is false when the
// account never registered.
func (s *Service) GetOne(ctx context.Context, account string) (p types.Participant, found bool, err error) {
	s.metrics.ObserveLookup("one")

	p, err = s.registry.Get(ctx, account)
	if errors.Is(err, storage.ErrNotFound) {
		return types.Participant{}, false, nil
	}
	if err != nil {
		return types.Participant{}, false, fmt.Errorf("get %s: %w", account, err)
	}
	return p, true, nil
}

// GetAll returns every stored record.
func (s *Service) GetAll(ctx context.Context) ([]types.Participant, error) {
	s.metrics.ObserveLookup("all")

	participants, err := s.registry.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}
