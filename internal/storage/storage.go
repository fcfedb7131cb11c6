// Package storage defines the Registry interface — the contract any
// persistence backend must satisfy to hold participant records.
//
// The registration service depends only on this interface, so the same
// service runs against the in-memory store in tests and against SQLite,
// PostgreSQL or Redis in deployments. Picking a backend is a config change.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/raffle-registry/internal/types"
)

// ErrNotFound is returned by Get when no record is stored under the key.
var ErrNotFound = errors.New("participant not found")

// Registry is a durable mapping from account identifier to exactly one
// participant record. There is no delete: records are only ever inserted
// or fully replaced.
type Registry interface {
	// Get returns the record stored under account, or ErrNotFound.
	Get(ctx context.Context, account string) (types.Participant, error)

	// Values returns a snapshot of every stored record, in the order the
	// accounts first registered. Returns an empty slice (not nil) when the
	// registry is empty.
	Values(ctx context.Context) ([]types.Participant, error)

	// Upsert inserts the record if account is new, or replaces the stored
	// record entirely if it exists. Last write wins.
	Upsert(ctx context.Context, account string, p types.Participant) error
}
