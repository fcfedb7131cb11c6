// Package storagetest holds the behaviour every storage.Registry backend
// must share. Backend tests call Run with a constructor for a fresh,
// empty registry.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/raffle-registry/internal/storage"
	"github.com/aanand-mishra/raffle-registry/internal/types"
)

var (
	Ana = types.Participant{FirstName: "Ana", LastName: "Lopez", NationalID: 14000001, Email: "a@b.com", TicketNumber: 11}
	Bob = types.Participant{FirstName: "Bob", LastName: "Smith", NationalID: 4294967295, Email: "bob@x.io", TicketNumber: 4294967295}
	Cho = types.Participant{FirstName: "Cho", LastName: "Park", NationalID: 8, Email: "cho@x.io", TicketNumber: 5}
)

// Run exercises the Registry contract against registries built by newRegistry.
func Run(t *testing.T, newRegistry func(t *testing.T) storage.Registry) {
	t.Helper()
	ctx := context.Background()

	t.Run("get on empty registry returns ErrNotFound", func(t *testing.T) {
		r := newRegistry(t)
		_, err := r.Get(ctx, "ana")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("values on empty registry is an empty slice", func(t *testing.T) {
		r := newRegistry(t)
		all, err := r.Values(ctx)
		require.NoError(t, err)
		require.NotNil(t, all)
		require.Empty(t, all)
	})

	t.Run("upsert then get round-trips every field", func(t *testing.T) {
		r := newRegistry(t)
		require.NoError(t, r.Upsert(ctx, "ana", Ana))
		require.NoError(t, r.Upsert(ctx, "bob", Bob))

		got, err := r.Get(ctx, "ana")
		require.NoError(t, err)
		require.Equal(t, Ana, got)

		got, err = r.Get(ctx, "bob")
		require.NoError(t, err)
		require.Equal(t, Bob, got)
	})

	t.Run("upsert replaces the record for an existing key", func(t *testing.T) {
		r := newRegistry(t)
		require.NoError(t, r.Upsert(ctx, "ana", Ana))
		require.NoError(t, r.Upsert(ctx, "ana", Cho))

		got, err := r.Get(ctx, "ana")
		require.NoError(t, err)
		require.Equal(t, Cho, got)

		all, err := r.Values(ctx)
		require.NoError(t, err)
		require.Equal(t, []types.Participant{Cho}, all)
	})

	t.Run("values keeps first-registration order across overwrites", func(t *testing.T) {
		r := newRegistry(t)
		require.NoError(t, r.Upsert(ctx, "ana", Ana))
		require.NoError(t, r.Upsert(ctx, "bob", Bob))
		require.NoError(t, r.Upsert(ctx, "cho", Cho))

		updated := Ana
		updated.TicketNumber = 99
		require.NoError(t, r.Upsert(ctx, "ana", updated))

		all, err := r.Values(ctx)
		require.NoError(t, err)
		require.Equal(t, []types.Participant{updated, Bob, Cho}, all)
	})
}
