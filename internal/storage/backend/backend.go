// Package backend opens the storage.Registry selected by configuration.
package backend

import (
	"context"
	"fmt"
	"io"

	"github.com/aanand-mishra/raffle-registry/internal/config"
	"github.com/aanand-mishra/raffle-registry/internal/storage"
	"github.com/aanand-mishra/raffle-registry/internal/storage/memory"
	"github.com/aanand-mishra/raffle-registry/internal/storage/postgres"
	"github.com/aanand-mishra/raffle-registry/internal/storage/redis"
	"github.com/aanand-mishra/raffle-registry/internal/storage/sqlite"
)

// Registry is what every driver returns: the registry contract plus a way
// to release its connections on shutdown.
type Registry interface {
	storage.Registry
	io.Closer
}

// Open returns the registry for cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (Registry, error) {
	var (
		reg Registry
		err error
	)
	switch cfg.Driver {
	case config.DriverMemory:
		reg = memory.New()
	case config.DriverSQLite:
		reg, err = openSQLite(cfg)
	case config.DriverPostgres:
		reg, err = openPostgres(ctx, cfg)
	case config.DriverRedis:
		reg, err = openRedis(ctx, cfg)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Each helper returns a nil Registry on error, never a typed nil pointer.

func openSQLite(cfg config.Storage) (Registry, error) {
	s, err := sqlite.New(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, cfg config.Storage) (Registry, error) {
	p, err := postgres.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func openRedis(ctx context.Context, cfg config.Storage) (Registry, error) {
	r, err := redis.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}
