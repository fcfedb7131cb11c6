// Package redis provides a Redis-backed storage.Registry.
//
// Records live in a single hash named after the configured collection
// (field = account, value = JSON record). A companion list
// "<collection>:order" remembers first-registration order for Values.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/aanand-mishra/raffle-registry/internal/config"
	"github.com/aanand-mishra/raffle-registry/internal/storage"
	"github.com/aanand-mishra/raffle-registry/internal/types"
)

// DefaultCollection is the hash name used when none is configured.
const DefaultCollection = "p"

// upsertScript writes the record and appends the account to the order list
// only when HSET created a new field. Running it as a script keeps the two
// writes atomic.
var upsertScript = redis.NewScript(`
if redis.call('HSET', KEYS[1], ARGV[1], ARGV[2]) == 1 then
	redis.call('RPUSH', KEYS[2], ARGV[1])
end
return 1
`)

// Registry implements storage.Registry on a go-redis client.
type Registry struct {
	client   *redis.Client
	hashKey  string
	orderKey string
}

// New connects to cfg.RedisURL and verifies the connection.
func New(ctx context.Context, cfg config.Storage) (*Registry, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewFromClient(client, cfg.Collection), nil
}

// NewFromClient wraps an existing client. An empty collection falls back
// to DefaultCollection.
func NewFromClient(client *redis.Client, collection string) *Registry {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Registry{
		client:   client,
		hashKey:  collection,
		orderKey: collection + ":order",
	}
}

// Upsert stores p under account as JSON, replacing any previous record.
func (r *Registry) Upsert(ctx context.Context, account string, p types.Participant) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", account, err)
	}
	if err := upsertScript.Run(ctx, r.client, []string{r.hashKey, r.orderKey}, account, payload).Err(); err != nil {
		return fmt.Errorf("redis: upsert %s: %w", account, err)
	}
	return nil
}

// Get returns the record stored under account, or storage.ErrNotFound.
func (r *Registry) Get(ctx context.Context, account string) (types.Participant, error) {
	raw, err := r.client.HGet(ctx, r.hashKey, account).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.Participant{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Participant{}, fmt.Errorf("redis: get %s: %w", account, err)
	}

	var p types.Participant
	if err := json.Unmarshal(raw, &p); err != nil {
		return types.Participant{}, fmt.Errorf("redis: decode %s: %w", account, err)
	}
	return p, nil
}

// Values returns every record in first-registration order.
func (r *Registry) Values(ctx context.Context) ([]types.Participant, error) {
	accounts, err := r.client.LRange(ctx, r.orderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list order: %w", err)
	}

	out := make([]types.Participant, 0, len(accounts))
	if len(accounts) == 0 {
		return out, nil
	}

	raws, err := r.client.HMGet(ctx, r.hashKey, accounts...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list values: %w", err)
	}
	for i, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			// Order entry without a record; skip rather than fail the listing.
			continue
		}
		var p types.Participant
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, fmt.Errorf("redis: decode %s: %w", accounts[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Health checks if the Redis connection is healthy.
func (r *Registry) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *Registry) Close() error {
	return r.client.Close()
}
