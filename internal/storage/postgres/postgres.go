// Package postgres provides a PostgreSQL-backed storage.Registry for
// deployments where several registry instances share one database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/raffle-registry/internal/config"
	"github.com/aanand-mishra/raffle-registry/internal/storage"
	"github.com/aanand-mishra/raffle-registry/internal/types"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
)

const schema = `
	CREATE TABLE IF NOT EXISTS participants (
		id            BIGSERIAL PRIMARY KEY,
		account       TEXT   NOT NULL UNIQUE,
		first_name    TEXT   NOT NULL,
		last_name     TEXT   NOT NULL,
		national_id   BIGINT NOT NULL,
		email         TEXT   NOT NULL,
		ticket_number BIGINT NOT NULL
	)
`

const (
	upsertQuery = `
		INSERT INTO participants (account, first_name, last_name, national_id, email, ticket_number)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account) DO UPDATE SET
			first_name    = EXCLUDED.first_name,
			last_name     = EXCLUDED.last_name,
			national_id   = EXCLUDED.national_id,
			email         = EXCLUDED.email,
			ticket_number = EXCLUDED.ticket_number`
	getQuery    = `SELECT first_name, last_name, national_id, email, ticket_number FROM participants WHERE account = $1`
	valuesQuery = `SELECT first_name, last_name, national_id, email, ticket_number FROM participants ORDER BY id`
)

// Postgres implements storage.Registry on a *sql.DB opened with lib/pq.
type Postgres struct {
	db *sql.DB
}

// New opens the database at cfg.DSN, verifies the connection and makes
// sure the participants table exists.
func New(ctx context.Context, cfg config.Storage) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	p := NewFromDB(db)
	if err := p.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// NewFromDB wraps an already opened pool. The caller owns migrations.
func NewFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the participants table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}
	return nil
}

// Upsert inserts a participant row or replaces every column of the row
// already keyed by account. The id column is left alone on conflict.
func (p *Postgres) Upsert(ctx context.Context, account string, rec types.Participant) error {
	_, err := p.db.ExecContext(ctx, upsertQuery,
		account, rec.FirstName, rec.LastName, int64(rec.NationalID), rec.Email, int64(rec.TicketNumber))
	if err != nil {
		return fmt.Errorf("postgres: upsert %s: %w", account, err)
	}
	return nil
}

// Get fetches the participant stored under account, or storage.ErrNotFound.
func (p *Postgres) Get(ctx context.Context, account string) (types.Participant, error) {
	var rec types.Participant
	err := p.db.QueryRowContext(ctx, getQuery, account).Scan(
		&rec.FirstName, &rec.LastName, &rec.NationalID, &rec.Email, &rec.TicketNumber,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Participant{}, storage.ErrNotFound
	}
	if err != nil {
		return types.Participant{}, fmt.Errorf("postgres: get %s: %w", account, err)
	}
	return rec, nil
}

// Values returns all participant rows in first-registration order.
func (p *Postgres) Values(ctx context.Context) ([]types.Participant, error) {
	rows, err := p.db.QueryContext(ctx, valuesQuery)
	if err != nil {
		return nil, fmt.Errorf("postgres: list: %w", err)
	}
	defer rows.Close()

	out := make([]types.Participant, 0)
	for rows.Next() {
		var rec types.Participant
		if err := rows.Scan(&rec.FirstName, &rec.LastName, &rec.NationalID, &rec.Email, &rec.TicketNumber); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
