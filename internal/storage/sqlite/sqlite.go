// Package sqlite provides a SQLite-backed implementation of the
// storage.Registry interface using Go's standard database/sql package.
//
// SQLite keeps the whole registry in a single file on disk, which makes it
// the default driver for a single-instance deployment.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/raffle-registry/internal/config"
	"github.com/aanand-mishra/raffle-registry/internal/storage"
	"github.com/aanand-mishra/raffle-registry/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Registry.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.Path, creates the participants
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg config.Storage) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Schema:
	//   id      — insertion sequence; kept on conflict so Values stays in
	//             first-registration order
	//   account — registry key, one row per account
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS participants (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			account       TEXT    NOT NULL UNIQUE,
			first_name    TEXT    NOT NULL,
			last_name     TEXT    NOT NULL,
			national_id   INTEGER NOT NULL,
			email         TEXT    NOT NULL,
			ticket_number INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Upsert inserts a participant row, or replaces every column of the row
// already keyed by account. ON CONFLICT ... DO UPDATE keeps the original
// id, so a re-registration does not move the account to the end of Values.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Upsert(ctx context.Context, account string, p types.Participant) error {
	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO participants (account, first_name, last_name, national_id, email, ticket_number)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account) DO UPDATE SET
			first_name    = excluded.first_name,
			last_name     = excluded.last_name,
			national_id   = excluded.national_id,
			email         = excluded.email,
			ticket_number = excluded.ticket_number
	`)
	if err != nil {
		return fmt.Errorf("Upsert: prepare: %w", err)
	}
	defer stmt.Close()

	// Argument order matches the ? order in the SQL.
	_, err = stmt.ExecContext(ctx, account, p.FirstName, p.LastName, p.NationalID, p.Email, p.TicketNumber)
	if err != nil {
		return fmt.Errorf("Upsert: exec: %w", err)
	}

	return nil
}

// Get fetches the participant stored under account.
func (s *SQLite) Get(ctx context.Context, account string) (types.Participant, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT first_name, last_name, national_id, email, ticket_number FROM participants WHERE account = ? LIMIT 1",
	)
	if err != nil {
		return types.Participant{}, fmt.Errorf("Get: prepare: %w", err)
	}
	defer stmt.Close()

	var p types.Participant
	err = stmt.QueryRowContext(ctx, account).Scan(
		&p.FirstName,
		&p.LastName,
		&p.NationalID,
		&p.Email,
		&p.TicketNumber,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Participant{}, storage.ErrNotFound
		}
		return types.Participant{}, fmt.Errorf("Get: scan: %w", err)
	}

	return p, nil
}

// Values returns all participant rows in first-registration order.
func (s *SQLite) Values(ctx context.Context) ([]types.Participant, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT first_name, last_name, national_id, email, ticket_number FROM participants ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("Values: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("Values: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty registry encodes as [] rather than null.
	participants := make([]types.Participant, 0)

	for rows.Next() {
		var p types.Participant
		if err := rows.Scan(
			&p.FirstName,
			&p.LastName,
			&p.NationalID,
			&p.Email,
			&p.TicketNumber,
		); err != nil {
			return nil, fmt.Errorf("Values: scan row: %w", err)
		}
		participants = append(participants, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Values: rows iteration: %w", err)
	}

	return participants, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
