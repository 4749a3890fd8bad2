/*
Package sqlite provides a SQLite-backed implementation of the persistence
capability.

PURPOSE:
  Stores the full card record set locally. Each card is one row with its
  serialized payload; the position column preserves the user's card
  ordering. SaveData replaces the whole set inside a single database
  transaction, so a failed save leaves the previous set intact
  (all-or-nothing, matching the capability contract).

WAL MODE:
  The database is opened with WAL (Write-Ahead Logging):
  - readers don't block the single writer
  - better crash recovery

CONCURRENCY:
  A sync.RWMutex serializes access. The engine is single-writer by
  design; the mutex only guards against the scheduler and an HTTP
  request saving at the same moment.

USAGE:
  store, err := sqlite.New("./benefits.db")
  if err != nil { ... }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/benefit-engine/record"
)

// Store implements record.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cards (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	CREATE INDEX IF NOT EXISTS idx_cards_position ON cards(position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// LoadData returns every stored card in user order; an empty slice when the
// table is empty.
func (s *Store) LoadData(ctx context.Context) ([]record.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM cards ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("loading cards: %w", err)
	}
	defer rows.Close()

	cards := []record.Card{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning card row: %w", err)
		}
		var c record.Card
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, fmt.Errorf("decoding card payload: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// SaveData replaces the stored set in one transaction.
func (s *Store) SaveData(ctx context.Context, cards []record.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("clearing cards: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cards (id, position, payload, updated_at) VALUES (?, ?, ?, datetime('now'))`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range cards {
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding card %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, i, string(payload)); err != nil {
			return fmt.Errorf("inserting card %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

var _ record.Store = (*Store)(nil)
