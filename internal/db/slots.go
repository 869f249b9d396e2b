package db

import (
	"context"
	"database/sql"
	"fmt"
)

// SlotStore keeps named documents in the slots table.
// It backs the pending operation queue.
type SlotStore struct {
	db *DB
}

// NewSlotStore creates a slot store on an already migrated database
func NewSlotStore(db *DB) *SlotStore {
	return &SlotStore{db: db}
}

// Get returns the slot contents. ok is false when the slot was never written.
func (s *SlotStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM slots WHERE name = ?", name).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %q: %w", name, err)
	}
	return data, true, nil
}

// Put overwrites the slot contents
func (s *SlotStore) Put(ctx context.Context, name string, data []byte) error {
	query := `
		INSERT INTO slots (name, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, name, data); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", name, err)
	}
	return nil
}
