package collectors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yair/eventfinder/pkg/domain"
)

// SlotRepository stores named blobs in a SQLite table.
type SlotRepository struct {
	db *sql.DB
}

func NewSlotRepository(db *sql.DB) (*SlotRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	repo := &SlotRepository{db: db}
	if err := repo.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return repo, nil
}

func (r *SlotRepository) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS storage_slots (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`

	_, err := r.db.Exec(query)
	return err
}

func (r *SlotRepository) Load(ctx context.Context, slot string) ([]byte, error) {
	query := `SELECT payload FROM storage_slots WHERE name = ?`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %s: %w", slot, err)
	}

	return payload, nil
}

func (r *SlotRepository) Save(ctx context.Context, slot string, data []byte) error {
	if slot == "" {
		return fmt.Errorf("slot name is required")
	}

	query := `
	INSERT INTO storage_slots (name, payload, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		payload = excluded.payload,
		updated_at = excluded.updated_at
	`

	if data == nil {
		data = []byte{}
	}

	if _, err := r.db.ExecContext(ctx, query, slot, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", slot, err)
	}

	return nil
}
