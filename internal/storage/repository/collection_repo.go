// Package repository contains the database repositories for the companion's
// persisted state.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nmorel/altered-companion/internal/collection"
)

const collectionSnapshotKey = "userCollection"

// CollectionRepository persists the latest built collection snapshot so the
// UI has data before the first refresh completes.
type CollectionRepository interface {
	// Save stores the collection snapshot, replacing any previous one.
	Save(ctx context.Context, cc collection.CardCollection) error

	// Load returns the stored snapshot and its timestamp. A missing
	// snapshot returns an empty collection and a zero time, not an error.
	Load(ctx context.Context) (collection.CardCollection, time.Time, error)
}

type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db *sql.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Save(ctx context.Context, cc collection.CardCollection) error {
	value, err := json.Marshal(cc)
	if err != nil {
		return fmt.Errorf("failed to marshal collection snapshot: %w", err)
	}

	query := `
		INSERT INTO snapshots (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, collectionSnapshotKey, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save collection snapshot: %w", err)
	}

	return nil
}

func (r *collectionRepository) Load(ctx context.Context) (collection.CardCollection, time.Time, error) {
	query := `SELECT value, updated_at FROM snapshots WHERE key = ?`

	var value string
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, collectionSnapshotKey).Scan(&value, &updatedAt)

	if err == sql.ErrNoRows {
		return make(collection.CardCollection), time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load collection snapshot: %w", err)
	}

	var cc collection.CardCollection
	if err := json.Unmarshal([]byte(value), &cc); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to unmarshal collection snapshot: %w", err)
	}

	return cc, updatedAt, nil
}
