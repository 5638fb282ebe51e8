package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nmorel/altered-companion/internal/friends"
)

// CardCacheRepository is the durable unique-card metadata cache. It
// implements friends.CardCache. A zero TTL keeps entries forever, which is
// the default: unique card metadata is immutable.
type CardCacheRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewCardCacheRepository creates a card cache backed by the database. ttl of
// zero disables expiry.
func NewCardCacheRepository(db *sql.DB, ttl time.Duration) *CardCacheRepository {
	return &CardCacheRepository{db: db, ttl: ttl}
}

// Get returns the cached card for a reference. Expired entries are treated
// as misses.
func (r *CardCacheRepository) Get(ctx context.Context, reference string) (*friends.FriendCard, bool, error) {
	query := `SELECT card, cached_at FROM card_cache WHERE reference = ?`

	var value string
	var cachedAt time.Time
	err := r.db.QueryRowContext(ctx, query, reference).Scan(&value, &cachedAt)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached card %s: %w", reference, err)
	}

	if r.ttl > 0 && time.Since(cachedAt) > r.ttl {
		return nil, false, nil
	}

	var card friends.FriendCard
	if err := json.Unmarshal([]byte(value), &card); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached card %s: %w", reference, err)
	}

	return &card, true, nil
}

// Put stores a card's metadata under its reference.
func (r *CardCacheRepository) Put(ctx context.Context, reference string, card *friends.FriendCard) error {
	value, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to marshal card %s: %w", reference, err)
	}

	query := `
		INSERT INTO card_cache (reference, card, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(reference) DO UPDATE SET
			card = excluded.card,
			cached_at = excluded.cached_at
	`

	_, err = r.db.ExecContext(ctx, query, reference, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to cache card %s: %w", reference, err)
	}

	return nil
}

// Clear empties the cache.
func (r *CardCacheRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM card_cache`); err != nil {
		return fmt.Errorf("failed to clear card cache: %w", err)
	}
	return nil
}
