package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nmorel/altered-companion/internal/friends"
)

// TradelistRepository persists assembled friend tradelists.
type TradelistRepository interface {
	// Save stores a friend's assembled tradelist, replacing any previous one.
	Save(ctx context.Context, friendID string, cards []friends.FriendCard) error

	// Load returns a friend's stored tradelist. A missing row returns nil
	// cards and a zero time, not an error.
	Load(ctx context.Context, friendID string) ([]friends.FriendCard, time.Time, error)

	// LoadAll returns every stored tradelist keyed by friend ID.
	LoadAll(ctx context.Context) (map[string][]friends.FriendCard, error)
}

type tradelistRepository struct {
	db *sql.DB
}

// NewTradelistRepository creates a new tradelist repository.
func NewTradelistRepository(db *sql.DB) TradelistRepository {
	return &tradelistRepository{db: db}
}

func (r *tradelistRepository) Save(ctx context.Context, friendID string, cards []friends.FriendCard) error {
	value, err := json.Marshal(cards)
	if err != nil {
		return fmt.Errorf("failed to marshal tradelist: %w", err)
	}

	query := `
		INSERT INTO friend_tradelists (friend_id, cards, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(friend_id) DO UPDATE SET
			cards = excluded.cards,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, friendID, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("failed to save tradelist for %s: %w", friendID, err)
	}

	return nil
}

func (r *tradelistRepository) Load(ctx context.Context, friendID string) ([]friends.FriendCard, time.Time, error) {
	query := `SELECT cards, updated_at FROM friend_tradelists WHERE friend_id = ?`

	var value string
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, query, friendID).Scan(&value, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load tradelist for %s: %w", friendID, err)
	}

	var cards []friends.FriendCard
	if err := json.Unmarshal([]byte(value), &cards); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to unmarshal tradelist for %s: %w", friendID, err)
	}

	return cards, updatedAt, nil
}

func (r *tradelistRepository) LoadAll(ctx context.Context) (map[string][]friends.FriendCard, error) {
	query := `SELECT friend_id, cards FROM friend_tradelists`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tradelists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tradelists := make(map[string][]friends.FriendCard)
	for rows.Next() {
		var friendID, value string
		if err := rows.Scan(&friendID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan tradelist: %w", err)
		}

		var cards []friends.FriendCard
		if err := json.Unmarshal([]byte(value), &cards); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tradelist for %s: %w", friendID, err)
		}
		tradelists[friendID] = cards
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tradelists: %w", err)
	}

	return tradelists, nil
}
