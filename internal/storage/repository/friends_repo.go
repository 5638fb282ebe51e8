package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nmorel/altered-companion/internal/friends"
)

// FriendsRepository persists the friend list. UpdatedAt tracks the last
// tradelist refresh per friend and survives friend-list refreshes.
type FriendsRepository interface {
	// Sync replaces the stored friend set with the given one: new friends
	// are inserted, renamed friends updated, and friends no longer present
	// removed. Existing updated_at timestamps are preserved.
	Sync(ctx context.Context, list []friends.Friend) error

	// List returns all stored friends.
	List(ctx context.Context) ([]friends.Friend, error)

	// TouchUpdatedAt records a successful tradelist refresh for a friend.
	TouchUpdatedAt(ctx context.Context, friendID string, t time.Time) error
}

type friendsRepository struct {
	db *sql.DB
}

// NewFriendsRepository creates a new friends repository.
func NewFriendsRepository(db *sql.DB) FriendsRepository {
	return &friendsRepository{db: db}
}

func (r *friendsRepository) Sync(ctx context.Context, list []friends.Friend) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin friends sync: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `
		INSERT INTO friends (id, name, updated_at)
		VALUES (?, ?, NULL)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name
	`
	for _, friend := range list {
		if _, err := tx.ExecContext(ctx, upsert, friend.ID, friend.Name); err != nil {
			return fmt.Errorf("failed to upsert friend %s: %w", friend.ID, err)
		}
	}

	// Remove unfriended rows and their stored tradelists.
	if len(list) == 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM friends`); err != nil {
			return fmt.Errorf("failed to clear friends: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM friend_tradelists`); err != nil {
			return fmt.Errorf("failed to clear tradelists: %w", err)
		}
	} else {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(list)), ",")
		ids := make([]interface{}, len(list))
		for i, friend := range list {
			ids[i] = friend.ID
		}

		query := fmt.Sprintf(`DELETE FROM friends WHERE id NOT IN (%s)`, placeholders)
		if _, err := tx.ExecContext(ctx, query, ids...); err != nil {
			return fmt.Errorf("failed to remove stale friends: %w", err)
		}

		query = fmt.Sprintf(`DELETE FROM friend_tradelists WHERE friend_id NOT IN (%s)`, placeholders)
		if _, err := tx.ExecContext(ctx, query, ids...); err != nil {
			return fmt.Errorf("failed to remove stale tradelists: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit friends sync: %w", err)
	}

	return nil
}

func (r *friendsRepository) List(ctx context.Context) ([]friends.Friend, error) {
	query := `SELECT id, name, updated_at FROM friends ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var list []friends.Friend
	for rows.Next() {
		var friend friends.Friend
		var updatedAt sql.NullTime
		if err := rows.Scan(&friend.ID, &friend.Name, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		if updatedAt.Valid {
			friend.UpdatedAt = updatedAt.Time
		}
		list = append(list, friend)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}

	return list, nil
}

func (r *friendsRepository) TouchUpdatedAt(ctx context.Context, friendID string, t time.Time) error {
	query := `UPDATE friends SET updated_at = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, t, friendID)
	if err != nil {
		return fmt.Errorf("failed to touch friend %s: %w", friendID, err)
	}

	return nil
}
