package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nmorel/altered-companion/internal/storage"
)

// SecretsRepository stores small secrets (the API bearer token) encrypted at
// rest with a locally derived key.
type SecretsRepository interface {
	// Set encrypts and stores a secret.
	Set(ctx context.Context, key, value string) error

	// Get decrypts and returns a secret. A missing key returns ("", nil).
	Get(ctx context.Context, key string) (string, error)

	// Delete removes a secret. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type secretsRepository struct {
	db     *sql.DB
	config *storage.EncryptionConfig
}

// NewSecretsRepository creates a secrets repository. The password seeds the
// per-secret key derivation.
func NewSecretsRepository(db *sql.DB, password string) SecretsRepository {
	return &secretsRepository{
		db:     db,
		config: storage.DefaultEncryptionConfig(password),
	}
}

func (r *secretsRepository) Set(ctx context.Context, key, value string) error {
	encrypted, err := storage.EncryptData([]byte(value), r.config)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret %s: %w", key, err)
	}

	query := `
		INSERT INTO secrets (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, key, encrypted, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store secret %s: %w", key, err)
	}

	return nil
}

func (r *secretsRepository) Get(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM secrets WHERE key = ?`

	var encrypted []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&encrypted)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load secret %s: %w", key, err)
	}

	plaintext, err := storage.DecryptData(encrypted, r.config)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt secret %s: %w", key, err)
	}

	return string(plaintext), nil
}

func (r *secretsRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete secret %s: %w", key, err)
	}
	return nil
}
