package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SettingsRepository manages the app_settings key/value table. Values are
// opaque JSON; typed decoding happens in the settings service.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the raw JSON value for a key, or sql.ErrNoRows when unset.
func (r *SettingsRepository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	if err := r.db.GetContext(ctx, &value, "SELECT value FROM app_settings WHERE key = $1", key); err != nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

// Upsert writes the value for a key.
func (r *SettingsRepository) Upsert(ctx context.Context, key string, value json.RawMessage) error {
	query := `INSERT INTO app_settings (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, key, []byte(value)); err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
