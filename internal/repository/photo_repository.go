package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/brunovinte3/controlsst/internal/models"
)

// PhotoRepository manages training evidence photos.
type PhotoRepository struct {
	db *sqlx.DB
}

// NewPhotoRepository constructs a PhotoRepository.
func NewPhotoRepository(db *sqlx.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// List returns all stored photos.
func (r *PhotoRepository) List(ctx context.Context) ([]models.TrainingPhoto, error) {
	var photos []models.TrainingPhoto
	if err := r.db.SelectContext(ctx, &photos, "SELECT id, url, caption FROM training_photos ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("list training photos: %w", err)
	}
	return photos, nil
}

// Upsert inserts or replaces one photo keyed by id.
func (r *PhotoRepository) Upsert(ctx context.Context, photo *models.TrainingPhoto) error {
	query := `INSERT INTO training_photos (id, url, caption)
        VALUES ($1, $2, $3)
        ON CONFLICT (id) DO UPDATE SET url = EXCLUDED.url, caption = EXCLUDED.caption`
	if _, err := r.db.ExecContext(ctx, query, photo.ID, photo.URL, photo.Caption); err != nil {
		return fmt.Errorf("upsert training photo %s: %w", photo.ID, err)
	}
	return nil
}

// Delete removes one photo if present.
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM training_photos WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete training photo %s: %w", id, err)
	}
	return nil
}
