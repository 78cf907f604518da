package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brunovinte3/controlsst/internal/models"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

type photoStore interface {
	List(ctx context.Context) ([]models.TrainingPhoto, error)
	Upsert(ctx context.Context, photo *models.TrainingPhoto) error
	Delete(ctx context.Context, id string) error
}

// SavePhotoRequest adds or replaces one gallery entry.
type SavePhotoRequest struct {
	ID      string `json:"id"`
	URL     string `json:"url" validate:"required,url"`
	Caption string `json:"caption" validate:"max=200"`
}

// PhotoService manages the training evidence gallery.
type PhotoService struct {
	repo     photoStore
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPhotoService constructs the photo service.
func NewPhotoService(repo photoStore, validate *validator.Validate, logger *zap.Logger) *PhotoService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PhotoService{repo: repo, validate: validate, logger: logger}
}

// List returns every stored photo.
func (s *PhotoService) List(ctx context.Context) ([]models.TrainingPhoto, error) {
	photos, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list photos")
	}
	return photos, nil
}

// Save stores a photo, generating an id when absent.
func (s *PhotoService) Save(ctx context.Context, req SavePhotoRequest) (*models.TrainingPhoto, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid photo payload: %v", err))
	}
	photo := &models.TrainingPhoto{ID: req.ID, URL: req.URL, Caption: req.Caption}
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	if err := s.repo.Upsert(ctx, photo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save photo")
	}
	return photo, nil
}

// Delete removes a photo by id.
func (s *PhotoService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "photo id required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete photo")
	}
	return nil
}
