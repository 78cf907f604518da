package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/brunovinte3/controlsst/internal/models"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

// Defaults applied when the settings table has never been written.
var defaultCompanyProfile = models.CompanyProfile{
	Name:       "ControlSST",
	CNPJ:       "00.000.000/0001-00",
	LogoURL:    "🛡️",
	FooterText: "Relatório Gerencial de Conformidade Normativa",
}

const defaultAdminUsername = "admin"

// storedAdminProfile is the persisted shape; the hash stays server-side.
type storedAdminProfile struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Email        string `json:"email"`
	Icon         string `json:"icon"`
}

// UpdateCompanyRequest holds the company profile payload.
type UpdateCompanyRequest struct {
	Name       string `json:"name" validate:"required"`
	CNPJ       string `json:"cnpj"`
	LogoURL    string `json:"logo_url"`
	FooterText string `json:"footer_text"`
}

// UpdateAdminRequest changes the administrative account.
type UpdateAdminRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Email    string `json:"email" validate:"omitempty,email"`
	Icon     string `json:"icon"`
}

// UpdateSheetsURLRequest sets the external source endpoint.
type UpdateSheetsURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// SettingsService manages operator-facing configuration stored in
// app_settings.
type SettingsService struct {
	repo      syncSettingsStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the settings service.
func NewSettingsService(repo syncSettingsStore, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger}
}

// EnsureDefaults seeds the admin account on first boot so the instance is
// reachable before any manual configuration.
func (s *SettingsService) EnsureDefaults(ctx context.Context, initialPassword string) error {
	_, err := s.repo.Get(ctx, models.SettingAdminProfile)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if initialPassword == "" {
		initialPassword = "controlsst"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	profile := storedAdminProfile{Username: defaultAdminUsername, PasswordHash: string(hash), Icon: "👨‍💼"}
	value, _ := json.Marshal(profile)
	s.logger.Info("seeding default admin profile", zap.String("username", profile.Username))
	return s.repo.Upsert(ctx, models.SettingAdminProfile, value)
}

// CompanyProfile returns the stored company profile or the default.
func (s *SettingsService) CompanyProfile(ctx context.Context) (models.CompanyProfile, error) {
	raw, err := s.repo.Get(ctx, models.SettingCompanyProfile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return defaultCompanyProfile, nil
		}
		return models.CompanyProfile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company profile")
	}
	var profile models.CompanyProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return defaultCompanyProfile, nil
	}
	return profile, nil
}

// UpdateCompanyProfile replaces the company profile.
func (s *SettingsService) UpdateCompanyProfile(ctx context.Context, req UpdateCompanyRequest) (models.CompanyProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.CompanyProfile{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid company profile")
	}
	profile := models.CompanyProfile{Name: req.Name, CNPJ: req.CNPJ, LogoURL: req.LogoURL, FooterText: req.FooterText}
	value, _ := json.Marshal(profile)
	if err := s.repo.Upsert(ctx, models.SettingCompanyProfile, value); err != nil {
		return models.CompanyProfile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save company profile")
	}
	return profile, nil
}

// AdminProfile returns the stored admin account.
func (s *SettingsService) AdminProfile(ctx context.Context) (models.AdminProfile, error) {
	raw, err := s.repo.Get(ctx, models.SettingAdminProfile)
	if err != nil {
		return models.AdminProfile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admin profile")
	}
	var stored storedAdminProfile
	if err := json.Unmarshal(raw, &stored); err != nil {
		return models.AdminProfile{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "corrupt admin profile")
	}
	return models.AdminProfile{Username: stored.Username, PasswordHash: stored.PasswordHash, Email: stored.Email, Icon: stored.Icon}, nil
}

// UpdateAdminProfile changes the admin account; an empty password keeps the
// current one.
func (s *SettingsService) UpdateAdminProfile(ctx context.Context, req UpdateAdminRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin profile")
	}
	current, err := s.AdminProfile(ctx)
	if err != nil {
		return err
	}
	stored := storedAdminProfile{
		Username:     req.Username,
		PasswordHash: current.PasswordHash,
		Email:        req.Email,
		Icon:         req.Icon,
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		stored.PasswordHash = string(hash)
	}
	value, _ := json.Marshal(stored)
	if err := s.repo.Upsert(ctx, models.SettingAdminProfile, value); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save admin profile")
	}
	return nil
}

// SheetsURL returns the configured external source endpoint, if any.
func (s *SettingsService) SheetsURL(ctx context.Context) (string, error) {
	raw, err := s.repo.Get(ctx, models.SettingSheetsURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sheets url")
	}
	var url string
	if err := json.Unmarshal(raw, &url); err != nil {
		return "", nil
	}
	return url, nil
}

// UpdateSheetsURL sets the external source endpoint.
func (s *SettingsService) UpdateSheetsURL(ctx context.Context, req UpdateSheetsURLRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sheets url")
	}
	value, _ := json.Marshal(strings.TrimSpace(req.URL))
	if err := s.repo.Upsert(ctx, models.SettingSheetsURL, value); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save sheets url")
	}
	return nil
}
