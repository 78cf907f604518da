package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunovinte3/controlsst/internal/service"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
	"github.com/brunovinte3/controlsst/pkg/response"
)

// SettingsHandler exposes company, admin and sync-source configuration.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// CompanyProfile godoc
// @Summary Get company profile
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/company [get]
func (h *SettingsHandler) CompanyProfile(c *gin.Context) {
	profile, err := h.service.CompanyProfile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UpdateCompanyProfile godoc
// @Summary Update company profile
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateCompanyRequest true "Company profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/company [put]
func (h *SettingsHandler) UpdateCompanyProfile(c *gin.Context) {
	var req service.UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid company payload"))
		return
	}
	profile, err := h.service.UpdateCompanyProfile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// AdminProfile godoc
// @Summary Get administrator profile
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/admin [get]
func (h *SettingsHandler) AdminProfile(c *gin.Context) {
	profile, err := h.service.AdminProfile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UpdateAdminProfile godoc
// @Summary Update administrator profile
// @Description Updates display data and optionally the password
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateAdminRequest true "Admin profile"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/admin [put]
func (h *SettingsHandler) UpdateAdminProfile(c *gin.Context) {
	var req service.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid admin payload"))
		return
	}
	if err := h.service.UpdateAdminProfile(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SheetsURL godoc
// @Summary Get configured sheet URL
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings/sheets-url [get]
func (h *SettingsHandler) SheetsURL(c *gin.Context) {
	url, err := h.service.SheetsURL(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"url": url}, nil)
}

// UpdateSheetsURL godoc
// @Summary Set the sheet URL used by sync
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body service.UpdateSheetsURLRequest true "Sheet URL"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /settings/sheets-url [put]
func (h *SettingsHandler) UpdateSheetsURL(c *gin.Context) {
	var req service.UpdateSheetsURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid url payload"))
		return
	}
	if err := h.service.UpdateSheetsURL(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
