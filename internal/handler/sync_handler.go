package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunovinte3/controlsst/internal/models"
	"github.com/brunovinte3/controlsst/internal/normalize"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
	"github.com/brunovinte3/controlsst/pkg/response"
)

type syncRunner interface {
	Run(ctx context.Context) (*models.SyncOutcome, error)
	ImportRows(ctx context.Context, rows []normalize.Row) (*models.SyncOutcome, error)
	Status(ctx context.Context) models.SyncStatus
}

// SyncHandler exposes sheet synchronization and manual import.
type SyncHandler struct {
	service syncRunner
}

// NewSyncHandler constructs the handler.
func NewSyncHandler(svc syncRunner) *SyncHandler {
	return &SyncHandler{service: svc}
}

// Trigger godoc
// @Summary Run sheet synchronization
// @Description Fetches the configured sheet and reconciles the employee table
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /sync [post]
func (h *SyncHandler) Trigger(c *gin.Context) {
	outcome, err := h.service.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}

// Status godoc
// @Summary Synchronization status
// @Tags Sync
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Status(c.Request.Context()), nil)
}

type importRequest struct {
	Text string          `json:"text"`
	Rows []normalize.Row `json:"rows"`
}

// Import godoc
// @Summary Import pasted table data
// @Description Accepts raw tab/semicolon/comma separated text or pre-parsed rows
// @Tags Sync
// @Accept json
// @Produce json
// @Param payload body importRequest true "Import payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /import [post]
func (h *SyncHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid import payload"))
		return
	}

	rows := req.Rows
	if len(rows) == 0 {
		parsed, err := normalize.ParseTable(req.Text)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, err.Error()))
			return
		}
		rows = parsed
	}

	outcome, err := h.service.ImportRows(c.Request.Context(), rows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, outcome, nil)
}
