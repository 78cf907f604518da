package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brunovinte3/controlsst/internal/service"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
	"github.com/brunovinte3/controlsst/pkg/response"
)

type dashboardProvider interface {
	Summary(ctx context.Context) (*service.DashboardSummary, error)
}

// DashboardHandler serves the compliance overview.
type DashboardHandler struct {
	service dashboardProvider
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(svc dashboardProvider) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Summary godoc
// @Summary Compliance dashboard summary
// @Description Workforce totals, per-status counts, sector breakdown and upcoming expirations
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
