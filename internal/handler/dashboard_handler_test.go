package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/brunovinte3/controlsst/internal/models"
	"github.com/brunovinte3/controlsst/internal/service"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

type fakeDashboardSrv struct {
	summary *service.DashboardSummary
	err     error
	hits    int
}

func (f *fakeDashboardSrv) Summary(context.Context) (*service.DashboardSummary, error) {
	f.hits++
	return f.summary, f.err
}

func TestDashboardHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{summary: &service.DashboardSummary{
		TotalEmployees: 12,
		StatusTotals:   map[models.TrainingStatus]int{models.StatusValid: 30, models.StatusExpired: 4},
		ComplianceRate: 0.72,
		GeneratedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, srv.hits)
	var envelope syncEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(12), envelope.Data["total_employees"])
	assert.Equal(t, 0.72, envelope.Data["compliance_rate"])
}

func TestDashboardHandlerSummaryError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.ErrInternal})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
