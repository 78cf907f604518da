package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/brunovinte3/controlsst/internal/catalog"
	"github.com/brunovinte3/controlsst/internal/compliance"
	"github.com/brunovinte3/controlsst/internal/models"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

const dashboardCacheKey = "controlsst:dashboard:summary"

type dashboardEmployeeStore interface {
	SelectAll(ctx context.Context) ([]models.Employee, error)
}

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SectorBreakdown aggregates training statuses within one sector.
type SectorBreakdown struct {
	Sector     string `json:"sector"`
	Valid      int    `json:"valid"`
	Expiring   int    `json:"expiring"`
	Expired    int    `json:"expired"`
	NotTrained int    `json:"not_trained"`
}

// CompanyBreakdown aggregates training statuses within one company.
type CompanyBreakdown struct {
	Company    string `json:"company"`
	Valid      int    `json:"valid"`
	Expiring   int    `json:"expiring"`
	Expired    int    `json:"expired"`
	NotTrained int    `json:"not_trained"`
}

// ExpiringEntry is one training inside the look-ahead window.
type ExpiringEntry struct {
	EmployeeID    string    `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	CourseID      string    `json:"course_id"`
	CourseName    string    `json:"course_name"`
	ExpiryDate    time.Time `json:"expiry_date"`
	DaysRemaining int       `json:"days_remaining"`
}

// DashboardSummary is the aggregate compliance view.
type DashboardSummary struct {
	TotalEmployees int                           `json:"total_employees"`
	StatusTotals   map[models.TrainingStatus]int `json:"status_totals"`
	ComplianceRate float64                       `json:"compliance_rate"`
	BySector       []SectorBreakdown             `json:"by_sector"`
	ByCompany      []CompanyBreakdown            `json:"by_company"`
	ExpiringSoon   []ExpiringEntry               `json:"expiring_soon"`
	GeneratedAt    time.Time                     `json:"generated_at"`
}

// DashboardService computes aggregate compliance numbers, recomputing every
// status from stored completion dates so the dashboard is correct even when
// no sync has run since a training expired.
type DashboardService struct {
	employees dashboardEmployeeStore
	cache     summaryCache
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewDashboardService constructs the dashboard service. cache may be nil.
func NewDashboardService(employees dashboardEmployeeStore, cache summaryCache, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{employees: employees, cache: cache, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// Summary returns the aggregate view, served from cache when fresh.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	if s.cache != nil {
		var cached DashboardSummary
		if err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
	}

	employees, err := s.employees.SelectAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees for dashboard")
	}

	summary := s.build(employees)

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, summary, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary. Called after every successful sync or
// import so consumers never read pre-sync aggregates.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

func (s *DashboardService) build(employees []models.Employee) *DashboardSummary {
	today := s.now()
	summary := &DashboardSummary{
		TotalEmployees: len(employees),
		StatusTotals:   map[models.TrainingStatus]int{},
		GeneratedAt:    today,
	}
	for _, st := range models.TrainingStatuses {
		summary.StatusTotals[st] = 0
	}

	sectors := map[string]*SectorBreakdown{}
	companies := map[string]*CompanyBreakdown{}
	compliant := 0
	total := 0

	for _, emp := range employees {
		sector, ok := sectors[emp.Sector]
		if !ok {
			sector = &SectorBreakdown{Sector: emp.Sector}
			sectors[emp.Sector] = sector
		}
		company, ok := companies[emp.Company]
		if !ok {
			company = &CompanyBreakdown{Company: emp.Company}
			companies[emp.Company] = company
		}
		for _, course := range catalog.Courses {
			var completion *time.Time
			if rec, ok := emp.Trainings[course.ID]; ok && rec.Completed() {
				completion = rec.CompletionDate
			}
			rec := compliance.Evaluate(course.ID, completion, course.ValidityYears, today)
			summary.StatusTotals[rec.Status]++
			total++

			switch rec.Status {
			case models.StatusValid:
				sector.Valid++
				company.Valid++
				compliant++
			case models.StatusExpiring:
				sector.Expiring++
				company.Expiring++
				compliant++
				if rec.ExpiryDate != nil {
					days, _ := compliance.DaysRemaining(rec.ExpiryDate, today)
					summary.ExpiringSoon = append(summary.ExpiringSoon, ExpiringEntry{
						EmployeeID:    emp.ID,
						EmployeeName:  emp.Name,
						CourseID:      course.ID,
						CourseName:    course.Name,
						ExpiryDate:    *rec.ExpiryDate,
						DaysRemaining: days,
					})
				}
			case models.StatusExpired:
				sector.Expired++
				company.Expired++
			case models.StatusNotTrained:
				sector.NotTrained++
				company.NotTrained++
			}
		}
	}

	if total > 0 {
		summary.ComplianceRate = float64(compliant) / float64(total)
	}

	summary.BySector = make([]SectorBreakdown, 0, len(sectors))
	for _, b := range sectors {
		summary.BySector = append(summary.BySector, *b)
	}
	sort.Slice(summary.BySector, func(i, j int) bool { return summary.BySector[i].Sector < summary.BySector[j].Sector })
	summary.ByCompany = make([]CompanyBreakdown, 0, len(companies))
	for _, b := range companies {
		summary.ByCompany = append(summary.ByCompany, *b)
	}
	sort.Slice(summary.ByCompany, func(i, j int) bool { return summary.ByCompany[i].Company < summary.ByCompany[j].Company })
	sort.Slice(summary.ExpiringSoon, func(i, j int) bool {
		return summary.ExpiringSoon[i].DaysRemaining < summary.ExpiringSoon[j].DaysRemaining
	})
	return summary
}
