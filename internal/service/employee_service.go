package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brunovinte3/controlsst/internal/catalog"
	"github.com/brunovinte3/controlsst/internal/compliance"
	"github.com/brunovinte3/controlsst/internal/models"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

type employeeRepository interface {
	Upsert(ctx context.Context, emp *models.Employee) error
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	SelectAll(ctx context.Context) ([]models.Employee, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	FindByRegistration(ctx context.Context, registration string) (*models.Employee, error)
	Delete(ctx context.Context, id string) error
	Sectors(ctx context.Context) ([]string, error)
}

// CreateEmployeeRequest holds the manual admin-entry payload.
type CreateEmployeeRequest struct {
	Name         string `json:"name" validate:"required"`
	Registration string `json:"registration"`
	Role         string `json:"role"`
	Sector       string `json:"sector"`
	Company      string `json:"company"`
	PhotoURL     string `json:"photo_url"`
}

// UpdateEmployeeRequest patches profile fields. Nil pointers leave the field
// untouched; empty strings clear it.
type UpdateEmployeeRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Sector   *string `json:"sector"`
	Company  *string `json:"company"`
	PhotoURL *string `json:"photo_url"`
}

// UpdateTrainingRequest sets or clears one course completion date.
type UpdateTrainingRequest struct {
	CourseID       string `json:"course_id" validate:"required"`
	CompletionDate string `json:"completion_date"`
}

// EmployeeService handles employee use-cases. Statuses returned to consumers
// are always recomputed from the stored completion dates against the current
// day, never trusted from the persisted projection.
type EmployeeService struct {
	repo      employeeRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEmployeeService constructs the employee service.
func NewEmployeeService(repo employeeRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns employees and pagination metadata.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	today := s.now()
	for i := range employees {
		s.refresh(&employees[i], today)
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return employees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one employee by id.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	s.refresh(emp, s.now())
	return emp, nil
}

// Lookup finds an employee by registration number. Backs the public visitor
// compliance card.
func (s *EmployeeService) Lookup(ctx context.Context, registration string) (*models.Employee, error) {
	registration = strings.TrimSpace(registration)
	if registration == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "registration is required")
	}
	emp, err := s.repo.FindByRegistration(ctx, registration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no employee with this registration")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up employee")
	}
	s.refresh(emp, s.now())
	return emp, nil
}

// Create registers one employee manually with an empty (dense) training map.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	registration := strings.TrimSpace(req.Registration)
	id := registration
	if id == "" {
		id = uuid.NewString()
		registration = id
	}
	if existing, err := s.repo.FindByID(ctx, id); err == nil && existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an employee with this registration already exists")
	}

	today := s.now()
	trainings := make(models.TrainingMap, len(catalog.Courses))
	for _, course := range catalog.Courses {
		trainings[course.ID] = compliance.Evaluate(course.ID, nil, course.ValidityYears, today)
	}

	emp := &models.Employee{
		ID:           id,
		Name:         req.Name,
		Registration: registration,
		Role:         defaultIfEmpty(req.Role),
		Sector:       defaultIfEmpty(req.Sector),
		Company:      req.Company,
		PhotoURL:     req.PhotoURL,
		Trainings:    trainings,
	}
	if emp.Company == "" {
		emp.Company = "Empresa Padrão"
	}
	if err := s.repo.Upsert(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	return emp, nil
}

// Update patches profile fields on one employee.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	emp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be empty")
		}
		emp.Name = *req.Name
	}
	if req.Role != nil {
		emp.Role = defaultIfEmpty(*req.Role)
	}
	if req.Sector != nil {
		emp.Sector = defaultIfEmpty(*req.Sector)
	}
	if req.Company != nil {
		emp.Company = *req.Company
	}
	if req.PhotoURL != nil {
		emp.PhotoURL = *req.PhotoURL
	}
	if err := s.repo.Upsert(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return emp, nil
}

// UpdateTraining sets or clears the completion date for one course and
// recomputes that course's record. An unparseable date clears the training
// rather than failing, mirroring the import path.
func (s *EmployeeService) UpdateTraining(ctx context.Context, id string, req UpdateTrainingRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid training payload")
	}
	course, ok := catalog.Find(req.CourseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown course id")
	}
	emp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	today := s.now()
	var completion *time.Time
	if parsed, ok := compliance.ParseFlexibleDate(req.CompletionDate); ok {
		completion = &parsed
	}
	emp.Trainings[course.ID] = compliance.Evaluate(course.ID, completion, course.ValidityYears, today)

	if err := s.repo.Upsert(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update training")
	}
	return emp, nil
}

// Delete removes one employee by explicit admin action.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employee")
	}
	return nil
}

// Backup returns every employee for a JSON export.
func (s *EmployeeService) Backup(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.SelectAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export employees")
	}
	today := s.now()
	for i := range employees {
		s.refresh(&employees[i], today)
	}
	return employees, nil
}

// Sectors lists the distinct sectors for filter dropdowns.
func (s *EmployeeService) Sectors(ctx context.Context) ([]string, error) {
	sectors, err := s.repo.Sectors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sectors")
	}
	return sectors, nil
}

// refresh recomputes every training status against today. The stored status
// is only a write-time snapshot; a record that expired since the last sync
// must read as EXPIRED without waiting for the next import.
func (s *EmployeeService) refresh(emp *models.Employee, today time.Time) {
	if emp.Trainings == nil {
		emp.Trainings = models.TrainingMap{}
	}
	for _, course := range catalog.Courses {
		rec, ok := emp.Trainings[course.ID]
		if !ok {
			emp.Trainings[course.ID] = compliance.Evaluate(course.ID, nil, course.ValidityYears, today)
			continue
		}
		emp.Trainings[course.ID] = compliance.Evaluate(course.ID, rec.CompletionDate, course.ValidityYears, today)
	}
}

func defaultIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
