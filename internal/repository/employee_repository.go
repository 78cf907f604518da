package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/brunovinte3/controlsst/internal/models"
)

// EmployeeRepository manages persistence for canonical employee records.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = "id, name, registration, role, sector, company, photo_url, trainings, created_at, updated_at"

// Upsert inserts or fully replaces one employee keyed by id. The training map
// is replaced wholesale; the sync path relies on this for idempotence.
func (r *EmployeeRepository) Upsert(ctx context.Context, emp *models.Employee) error {
	query := `INSERT INTO employees (id, name, registration, role, sector, company, photo_url, trainings, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            registration = EXCLUDED.registration,
            role = EXCLUDED.role,
            sector = EXCLUDED.sector,
            company = EXCLUDED.company,
            photo_url = EXCLUDED.photo_url,
            trainings = EXCLUDED.trainings,
            updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, emp.ID, emp.Name, emp.Registration, emp.Role, emp.Sector, emp.Company, emp.PhotoURL, emp.Trainings); err != nil {
		return fmt.Errorf("upsert employee %s: %w", emp.ID, err)
	}
	return nil
}

// UpsertCore is the degraded variant of Upsert that leaves the optional photo
// column untouched. Used as a per-record fallback when the full upsert is
// rejected, so one bad optional field never costs the whole record.
func (r *EmployeeRepository) UpsertCore(ctx context.Context, emp *models.Employee) error {
	query := `INSERT INTO employees (id, name, registration, role, sector, company, trainings, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            registration = EXCLUDED.registration,
            role = EXCLUDED.role,
            sector = EXCLUDED.sector,
            company = EXCLUDED.company,
            trainings = EXCLUDED.trainings,
            updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, emp.ID, emp.Name, emp.Registration, emp.Role, emp.Sector, emp.Company, emp.Trainings); err != nil {
		return fmt.Errorf("upsert employee core %s: %w", emp.ID, err)
	}
	return nil
}

// SelectAll returns every employee ordered by name.
func (r *EmployeeRepository) SelectAll(ctx context.Context) ([]models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees ORDER BY name ASC", employeeColumns)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("select employees: %w", err)
	}
	return employees, nil
}

// List returns employees matching the provided filters.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(registration) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Sector != "" {
		conditions = append(conditions, fmt.Sprintf("sector = $%d", len(args)+1))
		args = append(args, filter.Sector)
	}
	if filter.Company != "" {
		conditions = append(conditions, fmt.Sprintf("company = $%d", len(args)+1))
		args = append(args, filter.Company)
	}
	if filter.CourseID != "" && filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("trainings -> $%d ->> 'status' = $%d", len(args)+1, len(args)+2))
		args = append(args, filter.CourseID, string(filter.Status))
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"name":         "name",
		"registration": "registration",
		"sector":       "sector",
		"updated_at":   "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM employees WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d",
		employeeColumns, where, column, order, size, offset)

	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}
	return employees, total, nil
}

// FindByID fetches an employee by id.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		return nil, err
	}
	return &emp, nil
}

// FindByRegistration fetches an employee by the human-facing registration
// number. Backs the public visitor lookup.
func (r *EmployeeRepository) FindByRegistration(ctx context.Context, registration string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE LOWER(registration) = LOWER($1)", employeeColumns)
	var emp models.Employee
	if err := r.db.GetContext(ctx, &emp, query, registration); err != nil {
		return nil, err
	}
	return &emp, nil
}

// Delete removes one employee. Only reachable from explicit admin action,
// never from the sync path.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM employees WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete employee %s: %w", id, err)
	}
	return nil
}

// Sectors returns the distinct sector names currently present.
func (r *EmployeeRepository) Sectors(ctx context.Context) ([]string, error) {
	var sectors []string
	if err := r.db.SelectContext(ctx, &sectors, "SELECT DISTINCT sector FROM employees ORDER BY sector ASC"); err != nil {
		return nil, fmt.Errorf("select sectors: %w", err)
	}
	return sectors, nil
}
