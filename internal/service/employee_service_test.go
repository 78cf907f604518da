package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunovinte3/controlsst/internal/catalog"
	"github.com/brunovinte3/controlsst/internal/models"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

type employeeRepoStub struct {
	items map[string]models.Employee
	err   error
}

func newEmployeeRepoStub() *employeeRepoStub {
	return &employeeRepoStub{items: map[string]models.Employee{}}
}

func (s *employeeRepoStub) Upsert(ctx context.Context, emp *models.Employee) error {
	if s.err != nil {
		return s.err
	}
	s.items[emp.ID] = *emp
	return nil
}

func (s *employeeRepoStub) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]models.Employee, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	return out, len(out), nil
}

func (s *employeeRepoStub) SelectAll(ctx context.Context) ([]models.Employee, error) {
	out, _, err := s.List(ctx, models.EmployeeFilter{})
	return out, err
}

func (s *employeeRepoStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if s.err != nil {
		return nil, s.err
	}
	if e, ok := s.items[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

func (s *employeeRepoStub) FindByRegistration(ctx context.Context, registration string) (*models.Employee, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, e := range s.items {
		if e.Registration == registration {
			copied := e
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *employeeRepoStub) Delete(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.items, id)
	return nil
}

func (s *employeeRepoStub) Sectors(ctx context.Context) ([]string, error) {
	return []string{"Operações", "TI"}, s.err
}

func newEmployeeService(repo *employeeRepoStub) *EmployeeService {
	svc := NewEmployeeService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestEmployeeCreate(t *testing.T) {
	t.Run("creates with dense empty training map", func(t *testing.T) {
		repo := newEmployeeRepoStub()
		svc := newEmployeeService(repo)

		emp, err := svc.Create(context.Background(), CreateEmployeeRequest{
			Name:         "Maria Silva",
			Registration: "123",
			Sector:       "Operações",
		})
		require.NoError(t, err)
		assert.Equal(t, "123", emp.ID)
		assert.Equal(t, "Empresa Padrão", emp.Company)
		assert.Equal(t, "-", emp.Role)
		assert.Len(t, emp.Trainings, len(catalog.Courses))
		for id, rec := range emp.Trainings {
			assert.Equal(t, models.StatusNotTrained, rec.Status, id)
		}
	})

	t.Run("generates an id without registration", func(t *testing.T) {
		repo := newEmployeeRepoStub()
		svc := newEmployeeService(repo)

		emp, err := svc.Create(context.Background(), CreateEmployeeRequest{Name: "Ana"})
		require.NoError(t, err)
		assert.NotEmpty(t, emp.ID)
		assert.Equal(t, emp.ID, emp.Registration)
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		repo := newEmployeeRepoStub()
		repo.items["123"] = models.Employee{ID: "123", Registration: "123"}
		svc := newEmployeeService(repo)

		_, err := svc.Create(context.Background(), CreateEmployeeRequest{Name: "Outra", Registration: "123"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		svc := newEmployeeService(newEmployeeRepoStub())
		_, err := svc.Create(context.Background(), CreateEmployeeRequest{Registration: "9"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})
}

func TestEmployeeUpdate(t *testing.T) {
	str := func(s string) *string { return &s }

	repo := newEmployeeRepoStub()
	repo.items["123"] = models.Employee{ID: "123", Name: "Maria", Role: "Técnica", Sector: "TI"}
	svc := newEmployeeService(repo)

	t.Run("patches only provided fields", func(t *testing.T) {
		emp, err := svc.Update(context.Background(), "123", UpdateEmployeeRequest{Role: str("Engenheira")})
		require.NoError(t, err)
		assert.Equal(t, "Engenheira", emp.Role)
		assert.Equal(t, "Maria", emp.Name)
		assert.Equal(t, "TI", emp.Sector)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := svc.Update(context.Background(), "123", UpdateEmployeeRequest{Name: str("  ")})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.Update(context.Background(), "nope", UpdateEmployeeRequest{})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	})
}

func TestEmployeeUpdateTraining(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.items["123"] = models.Employee{ID: "123", Name: "Maria", Trainings: models.TrainingMap{}}
	svc := newEmployeeService(repo)

	t.Run("sets completion and derives status", func(t *testing.T) {
		emp, err := svc.UpdateTraining(context.Background(), "123", UpdateTrainingRequest{
			CourseID:       "NR35",
			CompletionDate: "01/05/2025",
		})
		require.NoError(t, err)
		rec := emp.Trainings["NR35"]
		require.NotNil(t, rec.CompletionDate)
		assert.Equal(t, models.StatusValid, rec.Status)
		require.NotNil(t, rec.ExpiryDate)
		assert.Equal(t, time.Date(2027, 5, 1, 0, 0, 0, 0, time.UTC), *rec.ExpiryDate)
	})

	t.Run("blank date clears the training", func(t *testing.T) {
		emp, err := svc.UpdateTraining(context.Background(), "123", UpdateTrainingRequest{CourseID: "NR35"})
		require.NoError(t, err)
		rec := emp.Trainings["NR35"]
		assert.Nil(t, rec.CompletionDate)
		assert.Equal(t, models.StatusNotTrained, rec.Status)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.UpdateTraining(context.Background(), "123", UpdateTrainingRequest{CourseID: "NR99"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	})
}

func TestEmployeeLookupRefreshesStatuses(t *testing.T) {
	// Stored as VALID at sync time but the expiry has since passed.
	completion := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	repo := newEmployeeRepoStub()
	repo.items["1"] = models.Employee{
		ID: "1", Name: "Maria", Registration: "123",
		Trainings: models.TrainingMap{
			"NR10": {CourseID: "NR10", CompletionDate: &completion, ExpiryDate: &expiry, Status: models.StatusValid},
		},
	}
	svc := newEmployeeService(repo)

	emp, err := svc.Lookup(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, emp.Trainings["NR10"].Status)
	// The map is dense even though only one course was stored.
	assert.Len(t, emp.Trainings, len(catalog.Courses))
}

func TestEmployeeDelete(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.items["123"] = models.Employee{ID: "123", Name: "Maria"}
	svc := newEmployeeService(repo)

	require.NoError(t, svc.Delete(context.Background(), "123"))
	assert.Empty(t, repo.items)

	err := svc.Delete(context.Background(), "123")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEmployeeListWrapsRepoErrors(t *testing.T) {
	repo := newEmployeeRepoStub()
	repo.err = errors.New("connection refused")
	svc := newEmployeeService(repo)

	_, _, err := svc.List(context.Background(), models.EmployeeFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
