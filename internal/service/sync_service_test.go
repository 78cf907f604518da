package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunovinte3/controlsst/internal/catalog"
	"github.com/brunovinte3/controlsst/internal/models"
	"github.com/brunovinte3/controlsst/internal/normalize"
	"github.com/brunovinte3/controlsst/pkg/config"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

type employeeStoreStub struct {
	mu       sync.Mutex
	upserted map[string]models.Employee
	core     map[string]models.Employee

	failFull map[string]error
	failCore map[string]error
	block    chan struct{}
}

func newEmployeeStoreStub() *employeeStoreStub {
	return &employeeStoreStub{
		upserted: map[string]models.Employee{},
		core:     map[string]models.Employee{},
	}
}

func (s *employeeStoreStub) Upsert(ctx context.Context, emp *models.Employee) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFull[emp.ID]; ok {
		return err
	}
	s.upserted[emp.ID] = *emp
	return nil
}

func (s *employeeStoreStub) UpsertCore(ctx context.Context, emp *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failCore[emp.ID]; ok {
		return err
	}
	s.core[emp.ID] = *emp
	return nil
}

type settingsStoreStub struct {
	mu     sync.Mutex
	values map[string]json.RawMessage
	getErr error
}

func newSettingsStoreStub() *settingsStoreStub {
	return &settingsStoreStub{values: map[string]json.RawMessage{}}
}

func (s *settingsStoreStub) Get(ctx context.Context, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	raw, ok := s.values[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return raw, nil
}

func (s *settingsStoreStub) Upsert(ctx context.Context, key string, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *settingsStoreStub) setString(key, value string) {
	raw, _ := json.Marshal(value)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw
}

type fetcherStub struct {
	rows []normalize.Row
	err  error
	url  string
}

func (f *fetcherStub) FetchRows(ctx context.Context, url string) ([]normalize.Row, error) {
	f.url = url
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type observerStub struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *observerStub) ObserveSync(outcome string, rows int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

type invalidatorStub struct{ calls int }

func (i *invalidatorStub) Invalidate(ctx context.Context) { i.calls++ }

func newSyncService(fetcher *fetcherStub, employees *employeeStoreStub, settings *settingsStoreStub) (*SyncService, *observerStub, *invalidatorStub) {
	observer := &observerStub{}
	invalidator := &invalidatorStub{}
	svc := NewSyncService(
		fetcher,
		employees,
		settings,
		normalize.New(catalog.Courses),
		config.SyncConfig{SourceURL: "https://sheets.test/rows", FetchTimeout: time.Second},
		nil,
		observer,
		invalidator,
	)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, observer, invalidator
}

func TestSyncRunSuccess(t *testing.T) {
	fetcher := &fetcherStub{rows: []normalize.Row{
		{"Nome": "Maria", "Matricula": "123", "NR35": "01/05/2025"},
		{"Nome": "José", "Matricula": "456"},
	}}
	employees := newEmployeeStoreStub()
	settings := newSettingsStoreStub()
	svc, observer, invalidator := newSyncService(fetcher, employees, settings)

	outcome, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, 2, outcome.RowsFetched)
	assert.Equal(t, 2, outcome.Upserted)
	assert.Zero(t, outcome.Rejected)
	assert.Len(t, employees.upserted, 2)

	raw, err := settings.Get(context.Background(), models.SettingLastSync)
	require.NoError(t, err)
	var stamp string
	require.NoError(t, json.Unmarshal(raw, &stamp))
	assert.Equal(t, "2025-06-01T12:00:00Z", stamp)

	assert.Equal(t, 1, invalidator.calls)
	assert.Equal(t, []string{"succeeded"}, observer.outcomes)
}

func TestSyncRunIdempotent(t *testing.T) {
	fetcher := &fetcherStub{rows: []normalize.Row{
		{"Nome": "Maria", "Matricula": "123"},
	}}
	employees := newEmployeeStoreStub()
	settings := newSettingsStoreStub()
	svc, _, _ := newSyncService(fetcher, employees, settings)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	// Same stable id both times, so the store still holds one record.
	assert.Len(t, employees.upserted, 1)
	assert.Contains(t, employees.upserted, "123")
}

func TestSyncRunSettingsURLWins(t *testing.T) {
	fetcher := &fetcherStub{rows: []normalize.Row{{"Nome": "Maria"}}}
	settings := newSettingsStoreStub()
	settings.setString(models.SettingSheetsURL, "https://operator.test/rows")
	svc, _, _ := newSyncService(fetcher, newEmployeeStoreStub(), settings)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://operator.test/rows", fetcher.url)
}

func TestSyncRunNotConfigured(t *testing.T) {
	fetcher := &fetcherStub{}
	settings := newSettingsStoreStub()
	svc, _, _ := newSyncService(fetcher, newEmployeeStoreStub(), settings)
	svc.cfg.SourceURL = ""

	outcome, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "SYNC_NOT_CONFIGURED", appErrors.FromError(err).Code)
	assert.False(t, outcome.Success)
	assert.Empty(t, fetcher.url)
}

func TestSyncRunFetchFailureKeepsMarker(t *testing.T) {
	settings := newSettingsStoreStub()
	settings.setString(models.SettingLastSync, "2025-05-20T08:00:00Z")
	fetcher := &fetcherStub{err: appErrors.ErrSyncAuthorization}
	svc, observer, invalidator := newSyncService(fetcher, newEmployeeStoreStub(), settings)

	outcome, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "SYNC_AUTHORIZATION", appErrors.FromError(err).Code)
	assert.Equal(t, "SYNC_AUTHORIZATION", outcome.ErrorCode)

	// Marker untouched after the failed attempt.
	status := svc.Status(context.Background())
	require.NotNil(t, status.LastSync)
	assert.Equal(t, "2025-05-20T08:00:00Z", status.LastSync.Format(time.RFC3339))

	assert.Zero(t, invalidator.calls)
	assert.Equal(t, []string{"sync_authorization"}, observer.outcomes)
}

func TestSyncRunUnrecognizedRowsIsSchema(t *testing.T) {
	fetcher := &fetcherStub{rows: []normalize.Row{
		{"Coluna A": "x"},
		{"Coluna B": "y"},
	}}
	employees := newEmployeeStoreStub()
	svc, _, _ := newSyncService(fetcher, employees, newSettingsStoreStub())

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "SYNC_SCHEMA", appErrors.FromError(err).Code)
	assert.Empty(t, employees.upserted)
}

func TestSyncRunDegradedFallback(t *testing.T) {
	fetcher := &fetcherStub{rows: []normalize.Row{
		{"Nome": "Maria", "Matricula": "123", "Foto": "https://img.test/a.jpg"},
		{"Nome": "José", "Matricula": "456"},
	}}
	employees := newEmployeeStoreStub()
	employees.failFull = map[string]error{"123": errors.New("photo_url constraint")}
	svc, _, _ := newSyncService(fetcher, employees, newSettingsStoreStub())

	outcome, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, 2, outcome.Upserted)
	assert.Equal(t, 1, outcome.Degraded)
	assert.Zero(t, outcome.Rejected)
	assert.Contains(t, employees.core, "123")
	assert.Contains(t, employees.upserted, "456")
}

func TestSyncRunAllRejected(t *testing.T) {
	fetcher := &fetcherStub{rows: []normalize.Row{
		{"Nome": "Maria", "Matricula": "123"},
	}}
	employees := newEmployeeStoreStub()
	storeErr := errors.New("disk full")
	employees.failFull = map[string]error{"123": storeErr}
	employees.failCore = map[string]error{"123": storeErr}
	settings := newSettingsStoreStub()
	svc, _, _ := newSyncService(fetcher, employees, settings)

	outcome, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "SYNC_SCHEMA", appErrors.FromError(err).Code)
	assert.False(t, outcome.Success)
	assert.Equal(t, 1, outcome.Rejected)

	// No marker after a run that persisted nothing.
	assert.Nil(t, svc.Status(context.Background()).LastSync)
}

func TestSyncRunPartialRejection(t *testing.T) {
	fetcher := &fetcherStub{rows: []normalize.Row{
		{"Nome": "Maria", "Matricula": "123"},
		{"Nome": "José", "Matricula": "456"},
	}}
	employees := newEmployeeStoreStub()
	storeErr := errors.New("bad record")
	employees.failFull = map[string]error{"456": storeErr}
	employees.failCore = map[string]error{"456": storeErr}
	svc, _, _ := newSyncService(fetcher, employees, newSettingsStoreStub())

	outcome, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, 1, outcome.Upserted)
	assert.Equal(t, 1, outcome.Rejected)
}

func TestSyncRunSerialized(t *testing.T) {
	fetcher := &fetcherStub{rows: []normalize.Row{
		{"Nome": "Maria", "Matricula": "123"},
	}}
	employees := newEmployeeStoreStub()
	employees.block = make(chan struct{})
	svc, _, _ := newSyncService(fetcher, employees, newSettingsStoreStub())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Run(context.Background())
		done <- err
	}()

	// Wait until the first run is inside persist, then trigger a second one.
	require.Eventually(t, func() bool {
		return svc.Status(context.Background()).InProgress
	}, time.Second, 5*time.Millisecond)

	_, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "SYNC_IN_PROGRESS", appErrors.FromError(err).Code)

	close(employees.block)
	require.NoError(t, <-done)

	// The guard resets, so the next run goes through.
	employees.block = nil
	_, err = svc.Run(context.Background())
	assert.NoError(t, err)
}

func TestSyncStatusState(t *testing.T) {
	t.Run("idle before any run", func(t *testing.T) {
		svc, _, _ := newSyncService(&fetcherStub{}, newEmployeeStoreStub(), newSettingsStoreStub())
		assert.Equal(t, models.SyncIdle, svc.Status(context.Background()).State)
	})

	t.Run("succeeded after a clean run", func(t *testing.T) {
		fetcher := &fetcherStub{rows: []normalize.Row{
			{"Nome": "Maria", "Matricula": "123"},
		}}
		svc, _, _ := newSyncService(fetcher, newEmployeeStoreStub(), newSettingsStoreStub())

		_, err := svc.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, models.SyncSucceeded, svc.Status(context.Background()).State)
	})

	t.Run("failed after a fetch error", func(t *testing.T) {
		fetcher := &fetcherStub{err: appErrors.ErrSyncAuthorization}
		svc, _, _ := newSyncService(fetcher, newEmployeeStoreStub(), newSettingsStoreStub())

		_, err := svc.Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, models.SyncFailed, svc.Status(context.Background()).State)
	})

	t.Run("persisting while the store is busy", func(t *testing.T) {
		fetcher := &fetcherStub{rows: []normalize.Row{
			{"Nome": "Maria", "Matricula": "123"},
		}}
		employees := newEmployeeStoreStub()
		employees.block = make(chan struct{})
		svc, _, _ := newSyncService(fetcher, employees, newSettingsStoreStub())

		done := make(chan error, 1)
		go func() {
			_, err := svc.Run(context.Background())
			done <- err
		}()

		require.Eventually(t, func() bool {
			return svc.Status(context.Background()).State == models.SyncPersisting
		}, time.Second, 5*time.Millisecond)

		close(employees.block)
		require.NoError(t, <-done)
		assert.Equal(t, models.SyncSucceeded, svc.Status(context.Background()).State)
	})
}

func TestImportRows(t *testing.T) {
	t.Run("persists without touching the marker", func(t *testing.T) {
		employees := newEmployeeStoreStub()
		settings := newSettingsStoreStub()
		svc, _, invalidator := newSyncService(&fetcherStub{}, employees, settings)

		outcome, err := svc.ImportRows(context.Background(), []normalize.Row{
			{"Nome": "Maria", "Matricula": "123"},
		})
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Equal(t, 1, outcome.Upserted)
		assert.Len(t, employees.upserted, 1)
		assert.Equal(t, 1, invalidator.calls)

		assert.Nil(t, svc.Status(context.Background()).LastSync)
	})

	t.Run("empty batch", func(t *testing.T) {
		svc, _, _ := newSyncService(&fetcherStub{}, newEmployeeStoreStub(), newSettingsStoreStub())
		_, err := svc.ImportRows(context.Background(), nil)
		require.Error(t, err)
		assert.Equal(t, "SYNC_EMPTY", appErrors.FromError(err).Code)
	})

	t.Run("unrecognized rows", func(t *testing.T) {
		svc, _, _ := newSyncService(&fetcherStub{}, newEmployeeStoreStub(), newSettingsStoreStub())
		_, err := svc.ImportRows(context.Background(), []normalize.Row{{"Qualquer": "x"}})
		require.Error(t, err)
		assert.Equal(t, "SYNC_SCHEMA", appErrors.FromError(err).Code)
	})
}
