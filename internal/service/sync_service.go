package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/brunovinte3/controlsst/internal/models"
	"github.com/brunovinte3/controlsst/internal/normalize"
	"github.com/brunovinte3/controlsst/pkg/config"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
)

type syncEmployeeStore interface {
	Upsert(ctx context.Context, emp *models.Employee) error
	UpsertCore(ctx context.Context, emp *models.Employee) error
}

type syncSettingsStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Upsert(ctx context.Context, key string, value json.RawMessage) error
}

type rowFetcher interface {
	FetchRows(ctx context.Context, url string) ([]normalize.Row, error)
}

type syncObserver interface {
	ObserveSync(outcome string, rows int)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// SyncService reconciles the external spreadsheet with the employee store.
// One attempt walks FETCHING -> NORMALIZING -> PERSISTING; attempts are
// serialized by an in-progress flag, so an overlapping trigger is rejected
// instead of racing the running one on the same upsert keys.
type SyncService struct {
	fetcher    rowFetcher
	employees  syncEmployeeStore
	settings   syncSettingsStore
	normalizer *normalize.Normalizer
	cfg        config.SyncConfig
	logger     *zap.Logger
	metrics    syncObserver
	caches     cacheInvalidator

	inProgress atomic.Bool
	state      atomic.Value
	now        func() time.Time
}

// NewSyncService constructs the reconciler. metrics and caches may be nil.
func NewSyncService(fetcher rowFetcher, employees syncEmployeeStore, settings syncSettingsStore, normalizer *normalize.Normalizer, cfg config.SyncConfig, logger *zap.Logger, metrics syncObserver, caches cacheInvalidator) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		fetcher:    fetcher,
		employees:  employees,
		settings:   settings,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger,
		metrics:    metrics,
		caches:     caches,
		now:        time.Now,
	}
}

// Run executes one full reconciliation. The last-sync marker is written only
// on success, so staleness indicators stay accurate after failed attempts.
// Running the same sync twice against unchanged source data leaves the store
// unchanged: records are upserted under stable ids, never appended.
func (s *SyncService) Run(ctx context.Context) (*models.SyncOutcome, error) {
	if !s.inProgress.CompareAndSwap(false, true) {
		return nil, appErrors.ErrSyncInProgress
	}
	defer s.inProgress.Store(false)

	url := s.sourceURL(ctx)
	if url == "" {
		return s.failed(appErrors.ErrSyncNotConfigured)
	}

	s.setState(models.SyncFetching)
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	rows, err := s.fetcher.FetchRows(fetchCtx, url)
	if err != nil {
		appErr := appErrors.FromError(err)
		s.logger.Warn("sync fetch failed", zap.String("code", appErr.Code), zap.Error(err))
		return s.failed(appErr)
	}

	s.setState(models.SyncNormalizing)
	today := s.now()
	employees := s.normalizer.Employees(rows, today)
	if !normalize.Recognized(employees) {
		// Headers matched nothing we know: treat as a schema failure rather
		// than flooding the store with placeholder names.
		return s.failed(appErrors.Clone(appErrors.ErrSyncSchema, "no recognizable columns in source rows"))
	}

	s.setState(models.SyncPersisting)
	outcome := s.persist(ctx, employees)
	outcome.RowsFetched = len(rows)

	if outcome.Upserted == 0 {
		err := appErrors.Clone(appErrors.ErrSyncSchema, "store rejected every record")
		outcome.Success = false
		outcome.ErrorCode = err.Code
		s.setState(models.SyncFailed)
		s.observe(outcome)
		return outcome, err
	}

	if err := s.writeMarker(ctx, today); err != nil {
		s.logger.Error("failed to write last-sync marker", zap.Error(err))
	}
	if s.caches != nil {
		s.caches.Invalidate(ctx)
	}

	outcome.Success = true
	s.setState(models.SyncSucceeded)
	s.observe(outcome)
	s.logger.Info("sync succeeded",
		zap.Int("rows", outcome.RowsFetched),
		zap.Int("upserted", outcome.Upserted),
		zap.Int("degraded", outcome.Degraded),
		zap.Int("rejected", outcome.Rejected))
	return outcome, nil
}

// ImportRows pushes already-fetched raw rows (from a pasted table) through
// the same normalize -> persist pipeline. The last-sync marker tracks the
// external source only, so a manual import leaves it untouched.
func (s *SyncService) ImportRows(ctx context.Context, rows []normalize.Row) (*models.SyncOutcome, error) {
	if !s.inProgress.CompareAndSwap(false, true) {
		return nil, appErrors.ErrSyncInProgress
	}
	defer s.inProgress.Store(false)

	if len(rows) == 0 {
		return s.failed(appErrors.ErrSyncEmpty)
	}

	s.setState(models.SyncNormalizing)
	employees := s.normalizer.Employees(rows, s.now())
	if !normalize.Recognized(employees) {
		return s.failed(appErrors.Clone(appErrors.ErrSyncSchema, "no recognizable columns in pasted rows"))
	}

	s.setState(models.SyncPersisting)
	outcome := s.persist(ctx, employees)
	outcome.RowsFetched = len(rows)
	if outcome.Upserted == 0 {
		err := appErrors.Clone(appErrors.ErrSyncSchema, "store rejected every record")
		outcome.ErrorCode = err.Code
		s.setState(models.SyncFailed)
		s.observe(outcome)
		return outcome, err
	}
	if s.caches != nil {
		s.caches.Invalidate(ctx)
	}
	outcome.Success = true
	s.setState(models.SyncSucceeded)
	s.observe(outcome)
	return outcome, nil
}

// RunPeriodic triggers Run on the given interval until ctx is cancelled.
// A tick that lands while a manual sync is running is skipped, not queued.
func (s *SyncService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx); err != nil {
				appErr := appErrors.FromError(err)
				if appErr.Code == appErrors.ErrSyncInProgress.Code {
					continue
				}
				s.logger.Warn("scheduled sync failed", zap.String("code", appErr.Code), zap.Error(err))
			}
		}
	}
}

// Status reports whether a sync is running, which phase it is in, and when
// the last one succeeded.
func (s *SyncService) Status(ctx context.Context) models.SyncStatus {
	status := models.SyncStatus{
		InProgress: s.inProgress.Load(),
		State:      s.currentState(),
	}
	if ts := s.lastSync(ctx); ts != nil {
		status.LastSync = ts
	}
	return status
}

// persist upserts every employee, all-or-nothing per record. A record whose
// full upsert fails is retried without the optional photo field before being
// counted as rejected, so a store-compatibility problem on one column never
// blocks the rest of the batch.
func (s *SyncService) persist(ctx context.Context, employees []models.Employee) *models.SyncOutcome {
	outcome := &models.SyncOutcome{FinishedAt: s.now()}
	for i := range employees {
		emp := &employees[i]
		if err := s.employees.Upsert(ctx, emp); err != nil {
			if coreErr := s.employees.UpsertCore(ctx, emp); coreErr != nil {
				outcome.Rejected++
				s.logger.Warn("record rejected by store",
					zap.String("employee_id", emp.ID), zap.Error(coreErr))
				continue
			}
			outcome.Degraded++
			s.logger.Warn("record persisted without optional fields",
				zap.String("employee_id", emp.ID), zap.Error(err))
		}
		outcome.Upserted++
	}
	outcome.FinishedAt = s.now()
	return outcome
}

func (s *SyncService) sourceURL(ctx context.Context) string {
	if raw, err := s.settings.Get(ctx, models.SettingSheetsURL); err == nil {
		var url string
		if json.Unmarshal(raw, &url) == nil && strings.TrimSpace(url) != "" {
			return url
		}
	}
	return strings.TrimSpace(s.cfg.SourceURL)
}

func (s *SyncService) lastSync(ctx context.Context) *time.Time {
	raw, err := s.settings.Get(ctx, models.SettingLastSync)
	if err != nil {
		return nil
	}
	var stamp string
	if json.Unmarshal(raw, &stamp) != nil {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return nil
	}
	return &ts
}

func (s *SyncService) writeMarker(ctx context.Context, ts time.Time) error {
	value, _ := json.Marshal(ts.UTC().Format(time.RFC3339))
	return s.settings.Upsert(ctx, models.SettingLastSync, value)
}

func (s *SyncService) failed(err *appErrors.Error) (*models.SyncOutcome, error) {
	outcome := &models.SyncOutcome{ErrorCode: err.Code, FinishedAt: s.now()}
	s.setState(models.SyncFailed)
	s.observe(outcome)
	return outcome, err
}

func (s *SyncService) setState(st models.SyncState) {
	s.state.Store(st)
}

func (s *SyncService) currentState() models.SyncState {
	if st, ok := s.state.Load().(models.SyncState); ok {
		return st
	}
	return models.SyncIdle
}

func (s *SyncService) observe(outcome *models.SyncOutcome) {
	if s.metrics == nil {
		return
	}
	label := "failed"
	if outcome.Success {
		label = "succeeded"
	}
	if outcome.ErrorCode != "" {
		label = strings.ToLower(outcome.ErrorCode)
	}
	s.metrics.ObserveSync(label, outcome.RowsFetched)
}
