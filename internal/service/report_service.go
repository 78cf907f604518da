package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brunovinte3/controlsst/internal/catalog"
	"github.com/brunovinte3/controlsst/internal/compliance"
	"github.com/brunovinte3/controlsst/internal/models"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
	"github.com/brunovinte3/controlsst/pkg/export"
	"github.com/brunovinte3/controlsst/pkg/jobs"
	"github.com/brunovinte3/controlsst/pkg/storage"
)

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type companyProfileSource interface {
	CompanyProfile(ctx context.Context) (models.CompanyProfile, error)
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File     *os.File
	Filename string
	Format   models.ReportFormat
}

// ReportService renders the employees x courses compliance matrix into CSV or
// PDF. Generation runs through the background queue; finished artifacts land
// on local storage and are fetched with a signed token.
type ReportService struct {
	employees dashboardEmployeeStore
	profiles  companyProfileSource
	queue     jobDispatcher
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	now       func() time.Time

	mu   sync.Mutex
	jobs map[string]*models.ReportJob
}

// NewReportService constructs the report service. Call Bind afterwards to
// attach the queue (the queue handler needs the service, so wiring is
// two-step).
func NewReportService(employees dashboardEmployeeStore, profiles companyProfileSource, store *storage.LocalStorage, signer *storage.SignedURLSigner, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		employees: employees,
		profiles:  profiles,
		store:     store,
		signer:    signer,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		now:       time.Now,
		jobs:      map[string]*models.ReportJob{},
	}
}

// Bind attaches the dispatcher that feeds Process.
func (s *ReportService) Bind(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob queues one matrix export.
func (s *ReportService) CreateJob(ctx context.Context, format models.ReportFormat) (*models.ReportJob, error) {
	if format != models.ReportFormatCSV && format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report queue not running")
	}

	job := &models.ReportJob{
		ID:        uuid.NewString(),
		Format:    format,
		Status:    models.ReportStatusQueued,
		CreatedAt: s.now(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(format)}); err != nil {
		s.fail(job.ID, "failed to enqueue report job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return s.snapshot(job.ID), nil
}

// GetJob returns job metadata including the download token once finished.
func (s *ReportService) GetJob(id string) (*models.ReportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
	}
	return job, nil
}

// Process is the queue handler: render, store, sign.
func (s *ReportService) Process(ctx context.Context, job jobs.Job) error {
	s.setStatus(job.ID, models.ReportStatusProcessing)

	employees, err := s.employees.SelectAll(ctx)
	if err != nil {
		s.fail(job.ID, "failed to load employees")
		return err
	}
	profile, err := s.profiles.CompanyProfile(ctx)
	if err != nil {
		profile = models.CompanyProfile{Name: "ControlSST"}
	}

	dataset := s.matrixDataset(employees)
	format := models.ReportFormat(job.Type)

	var payload []byte
	var filename string
	switch format {
	case models.ReportFormatPDF:
		title := fmt.Sprintf("%s - Matriz de Conformidade", profile.Name)
		payload, err = s.pdf.Render(dataset, title)
		filename = fmt.Sprintf("matriz_%s.pdf", job.ID)
	default:
		payload, err = s.csv.Render(dataset)
		filename = fmt.Sprintf("matriz_%s.csv", job.ID)
	}
	if err != nil {
		s.fail(job.ID, "failed to render report")
		return err
	}

	if _, err := s.store.Save(filename, payload); err != nil {
		s.fail(job.ID, "failed to store report")
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, filename)
	if err != nil {
		s.fail(job.ID, "failed to sign download url")
		return err
	}

	now := s.now()
	s.mu.Lock()
	if j, ok := s.jobs[job.ID]; ok {
		j.Status = models.ReportStatusFinished
		j.Filename = filename
		j.FinishedAt = &now
		j.DownloadToken = token
		j.ExpiresAt = &expiresAt
	}
	s.mu.Unlock()
	s.logger.Info("report generated", zap.String("job_id", job.ID), zap.String("file", filename))
	return nil
}

// ResolveDownload validates the token and opens the stored artifact.
func (s *ReportService) ResolveDownload(token string) (*ReportDownload, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job := s.snapshot(jobID)
	if job == nil || job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not available")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report artifact missing")
	}
	return &ReportDownload{File: file, Filename: job.Filename, Format: job.Format}, nil
}

// Cleanup removes stored artifacts older than ttl and forgets their jobs.
func (s *ReportService) Cleanup(ttl time.Duration) {
	deleted, err := s.store.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("report cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) == 0 {
		return
	}
	names := make(map[string]struct{}, len(deleted))
	for _, d := range deleted {
		names[d] = struct{}{}
	}
	s.mu.Lock()
	for id, job := range s.jobs {
		if _, gone := names[job.Filename]; gone {
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()
}

// matrixDataset flattens employees x catalog into a tabular dataset, statuses
// recomputed at render time.
func (s *ReportService) matrixDataset(employees []models.Employee) export.Dataset {
	today := s.now()
	headers := []string{"Nome", "Matrícula", "Setor", "Empresa"}
	for _, course := range catalog.Courses {
		headers = append(headers, course.ID)
	}

	rows := make([]map[string]string, 0, len(employees))
	for _, emp := range employees {
		row := map[string]string{
			"Nome":      emp.Name,
			"Matrícula": emp.Registration,
			"Setor":     emp.Sector,
			"Empresa":   emp.Company,
		}
		for _, course := range catalog.Courses {
			var completion *time.Time
			if rec, ok := emp.Trainings[course.ID]; ok {
				completion = rec.CompletionDate
			}
			rec := compliance.Evaluate(course.ID, completion, course.ValidityYears, today)
			row[course.ID] = statusCell(rec)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func statusCell(rec models.TrainingRecord) string {
	if !rec.Completed() {
		return "-"
	}
	if rec.ExpiryDate != nil {
		return fmt.Sprintf("%s (%s)", rec.Status, rec.ExpiryDate.Format("02/01/2006"))
	}
	return string(rec.Status)
}

func (s *ReportService) snapshot(id string) *models.ReportJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ReportService) setStatus(id string, status models.ReportStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = status
	}
}

func (s *ReportService) fail(id, msg string) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		job.Status = models.ReportStatusFailed
		job.ErrorMessage = msg
		job.FinishedAt = &now
	}
}
