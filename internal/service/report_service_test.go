package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brunovinte3/controlsst/internal/catalog"
	"github.com/brunovinte3/controlsst/internal/models"
	appErrors "github.com/brunovinte3/controlsst/pkg/errors"
	"github.com/brunovinte3/controlsst/pkg/jobs"
	"github.com/brunovinte3/controlsst/pkg/storage"
)

// inlineQueue runs each enqueued job synchronously through the handler.
type inlineQueue struct {
	handler jobs.Handler
	err     error
}

func (q *inlineQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	return q.handler(context.Background(), job)
}

type companyProfileStub struct{ profile models.CompanyProfile }

func (s *companyProfileStub) CompanyProfile(ctx context.Context) (models.CompanyProfile, error) {
	return s.profile, nil
}

func newReportService(t *testing.T, employees []models.Employee) *ReportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test_secret", time.Hour)

	svc := NewReportService(
		&selectAllStub{employees: employees},
		&companyProfileStub{profile: models.CompanyProfile{Name: "Indústria Alfa"}},
		store,
		signer,
		nil,
	)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	svc.Bind(&inlineQueue{handler: svc.Process})
	return svc
}

func TestReportCSVEndToEnd(t *testing.T) {
	completion := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	svc := newReportService(t, []models.Employee{
		{ID: "1", Name: "Maria", Registration: "123", Sector: "Operações", Company: "Alfa", Trainings: models.TrainingMap{
			"NR35": {CourseID: "NR35", CompletionDate: &completion},
		}},
	})

	job, err := svc.CreateJob(context.Background(), models.ReportFormatCSV)
	require.NoError(t, err)

	finished, err := svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, finished.Status)
	assert.NotEmpty(t, finished.DownloadToken)
	require.NotNil(t, finished.ExpiresAt)

	download, err := svc.ResolveDownload(finished.DownloadToken)
	require.NoError(t, err)
	defer download.File.Close()

	buf := make([]byte, 1<<16)
	n, _ := download.File.Read(buf)
	content := strings.TrimPrefix(string(buf[:n]), "\uFEFF")

	header := strings.SplitN(content, "\n", 2)[0]
	assert.True(t, strings.HasPrefix(header, "Nome,Matrícula,Setor,Empresa"))
	for _, course := range catalog.Courses {
		assert.Contains(t, header, course.ID)
	}
	assert.Contains(t, content, "Maria")
	assert.Contains(t, content, "VALID (01/05/2027)")
}

func TestReportPDFEndToEnd(t *testing.T) {
	svc := newReportService(t, []models.Employee{
		{ID: "1", Name: "Maria", Registration: "123"},
	})

	job, err := svc.CreateJob(context.Background(), models.ReportFormatPDF)
	require.NoError(t, err)

	finished, err := svc.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, finished.Status)
	assert.True(t, strings.HasSuffix(finished.Filename, ".pdf"))

	download, err := svc.ResolveDownload(finished.DownloadToken)
	require.NoError(t, err)
	defer download.File.Close()

	magic := make([]byte, 4)
	_, err = download.File.Read(magic)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(magic))
}

func TestReportValidation(t *testing.T) {
	svc := newReportService(t, nil)

	t.Run("unknown format", func(t *testing.T) {
		_, err := svc.CreateJob(context.Background(), models.ReportFormat("xlsx"))
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})

	t.Run("unknown job id", func(t *testing.T) {
		_, err := svc.GetJob("missing")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	})

	t.Run("bad download token", func(t *testing.T) {
		_, err := svc.ResolveDownload("forged.token")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	})
}
