package models

import "time"

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob tracks one asynchronous compliance-matrix export.
type ReportJob struct {
	ID            string       `json:"id"`
	Format        ReportFormat `json:"format"`
	Status        ReportStatus `json:"status"`
	Filename      string       `json:"filename,omitempty"`
	ErrorMessage  string       `json:"error_message,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	FinishedAt    *time.Time   `json:"finished_at,omitempty"`
	DownloadToken string       `json:"download_token,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
}
