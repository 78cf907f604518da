package models

import "time"

// TrainingStatus is the lifecycle state of one (employee, course) training.
type TrainingStatus string

const (
	StatusValid      TrainingStatus = "VALID"
	StatusExpiring   TrainingStatus = "EXPIRING"
	StatusExpired    TrainingStatus = "EXPIRED"
	StatusNotTrained TrainingStatus = "NOT_TRAINED"
)

// TrainingStatuses lists every status in display order.
var TrainingStatuses = []TrainingStatus{StatusValid, StatusExpiring, StatusExpired, StatusNotTrained}

// Valid reports whether s is one of the known statuses.
func (s TrainingStatus) Valid() bool {
	switch s {
	case StatusValid, StatusExpiring, StatusExpired, StatusNotTrained:
		return true
	}
	return false
}

// TrainingRecord holds the derived compliance state for a single course.
// ExpiryDate and Status are projections of CompletionDate plus the course's
// validity period; they are stored for query convenience but always
// recomputable from CompletionDate.
type TrainingRecord struct {
	CourseID       string         `json:"course_id"`
	CompletionDate *time.Time     `json:"completion_date,omitempty"`
	ExpiryDate     *time.Time     `json:"expiry_date,omitempty"`
	Status         TrainingStatus `json:"status"`
}

// Completed reports whether the course was ever taken.
func (r TrainingRecord) Completed() bool {
	return r.CompletionDate != nil
}
