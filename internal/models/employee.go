package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TrainingMap maps course id -> TrainingRecord. Stored as a JSONB column so an
// employee row carries the full compliance picture in one record.
type TrainingMap map[string]TrainingRecord

// Value implements driver.Valuer for JSONB storage.
func (m TrainingMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB storage.
func (m *TrainingMap) Scan(src interface{}) error {
	if src == nil {
		*m = TrainingMap{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported training map source type %T", src)
	}
	if len(data) == 0 {
		*m = TrainingMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Employee is the canonical workforce record. ID is stable across repeated
// imports: an externally supplied id wins, otherwise the registration number
// is used, so re-syncing the same sheet upserts instead of duplicating.
type Employee struct {
	ID           string      `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Registration string      `db:"registration" json:"registration"`
	Role         string      `db:"role" json:"role"`
	Sector       string      `db:"sector" json:"sector"`
	Company      string      `db:"company" json:"company"`
	PhotoURL     string      `db:"photo_url" json:"photo_url,omitempty"`
	Trainings    TrainingMap `db:"trainings" json:"trainings"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures filtering criteria for listing employees.
type EmployeeFilter struct {
	Search    string
	Sector    string
	Company   string
	CourseID  string
	Status    TrainingStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TrainingPhoto is an evidence photo attached to the training program.
type TrainingPhoto struct {
	ID      string `db:"id" json:"id"`
	URL     string `db:"url" json:"url"`
	Caption string `db:"caption" json:"caption"`
}
