package compliance

import (
	"time"

	"github.com/brunovinte3/controlsst/internal/models"
)

// ExpiringWindowDays is the look-ahead inside which a valid training is
// flagged EXPIRING. Fixed business rule, not configurable.
const ExpiringWindowDays = 60

// DaysRemaining returns the whole days between today and expiry, both
// truncated to midnight. Positive means the expiry is in the future, zero
// means due today. The second return is false when expiry is absent.
func DaysRemaining(expiry *time.Time, today time.Time) (int, bool) {
	if expiry == nil {
		return 0, false
	}
	diff := Midnight(*expiry).Sub(Midnight(today))
	return int(diff / (24 * time.Hour)), true
}

// ExpiryDate advances completion by validityYears calendar years, keeping the
// month and day. A Feb-29 completion anchored on a non-leap target year clamps
// to Feb-28 rather than rolling into March. Nil is returned when completion is
// absent or the course never expires.
func ExpiryDate(completion *time.Time, validityYears *int) *time.Time {
	if completion == nil || validityYears == nil {
		return nil
	}
	c := Midnight(*completion)
	year := c.Year() + *validityYears
	day := c.Day()
	if c.Month() == time.February && day == 29 && daysIn(year, time.February) < 29 {
		day = 28
	}
	expiry := time.Date(year, c.Month(), day, 0, 0, 0, 0, time.UTC)
	return &expiry
}

// Status derives the lifecycle status of a training from its completion date
// and the course validity, evaluated at the given day. Pure: identical inputs
// always produce identical output, so a persisted status is only ever a cache
// of this function.
func Status(completion *time.Time, validityYears *int, today time.Time) models.TrainingStatus {
	if completion == nil {
		return models.StatusNotTrained
	}
	if validityYears == nil {
		return models.StatusValid
	}
	expiry := ExpiryDate(completion, validityYears)
	days, ok := DaysRemaining(expiry, today)
	if !ok {
		return models.StatusValid
	}
	switch {
	case days < 0:
		return models.StatusExpired
	case days <= ExpiringWindowDays:
		return models.StatusExpiring
	default:
		return models.StatusValid
	}
}

// Evaluate builds the full TrainingRecord for one course cell.
func Evaluate(courseID string, completion *time.Time, validityYears *int, today time.Time) models.TrainingRecord {
	rec := models.TrainingRecord{
		CourseID: courseID,
		Status:   Status(completion, validityYears, today),
	}
	if completion != nil {
		c := Midnight(*completion)
		rec.CompletionDate = &c
		rec.ExpiryDate = ExpiryDate(&c, validityYears)
	}
	return rec
}
