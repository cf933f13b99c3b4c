package service

import (
	"fmt"
	"time"

	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// MaxEntryDuration caps a single time entry.
const MaxEntryDuration = 24 * time.Hour

// Duration is a worked interval floored to whole minutes.
type Duration struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

// DurationFromMinutes splits total minutes into hours and minutes.
func DurationFromMinutes(total int) Duration {
	if total < 0 {
		total = 0
	}
	return Duration{Hours: total / 60, Minutes: total % 60, TotalMinutes: total}
}

// String renders the duration as "1h 30m".
func (d Duration) String() string {
	return fmt.Sprintf("%dh %dm", d.Hours, d.Minutes)
}

// CalculateDuration returns the floored interval between checkIn and checkOut.
// checkOut must be strictly after checkIn, the result at least one minute and at most 24h.
func CalculateDuration(checkIn, checkOut time.Time) (Duration, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return Duration{}, apperrors.NewValidationError("check-in and check-out are required", nil)
	}
	if !checkOut.After(checkIn) {
		return Duration{}, apperrors.NewValidationError("check-out must be after check-in", map[string]any{
			"check_in":  checkIn,
			"check_out": checkOut,
		})
	}
	elapsed := checkOut.Sub(checkIn)
	if elapsed > MaxEntryDuration {
		return Duration{}, apperrors.NewValidationError("time entry exceeds 24 hours", map[string]any{"minutes": int(elapsed / time.Minute)})
	}
	total := int(elapsed / time.Minute)
	if total < 1 {
		return Duration{}, apperrors.NewValidationError("time entry must be at least one minute", nil)
	}
	return DurationFromMinutes(total), nil
}
