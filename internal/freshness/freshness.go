// internal/freshness/freshness.go
package freshness

import (
	"fmt"
	"time"

	"github.com/mlft9/perimapp/internal/models"
)

// DateLayout is the calendar-date format used for expiration dates, both on
// the wire and in the persisted blob.
const DateLayout = "2006-01-02"

// WarningWindowDays is the inclusive sliding window for the warning status.
const WarningWindowDays = 7

// Classification is the derived freshness of a single expiration date.
type Classification struct {
	Status        models.FreshnessStatus
	DaysRemaining int
}

// Classify maps an expiration date to its freshness status relative to now.
// Both sides are compared at calendar-day granularity: a date strictly before
// today is expired, a date between today and today+7 inclusive is warning,
// anything later is good. An item expiring today is therefore warning, not
// expired.
func Classify(expirationDate string, now time.Time) (Classification, error) {
	exp, err := ParseDate(expirationDate)
	if err != nil {
		return Classification{}, err
	}

	days := daysBetween(now, exp)
	switch {
	case days < 0:
		return Classification{Status: models.StatusExpired, DaysRemaining: days}, nil
	case days <= WarningWindowDays:
		return Classification{Status: models.StatusWarning, DaysRemaining: days}, nil
	default:
		return Classification{Status: models.StatusGood, DaysRemaining: days}, nil
	}
}

// ParseDate parses a calendar date in DateLayout form.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiration date %q: %w", value, err)
	}
	return t, nil
}

// daysBetween returns the whole-day calendar difference to - from. Both
// instants are normalized to UTC midnights so the result is an exact multiple
// of 24 hours regardless of time-of-day or DST transitions.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}
