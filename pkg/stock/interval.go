package stock

import (
	"time"

	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

// Interval is an inclusive range of rental days.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewInterval normalizes both ends to UTC days and rejects an end before the start.
func NewInterval(start, end time.Time) (Interval, error) {
	if start.IsZero() || end.IsZero() {
		return Interval{}, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	iv := Interval{Start: Day(start), End: Day(end)}
	if iv.Start.After(iv.End) {
		return Interval{}, pkgerrors.New(pkgerrors.CodeValidation, "start date must not be after end date").
			WithDetails(map[string]any{"startDate": iv.Start.Format(time.DateOnly), "endDate": iv.End.Format(time.DateOnly)})
	}
	return iv, nil
}

// Overlaps reports whether the two ranges share at least one day. Touching
// endpoints count as overlapping.
func (iv Interval) Overlaps(other Interval) bool {
	return !iv.Start.After(other.End) && !iv.End.Before(other.Start)
}
