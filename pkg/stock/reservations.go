package stock

import (
	"time"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/google/uuid"
)

// Source tags which booking shape produced a reservation.
type Source string

const (
	// SourceLegacy is a booking that references one equipment directly.
	SourceLegacy Source = "legacy"
	// SourceItem is a booking line item with an explicit quantity.
	SourceItem Source = "item"
)

// Reservation is one capacity claim against an equipment, whatever its shape.
type Reservation struct {
	Source    Source              `json:"type"`
	BookingID uuid.UUID           `json:"bookingId"`
	Start     time.Time           `json:"startDate"`
	End       time.Time           `json:"endDate"`
	Status    enums.BookingStatus `json:"status"`
	Customer  string              `json:"customer"`
	Quantity  int                 `json:"quantity"`
}

// Contribution is the number of units the reservation holds. Legacy bookings
// always hold exactly one.
func (r Reservation) Contribution() int {
	if r.Source == SourceLegacy {
		return 1
	}
	return r.Quantity
}

// Interval returns the reservation's day range.
func (r Reservation) Interval() Interval {
	return Interval{Start: Day(r.Start), End: Day(r.End)}
}

// Fold sums the capacity held inside window in a single pass over both shapes.
// Cancelled/completed bookings and the excluded booking are skipped.
func Fold(window Interval, reservations []Reservation, exclude *uuid.UUID) (int, []Reservation) {
	reserved := 0
	conflicts := make([]Reservation, 0, len(reservations))
	for _, r := range reservations {
		if !r.Status.ConsumesCapacity() {
			continue
		}
		if exclude != nil && r.BookingID == *exclude {
			continue
		}
		if !window.Overlaps(r.Interval()) {
			continue
		}
		if r.Source == SourceLegacy {
			r.Quantity = 1
		}
		reserved += r.Contribution()
		conflicts = append(conflicts, r)
	}
	return reserved, conflicts
}

// PeriodCapacity is the capacity left for a window once maintenance, damage and
// overlapping reservations are subtracted from total.
func PeriodCapacity(b Buckets, reservedInPeriod int) int {
	return b.Total - b.Maintenance - b.Damaged - reservedInPeriod
}
