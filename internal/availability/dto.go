package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
)

// Query asks whether Quantity units fit inside [Start, End].
type Query struct {
	TenantID         uuid.UUID
	EquipmentID      uuid.UUID
	Start            time.Time
	End              time.Time
	Quantity         int
	ExcludeBookingID *uuid.UUID
}

// EquipmentSummary identifies the checked equipment.
type EquipmentSummary struct {
	ID     uuid.UUID             `json:"id"`
	Name   string                `json:"name"`
	Status enums.EquipmentStatus `json:"status"`
}

// StockFigures are the numbers the decision was made from.
type StockFigures struct {
	Total              int `json:"total"`
	Available          int `json:"available"`
	Maintenance        int `json:"maintenance"`
	Damaged            int `json:"damaged"`
	ReservedInPeriod   int `json:"reservedInPeriod"`
	AvailableForPeriod int `json:"availableForPeriod"`
}

// Result is the outcome of an availability check.
type Result struct {
	Equipment   EquipmentSummary    `json:"equipment"`
	Stock       StockFigures        `json:"stock"`
	Requested   int                 `json:"requested"`
	IsAvailable bool                `json:"isAvailable"`
	Conflicts   []stock.Reservation `json:"conflicts"`
}

// RescheduleInput moves a booking to new dates.
type RescheduleInput struct {
	TenantID    uuid.UUID
	BookingID   uuid.UUID
	ActorUserID uuid.UUID
	Start       time.Time
	End         time.Time
}

// RescheduleResult echoes the booking's new interval and the checks that passed.
type RescheduleResult struct {
	BookingID uuid.UUID           `json:"bookingId"`
	StartDate string              `json:"startDate"`
	EndDate   string              `json:"endDate"`
	Status    enums.BookingStatus `json:"status"`
	Checks    []Result            `json:"checks"`
}

// Shortage describes one equipment that cannot absorb a rescheduled booking.
type Shortage struct {
	EquipmentID        uuid.UUID           `json:"equipmentId"`
	Requested          int                 `json:"requested"`
	AvailableForPeriod int                 `json:"availableForPeriod"`
	Conflicts          []stock.Reservation `json:"conflicts"`
}
