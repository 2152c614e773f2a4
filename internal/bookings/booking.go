package bookings

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
)

// Demand returns how many units of each equipment the booking holds. Items win
// over the legacy column for the same equipment.
func Demand(booking *models.Booking) map[uuid.UUID]int {
	demand := make(map[uuid.UUID]int)
	if booking == nil {
		return demand
	}
	for _, item := range booking.Items {
		demand[item.EquipmentID] += item.Quantity
	}
	if booking.EquipmentID != nil {
		if _, listed := demand[*booking.EquipmentID]; !listed {
			demand[*booking.EquipmentID] = 1
		}
	}
	return demand
}

// References reports whether the booking holds the equipment in either shape.
func References(booking *models.Booking, equipmentID uuid.UUID) bool {
	_, ok := Demand(booking)[equipmentID]
	return ok
}
