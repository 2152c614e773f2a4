package units

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// UnitRef addresses one unit under its equipment.
type UnitRef struct {
	TenantID    uuid.UUID
	EquipmentID uuid.UUID
	UnitID      uuid.UUID
}

// CreateUnitInput registers a physical unit.
type CreateUnitInput struct {
	TenantID             uuid.UUID
	EquipmentID          uuid.UUID
	ActorUserID          uuid.UUID
	SerialNumber         string
	InternalCode         *string
	Status               enums.UnitStatus
	AcquiredAt           *time.Time
	AcquisitionCostCents *int64
	WarrantyExpiresAt    *time.Time
	Notes                *string
}

// UpdateUnitInput edits metadata and optionally the status in one call.
type UpdateUnitInput struct {
	UnitRef
	ActorUserID       uuid.UUID
	Status            *enums.UnitStatus
	InternalCode      *string
	Notes             *string
	WarrantyExpiresAt *time.Time
}

// AssignUnitInput attaches an AVAILABLE unit to a booking.
type AssignUnitInput struct {
	UnitRef
	ActorUserID uuid.UUID
	BookingID   uuid.UUID
}

// ReturnUnitInput closes the unit's open rental. Condition defaults to AVAILABLE.
type ReturnUnitInput struct {
	UnitRef
	ActorUserID uuid.UUID
	Condition   enums.UnitStatus
}

// UnitDTO is the public view of a unit.
type UnitDTO struct {
	ID                   uuid.UUID        `json:"id"`
	EquipmentID          uuid.UUID        `json:"equipmentId"`
	SerialNumber         string           `json:"serialNumber"`
	InternalCode         *string          `json:"internalCode,omitempty"`
	Status               enums.UnitStatus `json:"status"`
	AcquiredAt           *time.Time       `json:"acquiredAt,omitempty"`
	AcquisitionCostCents *int64           `json:"acquisitionCostCents,omitempty"`
	WarrantyExpiresAt    *time.Time       `json:"warrantyExpiresAt,omitempty"`
	Notes                *string          `json:"notes,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

func fromModel(u *models.EquipmentUnit) *UnitDTO {
	return &UnitDTO{
		ID:                   u.ID,
		EquipmentID:          u.EquipmentID,
		SerialNumber:         u.SerialNumber,
		InternalCode:         u.InternalCode,
		Status:               u.Status,
		AcquiredAt:           u.AcquiredAt,
		AcquisitionCostCents: u.AcquisitionCostCents,
		WarrantyExpiresAt:    u.WarrantyExpiresAt,
		Notes:                u.Notes,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}
