package equipment

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
)

// EquipmentDTO is the public view of an equipment aggregate.
type EquipmentDTO struct {
	ID           uuid.UUID             `json:"id"`
	TenantID     uuid.UUID             `json:"tenantId"`
	Name         string                `json:"name"`
	Status       enums.EquipmentStatus `json:"status"`
	TrackingMode enums.TrackingMode    `json:"trackingMode"`
	stock.Buckets
	MinStockLevel int       `json:"minStockLevel"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// FromModel converts the persisted row into its DTO.
func FromModel(m *models.Equipment) *EquipmentDTO {
	if m == nil {
		return nil
	}
	return &EquipmentDTO{
		ID:            m.ID,
		TenantID:      m.TenantID,
		Name:          m.Name,
		Status:        m.Status,
		TrackingMode:  m.TrackingMode,
		Buckets:       m.Buckets(),
		MinStockLevel: m.MinStockLevel,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// CreateInput captures a new catalog item.
type CreateInput struct {
	TenantID        uuid.UUID
	ActorUserID     uuid.UUID
	Name            string
	TrackingMode    enums.TrackingMode
	Status          enums.EquipmentStatus
	InitialQuantity int
	MinStockLevel   int
}

// UpdateInput captures the editable, non-stock fields.
type UpdateInput struct {
	TenantID      uuid.UUID
	ActorUserID   uuid.UUID
	EquipmentID   uuid.UUID
	Name          *string
	Status        *enums.EquipmentStatus
	MinStockLevel *int
}
