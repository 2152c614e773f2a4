package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// StockMovement is an immutable ledger entry. PreviousStock/NewStock always
// snapshot the available bucket.
type StockMovement struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	TenantID       uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_stock_movements_tenant_idempotency"`
	EquipmentID    uuid.UUID          `gorm:"column:equipment_id;type:uuid;not null;index"`
	Type           enums.MovementType `gorm:"column:type;type:stock_movement_type;not null"`
	Quantity       int                `gorm:"column:quantity;not null"`
	PreviousStock  int                `gorm:"column:previous_stock;not null"`
	NewStock       int                `gorm:"column:new_stock;not null"`
	Reason         string             `gorm:"column:reason"`
	BookingID      *uuid.UUID         `gorm:"column:booking_id;type:uuid"`
	ActorUserID    uuid.UUID          `gorm:"column:actor_user_id;type:uuid;not null"`
	IdempotencyKey *string            `gorm:"column:idempotency_key;uniqueIndex:idx_stock_movements_tenant_idempotency"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
}

func (StockMovement) TableName() string { return "stock_movements" }

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
