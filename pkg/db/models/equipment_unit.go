package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// EquipmentUnit is one physical, serial-numbered piece of SERIALIZED equipment.
type EquipmentUnit struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	TenantID             uuid.UUID        `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_equipment_units_tenant_serial"`
	EquipmentID          uuid.UUID        `gorm:"column:equipment_id;type:uuid;not null;index"`
	SerialNumber         string           `gorm:"column:serial_number;not null;uniqueIndex:idx_equipment_units_tenant_serial"`
	InternalCode         *string          `gorm:"column:internal_code"`
	Status               enums.UnitStatus `gorm:"column:status;type:equipment_unit_status;not null"`
	AcquiredAt           *time.Time       `gorm:"column:acquired_at"`
	AcquisitionCostCents *int64           `gorm:"column:acquisition_cost_cents"`
	WarrantyExpiresAt    *time.Time       `gorm:"column:warranty_expires_at"`
	Notes                *string          `gorm:"column:notes"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (EquipmentUnit) TableName() string { return "equipment_units" }

func (u *EquipmentUnit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
