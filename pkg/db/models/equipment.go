package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
)

// Equipment is a rentable catalog item and owns the stock aggregate counters.
type Equipment struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	TenantID         uuid.UUID             `gorm:"column:tenant_id;type:uuid;not null;index"`
	Name             string                `gorm:"column:name;not null"`
	Status           enums.EquipmentStatus `gorm:"column:status;type:equipment_status;not null"`
	TrackingMode     enums.TrackingMode    `gorm:"column:tracking_mode;type:tracking_mode;not null"`
	TotalStock       int                   `gorm:"column:total_stock;not null;default:0"`
	AvailableStock   int                   `gorm:"column:available_stock;not null;default:0"`
	ReservedStock    int                   `gorm:"column:reserved_stock;not null;default:0"`
	MaintenanceStock int                   `gorm:"column:maintenance_stock;not null;default:0"`
	DamagedStock     int                   `gorm:"column:damaged_stock;not null;default:0"`
	MinStockLevel    int                   `gorm:"column:min_stock_level;not null;default:0"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Equipment) TableName() string { return "equipment" }

func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Buckets returns the aggregate counters as a value.
func (e *Equipment) Buckets() stock.Buckets {
	return stock.Buckets{
		Total:       e.TotalStock,
		Available:   e.AvailableStock,
		Reserved:    e.ReservedStock,
		Maintenance: e.MaintenanceStock,
		Damaged:     e.DamagedStock,
	}
}

// SetBuckets overwrites the aggregate counters.
func (e *Equipment) SetBuckets(b stock.Buckets) {
	e.TotalStock = b.Total
	e.AvailableStock = b.Available
	e.ReservedStock = b.Reserved
	e.MaintenanceStock = b.Maintenance
	e.DamagedStock = b.Damaged
}

// IsSerialized reports whether the aggregate is driven by equipment units.
func (e *Equipment) IsSerialized() bool {
	return e.TrackingMode == enums.TrackingModeSerialized
}
