package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnitRental attaches a unit to a booking. ReturnedAt stays nil while the rental is open.
type UnitRental struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	TenantID   uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null"`
	UnitID     uuid.UUID  `gorm:"column:unit_id;type:uuid;not null;index"`
	BookingID  uuid.UUID  `gorm:"column:booking_id;type:uuid;not null"`
	RentedAt   time.Time  `gorm:"column:rented_at;not null"`
	ReturnedAt *time.Time `gorm:"column:returned_at"`
}

func (UnitRental) TableName() string { return "unit_rentals" }

func (r *UnitRental) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
