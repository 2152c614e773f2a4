package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Booking is owned by the bookings workflow; the stock core reads it and only
// moves its dates through the calendar guard. EquipmentID is set on legacy
// single-equipment bookings.
type Booking struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	TenantID    uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index"`
	CustomerID  *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	EquipmentID *uuid.UUID          `gorm:"column:equipment_id;type:uuid"`
	StartDate   time.Time           `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time           `gorm:"column:end_date;type:date;not null"`
	Status      enums.BookingStatus `gorm:"column:status;type:booking_status;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Items []BookingItem `gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BookingItem is one line of an item-based booking.
type BookingItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	BookingID   uuid.UUID `gorm:"column:booking_id;type:uuid;not null;index"`
	EquipmentID uuid.UUID `gorm:"column:equipment_id;type:uuid;not null;index"`
	Quantity    int       `gorm:"column:quantity;not null"`
}

func (BookingItem) TableName() string { return "booking_items" }

func (i *BookingItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Customer is read for conflict display only.
type Customer struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	TenantID uuid.UUID `gorm:"column:tenant_id;type:uuid;not null"`
	Name     string    `gorm:"column:name;not null"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
