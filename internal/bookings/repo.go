package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
)

// Repository reads bookings as reservations and moves their dates. Booking
// creation and status changes belong to the booking workflow.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error)
	UpdateDates(ctx context.Context, booking *models.Booking, window stock.Interval) error
	ListReservations(ctx context.Context, tenantID, equipmentID uuid.UUID, window stock.Interval, exclude *uuid.UUID) ([]stock.Reservation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to booking reads.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&booking).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", booking.ID).
		Find(&booking.Items).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateDates(ctx context.Context, booking *models.Booking, window stock.Interval) error {
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("tenant_id = ? AND id = ?", booking.TenantID, booking.ID).
		Updates(map[string]any{
			"start_date": window.Start,
			"end_date":   window.End,
		}).Error
	if err != nil {
		return err
	}
	booking.StartDate = window.Start
	booking.EndDate = window.End
	return nil
}

type reservationRow struct {
	BookingID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Status    enums.BookingStatus
	Customer  *string
	Quantity  int
}

// ListReservations returns the capacity-consuming reservations of both shapes
// that overlap window. A legacy booking that also lists the same equipment as
// an item is counted through its item only.
func (r *repository) ListReservations(ctx context.Context, tenantID, equipmentID uuid.UUID, window stock.Interval, exclude *uuid.UUID) ([]stock.Reservation, error) {
	statuses := consumingStatuses()

	legacy := r.db.WithContext(ctx).
		Table("bookings AS b").
		Select("b.id AS booking_id, b.start_date, b.end_date, b.status, c.name AS customer, 1 AS quantity").
		Joins("LEFT JOIN customers AS c ON c.id = b.customer_id").
		Where("b.tenant_id = ? AND b.equipment_id = ?", tenantID, equipmentID).
		Where("b.status IN ?", statuses).
		Where("b.start_date <= ? AND b.end_date >= ?", window.End, window.Start).
		Where("NOT EXISTS (SELECT 1 FROM booking_items AS bi WHERE bi.booking_id = b.id AND bi.equipment_id = b.equipment_id)")
	if exclude != nil {
		legacy = legacy.Where("b.id <> ?", *exclude)
	}
	var legacyRows []reservationRow
	if err := legacy.Order("b.start_date ASC").Scan(&legacyRows).Error; err != nil {
		return nil, err
	}

	items := r.db.WithContext(ctx).
		Table("booking_items AS bi").
		Select("b.id AS booking_id, b.start_date, b.end_date, b.status, c.name AS customer, bi.quantity AS quantity").
		Joins("JOIN bookings AS b ON b.id = bi.booking_id").
		Joins("LEFT JOIN customers AS c ON c.id = b.customer_id").
		Where("b.tenant_id = ? AND bi.equipment_id = ?", tenantID, equipmentID).
		Where("b.status IN ?", statuses).
		Where("b.start_date <= ? AND b.end_date >= ?", window.End, window.Start)
	if exclude != nil {
		items = items.Where("b.id <> ?", *exclude)
	}
	var itemRows []reservationRow
	if err := items.Order("b.start_date ASC").Scan(&itemRows).Error; err != nil {
		return nil, err
	}

	out := make([]stock.Reservation, 0, len(legacyRows)+len(itemRows))
	for _, row := range legacyRows {
		out = append(out, row.toReservation(stock.SourceLegacy))
	}
	for _, row := range itemRows {
		out = append(out, row.toReservation(stock.SourceItem))
	}
	return out, nil
}

func (row reservationRow) toReservation(source stock.Source) stock.Reservation {
	customer := ""
	if row.Customer != nil {
		customer = *row.Customer
	}
	return stock.Reservation{
		Source:    source,
		BookingID: row.BookingID,
		Start:     stock.Day(row.StartDate),
		End:       stock.Day(row.EndDate),
		Status:    row.Status,
		Customer:  customer,
		Quantity:  row.Quantity,
	}
}

func consumingStatuses() []string {
	out := make([]string, 0, len(enums.CapacityConsumingBookingStatuses))
	for _, s := range enums.CapacityConsumingBookingStatuses {
		out = append(out, string(s))
	}
	return out
}
