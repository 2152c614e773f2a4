package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
)

func date(value string) time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		panic(err)
	}
	return t
}

func window(t *testing.T, start, end string) stock.Interval {
	t.Helper()
	iv, err := stock.NewInterval(date(start), date(end))
	require.NoError(t, err)
	return iv
}

func createBooking(t *testing.T, conn *gorm.DB, b *models.Booking) *models.Booking {
	t.Helper()
	require.NoError(t, conn.Create(b).Error)
	return b
}

func TestListReservationsMergesBothShapes(t *testing.T) {
	conn := dbtest.Open(t, "bookings")
	repo := NewRepository(conn)
	tenantID := uuid.New()
	equipmentID := uuid.New()
	customer := &models.Customer{TenantID: tenantID, Name: "Acme Events"}
	require.NoError(t, conn.Create(customer).Error)

	legacy := createBooking(t, conn, &models.Booking{
		TenantID:    tenantID,
		CustomerID:  &customer.ID,
		EquipmentID: &equipmentID,
		StartDate:   date("2026-03-01"),
		EndDate:     date("2026-03-05"),
		Status:      enums.BookingStatusConfirmed,
	})
	createBooking(t, conn, &models.Booking{
		TenantID:  tenantID,
		StartDate: date("2026-03-05"),
		EndDate:   date("2026-03-07"),
		Status:    enums.BookingStatusPending,
		Items:     []models.BookingItem{{EquipmentID: equipmentID, Quantity: 3}},
	})
	createBooking(t, conn, &models.Booking{
		TenantID:    tenantID,
		EquipmentID: &equipmentID,
		StartDate:   date("2026-03-02"),
		EndDate:     date("2026-03-03"),
		Status:      enums.BookingStatusCancelled,
	})
	createBooking(t, conn, &models.Booking{
		TenantID:    uuid.New(),
		EquipmentID: &equipmentID,
		StartDate:   date("2026-03-02"),
		EndDate:     date("2026-03-03"),
		Status:      enums.BookingStatusConfirmed,
	})
	createBooking(t, conn, &models.Booking{
		TenantID:    tenantID,
		EquipmentID: &equipmentID,
		StartDate:   date("2026-04-01"),
		EndDate:     date("2026-04-02"),
		Status:      enums.BookingStatusConfirmed,
	})

	got, err := repo.ListReservations(context.Background(), tenantID, equipmentID, window(t, "2026-03-05", "2026-03-05"), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, stock.SourceLegacy, got[0].Source)
	assert.Equal(t, legacy.ID, got[0].BookingID)
	assert.Equal(t, "Acme Events", got[0].Customer)
	assert.Equal(t, date("2026-03-01"), got[0].Start)
	assert.Equal(t, stock.SourceItem, got[1].Source)
	assert.Equal(t, 3, got[1].Quantity)
	assert.Empty(t, got[1].Customer)

	reserved, _ := stock.Fold(window(t, "2026-03-05", "2026-03-05"), got, nil)
	assert.Equal(t, 4, reserved)

	excluded, err := repo.ListReservations(context.Background(), tenantID, equipmentID, window(t, "2026-03-05", "2026-03-05"), &legacy.ID)
	require.NoError(t, err)
	require.Len(t, excluded, 1)
	assert.Equal(t, stock.SourceItem, excluded[0].Source)
}

func TestListReservationsCountsDualShapeBookingOnce(t *testing.T) {
	conn := dbtest.Open(t, "bookings")
	repo := NewRepository(conn)
	tenantID := uuid.New()
	equipmentID := uuid.New()

	createBooking(t, conn, &models.Booking{
		TenantID:    tenantID,
		EquipmentID: &equipmentID,
		StartDate:   date("2026-06-10"),
		EndDate:     date("2026-06-12"),
		Status:      enums.BookingStatusConfirmed,
		Items:       []models.BookingItem{{EquipmentID: equipmentID, Quantity: 2}},
	})

	got, err := repo.ListReservations(context.Background(), tenantID, equipmentID, window(t, "2026-06-01", "2026-06-30"), nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stock.SourceItem, got[0].Source)
	assert.Equal(t, 2, got[0].Quantity)
}

func TestUpdateDatesAndFindByID(t *testing.T) {
	conn := dbtest.Open(t, "bookings")
	repo := NewRepository(conn)
	tenantID := uuid.New()
	equipmentID := uuid.New()
	booking := createBooking(t, conn, &models.Booking{
		TenantID:  tenantID,
		StartDate: date("2026-01-01"),
		EndDate:   date("2026-01-02"),
		Status:    enums.BookingStatusPending,
		Items:     []models.BookingItem{{EquipmentID: equipmentID, Quantity: 1}},
	})

	require.NoError(t, repo.UpdateDates(context.Background(), booking, window(t, "2026-01-10", "2026-01-12")))

	loaded, err := repo.FindByID(context.Background(), tenantID, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, date("2026-01-10"), stock.Day(loaded.StartDate))
	assert.Equal(t, date("2026-01-12"), stock.Day(loaded.EndDate))
	require.Len(t, loaded.Items, 1)

	_, err = repo.FindByID(context.Background(), uuid.New(), booking.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDemand(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	legacyOnly := &models.Booking{EquipmentID: &a}
	assert.Equal(t, map[uuid.UUID]int{a: 1}, Demand(legacyOnly))

	mixed := &models.Booking{
		EquipmentID: &a,
		Items: []models.BookingItem{
			{EquipmentID: a, Quantity: 2},
			{EquipmentID: b, Quantity: 1},
			{EquipmentID: b, Quantity: 4},
		},
	}
	assert.Equal(t, map[uuid.UUID]int{a: 2, b: 5}, Demand(mixed))
	assert.True(t, References(mixed, b))
	assert.False(t, References(mixed, uuid.New()))
	assert.Empty(t, Demand(nil))
}
