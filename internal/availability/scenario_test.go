package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/rentflow-backend/internal/audit"
	"github.com/angelmondragon/rentflow-backend/internal/equipment"
	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
)

func TestRentalOutThenAvailabilityWindow(t *testing.T) {
	f := newFixture(t)
	client := db.Wrap(f.conn)
	ledgerSvc, err := ledger.NewService(
		ledger.NewRepository(f.conn),
		equipment.NewRepository(f.conn),
		client,
		audit.NewService(audit.NewRepository(f.conn), nil),
		nil,
		nil,
	)
	require.NoError(t, err)

	eq := f.equipment(t, stock.Buckets{Total: 10, Available: 10})
	require.NoError(t, f.conn.Model(eq).Update("min_stock_level", 2).Error)

	bookingA := f.itemBooking(t, "2024-01-01", "2024-01-10", models.BookingItem{EquipmentID: eq.ID, Quantity: 3})
	res, err := ledgerSvc.RecordMovement(context.Background(), ledger.RecordMovementInput{
		TenantID:    f.tenantID,
		EquipmentID: eq.ID,
		ActorUserID: uuid.New(),
		Type:        enums.MovementTypeRentalOut,
		Quantity:    3,
		Reason:      "booking A",
		BookingID:   &bookingA.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, res.Equipment.Available)
	assert.Equal(t, 3, res.Equipment.Reserved)

	fits, err := f.svc.CheckAvailability(context.Background(), f.query(eq, "2024-01-05", "2024-01-08", 5))
	require.NoError(t, err)
	assert.Equal(t, 3, fits.Stock.ReservedInPeriod)
	assert.Equal(t, 7, fits.Stock.AvailableForPeriod)
	assert.True(t, fits.IsAvailable)

	short, err := f.svc.CheckAvailability(context.Background(), f.query(eq, "2024-01-05", "2024-01-08", 8))
	require.NoError(t, err)
	assert.False(t, short.IsAvailable)
	require.Len(t, short.Conflicts, 1)
	assert.Equal(t, bookingA.ID, short.Conflicts[0].BookingID)
}
