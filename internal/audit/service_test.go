package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:audit_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLog{}))
	return db
}

func TestRecordCommitsWithTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)
	ctx := context.Background()

	tenantID := uuid.New()
	equipmentID := uuid.New()
	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Record(ctx, tx, Entry{
			TenantID:     tenantID,
			ActorUserID:  uuid.New(),
			ResourceType: ResourceEquipment,
			ResourceID:   equipmentID,
			Action:       enums.AuditActionStockMovement,
			Data:         map[string]any{"type": "PURCHASE", "quantity": 5},
		})
	})
	require.NoError(t, err)

	rows, err := repo.ListByResource(ctx, tenantID, ResourceEquipment, equipmentID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.AuditActionStockMovement, rows[0].Action)

	var data map[string]any
	require.NoError(t, json.Unmarshal(rows[0].Data, &data))
	assert.Equal(t, "PURCHASE", data["type"])
}

func TestRecordRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	svc := NewService(repo, nil)
	ctx := context.Background()
	tenantID := uuid.New()
	resourceID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Record(ctx, tx, Entry{TenantID: tenantID, ResourceType: ResourceUnit, ResourceID: resourceID, Action: enums.AuditActionUnitDelete}); err != nil {
			return err
		}
		return errors.New("mutation failed")
	})
	require.Error(t, err)

	rows, err := repo.ListByResource(ctx, tenantID, ResourceUnit, resourceID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordRequiresTransactionAndResource(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	assert.Error(t, svc.Record(context.Background(), nil, Entry{ResourceType: ResourceUnit, ResourceID: uuid.New()}))

	db := newTestDB(t)
	assert.Error(t, svc.Record(context.Background(), db, Entry{ResourceType: ResourceUnit}))
}
