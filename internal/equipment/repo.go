package equipment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// Repository is the stock aggregate store. Every lookup is tenant scoped.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, eq *models.Equipment) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Equipment, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Equipment, error)
	SaveBuckets(ctx context.Context, eq *models.Equipment) error
	UpdateDetails(ctx context.Context, eq *models.Equipment) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	ListForAlerts(ctx context.Context, tenantID uuid.UUID) ([]models.Equipment, error)
	CountUnits(ctx context.Context, tenantID, id uuid.UUID) (int64, error)
	CountActiveReservations(ctx context.Context, tenantID, id uuid.UUID) (int64, error)
	CountMovements(ctx context.Context, tenantID, id uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to equipment persistence.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, eq *models.Equipment) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Equipment, error) {
	var eq models.Equipment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&eq).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *repository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Equipment, error) {
	var eq models.Equipment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&eq).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

// SaveBuckets writes only the counters so concurrent detail edits are not clobbered.
func (r *repository) SaveBuckets(ctx context.Context, eq *models.Equipment) error {
	return r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("tenant_id = ? AND id = ?", eq.TenantID, eq.ID).
		Updates(map[string]any{
			"total_stock":       eq.TotalStock,
			"available_stock":   eq.AvailableStock,
			"reserved_stock":    eq.ReservedStock,
			"maintenance_stock": eq.MaintenanceStock,
			"damaged_stock":     eq.DamagedStock,
		}).Error
}

func (r *repository) UpdateDetails(ctx context.Context, eq *models.Equipment) error {
	return r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("tenant_id = ? AND id = ?", eq.TenantID, eq.ID).
		Updates(map[string]any{
			"name":            eq.Name,
			"status":          eq.Status,
			"min_stock_level": eq.MinStockLevel,
		}).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.Equipment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListForAlerts returns every non-INACTIVE equipment of the tenant ordered by name.
func (r *repository) ListForAlerts(ctx context.Context, tenantID uuid.UUID) ([]models.Equipment, error) {
	var rows []models.Equipment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status <> ?", tenantID, enums.EquipmentStatusInactive).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountUnits(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EquipmentUnit{}).
		Where("tenant_id = ? AND equipment_id = ?", tenantID, id).
		Count(&count).Error
	return count, err
}

func (r *repository) CountMovements(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("tenant_id = ? AND equipment_id = ?", tenantID, id).
		Count(&count).Error
	return count, err
}

// CountActiveReservations counts capacity-consuming bookings of either shape
// that reference the equipment.
func (r *repository) CountActiveReservations(ctx context.Context, tenantID, id uuid.UUID) (int64, error) {
	statuses := activeStatuses()

	var legacy int64
	if err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("tenant_id = ? AND equipment_id = ? AND status IN ?", tenantID, id, statuses).
		Count(&legacy).Error; err != nil {
		return 0, err
	}

	var items int64
	if err := r.db.WithContext(ctx).
		Table("booking_items AS bi").
		Joins("JOIN bookings AS b ON b.id = bi.booking_id").
		Where("b.tenant_id = ? AND bi.equipment_id = ? AND b.status IN ?", tenantID, id, statuses).
		Count(&items).Error; err != nil {
		return 0, err
	}
	return legacy + items, nil
}

func activeStatuses() []string {
	out := make([]string, 0, len(enums.CapacityConsumingBookingStatuses))
	for _, s := range enums.CapacityConsumingBookingStatuses {
		out = append(out, string(s))
	}
	return out
}
