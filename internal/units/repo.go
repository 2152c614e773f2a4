package units

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
)

// Repository persists units and their rental associations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, unit *models.EquipmentUnit) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.EquipmentUnit, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.EquipmentUnit, error)
	Save(ctx context.Context, unit *models.EquipmentUnit) error
	Delete(ctx context.Context, unit *models.EquipmentUnit) error
	ListByEquipment(ctx context.Context, tenantID, equipmentID uuid.UUID) ([]models.EquipmentUnit, error)
	SerialExists(ctx context.Context, tenantID uuid.UUID, serial string) (bool, error)
	FindOpenRental(ctx context.Context, tenantID, unitID uuid.UUID) (*models.UnitRental, error)
	CreateRental(ctx context.Context, rental *models.UnitRental) error
	CloseRental(ctx context.Context, rental *models.UnitRental, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to unit persistence.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, unit *models.EquipmentUnit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*models.EquipmentUnit, error) {
	var unit models.EquipmentUnit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.EquipmentUnit, error) {
	var unit models.EquipmentUnit
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *repository) Save(ctx context.Context, unit *models.EquipmentUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

func (r *repository) Delete(ctx context.Context, unit *models.EquipmentUnit) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", unit.TenantID, unit.ID).
		Delete(&models.EquipmentUnit{}).Error
}

func (r *repository) ListByEquipment(ctx context.Context, tenantID, equipmentID uuid.UUID) ([]models.EquipmentUnit, error) {
	var rows []models.EquipmentUnit
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND equipment_id = ?", tenantID, equipmentID).
		Order("serial_number ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) SerialExists(ctx context.Context, tenantID uuid.UUID, serial string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.EquipmentUnit{}).
		Where("tenant_id = ? AND serial_number = ?", tenantID, serial).
		Count(&count).Error
	return count > 0, err
}

// FindOpenRental returns the unreturned rental of the unit, or gorm.ErrRecordNotFound.
func (r *repository) FindOpenRental(ctx context.Context, tenantID, unitID uuid.UUID) (*models.UnitRental, error) {
	var rental models.UnitRental
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND unit_id = ? AND returned_at IS NULL", tenantID, unitID).
		First(&rental).Error; err != nil {
		return nil, err
	}
	return &rental, nil
}

func (r *repository) CreateRental(ctx context.Context, rental *models.UnitRental) error {
	return r.db.WithContext(ctx).Create(rental).Error
}

func (r *repository) CloseRental(ctx context.Context, rental *models.UnitRental, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&models.UnitRental{}).
		Where("id = ?", rental.ID).
		Update("returned_at", at).Error; err != nil {
		return err
	}
	rental.ReturnedAt = &at
	return nil
}
