package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
)

// Repository manages persistence for stock movements. Movements are insert-only.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.StockMovement) error
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*models.StockMovement, error)
	ListPage(ctx context.Context, tenantID, equipmentID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.StockMovement, error)
	ListAll(ctx context.Context, tenantID, equipmentID uuid.UUID) ([]models.StockMovement, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*models.StockMovement, error) {
	var movement models.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		First(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// ListPage returns up to limit movements, newest first, strictly after cursor.
func (r *repository) ListPage(ctx context.Context, tenantID, equipmentID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.StockMovement, error) {
	query := r.db.WithContext(ctx).
		Where("tenant_id = ? AND equipment_id = ?", tenantID, equipmentID)
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	var rows []models.StockMovement
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// ListAll returns the full history oldest first, for replay.
func (r *repository) ListAll(ctx context.Context, tenantID, equipmentID uuid.UUID) ([]models.StockMovement, error) {
	var rows []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND equipment_id = ?", tenantID, equipmentID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
