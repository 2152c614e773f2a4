package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
)

// Repository persists audit rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes the row on the caller's transaction.
func (r *Repository) Insert(tx *gorm.DB, row *models.AuditLog) error {
	return tx.Create(row).Error
}

// ListByResource returns the audit trail of one resource, oldest first.
func (r *Repository) ListByResource(ctx context.Context, tenantID uuid.UUID, resourceType string, resourceID uuid.UUID) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND resource_type = ? AND resource_id = ?", tenantID, resourceType, resourceID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
