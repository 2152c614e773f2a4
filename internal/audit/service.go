package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

const (
	ResourceEquipment = "equipment"
	ResourceUnit      = "equipment_unit"
	ResourceBooking   = "booking"
)

// Entry describes one audited mutation.
type Entry struct {
	TenantID     uuid.UUID
	ActorUserID  uuid.UUID
	ResourceType string
	ResourceID   uuid.UUID
	Action       enums.AuditAction
	Data         any
}

// Writer records audit entries inside an existing transaction.
type Writer interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Record writes the entry on tx so it commits or rolls back with the mutation.
func (s *Service) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ResourceType == "" || entry.ResourceID == uuid.Nil {
		return errors.New("audit resource required")
	}
	payload, err := json.Marshal(entry.Data)
	if err != nil {
		return err
	}
	row := &models.AuditLog{
		TenantID:     entry.TenantID,
		ActorUserID:  entry.ActorUserID,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Action:       entry.Action,
		Data:         json.RawMessage(payload),
	}
	if err := s.repo.Insert(tx.WithContext(ctx), row); err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"audit_id":      row.ID.String(),
			"action":        entry.Action,
			"resource_type": entry.ResourceType,
			"resource_id":   entry.ResourceID.String(),
		}), "audit entry recorded")
	}
	return nil
}
