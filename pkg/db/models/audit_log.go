package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

// AuditLog records who changed which resource and how.
type AuditLog struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	TenantID     uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null;index"`
	ActorUserID  uuid.UUID         `gorm:"column:actor_user_id;type:uuid;not null"`
	ResourceType string            `gorm:"column:resource_type;not null"`
	ResourceID   uuid.UUID         `gorm:"column:resource_id;type:uuid;not null"`
	Action       enums.AuditAction `gorm:"column:action;not null"`
	Data         json.RawMessage   `gorm:"column:data;type:jsonb"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (AuditLog) TableName() string { return "audit_logs" }

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
