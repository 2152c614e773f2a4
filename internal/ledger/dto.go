package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/internal/equipment"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
)

// RecordMovementInput captures one physical stock event.
type RecordMovementInput struct {
	TenantID       uuid.UUID
	EquipmentID    uuid.UUID
	ActorUserID    uuid.UUID
	Type           enums.MovementType
	Quantity       int
	Reason         string
	BookingID      *uuid.UUID
	IdempotencyKey *string
}

// AdjustInput sets a new total; the difference lands in the available bucket.
type AdjustInput struct {
	TenantID      uuid.UUID
	EquipmentID   uuid.UUID
	ActorUserID   uuid.UUID
	NewTotalStock int
	Reason        string
}

// MovementDTO is the public view of a ledger entry.
type MovementDTO struct {
	ID            uuid.UUID          `json:"id"`
	EquipmentID   uuid.UUID          `json:"equipmentId"`
	Type          enums.MovementType `json:"type"`
	Quantity      int                `json:"quantity"`
	PreviousStock int                `json:"previousStock"`
	NewStock      int                `json:"newStock"`
	Reason        string             `json:"reason,omitempty"`
	BookingID     *uuid.UUID         `json:"bookingId,omitempty"`
	ActorUserID   uuid.UUID          `json:"actorUserId"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// MovementResult pairs the recorded movement with the aggregate it produced.
// Replayed is set when an idempotency key matched an earlier movement.
type MovementResult struct {
	Movement  MovementDTO             `json:"movement"`
	Equipment *equipment.EquipmentDTO `json:"equipment"`
	Replayed  bool                    `json:"-"`
}

// MovementPage is one cursor page of movement history.
type MovementPage struct {
	Items      []MovementDTO `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// BucketDrift reports a bucket whose stored value differs from the replayed one.
type BucketDrift struct {
	Bucket   stock.Bucket `json:"bucket"`
	Stored   int          `json:"stored"`
	Replayed int          `json:"replayed"`
}

// ReconcileReport compares the stored aggregate with a replay of its ledger.
type ReconcileReport struct {
	EquipmentID uuid.UUID     `json:"equipmentId"`
	Movements   int           `json:"movements"`
	Stored      stock.Buckets `json:"stored"`
	Replayed    stock.Buckets `json:"replayed"`
	Drift       []BucketDrift `json:"drift"`
	Consistent  bool          `json:"consistent"`
	ReplayError string        `json:"replayError,omitempty"`
}

func movementFromModel(m *models.StockMovement) MovementDTO {
	return MovementDTO{
		ID:            m.ID,
		EquipmentID:   m.EquipmentID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        m.Reason,
		BookingID:     m.BookingID,
		ActorUserID:   m.ActorUserID,
		CreatedAt:     m.CreatedAt,
	}
}
