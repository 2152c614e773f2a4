package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/audit"
	"github.com/angelmondragon/rentflow-backend/internal/equipment"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
	"github.com/angelmondragon/rentflow-backend/pkg/tracing"
)

const tracerName = "rentflow/ledger"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records stock movements against the equipment aggregate.
type Service interface {
	RecordMovement(ctx context.Context, input RecordMovementInput) (*MovementResult, error)
	RecordMovementTx(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*MovementResult, error)
	AdjustTotalStock(ctx context.Context, input AdjustInput) (*MovementResult, error)
	ListMovements(ctx context.Context, tenantID, equipmentID uuid.UUID, params pagination.Params) (*MovementPage, error)
	Reconcile(ctx context.Context, tenantID, equipmentID uuid.UUID) (*ReconcileReport, error)
	SeedInitialStock(ctx context.Context, tx *gorm.DB, eq *models.Equipment, quantity int, actorUserID uuid.UUID) error
}

type service struct {
	repo      Repository
	equipment equipment.Repository
	tx        txRunner
	audit     audit.Writer
	metrics   *metrics.StockMetrics
	logg      *logger.Logger
}

// NewService wires the movement ledger.
func NewService(repo Repository, equipmentRepo equipment.Repository, tx txRunner, auditWriter audit.Writer, stockMetrics *metrics.StockMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("movement repository required")
	}
	if equipmentRepo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if auditWriter == nil {
		return nil, fmt.Errorf("audit writer required")
	}
	return &service{
		repo:      repo,
		equipment: equipmentRepo,
		tx:        tx,
		audit:     auditWriter,
		metrics:   stockMetrics,
		logg:      logg,
	}, nil
}

// RecordMovement runs RecordMovementTx in its own transaction. When a concurrent
// request commits the same idempotency key first, the stored result is replayed.
func (s *service) RecordMovement(ctx context.Context, input RecordMovementInput) (*MovementResult, error) {
	var result *MovementResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		result, err = s.RecordMovementTx(ctx, tx, input)
		return err
	})
	if err != nil && input.IdempotencyKey != nil && pkgerrors.IsCode(err, pkgerrors.CodeIdempotency) {
		var replayed *MovementResult
		if rerr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			var err error
			replayed, err = s.replay(ctx, tx, input)
			return err
		}); rerr != nil {
			return nil, rerr
		}
		if replayed != nil {
			return replayed, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RecordMovementTx locks the equipment row on tx, applies the movement and
// inserts the ledger row plus its audit entry. The caller owns commit/rollback.
func (s *service) RecordMovementTx(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (result *MovementResult, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "ledger.RecordMovement",
		attribute.String("equipment.id", input.EquipmentID.String()),
		attribute.String("movement.type", string(input.Type)),
		attribute.Int("movement.quantity", input.Quantity),
	)
	defer func() {
		s.observe(err)
		tracing.End(span, err)
	}()

	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	if err := validateRecordInput(input); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != nil {
		replay, err := s.replay(ctx, tx, input)
		if err != nil || replay != nil {
			return replay, err
		}
	}

	eq, err := s.equipment.WithTx(tx).FindByIDForUpdate(ctx, input.TenantID, input.EquipmentID)
	if err != nil {
		return nil, mapEquipmentError(err)
	}
	if eq.IsSerialized() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "serialized equipment moves through its units").
			WithDetails(map[string]any{"equipmentId": eq.ID, "trackingMode": eq.TrackingMode})
	}

	movement, err := s.apply(ctx, tx, eq, input)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, tx, audit.Entry{
		TenantID:     input.TenantID,
		ActorUserID:  input.ActorUserID,
		ResourceType: audit.ResourceEquipment,
		ResourceID:   eq.ID,
		Action:       enums.AuditActionStockMovement,
		Data: map[string]any{
			"movementId":    movement.ID,
			"type":          movement.Type,
			"quantity":      movement.Quantity,
			"previousStock": movement.PreviousStock,
			"newStock":      movement.NewStock,
		},
	}); err != nil {
		return nil, err
	}

	s.metrics.IncMovement(string(movement.Type))
	s.logMovement(ctx, eq, movement)
	return &MovementResult{Movement: movementFromModel(movement), Equipment: equipment.FromModel(eq)}, nil
}

// SeedInitialStock records the opening PURCHASE of freshly created equipment.
func (s *service) SeedInitialStock(ctx context.Context, tx *gorm.DB, eq *models.Equipment, quantity int, actorUserID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if eq == nil {
		return fmt.Errorf("equipment required")
	}
	movement, err := s.apply(ctx, tx, eq, RecordMovementInput{
		TenantID:    eq.TenantID,
		EquipmentID: eq.ID,
		ActorUserID: actorUserID,
		Type:        enums.MovementTypePurchase,
		Quantity:    quantity,
		Reason:      "initial stock",
	})
	if err != nil {
		return err
	}
	s.metrics.IncMovement(string(movement.Type))
	return nil
}

// apply mutates eq in place, persists the new buckets and inserts the movement.
func (s *service) apply(ctx context.Context, tx *gorm.DB, eq *models.Equipment, input RecordMovementInput) (*models.StockMovement, error) {
	before := eq.Buckets()
	after, _, err := stock.ApplyMovement(before, input.Type, input.Quantity)
	if err != nil {
		return nil, err
	}
	if err := after.Validate(); err != nil {
		return nil, err
	}

	eq.SetBuckets(after)
	if err := s.equipment.WithTx(tx).SaveBuckets(ctx, eq); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save stock buckets")
	}

	movement := &models.StockMovement{
		TenantID:       input.TenantID,
		EquipmentID:    eq.ID,
		Type:           input.Type,
		Quantity:       input.Quantity,
		PreviousStock:  before.Available,
		NewStock:       after.Available,
		Reason:         input.Reason,
		BookingID:      input.BookingID,
		ActorUserID:    input.ActorUserID,
		IdempotencyKey: input.IdempotencyKey,
	}
	if err := s.repo.WithTx(tx).Create(ctx, movement); err != nil {
		if isIdempotencyConflict(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeIdempotency, err, "idempotency key already used")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert stock movement")
	}
	return movement, nil
}

// replay returns the earlier result for a reused idempotency key, nil when the
// key is new, or an error when the key was used for a different movement.
func (s *service) replay(ctx context.Context, tx *gorm.DB, input RecordMovementInput) (*MovementResult, error) {
	existing, err := s.repo.WithTx(tx).FindByIdempotencyKey(ctx, input.TenantID, *input.IdempotencyKey)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotent movement")
	}
	if existing.EquipmentID != input.EquipmentID || existing.Type != input.Type || existing.Quantity != input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with a different movement").
			WithDetails(map[string]any{"movementId": existing.ID})
	}
	eq, err := s.equipment.WithTx(tx).FindByID(ctx, input.TenantID, input.EquipmentID)
	if err != nil {
		return nil, mapEquipmentError(err)
	}
	return &MovementResult{Movement: movementFromModel(existing), Equipment: equipment.FromModel(eq), Replayed: true}, nil
}

// AdjustTotalStock moves the total to NewTotalStock without touching committed
// buckets; the new available is whatever remains above them.
func (s *service) AdjustTotalStock(ctx context.Context, input AdjustInput) (result *MovementResult, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "ledger.AdjustTotalStock",
		attribute.String("equipment.id", input.EquipmentID.String()),
		attribute.Int("stock.new_total", input.NewTotalStock),
	)
	defer func() {
		s.observe(err)
		tracing.End(span, err)
	}()

	if input.NewTotalStock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new total stock must not be negative")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		eq, err := s.equipment.WithTx(tx).FindByIDForUpdate(ctx, input.TenantID, input.EquipmentID)
		if err != nil {
			return mapEquipmentError(err)
		}
		if eq.IsSerialized() {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "serialized equipment total follows its units")
		}
		current := eq.Buckets()
		floor := current.Committed()
		if input.NewTotalStock < floor {
			return pkgerrors.New(pkgerrors.CodeBelowFloor,
				fmt.Sprintf("new total %d is below committed stock %d", input.NewTotalStock, floor)).
				WithDetails(map[string]any{"minPossible": floor, "requested": input.NewTotalStock})
		}
		diff := input.NewTotalStock - current.Total
		if diff == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "new total equals current total")
		}

		movement, err := s.apply(ctx, tx, eq, RecordMovementInput{
			TenantID:    input.TenantID,
			EquipmentID: eq.ID,
			ActorUserID: input.ActorUserID,
			Type:        enums.MovementTypeAdjustment,
			Quantity:    diff,
			Reason:      input.Reason,
		})
		if err != nil {
			return err
		}
		if err := s.audit.Record(ctx, tx, audit.Entry{
			TenantID:     input.TenantID,
			ActorUserID:  input.ActorUserID,
			ResourceType: audit.ResourceEquipment,
			ResourceID:   eq.ID,
			Action:       enums.AuditActionStockAdjustment,
			Data: map[string]any{
				"movementId":    movement.ID,
				"previousTotal": current.Total,
				"newTotal":      input.NewTotalStock,
				"minPossible":   floor,
			},
		}); err != nil {
			return err
		}
		s.metrics.IncMovement(string(movement.Type))
		s.logMovement(ctx, eq, movement)
		result = &MovementResult{Movement: movementFromModel(movement), Equipment: equipment.FromModel(eq)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListMovements(ctx context.Context, tenantID, equipmentID uuid.UUID, params pagination.Params) (*MovementPage, error) {
	if _, err := s.equipment.FindByID(ctx, tenantID, equipmentID); err != nil {
		return nil, mapEquipmentError(err)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListPage(ctx, tenantID, equipmentID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}

	rows, next := pagination.Split(rows, params.Limit, func(m models.StockMovement) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	page := &MovementPage{Items: make([]MovementDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		page.Items = append(page.Items, movementFromModel(&rows[i]))
	}
	return page, nil
}

// Reconcile replays the ledger from empty buckets and reports per-bucket drift
// against the stored aggregate.
func (s *service) Reconcile(ctx context.Context, tenantID, equipmentID uuid.UUID) (report *ReconcileReport, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "ledger.Reconcile", attribute.String("equipment.id", equipmentID.String()))
	defer func() { tracing.End(span, err) }()

	eq, err := s.equipment.FindByID(ctx, tenantID, equipmentID)
	if err != nil {
		return nil, mapEquipmentError(err)
	}
	if eq.IsSerialized() {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "serialized equipment has no movement ledger to replay")
	}
	rows, err := s.repo.ListAll(ctx, tenantID, equipmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock movements")
	}

	report = &ReconcileReport{EquipmentID: eq.ID, Movements: len(rows), Stored: eq.Buckets()}
	replayed := stock.Buckets{}
	for _, row := range rows {
		next, _, err := stock.ApplyMovement(replayed, row.Type, row.Quantity)
		if err != nil {
			report.ReplayError = fmt.Sprintf("movement %s: %v", row.ID, err)
			break
		}
		replayed = next
	}
	report.Replayed = replayed
	for _, bucket := range []stock.Bucket{stock.BucketTotal, stock.BucketAvailable, stock.BucketReserved, stock.BucketMaintenance, stock.BucketDamaged} {
		if stored, got := report.Stored.Get(bucket), replayed.Get(bucket); stored != got {
			report.Drift = append(report.Drift, BucketDrift{Bucket: bucket, Stored: stored, Replayed: got})
		}
	}
	report.Consistent = len(report.Drift) == 0 && report.ReplayError == ""
	if !report.Consistent && s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"tenant_id":    tenantID.String(),
			"equipment_id": equipmentID.String(),
			"drift":        report.Drift,
		}), "stock.reconcile_drift")
	}
	return report, nil
}

func (s *service) observe(err error) {
	if err == nil {
		return
	}
	if typed := pkgerrors.As(err); typed != nil {
		s.metrics.IncRejection(string(typed.Code()))
		return
	}
	s.metrics.IncRejection(string(pkgerrors.CodeInternal))
}

func (s *service) logMovement(ctx context.Context, eq *models.Equipment, movement *models.StockMovement) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithTenantID(ctx, eq.TenantID.String())
	ctx = s.logg.WithEquipmentID(ctx, eq.ID.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"movement_id":    movement.ID.String(),
		"movement_type":  movement.Type,
		"quantity":       movement.Quantity,
		"previous_stock": movement.PreviousStock,
		"new_stock":      movement.NewStock,
	}), "stock.movement_recorded")
}

func validateRecordInput(input RecordMovementInput) error {
	if input.TenantID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if input.EquipmentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "equipment id is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("unknown movement type %q", input.Type))
	}
	if input.IdempotencyKey != nil && *input.IdempotencyKey == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "idempotency key must not be empty")
	}
	return stock.ValidateQuantity(input.Type, input.Quantity)
}

// isIdempotencyConflict matches the unique index by name on Postgres and by
// column on sqlite.
func isIdempotencyConflict(err error) bool {
	return db.IsUniqueViolation(err, "idx_stock_movements_tenant_idempotency") ||
		db.IsUniqueViolation(err, "stock_movements.idempotency_key")
}

func mapEquipmentError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
}
