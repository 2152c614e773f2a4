package units

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/audit"
	"github.com/angelmondragon/rentflow-backend/internal/bookings"
	"github.com/angelmondragon/rentflow-backend/internal/equipment"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/stock"
	"github.com/angelmondragon/rentflow-backend/pkg/tracing"
)

const (
	tracerName       = "rentflow/units"
	serialConstraint = "idx_equipment_units_tenant_serial"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the unit registry of SERIALIZED equipment. Every status change
// moves the owning aggregate by one net delta in the same transaction.
type Service interface {
	CreateUnit(ctx context.Context, input CreateUnitInput) (*UnitDTO, error)
	UpdateUnit(ctx context.Context, input UpdateUnitInput) (*UnitDTO, error)
	UpdateUnitStatus(ctx context.Context, ref UnitRef, status enums.UnitStatus, actorUserID uuid.UUID) (*UnitDTO, error)
	DeleteUnit(ctx context.Context, ref UnitRef, actorUserID uuid.UUID) error
	ListUnits(ctx context.Context, tenantID, equipmentID uuid.UUID) ([]UnitDTO, error)
	AssignUnit(ctx context.Context, input AssignUnitInput) (*UnitDTO, error)
	ReturnUnit(ctx context.Context, input ReturnUnitInput) (*UnitDTO, error)
}

type service struct {
	repo      Repository
	equipment equipment.Repository
	bookings  bookings.Repository
	tx        txRunner
	audit     audit.Writer
	metrics   *metrics.StockMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the unit registry.
func NewService(repo Repository, equipmentRepo equipment.Repository, bookingsRepo bookings.Repository, tx txRunner, auditWriter audit.Writer, stockMetrics *metrics.StockMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("unit repository required")
	}
	if equipmentRepo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if bookingsRepo == nil {
		return nil, fmt.Errorf("bookings repository required")
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
		bookings:  bookingsRepo,
		tx:        tx,
		audit:     auditWriter,
		metrics:   stockMetrics,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) CreateUnit(ctx context.Context, input CreateUnitInput) (dto *UnitDTO, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "units.Create", attribute.String("equipment.id", input.EquipmentID.String()))
	defer func() { tracing.End(span, err) }()

	serial := strings.TrimSpace(input.SerialNumber)
	if serial == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "serial number is required")
	}
	status := input.Status
	if status == "" {
		status = enums.UnitStatusAvailable
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid unit status").
			WithDetails(map[string]any{"status": status})
	}
	if status == enums.UnitStatusRented {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidTransition, "units enter RENTED through a rental assignment")
	}

	unit := &models.EquipmentUnit{
		TenantID:             input.TenantID,
		EquipmentID:          input.EquipmentID,
		SerialNumber:         serial,
		InternalCode:         input.InternalCode,
		Status:               status,
		AcquiredAt:           input.AcquiredAt,
		AcquisitionCostCents: input.AcquisitionCostCents,
		WarrantyExpiresAt:    input.WarrantyExpiresAt,
		Notes:                input.Notes,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		eq, err := s.equipment.WithTx(tx).FindByIDForUpdate(ctx, input.TenantID, input.EquipmentID)
		if err != nil {
			return mapEquipmentError(err)
		}
		if !eq.IsSerialized() {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "units can only be registered on serialized equipment")
		}
		repo := s.repo.WithTx(tx)
		exists, err := repo.SerialExists(ctx, input.TenantID, serial)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check serial number")
		}
		if exists {
			return duplicateSerial(serial)
		}
		if err := repo.Create(ctx, unit); err != nil {
			if db.IsUniqueViolation(err, serialConstraint) {
				return duplicateSerial(serial)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create unit")
		}
		if err := s.shift(ctx, tx, eq, stock.UnitDelta(status, 1)); err != nil {
			return err
		}
		return s.record(ctx, tx, unit, input.ActorUserID, enums.AuditActionUnitCreate, map[string]any{
			"serialNumber": serial,
			"status":       status,
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncUnitTransition("NONE", string(status))
	s.logUnit(ctx, unit, "unit.created")
	return fromModel(unit), nil
}

func (s *service) UpdateUnit(ctx context.Context, input UpdateUnitInput) (*UnitDTO, error) {
	var updated *models.EquipmentUnit
	var from enums.UnitStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		eq, unit, err := s.lock(ctx, tx, input.UnitRef)
		if err != nil {
			return err
		}
		from = unit.Status
		changes := map[string]any{}
		if input.InternalCode != nil {
			unit.InternalCode = input.InternalCode
			changes["internalCode"] = *input.InternalCode
		}
		if input.Notes != nil {
			unit.Notes = input.Notes
			changes["notes"] = *input.Notes
		}
		if input.WarrantyExpiresAt != nil {
			unit.WarrantyExpiresAt = input.WarrantyExpiresAt
			changes["warrantyExpiresAt"] = *input.WarrantyExpiresAt
		}
		if input.Status != nil {
			open, err := s.hasOpenRental(ctx, tx, unit)
			if err != nil {
				return err
			}
			if err := s.changeStatus(ctx, tx, eq, unit, *input.Status, open, false); err != nil {
				return err
			}
			changes["status"] = unit.Status
		}
		if len(changes) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no changes supplied")
		}
		if err := s.repo.WithTx(tx).Save(ctx, unit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save unit")
		}
		updated = unit
		return s.record(ctx, tx, unit, input.ActorUserID, enums.AuditActionUnitUpdate, changes)
	})
	if err != nil {
		return nil, err
	}
	s.countTransition(from, updated.Status)
	s.logUnit(ctx, updated, "unit.updated")
	return fromModel(updated), nil
}

func (s *service) UpdateUnitStatus(ctx context.Context, ref UnitRef, status enums.UnitStatus, actorUserID uuid.UUID) (dto *UnitDTO, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "units.UpdateStatus",
		attribute.String("unit.id", ref.UnitID.String()),
		attribute.String("unit.status", string(status)),
	)
	defer func() { tracing.End(span, err) }()

	var updated *models.EquipmentUnit
	var from enums.UnitStatus
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		eq, unit, err := s.lock(ctx, tx, ref)
		if err != nil {
			return err
		}
		from = unit.Status
		open, err := s.hasOpenRental(ctx, tx, unit)
		if err != nil {
			return err
		}
		if err := s.changeStatus(ctx, tx, eq, unit, status, open, false); err != nil {
			return err
		}
		updated = unit
		if from == unit.Status {
			return nil
		}
		if err := s.repo.WithTx(tx).Save(ctx, unit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save unit")
		}
		return s.record(ctx, tx, unit, actorUserID, enums.AuditActionUnitUpdate, map[string]any{
			"from": from,
			"to":   unit.Status,
		})
	})
	if err != nil {
		return nil, err
	}
	s.countTransition(from, updated.Status)
	s.logUnit(ctx, updated, "unit.status_changed")
	return fromModel(updated), nil
}

func (s *service) DeleteUnit(ctx context.Context, ref UnitRef, actorUserID uuid.UUID) error {
	var deleted *models.EquipmentUnit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		eq, unit, err := s.lock(ctx, tx, ref)
		if err != nil {
			return err
		}
		open, err := s.hasOpenRental(ctx, tx, unit)
		if err != nil {
			return err
		}
		if open {
			return unitInUse(unit)
		}
		if err := s.repo.WithTx(tx).Delete(ctx, unit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete unit")
		}
		if err := s.shift(ctx, tx, eq, stock.UnitDelta(unit.Status, 1).Negate()); err != nil {
			return err
		}
		deleted = unit
		return s.record(ctx, tx, unit, actorUserID, enums.AuditActionUnitDelete, map[string]any{
			"serialNumber": unit.SerialNumber,
			"lastStatus":   unit.Status,
		})
	})
	if err != nil {
		return err
	}
	s.logUnit(ctx, deleted, "unit.deleted")
	return nil
}

func (s *service) ListUnits(ctx context.Context, tenantID, equipmentID uuid.UUID) ([]UnitDTO, error) {
	if _, err := s.equipment.FindByID(ctx, tenantID, equipmentID); err != nil {
		return nil, mapEquipmentError(err)
	}
	rows, err := s.repo.ListByEquipment(ctx, tenantID, equipmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list units")
	}
	out := make([]UnitDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}

// AssignUnit opens a rental of an AVAILABLE unit against a live booking of its equipment.
func (s *service) AssignUnit(ctx context.Context, input AssignUnitInput) (*UnitDTO, error) {
	var assigned *models.EquipmentUnit
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		eq, unit, err := s.lock(ctx, tx, input.UnitRef)
		if err != nil {
			return err
		}
		open, err := s.hasOpenRental(ctx, tx, unit)
		if err != nil {
			return err
		}
		if open {
			return unitInUse(unit)
		}
		if unit.Status != enums.UnitStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only AVAILABLE units can be assigned").
				WithDetails(map[string]any{"unitId": unit.ID, "status": unit.Status})
		}

		booking, err := s.bookings.WithTx(tx).FindByID(ctx, input.TenantID, input.BookingID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		if !booking.Status.ConsumesCapacity() {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "booking is not active").
				WithDetails(map[string]any{"bookingId": booking.ID, "status": booking.Status})
		}
		if !bookings.References(booking, unit.EquipmentID) {
			return pkgerrors.New(pkgerrors.CodeValidation, "booking does not reserve this equipment")
		}

		if err := s.repo.WithTx(tx).CreateRental(ctx, &models.UnitRental{
			TenantID:  input.TenantID,
			UnitID:    unit.ID,
			BookingID: booking.ID,
			RentedAt:  s.now().UTC(),
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open unit rental")
		}
		if err := s.changeStatus(ctx, tx, eq, unit, enums.UnitStatusRented, false, true); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Save(ctx, unit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save unit")
		}
		assigned = unit
		return s.record(ctx, tx, unit, input.ActorUserID, enums.AuditActionUnitAssign, map[string]any{
			"bookingId": booking.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	s.countTransition(enums.UnitStatusAvailable, enums.UnitStatusRented)
	s.logUnit(ctx, assigned, "unit.assigned")
	return fromModel(assigned), nil
}

// ReturnUnit closes the open rental and moves the unit to the returned condition.
func (s *service) ReturnUnit(ctx context.Context, input ReturnUnitInput) (*UnitDTO, error) {
	condition := input.Condition
	if condition == "" {
		condition = enums.UnitStatusAvailable
	}
	switch condition {
	case enums.UnitStatusAvailable, enums.UnitStatusMaintenance, enums.UnitStatusDamaged:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return condition must be AVAILABLE, MAINTENANCE or DAMAGED").
			WithDetails(map[string]any{"condition": condition})
	}

	var returned *models.EquipmentUnit
	var from enums.UnitStatus
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		eq, unit, err := s.lock(ctx, tx, input.UnitRef)
		if err != nil {
			return err
		}
		from = unit.Status
		repo := s.repo.WithTx(tx)
		rental, err := repo.FindOpenRental(ctx, input.TenantID, unit.ID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeInvalidTransition, "unit has no open rental")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit rental")
		}
		if err := repo.CloseRental(ctx, rental, s.now().UTC()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close unit rental")
		}
		if err := s.changeStatus(ctx, tx, eq, unit, condition, false, false); err != nil {
			return err
		}
		if err := repo.Save(ctx, unit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save unit")
		}
		returned = unit
		return s.record(ctx, tx, unit, input.ActorUserID, enums.AuditActionUnitReturn, map[string]any{
			"bookingId": rental.BookingID,
			"condition": condition,
		})
	})
	if err != nil {
		return nil, err
	}
	s.countTransition(from, returned.Status)
	s.logUnit(ctx, returned, "unit.returned")
	return fromModel(returned), nil
}

// lock loads the unit, locks its equipment row, then re-reads the unit under lock.
func (s *service) lock(ctx context.Context, tx *gorm.DB, ref UnitRef) (*models.Equipment, *models.EquipmentUnit, error) {
	repo := s.repo.WithTx(tx)
	unit, err := repo.FindByID(ctx, ref.TenantID, ref.UnitID)
	if err != nil {
		return nil, nil, mapUnitError(err)
	}
	if ref.EquipmentID != uuid.Nil && unit.EquipmentID != ref.EquipmentID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
	}
	eq, err := s.equipment.WithTx(tx).FindByIDForUpdate(ctx, ref.TenantID, unit.EquipmentID)
	if err != nil {
		return nil, nil, mapEquipmentError(err)
	}
	unit, err = repo.FindByIDForUpdate(ctx, ref.TenantID, ref.UnitID)
	if err != nil {
		return nil, nil, mapUnitError(err)
	}
	return eq, unit, nil
}

// changeStatus validates the transition and applies its net bucket delta to eq.
// Only rental assignment (viaRental) may move a unit into RENTED. The caller
// persists the unit.
func (s *service) changeStatus(ctx context.Context, tx *gorm.DB, eq *models.Equipment, unit *models.EquipmentUnit, next enums.UnitStatus, openRental, viaRental bool) error {
	if !next.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid unit status").
			WithDetails(map[string]any{"status": next})
	}
	if unit.Status == next {
		return nil
	}
	if unit.Status == enums.UnitStatusRetired {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition, "retired units cannot change status").
			WithDetails(map[string]any{"unitId": unit.ID})
	}
	if next == enums.UnitStatusRented && !viaRental {
		return pkgerrors.New(pkgerrors.CodeInvalidTransition, "units enter RENTED through a rental assignment").
			WithDetails(map[string]any{"unitId": unit.ID, "from": unit.Status})
	}
	if openRental && next != enums.UnitStatusRented && next != enums.UnitStatusDamaged {
		return unitInUse(unit)
	}
	if err := s.shift(ctx, tx, eq, stock.BucketDelta(unit.Status, next, 1)); err != nil {
		return err
	}
	unit.Status = next
	return nil
}

func (s *service) shift(ctx context.Context, tx *gorm.DB, eq *models.Equipment, delta stock.Delta) error {
	if delta.IsZero() {
		return nil
	}
	next, err := eq.Buckets().Apply(delta)
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	eq.SetBuckets(next)
	if err := s.equipment.WithTx(tx).SaveBuckets(ctx, eq); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save stock buckets")
	}
	return nil
}

func (s *service) hasOpenRental(ctx context.Context, tx *gorm.DB, unit *models.EquipmentUnit) (bool, error) {
	_, err := s.repo.WithTx(tx).FindOpenRental(ctx, unit.TenantID, unit.ID)
	if err == nil {
		return true, nil
	}
	if db.IsNotFound(err) {
		return false, nil
	}
	return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit rental")
}

func (s *service) record(ctx context.Context, tx *gorm.DB, unit *models.EquipmentUnit, actorUserID uuid.UUID, action enums.AuditAction, data map[string]any) error {
	data["equipmentId"] = unit.EquipmentID
	return s.audit.Record(ctx, tx, audit.Entry{
		TenantID:     unit.TenantID,
		ActorUserID:  actorUserID,
		ResourceType: audit.ResourceUnit,
		ResourceID:   unit.ID,
		Action:       action,
		Data:         data,
	})
}

func (s *service) countTransition(from, to enums.UnitStatus) {
	if from != to {
		s.metrics.IncUnitTransition(string(from), string(to))
	}
}

func (s *service) logUnit(ctx context.Context, unit *models.EquipmentUnit, msg string) {
	if s.logg == nil || unit == nil {
		return
	}
	ctx = s.logg.WithTenantID(ctx, unit.TenantID.String())
	ctx = s.logg.WithEquipmentID(ctx, unit.EquipmentID.String())
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"unit_id": unit.ID.String(),
		"status":  unit.Status,
	}), msg)
}

func duplicateSerial(serial string) error {
	return pkgerrors.New(pkgerrors.CodeDuplicateSerialNumber, "serial number already registered").
		WithDetails(map[string]any{"serialNumber": serial})
}

func unitInUse(unit *models.EquipmentUnit) error {
	return pkgerrors.New(pkgerrors.CodeUnitInUse, "unit is attached to an open rental").
		WithDetails(map[string]any{"unitId": unit.ID, "status": unit.Status})
}

func mapUnitError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "unit not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load unit")
}

func mapEquipmentError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
}
