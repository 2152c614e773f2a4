package equipment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/internal/audit"
	"github.com/angelmondragon/rentflow-backend/pkg/db"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// StockSeeder records the opening PURCHASE of a QUANTITY equipment inside tx
// and leaves eq holding the resulting buckets.
type StockSeeder interface {
	SeedInitialStock(ctx context.Context, tx *gorm.DB, eq *models.Equipment, quantity int, actorUserID uuid.UUID) error
}

// Service exposes the equipment aggregate lifecycle.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*EquipmentDTO, error)
	Get(ctx context.Context, tenantID, equipmentID uuid.UUID) (*EquipmentDTO, error)
	Update(ctx context.Context, input UpdateInput) (*EquipmentDTO, error)
	Delete(ctx context.Context, tenantID, equipmentID, actorUserID uuid.UUID) error
}

type service struct {
	repo   Repository
	tx     txRunner
	seeder StockSeeder
	audit  audit.Writer
	logg   *logger.Logger
}

// NewService wires the equipment service.
func NewService(repo Repository, tx txRunner, seeder StockSeeder, auditWriter audit.Writer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("equipment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if seeder == nil {
		return nil, fmt.Errorf("stock seeder required")
	}
	if auditWriter == nil {
		return nil, fmt.Errorf("audit writer required")
	}
	return &service{repo: repo, tx: tx, seeder: seeder, audit: auditWriter, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*EquipmentDTO, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.TrackingMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tracking mode").
			WithDetails(map[string]any{"trackingMode": input.TrackingMode})
	}
	status := input.Status
	if status == "" {
		status = enums.EquipmentStatusActive
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid equipment status").
			WithDetails(map[string]any{"status": status})
	}
	if input.InitialQuantity < 0 || input.MinStockLevel < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantities must not be negative")
	}
	if input.TrackingMode == enums.TrackingModeSerialized && input.InitialQuantity > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "serialized equipment starts empty; register units instead")
	}

	eq := &models.Equipment{
		TenantID:      input.TenantID,
		Name:          name,
		Status:        status,
		TrackingMode:  input.TrackingMode,
		MinStockLevel: input.MinStockLevel,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, eq); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create equipment")
		}
		if input.InitialQuantity > 0 {
			if err := s.seeder.SeedInitialStock(ctx, tx, eq, input.InitialQuantity, input.ActorUserID); err != nil {
				return err
			}
		}
		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:     eq.TenantID,
			ActorUserID:  input.ActorUserID,
			ResourceType: audit.ResourceEquipment,
			ResourceID:   eq.ID,
			Action:       enums.AuditActionEquipmentCreate,
			Data: map[string]any{
				"name":            eq.Name,
				"trackingMode":    eq.TrackingMode,
				"initialQuantity": input.InitialQuantity,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logInfo(ctx, eq, "equipment.created")
	return FromModel(eq), nil
}

func (s *service) Get(ctx context.Context, tenantID, equipmentID uuid.UUID) (*EquipmentDTO, error) {
	eq, err := s.repo.FindByID(ctx, tenantID, equipmentID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return FromModel(eq), nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*EquipmentDTO, error) {
	var updated *models.Equipment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		eq, err := repo.FindByIDForUpdate(ctx, input.TenantID, input.EquipmentID)
		if err != nil {
			return mapLoadError(err)
		}
		changes := map[string]any{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
			}
			eq.Name = name
			changes["name"] = name
		}
		if input.Status != nil {
			if !input.Status.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid equipment status")
			}
			eq.Status = *input.Status
			changes["status"] = eq.Status
		}
		if input.MinStockLevel != nil {
			if *input.MinStockLevel < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "min stock level must not be negative")
			}
			eq.MinStockLevel = *input.MinStockLevel
			changes["minStockLevel"] = eq.MinStockLevel
		}
		if len(changes) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "no changes supplied")
		}
		if err := repo.UpdateDetails(ctx, eq); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update equipment")
		}
		updated = eq
		return s.audit.Record(ctx, tx, audit.Entry{
			TenantID:     eq.TenantID,
			ActorUserID:  input.ActorUserID,
			ResourceType: audit.ResourceEquipment,
			ResourceID:   eq.ID,
			Action:       enums.AuditActionEquipmentUpdate,
			Data:         changes,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logInfo(ctx, updated, "equipment.updated")
	return FromModel(updated), nil
}

// Delete refuses while units or capacity-consuming bookings still reference the equipment.
func (s *service) Delete(ctx context.Context, tenantID, equipmentID, actorUserID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		eq, err := repo.FindByIDForUpdate(ctx, tenantID, equipmentID)
		if err != nil {
			return mapLoadError(err)
		}
		units, err := repo.CountUnits(ctx, tenantID, equipmentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count units")
		}
		if units > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "equipment still has registered units").
				WithDetails(map[string]any{"units": units})
		}
		reservations, err := repo.CountActiveReservations(ctx, tenantID, equipmentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count reservations")
		}
		if reservations > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "equipment still has active reservations").
				WithDetails(map[string]any{"reservations": reservations})
		}
		// The ledger rows go with the equipment; the audit entry keeps its final state.
		movements, err := repo.CountMovements(ctx, tenantID, equipmentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stock movements")
		}
		if err := repo.Delete(ctx, tenantID, equipmentID); err != nil {
			return mapLoadError(err)
		}
		if err := s.audit.Record(ctx, tx, audit.Entry{
			TenantID:     tenantID,
			ActorUserID:  actorUserID,
			ResourceType: audit.ResourceEquipment,
			ResourceID:   equipmentID,
			Action:       enums.AuditActionEquipmentDelete,
			Data: map[string]any{
				"name":         eq.Name,
				"trackingMode": eq.TrackingMode,
				"buckets":      eq.Buckets(),
				"movements":    movements,
			},
		}); err != nil {
			return err
		}
		s.logInfo(ctx, eq, "equipment.deleted")
		return nil
	})
}

func (s *service) logInfo(ctx context.Context, eq *models.Equipment, msg string) {
	if s.logg == nil || eq == nil {
		return
	}
	ctx = s.logg.WithTenantID(ctx, eq.TenantID.String())
	ctx = s.logg.WithEquipmentID(ctx, eq.ID.String())
	s.logg.Info(ctx, msg)
}

func mapLoadError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
}
