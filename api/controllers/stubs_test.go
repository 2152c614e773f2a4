package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rentflow-backend/api/middleware"
	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/internal/availability"
	"github.com/angelmondragon/rentflow-backend/internal/equipment"
	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/units"
	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/pagination"
)

func withCaller(r *http.Request, role enums.MemberRole) (*http.Request, uuid.UUID, uuid.UUID) {
	userID := uuid.New()
	tenantID := uuid.New()
	return r.WithContext(middleware.WithIdentity(r.Context(), userID, tenantID, role)), userID, tenantID
}

type stubEquipmentService struct {
	dto        *equipment.EquipmentDTO
	err        error
	lastCreate equipment.CreateInput
	lastUpdate equipment.UpdateInput
}

func (s *stubEquipmentService) Create(ctx context.Context, input equipment.CreateInput) (*equipment.EquipmentDTO, error) {
	s.lastCreate = input
	return s.dto, s.err
}

func (s *stubEquipmentService) Get(ctx context.Context, tenantID, equipmentID uuid.UUID) (*equipment.EquipmentDTO, error) {
	return s.dto, s.err
}

func (s *stubEquipmentService) Update(ctx context.Context, input equipment.UpdateInput) (*equipment.EquipmentDTO, error) {
	s.lastUpdate = input
	return s.dto, s.err
}

func (s *stubEquipmentService) Delete(ctx context.Context, tenantID, equipmentID, actorUserID uuid.UUID) error {
	return s.err
}

type stubLedgerService struct {
	result     *ledger.MovementResult
	page       *ledger.MovementPage
	report     *ledger.ReconcileReport
	err        error
	lastRecord ledger.RecordMovementInput
	lastAdjust ledger.AdjustInput
	lastParams pagination.Params
}

func (s *stubLedgerService) RecordMovement(ctx context.Context, input ledger.RecordMovementInput) (*ledger.MovementResult, error) {
	s.lastRecord = input
	return s.result, s.err
}

func (s *stubLedgerService) RecordMovementTx(ctx context.Context, tx *gorm.DB, input ledger.RecordMovementInput) (*ledger.MovementResult, error) {
	return s.RecordMovement(ctx, input)
}

func (s *stubLedgerService) AdjustTotalStock(ctx context.Context, input ledger.AdjustInput) (*ledger.MovementResult, error) {
	s.lastAdjust = input
	return s.result, s.err
}

func (s *stubLedgerService) ListMovements(ctx context.Context, tenantID, equipmentID uuid.UUID, params pagination.Params) (*ledger.MovementPage, error) {
	s.lastParams = params
	return s.page, s.err
}

func (s *stubLedgerService) Reconcile(ctx context.Context, tenantID, equipmentID uuid.UUID) (*ledger.ReconcileReport, error) {
	return s.report, s.err
}

func (s *stubLedgerService) SeedInitialStock(ctx context.Context, tx *gorm.DB, eq *models.Equipment, quantity int, actorUserID uuid.UUID) error {
	return s.err
}

type stubAvailabilityService struct {
	result     *availability.Result
	reschedule *availability.RescheduleResult
	err        error
	lastQuery  availability.Query
	lastInput  availability.RescheduleInput
}

func (s *stubAvailabilityService) CheckAvailability(ctx context.Context, query availability.Query) (*availability.Result, error) {
	s.lastQuery = query
	return s.result, s.err
}

func (s *stubAvailabilityService) CheckAvailabilityTx(ctx context.Context, tx *gorm.DB, query availability.Query) (*availability.Result, error) {
	return s.CheckAvailability(ctx, query)
}

func (s *stubAvailabilityService) Reschedule(ctx context.Context, input availability.RescheduleInput) (*availability.RescheduleResult, error) {
	s.lastInput = input
	return s.reschedule, s.err
}

type stubUnitService struct {
	dto        *units.UnitDTO
	list       []units.UnitDTO
	err        error
	lastCreate units.CreateUnitInput
	lastUpdate units.UpdateUnitInput
	lastReturn units.ReturnUnitInput
	lastAssign units.AssignUnitInput
}

func (s *stubUnitService) CreateUnit(ctx context.Context, input units.CreateUnitInput) (*units.UnitDTO, error) {
	s.lastCreate = input
	return s.dto, s.err
}

func (s *stubUnitService) UpdateUnit(ctx context.Context, input units.UpdateUnitInput) (*units.UnitDTO, error) {
	s.lastUpdate = input
	return s.dto, s.err
}

func (s *stubUnitService) UpdateUnitStatus(ctx context.Context, ref units.UnitRef, status enums.UnitStatus, actorUserID uuid.UUID) (*units.UnitDTO, error) {
	return s.dto, s.err
}

func (s *stubUnitService) DeleteUnit(ctx context.Context, ref units.UnitRef, actorUserID uuid.UUID) error {
	return s.err
}

func (s *stubUnitService) ListUnits(ctx context.Context, tenantID, equipmentID uuid.UUID) ([]units.UnitDTO, error) {
	return s.list, s.err
}

func (s *stubUnitService) AssignUnit(ctx context.Context, input units.AssignUnitInput) (*units.UnitDTO, error) {
	s.lastAssign = input
	return s.dto, s.err
}

func (s *stubUnitService) ReturnUnit(ctx context.Context, input units.ReturnUnitInput) (*units.UnitDTO, error) {
	s.lastReturn = input
	return s.dto, s.err
}

type stubAlertService struct {
	report *alerts.Report
	err    error
}

func (s stubAlertService) Alerts(ctx context.Context, tenantID uuid.UUID) (*alerts.Report, error) {
	return s.report, s.err
}
