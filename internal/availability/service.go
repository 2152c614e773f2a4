package availability

import (
	"context"
	"fmt"
	"sort"
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

const tracerName = "rentflow/availability"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service resolves period availability and guards booking reschedules.
type Service interface {
	CheckAvailability(ctx context.Context, query Query) (*Result, error)
	CheckAvailabilityTx(ctx context.Context, tx *gorm.DB, query Query) (*Result, error)
	Reschedule(ctx context.Context, input RescheduleInput) (*RescheduleResult, error)
}

type service struct {
	equipment equipment.Repository
	bookings  bookings.Repository
	tx        txRunner
	audit     audit.Writer
	metrics   *metrics.StockMetrics
	logg      *logger.Logger
}

// NewService wires the availability resolver.
func NewService(equipmentRepo equipment.Repository, bookingsRepo bookings.Repository, tx txRunner, auditWriter audit.Writer, stockMetrics *metrics.StockMetrics, logg *logger.Logger) (Service, error) {
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
		equipment: equipmentRepo,
		bookings:  bookingsRepo,
		tx:        tx,
		audit:     auditWriter,
		metrics:   stockMetrics,
		logg:      logg,
	}, nil
}

// CheckAvailability is a read-only check for display; it reserves nothing.
func (s *service) CheckAvailability(ctx context.Context, query Query) (result *Result, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "availability.Check",
		attribute.String("equipment.id", query.EquipmentID.String()),
		attribute.Int("availability.quantity", query.Quantity),
	)
	defer func() { tracing.End(span, err) }()

	window, err := validateQuery(query)
	if err != nil {
		return nil, err
	}
	eq, err := s.equipment.FindByID(ctx, query.TenantID, query.EquipmentID)
	if err != nil {
		return nil, mapEquipmentError(err)
	}
	return s.resolve(ctx, s.bookings, eq, window, query)
}

// CheckAvailabilityTx runs the same check on tx with the equipment row locked,
// so a caller can act on the answer before anyone else moves the aggregate.
func (s *service) CheckAvailabilityTx(ctx context.Context, tx *gorm.DB, query Query) (result *Result, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "availability.CheckTx",
		attribute.String("equipment.id", query.EquipmentID.String()),
		attribute.Int("availability.quantity", query.Quantity),
	)
	defer func() { tracing.End(span, err) }()

	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	window, err := validateQuery(query)
	if err != nil {
		return nil, err
	}
	eq, err := s.equipment.WithTx(tx).FindByIDForUpdate(ctx, query.TenantID, query.EquipmentID)
	if err != nil {
		return nil, mapEquipmentError(err)
	}
	return s.resolve(ctx, s.bookings.WithTx(tx), eq, window, query)
}

func (s *service) resolve(ctx context.Context, repo bookings.Repository, eq *models.Equipment, window stock.Interval, query Query) (*Result, error) {
	reservations, err := repo.ListReservations(ctx, query.TenantID, eq.ID, window, query.ExcludeBookingID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservations")
	}
	reserved, conflicts := stock.Fold(window, reservations, query.ExcludeBookingID)
	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].Start.Before(conflicts[j].Start)
	})

	b := eq.Buckets()
	capacity := stock.PeriodCapacity(b, reserved)
	result := &Result{
		Equipment: EquipmentSummary{ID: eq.ID, Name: eq.Name, Status: eq.Status},
		Stock: StockFigures{
			Total:              b.Total,
			Available:          b.Available,
			Maintenance:        b.Maintenance,
			Damaged:            b.Damaged,
			ReservedInPeriod:   reserved,
			AvailableForPeriod: capacity,
		},
		Requested:   query.Quantity,
		IsAvailable: capacity >= query.Quantity && eq.Status != enums.EquipmentStatusInactive,
		Conflicts:   conflicts,
	}
	s.metrics.ObserveAvailability(result.IsAvailable)
	return result, nil
}

// Reschedule moves a booking's dates when every equipment it holds can absorb
// the new interval, not counting the booking itself.
func (s *service) Reschedule(ctx context.Context, input RescheduleInput) (result *RescheduleResult, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "availability.Reschedule", attribute.String("booking.id", input.BookingID.String()))
	defer func() { tracing.End(span, err) }()

	window, err := stock.NewInterval(input.Start, input.End)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookings.WithTx(tx).FindByIDForUpdate(ctx, input.TenantID, input.BookingID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}
		previous := stock.Interval{Start: stock.Day(booking.StartDate), End: stock.Day(booking.EndDate)}

		checks := make([]Result, 0)
		if booking.Status.ConsumesCapacity() {
			var shortages []Shortage
			demand := bookings.Demand(booking)
			for _, equipmentID := range sortedEquipment(demand) {
				quantity := demand[equipmentID]
				check, err := s.CheckAvailabilityTx(ctx, tx, Query{
					TenantID:         input.TenantID,
					EquipmentID:      equipmentID,
					Start:            window.Start,
					End:              window.End,
					Quantity:         quantity,
					ExcludeBookingID: &booking.ID,
				})
				if err != nil {
					return err
				}
				checks = append(checks, *check)
				if !check.IsAvailable {
					shortages = append(shortages, Shortage{
						EquipmentID:        equipmentID,
						Requested:          quantity,
						AvailableForPeriod: check.Stock.AvailableForPeriod,
						Conflicts:          check.Conflicts,
					})
				}
			}
			if len(shortages) > 0 {
				return pkgerrors.New(pkgerrors.CodeConflictingReservation, "new dates conflict with existing reservations").
					WithDetails(map[string]any{"shortages": shortages})
			}
		}

		if err := s.bookings.WithTx(tx).UpdateDates(ctx, booking, window); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update booking dates")
		}
		if err := s.audit.Record(ctx, tx, audit.Entry{
			TenantID:     input.TenantID,
			ActorUserID:  input.ActorUserID,
			ResourceType: audit.ResourceBooking,
			ResourceID:   booking.ID,
			Action:       enums.AuditActionBookingReschedule,
			Data: map[string]any{
				"previousStart": previous.Start.Format(time.DateOnly),
				"previousEnd":   previous.End.Format(time.DateOnly),
				"startDate":     window.Start.Format(time.DateOnly),
				"endDate":       window.End.Format(time.DateOnly),
			},
		}); err != nil {
			return err
		}

		result = &RescheduleResult{
			BookingID: booking.ID,
			StartDate: window.Start.Format(time.DateOnly),
			EndDate:   window.End.Format(time.DateOnly),
			Status:    booking.Status,
			Checks:    checks,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithTenantID(ctx, input.TenantID.String())
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"booking_id": input.BookingID.String(),
			"start_date": result.StartDate,
			"end_date":   result.EndDate,
		}), "booking.rescheduled")
	}
	return result, nil
}

func validateQuery(query Query) (stock.Interval, error) {
	if query.TenantID == uuid.Nil || query.EquipmentID == uuid.Nil {
		return stock.Interval{}, pkgerrors.New(pkgerrors.CodeValidation, "tenant and equipment are required")
	}
	if query.Quantity < 1 {
		return stock.Interval{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": query.Quantity})
	}
	return stock.NewInterval(query.Start, query.End)
}

// sortedEquipment keeps lock acquisition order stable across concurrent reschedules.
func sortedEquipment(demand map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func mapEquipmentError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "equipment not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
}
