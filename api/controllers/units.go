package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/api/responses"
	"github.com/angelmondragon/rentflow-backend/api/validators"
	"github.com/angelmondragon/rentflow-backend/internal/units"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

type unitCreateRequest struct {
	SerialNumber         string  `json:"serialNumber" validate:"required,min=1,max=120"`
	InternalCode         *string `json:"internalCode,omitempty" validate:"omitempty,max=120"`
	Status               string  `json:"status,omitempty"`
	AcquiredAt           *string `json:"acquiredAt,omitempty"`
	AcquisitionCostCents *int64  `json:"acquisitionCostCents,omitempty" validate:"omitempty,min=0"`
	WarrantyExpiresAt    *string `json:"warrantyExpiresAt,omitempty"`
	Notes                *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type unitUpdateRequest struct {
	Status            *string `json:"status,omitempty"`
	InternalCode      *string `json:"internalCode,omitempty" validate:"omitempty,max=120"`
	Notes             *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	WarrantyExpiresAt *string `json:"warrantyExpiresAt,omitempty"`
}

type unitAssignRequest struct {
	BookingID uuid.UUID `json:"bookingId" validate:"required"`
}

type unitReturnRequest struct {
	Condition string `json:"condition,omitempty"`
}

func UnitList(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}
		who, err := callerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		equipmentID, err := equipmentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListUnits(r.Context(), who.TenantID, equipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func UnitCreate(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}
		who, err := callerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		equipmentID, err := equipmentIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload unitCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := units.CreateUnitInput{
			TenantID:             who.TenantID,
			EquipmentID:          equipmentID,
			ActorUserID:          who.UserID,
			SerialNumber:         validators.SanitizeString(payload.SerialNumber, 120),
			InternalCode:         payload.InternalCode,
			AcquisitionCostCents: payload.AcquisitionCostCents,
			Notes:                payload.Notes,
		}
		if payload.Status != "" {
			status, err := parseUnitStatus(payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			input.Status = status
		}
		if input.AcquiredAt, err = optionalDate(payload.AcquiredAt, "acquiredAt"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if input.WarrantyExpiresAt, err = optionalDate(payload.WarrantyExpiresAt, "warrantyExpiresAt"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateUnit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UnitUpdate edits metadata and, when status is present, moves the unit through the bucket rules.
func UnitUpdate(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}
		ref, who, err := unitRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload unitUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := units.UpdateUnitInput{
			UnitRef:      ref,
			ActorUserID:  who.UserID,
			InternalCode: payload.InternalCode,
			Notes:        payload.Notes,
		}
		if payload.Status != nil {
			status, err := parseUnitStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").WithDetails(map[string]any{"field": "status"}))
				return
			}
			input.Status = &status
		}
		if input.WarrantyExpiresAt, err = optionalDate(payload.WarrantyExpiresAt, "warrantyExpiresAt"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateUnit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func UnitDelete(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}
		ref, who, err := unitRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteUnit(r.Context(), ref, who.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UnitAssign attaches an available unit to a booking.
func UnitAssign(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}
		ref, who, err := unitRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload unitAssignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.AssignUnit(r.Context(), units.AssignUnitInput{
			UnitRef:     ref,
			ActorUserID: who.UserID,
			BookingID:   payload.BookingID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UnitReturn closes the open rental and lands the unit in the reported condition.
func UnitReturn(svc units.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "unit service unavailable"))
			return
		}
		ref, who, err := unitRef(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload unitReturnRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		input := units.ReturnUnitInput{UnitRef: ref, ActorUserID: who.UserID}
		if strings.TrimSpace(payload.Condition) != "" {
			condition, err := parseUnitStatus(payload.Condition)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition").WithDetails(map[string]any{"field": "condition"}))
				return
			}
			input.Condition = condition
		}

		dto, err := svc.ReturnUnit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func unitRef(r *http.Request) (units.UnitRef, caller, error) {
	who, err := callerFromRequest(r)
	if err != nil {
		return units.UnitRef{}, caller{}, err
	}
	equipmentID, err := equipmentIDParam(r)
	if err != nil {
		return units.UnitRef{}, caller{}, err
	}
	unitID, err := unitIDParam(r)
	if err != nil {
		return units.UnitRef{}, caller{}, err
	}
	return units.UnitRef{TenantID: who.TenantID, EquipmentID: equipmentID, UnitID: unitID}, who, nil
}

func parseUnitStatus(raw string) (enums.UnitStatus, error) {
	return enums.ParseUnitStatus(strings.ToUpper(strings.TrimSpace(raw)))
}
