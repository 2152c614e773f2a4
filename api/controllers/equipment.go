package controllers

import (
	"net/http"

	"github.com/angelmondragon/rentflow-backend/api/responses"
	"github.com/angelmondragon/rentflow-backend/api/validators"
	"github.com/angelmondragon/rentflow-backend/internal/equipment"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

type equipmentCreateRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=200"`
	TrackingMode    string `json:"trackingMode" validate:"required,oneof=QUANTITY SERIALIZED"`
	Status          string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	InitialQuantity int    `json:"initialQuantity" validate:"min=0"`
	MinStockLevel   int    `json:"minStockLevel" validate:"min=0"`
}

type equipmentUpdateRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	MinStockLevel *int    `json:"minStockLevel,omitempty" validate:"omitempty,min=0"`
}

// EquipmentCreate registers a catalog item and seeds its opening stock.
func EquipmentCreate(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
			return
		}
		who, err := callerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload equipmentCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := equipment.CreateInput{
			TenantID:        who.TenantID,
			ActorUserID:     who.UserID,
			Name:            validators.SanitizeString(payload.Name, 200),
			TrackingMode:    enums.TrackingMode(payload.TrackingMode),
			InitialQuantity: payload.InitialQuantity,
			MinStockLevel:   payload.MinStockLevel,
		}
		if payload.Status != "" {
			input.Status = enums.EquipmentStatus(payload.Status)
		}

		dto, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func EquipmentGet(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
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

		dto, err := svc.Get(r.Context(), who.TenantID, equipmentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// EquipmentUpdate edits name, status and the low-stock threshold. Buckets are never written here.
func EquipmentUpdate(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
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

		var payload equipmentUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := equipment.UpdateInput{
			TenantID:      who.TenantID,
			ActorUserID:   who.UserID,
			EquipmentID:   equipmentID,
			MinStockLevel: payload.MinStockLevel,
		}
		if payload.Name != nil {
			name := validators.SanitizeString(*payload.Name, 200)
			input.Name = &name
		}
		if payload.Status != nil {
			status := enums.EquipmentStatus(*payload.Status)
			input.Status = &status
		}

		dto, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func EquipmentDelete(svc equipment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "equipment service unavailable"))
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

		if err := svc.Delete(r.Context(), who.TenantID, equipmentID, who.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
