package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/rentflow-backend/api/middleware"
	"github.com/angelmondragon/rentflow-backend/api/validators"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
)

type caller struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
}

func callerFromRequest(r *http.Request) (caller, error) {
	tenantID := middleware.TenantIDFromContext(r.Context())
	if tenantID == uuid.Nil {
		return caller{}, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing")
	}
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		return caller{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return caller{TenantID: tenantID, UserID: userID}, nil
}

func equipmentIDParam(r *http.Request) (uuid.UUID, error) {
	return validators.ParseUUIDParam(chi.URLParam(r, "equipmentId"), "equipmentId")
}

func unitIDParam(r *http.Request) (uuid.UUID, error) {
	return validators.ParseUUIDParam(chi.URLParam(r, "unitId"), "unitId")
}

func bookingIDParam(r *http.Request) (uuid.UUID, error) {
	return validators.ParseUUIDParam(chi.URLParam(r, "bookingId"), "bookingId")
}

func optionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := validators.ParseDate(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field).WithDetails(map[string]any{"field": field})
	}
	return &t, nil
}
