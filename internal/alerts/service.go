package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/rentflow-backend/pkg/errors"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
	"github.com/angelmondragon/rentflow-backend/pkg/metrics"
	"github.com/angelmondragon/rentflow-backend/pkg/redis"
)

const defaultTTL = 30 * time.Second

// Cache stores serialized reports. *redis.Client satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	AlertsKey(tenantID string) string
}

type equipmentLister interface {
	ListForAlerts(ctx context.Context, tenantID uuid.UUID) ([]models.Equipment, error)
}

// Service serves tenant alert reports.
type Service interface {
	Alerts(ctx context.Context, tenantID uuid.UUID) (*Report, error)
}

type service struct {
	equipment equipmentLister
	cache     Cache
	ttl       time.Duration
	group     singleflight.Group
	metrics   *metrics.StockMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the alert engine. A nil cache disables caching.
func NewService(equipment equipmentLister, cache Cache, ttl time.Duration, stockMetrics *metrics.StockMetrics, logg *logger.Logger) (Service, error) {
	if equipment == nil {
		return nil, fmt.Errorf("equipment lister required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &service{
		equipment: equipment,
		cache:     cache,
		ttl:       ttl,
		metrics:   stockMetrics,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Alerts returns the cached report when fresh. Concurrent misses for the same
// tenant share one computation, detached from the cancellation of whichever
// caller started it. Cache failures fall back to computing directly.
func (s *service) Alerts(ctx context.Context, tenantID uuid.UUID) (*Report, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id is required")
	}
	if cached := s.fromCache(ctx, tenantID); cached != nil {
		return cached, nil
	}

	v, err, _ := s.group.Do(tenantID.String(), func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		rows, err := s.equipment.ListForAlerts(ctx, tenantID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list equipment")
		}
		report := Derive(rows, s.now())
		s.store(ctx, tenantID, &report)
		return &report, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

func (s *service) fromCache(ctx context.Context, tenantID uuid.UUID) *Report {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, s.cache.AlertsKey(tenantID.String()))
	switch {
	case errors.Is(err, redis.ErrCacheMiss):
		s.metrics.IncAlertsCache("miss")
		return nil
	case err != nil:
		s.metrics.IncAlertsCache("error")
		s.warn(ctx, tenantID, "alerts.cache_read_failed", err)
		return nil
	}
	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		s.metrics.IncAlertsCache("error")
		s.warn(ctx, tenantID, "alerts.cache_decode_failed", err)
		return nil
	}
	s.metrics.IncAlertsCache("hit")
	return &report
}

func (s *service) store(ctx context.Context, tenantID uuid.UUID, report *Report) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.warn(ctx, tenantID, "alerts.cache_encode_failed", err)
		return
	}
	if err := s.cache.Set(ctx, s.cache.AlertsKey(tenantID.String()), payload, s.ttl); err != nil {
		s.metrics.IncAlertsCache("error")
		s.warn(ctx, tenantID, "alerts.cache_write_failed", err)
	}
}

func (s *service) warn(ctx context.Context, tenantID uuid.UUID, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithTenantID(ctx, tenantID.String())
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
