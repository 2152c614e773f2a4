package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StockMetrics counts ledger, registry and availability activity.
type StockMetrics struct {
	movements       *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	availability    *prometheus.CounterVec
	unitTransitions *prometheus.CounterVec
	alertsCache     *prometheus.CounterVec
}

// NewStockMetrics registers the stock metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewStockMetrics(reg prometheus.Registerer) *StockMetrics {
	if reg == nil {
		return &StockMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Stock movements committed to the ledger.",
	}, []string{"type"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movement_rejections_total",
		Help: "Stock mutations rejected before commit, by error code.",
	}, []string{"code"})
	availability := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_checks_total",
		Help: "Availability checks by outcome.",
	}, []string{"result"})
	unitTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unit_transitions_total",
		Help: "Equipment unit status transitions.",
	}, []string{"from", "to"})
	alertsCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alerts_cache_total",
		Help: "Stock alert cache lookups by result.",
	}, []string{"result"})
	reg.MustRegister(movements, rejections, availability, unitTransitions, alertsCache)
	return &StockMetrics{
		movements:       movements,
		rejections:      rejections,
		availability:    availability,
		unitTransitions: unitTransitions,
		alertsCache:     alertsCache,
	}
}

// IncMovement counts a committed movement.
func (m *StockMetrics) IncMovement(kind string) {
	if m == nil || m.movements == nil {
		return
	}
	m.movements.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncRejection counts a mutation rejected with the given error code.
func (m *StockMetrics) IncRejection(code string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(code)).Inc()
}

// ObserveAvailability counts an availability check outcome.
func (m *StockMetrics) ObserveAvailability(available bool) {
	if m == nil || m.availability == nil {
		return
	}
	result := "unavailable"
	if available {
		result = "available"
	}
	m.availability.WithLabelValues(result).Inc()
}

// IncUnitTransition counts a unit moving between statuses.
func (m *StockMetrics) IncUnitTransition(from, to string) {
	if m == nil || m.unitTransitions == nil {
		return
	}
	m.unitTransitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncAlertsCache counts an alert cache hit, miss or error.
func (m *StockMetrics) IncAlertsCache(result string) {
	if m == nil || m.alertsCache == nil {
		return
	}
	m.alertsCache.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
