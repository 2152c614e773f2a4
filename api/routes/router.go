package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/rentflow-backend/api/controllers"
	"github.com/angelmondragon/rentflow-backend/api/middleware"
	"github.com/angelmondragon/rentflow-backend/internal/alerts"
	"github.com/angelmondragon/rentflow-backend/internal/availability"
	"github.com/angelmondragon/rentflow-backend/internal/equipment"
	"github.com/angelmondragon/rentflow-backend/internal/ledger"
	"github.com/angelmondragon/rentflow-backend/internal/units"
	"github.com/angelmondragon/rentflow-backend/pkg/config"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
	"github.com/angelmondragon/rentflow-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	metricsHandler http.Handler,
	equipmentService equipment.Service,
	ledgerService ledger.Service,
	availabilityService availability.Service,
	unitService units.Service,
	alertService alerts.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cacheP, logg))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	writers := middleware.RequireRole(logg, enums.MemberRoleOwner, enums.MemberRoleManager, enums.MemberRoleStaff)
	managers := middleware.RequireStockManager(logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.TenantContext(logg))

		r.Get("/stock/alerts", controllers.StockAlerts(alertService, logg))
		r.With(writers).Put("/bookings/{bookingId}/schedule", controllers.BookingReschedule(availabilityService, logg))

		r.Route("/equipment", func(r chi.Router) {
			r.With(managers).Post("/", controllers.EquipmentCreate(equipmentService, logg))

			r.Route("/{equipmentId}", func(r chi.Router) {
				r.Get("/", controllers.EquipmentGet(equipmentService, logg))
				r.With(managers).Patch("/", controllers.EquipmentUpdate(equipmentService, logg))
				r.With(managers).Delete("/", controllers.EquipmentDelete(equipmentService, logg))

				r.Get("/availability", controllers.AvailabilityCheck(availabilityService, logg))
				r.With(writers).Post("/movement", controllers.MovementCreate(ledgerService, logg))
				r.Get("/movements", controllers.MovementList(ledgerService, logg))
				r.Get("/reconcile", controllers.StockReconcile(ledgerService, logg))
				r.With(managers).Put("/adjust", controllers.StockAdjust(ledgerService, logg))

				r.Route("/units", func(r chi.Router) {
					r.Get("/", controllers.UnitList(unitService, logg))
					r.With(writers).Post("/", controllers.UnitCreate(unitService, logg))
					r.With(writers).Put("/{unitId}", controllers.UnitUpdate(unitService, logg))
					r.With(managers).Delete("/{unitId}", controllers.UnitDelete(unitService, logg))
					r.With(writers).Post("/{unitId}/assign", controllers.UnitAssign(unitService, logg))
					r.With(writers).Post("/{unitId}/return", controllers.UnitReturn(unitService, logg))
				})
			})
		})
	})

	return r
}
