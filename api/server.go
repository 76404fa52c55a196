/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the planning frontend

ROUTE GROUPS:
  /api/drivers/*      Driver resources, availability, hours, overtime terms
  /api/trucks/*       Truck resources and availability
  /api/availability   Grid and day-partition listings
  /api/overtime/*     Classification, conflict check, ranking
  /api/trips/*        Trip master data
  /api/holidays/*     Company day-offs
  /api/reset          Database reset (dev only)

  Driver and truck routes share handlers; the kind is bound at route
  registration, never parsed out of the path.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fleetops/scheduling-engine/schedule"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Driver routes
		r.Route("/drivers", func(r chi.Router) {
			resourceRoutes(r, h, schedule.KindDriver)
			r.Get("/{id}/hours", h.driverHours)
			r.Get("/{id}/overtime-setting", h.getOvertimeSetting)
			r.Put("/{id}/overtime-setting", h.putOvertimeSetting)
		})

		// Truck routes
		r.Route("/trucks", func(r chi.Router) {
			resourceRoutes(r, h, schedule.KindTruck)
		})

		// Grid and listing routes
		r.Route("/availability", func(r chi.Router) {
			r.Get("/", h.batchStatus)
			r.Get("/day", h.dayPartition)
		})

		// Overtime routes
		r.Route("/overtime", func(r chi.Router) {
			r.Post("/check", h.checkOvertime)
			r.Post("/conflict", h.checkConflict)
			r.Get("/rank", h.rankDrivers)
		})

		// Trip routes
		r.Route("/trips", func(r chi.Router) {
			r.Post("/", h.createTrip)
			r.Get("/{id}", h.getTrip)
			r.Post("/{id}/cancel", h.cancelTrip)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.listHolidays)
			r.Post("/", h.createHoliday)
			r.Delete("/{id}", h.deleteHoliday)
		})

		// Dev only
		r.Post("/reset", h.reset)
	})

	return r
}

// resourceRoutes wires the kind-shared resource and availability routes.
func resourceRoutes(r chi.Router, h *Handler, kind schedule.ResourceKind) {
	r.Get("/", h.listResources(kind))
	r.Post("/", h.createResource(kind))
	r.Get("/{id}/availability", h.rangeStatus(kind))
	r.Get("/{id}/availability/{date}", h.dayStatus(kind))
	r.Put("/{id}/availability/{date}", h.setOverride(kind))
	r.Post("/{id}/availability/initialize", h.initializeRange(kind))
}
