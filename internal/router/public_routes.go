package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tablio/restaurant-reservation/internal/handler"
	"github.com/tablio/restaurant-reservation/internal/middleware"
)

// RegisterPublic registers the customer-facing booking routes under
// /v1/public/:tenant. Every route passes through the tenant resolver,
// which maps the slug to a tenant id and rejects suspended tenants.
// Additional middleware (rate limiting, response caching) is applied
// group-wide; the cache middleware only acts on GETs, so the booking
// POSTs pass through untouched.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, tenants middleware.TenantResolver, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1/public/:tenant")
	g.Use(middleware.ResolveTenant(tenants))
	for _, m := range mw {
		g.Use(m)
	}

	// Browse: settings, day availability and table availability.
	g.GET("/reservation-settings", p.GetSettings)
	g.GET("/reservation-slots", p.GetSlots)
	g.GET("/reservation-tables", p.GetTables)

	// Booking, lookup and customer cancellation.
	g.POST("/reservations", p.CreateReservation)
	g.GET("/reservations/lookup", p.Lookup)
	g.POST("/reservations/:id/cancel", p.CancelReservation)
}
