package router

import (
	"github.com/labstack/echo/v4"

	"github.com/tablio/restaurant-reservation/internal/handler"
	"github.com/tablio/restaurant-reservation/internal/middleware"
)

// RegisterStaff registers the reservation book endpoints under /v1.
// All routes require a valid staff JWT carrying a tenant_id claim; the
// role middleware accepts any restaurant staff role. Deleting a
// reservation and editing settings are restricted to managers and
// admins.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "MANAGER", "WAITER"))

	g.GET("/reservations", s.List)
	g.GET("/reservations/stats", s.Stats)
	g.GET("/reservations/:id", s.Get)
	g.PATCH("/reservations/:id", s.Update)

	// Lifecycle transitions.
	g.POST("/reservations/:id/confirm", s.Confirm)
	g.POST("/reservations/:id/reject", s.Reject)
	g.POST("/reservations/:id/seat", s.Seat)
	g.POST("/reservations/:id/complete", s.Complete)
	g.POST("/reservations/:id/no-show", s.NoShow)
	g.POST("/reservations/:id/cancel", s.Cancel)

	// Destructive and policy operations need a manager.
	mgr := g.Group("", middleware.RequireRole("ADMIN", "MANAGER"))
	mgr.DELETE("/reservations/:id", s.Delete)
	mgr.GET("/reservations/settings/current", s.GetSettings)
	mgr.PATCH("/reservations/settings/current", s.UpdateSettings)
}
