package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/tablio/restaurant-reservation/internal/handler"
)

// RegisterRoutes registers routes that require neither authentication
// nor a tenant. Currently it exposes only a health check, used by load
// balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
