package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tablio/restaurant-reservation/internal/model"
	"github.com/tablio/restaurant-reservation/internal/repository"
)

// TenantResolver looks up a tenant by its public slug. Backed by
// repository.TenantRepo.
type TenantResolver interface {
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)
}

// ResolveTenant returns a middleware for the public booking routes. It
// resolves the :tenant path parameter (a slug) to a tenant row, rejects
// unknown and suspended tenants, and stores the numeric id in the
// context under "tenant_id" for the handlers.
func ResolveTenant(tenants TenantResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			slug := c.Param("tenant")
			if slug == "" {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing restaurant slug"})
			}
			t, err := tenants.GetBySlug(c.Request().Context(), slug)
			if err != nil {
				if errors.Is(err, repository.ErrTenantNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			if !t.IsActive() {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "restaurant is not accepting reservations"})
			}
			c.Set("tenant_id", t.ID)
			c.Set("tenant", t)
			return next(c)
		}
	}
}
