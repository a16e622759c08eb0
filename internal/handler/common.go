package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tablio/restaurant-reservation/internal/booking"
	"github.com/tablio/restaurant-reservation/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT claims arrive as float64 after JSON decoding, so several
// representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	return contextID(c, "user_id")
}

// getTenantID extracts the tenant_id placed in the context by either
// the JWT middleware (staff routes) or the tenant resolver (public
// routes).
func getTenantID(c echo.Context) (uint64, error) {
	return contextID(c, "tenant_id")
}

func contextID(c echo.Context, key string) (uint64, error) {
	v := c.Get(key)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid " + key + " in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// respondError maps service and repository errors to HTTP responses.
// Validation failures are client mistakes (400), sentinel not-found
// errors become 404, ErrForbidden 403 and ErrConflict 409 (a retryable
// race on booking creation). Everything else is a 500 with a generic
// message so internals never leak to customers.
func respondError(c echo.Context, err error) error {
	switch {
	case booking.IsValidation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrTenantNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrTableNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking conflict, please retry"})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
