package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tablio/restaurant-reservation/internal/booking"
)

// PublicHandler serves the customer-facing booking pages. The tenant is
// resolved from the :tenant slug by middleware before any of these run,
// so each method only reads "tenant_id" from the context. No
// authentication applies; customers identify bookings by phone number
// plus reservation number.
type PublicHandler struct {
	Svc *booking.Service
}

// NewPublicHandler constructs a PublicHandler. The service must be non-nil.
func NewPublicHandler(svc *booking.Service) *PublicHandler {
	if svc == nil {
		panic("nil service passed to NewPublicHandler")
	}
	return &PublicHandler{Svc: svc}
}

// GetSettings handles GET /v1/public/:tenant/reservation-settings. It
// returns the sanitized settings for the booking page: operating hours,
// lead-time rules and banner text, never the approval or capacity
// policy.
func (h *PublicHandler) GetSettings(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant"})
	}
	settings, err := h.Svc.PublicSettings(c.Request().Context(), tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": settings})
}

// GetSlots handles GET /v1/public/:tenant/reservation-slots?date=YYYY-MM-DD.
// It returns every slot of the day with its availability flag so the
// booking page can grey out full or too-soon times.
func (h *PublicHandler) GetSlots(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}
	guests := queryUint32(c, "guests")

	slots, err := h.Svc.AvailableSlots(c.Request().Context(), tenantID, date, guests)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "slots": slots})
}

// GetTables handles GET /v1/public/:tenant/reservation-tables. Query
// parameters: date, start_time, end_time and guests. It returns the
// tables that can seat the party over the requested window.
func (h *PublicHandler) GetTables(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant"})
	}
	date := c.QueryParam("date")
	start := c.QueryParam("start_time")
	end := c.QueryParam("end_time")
	if date == "" || start == "" || end == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date, start_time and end_time are required"})
	}
	guests := queryUint32(c, "guests")

	tables, err := h.Svc.AvailableTables(c.Request().Context(), tenantID, date, start, end, guests)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

// CreateReservation handles POST /v1/public/:tenant/reservations. The
// body is a booking.CreateInput. On success it returns 201 with the
// stored reservation, whose status depends on the tenant's approval
// policy.
func (h *PublicHandler) CreateReservation(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant"})
	}
	var in booking.CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Svc.CreatePublic(c.Request().Context(), tenantID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res})
}

// Lookup handles GET /v1/public/:tenant/reservations/lookup with phone
// and number query parameters. Requiring both keeps one customer from
// enumerating another's booking by number alone.
func (h *PublicHandler) Lookup(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant"})
	}
	res, err := h.Svc.Lookup(c.Request().Context(), tenantID, c.QueryParam("phone"), c.QueryParam("number"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// CancelReservation handles POST /v1/public/:tenant/reservations/:id/cancel.
// The cancellation policy (allowed at all, deadline) is enforced by the
// service.
func (h *PublicHandler) CancelReservation(c echo.Context) error {
	tenantID, err := getTenantID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.CancelPublic(c.Request().Context(), tenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// queryUint32 parses an optional numeric query parameter; absent or
// malformed values resolve to 0, which the service treats as "not
// specified".
func queryUint32(c echo.Context, name string) uint32 {
	v := c.QueryParam(name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}
