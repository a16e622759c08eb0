package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tablio/restaurant-reservation/internal/booking"
	"github.com/tablio/restaurant-reservation/internal/repository"
)

// StaffHandler serves the staff reservation book under /v1. JWT and
// role middleware run first; the tenant comes from the token's
// tenant_id claim, so staff can never address another restaurant's
// bookings regardless of what ids they send.
type StaffHandler struct {
	Svc *booking.Service
}

// NewStaffHandler constructs a StaffHandler. The service must be non-nil.
func NewStaffHandler(svc *booking.Service) *StaffHandler {
	if svc == nil {
		panic("nil service passed to NewStaffHandler")
	}
	return &StaffHandler{Svc: svc}
}

// identity pulls the tenant and user ids placed in the context by the
// JWT middleware.
func (h *StaffHandler) identity(c echo.Context) (tenantID, userID uint64, err error) {
	tenantID, err = getTenantID(c)
	if err != nil {
		return 0, 0, err
	}
	userID, err = getUserID(c)
	if err != nil {
		return 0, 0, err
	}
	return tenantID, userID, nil
}

// List handles GET /v1/reservations. Optional query parameters: date,
// status, table_id, search (matches name, phone or number), limit and
// offset.
func (h *StaffHandler) List(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var f repository.ListFilter
	if d := c.QueryParam("date"); d != "" {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
		}
		f.Date = &day
	}
	f.Status = c.QueryParam("status")
	if t := c.QueryParam("table_id"); t != "" {
		id, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table_id"})
		}
		f.TableID = &id
	}
	f.Search = c.QueryParam("search")
	if l := c.QueryParam("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			f.Limit = n
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			f.Offset = n
		}
	}

	items, err := h.Svc.List(c.Request().Context(), tenantID, f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Stats handles GET /v1/reservations/stats?date=YYYY-MM-DD. An absent
// date means today.
func (h *StaffHandler) Stats(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	stats, err := h.Svc.Stats(c.Request().Context(), tenantID, c.QueryParam("date"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": stats})
}

// Get handles GET /v1/reservations/:id.
func (h *StaffHandler) Get(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Update handles PATCH /v1/reservations/:id with a booking.UpdateInput
// body. Status never changes through this endpoint.
func (h *StaffHandler) Update(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var in booking.UpdateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Svc.Update(c.Request().Context(), tenantID, id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Confirm handles POST /v1/reservations/:id/confirm.
func (h *StaffHandler) Confirm(c echo.Context) error {
	tenantID, userID, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.Confirm(c.Request().Context(), tenantID, id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Reject handles POST /v1/reservations/:id/reject with an optional
// {"reason": "..."} body.
func (h *StaffHandler) Reject(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Reason *string `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Svc.Reject(c.Request().Context(), tenantID, id, body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Seat handles POST /v1/reservations/:id/seat.
func (h *StaffHandler) Seat(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.Seat(c.Request().Context(), tenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Complete handles POST /v1/reservations/:id/complete.
func (h *StaffHandler) Complete(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.Complete(c.Request().Context(), tenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// NoShow handles POST /v1/reservations/:id/no-show.
func (h *StaffHandler) NoShow(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.NoShow(c.Request().Context(), tenantID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Cancel handles POST /v1/reservations/:id/cancel. The staff
// cancellation ignores the customer-facing deadline policy.
func (h *StaffHandler) Cancel(c echo.Context) error {
	tenantID, userID, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Svc.Cancel(c.Request().Context(), tenantID, id, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res})
}

// Delete handles DELETE /v1/reservations/:id and returns 204 on success.
func (h *StaffHandler) Delete(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), tenantID, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSettings handles GET /v1/reservations/settings/current, returning
// the full settings row including the internal policy fields.
func (h *StaffHandler) GetSettings(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	settings, err := h.Svc.Settings(c.Request().Context(), tenantID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": settings})
}

// UpdateSettings handles PATCH /v1/reservations/settings/current with a
// booking.SettingsInput body; omitted fields keep their stored values.
func (h *StaffHandler) UpdateSettings(c echo.Context) error {
	tenantID, _, err := h.identity(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in booking.SettingsInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	settings, err := h.Svc.UpdateSettings(c.Request().Context(), tenantID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": settings})
}
