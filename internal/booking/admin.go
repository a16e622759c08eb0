package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tablio/restaurant-reservation/internal/model"
	"github.com/tablio/restaurant-reservation/internal/notify"
	"github.com/tablio/restaurant-reservation/internal/repository"
	"github.com/tablio/restaurant-reservation/internal/schedule"
)

// Staff operations. Tenant identity comes from the caller's verified
// JWT claims, so unlike the public surface these do not re-validate the
// tenant on every call.

// List returns the tenant's reservations matching the filter.
func (s *Service) List(ctx context.Context, tenantID uint64, f repository.ListFilter) ([]model.Reservation, error) {
	return s.resv.List(ctx, tenantID, f)
}

// Get returns one reservation scoped to the tenant.
func (s *Service) Get(ctx context.Context, tenantID, id uint64) (*model.Reservation, error) {
	return s.resv.GetByID(ctx, tenantID, id)
}

// Stats returns per-status counts for a date; an empty date means today.
func (s *Service) Stats(ctx context.Context, tenantID uint64, dateStr string) (*model.ReservationStats, error) {
	var date time.Time
	if dateStr == "" {
		now := s.now().UTC()
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else {
		var err error
		if date, err = parseDate(dateStr); err != nil {
			return nil, err
		}
	}
	return s.resv.Stats(ctx, tenantID, date)
}

// UpdateInput carries the staff-editable reservation fields. Nil
// pointers leave the stored value untouched; ClearTable removes the
// table assignment.
type UpdateInput struct {
	Date          *string `json:"date,omitempty"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	GuestCount    *uint32 `json:"guest_count,omitempty"`
	CustomerName  *string `json:"customer_name,omitempty"`
	CustomerPhone *string `json:"customer_phone,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	TableID       *uint64 `json:"table_id,omitempty"`
	ClearTable    bool    `json:"clear_table,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	AdminNotes    *string `json:"admin_notes,omitempty"`
}

// Update edits a reservation's schedule, party, contact info, table
// assignment or notes. A changed table is re-checked for ownership and
// capacity; a changed window must remain well-formed. Status never
// changes here — that is what the lifecycle operations are for.
func (s *Service) Update(ctx context.Context, tenantID, id uint64, in UpdateInput) (*model.Reservation, error) {
	res, err := s.resv.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if in.Date != nil {
		d, err := parseDate(*in.Date)
		if err != nil {
			return nil, err
		}
		res.Date = d
	}
	if in.StartTime != nil {
		res.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		res.EndTime = *in.EndTime
	}
	startMin, err := schedule.ParseClock(res.StartTime)
	if err != nil {
		return nil, validationf("invalid start time %q", res.StartTime)
	}
	endMin, err := schedule.ParseClock(res.EndTime)
	if err != nil {
		return nil, validationf("invalid end time %q", res.EndTime)
	}
	if endMin <= startMin {
		return nil, validationf("end time must be after start time")
	}

	if in.GuestCount != nil {
		if *in.GuestCount < 1 {
			return nil, validationf("guest count must be at least 1")
		}
		res.GuestCount = *in.GuestCount
	}
	if in.CustomerName != nil {
		res.CustomerName = *in.CustomerName
	}
	if in.CustomerPhone != nil {
		res.CustomerPhone = *in.CustomerPhone
	}
	if in.CustomerEmail != nil {
		res.CustomerEmail = in.CustomerEmail
	}
	if in.Notes != nil {
		res.Notes = in.Notes
	}
	if in.AdminNotes != nil {
		res.AdminNotes = in.AdminNotes
	}

	switch {
	case in.ClearTable:
		res.TableID = nil
	case in.TableID != nil:
		table, err := s.tables.GetByID(ctx, tenantID, *in.TableID)
		if err != nil {
			return nil, err
		}
		if res.GuestCount > table.Capacity {
			return nil, validationf("table capacity is %d", table.Capacity)
		}
		res.TableID = in.TableID
	}

	if err := s.resv.UpdateDetails(ctx, res); err != nil {
		return nil, err
	}
	return s.resv.GetByID(ctx, tenantID, id)
}

// Confirm approves a pending reservation, recording the approving user.
func (s *Service) Confirm(ctx context.Context, tenantID, id, userID uint64) (*model.Reservation, error) {
	res, err := s.resv.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(res.Status, ActionConfirm); err != nil {
		return nil, err
	}
	if err := s.resv.MarkConfirmed(ctx, tenantID, id, userID, s.now()); err != nil {
		return nil, err
	}
	s.emitTransition(notify.TypeReservationConfirmed, "Reservation Confirmed", res, id)
	return s.resv.GetByID(ctx, tenantID, id)
}

// Reject declines a pending or confirmed reservation with an optional
// reason shown to the customer.
func (s *Service) Reject(ctx context.Context, tenantID, id uint64, reason *string) (*model.Reservation, error) {
	res, err := s.resv.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(res.Status, ActionReject); err != nil {
		return nil, err
	}
	if err := s.resv.MarkRejected(ctx, tenantID, id, reason); err != nil {
		return nil, err
	}
	s.emitTransition(notify.TypeReservationRejected, "Reservation Rejected", res, id)
	return s.resv.GetByID(ctx, tenantID, id)
}

// Seat marks a confirmed party as arrived. When a table is assigned its
// status flips to RESERVED in the same transaction.
func (s *Service) Seat(ctx context.Context, tenantID, id uint64) (*model.Reservation, error) {
	res, err := s.resv.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(res.Status, ActionSeat); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := s.resv.MarkSeatedTx(ctx, tx, tenantID, id, s.now()); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if res.TableID != nil {
		if err := s.tables.UpdateStatusTx(ctx, tx, tenantID, *res.TableID, model.TableReserved); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.emitTransition(notify.TypeReservationSeated, "Party Seated", res, id)
	return s.resv.GetByID(ctx, tenantID, id)
}

// Complete finishes a seated reservation and frees its table.
func (s *Service) Complete(ctx context.Context, tenantID, id uint64) (*model.Reservation, error) {
	res, err := s.resv.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(res.Status, ActionComplete); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := s.resv.MarkCompletedTx(ctx, tx, tenantID, id, s.now()); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if res.TableID != nil {
		if err := s.tables.UpdateStatusTx(ctx, tx, tenantID, *res.TableID, model.TableAvailable); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.emitTransition(notify.TypeReservationCompleted, "Reservation Completed", res, id)
	return s.resv.GetByID(ctx, tenantID, id)
}

// NoShow marks a pending or confirmed reservation as a no-show.
func (s *Service) NoShow(ctx context.Context, tenantID, id uint64) (*model.Reservation, error) {
	res, err := s.resv.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(res.Status, ActionNoShow); err != nil {
		return nil, err
	}
	if err := s.resv.MarkNoShow(ctx, tenantID, id); err != nil {
		return nil, err
	}
	s.emitTransition(notify.TypeReservationNoShow, "Reservation No-Show", res, id)
	return s.resv.GetByID(ctx, tenantID, id)
}

// Cancel is the staff cancellation. It is allowed from any non-terminal
// state except completion; cancelling a seated reservation frees its
// table in the same transaction.
func (s *Service) Cancel(ctx context.Context, tenantID, id, userID uint64) (*model.Reservation, error) {
	res, err := s.resv.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(res.Status, ActionCancel); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := s.resv.MarkCancelledTx(ctx, tx, tenantID, id, strconv.FormatUint(userID, 10), s.now()); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if res.Status == model.StatusSeated && res.TableID != nil {
		if err := s.tables.UpdateStatusTx(ctx, tx, tenantID, *res.TableID, model.TableAvailable); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.emitTransition(notify.TypeReservationCancelled, "Reservation Cancelled", res, id)
	return s.resv.GetByID(ctx, tenantID, id)
}

// Delete removes a reservation permanently. Lifecycle transitions never
// delete; this is the explicit administrative removal only.
func (s *Service) Delete(ctx context.Context, tenantID, id uint64) error {
	return s.resv.Delete(ctx, tenantID, id)
}

func (s *Service) emitTransition(evType, title string, res *model.Reservation, id uint64) {
	s.events.Emit(notify.Event{
		Type:     evType,
		TenantID: res.TenantID,
		Title:    title,
		Message:  fmt.Sprintf("%s (%s)", res.ReservationNumber, res.CustomerName),
		Data:     map[string]interface{}{"reservation_id": id},
	})
}

// Settings returns the tenant's full reservation settings, creating the
// default row on first access. Calling it twice without an intervening
// update returns identical values.
func (s *Service) Settings(ctx context.Context, tenantID uint64) (*model.ReservationSettings, error) {
	return s.settings.GetOrCreate(ctx, tenantID)
}

// SettingsInput is a partial settings update. Nil pointers leave the
// stored value untouched. A MaxReservationsPerSlot of 0 clears the cap.
type SettingsInput struct {
	IsEnabled               *bool                 `json:"is_enabled,omitempty"`
	RequireApproval         *bool                 `json:"require_approval,omitempty"`
	TimeSlotInterval        *int                  `json:"time_slot_interval,omitempty"`
	MinAdvanceBooking       *int                  `json:"min_advance_booking,omitempty"`
	MaxAdvanceDays          *int                  `json:"max_advance_days,omitempty"`
	DefaultDuration         *int                  `json:"default_duration,omitempty"`
	OperatingHours          *model.OperatingHours `json:"operating_hours,omitempty"`
	MaxGuestsPerReservation *int                  `json:"max_guests_per_reservation,omitempty"`
	MaxReservationsPerSlot  *int                  `json:"max_reservations_per_slot,omitempty"`
	AllowCancellation       *bool                 `json:"allow_cancellation,omitempty"`
	CancellationDeadline    *int                  `json:"cancellation_deadline,omitempty"`
	BannerTitle             *string               `json:"banner_title,omitempty"`
	BannerDescription       *string               `json:"banner_description,omitempty"`
	CustomMessage           *string               `json:"custom_message,omitempty"`
}

// UpdateSettings merges a partial update into the stored settings and
// persists the result. Only type-level constraints are enforced here;
// business interpretation of the values happens at the point of use, so
// marking a day closed blocks new bookings without touching existing
// ones.
func (s *Service) UpdateSettings(ctx context.Context, tenantID uint64, in SettingsInput) (*model.ReservationSettings, error) {
	set, err := s.settings.GetOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if in.IsEnabled != nil {
		set.IsEnabled = *in.IsEnabled
	}
	if in.RequireApproval != nil {
		set.RequireApproval = *in.RequireApproval
	}
	if in.TimeSlotInterval != nil {
		if *in.TimeSlotInterval <= 0 {
			return nil, validationf("time slot interval must be positive")
		}
		set.TimeSlotInterval = *in.TimeSlotInterval
	}
	if in.MinAdvanceBooking != nil {
		set.MinAdvanceBooking = *in.MinAdvanceBooking
	}
	if in.MaxAdvanceDays != nil {
		if *in.MaxAdvanceDays < 0 {
			return nil, validationf("max advance days cannot be negative")
		}
		set.MaxAdvanceDays = *in.MaxAdvanceDays
	}
	if in.DefaultDuration != nil {
		if *in.DefaultDuration <= 0 {
			return nil, validationf("default duration must be positive")
		}
		set.DefaultDuration = *in.DefaultDuration
	}
	if in.OperatingHours != nil {
		set.OperatingHours = *in.OperatingHours
	}
	if in.MaxGuestsPerReservation != nil {
		if *in.MaxGuestsPerReservation < 1 {
			return nil, validationf("max guests per reservation must be at least 1")
		}
		set.MaxGuestsPerReservation = *in.MaxGuestsPerReservation
	}
	if in.MaxReservationsPerSlot != nil {
		if *in.MaxReservationsPerSlot <= 0 {
			set.MaxReservationsPerSlot = nil
		} else {
			set.MaxReservationsPerSlot = in.MaxReservationsPerSlot
		}
	}
	if in.AllowCancellation != nil {
		set.AllowCancellation = *in.AllowCancellation
	}
	if in.CancellationDeadline != nil {
		set.CancellationDeadline = *in.CancellationDeadline
	}
	if in.BannerTitle != nil {
		set.BannerTitle = in.BannerTitle
	}
	if in.BannerDescription != nil {
		set.BannerDescription = in.BannerDescription
	}
	if in.CustomMessage != nil {
		set.CustomMessage = in.CustomMessage
	}

	if err := s.settings.Update(ctx, set); err != nil {
		return nil, err
	}
	return s.settings.GetOrCreate(ctx, tenantID)
}
