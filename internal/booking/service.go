package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tablio/restaurant-reservation/internal/model"
	"github.com/tablio/restaurant-reservation/internal/notify"
	"github.com/tablio/restaurant-reservation/internal/repository"
	"github.com/tablio/restaurant-reservation/internal/schedule"
)

// TenantStore resolves tenants. Backed by repository.TenantRepo.
type TenantStore interface {
	GetByID(ctx context.Context, tenantID uint64) (*model.Tenant, error)
}

// TableStore reads a tenant's tables and writes lifecycle status
// changes. Backed by repository.TableRepo.
type TableStore interface {
	GetByID(ctx context.Context, tenantID, tableID uint64) (*model.Table, error)
	ListByTenant(ctx context.Context, tenantID uint64) ([]model.Table, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, tenantID, tableID uint64, status string) error
}

// SettingsStore persists per-tenant reservation settings. Backed by
// repository.SettingsRepo.
type SettingsStore interface {
	GetOrCreate(ctx context.Context, tenantID uint64) (*model.ReservationSettings, error)
	Update(ctx context.Context, s *model.ReservationSettings) error
}

// ReservationStore is the persistence boundary for reservations.
// Backed by repository.ReservationRepo.
type ReservationStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error
	GetByID(ctx context.Context, tenantID, id uint64) (*model.Reservation, error)
	List(ctx context.Context, tenantID uint64, f repository.ListFilter) ([]model.Reservation, error)
	ListActiveByDate(ctx context.Context, tenantID uint64, date time.Time) ([]model.Reservation, error)
	ListActiveWithTableByDate(ctx context.Context, tenantID uint64, date time.Time) ([]model.Reservation, error)
	ListActiveForTableTx(ctx context.Context, tx *sql.Tx, tenantID, tableID uint64, date time.Time) ([]model.Reservation, error)
	CountSlotTx(ctx context.Context, tx *sql.Tx, tenantID uint64, date time.Time, startTime string) (int, error)
	HasDuplicateTx(ctx context.Context, tx *sql.Tx, tenantID uint64, date time.Time, startTime, phone string) (bool, error)
	NextNumberTx(ctx context.Context, tx *sql.Tx, tenantID uint64, date time.Time) (string, error)
	AcquireBookingLock(ctx context.Context, conn *sql.Conn, tenantID uint64, date time.Time, timeout time.Duration) error
	ReleaseBookingLock(ctx context.Context, conn *sql.Conn, tenantID uint64, date time.Time) error
	LookupByPhone(ctx context.Context, tenantID uint64, phone, number string) (*model.Reservation, error)
	Stats(ctx context.Context, tenantID uint64, date time.Time) (*model.ReservationStats, error)
	UpdateDetails(ctx context.Context, res *model.Reservation) error
	MarkConfirmed(ctx context.Context, tenantID, id, userID uint64, at time.Time) error
	MarkRejected(ctx context.Context, tenantID, id uint64, reason *string) error
	MarkNoShow(ctx context.Context, tenantID, id uint64) error
	MarkSeatedTx(ctx context.Context, tx *sql.Tx, tenantID, id uint64, at time.Time) error
	MarkCompletedTx(ctx context.Context, tx *sql.Tx, tenantID, id uint64, at time.Time) error
	MarkCancelledTx(ctx context.Context, tx *sql.Tx, tenantID, id uint64, cancelledBy string, at time.Time) error
	Delete(ctx context.Context, tenantID, id uint64) error
}

// EventSink receives lifecycle events. Backed by notify.Dispatcher.
type EventSink interface {
	Emit(ev notify.Event)
}

// bookingLockTimeout bounds how long a booking waits for the per-tenant
// advisory lock before giving up with a conflict.
const bookingLockTimeout = 3 * time.Second

// Service is the reservation engine. It owns the booking validation
// chain, availability and allocation queries, and the lifecycle state
// machine, and emits events for every transition.
type Service struct {
	db       *sql.DB
	tenants  TenantStore
	tables   TableStore
	settings SettingsStore
	resv     ReservationStore
	events   EventSink
	now      func() time.Time
}

// NewService constructs a Service. All dependencies must be non-nil.
func NewService(db *sql.DB, tenants TenantStore, tables TableStore, settings SettingsStore, resv ReservationStore, events EventSink) *Service {
	if tenants == nil || tables == nil || settings == nil || resv == nil || events == nil {
		panic("nil dependency passed to NewService")
	}
	return &Service{
		db:       db,
		tenants:  tenants,
		tables:   tables,
		settings: settings,
		resv:     resv,
		events:   events,
		now:      time.Now,
	}
}

// validateTenant resolves a tenant and rejects inactive ones. Every
// public-facing operation goes through this first.
func (s *Service) validateTenant(ctx context.Context, tenantID uint64) (*model.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !t.IsActive() {
		return nil, repository.ErrForbidden
	}
	return t, nil
}

// parseDate parses a YYYY-MM-DD calendar day at UTC midnight.
func parseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, validationf("invalid date %q", s)
	}
	return d, nil
}

// PublicSettings returns the sanitized settings view for a tenant's
// public booking page.
func (s *Service) PublicSettings(ctx context.Context, tenantID uint64) (*model.PublicSettings, error) {
	if _, err := s.validateTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	set, err := s.settings.GetOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	pub := set.Public()
	return &pub, nil
}

// AvailableSlots returns every bookable start time on a date, full or
// too-soon slots included but marked unavailable. guestCount is
// accepted for interface symmetry with AvailableTables; capacity is a
// table-level concern and does not gate slot generation.
func (s *Service) AvailableSlots(ctx context.Context, tenantID uint64, dateStr string, guestCount uint32) ([]schedule.Slot, error) {
	if _, err := s.validateTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	set, err := s.settings.GetOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	existing, err := s.resv.ListActiveByDate(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	return schedule.BuildSlots(*set, date, existing, s.now()), nil
}

// AvailableTables returns the tenant's tables that can take guestCount
// guests over [startTime,endTime) on the date, ordered by section then
// number.
func (s *Service) AvailableTables(ctx context.Context, tenantID uint64, dateStr, startTime, endTime string, guestCount uint32) ([]model.Table, error) {
	if _, err := s.validateTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	startMin, err := schedule.ParseClock(startTime)
	if err != nil {
		return nil, validationf("invalid start time %q", startTime)
	}
	endMin, err := schedule.ParseClock(endTime)
	if err != nil {
		return nil, validationf("invalid end time %q", endTime)
	}
	if endMin <= startMin {
		return nil, validationf("end time must be after start time")
	}

	tables, err := s.tables.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.resv.ListActiveWithTableByDate(ctx, tenantID, date)
	if err != nil {
		return nil, err
	}
	return schedule.EligibleTables(tables, reserved, startMin, endMin, guestCount), nil
}

// CreateInput is a public booking request.
type CreateInput struct {
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	GuestCount    uint32  `json:"guest_count"`
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	TableID       *uint64 `json:"table_id,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// CreatePublic runs the booking validation chain and persists the
// reservation. The settings-level checks run first; the checks that
// race with concurrent bookings (slot capacity, duplicate phone, table
// overlap, number issuance) run inside one transaction under the
// per-tenant-per-day advisory lock, so two concurrent requests for the
// same table or the last slot cannot both succeed.
func (s *Service) CreatePublic(ctx context.Context, tenantID uint64, in CreateInput) (*model.Reservation, error) {
	if _, err := s.validateTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	set, err := s.settings.GetOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !set.IsEnabled {
		return nil, validationf("reservation system is not enabled")
	}

	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	startMin, err := schedule.ParseClock(in.StartTime)
	if err != nil {
		return nil, validationf("invalid start time %q", in.StartTime)
	}
	endMin, err := schedule.ParseClock(in.EndTime)
	if err != nil {
		return nil, validationf("invalid end time %q", in.EndTime)
	}
	if endMin <= startMin {
		return nil, validationf("end time must be after start time")
	}
	if in.CustomerName == "" || in.CustomerPhone == "" {
		return nil, validationf("customer name and phone are required")
	}

	// All dates in this engine are UTC calendar days; normalize the
	// clock too so a host in another zone does not shift the past-date
	// and advance-window checks around local midnight.
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return nil, validationf("cannot book a past date")
	}
	if set.MaxAdvanceDays >= 0 && date.After(today.AddDate(0, 0, set.MaxAdvanceDays)) {
		return nil, validationf("bookings may be made at most %d days in advance", set.MaxAdvanceDays)
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), startMin/60, startMin%60, 0, 0, time.UTC)
	if start.Sub(now) < time.Duration(set.MinAdvanceBooking)*time.Minute {
		return nil, validationf("bookings require at least %d minutes notice", set.MinAdvanceBooking)
	}
	if _, _, open := schedule.DayWindow(set.OperatingHours, date); !open {
		return nil, validationf("the restaurant is closed on this day")
	}

	if in.GuestCount < 1 {
		return nil, validationf("guest count must be at least 1")
	}
	if int(in.GuestCount) > set.MaxGuestsPerReservation {
		return nil, validationf("maximum guests per reservation is %d", set.MaxGuestsPerReservation)
	}
	if in.TableID != nil {
		table, err := s.tables.GetByID(ctx, tenantID, *in.TableID)
		if err != nil {
			return nil, err
		}
		if in.GuestCount > table.Capacity {
			return nil, validationf("table capacity is %d", table.Capacity)
		}
	}

	// The advisory lock is session-scoped, not transaction-scoped, so
	// the whole booking path runs on one pinned connection: lock, then
	// the transaction, then commit, and only then release. Releasing
	// before the commit would open a window in which a concurrent
	// booking takes the lock and runs its slot and overlap checks
	// against a snapshot that does not yet contain this insert.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if err := s.resv.AcquireBookingLock(ctx, conn, tenantID, date, bookingLockTimeout); err != nil {
		return nil, err
	}
	defer func() { _ = s.resv.ReleaseBookingLock(ctx, conn, tenantID, date) }()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	res, err := s.createLocked(ctx, tx, tenantID, set, date, startMin, endMin, now, in)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.events.Emit(notify.Event{
		Type:     notify.TypeReservationCreated,
		TenantID: tenantID,
		Title:    "New Reservation",
		Message:  fmt.Sprintf("%s - %d guests on %s at %s", in.CustomerName, in.GuestCount, in.Date, in.StartTime),
		Data: map[string]interface{}{
			"reservation_id":     res.ID,
			"reservation_number": res.ReservationNumber,
		},
	})
	return res, nil
}

// createLocked performs the race-sensitive booking checks and the
// insert. It runs with the advisory lock held.
func (s *Service) createLocked(ctx context.Context, tx *sql.Tx, tenantID uint64, set *model.ReservationSettings, date time.Time, startMin, endMin int, now time.Time, in CreateInput) (*model.Reservation, error) {
	if set.MaxReservationsPerSlot != nil {
		n, err := s.resv.CountSlotTx(ctx, tx, tenantID, date, in.StartTime)
		if err != nil {
			return nil, err
		}
		if n >= *set.MaxReservationsPerSlot {
			return nil, validationf("this time slot is fully booked")
		}
	}

	dup, err := s.resv.HasDuplicateTx(ctx, tx, tenantID, date, in.StartTime, in.CustomerPhone)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, validationf("a booking for this phone number already exists at this time")
	}

	if in.TableID != nil {
		existing, err := s.resv.ListActiveForTableTx(ctx, tx, tenantID, *in.TableID, date)
		if err != nil {
			return nil, err
		}
		for _, r := range existing {
			rs, err1 := schedule.ParseClock(r.StartTime)
			re, err2 := schedule.ParseClock(r.EndTime)
			if err1 != nil || err2 != nil {
				continue
			}
			if schedule.Overlaps(startMin, endMin, rs, re) {
				return nil, validationf("the table is already booked for this time")
			}
		}
	}

	number, err := s.resv.NextNumberTx(ctx, tx, tenantID, date)
	if err != nil {
		return nil, err
	}

	res := &model.Reservation{
		ReservationNumber: number,
		TenantID:          tenantID,
		Date:              date,
		StartTime:         in.StartTime,
		EndTime:           in.EndTime,
		GuestCount:        in.GuestCount,
		CustomerName:      in.CustomerName,
		CustomerPhone:     in.CustomerPhone,
		CustomerEmail:     in.CustomerEmail,
		TableID:           in.TableID,
		Notes:             in.Notes,
		Status:            model.StatusConfirmed,
	}
	if set.RequireApproval {
		res.Status = model.StatusPending
	} else {
		at := now
		res.ConfirmedAt = &at
	}
	if err := s.resv.CreateTx(ctx, tx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Lookup returns the reservation matching a phone number and
// reservation number, for the public lookup page.
func (s *Service) Lookup(ctx context.Context, tenantID uint64, phone, number string) (*model.Reservation, error) {
	if _, err := s.validateTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	if phone == "" || number == "" {
		return nil, validationf("phone and reservation number are required")
	}
	return s.resv.LookupByPhone(ctx, tenantID, phone, number)
}

// CancelPublic is a customer-initiated cancellation. It requires the
// tenant's cancellation policy to allow it, the reservation to still be
// PENDING or CONFIRMED, and the start time to be more than the
// cancellation deadline away.
func (s *Service) CancelPublic(ctx context.Context, tenantID, id uint64) (*model.Reservation, error) {
	if _, err := s.validateTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	res, err := s.resv.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	set, err := s.settings.GetOrCreate(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !set.AllowCancellation {
		return nil, validationf("cancellation is not allowed")
	}
	if err := CheckTransition(res.Status, ActionCancelPublic); err != nil {
		return nil, err
	}
	if res.StartsAt().Sub(s.now()) < time.Duration(set.CancellationDeadline)*time.Minute {
		return nil, validationf("cancellation deadline has passed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	if err := s.resv.MarkCancelledTx(ctx, tx, tenantID, id, model.CancelledByCustomer, s.now()); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.events.Emit(notify.Event{
		Type:     notify.TypeReservationCancelled,
		TenantID: tenantID,
		Title:    "Reservation Cancelled",
		Message:  fmt.Sprintf("%s cancelled %s", res.CustomerName, res.ReservationNumber),
		Data:     map[string]interface{}{"reservation_id": id, "cancelled_by": model.CancelledByCustomer},
	})
	return s.resv.GetByID(ctx, tenantID, id)
}
