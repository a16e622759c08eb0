package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/tablio/restaurant-reservation/internal/model"
)

// SettingsRepo persists per-tenant reservation settings. One row per
// tenant; the row is created lazily with defaults on first access and
// updated in place afterwards. Operating hours are stored as a JSON
// column decoded into the weekday-keyed struct.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a new SettingsRepo bound to the given database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

const settingsColumns = `tenant_id, is_enabled, require_approval, time_slot_interval,
	min_advance_booking, max_advance_days, default_duration, operating_hours,
	max_guests_per_reservation, max_reservations_per_slot, allow_cancellation,
	cancellation_deadline, banner_title, banner_description, custom_message, updated_at`

// GetOrCreate returns the tenant's settings, inserting the default row
// when none exists yet. The insert tolerates a concurrent creation of
// the same row: on a duplicate-key error the row is simply re-read, so
// two racing first reads observe identical values.
func (r *SettingsRepo) GetOrCreate(ctx context.Context, tenantID uint64) (*model.ReservationSettings, error) {
	s, err := r.get(ctx, tenantID)
	if err == nil {
		return s, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	def := model.DefaultReservationSettings(tenantID)
	hours, err := json.Marshal(def.OperatingHours)
	if err != nil {
		return nil, err
	}
	const ins = `INSERT IGNORE INTO reservation_settings
		(tenant_id, is_enabled, require_approval, time_slot_interval, min_advance_booking,
		 max_advance_days, default_duration, operating_hours, max_guests_per_reservation,
		 allow_cancellation, cancellation_deadline)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, ins,
		def.TenantID, def.IsEnabled, def.RequireApproval, def.TimeSlotInterval,
		def.MinAdvanceBooking, def.MaxAdvanceDays, def.DefaultDuration, hours,
		def.MaxGuestsPerReservation, def.AllowCancellation, def.CancellationDeadline,
	); err != nil {
		return nil, err
	}
	return r.get(ctx, tenantID)
}

// Update persists the full settings row. Callers merge partial updates
// into a snapshot obtained from GetOrCreate before calling.
func (r *SettingsRepo) Update(ctx context.Context, s *model.ReservationSettings) error {
	hours, err := json.Marshal(s.OperatingHours)
	if err != nil {
		return err
	}
	const q = `UPDATE reservation_settings SET
		is_enabled = ?, require_approval = ?, time_slot_interval = ?,
		min_advance_booking = ?, max_advance_days = ?, default_duration = ?,
		operating_hours = ?, max_guests_per_reservation = ?,
		max_reservations_per_slot = ?, allow_cancellation = ?,
		cancellation_deadline = ?, banner_title = ?, banner_description = ?,
		custom_message = ?
		WHERE tenant_id = ?`
	_, err = r.db.ExecContext(ctx, q,
		s.IsEnabled, s.RequireApproval, s.TimeSlotInterval,
		s.MinAdvanceBooking, s.MaxAdvanceDays, s.DefaultDuration,
		hours, s.MaxGuestsPerReservation,
		s.MaxReservationsPerSlot, s.AllowCancellation,
		s.CancellationDeadline, s.BannerTitle, s.BannerDescription,
		s.CustomMessage, s.TenantID,
	)
	return err
}

func (r *SettingsRepo) get(ctx context.Context, tenantID uint64) (*model.ReservationSettings, error) {
	const q = `SELECT ` + settingsColumns + ` FROM reservation_settings WHERE tenant_id = ?`
	var (
		s        model.ReservationSettings
		hoursRaw []byte
		slotCap  sql.NullInt64
		title    sql.NullString
		desc     sql.NullString
		msg      sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, tenantID).Scan(
		&s.TenantID, &s.IsEnabled, &s.RequireApproval, &s.TimeSlotInterval,
		&s.MinAdvanceBooking, &s.MaxAdvanceDays, &s.DefaultDuration, &hoursRaw,
		&s.MaxGuestsPerReservation, &slotCap, &s.AllowCancellation,
		&s.CancellationDeadline, &title, &desc, &msg, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(hoursRaw) > 0 {
		if err := json.Unmarshal(hoursRaw, &s.OperatingHours); err != nil {
			return nil, err
		}
	}
	if slotCap.Valid {
		v := int(slotCap.Int64)
		s.MaxReservationsPerSlot = &v
	}
	if title.Valid {
		s.BannerTitle = &title.String
	}
	if desc.Valid {
		s.BannerDescription = &desc.String
	}
	if msg.Valid {
		s.CustomMessage = &msg.String
	}
	return &s, nil
}
