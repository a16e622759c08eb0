package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablio/restaurant-reservation/internal/model"
)

func settingsRows(t *testing.T, s model.ReservationSettings) *sqlmock.Rows {
	t.Helper()
	hours, err := json.Marshal(s.OperatingHours)
	require.NoError(t, err)

	var slotCap interface{}
	if s.MaxReservationsPerSlot != nil {
		slotCap = *s.MaxReservationsPerSlot
	}
	return sqlmock.NewRows([]string{
		"tenant_id", "is_enabled", "require_approval", "time_slot_interval",
		"min_advance_booking", "max_advance_days", "default_duration", "operating_hours",
		"max_guests_per_reservation", "max_reservations_per_slot", "allow_cancellation",
		"cancellation_deadline", "banner_title", "banner_description", "custom_message", "updated_at",
	}).AddRow(
		s.TenantID, s.IsEnabled, s.RequireApproval, s.TimeSlotInterval,
		s.MinAdvanceBooking, s.MaxAdvanceDays, s.DefaultDuration, hours,
		s.MaxGuestsPerReservation, slotCap, s.AllowCancellation,
		s.CancellationDeadline, nil, nil, nil, time.Now(),
	)
}

func TestGetOrCreateReturnsExistingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepo(db)

	stored := model.DefaultReservationSettings(7)
	stored.TimeSlotInterval = 15
	mock.ExpectQuery(`SELECT .+ FROM reservation_settings`).
		WithArgs(uint64(7)).
		WillReturnRows(settingsRows(t, stored))

	s, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), s.TenantID)
	assert.Equal(t, 15, s.TimeSlotInterval)
	assert.Equal(t, "09:00", s.OperatingHours.Monday.Open)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateInsertsDefaultsOnFirstAccess(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM reservation_settings`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id"})) // no row yet
	mock.ExpectExec(`INSERT IGNORE INTO reservation_settings`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT .+ FROM reservation_settings`).
		WithArgs(uint64(7)).
		WillReturnRows(settingsRows(t, model.DefaultReservationSettings(7)))

	s, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, s.IsEnabled)
	assert.True(t, s.RequireApproval)
	assert.Equal(t, 30, s.TimeSlotInterval)
	assert.Equal(t, 60, s.MinAdvanceBooking)
	assert.Equal(t, 30, s.MaxAdvanceDays)
	assert.Equal(t, 90, s.DefaultDuration)
	assert.Equal(t, 20, s.MaxGuestsPerReservation)
	assert.Nil(t, s.MaxReservationsPerSlot)
	assert.True(t, s.AllowCancellation)
	assert.Equal(t, 120, s.CancellationDeadline)
	assert.Equal(t, "22:00", s.OperatingHours.Sunday.Close)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreateSurvivesInsertRace(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepo(db)

	// Another request created the row between our read and insert; the
	// INSERT IGNORE affects no rows and the re-read wins.
	mock.ExpectQuery(`SELECT .+ FROM reservation_settings`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id"}))
	mock.ExpectExec(`INSERT IGNORE INTO reservation_settings`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT .+ FROM reservation_settings`).
		WillReturnRows(settingsRows(t, model.DefaultReservationSettings(7)))

	s, err := repo.GetOrCreate(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), s.TenantID)
}

func TestUpdatePersistsFullRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepo(db)

	s := model.DefaultReservationSettings(7)
	cap := 4
	s.MaxReservationsPerSlot = &cap
	title := "Book a table"
	s.BannerTitle = &title

	mock.ExpectExec(`UPDATE reservation_settings SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), &s))
	assert.NoError(t, mock.ExpectationsWereMet())
}
