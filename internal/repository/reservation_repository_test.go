package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablio/restaurant-reservation/internal/model"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func beginTx(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *sql.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)
	return tx
}

var bookingDate = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

func TestNextNumberTxFirstOfDay(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT reservation_number FROM reservations`).
		WithArgs(uint64(7), "R-20250603").
		WillReturnError(sql.ErrNoRows)

	number, err := repo.NextNumberTx(context.Background(), tx, 7, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, "R-20250603-001", number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextNumberTxIncrements(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT reservation_number FROM reservations`).
		WithArgs(uint64(7), "R-20250603").
		WillReturnRows(sqlmock.NewRows([]string{"reservation_number"}).AddRow("R-20250603-007"))

	number, err := repo.NextNumberTx(context.Background(), tx, 7, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, "R-20250603-008", number)
}

func TestNextNumberTxPadsThreeDigits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT reservation_number FROM reservations`).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_number"}).AddRow("R-20250603-099"))

	number, err := repo.NextNumberTx(context.Background(), tx, 7, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, "R-20250603-100", number)
}

func TestNextNumberTxMalformed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT reservation_number FROM reservations`).
		WillReturnRows(sqlmock.NewRows([]string{"reservation_number"}).AddRow("R-20250603-abc"))

	_, err := repo.NextNumberTx(context.Background(), tx, 7, bookingDate)
	assert.Error(t, err)
}

func TestAcquireBookingLock(t *testing.T) {
	cases := []struct {
		name    string
		got     driver.Value
		wantErr error
	}{
		{"acquired", int64(1), nil},
		{"timed out", int64(0), ErrConflict},
		{"lock error", nil, ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewReservationRepo(db)
			conn, err := db.Conn(context.Background())
			require.NoError(t, err)
			t.Cleanup(func() { _ = conn.Close() })

			mock.ExpectQuery(`SELECT GET_LOCK`).
				WithArgs("resv:7:20250603", 3).
				WillReturnRows(sqlmock.NewRows([]string{"got"}).AddRow(tc.got))

			err = repo.AcquireBookingLock(context.Background(), conn, 7, bookingDate, 3*time.Second)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReleaseBookingLock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	conn, err := db.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	mock.ExpectExec(`SELECT RELEASE_LOCK`).
		WithArgs("resv:7:20250603").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.ReleaseBookingLock(context.Background(), conn, 7, bookingDate))
}

func TestCreateTxDuplicateNumberMapsToConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectExec(`INSERT INTO reservations`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	res := &model.Reservation{
		ReservationNumber: "R-20250603-001",
		TenantID:          7,
		Date:              bookingDate,
		StartTime:         "18:00",
		EndTime:           "19:30",
		GuestCount:        2,
		CustomerName:      "Ada",
		CustomerPhone:     "+15550001",
		Status:            model.StatusPending,
	}
	err := repo.CreateTx(context.Background(), tx, res)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateTxPopulatesIDAndTimestamps(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO reservations`).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectQuery(`SELECT created_at, updated_at FROM reservations`).
		WithArgs(uint64(41)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	res := &model.Reservation{
		ReservationNumber: "R-20250603-001",
		TenantID:          7,
		Date:              bookingDate,
		StartTime:         "18:00",
		EndTime:           "19:30",
		GuestCount:        2,
		CustomerName:      "Ada",
		CustomerPhone:     "+15550001",
		Status:            model.StatusPending,
	}
	require.NoError(t, repo.CreateTx(context.Background(), tx, res))
	assert.Equal(t, uint64(41), res.ID)
	assert.Equal(t, now, res.CreatedAt)
}

func TestCountSlotTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations`).
		WithArgs(uint64(7), "2025-06-03", "18:00").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))

	n, err := repo.CountSlotTx(context.Background(), tx, 7, bookingDate, "18:00")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestHasDuplicateTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)
	tx := beginTx(t, db, mock)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM reservations`).
		WithArgs(uint64(7), "2025-06-03", "18:00", "+15550001").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	dup, err := repo.HasDuplicateTx(context.Background(), tx, 7, bookingDate, "18:00", "+15550001")
	require.NoError(t, err)
	assert.True(t, dup)
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(`SELECT .+ FROM reservations r`).
		WithArgs(uint64(42), uint64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func reservationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "reservation_number", "tenant_id", "date", "start_time", "end_time",
		"guest_count", "customer_name", "customer_phone", "customer_email", "table_id", "status",
		"confirmed_at", "seated_at", "completed_at", "cancelled_at", "confirmed_by_id",
		"cancelled_by", "rejection_reason", "notes", "admin_notes", "created_at", "updated_at",
		"t_number", "t_capacity", "t_section", "t_status", "t_created_at",
	})
}

func TestGetByIDJoinsTable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)

	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	rows := reservationRows().AddRow(
		42, "R-20250603-001", 7, bookingDate, "18:00", "19:30",
		2, "Ada", "+15550001", nil, 3, "CONFIRMED",
		now, nil, nil, nil, nil,
		nil, nil, nil, nil, now, now,
		3, 4, "main", "AVAILABLE", now,
	)
	mock.ExpectQuery(`SELECT .+ FROM reservations r`).
		WithArgs(uint64(42), uint64(7)).
		WillReturnRows(rows)

	res, err := repo.GetByID(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, "R-20250603-001", res.ReservationNumber)
	require.NotNil(t, res.TableID)
	assert.Equal(t, uint64(3), *res.TableID)
	require.NotNil(t, res.Table)
	assert.Equal(t, uint32(4), res.Table.Capacity)
	assert.Equal(t, "main", res.Table.Section)
	require.NotNil(t, res.ConfirmedAt)
	assert.Nil(t, res.SeatedAt)
}

func TestListAppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)

	tableID := uint64(3)
	mock.ExpectQuery(`SELECT .+ FROM reservations r .+ ORDER BY r\.date, r\.start_time LIMIT \? OFFSET \?`).
		WithArgs(uint64(7), "2025-06-03", "CONFIRMED", tableID, "%ada%", "%ada%", "%ada%", 20, 40).
		WillReturnRows(reservationRows())

	_, err := repo.List(context.Background(), 7, ListFilter{
		Date:    &bookingDate,
		Status:  model.StatusConfirmed,
		TableID: &tableID,
		Search:  "ada",
		Limit:   20,
		Offset:  40,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsAggregatesByStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)

	rows := sqlmock.NewRows([]string{"status", "n"}).
		AddRow("PENDING", 2).
		AddRow("CONFIRMED", 5).
		AddRow("CANCELLED", 1).
		AddRow("NO_SHOW", 1)
	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM reservations`).
		WithArgs(uint64(7), "2025-06-03").
		WillReturnRows(rows)

	stats, err := repo.Stats(context.Background(), 7, bookingDate)
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 5, stats.Confirmed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 1, stats.NoShow)
	assert.Equal(t, 0, stats.Seated)
}

func TestDeleteMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepo(db)

	mock.ExpectExec(`DELETE FROM reservations`).
		WithArgs(uint64(42), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
