package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/tablio/restaurant-reservation/internal/model"
)

// ReservationRepo provides CRUD operations, filtered queries and
// reservation-number issuance for reservations. All timestamp fields
// are stored in UTC; date is a DATE column and start/end times are
// HH:mm strings. Methods with a Tx suffix run inside a caller-owned
// transaction; the caller must commit or roll back.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so the booking service can open
// transactions spanning reservations and tables.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `r.id, r.reservation_number, r.tenant_id, r.date, r.start_time, r.end_time,
	r.guest_count, r.customer_name, r.customer_phone, r.customer_email, r.table_id, r.status,
	r.confirmed_at, r.seated_at, r.completed_at, r.cancelled_at, r.confirmed_by_id,
	r.cancelled_by, r.rejection_reason, r.notes, r.admin_notes, r.created_at, r.updated_at`

// activeIn restricts queries to the statuses that occupy tables and
// slots. Must stay in lockstep with model.ActiveStatuses.
const activeIn = `('PENDING','CONFIRMED','SEATED')`

const dateLayout = "2006-01-02"

// ListFilter narrows the staff reservation listing.
type ListFilter struct {
	Date    *time.Time // exact calendar day
	Status  string     // exact status match
	TableID *uint64    // exact table match
	Search  string     // substring over name, phone, number
	Limit   int        // page size; 0 means no limit
	Offset  int        // rows to skip
}

// mysqlDuplicateEntry is the server error number for a unique-key violation.
const mysqlDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a unique-constraint violation.
func isDuplicateEntry(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// CreateTx inserts a new reservation within an existing transaction and
// populates the generated id and timestamps on the record. An insert
// rejected by the (tenant_id, reservation_number) unique key is mapped
// to ErrConflict so the caller can surface a retryable 409.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations
		(reservation_number, tenant_id, date, start_time, end_time, guest_count,
		 customer_name, customer_phone, customer_email, table_id, status,
		 confirmed_at, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		res.ReservationNumber, res.TenantID, res.Date.Format(dateLayout),
		res.StartTime, res.EndTime, res.GuestCount,
		res.CustomerName, res.CustomerPhone, res.CustomerEmail, res.TableID,
		res.Status, res.ConfirmedAt, res.Notes,
	)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back created_at/updated_at so the caller returns the row as stored.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// GetByID returns a reservation scoped to the tenant, with its assigned
// table joined in when present. ErrReservationNotFound covers both a
// missing row and a row owned by another tenant.
func (r *ReservationRepo) GetByID(ctx context.Context, tenantID, id uint64) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `, ` + joinedTableColumns + `
		FROM reservations r
		LEFT JOIN tables t ON t.id = r.table_id
		WHERE r.id = ? AND r.tenant_id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id, tenantID))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// List returns the tenant's reservations matching the filter, ordered
// by date then start time, the order the reservation book displays.
func (r *ReservationRepo) List(ctx context.Context, tenantID uint64, f ListFilter) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `, ` + joinedTableColumns + `
		FROM reservations r
		LEFT JOIN tables t ON t.id = r.table_id
		WHERE r.tenant_id = ?`
	args := []interface{}{tenantID}

	if f.Date != nil {
		q += ` AND r.date = ?`
		args = append(args, f.Date.Format(dateLayout))
	}
	if f.Status != "" {
		q += ` AND r.status = ?`
		args = append(args, f.Status)
	}
	if f.TableID != nil {
		q += ` AND r.table_id = ?`
		args = append(args, *f.TableID)
	}
	if f.Search != "" {
		q += ` AND (r.customer_name LIKE ? OR r.customer_phone LIKE ? OR r.reservation_number LIKE ?)`
		like := "%" + f.Search + "%"
		args = append(args, like, like, like)
	}
	q += ` ORDER BY r.date, r.start_time`
	if f.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListActiveByDate returns all PENDING/CONFIRMED/SEATED reservations on
// a date. The availability calculator counts per-slot bookings from
// this set.
func (r *ReservationRepo) ListActiveByDate(ctx context.Context, tenantID uint64, date time.Time) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `, ` + joinedTableColumns + `
		FROM reservations r
		LEFT JOIN tables t ON t.id = r.table_id
		WHERE r.tenant_id = ? AND r.date = ? AND r.status IN ` + activeIn
	rows, err := r.db.QueryContext(ctx, q, tenantID, date.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListActiveWithTableByDate returns the date's active reservations that
// have a table assigned. The allocator checks these for overlap.
func (r *ReservationRepo) ListActiveWithTableByDate(ctx context.Context, tenantID uint64, date time.Time) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `, ` + joinedTableColumns + `
		FROM reservations r
		LEFT JOIN tables t ON t.id = r.table_id
		WHERE r.tenant_id = ? AND r.date = ? AND r.table_id IS NOT NULL AND r.status IN ` + activeIn
	rows, err := r.db.QueryContext(ctx, q, tenantID, date.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// ListActiveForTableTx returns the active reservations on one table and
// date inside a transaction. The booking path re-runs the overlap check
// here, under the advisory lock, so two concurrent bookings cannot both
// pass the pre-check.
func (r *ReservationRepo) ListActiveForTableTx(ctx context.Context, tx *sql.Tx, tenantID, tableID uint64, date time.Time) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `, NULL, NULL, NULL, NULL, NULL
		FROM reservations r
		WHERE r.tenant_id = ? AND r.table_id = ? AND r.date = ? AND r.status IN ` + activeIn
	rows, err := tx.QueryContext(ctx, q, tenantID, tableID, date.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// CountSlotTx counts active reservations starting exactly at startTime
// on the date, the quantity capped by maxReservationsPerSlot.
func (r *ReservationRepo) CountSlotTx(ctx context.Context, tx *sql.Tx, tenantID uint64, date time.Time, startTime string) (int, error) {
	q := `SELECT COUNT(*) FROM reservations
		WHERE tenant_id = ? AND date = ? AND start_time = ? AND status IN ` + activeIn
	var n int
	err := tx.QueryRowContext(ctx, q, tenantID, date.Format(dateLayout), startTime).Scan(&n)
	return n, err
}

// HasDuplicateTx reports whether the same phone already holds a
// PENDING or CONFIRMED booking for the same date and start time.
func (r *ReservationRepo) HasDuplicateTx(ctx context.Context, tx *sql.Tx, tenantID uint64, date time.Time, startTime, phone string) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations
		WHERE tenant_id = ? AND date = ? AND start_time = ? AND customer_phone = ?
		AND status IN ('PENDING','CONFIRMED')`
	var n int
	if err := tx.QueryRowContext(ctx, q, tenantID, date.Format(dateLayout), startTime, phone).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// NextNumberTx issues the next reservation number for a tenant and
// date, format R-YYYYMMDD-NNN. It reads the greatest existing number
// with the date prefix under FOR UPDATE and increments its numeric
// suffix; together with the advisory lock taken by the booking path and
// the (tenant_id, reservation_number) unique key this keeps issuance
// duplicate-free under concurrent creation.
func (r *ReservationRepo) NextNumberTx(ctx context.Context, tx *sql.Tx, tenantID uint64, date time.Time) (string, error) {
	prefix := "R-" + date.Format("20060102")
	const q = `SELECT reservation_number FROM reservations
		WHERE tenant_id = ? AND reservation_number LIKE CONCAT(?, '-%')
		ORDER BY reservation_number DESC LIMIT 1 FOR UPDATE`
	var last string
	err := tx.QueryRowContext(ctx, q, tenantID, prefix).Scan(&last)
	next := 1
	switch {
	case err == sql.ErrNoRows:
		// first booking of the day
	case err != nil:
		return "", err
	default:
		parts := strings.Split(last, "-")
		n, perr := strconv.Atoi(parts[len(parts)-1])
		if perr != nil {
			return "", fmt.Errorf("malformed reservation number %q: %w", last, perr)
		}
		next = n + 1
	}
	return fmt.Sprintf("%s-%03d", prefix, next), nil
}

// AcquireBookingLock takes the per-tenant-per-day advisory lock that
// serializes booking creation. GET_LOCK waits up to the given timeout;
// anything but 1 (0 = timed out, NULL = error) is reported as
// ErrConflict so the caller returns a retryable 409 instead of
// double-booking. The lock is session-scoped, not transaction-scoped,
// so it runs on a caller-pinned connection and must be held until after
// the booking transaction commits on that same connection.
func (r *ReservationRepo) AcquireBookingLock(ctx context.Context, conn *sql.Conn, tenantID uint64, date time.Time, timeout time.Duration) error {
	key := fmt.Sprintf("resv:%d:%s", tenantID, date.Format("20060102"))
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, key, int(timeout.Seconds())).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return ErrConflict
	}
	return nil
}

// ReleaseBookingLock releases the advisory lock taken by
// AcquireBookingLock, after the booking transaction has committed or
// rolled back. MySQL also releases it when the session ends, so a
// failure here is not fatal.
func (r *ReservationRepo) ReleaseBookingLock(ctx context.Context, conn *sql.Conn, tenantID uint64, date time.Time) error {
	key := fmt.Sprintf("resv:%d:%s", tenantID, date.Format("20060102"))
	_, err := conn.ExecContext(ctx, `SELECT RELEASE_LOCK(?)`, key)
	return err
}

// LookupByPhone returns the reservation matching a phone number and
// reservation number, the pair customers use on the lookup page.
func (r *ReservationRepo) LookupByPhone(ctx context.Context, tenantID uint64, phone, number string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + `, ` + joinedTableColumns + `
		FROM reservations r
		LEFT JOIN tables t ON t.id = r.table_id
		WHERE r.tenant_id = ? AND r.customer_phone = ? AND r.reservation_number = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, tenantID, phone, number))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Stats returns per-status counts for a tenant and date.
func (r *ReservationRepo) Stats(ctx context.Context, tenantID uint64, date time.Time) (*model.ReservationStats, error) {
	const q = `SELECT status, COUNT(*) FROM reservations
		WHERE tenant_id = ? AND date = ? GROUP BY status`
	rows, err := r.db.QueryContext(ctx, q, tenantID, date.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats model.ReservationStats
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.Total += n
		switch status {
		case model.StatusPending:
			stats.Pending = n
		case model.StatusConfirmed:
			stats.Confirmed = n
		case model.StatusSeated:
			stats.Seated = n
		case model.StatusCompleted:
			stats.Completed = n
		case model.StatusCancelled:
			stats.Cancelled = n
		case model.StatusNoShow:
			stats.NoShow = n
		case model.StatusRejected:
			stats.Rejected = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// UpdateDetails rewrites the staff-editable fields of a reservation:
// schedule, party, contact info, table assignment and notes. Status and
// transition timestamps are only touched by the lifecycle methods below.
func (r *ReservationRepo) UpdateDetails(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations SET
		date = ?, start_time = ?, end_time = ?, guest_count = ?,
		customer_name = ?, customer_phone = ?, customer_email = ?,
		table_id = ?, notes = ?, admin_notes = ?
		WHERE id = ? AND tenant_id = ?`
	_, err := r.db.ExecContext(ctx, q,
		res.Date.Format(dateLayout), res.StartTime, res.EndTime, res.GuestCount,
		res.CustomerName, res.CustomerPhone, res.CustomerEmail,
		res.TableID, res.Notes, res.AdminNotes,
		res.ID, res.TenantID,
	)
	return err
}

// MarkConfirmed transitions a reservation to CONFIRMED, recording the
// approval time and the approving staff user.
func (r *ReservationRepo) MarkConfirmed(ctx context.Context, tenantID, id, userID uint64, at time.Time) error {
	const q = `UPDATE reservations SET status = 'CONFIRMED', confirmed_at = ?, confirmed_by_id = ?
		WHERE id = ? AND tenant_id = ?`
	_, err := r.db.ExecContext(ctx, q, at, userID, id, tenantID)
	return err
}

// MarkRejected transitions a reservation to REJECTED with an optional reason.
func (r *ReservationRepo) MarkRejected(ctx context.Context, tenantID, id uint64, reason *string) error {
	const q = `UPDATE reservations SET status = 'REJECTED', rejection_reason = ?
		WHERE id = ? AND tenant_id = ?`
	_, err := r.db.ExecContext(ctx, q, reason, id, tenantID)
	return err
}

// MarkNoShow transitions a reservation to NO_SHOW.
func (r *ReservationRepo) MarkNoShow(ctx context.Context, tenantID, id uint64) error {
	const q = `UPDATE reservations SET status = 'NO_SHOW' WHERE id = ? AND tenant_id = ?`
	_, err := r.db.ExecContext(ctx, q, id, tenantID)
	return err
}

// MarkSeatedTx transitions a reservation to SEATED within a transaction
// so the table status write commits atomically with it.
func (r *ReservationRepo) MarkSeatedTx(ctx context.Context, tx *sql.Tx, tenantID, id uint64, at time.Time) error {
	const q = `UPDATE reservations SET status = 'SEATED', seated_at = ? WHERE id = ? AND tenant_id = ?`
	_, err := tx.ExecContext(ctx, q, at, id, tenantID)
	return err
}

// MarkCompletedTx transitions a reservation to COMPLETED within a transaction.
func (r *ReservationRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, tenantID, id uint64, at time.Time) error {
	const q = `UPDATE reservations SET status = 'COMPLETED', completed_at = ? WHERE id = ? AND tenant_id = ?`
	_, err := tx.ExecContext(ctx, q, at, id, tenantID)
	return err
}

// MarkCancelledTx transitions a reservation to CANCELLED within a
// transaction, recording who cancelled (a staff user id or CUSTOMER).
func (r *ReservationRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, tenantID, id uint64, cancelledBy string, at time.Time) error {
	const q = `UPDATE reservations SET status = 'CANCELLED', cancelled_at = ?, cancelled_by = ?
		WHERE id = ? AND tenant_id = ?`
	_, err := tx.ExecContext(ctx, q, at, cancelledBy, id, tenantID)
	return err
}

// Delete removes a reservation permanently. Only explicit administrative
// removal reaches this; lifecycle transitions never delete.
func (r *ReservationRepo) Delete(ctx context.Context, tenantID, id uint64) error {
	const q = `DELETE FROM reservations WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, tenantID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// joinedTableColumns are the nullable table columns selected alongside
// a reservation via LEFT JOIN.
const joinedTableColumns = `t.number, t.capacity, t.section, t.status, t.created_at`

// rowScanner abstracts *sql.Row and *sql.Rows for scanReservation.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		res          model.Reservation
		email        sql.NullString
		tableID      sql.NullInt64
		confirmedAt  sql.NullTime
		seatedAt     sql.NullTime
		completedAt  sql.NullTime
		cancelledAt  sql.NullTime
		confirmedBy  sql.NullInt64
		cancelledBy  sql.NullString
		rejectReason sql.NullString
		notes        sql.NullString
		adminNotes   sql.NullString
		tNumber      sql.NullInt64
		tCapacity    sql.NullInt64
		tSection     sql.NullString
		tStatus      sql.NullString
		tCreatedAt   sql.NullTime
	)
	err := row.Scan(
		&res.ID, &res.ReservationNumber, &res.TenantID, &res.Date, &res.StartTime, &res.EndTime,
		&res.GuestCount, &res.CustomerName, &res.CustomerPhone, &email, &tableID, &res.Status,
		&confirmedAt, &seatedAt, &completedAt, &cancelledAt, &confirmedBy,
		&cancelledBy, &rejectReason, &notes, &adminNotes, &res.CreatedAt, &res.UpdatedAt,
		&tNumber, &tCapacity, &tSection, &tStatus, &tCreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		res.CustomerEmail = &email.String
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		res.TableID = &id
	}
	if confirmedAt.Valid {
		res.ConfirmedAt = &confirmedAt.Time
	}
	if seatedAt.Valid {
		res.SeatedAt = &seatedAt.Time
	}
	if completedAt.Valid {
		res.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		res.CancelledAt = &cancelledAt.Time
	}
	if confirmedBy.Valid {
		id := uint64(confirmedBy.Int64)
		res.ConfirmedByID = &id
	}
	if cancelledBy.Valid {
		res.CancelledBy = &cancelledBy.String
	}
	if rejectReason.Valid {
		res.RejectionReason = &rejectReason.String
	}
	if notes.Valid {
		res.Notes = &notes.String
	}
	if adminNotes.Valid {
		res.AdminNotes = &adminNotes.String
	}
	if res.TableID != nil && tNumber.Valid {
		res.Table = &model.Table{
			ID:       *res.TableID,
			TenantID: res.TenantID,
			Number:   uint32(tNumber.Int64),
			Capacity: uint32(tCapacity.Int64),
			Section:  tSection.String,
			Status:   tStatus.String,
		}
		if tCreatedAt.Valid {
			res.Table.CreatedAt = tCreatedAt.Time
		}
	}
	return &res, nil
}

func collectReservations(rows *sql.Rows) ([]model.Reservation, error) {
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
