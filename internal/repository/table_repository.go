package repository

import (
	"context"
	"database/sql"

	"github.com/tablio/restaurant-reservation/internal/model"
)

// TableRepo provides read access to a tenant's tables and the status
// writes performed as reservation lifecycle side effects. Table CRUD
// itself belongs to the floor-management subsystem.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `id, tenant_id, number, capacity, section, status, created_at`

// GetByID returns a table scoped to the tenant. ErrTableNotFound is
// returned both when the id does not exist and when it belongs to a
// different tenant, so callers cannot probe other tenants' floors.
func (r *TableRepo) GetByID(ctx context.Context, tenantID, tableID uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE id = ? AND tenant_id = ?`
	var t model.Table
	err := r.db.QueryRowContext(ctx, q, tableID, tenantID).Scan(
		&t.ID, &t.TenantID, &t.Number, &t.Capacity, &t.Section, &t.Status, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByTenant returns all of a tenant's tables ordered by section then
// number, the order the allocator and the floor plan present them in.
func (r *TableRepo) ListByTenant(ctx context.Context, tenantID uint64) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE tenant_id = ? ORDER BY section, number`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Number, &t.Capacity, &t.Section, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tables, nil
}

// UpdateStatus writes a table's status. Used by lifecycle transitions:
// seating sets RESERVED, completing or cancelling a seated reservation
// sets AVAILABLE.
func (r *TableRepo) UpdateStatus(ctx context.Context, tenantID, tableID uint64, status string) error {
	const q = `UPDATE tables SET status = ? WHERE id = ? AND tenant_id = ?`
	res, err := r.db.ExecContext(ctx, q, status, tableID, tenantID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// UpdateStatusTx is UpdateStatus within an existing transaction.
func (r *TableRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, tenantID, tableID uint64, status string) error {
	const q = `UPDATE tables SET status = ? WHERE id = ? AND tenant_id = ?`
	res, err := tx.ExecContext(ctx, q, status, tableID, tenantID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTableNotFound
	}
	return nil
}
