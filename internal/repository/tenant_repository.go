package repository

import (
	"context"
	"database/sql"

	"github.com/tablio/restaurant-reservation/internal/model"
)

// TenantRepo reads tenant identity and status. Tenants are provisioned
// by the platform's administration subsystem; this engine never writes
// them.
type TenantRepo struct {
	db *sql.DB
}

// NewTenantRepo returns a new TenantRepo bound to the given database.
func NewTenantRepo(db *sql.DB) *TenantRepo { return &TenantRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *TenantRepo) DB() *sql.DB { return r.db }

// GetByID returns the tenant with the given id or ErrTenantNotFound.
func (r *TenantRepo) GetByID(ctx context.Context, tenantID uint64) (*model.Tenant, error) {
	const q = `SELECT id, name, slug, status, created_at FROM tenants WHERE id = ?`
	var t model.Tenant
	err := r.db.QueryRowContext(ctx, q, tenantID).Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBySlug returns the tenant with the given public slug or
// ErrTenantNotFound. Public booking pages address tenants by slug.
func (r *TenantRepo) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	const q = `SELECT id, name, slug, status, created_at FROM tenants WHERE slug = ?`
	var t model.Tenant
	err := r.db.QueryRowContext(ctx, q, slug).Scan(&t.ID, &t.Name, &t.Slug, &t.Status, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
