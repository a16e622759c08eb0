package model

import "time"

// Tenant statuses. Bookings are only accepted for ACTIVE tenants;
// suspended tenants keep their data but reject every public operation.
const (
	TenantActive    = "ACTIVE"
	TenantSuspended = "SUSPENDED"
)

// Tenant represents a single restaurant on the platform. Provisioning
// and billing live elsewhere; the reservation engine only reads the
// identity and status of an existing tenant.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the restaurant.
//  Slug      – URL-safe identifier used on public booking pages.
//  Status    – ACTIVE or SUSPENDED.
//  CreatedAt – creation timestamp.
type Tenant struct {
	ID        uint64    `json:"id"`         // tenants.id
	Name      string    `json:"name"`       // tenants.name
	Slug      string    `json:"slug"`       // tenants.slug
	Status    string    `json:"status"`     // tenants.status
	CreatedAt time.Time `json:"created_at"` // tenants.created_at
}

// IsActive reports whether the tenant may accept public operations.
func (t *Tenant) IsActive() bool { return t.Status == TenantActive }
