// Package repository implements the persistence boundary over MySQL.
// It defines sentinel errors reused across repositories so that higher
// layers can distinguish failure scenarios without inspecting SQL
// errors. ErrTenantNotFound and friends map to HTTP 404, ErrForbidden
// to 403 and ErrConflict to 409 at the handler layer.
package repository

import "errors"

// ErrTenantNotFound is returned when no tenant exists with the given id.
var ErrTenantNotFound = errors.New("tenant not found")

// ErrReservationNotFound is returned when a reservation does not exist
// or is not owned by the requesting tenant.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTableNotFound is returned when a table does not exist or is not
// owned by the requesting tenant.
var ErrTableNotFound = errors.New("table not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by another tenant.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with concurrent state:
// a duplicate reservation number, a lost advisory lock, or an insert
// rejected by a unique constraint. Handlers translate this into HTTP
// 409 so clients can retry.
var ErrConflict = errors.New("conflict")
