// Package repository implements raw-SQL data access over MySQL for
// the staffing lifecycle engine.  Shared sentinel errors live here so
// handlers can distinguish failure scenarios with errors.Is and map
// them onto HTTP responses.  Domain repositories consult the store
// adapter before touching their table: an unprovisioned table serves
// the adapter's deterministic fallback dataset on reads and accepts
// writes with synthetic identifiers, so a partially migrated database
// never hard-fails the engine.
package repository

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update cannot proceed
// because of conflicting existing state, such as recording a second
// metric for the same staff member and period.  Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
