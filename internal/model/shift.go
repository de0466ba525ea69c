package model

import "time"

// ShiftStatus enumerates the states of a shift.  Valid transitions are
// SCHEDULED → CONFIRMED → COMPLETED, plus CANCELLED from any
// non-completed state.  COMPLETED and CANCELLED are terminal.
type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "SCHEDULED"
	ShiftConfirmed ShiftStatus = "CONFIRMED"
	ShiftCompleted ShiftStatus = "COMPLETED"
	ShiftCancelled ShiftStatus = "CANCELLED"
)

// Shift is a time-bounded assignment of one staff member to a role,
// optionally inside a zone.  StartsAt/EndsAt form a half-open interval
// [StartsAt, EndsAt); two shifts for the same staff member conflict
// when their intervals overlap and neither is cancelled.
//
// Fields:
//  ID           – primary key identifier.
//  StaffID      – staff member working the shift.
//  ZoneID       – zone covered, nil for unzoned shifts.
//  Role         – role worked during the shift.
//  StartsAt     – shift start (UTC).
//  EndsAt       – shift end (UTC), strictly after StartsAt.
//  BreakMinutes – unpaid break length within the shift.
//  Status       – shift lifecycle state.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Shift struct {
	ID           uint64      // shifts.id
	StaffID      uint64      // shifts.staff_id
	ZoneID       *uint64     // shifts.zone_id (nullable)
	Role         string      // shifts.role
	StartsAt     time.Time   // shifts.starts_at
	EndsAt       time.Time   // shifts.ends_at
	BreakMinutes int         // shifts.break_minutes
	Status       ShiftStatus // shifts.status
	CreatedAt    time.Time   // shifts.created_at
	UpdatedAt    time.Time   // shifts.updated_at
}

// Overlaps reports whether two half-open shift windows intersect.
func (s *Shift) Overlaps(start, end time.Time) bool {
	return start.Before(s.EndsAt) && end.After(s.StartsAt)
}

// Active reports whether the shift still occupies its time window for
// conflict purposes.  Cancelled shifts free their window.
func (s *Shift) Active() bool {
	return s.Status != ShiftCancelled
}
