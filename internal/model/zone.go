package model

import "time"

// Zone is a bounded physical or operational area at an event that
// needs staff coverage.  The scheduling engine maintains the invariant
// AssignedCount <= RequiredStaffCount at all times; assignments beyond
// the required count are refused rather than overbooked.
//
// Fields:
//  ID                 – primary key identifier.
//  EventID            – event or venue scope the zone belongs to.
//  Name               – zone display name (e.g. "Gate B", "Pit").
//  Capacity           – physical attendee capacity of the area.
//  RequiredStaffCount – target number of staff covering the zone.
//  AssignedCount      – staff currently assigned via active shifts.
//  CreatedAt          – creation timestamp.
//  UpdatedAt          – last update timestamp.
type Zone struct {
	ID                 uint64    // zones.id
	EventID            uint64    // zones.event_id
	Name               string    // zones.name
	Capacity           int       // zones.capacity
	RequiredStaffCount int       // zones.required_staff_count
	AssignedCount      int       // zones.assigned_count
	CreatedAt          time.Time // zones.created_at
	UpdatedAt          time.Time // zones.updated_at
}

// Full reports whether the zone has reached its required staff count.
func (z *Zone) Full() bool {
	return z.AssignedCount >= z.RequiredStaffCount
}
