package model

import "time"

// StaffStatus enumerates the states of an activated worker.  Staff
// rows are never deleted; HR actions only transition the status.
type StaffStatus string

const (
	StaffActive     StaffStatus = "ACTIVE"
	StaffOnLeave    StaffStatus = "ON_LEAVE"
	StaffTerminated StaffStatus = "TERMINATED"
)

// EmploymentType enumerates how a staff member is engaged.
type EmploymentType string

const (
	EmploymentTemporary EmploymentType = "TEMPORARY"
	EmploymentPartTime  EmploymentType = "PART_TIME"
	EmploymentFullTime  EmploymentType = "FULL_TIME"
)

// StaffMember is an activated worker.  Exactly one staff member is
// created per approved candidate; approval is the only code path that
// inserts rows into this table.
//
// Fields:
//  ID          – primary key identifier.
//  CandidateID – candidate this staff member was activated from.
//  Name        – display name carried over from the application.
//  Email       – contact address carried over from the application.
//  Role        – role the staff member works (from the posting).
//  Department  – owning department (from the workflow template).
//  Employment  – engagement type.
//  Status      – ACTIVE, ON_LEAVE or TERMINATED.
//  CreatedAt   – activation timestamp.
//  UpdatedAt   – last update timestamp.
type StaffMember struct {
	ID          uint64         // staff_members.id
	CandidateID uint64         // staff_members.candidate_id
	Name        string         // staff_members.name
	Email       string         // staff_members.email
	Role        string         // staff_members.role
	Department  string         // staff_members.department
	Employment  EmploymentType // staff_members.employment_type
	Status      StaffStatus    // staff_members.status
	CreatedAt   time.Time      // staff_members.created_at
	UpdatedAt   time.Time      // staff_members.updated_at
}
