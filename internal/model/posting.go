package model

import "time"

// PostingStatus enumerates the lifecycle states of a job posting.
// A posting is created as DRAFT, accepts applications only while
// PUBLISHED, can be temporarily PAUSED and is CLOSED when the role
// is filled or withdrawn.
type PostingStatus string

const (
	PostingDraft     PostingStatus = "DRAFT"
	PostingPublished PostingStatus = "PUBLISHED"
	PostingPaused    PostingStatus = "PAUSED"
	PostingClosed    PostingStatus = "CLOSED"
)

// FieldType identifies the type of a single applicant response field.
// Postings declare a schema of typed fields so that free-form response
// maps are validated at submission time instead of ad hoc during
// screening.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldBoolean     FieldType = "boolean"
	FieldChoice      FieldType = "choice"
	FieldMultiChoice FieldType = "multi_choice"
)

// FieldSpec describes one named response field a posting expects from
// applicants.  Options is only meaningful for choice and multi_choice
// fields and lists the allowed values.
type FieldSpec struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// ScreeningRules captures the automated pre-qualification requirements
// of a posting.  Zero values mean "not required": a MinimumAge of 0
// disables the age check and an empty ExperienceLevel disables the
// seniority check.
type ScreeningRules struct {
	RequiredCertifications []string `json:"required_certifications,omitempty"`
	MinimumAge             int      `json:"minimum_age,omitempty"`
	MinimumExperienceYears int      `json:"minimum_experience_years,omitempty"`
	ExperienceLevel        string   `json:"experience_level,omitempty"` // junior, mid or senior
}

// JobPosting is an open role for a venue or event.  It owns the
// response schema its applications are validated against and the
// screening rules the screening engine evaluates.
//
// Fields:
//  ID             – primary key identifier.
//  Title          – human readable role title.
//  RoleType       – role category (e.g. "security", "bar", "gate").
//  Capacity       – number of positions to fill.
//  Status         – posting lifecycle state.
//  Rules          – automated screening requirements.
//  ResponseSchema – typed fields expected from applicants.
//  CreatedBy      – operator who created the posting.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type JobPosting struct {
	ID             uint64         // job_postings.id
	Title          string         // job_postings.title
	RoleType       string         // job_postings.role_type
	Capacity       int            // job_postings.capacity
	Status         PostingStatus  // job_postings.status
	Rules          ScreeningRules // job_postings.rules (JSON column)
	ResponseSchema []FieldSpec    // job_postings.response_schema (JSON column)
	CreatedBy      uint64         // job_postings.created_by
	CreatedAt      time.Time      // job_postings.created_at
	UpdatedAt      time.Time      // job_postings.updated_at
}

// AcceptsApplications reports whether the posting is currently open
// for new submissions.
func (p *JobPosting) AcceptsApplications() bool {
	return p.Status == PostingPublished
}
