package model

import "time"

// CandidateStage enumerates the onboarding state machine:
//
//	applied → screening → onboarding → pending_approval → {approved | rejected}
//
// APPROVED and REJECTED are terminal.  There is intentionally no
// separate status field; the stage is the single source of truth for
// where a candidate is in the pipeline.
type CandidateStage string

const (
	StageApplied         CandidateStage = "applied"
	StageScreening       CandidateStage = "screening"
	StageOnboarding      CandidateStage = "onboarding"
	StagePendingApproval CandidateStage = "pending_approval"
	StageApproved        CandidateStage = "approved"
	StageRejected        CandidateStage = "rejected"
)

// Terminal reports whether the stage admits no further transitions.
func (s CandidateStage) Terminal() bool {
	return s == StageApproved || s == StageRejected
}

// Candidate is a person progressing through onboarding after their
// application was accepted.  Steps is a snapshot of the template taken
// at instantiation so later template edits never retroactively change
// an in-flight workflow.  CompletedSteps records step IDs; progress is
// always derived from it and is never stored.
//
// Fields:
//  ID             – primary key identifier.
//  ApplicationID  – accepted application this candidate came from.
//  TemplateID     – template the snapshot was taken from.
//  Steps          – snapshot of the template's steps.
//  CompletedSteps – IDs of steps completed so far.
//  Stage          – position in the onboarding state machine.
//  StaffID        – staff member created on approval (0 until then).
//  RejectReason   – populated when the candidate is rejected.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Candidate struct {
	ID             uint64           // candidates.id
	ApplicationID  uint64           // candidates.application_id
	TemplateID     uint64           // candidates.template_id
	Steps          []OnboardingStep // candidates.steps (JSON snapshot column)
	CompletedSteps []string         // candidates.completed_steps (JSON column)
	Stage          CandidateStage   // candidates.stage
	StaffID        uint64           // candidates.staff_id (0 until approved)
	RejectReason   string           // candidates.reject_reason
	CreatedAt      time.Time        // candidates.created_at
	UpdatedAt      time.Time        // candidates.updated_at
}

// Completed reports whether the given step ID is already recorded as
// complete for this candidate.
func (c *Candidate) Completed(stepID string) bool {
	for _, id := range c.CompletedSteps {
		if id == stepID {
			return true
		}
	}
	return false
}

// Step returns the snapshot step with the given ID, or nil when the
// candidate's workflow has no such step.
func (c *Candidate) Step(stepID string) *OnboardingStep {
	for i := range c.Steps {
		if c.Steps[i].ID == stepID {
			return &c.Steps[i]
		}
	}
	return nil
}
