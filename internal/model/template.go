package model

import "time"

// StepType enumerates the kinds of work an onboarding step represents.
type StepType string

const (
	StepDocument StepType = "document"
	StepTraining StepType = "training"
	StepMeeting  StepType = "meeting"
	StepSetup    StepType = "setup"
	StepReview   StepType = "review"
	StepTask     StepType = "task"
	StepApproval StepType = "approval"
)

// OnboardingStep is one unit of required work inside a workflow
// template.  DependsOn lists the IDs of steps that must be completed
// before this one becomes available.  Steps are owned exclusively by
// their template; candidates receive a snapshot copy at instantiation.
type OnboardingStep struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Type      StepType `json:"type"`
	Required  bool     `json:"required"`
	DependsOn []string `json:"depends_on,omitempty"`
	Order     int      `json:"order"`
}

// WorkflowTemplate is a reusable ordered set of onboarding steps for a
// department or position.  Templates are versioned by creating a new
// template; existing rows are never destructively mutated, so
// in-flight candidates are unaffected by later edits.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – template display name.
//  Department    – owning department.
//  Position      – position the template onboards into.
//  Steps         – dependency-linked steps, ordered by Order.
//  EstimatedDays – rough expected duration of the whole workflow.
//  CreatedBy     – operator who authored the template.
//  CreatedAt     – creation timestamp.
type WorkflowTemplate struct {
	ID            uint64           // workflow_templates.id
	Name          string           // workflow_templates.name
	Department    string           // workflow_templates.department
	Position      string           // workflow_templates.position
	Steps         []OnboardingStep // workflow_templates.steps (JSON column)
	EstimatedDays int              // workflow_templates.estimated_days
	CreatedBy     uint64           // workflow_templates.created_by
	CreatedAt     time.Time        // workflow_templates.created_at
}
