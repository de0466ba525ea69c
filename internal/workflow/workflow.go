// Package workflow owns the onboarding step-dependency graph and the
// candidate state machine:
//
//	applied → screening → onboarding → pending_approval → {approved | rejected}
//
// Templates are validated at authoring time (cyclic dependency graphs
// are refused) and candidates carry an immutable snapshot of their
// template's steps, so in-flight workflows never change under a
// candidate.  Progress is always derived from completed required
// steps; there is deliberately no way to set it directly.
package workflow

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iliyamo/venue-staffing/internal/model"
)

var (
	// ErrInvalidWorkflow is returned when a template's dependency
	// edges form a cycle or reference unknown steps.
	ErrInvalidWorkflow = errors.New("workflow: invalid template")

	// ErrDependencyUnmet is returned by CompleteStep when a
	// prerequisite of the requested step is not yet complete.
	ErrDependencyUnmet = errors.New("workflow: step dependency unmet")

	// ErrIncompleteWorkflow is returned by Approve when required
	// steps remain.
	ErrIncompleteWorkflow = errors.New("workflow: required steps incomplete")

	// ErrUnknownStep is returned when a step ID is not part of the
	// candidate's snapshot.
	ErrUnknownStep = errors.New("workflow: unknown step")

	// ErrTerminalStage is returned when an operation is attempted on
	// an approved or rejected candidate.
	ErrTerminalStage = errors.New("workflow: candidate is in a terminal stage")
)

// ValidateTemplate checks a template's step graph before it is
// persisted.  Every dependency must reference an existing step and the
// dependency edges must be acyclic.  Cycles are detected with a Kahn
// topological sort; the error names the steps left unsorted.
func ValidateTemplate(t *model.WorkflowTemplate) error {
	if len(t.Steps) == 0 {
		return fmt.Errorf("%w: template has no steps", ErrInvalidWorkflow)
	}

	byID := make(map[string]model.OnboardingStep, len(t.Steps))
	for _, step := range t.Steps {
		if step.ID == "" {
			return fmt.Errorf("%w: step with empty id", ErrInvalidWorkflow)
		}
		if _, dup := byID[step.ID]; dup {
			return fmt.Errorf("%w: duplicate step id %q", ErrInvalidWorkflow, step.ID)
		}
		byID[step.ID] = step
	}

	// In-degree per step plus forward adjacency (dependency -> dependents).
	indegree := make(map[string]int, len(t.Steps))
	dependents := make(map[string][]string, len(t.Steps))
	for _, step := range t.Steps {
		for _, dep := range step.DependsOn {
			if _, ok := byID[dep]; !ok {
				return fmt.Errorf("%w: step %q depends on unknown step %q", ErrInvalidWorkflow, step.ID, dep)
			}
			if dep == step.ID {
				return fmt.Errorf("%w: step %q depends on itself", ErrInvalidWorkflow, step.ID)
			}
			indegree[step.ID]++
			dependents[dep] = append(dependents[dep], step.ID)
		}
	}

	queue := make([]string, 0, len(t.Steps))
	for _, step := range t.Steps {
		if indegree[step.ID] == 0 {
			queue = append(queue, step.ID)
		}
	}

	sorted := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted++
		for _, next := range dependents[id] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if sorted != len(t.Steps) {
		// Everything with a remaining in-degree sits on a cycle.
		var cyclic []string
		for id, deg := range indegree {
			if deg > 0 {
				cyclic = append(cyclic, id)
			}
		}
		sort.Strings(cyclic)
		return fmt.Errorf("%w: dependency cycle through steps [%s]", ErrInvalidWorkflow, strings.Join(cyclic, ", "))
	}
	return nil
}

// Instantiate binds a candidate to a snapshot of the template.  The
// step slice is deep-copied so later template versions cannot alter
// the candidate's workflow.  The candidate starts in the onboarding
// stage: instantiation only happens for accepted applications, which
// have already passed the applied and screening stages.
func Instantiate(t *model.WorkflowTemplate, app *model.Application) *model.Candidate {
	steps := make([]model.OnboardingStep, len(t.Steps))
	for i, step := range t.Steps {
		steps[i] = step
		steps[i].DependsOn = append([]string(nil), step.DependsOn...)
	}
	return &model.Candidate{
		ApplicationID:  app.ID,
		TemplateID:     t.ID,
		Steps:          steps,
		CompletedSteps: []string{},
		Stage:          model.StageOnboarding,
	}
}

// CompleteStep marks a step complete on the candidate.  It fails with
// ErrDependencyUnmet when any dependency of the step is missing from
// the candidate's completed set and with ErrUnknownStep for IDs
// outside the snapshot.  Completing an already-complete step is a
// no-op, which makes retries safe.  When every required step is done
// the candidate advances to pending_approval.
func CompleteStep(c *model.Candidate, stepID string) error {
	if c.Stage.Terminal() {
		return ErrTerminalStage
	}
	step := c.Step(stepID)
	if step == nil {
		return fmt.Errorf("%w: %q", ErrUnknownStep, stepID)
	}
	if c.Completed(stepID) {
		return nil
	}
	for _, dep := range step.DependsOn {
		if !c.Completed(dep) {
			return fmt.Errorf("%w: step %q requires %q", ErrDependencyUnmet, stepID, dep)
		}
	}
	c.CompletedSteps = append(c.CompletedSteps, stepID)
	if IsComplete(c) {
		c.Stage = model.StagePendingApproval
	}
	return nil
}

// Progress derives the candidate's completion percentage from the
// required steps: round(100 * completedRequired / totalRequired).  A
// workflow with no required steps is always 100% complete.
func Progress(c *model.Candidate) int {
	var total, done int
	for _, step := range c.Steps {
		if !step.Required {
			continue
		}
		total++
		if c.Completed(step.ID) {
			done++
		}
	}
	if total == 0 {
		return 100
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

// IsComplete reports whether every required step is completed.
func IsComplete(c *model.Candidate) bool {
	for _, step := range c.Steps {
		if step.Required && !c.Completed(step.ID) {
			return false
		}
	}
	return true
}

// Approve transitions a complete candidate to the approved terminal
// stage and builds the staff member to activate.  Approval is
// at-most-once: a second call on an already approved candidate
// returns nil with no new staff member, and the caller resolves the
// existing one via Candidate.StaffID.  The caller must persist the
// candidate and staff member inside a single transaction.
func Approve(c *model.Candidate, app *model.Application, posting *model.JobPosting, t *model.WorkflowTemplate) (*model.StaffMember, error) {
	if c.Stage == model.StageApproved {
		return nil, nil
	}
	if c.Stage == model.StageRejected {
		return nil, ErrTerminalStage
	}
	if !IsComplete(c) {
		return nil, ErrIncompleteWorkflow
	}
	c.Stage = model.StageApproved
	return &model.StaffMember{
		CandidateID: c.ID,
		Name:        app.ApplicantName,
		Email:       app.ApplicantEmail,
		Role:        posting.RoleType,
		Department:  t.Department,
		Employment:  model.EmploymentTemporary,
		Status:      model.StaffActive,
	}, nil
}

// Reject moves a candidate to the rejected terminal stage from any
// non-terminal stage and records the reason.
func Reject(c *model.Candidate, reason string) error {
	if c.Stage.Terminal() {
		return ErrTerminalStage
	}
	c.Stage = model.StageRejected
	c.RejectReason = reason
	return nil
}
