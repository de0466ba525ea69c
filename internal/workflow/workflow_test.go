package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/iliyamo/venue-staffing/internal/model"
)

// chainTemplate builds the canonical three step document → training →
// approval chain used across the tests.
func chainTemplate() *model.WorkflowTemplate {
	return &model.WorkflowTemplate{
		ID:         7,
		Name:       "security onboarding",
		Department: "security",
		Position:   "gate guard",
		Steps: []model.OnboardingStep{
			{ID: "doc", Title: "Upload documents", Type: model.StepDocument, Required: true, Order: 1},
			{ID: "train", Title: "Complete training", Type: model.StepTraining, Required: true, DependsOn: []string{"doc"}, Order: 2},
			{ID: "approve", Title: "Manager sign-off", Type: model.StepApproval, Required: true, DependsOn: []string{"train"}, Order: 3},
		},
	}
}

func newCandidate(t *testing.T) *model.Candidate {
	t.Helper()
	tpl := chainTemplate()
	if err := ValidateTemplate(tpl); err != nil {
		t.Fatalf("chain template should be valid: %v", err)
	}
	return Instantiate(tpl, &model.Application{ID: 42})
}

func TestValidateTemplateRejectsCycle(t *testing.T) {
	tpl := chainTemplate()
	// Close the loop: doc depends on approve.
	tpl.Steps[0].DependsOn = []string{"approve"}

	err := ValidateTemplate(tpl)
	if !errors.Is(err, ErrInvalidWorkflow) {
		t.Fatalf("err = %v, want ErrInvalidWorkflow", err)
	}
	for _, id := range []string{"doc", "train", "approve"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error should name offending step %q: %v", id, err)
		}
	}
}

func TestValidateTemplateRejectsUnknownDependency(t *testing.T) {
	tpl := chainTemplate()
	tpl.Steps[1].DependsOn = []string{"missing"}

	if err := ValidateTemplate(tpl); !errors.Is(err, ErrInvalidWorkflow) {
		t.Fatalf("err = %v, want ErrInvalidWorkflow", err)
	}
}

func TestInstantiateSnapshotsSteps(t *testing.T) {
	tpl := chainTemplate()
	c := Instantiate(tpl, &model.Application{ID: 42})

	// Mutating the template after instantiation must not leak into
	// the candidate's snapshot.
	tpl.Steps[0].Title = "changed"
	tpl.Steps[1].DependsOn[0] = "changed"

	if c.Steps[0].Title != "Upload documents" {
		t.Error("snapshot step title changed with the template")
	}
	if c.Steps[1].DependsOn[0] != "doc" {
		t.Error("snapshot dependency changed with the template")
	}
	if c.Stage != model.StageOnboarding {
		t.Errorf("stage = %s, want onboarding", c.Stage)
	}
}

func TestCompleteStepEnforcesDependencies(t *testing.T) {
	c := newCandidate(t)

	if err := CompleteStep(c, "approve"); !errors.Is(err, ErrDependencyUnmet) {
		t.Fatalf("completing approve first: err = %v, want ErrDependencyUnmet", err)
	}
	if err := CompleteStep(c, "train"); !errors.Is(err, ErrDependencyUnmet) {
		t.Fatalf("completing train first: err = %v, want ErrDependencyUnmet", err)
	}

	for _, id := range []string{"doc", "train", "approve"} {
		if err := CompleteStep(c, id); err != nil {
			t.Fatalf("completing %q in order: %v", id, err)
		}
	}
	if !IsComplete(c) {
		t.Error("candidate should be complete after the full chain")
	}
	if c.Stage != model.StagePendingApproval {
		t.Errorf("stage = %s, want pending_approval", c.Stage)
	}
}

func TestCompleteStepIsIdempotent(t *testing.T) {
	c := newCandidate(t)
	if err := CompleteStep(c, "doc"); err != nil {
		t.Fatal(err)
	}
	if err := CompleteStep(c, "doc"); err != nil {
		t.Fatalf("repeat completion: %v", err)
	}
	if len(c.CompletedSteps) != 1 {
		t.Errorf("completed steps = %v, want exactly one entry", c.CompletedSteps)
	}
}

func TestCompleteStepUnknown(t *testing.T) {
	c := newCandidate(t)
	if err := CompleteStep(c, "nope"); !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("err = %v, want ErrUnknownStep", err)
	}
}

func TestProgressIsDerivedAndMonotone(t *testing.T) {
	c := newCandidate(t)

	want := []int{0, 33, 67, 100}
	got := []int{Progress(c)}
	for _, id := range []string{"doc", "train", "approve"} {
		if err := CompleteStep(c, id); err != nil {
			t.Fatal(err)
		}
		got = append(got, Progress(c))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, got[i], want[i])
		}
		if i > 0 && got[i] < got[i-1] {
			t.Errorf("progress decreased: %v", got)
		}
	}
}

func TestProgressIgnoresOptionalSteps(t *testing.T) {
	tpl := chainTemplate()
	tpl.Steps = append(tpl.Steps, model.OnboardingStep{
		ID: "social", Title: "Meet the crew", Type: model.StepMeeting, Required: false, Order: 4,
	})
	c := Instantiate(tpl, &model.Application{ID: 42})

	if err := CompleteStep(c, "social"); err != nil {
		t.Fatal(err)
	}
	if p := Progress(c); p != 0 {
		t.Errorf("optional step moved progress to %d, want 0", p)
	}
}

func TestApproveRequiresCompletion(t *testing.T) {
	c := newCandidate(t)
	app := &model.Application{ApplicantName: "Rae Diaz", ApplicantEmail: "rae@example.com"}
	posting := &model.JobPosting{RoleType: "security"}

	if _, err := Approve(c, app, posting, chainTemplate()); !errors.Is(err, ErrIncompleteWorkflow) {
		t.Fatalf("err = %v, want ErrIncompleteWorkflow", err)
	}
}

func TestApproveAtMostOnce(t *testing.T) {
	c := newCandidate(t)
	c.ID = 11
	app := &model.Application{ApplicantName: "Rae Diaz", ApplicantEmail: "rae@example.com"}
	posting := &model.JobPosting{RoleType: "security"}
	tpl := chainTemplate()

	for _, id := range []string{"doc", "train", "approve"} {
		if err := CompleteStep(c, id); err != nil {
			t.Fatal(err)
		}
	}

	staff, err := Approve(c, app, posting, tpl)
	if err != nil {
		t.Fatalf("first approve: %v", err)
	}
	if staff == nil {
		t.Fatal("first approve returned no staff member")
	}
	if staff.CandidateID != 11 || staff.Role != "security" || staff.Department != "security" {
		t.Errorf("staff member mis-built: %+v", staff)
	}
	if c.Stage != model.StageApproved {
		t.Errorf("stage = %s, want approved", c.Stage)
	}

	// Second approval is a no-op: no error, no duplicate staff member.
	again, err := Approve(c, app, posting, tpl)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if again != nil {
		t.Error("second approve built a duplicate staff member")
	}
}

func TestRejectOnlyFromNonTerminal(t *testing.T) {
	c := newCandidate(t)
	if err := Reject(c, "failed background check"); err != nil {
		t.Fatal(err)
	}
	if c.Stage != model.StageRejected || c.RejectReason != "failed background check" {
		t.Errorf("candidate = %+v", c)
	}
	if err := Reject(c, "again"); !errors.Is(err, ErrTerminalStage) {
		t.Fatalf("err = %v, want ErrTerminalStage", err)
	}
	if err := CompleteStep(c, "doc"); !errors.Is(err, ErrTerminalStage) {
		t.Fatalf("step on rejected candidate: err = %v, want ErrTerminalStage", err)
	}
}
