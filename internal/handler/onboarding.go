package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/queue"
	"github.com/iliyamo/venue-staffing/internal/repository"
	queue_publisher "github.com/iliyamo/venue-staffing/internal/service"
	"github.com/iliyamo/venue-staffing/internal/workflow"
)

// OnboardingHandler serves workflow templates and candidate
// progression.  Candidate mutations run inside a transaction with a
// row lock taken via GetForUpdateTx, so concurrent completions of the
// same candidate serialize and approval stays at-most-once.
type OnboardingHandler struct {
	Templates    *repository.TemplateRepo
	Candidates   *repository.CandidateRepo
	Applications *repository.ApplicationRepo
	Postings     *repository.PostingRepo
	Staff        *repository.StaffRepo
}

// NewOnboardingHandler constructs an OnboardingHandler.  All
// dependencies must be non-nil.
func NewOnboardingHandler(t *repository.TemplateRepo, cand *repository.CandidateRepo, a *repository.ApplicationRepo, p *repository.PostingRepo, s *repository.StaffRepo) *OnboardingHandler {
	if t == nil || cand == nil || a == nil || p == nil || s == nil {
		panic("nil repository passed to NewOnboardingHandler")
	}
	return &OnboardingHandler{Templates: t, Candidates: cand, Applications: a, Postings: p, Staff: s}
}

type createTemplateReq struct {
	Name          string                 `json:"name"`
	Department    string                 `json:"department"`
	Position      string                 `json:"position"`
	Steps         []model.OnboardingStep `json:"steps"`
	EstimatedDays int                    `json:"estimated_days"`
}

// CreateTemplate handles POST /v1/templates.  The step graph is
// validated before persisting: duplicate IDs, references to unknown
// steps and dependency cycles are rejected with 422.
func (h *OnboardingHandler) CreateTemplate(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createTemplateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if len(req.Steps) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "steps required"})
	}

	t := &model.WorkflowTemplate{
		Name:          req.Name,
		Department:    strings.TrimSpace(req.Department),
		Position:      strings.TrimSpace(req.Position),
		Steps:         req.Steps,
		EstimatedDays: req.EstimatedDays,
		CreatedBy:     uid,
	}
	if err := workflow.ValidateTemplate(t); err != nil {
		return engineError(c, err)
	}
	if err := h.Templates.Create(c.Request().Context(), t); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// GetTemplate handles GET /v1/templates/:id.
func (h *OnboardingHandler) GetTemplate(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid template id"})
	}
	t, err := h.Templates.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

type createCandidateReq struct {
	ApplicationID uint64 `json:"application_id"`
	TemplateID    uint64 `json:"template_id"`
}

// CreateCandidate handles POST /v1/candidates.  It instantiates an
// onboarding workflow for an application that passed screening,
// snapshotting the template's steps so later template edits never
// change an in-flight workflow.  The application moves to ACCEPTED.
func (h *OnboardingHandler) CreateCandidate(c echo.Context) error {
	var req createCandidateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ApplicationID == 0 || req.TemplateID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "application_id and template_id required"})
	}

	ctx := c.Request().Context()
	app, err := h.Applications.GetByID(ctx, req.ApplicationID)
	if err != nil {
		return engineError(c, err)
	}
	if app.Status == model.ApplicationRejected {
		return c.JSON(http.StatusConflict, echo.Map{"error": "application was rejected"})
	}
	screened := app.Screening != nil && app.Screening.Passed
	if app.Status != model.ApplicationAccepted && !screened {
		return c.JSON(http.StatusConflict, echo.Map{"error": "application has not passed screening"})
	}
	t, err := h.Templates.GetByID(ctx, req.TemplateID)
	if err != nil {
		return engineError(c, err)
	}

	cand := workflow.Instantiate(t, app)
	if err := h.Candidates.Create(ctx, cand); err != nil {
		return engineError(c, err)
	}
	if app.Status != model.ApplicationAccepted {
		if err := h.Applications.UpdateStatus(ctx, app.ID, model.ApplicationAccepted); err != nil {
			return engineError(c, err)
		}
	}
	return c.JSON(http.StatusCreated, candidateResp(cand))
}

// GetCandidate handles GET /v1/candidates/:id.  Progress is derived
// from the completed required steps on every read; it is never stored.
func (h *OnboardingHandler) GetCandidate(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid candidate id"})
	}
	cand, err := h.Candidates.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, candidateResp(cand))
}

func candidateResp(cand *model.Candidate) echo.Map {
	return echo.Map{
		"id":              cand.ID,
		"application_id":  cand.ApplicationID,
		"template_id":     cand.TemplateID,
		"stage":           cand.Stage,
		"steps":           cand.Steps,
		"completed_steps": cand.CompletedSteps,
		"progress":        workflow.Progress(cand),
		"staff_id":        cand.StaffID,
		"reject_reason":   cand.RejectReason,
	}
}

// CompleteStep handles POST /v1/candidates/:id/steps/:stepId/complete.
// The candidate row is locked for the duration of the update so two
// simultaneous completions cannot lose a step.
func (h *OnboardingHandler) CompleteStep(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid candidate id"})
	}
	stepID := strings.TrimSpace(c.Param("stepId"))
	if stepID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid step id"})
	}

	ctx := c.Request().Context()
	ok, err := h.Candidates.Provisioned(ctx)
	if err != nil {
		return engineError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	tx, err := h.Candidates.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cand, err := h.Candidates.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return engineError(c, err)
	}
	if err := workflow.CompleteStep(cand, stepID); err != nil {
		return engineError(c, err)
	}
	if err := h.Candidates.UpdateTx(ctx, tx, cand); err != nil {
		return engineError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	return c.JSON(http.StatusOK, candidateResp(cand))
}

// Approve handles POST /v1/candidates/:id/approve.  Candidate
// transition and staff creation commit in one transaction; the
// activation event publishes after commit as best effort.  Approving
// an already approved candidate returns the existing staff member
// without creating another.
func (h *OnboardingHandler) Approve(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid candidate id"})
	}

	ctx := c.Request().Context()
	ok, err := h.Candidates.Provisioned(ctx)
	if err != nil {
		return engineError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	tx, err := h.Candidates.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cand, err := h.Candidates.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return engineError(c, err)
	}
	app, err := h.Applications.GetByID(ctx, cand.ApplicationID)
	if err != nil {
		return engineError(c, err)
	}
	posting, err := h.Postings.GetByID(ctx, app.PostingID)
	if err != nil {
		return engineError(c, err)
	}
	t, err := h.Templates.GetByID(ctx, cand.TemplateID)
	if err != nil {
		return engineError(c, err)
	}

	staff, err := workflow.Approve(cand, app, posting, t)
	if err != nil {
		return engineError(c, err)
	}
	if staff == nil {
		// Already approved; the earlier staff member stands.
		if err := tx.Commit(); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
		}
		committed = true
		return c.JSON(http.StatusOK, echo.Map{"candidate_id": cand.ID, "staff_id": cand.StaffID, "stage": cand.Stage})
	}

	if err := h.Staff.CreateTx(ctx, tx, staff); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create staff failed"})
	}
	cand.StaffID = staff.ID
	if err := h.Candidates.UpdateTx(ctx, tx, cand); err != nil {
		return engineError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	_ = queue_publisher.PublishStaffActivated(ctx, queue.StaffActivatedEvent{
		StaffID:     staff.ID,
		CandidateID: cand.ID,
		PostingID:   posting.ID,
		FullName:    staff.Name,
		RoleType:    staff.Role,
		Employment:  string(staff.Employment),
		ActivatedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{"candidate_id": cand.ID, "staff_id": staff.ID, "stage": cand.Stage})
}

// Reject handles POST /v1/candidates/:id/reject.  Rejection is
// allowed from any non-terminal stage and records the reason.
func (h *OnboardingHandler) Reject(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid candidate id"})
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()
	ok, err := h.Candidates.Provisioned(ctx)
	if err != nil {
		return engineError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	tx, err := h.Candidates.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	cand, err := h.Candidates.GetForUpdateTx(ctx, tx, id)
	if err != nil {
		return engineError(c, err)
	}
	if err := workflow.Reject(cand, strings.TrimSpace(req.Reason)); err != nil {
		return engineError(c, err)
	}
	if err := h.Candidates.UpdateTx(ctx, tx, cand); err != nil {
		return engineError(c, err)
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	app, appErr := h.Applications.GetByID(ctx, cand.ApplicationID)
	ev := queue.CandidateRejectedEvent{
		CandidateID: cand.ID,
		Stage:       string(cand.Stage),
		Reason:      cand.RejectReason,
		RejectedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if appErr == nil {
		ev.PostingID = app.PostingID
		ev.FullName = app.ApplicantName
	}
	_ = queue_publisher.PublishCandidateRejected(ctx, ev)

	return c.JSON(http.StatusOK, candidateResp(cand))
}
