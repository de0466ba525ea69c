package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/repository"
)

var (
	errFieldName      = errors.New("schema field name must not be empty")
	errDuplicateField = errors.New("schema field names must be unique")
	errFieldType      = errors.New("unknown schema field type")
	errChoiceOptions  = errors.New("choice fields must declare options")
)

// PostingHandler serves job posting management and application intake.
type PostingHandler struct {
	Postings     *repository.PostingRepo
	Applications *repository.ApplicationRepo
}

// NewPostingHandler constructs a PostingHandler.  All dependencies
// must be non-nil.
func NewPostingHandler(p *repository.PostingRepo, a *repository.ApplicationRepo) *PostingHandler {
	if p == nil || a == nil {
		panic("nil repository passed to NewPostingHandler")
	}
	return &PostingHandler{Postings: p, Applications: a}
}

type createPostingReq struct {
	Title          string               `json:"title"`
	RoleType       string               `json:"role_type"`
	Capacity       int                  `json:"capacity"`
	Rules          model.ScreeningRules `json:"rules"`
	ResponseSchema []model.FieldSpec    `json:"response_schema"`
}

type postingResp struct {
	ID             uint64               `json:"id"`
	Title          string               `json:"title"`
	RoleType       string               `json:"role_type"`
	Capacity       int                  `json:"capacity"`
	Status         model.PostingStatus  `json:"status"`
	Rules          model.ScreeningRules `json:"rules"`
	ResponseSchema []model.FieldSpec    `json:"response_schema"`
}

func toPostingResp(p *model.JobPosting) postingResp {
	return postingResp{
		ID:             p.ID,
		Title:          p.Title,
		RoleType:       p.RoleType,
		Capacity:       p.Capacity,
		Status:         p.Status,
		Rules:          p.Rules,
		ResponseSchema: p.ResponseSchema,
	}
}

// CreatePosting handles POST /v1/postings.  New postings start as
// DRAFT and must be published before they accept applications.
func (h *PostingHandler) CreatePosting(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createPostingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.RoleType = strings.TrimSpace(req.RoleType)
	if req.Title == "" || req.RoleType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and role_type required"})
	}
	if req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	if err := validateSchema(req.ResponseSchema); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	p := &model.JobPosting{
		Title:          req.Title,
		RoleType:       req.RoleType,
		Capacity:       req.Capacity,
		Status:         model.PostingDraft,
		Rules:          req.Rules,
		ResponseSchema: req.ResponseSchema,
		CreatedBy:      uid,
	}
	if err := h.Postings.Create(c.Request().Context(), p); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, toPostingResp(p))
}

// ListPostings handles GET /v1/postings.
func (h *PostingHandler) ListPostings(c echo.Context) error {
	postings, err := h.Postings.List(c.Request().Context())
	if err != nil {
		return engineError(c, err)
	}
	out := make([]postingResp, 0, len(postings))
	for i := range postings {
		out = append(out, toPostingResp(&postings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"postings": out})
}

// GetPosting handles GET /v1/postings/:id.
func (h *PostingHandler) GetPosting(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid posting id"})
	}
	p, err := h.Postings.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, toPostingResp(p))
}

// UpdatePostingStatus handles PATCH /v1/postings/:id/status.  The body
// carries the target status; any of the four lifecycle states may be
// set directly by an operator.
func (h *PostingHandler) UpdatePostingStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid posting id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.PostingStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	switch status {
	case model.PostingDraft, model.PostingPublished, model.PostingPaused, model.PostingClosed:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if err := h.Postings.UpdateStatus(c.Request().Context(), id, status); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

type submitApplicationReq struct {
	ApplicantName  string                         `json:"applicant_name"`
	ApplicantEmail string                         `json:"applicant_email"`
	Responses      map[string]model.ResponseValue `json:"responses"`
}

// SubmitApplication handles POST /v1/postings/:id/applications.  The
// response map is validated against the posting's declared schema:
// every required field must be present, every submitted field must be
// declared, its type must match and choice values must come from the
// declared options.
func (h *PostingHandler) SubmitApplication(c echo.Context) error {
	postingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid posting id"})
	}
	ctx := c.Request().Context()
	posting, err := h.Postings.GetByID(ctx, postingID)
	if err != nil {
		return engineError(c, err)
	}
	if !posting.AcceptsApplications() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "posting is not accepting applications"})
	}

	var req submitApplicationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ApplicantName = strings.TrimSpace(req.ApplicantName)
	req.ApplicantEmail = strings.ToLower(strings.TrimSpace(req.ApplicantEmail))
	if req.ApplicantName == "" || req.ApplicantEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "applicant_name and applicant_email required"})
	}
	if req.Responses == nil {
		req.Responses = map[string]model.ResponseValue{}
	}
	if problems := validateResponses(req.Responses, posting.ResponseSchema); len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":    "responses do not match the posting schema",
			"problems": problems,
		})
	}

	app := &model.Application{
		PostingID:      postingID,
		ApplicantName:  req.ApplicantName,
		ApplicantEmail: req.ApplicantEmail,
		Responses:      req.Responses,
		Status:         model.ApplicationPending,
	}
	if err := h.Applications.Create(ctx, app); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":         app.ID,
		"posting_id": app.PostingID,
		"status":     app.Status,
	})
}

// ListApplications handles GET /v1/postings/:id/applications.
func (h *PostingHandler) ListApplications(c echo.Context) error {
	postingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid posting id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Postings.GetByID(ctx, postingID); err != nil {
		return engineError(c, err)
	}
	apps, err := h.Applications.ListByPosting(ctx, postingID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"applications": apps})
}

// GetApplication handles GET /v1/applications/:id, returning the full
// application including its latest screening result.
func (h *PostingHandler) GetApplication(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid application id"})
	}
	app, err := h.Applications.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, app)
}

// validateSchema rejects schemas with duplicate or empty field names,
// unknown field types, or choice fields without options.
func validateSchema(schema []model.FieldSpec) error {
	seen := make(map[string]bool, len(schema))
	for _, f := range schema {
		if strings.TrimSpace(f.Name) == "" {
			return errFieldName
		}
		if seen[f.Name] {
			return errDuplicateField
		}
		seen[f.Name] = true
		switch f.Type {
		case model.FieldText, model.FieldNumber, model.FieldBoolean:
		case model.FieldChoice, model.FieldMultiChoice:
			if len(f.Options) == 0 {
				return errChoiceOptions
			}
		default:
			return errFieldType
		}
	}
	return nil
}

// validateResponses checks a submission against a schema and returns a
// list of human-readable problems, empty when the submission is valid.
func validateResponses(responses map[string]model.ResponseValue, schema []model.FieldSpec) []string {
	var problems []string
	declared := make(map[string]model.FieldSpec, len(schema))
	for _, f := range schema {
		declared[f.Name] = f
		v, ok := responses[f.Name]
		if !ok {
			if f.Required {
				problems = append(problems, "missing required field: "+f.Name)
			}
			continue
		}
		if v.Type != f.Type {
			problems = append(problems, "wrong type for field: "+f.Name)
			continue
		}
		switch f.Type {
		case model.FieldChoice:
			if !optionAllowed(f.Options, v.Choice()) {
				problems = append(problems, "value not in options for field: "+f.Name)
			}
		case model.FieldMultiChoice:
			for _, choice := range v.Choices {
				if !optionAllowed(f.Options, choice) {
					problems = append(problems, "value not in options for field: "+f.Name)
					break
				}
			}
		}
	}
	for name := range responses {
		if _, ok := declared[name]; !ok {
			problems = append(problems, "undeclared field: "+name)
		}
	}
	return problems
}

func optionAllowed(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
