package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/repository"
	"github.com/iliyamo/venue-staffing/internal/screening"
)

// ScreeningHandler runs the automated screening engine over submitted
// applications and stores the results.
type ScreeningHandler struct {
	Postings     *repository.PostingRepo
	Applications *repository.ApplicationRepo
}

// NewScreeningHandler constructs a ScreeningHandler.
func NewScreeningHandler(p *repository.PostingRepo, a *repository.ApplicationRepo) *ScreeningHandler {
	if p == nil || a == nil {
		panic("nil repository passed to NewScreeningHandler")
	}
	return &ScreeningHandler{Postings: p, Applications: a}
}

type runScreeningsReq struct {
	ApplicationIDs []uint64 `json:"application_ids"`
}

type screeningOutcome struct {
	ApplicationID uint64                 `json:"application_id"`
	Result        *model.ScreeningResult `json:"result,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// RunScreenings handles POST /v1/screenings.  It evaluates each listed
// application against its posting's rules and stores the result on the
// application, overwriting any previous run.  Failures are reported
// per application so one bad ID does not abort the batch.
func (h *ScreeningHandler) RunScreenings(c echo.Context) error {
	var req runScreeningsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.ApplicationIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "application_ids is required"})
	}
	// Deduplicate so a repeated ID is screened once.
	unique := make([]uint64, 0, len(req.ApplicationIDs))
	seen := make(map[uint64]struct{}, len(req.ApplicationIDs))
	for _, id := range req.ApplicationIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid application IDs provided"})
	}

	ctx := c.Request().Context()
	now := time.Now().UTC()
	outcomes := make([]screeningOutcome, 0, len(unique))
	for _, id := range unique {
		app, err := h.Applications.GetByID(ctx, id)
		if err != nil {
			outcomes = append(outcomes, screeningOutcome{ApplicationID: id, Error: "application not found"})
			continue
		}
		posting, err := h.Postings.GetByID(ctx, app.PostingID)
		if err != nil {
			outcomes = append(outcomes, screeningOutcome{ApplicationID: id, Error: "posting not found"})
			continue
		}
		result := screening.Screen(app, posting, now)
		if err := h.Applications.StoreScreening(ctx, id, &result); err != nil {
			outcomes = append(outcomes, screeningOutcome{ApplicationID: id, Error: "store result failed"})
			continue
		}
		outcomes = append(outcomes, screeningOutcome{ApplicationID: id, Result: &result})
	}
	return c.JSON(http.StatusOK, echo.Map{"screenings": outcomes})
}
