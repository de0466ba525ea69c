package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/handler"
	"github.com/iliyamo/venue-staffing/internal/middleware"
)

// RegisterLifecycle registers the hiring pipeline endpoints: posting
// management, application intake, screening runs and candidate
// onboarding.  Management endpoints require the OPERATOR role.
// Application submission and posting browsing are public so that
// applicants, who hold no account, can apply.
func RegisterLifecycle(e *echo.Echo, p *handler.PostingHandler, s *handler.ScreeningHandler, o *handler.OnboardingHandler, jwtSecret string) {
	// ---- Public intake ----
	e.GET("/v1/postings", p.ListPostings)
	e.GET("/v1/postings/:id", p.GetPosting)
	e.POST("/v1/postings/:id/applications", p.SubmitApplication)

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OPERATOR"),
	)

	// ---- Postings ----
	g.POST("/postings", p.CreatePosting)
	g.PATCH("/postings/:id/status", p.UpdatePostingStatus)
	g.GET("/postings/:id/applications", p.ListApplications)
	g.GET("/applications/:id", p.GetApplication)

	// ---- Screening ----
	g.POST("/screenings", s.RunScreenings)

	// ---- Templates ----
	g.POST("/templates", o.CreateTemplate)
	g.GET("/templates/:id", o.GetTemplate)

	// ---- Candidates ----
	g.POST("/candidates", o.CreateCandidate)
	g.GET("/candidates/:id", o.GetCandidate)
	g.POST("/candidates/:id/steps/:stepId/complete", o.CompleteStep)
	g.POST("/candidates/:id/approve", o.Approve)
	g.POST("/candidates/:id/reject", o.Reject)
}
