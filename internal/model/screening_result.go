package model

import "time"

// IssueCode categorizes a screening issue.  Codes are stored instead of
// raw applicant text so that logs and downstream consumers never see
// response content beyond the matched term itself.
type IssueCode string

const (
	IssueMissingArtifact      IssueCode = "MISSING_ARTIFACT"
	IssueMissingCertification IssueCode = "MISSING_CERTIFICATION"
	IssueBelowMinimumAge      IssueCode = "BELOW_MINIMUM_AGE"
	IssueInsufficientExp      IssueCode = "INSUFFICIENT_EXPERIENCE"
	IssueRedFlagTerm          IssueCode = "RED_FLAG_TERM"
)

// ScreeningIssue is a single problem found while evaluating an
// application against a posting's requirements.  Detail carries the
// specific artifact, certification or matched term; it never contains
// free-form applicant text.
type ScreeningIssue struct {
	Code   IssueCode `json:"code"`
	Detail string    `json:"detail"`
}

// ScreeningResult is the outcome of one automated screening run.  It
// is produced at most once per run and recomputing it replaces the
// previous value; results never accumulate.
//
// Fields:
//  Passed          – true iff no issues were found.
//  Score           – 0–100 evaluation score.
//  Issues          – ordered list of problems found.
//  Recommendations – operator-facing follow-up suggestions.
//  ScreenedAt      – when the run happened.
type ScreeningResult struct {
	Passed          bool             `json:"passed"`
	Score           int              `json:"score"`
	Issues          []ScreeningIssue `json:"issues"`
	Recommendations []string         `json:"recommendations,omitempty"`
	ScreenedAt      time.Time        `json:"screened_at"`
}
