// Package screening implements the automated pre-qualification of
// applications against a posting's requirements.  Screening is a pure
// function of its inputs: identical application and posting values
// always produce an identical result, and re-running it replaces any
// previous result rather than accumulating.  Malformed or missing
// response data is reported as an issue, never as an error.
package screening

import (
	"strings"
	"time"

	"github.com/iliyamo/venue-staffing/internal/model"
)

// Response field names the screener inspects.  Postings that want a
// requirement evaluated must declare the corresponding field in their
// response schema so submission validation populates it.
const (
	FieldResume          = "resume"
	FieldCoverLetter     = "cover_letter"
	FieldCertifications  = "certifications"
	FieldBirthDate       = "birth_date"
	FieldExperienceYears = "experience_years"
)

const (
	birthDateLayout     = "2006-01-02"
	perIssueDeduction   = 10
	completenessBonus   = 20
	seniorMinExperience = 5
)

// redFlagTerms is the fixed denylist scanned against all text
// responses.  Matches are recorded as categorical issues carrying only
// the matched term, never surrounding applicant text.
var redFlagTerms = []string{
	"felony",
	"convicted",
	"conviction",
	"incarcerated",
	"parole",
	"terminated for cause",
}

// Screen evaluates an application against the posting's screening
// rules and returns the result.  The caller is responsible for the
// posting lookup; a missing posting is a precondition failure surfaced
// before this function is reached.
func Screen(app *model.Application, posting *model.JobPosting, now time.Time) model.ScreeningResult {
	res := model.ScreeningResult{
		Issues:     []model.ScreeningIssue{},
		ScreenedAt: now.UTC(),
	}

	// Mandatory artifacts.  Their absence is an issue like any other;
	// the per-issue deduction below is the only penalty.
	for _, artifact := range []string{FieldResume, FieldCoverLetter} {
		if !hasText(app.Responses, artifact) {
			res.Issues = append(res.Issues, model.ScreeningIssue{
				Code:   model.IssueMissingArtifact,
				Detail: artifact,
			})
		}
	}

	// Required certifications must appear among the applicant's
	// certification selections.
	held := certificationSet(app.Responses)
	for _, cert := range posting.Rules.RequiredCertifications {
		if !held[normalizeTerm(cert)] {
			res.Issues = append(res.Issues, model.ScreeningIssue{
				Code:   model.IssueMissingCertification,
				Detail: cert,
			})
		}
	}

	// Minimum age, computed calendar-accurately from the birth date
	// response when both sides are present.
	if posting.Rules.MinimumAge > 0 {
		if birth, ok := birthDate(app.Responses); ok {
			if age(birth, now) < posting.Rules.MinimumAge {
				res.Issues = append(res.Issues, model.ScreeningIssue{
					Code:   model.IssueBelowMinimumAge,
					Detail: FieldBirthDate,
				})
				res.Recommendations = append(res.Recommendations,
					"applicant is below the posting's minimum age; recommend rejection")
			}
		}
	}

	// Senior postings expect at least five years of experience.
	if strings.EqualFold(posting.Rules.ExperienceLevel, "senior") {
		if years, ok := numberValue(app.Responses, FieldExperienceYears); ok && years < seniorMinExperience {
			res.Issues = append(res.Issues, model.ScreeningIssue{
				Code:   model.IssueInsufficientExp,
				Detail: FieldExperienceYears,
			})
			res.Recommendations = append(res.Recommendations,
				"reported experience is below the senior threshold; recommend downgrading consideration")
		}
	}

	// Denylist scan over every text response.
	for _, term := range matchedRedFlags(app.Responses) {
		res.Issues = append(res.Issues, model.ScreeningIssue{
			Code:   model.IssueRedFlagTerm,
			Detail: term,
		})
	}

	res.Score = score(len(res.Issues), requiredFieldRatio(app.Responses, posting.ResponseSchema))
	res.Passed = len(res.Issues) == 0
	return res
}

// score applies the deduction and completeness bonus and clamps the
// result to [0, 100].
func score(issueCount int, requiredRatio float64) int {
	s := 100 - perIssueDeduction*issueCount
	s += int(completenessBonus * requiredRatio)
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// requiredFieldRatio returns the fraction of the posting's required
// schema fields that carry a non-empty answer.  A schema with no
// required fields earns no completeness bonus.
func requiredFieldRatio(responses map[string]model.ResponseValue, schema []model.FieldSpec) float64 {
	var total, filled int
	for _, spec := range schema {
		if !spec.Required {
			continue
		}
		total++
		if answered(responses, spec) {
			filled++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(filled) / float64(total)
}

// answered reports whether the response for the given spec carries a
// usable value of the declared type.
func answered(responses map[string]model.ResponseValue, spec model.FieldSpec) bool {
	v, ok := responses[spec.Name]
	if !ok || v.Type != spec.Type {
		return false
	}
	switch spec.Type {
	case model.FieldText:
		return strings.TrimSpace(v.Text) != ""
	case model.FieldChoice:
		return v.Choice() != ""
	case model.FieldMultiChoice:
		return len(v.Choices) > 0
	default:
		// number and boolean: presence is enough, zero is a valid answer
		return true
	}
}

// age computes calendar-accurate age in whole years: the year
// difference, minus one when the birthday has not yet occurred in the
// current year.
func age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func hasText(responses map[string]model.ResponseValue, name string) bool {
	v, ok := responses[name]
	return ok && v.Type == model.FieldText && strings.TrimSpace(v.Text) != ""
}

func numberValue(responses map[string]model.ResponseValue, name string) (float64, bool) {
	v, ok := responses[name]
	if !ok || v.Type != model.FieldNumber {
		return 0, false
	}
	return v.Number, true
}

func birthDate(responses map[string]model.ResponseValue) (time.Time, bool) {
	v, ok := responses[FieldBirthDate]
	if !ok || v.Type != model.FieldText {
		return time.Time{}, false
	}
	t, err := time.Parse(birthDateLayout, strings.TrimSpace(v.Text))
	if err != nil {
		// An unparseable birth date simply disables the age check;
		// screening never fails on malformed input.
		return time.Time{}, false
	}
	return t, true
}

// certificationSet collects the applicant's certifications from the
// multi_choice certifications field, normalized for comparison.
func certificationSet(responses map[string]model.ResponseValue) map[string]bool {
	out := map[string]bool{}
	v, ok := responses[FieldCertifications]
	if !ok || v.Type != model.FieldMultiChoice {
		return out
	}
	for _, c := range v.Choices {
		out[normalizeTerm(c)] = true
	}
	return out
}

// matchedRedFlags scans every text response for denylist terms and
// returns the matched terms in denylist order.  Each term is reported
// at most once regardless of how many responses contain it.
func matchedRedFlags(responses map[string]model.ResponseValue) []string {
	var haystack strings.Builder
	for _, v := range responses {
		if v.Type == model.FieldText {
			haystack.WriteString(strings.ToLower(v.Text))
			haystack.WriteByte('\n')
		}
	}
	text := haystack.String()
	var matches []string
	for _, term := range redFlagTerms {
		if strings.Contains(text, term) {
			matches = append(matches, term)
		}
	}
	return matches
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
