package screening

import (
	"reflect"
	"testing"
	"time"

	"github.com/iliyamo/venue-staffing/internal/model"
)

var screenTime = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func textValue(s string) model.ResponseValue {
	return model.ResponseValue{Type: model.FieldText, Text: s}
}

func numberValueOf(n float64) model.ResponseValue {
	return model.ResponseValue{Type: model.FieldNumber, Number: n}
}

func multiChoice(opts ...string) model.ResponseValue {
	return model.ResponseValue{Type: model.FieldMultiChoice, Choices: opts}
}

func completeResponses() map[string]model.ResponseValue {
	return map[string]model.ResponseValue{
		FieldResume:      textValue("ten seasons of festival gate work"),
		FieldCoverLetter: textValue("happy to cover weekend events"),
	}
}

func TestScreenCleanApplicationPasses(t *testing.T) {
	app := &model.Application{Responses: completeResponses()}
	posting := &model.JobPosting{}

	got := Screen(app, posting, screenTime)

	if !got.Passed {
		t.Fatalf("expected clean application to pass, issues: %v", got.Issues)
	}
	if got.Score != 100 {
		t.Errorf("score = %d, want 100", got.Score)
	}
}

func TestScreenIsIdempotent(t *testing.T) {
	app := &model.Application{Responses: map[string]model.ResponseValue{
		FieldResume: textValue("worked security at two arenas"),
	}}
	posting := &model.JobPosting{
		Rules: model.ScreeningRules{RequiredCertifications: []string{"First Aid"}},
	}

	first := Screen(app, posting, screenTime)
	second := Screen(app, posting, screenTime)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated screening differed:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestScreenCertificationAndAgeGaps(t *testing.T) {
	// Posting requires a Security License and minimum age 21; the
	// applicant holds no certification and is 19 at screening time.
	posting := &model.JobPosting{
		Rules: model.ScreeningRules{
			RequiredCertifications: []string{"Security License"},
			MinimumAge:             21,
		},
	}
	app := &model.Application{Responses: map[string]model.ResponseValue{
		FieldBirthDate: textValue("2006-01-20"), // age 19 on 2025-06-15
	}}

	got := Screen(app, posting, screenTime)

	if got.Passed {
		t.Fatal("expected screening to fail")
	}
	if !hasIssue(got, model.IssueMissingCertification, "Security License") {
		t.Errorf("missing certification issue not found: %v", got.Issues)
	}
	if !hasIssue(got, model.IssueBelowMinimumAge, FieldBirthDate) {
		t.Errorf("below minimum age issue not found: %v", got.Issues)
	}
	if got.Score > 60 {
		t.Errorf("score = %d, want <= 60", got.Score)
	}
	if len(got.Recommendations) == 0 {
		t.Error("expected a rejection recommendation")
	}
}

func TestScreenCalendarAccurateAge(t *testing.T) {
	// Born 2004-06-16: turns 21 the day after screening, so the
	// applicant is still 20 and fails a minimum age of 21.  A
	// birthday one day earlier passes.
	posting := &model.JobPosting{Rules: model.ScreeningRules{MinimumAge: 21}}

	cases := []struct {
		name      string
		birthDate string
		underAge  bool
	}{
		{"birthday tomorrow", "2004-06-16", true},
		{"birthday today", "2004-06-15", false},
		{"birthday passed", "2004-06-14", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			responses := completeResponses()
			responses[FieldBirthDate] = textValue(tc.birthDate)
			got := Screen(&model.Application{Responses: responses}, posting, screenTime)
			if hasIssue(got, model.IssueBelowMinimumAge, FieldBirthDate) != tc.underAge {
				t.Errorf("under-age issue = %v, want %v", !tc.underAge, tc.underAge)
			}
		})
	}
}

func TestScreenSeniorExperienceGate(t *testing.T) {
	posting := &model.JobPosting{Rules: model.ScreeningRules{ExperienceLevel: "senior"}}
	responses := completeResponses()
	responses[FieldExperienceYears] = numberValueOf(3)

	got := Screen(&model.Application{Responses: responses}, posting, screenTime)

	if !hasIssue(got, model.IssueInsufficientExp, FieldExperienceYears) {
		t.Errorf("insufficient experience issue not found: %v", got.Issues)
	}
	if len(got.Recommendations) == 0 {
		t.Error("expected a downgrade recommendation")
	}
}

func TestScreenRedFlagTermsAreCategorical(t *testing.T) {
	responses := completeResponses()
	responses[FieldCoverLetter] = textValue("I was convicted once but have changed")

	got := Screen(&model.Application{Responses: responses}, &model.JobPosting{}, screenTime)

	if !hasIssue(got, model.IssueRedFlagTerm, "convicted") {
		t.Fatalf("red flag issue not found: %v", got.Issues)
	}
	for _, issue := range got.Issues {
		if issue.Code == model.IssueRedFlagTerm && issue.Detail != "convicted" {
			t.Errorf("issue detail leaked more than the matched term: %q", issue.Detail)
		}
	}
}

func TestScreenMalformedInputIsIssueNotError(t *testing.T) {
	// Nil response map and a garbage birth date must not panic or
	// error; they surface as missing artifact issues only.
	posting := &model.JobPosting{Rules: model.ScreeningRules{MinimumAge: 18}}

	got := Screen(&model.Application{}, posting, screenTime)
	if got.Passed {
		t.Fatal("expected missing artifacts to fail screening")
	}
	if !hasIssue(got, model.IssueMissingArtifact, FieldResume) {
		t.Errorf("missing resume issue not found: %v", got.Issues)
	}

	responses := completeResponses()
	responses[FieldBirthDate] = textValue("not-a-date")
	got = Screen(&model.Application{Responses: responses}, posting, screenTime)
	if hasIssue(got, model.IssueBelowMinimumAge, FieldBirthDate) {
		t.Error("unparseable birth date must disable the age check, not fail it")
	}
}

func TestScreenCompletenessBonus(t *testing.T) {
	schema := []model.FieldSpec{
		{Name: "availability", Type: model.FieldText, Required: true},
		{Name: "shirt_size", Type: model.FieldChoice, Required: false},
	}
	posting := &model.JobPosting{ResponseSchema: schema}

	// No artifacts submitted: 2 issues leave a base of 80.  Answering
	// the only required schema field adds the full 20-point bonus.
	responses := map[string]model.ResponseValue{
		"availability": textValue("weekends"),
	}
	got := Screen(&model.Application{Responses: responses}, posting, screenTime)
	if got.Score != 100 {
		t.Errorf("score with required field answered = %d, want 100", got.Score)
	}

	delete(responses, "availability")
	got = Screen(&model.Application{Responses: responses}, posting, screenTime)
	if got.Score != 80 {
		t.Errorf("score without required field = %d, want 80", got.Score)
	}
}

func hasIssue(r model.ScreeningResult, code model.IssueCode, detail string) bool {
	for _, issue := range r.Issues {
		if issue.Code == code && issue.Detail == detail {
			return true
		}
	}
	return false
}
