package store

import (
	"time"

	"github.com/iliyamo/venue-staffing/internal/model"
)

// This file holds the deterministic representative datasets served
// when a table is not yet provisioned.  The values are stable sample
// data for demos and tests, not real records: callers always receive
// fresh copies, and identifiers sit in the synthetic range so they can
// never collide with durable rows.

var fallbackTime = time.Date(2025, time.January, 6, 9, 0, 0, 0, time.UTC)

// FallbackPostings returns the sample posting dataset.
func FallbackPostings() []model.JobPosting {
	return []model.JobPosting{
		{
			ID:       syntheticIDBase + 1,
			Title:    "Event Security (sample)",
			RoleType: "security",
			Capacity: 4,
			Status:   model.PostingPublished,
			Rules: model.ScreeningRules{
				RequiredCertifications: []string{"Security License"},
				MinimumAge:             21,
			},
			ResponseSchema: []model.FieldSpec{
				{Name: "resume", Type: model.FieldText, Required: true},
				{Name: "certifications", Type: model.FieldMultiChoice, Options: []string{"Security License", "First Aid"}},
			},
			CreatedAt: fallbackTime,
			UpdatedAt: fallbackTime,
		},
		{
			ID:        syntheticIDBase + 2,
			Title:     "Bar Staff (sample)",
			RoleType:  "bar",
			Capacity:  6,
			Status:    model.PostingPublished,
			Rules:     model.ScreeningRules{MinimumAge: 18},
			CreatedAt: fallbackTime,
			UpdatedAt: fallbackTime,
		},
	}
}

// FallbackStaff returns the sample staff dataset.
func FallbackStaff() []model.StaffMember {
	return []model.StaffMember{
		{
			ID:         syntheticIDBase + 1,
			Name:       "Sample Staffer",
			Email:      "sample.staffer@example.com",
			Role:       "security",
			Department: "security",
			Employment: model.EmploymentTemporary,
			Status:     model.StaffActive,
			CreatedAt:  fallbackTime,
			UpdatedAt:  fallbackTime,
		},
	}
}

// FallbackZones returns the sample zone dataset.
func FallbackZones() []model.Zone {
	return []model.Zone{
		{
			ID:                 syntheticIDBase + 1,
			EventID:            syntheticIDBase + 1,
			Name:               "Main Gate (sample)",
			Capacity:           1200,
			RequiredStaffCount: 4,
			AssignedCount:      0,
			CreatedAt:          fallbackTime,
			UpdatedAt:          fallbackTime,
		},
	}
}

// FallbackMetrics returns the sample metric dataset.
func FallbackMetrics() []model.PerformanceMetric {
	return []model.PerformanceMetric{
		{
			ID:                syntheticIDBase + 1,
			StaffID:           syntheticIDBase + 1,
			Period:            fallbackTime,
			AttendanceRate:    0.95,
			Rating:            4.5,
			IncidentCount:     0,
			CommendationCount: 1,
			CreatedAt:         fallbackTime,
		},
	}
}
