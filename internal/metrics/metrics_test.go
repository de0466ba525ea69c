package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/iliyamo/venue-staffing/internal/model"
)

func TestRollupEmptyIsZeroedNotError(t *testing.T) {
	stats := Rollup(nil)
	if stats != (model.PerformanceStats{}) {
		t.Errorf("empty rollup = %+v, want zero value", stats)
	}
}

func TestRollupAveragesAndSums(t *testing.T) {
	records := []model.PerformanceMetric{
		{StaffID: 1, Rating: 4.0, AttendanceRate: 1.0, IncidentCount: 1, CommendationCount: 2},
		{StaffID: 1, Rating: 3.0, AttendanceRate: 0.5, IncidentCount: 0, CommendationCount: 1},
		{StaffID: 1, Rating: 5.0, AttendanceRate: 0.9, IncidentCount: 2, CommendationCount: 0},
	}

	stats := Rollup(records)

	if stats.RecordCount != 3 {
		t.Errorf("record count = %d, want 3", stats.RecordCount)
	}
	if math.Abs(stats.AverageRating-4.0) > 1e-9 {
		t.Errorf("average rating = %f, want 4.0", stats.AverageRating)
	}
	if math.Abs(stats.AverageAttendance-0.8) > 1e-9 {
		t.Errorf("average attendance = %f, want 0.8", stats.AverageAttendance)
	}
	if stats.TotalIncidents != 3 || stats.TotalCommendations != 3 {
		t.Errorf("sums = %d/%d, want 3/3", stats.TotalIncidents, stats.TotalCommendations)
	}
}

func TestValidateRanges(t *testing.T) {
	cases := []struct {
		name   string
		metric model.PerformanceMetric
		ok     bool
	}{
		{"valid", model.PerformanceMetric{AttendanceRate: 0.95, Rating: 4.2}, true},
		{"attendance above one", model.PerformanceMetric{AttendanceRate: 1.2}, false},
		{"negative rating", model.PerformanceMetric{Rating: -1}, false},
		{"rating above five", model.PerformanceMetric{Rating: 5.5}, false},
		{"negative incidents", model.PerformanceMetric{IncidentCount: -1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.metric)
			if tc.ok && err != nil {
				t.Errorf("unexpected err = %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidMetric) {
				t.Errorf("err = %v, want ErrInvalidMetric", err)
			}
		})
	}
}

func TestNormalizePeriod(t *testing.T) {
	in := time.Date(2025, time.March, 3, 17, 45, 12, 0, time.FixedZone("X", 3*3600))
	got := NormalizePeriod(in)
	want := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("NormalizePeriod = %v, want %v", got, want)
	}
}
