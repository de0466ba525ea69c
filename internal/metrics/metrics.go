// Package metrics rolls operational signals up into per-staff
// performance statistics.  Metric records are append-only: one row per
// staff member per period, never mutated in place.
package metrics

import (
	"errors"
	"time"

	"github.com/iliyamo/venue-staffing/internal/model"
)

var (
	// ErrDuplicatePeriod is returned when a metric already exists for
	// the staff member and period; history is never overwritten.
	ErrDuplicatePeriod = errors.New("metrics: record already exists for this period")

	// ErrInvalidMetric is returned for measurements outside their
	// documented ranges.
	ErrInvalidMetric = errors.New("metrics: measurement out of range")
)

// Validate checks a metric record's measurements before insertion.
// AttendanceRate lives in [0, 1], Rating in [0, 5] and the counters
// must be non-negative.
func Validate(m *model.PerformanceMetric) error {
	if m.AttendanceRate < 0 || m.AttendanceRate > 1 {
		return ErrInvalidMetric
	}
	if m.Rating < 0 || m.Rating > 5 {
		return ErrInvalidMetric
	}
	if m.IncidentCount < 0 || m.CommendationCount < 0 {
		return ErrInvalidMetric
	}
	return nil
}

// NormalizePeriod truncates a period timestamp to its UTC date so that
// the one-record-per-period uniqueness check compares calendar days,
// not instants.
func NormalizePeriod(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Rollup aggregates the given records into dashboard-ready stats:
// averages for rating and attendance, sums for incidents and
// commendations.  An empty record set returns zeroed stats rather
// than an error; "no data yet" is the normal state of a fresh
// deployment.
func Rollup(records []model.PerformanceMetric) model.PerformanceStats {
	var stats model.PerformanceStats
	if len(records) == 0 {
		return stats
	}
	var ratingSum, attendanceSum float64
	for _, r := range records {
		ratingSum += r.Rating
		attendanceSum += r.AttendanceRate
		stats.TotalIncidents += r.IncidentCount
		stats.TotalCommendations += r.CommendationCount
	}
	stats.RecordCount = len(records)
	stats.AverageRating = ratingSum / float64(len(records))
	stats.AverageAttendance = attendanceSum / float64(len(records))
	return stats
}
