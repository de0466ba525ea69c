package model

import "time"

// PerformanceMetric is one periodic measurement for a staff member.
// Records are append-only: a new row is written per staff member per
// period and history is never mutated in place.
//
// Fields:
//  ID                – primary key identifier.
//  StaffID           – staff member measured.
//  Period            – first day of the measured period (UTC date).
//  AttendanceRate    – 0.0–1.0 fraction of scheduled shifts attended.
//  Rating            – 0.0–5.0 supervisor rating.
//  IncidentCount     – incidents attributed during the period.
//  CommendationCount – commendations received during the period.
//  CreatedAt         – insertion timestamp.
type PerformanceMetric struct {
	ID                uint64    // performance_metrics.id
	StaffID           uint64    // performance_metrics.staff_id
	Period            time.Time // performance_metrics.period (DATE column)
	AttendanceRate    float64   // performance_metrics.attendance_rate
	Rating            float64   // performance_metrics.rating
	IncidentCount     int       // performance_metrics.incident_count
	CommendationCount int       // performance_metrics.commendation_count
	CreatedAt         time.Time // performance_metrics.created_at
}

// PerformanceStats is a dashboard-ready rollup over a set of metric
// records.  A rollup over an empty set is the zero value, not an
// error; "no data yet" is an expected steady state for new staff.
type PerformanceStats struct {
	RecordCount        int     `json:"record_count"`
	AverageRating      float64 `json:"average_rating"`
	AverageAttendance  float64 `json:"average_attendance"`
	TotalIncidents     int     `json:"total_incidents"`
	TotalCommendations int     `json:"total_commendations"`
}
