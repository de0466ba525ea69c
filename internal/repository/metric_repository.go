package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/venue-staffing/internal/metrics"
	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/store"
)

// MetricRepo provides append-only access to performance metrics.
// There is deliberately no update or delete path: one row per staff
// member per period, enforced by a unique (staff_id, period) key.
type MetricRepo struct {
	db      *sql.DB
	adapter *store.Adapter
}

// NewMetricRepo returns a MetricRepo bound to the given database and
// store adapter.
func NewMetricRepo(db *sql.DB, adapter *store.Adapter) *MetricRepo {
	return &MetricRepo{db: db, adapter: adapter}
}

const metricColumns = `id, staff_id, period, attendance_rate, rating, incident_count, commendation_count, created_at`

// Create appends a metric record.  A duplicate (staff, period) pair
// reports metrics.ErrDuplicatePeriod; history is never overwritten.
func (r *MetricRepo) Create(ctx context.Context, m *model.PerformanceMetric) error {
	ok, err := r.adapter.Provisioned(ctx, store.TableMetrics)
	if err != nil {
		return err
	}
	if !ok {
		m.ID = r.adapter.SyntheticID()
		return nil
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO performance_metrics (staff_id, period, attendance_rate, rating, incident_count, commendation_count) VALUES (?,?,?,?,?,?)`,
		m.StaffID, m.Period, m.AttendanceRate, m.Rating, m.IncidentCount, m.CommendationCount)
	if err != nil {
		// 1062 is MySQL's duplicate key error.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return metrics.ErrDuplicatePeriod
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListByStaffAndRange returns the records of the given staff members
// with periods inside [from, to], ordered by staff then period.
func (r *MetricRepo) ListByStaffAndRange(ctx context.Context, staffIDs []uint64, from, to time.Time) ([]model.PerformanceMetric, error) {
	ok, err := r.adapter.Provisioned(ctx, store.TableMetrics)
	if err != nil {
		return nil, err
	}
	if !ok {
		var out []model.PerformanceMetric
		for _, m := range store.FallbackMetrics() {
			if containsID(staffIDs, m.StaffID) && !m.Period.Before(from) && !m.Period.After(to) {
				out = append(out, m)
			}
		}
		return out, nil
	}
	if len(staffIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + metricColumns + ` FROM performance_metrics WHERE staff_id IN (`
	args := make([]interface{}, 0, len(staffIDs)+2)
	for i, id := range staffIDs {
		if i > 0 {
			query += ","
		}
		query += "?"
		args = append(args, id)
	}
	query += `) AND period >= ? AND period <= ? ORDER BY staff_id, period`
	args = append(args, from, to)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PerformanceMetric
	for rows.Next() {
		var m model.PerformanceMetric
		if err := rows.Scan(&m.ID, &m.StaffID, &m.Period, &m.AttendanceRate, &m.Rating, &m.IncidentCount, &m.CommendationCount, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
