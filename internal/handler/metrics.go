package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/metrics"
	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/repository"
)

// MetricsHandler serves performance metric recording and rollups.
type MetricsHandler struct {
	Metrics *repository.MetricRepo
	Staff   *repository.StaffRepo
}

// NewMetricsHandler constructs a MetricsHandler.
func NewMetricsHandler(m *repository.MetricRepo, s *repository.StaffRepo) *MetricsHandler {
	if m == nil || s == nil {
		panic("nil repository passed to NewMetricsHandler")
	}
	return &MetricsHandler{Metrics: m, Staff: s}
}

type recordMetricReq struct {
	StaffID           uint64    `json:"staff_id"`
	Period            time.Time `json:"period"`
	AttendanceRate    float64   `json:"attendance_rate"`
	Rating            float64   `json:"rating"`
	IncidentCount     int       `json:"incident_count"`
	CommendationCount int       `json:"commendation_count"`
}

// RecordMetric handles POST /v1/metrics.  The period is normalized to
// a UTC date; a second record for the same staff member and period is
// a conflict because history is append-only.
func (h *MetricsHandler) RecordMetric(c echo.Context) error {
	var req recordMetricReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StaffID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff_id required"})
	}
	if req.Period.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "period required"})
	}

	ctx := c.Request().Context()
	if _, err := h.Staff.GetByID(ctx, req.StaffID); err != nil {
		return engineError(c, err)
	}

	m := &model.PerformanceMetric{
		StaffID:           req.StaffID,
		Period:            metrics.NormalizePeriod(req.Period),
		AttendanceRate:    req.AttendanceRate,
		Rating:            req.Rating,
		IncidentCount:     req.IncidentCount,
		CommendationCount: req.CommendationCount,
	}
	if err := metrics.Validate(m); err != nil {
		return engineError(c, err)
	}
	if err := h.Metrics.Create(ctx, m); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// Rollup handles GET /v1/metrics/rollup.  Query parameters: staff_ids
// (comma-separated, required), from and to (RFC 3339, optional; an
// open end defaults to the epoch or now respectively).  An empty
// result set rolls up to zeroed stats, not an error.
func (h *MetricsHandler) Rollup(c echo.Context) error {
	staffIDs, err := parseIDList(c.QueryParam("staff_ids"))
	if err != nil || len(staffIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff_ids query parameter required"})
	}

	from := time.Unix(0, 0).UTC()
	if raw := c.QueryParam("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from timestamp"})
		}
	}
	to := time.Now().UTC()
	if raw := c.QueryParam("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to timestamp"})
		}
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not precede from"})
	}

	records, err := h.Metrics.ListByStaffAndRange(c.Request().Context(), staffIDs, from, to)
	if err != nil {
		return engineError(c, err)
	}
	stats := metrics.Rollup(records)
	return c.JSON(http.StatusOK, echo.Map{
		"staff_ids": staffIDs,
		"from":      from,
		"to":        to,
		"stats":     stats,
	})
}

// parseIDList parses a comma-separated list of positive uint64 values,
// dropping duplicates while preserving order.
func parseIDList(raw string) ([]uint64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]uint64, 0, len(parts))
	seen := make(map[uint64]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseUint(p, 10, 64)
		if err != nil || id == 0 {
			return nil, strconv.ErrSyntax
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
