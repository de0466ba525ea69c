package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/handler"
	"github.com/iliyamo/venue-staffing/internal/middleware"
)

// RegisterSchedule registers zone, shift, staff and metrics endpoints.
// Everything here is OPERATOR-scoped except shift reads, which staff
// may also call to see their own assignments.
func RegisterSchedule(e *echo.Echo, sc *handler.ScheduleHandler, st *handler.StaffHandler, m *handler.MetricsHandler, jwtSecret string) {
	op := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OPERATOR"),
	)

	// ---- Zones ----
	op.POST("/zones", sc.CreateZone)
	op.GET("/zones", sc.ListZones)

	// ---- Shifts ----
	op.POST("/shifts", sc.AssignShift)
	op.POST("/shifts/:id/confirm", sc.ConfirmShift)
	op.POST("/shifts/:id/complete", sc.CompleteShift)
	op.POST("/shifts/:id/cancel", sc.CancelShift)

	// ---- Staff ----
	op.GET("/staff/:id", st.GetStaff)
	op.PATCH("/staff/:id/status", st.UpdateStaffStatus)

	// ---- Metrics ----
	op.POST("/metrics", m.RecordMetric)
	op.GET("/metrics/rollup", m.Rollup)

	// Shift reads are open to both roles.
	rd := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OPERATOR", "STAFF"),
	)
	rd.GET("/shifts/:id", sc.GetShift)
}
