package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/repository"
	"github.com/iliyamo/venue-staffing/internal/schedule"
)

// ScheduleHandler serves zone management and shift allocation.  All
// conflict and capacity decisions live in the schedule.Allocator; the
// handler only binds requests and maps errors.
type ScheduleHandler struct {
	Allocator *schedule.Allocator
	Zones     *repository.ZoneRepo
	Shifts    *repository.ShiftRepo
	Staff     *repository.StaffRepo
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(a *schedule.Allocator, z *repository.ZoneRepo, sh *repository.ShiftRepo, s *repository.StaffRepo) *ScheduleHandler {
	if a == nil || z == nil || sh == nil || s == nil {
		panic("nil dependency passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Allocator: a, Zones: z, Shifts: sh, Staff: s}
}

type createZoneReq struct {
	EventID            uint64 `json:"event_id"`
	Name               string `json:"name"`
	Capacity           int    `json:"capacity"`
	RequiredStaffCount int    `json:"required_staff_count"`
}

// CreateZone handles POST /v1/zones.
func (h *ScheduleHandler) CreateZone(c echo.Context) error {
	var req createZoneReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.EventID == 0 || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and name required"})
	}
	z := &model.Zone{
		EventID:            req.EventID,
		Name:               req.Name,
		Capacity:           req.Capacity,
		RequiredStaffCount: req.RequiredStaffCount,
	}
	if err := h.Allocator.CreateZone(c.Request().Context(), z); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, z)
}

// ListZones handles GET /v1/zones?event_id=N.
func (h *ScheduleHandler) ListZones(c echo.Context) error {
	eventID, err := parseQueryID(c.QueryParam("event_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id query parameter required"})
	}
	zones, err := h.Zones.ListByEvent(c.Request().Context(), eventID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"zones": zones})
}

type assignShiftReq struct {
	StaffID      uint64    `json:"staff_id"`
	ZoneID       *uint64   `json:"zone_id"`
	Role         string    `json:"role"`
	StartsAt     time.Time `json:"starts_at"`
	EndsAt       time.Time `json:"ends_at"`
	BreakMinutes int       `json:"break_minutes"`
}

// AssignShift handles POST /v1/shifts.  It verifies the staff member
// exists and is active, then delegates to the allocator which
// enforces non-overlap and zone capacity atomically.
func (h *ScheduleHandler) AssignShift(c echo.Context) error {
	var req assignShiftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StaffID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "staff_id required"})
	}

	ctx := c.Request().Context()
	member, err := h.Staff.GetByID(ctx, req.StaffID)
	if err != nil {
		return engineError(c, err)
	}
	if member.Status != model.StaffActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "staff member is not active"})
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = member.Role
	}

	shift, err := h.Allocator.AssignShift(ctx, schedule.AssignRequest{
		StaffID:      req.StaffID,
		ZoneID:       req.ZoneID,
		Role:         role,
		StartsAt:     req.StartsAt.UTC(),
		EndsAt:       req.EndsAt.UTC(),
		BreakMinutes: req.BreakMinutes,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, shift)
}

// GetShift handles GET /v1/shifts/:id.
func (h *ScheduleHandler) GetShift(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shift id"})
	}
	shift, err := h.Shifts.Get(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, shift)
}

// ConfirmShift handles POST /v1/shifts/:id/confirm.
func (h *ScheduleHandler) ConfirmShift(c echo.Context) error {
	return h.transition(c, h.Allocator.ConfirmShift)
}

// CompleteShift handles POST /v1/shifts/:id/complete.
func (h *ScheduleHandler) CompleteShift(c echo.Context) error {
	return h.transition(c, h.Allocator.CompleteShift)
}

// CancelShift handles POST /v1/shifts/:id/cancel.  Cancelling frees
// the time window and releases the zone slot; repeating the call is a
// no-op.
func (h *ScheduleHandler) CancelShift(c echo.Context) error {
	return h.transition(c, h.Allocator.CancelShift)
}

func (h *ScheduleHandler) transition(c echo.Context, op func(ctx context.Context, shiftID uint64) (*model.Shift, error)) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shift id"})
	}
	shift, err := op(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, shift)
}

// parseQueryID parses a positive uint64 query parameter value.
func parseQueryID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
