package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/model"
	"github.com/iliyamo/venue-staffing/internal/repository"
)

// StaffHandler serves staff member lookups and HR status changes.
type StaffHandler struct {
	Staff *repository.StaffRepo
}

// NewStaffHandler constructs a StaffHandler.
func NewStaffHandler(s *repository.StaffRepo) *StaffHandler {
	if s == nil {
		panic("nil repository passed to NewStaffHandler")
	}
	return &StaffHandler{Staff: s}
}

// GetStaff handles GET /v1/staff/:id.
func (h *StaffHandler) GetStaff(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid staff id"})
	}
	member, err := h.Staff.GetByID(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, member)
}

// UpdateStaffStatus handles PATCH /v1/staff/:id/status.  Staff rows
// are never deleted; HR actions only move the status between ACTIVE,
// ON_LEAVE and TERMINATED.
func (h *StaffHandler) UpdateStaffStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid staff id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.StaffStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	switch status {
	case model.StaffActive, model.StaffOnLeave, model.StaffTerminated:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	if err := h.Staff.UpdateStatus(c.Request().Context(), id, status); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}
