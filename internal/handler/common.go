// Package handler implements the HTTP surface of the staffing
// lifecycle engine on top of Echo.  Handlers bind and validate
// requests, delegate domain decisions to the engine packages and map
// sentinel errors onto HTTP status codes.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/metrics"
	"github.com/iliyamo/venue-staffing/internal/repository"
	"github.com/iliyamo/venue-staffing/internal/schedule"
	"github.com/iliyamo/venue-staffing/internal/store"
	"github.com/iliyamo/venue-staffing/internal/workflow"
)

// getUserID extracts the user_id placed in context by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as a positive uint64.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// engineError translates sentinel errors from the engine and
// repository layers into JSON error responses.  Anything unrecognized
// becomes a 500.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	case errors.Is(err, workflow.ErrInvalidWorkflow):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrUnknownStep):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, workflow.ErrDependencyUnmet),
		errors.Is(err, workflow.ErrIncompleteWorkflow),
		errors.Is(err, workflow.ErrTerminalStage):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrShiftConflict),
		errors.Is(err, schedule.ErrZoneCapacityExceeded),
		errors.Is(err, schedule.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, schedule.ErrInvalidWindow),
		errors.Is(err, schedule.ErrInvalidZone),
		errors.Is(err, metrics.ErrInvalidMetric):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, metrics.ErrDuplicatePeriod):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, store.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "backing store unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
