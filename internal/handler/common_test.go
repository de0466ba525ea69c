package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/venue-staffing/internal/metrics"
	"github.com/iliyamo/venue-staffing/internal/repository"
	"github.com/iliyamo/venue-staffing/internal/schedule"
	"github.com/iliyamo/venue-staffing/internal/store"
	"github.com/iliyamo/venue-staffing/internal/workflow"
)

func TestEngineErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"conflict", repository.ErrConflict, http.StatusConflict},
		{"invalid workflow", workflow.ErrInvalidWorkflow, http.StatusUnprocessableEntity},
		{"unknown step", workflow.ErrUnknownStep, http.StatusNotFound},
		{"dependency unmet", workflow.ErrDependencyUnmet, http.StatusConflict},
		{"shift conflict", schedule.ErrShiftConflict, http.StatusConflict},
		{"invalid window", schedule.ErrInvalidWindow, http.StatusBadRequest},
		{"invalid metric", metrics.ErrInvalidMetric, http.StatusBadRequest},
		{"duplicate period", metrics.ErrDuplicatePeriod, http.StatusConflict},
		{"store unavailable", store.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unrecognized", errors.New("boom"), http.StatusInternalServerError},
	}
	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if err := engineError(c, tt.err); err != nil {
				t.Fatal(err)
			}
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
