package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"market-dashboard/src/analysis"
	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// statusFor maps a dashboard error kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, helpers.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, helpers.ErrEmptyResult):
		return http.StatusNotFound
	case errors.Is(err, helpers.ErrNoOverlap),
		errors.Is(err, helpers.ErrInsufficientData),
		errors.Is(err, helpers.ErrForecastFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, helpers.ErrProvider):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *DashboardServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// -----------------------------------------------------------------------------

// requestFromQuery reads widget inputs from query parameters. Unset numbers stay zero so
// the pipeline applies its defaults.
func requestFromQuery(c *gin.Context) (models.MDashboardRequest, error) {
	req := models.MDashboardRequest{
		Ticker:    c.Query("ticker"),
		Period:    models.MPeriodSpec{Window: c.Query("period"), Start: c.Query("start")},
		Benchmark: c.Query("benchmark"),
		Bands:     queryBool(c, "bands"),
		Compare:   queryBool(c, "compare"),
		Snapshot:  queryBool(c, "snapshot"),
		Forecast:  queryBool(c, "forecast"),
	}
	if req.Period.Window == "" && req.Period.Start != "" {
		req.Period.Window = models.PeriodCustom
	}
	if v := c.Query("overlays"); v != "" {
		req.Overlays = analysis.ParseOverlayList(v)
	}

	var err error
	if req.Lookback, err = queryInt(c, "lookback"); err != nil {
		return req, err
	}
	if req.ForecastWeeks, err = queryInt(c, "weeks"); err != nil {
		return req, err
	}
	if v := c.Query("std"); v != "" {
		std, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, helpers.NewValidationError("invalid std %q", v)
		}
		req.NumStdDev = &std
	}
	return req, nil
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

func queryInt(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, helpers.NewValidationError("invalid %s %q", key, v)
	}
	return n, nil
}
