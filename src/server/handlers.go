package server

import (
	"bytes"
	"image/png"
	"net/http"

	"market-dashboard/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Meta
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"provider":    s.Dashboard.Provider.Name(),
		"connections": s.connections.Load(),
	})
}

func (s *DashboardServer) getPeriods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"periods": models.PeriodTokens,
		"default": s.Dashboard.Settings.DefaultPeriod,
	})
}

func (s *DashboardServer) getConfig(c *gin.Context) {
	d := s.Dashboard.Settings
	c.JSON(http.StatusOK, gin.H{
		"default_ticker":     d.DefaultTicker,
		"default_period":     d.DefaultPeriod,
		"benchmark":          d.Benchmark,
		"band_lookback":      d.BandLookback,
		"band_std_dev":       d.BandStdDev,
		"forecast_weeks_max": d.ForecastWeeksMax,
		"overlays":           []string{"sma", "ema", "rsi"},
	})
}

// -----------------------------------------------------------------------------
// Full render
// -----------------------------------------------------------------------------

func (s *DashboardServer) getDashboard(c *gin.Context) {
	req, err := requestFromQuery(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.render(c, req)
}

func (s *DashboardServer) postDashboard(c *gin.Context) {
	var req models.MDashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	s.render(c, req)
}

func (s *DashboardServer) render(c *gin.Context, req models.MDashboardRequest) {
	resp, err := s.Dashboard.Render(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------
// Stages
// -----------------------------------------------------------------------------

// loadSeries normalizes the query and loads the subject series.
func (s *DashboardServer) loadSeries(c *gin.Context) (models.MDashboardRequest, models.MSeries, bool) {
	req, err := requestFromQuery(c)
	if err == nil {
		req, err = s.Dashboard.Normalize(req)
	}
	if err != nil {
		s.fail(c, err)
		return req, models.MSeries{}, false
	}
	series, err := s.Dashboard.Series(c.Request.Context(), req.Ticker, req.Period)
	if err != nil {
		s.fail(c, err)
		return req, series, false
	}
	return req, series, true
}

func (s *DashboardServer) getSeries(c *gin.Context) {
	if _, series, ok := s.loadSeries(c); ok {
		c.JSON(http.StatusOK, series)
	}
}

func (s *DashboardServer) getBands(c *gin.Context) {
	req, series, ok := s.loadSeries(c)
	if !ok {
		return
	}
	bands, overlays, err := s.Dashboard.Bands(series, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bands": bands, "overlays": overlays})
}

func (s *DashboardServer) getComparison(c *gin.Context) {
	req, series, ok := s.loadSeries(c)
	if !ok {
		return
	}
	benchmark, err := s.Dashboard.Series(c.Request.Context(), req.Benchmark, req.Period)
	if err != nil {
		s.fail(c, err)
		return
	}
	cmp, err := s.Dashboard.Comparison(series, benchmark)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *DashboardServer) getSnapshot(c *gin.Context) {
	req, err := requestFromQuery(c)
	if err == nil {
		req, err = s.Dashboard.Normalize(req)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	snap, err := s.Dashboard.Snapshot(c.Request.Context(), req.Ticker)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap, "market_open": s.Dashboard.MarketOpen(req.Ticker)})
}

func (s *DashboardServer) getForecast(c *gin.Context) {
	req, series, ok := s.loadSeries(c)
	if !ok {
		return
	}
	fc, err := s.Dashboard.RunForecast(c.Request.Context(), series, req.ForecastWeeks)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fc)
}

func (s *DashboardServer) getProfile(c *gin.Context) {
	req, err := requestFromQuery(c)
	if err == nil {
		req, err = s.Dashboard.Normalize(req)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	profile, err := s.Dashboard.Profile(c.Request.Context(), req.Ticker)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// -----------------------------------------------------------------------------

// getLogo re-encodes the company logo as PNG. Any failure along the way is a 404.
func (s *DashboardServer) getLogo(c *gin.Context) {
	noLogo := func() {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"logo": "no logo available"})
	}

	req, err := s.Dashboard.Normalize(models.MDashboardRequest{Ticker: c.Param("ticker")})
	if err != nil {
		s.fail(c, err)
		return
	}
	profile, err := s.Dashboard.Profile(c.Request.Context(), req.Ticker)
	if err != nil || !profile.LogoURL.Present || s.Images == nil {
		noLogo()
		return
	}
	img, _, err := s.Images.FetchImage(c.Request.Context(), profile.LogoURL.Value)
	if err != nil {
		s.Logger.Debug("Logo for %s unavailable: %v", req.Ticker, err)
		noLogo()
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		noLogo()
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
