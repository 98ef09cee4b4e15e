package models

import "time"

// MDashboardRequest is one set of widget inputs.
type MDashboardRequest struct {
	Ticker        string      `json:"ticker"`
	Period        MPeriodSpec `json:"period"`
	Bands         bool        `json:"bands"`
	Lookback      int         `json:"lookback,omitempty"`
	NumStdDev     *float64    `json:"num_std_dev,omitempty"` // nil means the configured default; 0 is a valid width
	Overlays      []string    `json:"overlays,omitempty"`
	Compare       bool        `json:"compare"`
	Benchmark     string      `json:"benchmark,omitempty"`
	Snapshot      bool        `json:"snapshot"`
	Forecast      bool        `json:"forecast"`
	ForecastWeeks int         `json:"forecast_weeks,omitempty"`
}

// MDashboardResponse is everything the presentation layer needs for one render cycle.
type MDashboardResponse struct {
	Ticker     string              `json:"ticker"`
	Period     MPeriodSpec         `json:"period"`
	Profile    *MQuoteMetadata     `json:"profile,omitempty"`
	Series     *MSeries            `json:"series,omitempty"`
	Bands      *MBandedSeries      `json:"bands,omitempty"`
	Overlays   []MOverlay          `json:"overlays,omitempty"`
	Comparison *MAlignedComparison `json:"comparison,omitempty"`
	Snapshot   *MSnapshotMetrics   `json:"snapshot,omitempty"`
	Forecast   *MForecastResult    `json:"forecast,omitempty"`
	MarketOpen bool                `json:"market_open"`
	Warnings   []string            `json:"warnings,omitempty"`
	RenderedAt time.Time           `json:"rendered_at"`
}

// -----------------------------------------------------------------------------

// MSessionEvent is a widget change sent over the websocket session.
// Only the fields relevant to Event are read.
type MSessionEvent struct {
	Event         string      `json:"event"`
	Ticker        string      `json:"ticker,omitempty"`
	Period        MPeriodSpec `json:"period,omitempty"`
	Enabled       *bool       `json:"enabled,omitempty"`
	Lookback      int         `json:"lookback,omitempty"`
	NumStdDev     *float64    `json:"num_std_dev,omitempty"`
	Overlays      []string    `json:"overlays,omitempty"`
	Benchmark     string      `json:"benchmark,omitempty"`
	ForecastWeeks int         `json:"forecast_weeks,omitempty"`
}

// MSessionReply is the partial response for one event.
type MSessionReply struct {
	Event string              `json:"event"`
	Data  *MDashboardResponse `json:"data,omitempty"`
	Error string              `json:"error,omitempty"`
}

// -----------------------------------------------------------------------------

// MRenderRecord is one journal row written after a completed render.
type MRenderRecord struct {
	Ticker     string    `json:"ticker"`
	Period     string    `json:"period"`
	Rows       int       `json:"rows"`
	Bands      bool      `json:"bands"`
	Comparison bool      `json:"comparison"`
	Forecast   bool      `json:"forecast"`
	Warnings   int       `json:"warnings"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	RenderedAt time.Time `json:"rendered_at"`
}
