package models

import "github.com/guregu/null/v6"

// MBandedSeries is a series with trailing mean/std of typical price and the derived bands.
// Values before index Lookback-1 are null.
type MBandedSeries struct {
	Series    MSeries      `json:"series"`
	Lookback  int          `json:"lookback"`
	NumStdDev float64      `json:"num_std_dev"`
	Mean      []null.Float `json:"mean"`
	StdDev    []null.Float `json:"std_dev"`
	UpperBand []null.Float `json:"upper_band"`
	LowerBand []null.Float `json:"lower_band"`
}

// -----------------------------------------------------------------------------

// MAlignedRow is one surviving timestamp of a subject/benchmark inner join.
type MAlignedRow struct {
	Key                    string     `json:"key"`
	SubjectClose           float64    `json:"subject_close"`
	BenchmarkClose         float64    `json:"benchmark_close"`
	SubjectPercentChange   null.Float `json:"subject_percent_change"`
	BenchmarkPercentChange null.Float `json:"benchmark_percent_change"`
}

// MAlignedComparison holds percent changes relative to the previous surviving row on each side.
type MAlignedComparison struct {
	Subject   string        `json:"subject"`
	Benchmark string        `json:"benchmark"`
	Rows      []MAlignedRow `json:"rows"`
}

// -----------------------------------------------------------------------------

// MSnapshotMetrics are the metric tiles, rounded to 2 decimals.
type MSnapshotMetrics struct {
	CurrentPrice       float64 `json:"current_price"`
	PreviousClose      float64 `json:"previous_close"`
	AbsoluteChange     float64 `json:"absolute_change"`
	PercentChange      float64 `json:"percent_change"`
	DayHigh            float64 `json:"day_high"`
	DayLow             float64 `json:"day_low"`
	CumulativeVolume   int64   `json:"cumulative_volume"`
	LastIntervalVolume int64   `json:"last_interval_volume"`
}

// -----------------------------------------------------------------------------

// MOverlay is an extra indicator line drawn over the close chart.
type MOverlay struct {
	Name   string       `json:"name"`
	Period int          `json:"period"`
	Values []null.Float `json:"values"`
}
