package analysis

import (
	"sort"
	"strings"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/guregu/null/v6"
	talib "github.com/markcheno/go-talib"
)

// Dashboard defaults for the band overlay.
const (
	DefaultLookback  = 10
	DefaultNumStdDev = 2.0
	RSIPeriod        = 14
)

// -----------------------------------------------------------------------------

// ParseOverlayList splits a comma-separated overlay list ("SMA, ema") into trimmed lowercase names.
func ParseOverlayList(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.ToLower(strings.TrimSpace(o)); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// ComputeBands derives Bollinger-style bands over the typical price (high+low+close)/3:
// trailing mean ± numStdDev × trailing sample std over lookback bars.
// The first lookback-1 values are null.
func ComputeBands(series models.MSeries, lookback int, numStdDev float64) (models.MBandedSeries, error) {
	if lookback < 1 {
		return models.MBandedSeries{}, helpers.NewValidationError("lookback must be at least 1, got %d", lookback)
	}
	if numStdDev < 0 {
		return models.MBandedSeries{}, helpers.NewValidationError("std dev multiplier cannot be negative, got %v", numStdDev)
	}

	means, stds, ok := core.RollingMeanStd(series.TypicalPrices(), lookback)

	n := series.Len()
	out := models.MBandedSeries{
		Series:    series,
		Lookback:  lookback,
		NumStdDev: numStdDev,
		Mean:      make([]null.Float, n),
		StdDev:    make([]null.Float, n),
		UpperBand: make([]null.Float, n),
		LowerBand: make([]null.Float, n),
	}
	for i := 0; i < n; i++ {
		if !ok[i] {
			continue
		}
		out.Mean[i] = null.FloatFrom(means[i])
		out.StdDev[i] = null.FloatFrom(stds[i])
		out.UpperBand[i] = null.FloatFrom(means[i] + numStdDev*stds[i])
		out.LowerBand[i] = null.FloatFrom(means[i] - numStdDev*stds[i])
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// ComputeOverlays returns the requested close-price overlays in name order.
// sma and ema use period; rsi always uses RSIPeriod.
func ComputeOverlays(series models.MSeries, names []string, period int) ([]models.MOverlay, error) {
	if period < 1 {
		return nil, helpers.NewValidationError("overlay period must be at least 1, got %d", period)
	}

	unique := make(map[string]struct{}, len(names))
	for _, n := range names {
		unique[n] = struct{}{}
	}
	sorted := make([]string, 0, len(unique))
	for n := range unique {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	closes := series.Closes()
	var out []models.MOverlay
	for _, name := range sorted {
		var ov models.MOverlay
		switch name {
		case "sma":
			ov = models.MOverlay{Name: name, Period: period}
			ov.Values = leadingNull(closes, period-1, func() []float64 { return talib.Sma(closes, period) })
		case "ema":
			ov = models.MOverlay{Name: name, Period: period}
			ov.Values = leadingNull(closes, period-1, func() []float64 { return talib.Ema(closes, period) })
		case "rsi":
			ov = models.MOverlay{Name: name, Period: RSIPeriod}
			ov.Values = leadingNull(closes, RSIPeriod, func() []float64 { return talib.Rsi(closes, RSIPeriod) })
		default:
			return nil, helpers.NewValidationError("unknown overlay %q", name)
		}
		out = append(out, ov)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// leadingNull runs calc only when there is enough history and nulls its warm-up values.
func leadingNull(closes []float64, warmup int, calc func() []float64) []null.Float {
	values := make([]null.Float, len(closes))
	if len(closes) <= warmup {
		return values
	}
	raw := calc()
	for i := warmup; i < len(raw) && i < len(values); i++ {
		values[i] = null.FloatFrom(raw[i])
	}
	return values
}
