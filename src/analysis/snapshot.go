package analysis

import (
	"math"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

// Snapshot derives the metric tiles from the latest intraday series.
// Day high/low come from open/close only, and the last-interval volume is the
// second-to-last bar because the newest bar may still be forming.
func Snapshot(intraday models.MSeries, currentPrice, previousClose float64) (models.MSnapshotMetrics, error) {
	if intraday.Len() < 2 {
		return models.MSnapshotMetrics{}, helpers.NewInsufficientDataError("snapshot needs at least 2 bars")
	}
	if previousClose == 0 {
		return models.MSnapshotMetrics{}, helpers.NewValidationError("previous close cannot be zero")
	}

	dayHigh := math.Inf(-1)
	dayLow := math.Inf(1)
	var cumulative int64
	for _, b := range intraday.Bars {
		dayHigh = math.Max(dayHigh, core.MaxOpenClose(b.Open, b.Close))
		dayLow = math.Min(dayLow, core.MinOpenClose(b.Open, b.Close))
		cumulative += b.Volume
	}

	pctChange, _ := core.CalculateChangePercent(currentPrice, previousClose)

	return models.MSnapshotMetrics{
		CurrentPrice:       core.Round2(currentPrice),
		PreviousClose:      core.Round2(previousClose),
		AbsoluteChange:     core.ChangeRound2(currentPrice, previousClose),
		PercentChange:      core.Round2(pctChange),
		DayHigh:            core.Round2(dayHigh),
		DayLow:             core.Round2(dayLow),
		CumulativeVolume:   cumulative,
		LastIntervalVolume: intraday.Bars[intraday.Len()-2].Volume,
	}, nil
}

// -----------------------------------------------------------------------------

// PreviousCloseFromSeries is the close of the second-to-last bar of a short trailing window.
func PreviousCloseFromSeries(series models.MSeries) (float64, error) {
	if series.Len() < 2 {
		return 0, helpers.NewInsufficientDataError("previous close needs at least 2 bars")
	}
	return series.Bars[series.Len()-2].Close, nil
}

// -----------------------------------------------------------------------------

// CurrentPriceFromSeries falls back to the last close when the quote has no live price.
func CurrentPriceFromSeries(series models.MSeries) (float64, error) {
	last, ok := series.Last()
	if !ok {
		return 0, helpers.NewInsufficientDataError("current price needs at least 1 bar")
	}
	return last.Close, nil
}
