package forecast

import (
	"context"
	"errors"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"
)

// Adapter feeds a loaded series to a pluggable forecaster and shapes its output for the dashboard.
type Adapter struct {
	Forecaster interfaces.IForecaster
	MaxWeeks   int
}

func NewAdapter(f interfaces.IForecaster, maxWeeks int) *Adapter {
	if f == nil {
		f = NewLinearForecaster()
	}
	return &Adapter{Forecaster: f, MaxWeeks: maxWeeks}
}

// -----------------------------------------------------------------------------

// Points restricts a series to its (time, close) columns.
func Points(series models.MSeries) []models.MForecastPoint {
	pts := make([]models.MForecastPoint, len(series.Bars))
	for i, b := range series.Bars {
		pts[i] = models.MForecastPoint{Time: b.Time, Value: b.Close}
	}
	return pts
}

// Horizon returns the history timestamps followed by one timestamp per calendar day
// for weeks×7 days after the last bar.
func Horizon(series models.MSeries, weeks int) []time.Time {
	out := make([]time.Time, 0, series.Len()+weeks*7)
	for _, b := range series.Bars {
		out = append(out, b.Time)
	}
	last, ok := series.Last()
	if !ok {
		return out
	}
	for d := 1; d <= weeks*7; d++ {
		out = append(out, last.Time.AddDate(0, 0, d))
	}
	return out
}

// -----------------------------------------------------------------------------

// Run fits the forecaster on series and predicts across history plus weeks×7 days.
// Saturday and Sunday rows are dropped; the remaining rows are flagged with cal's
// trading-day answer (exchange holidays stay in, flagged false).
func (a *Adapter) Run(ctx context.Context, series models.MSeries, weeks int, cal interfaces.ITradingCalendar) (models.MForecastResult, error) {
	if weeks < 1 {
		return models.MForecastResult{}, helpers.NewValidationError("forecast weeks must be at least 1, got %d", weeks)
	}
	if a.MaxWeeks > 0 && weeks > a.MaxWeeks {
		return models.MForecastResult{}, helpers.NewValidationError("forecast weeks must be at most %d, got %d", a.MaxWeeks, weeks)
	}

	model, err := a.Forecaster.Fit(ctx, Points(series))
	if err != nil {
		var fe *helpers.ForecastError
		if errors.As(err, &fe) {
			return models.MForecastResult{}, err
		}
		return models.MForecastResult{}, helpers.NewForecastError("fit failed for "+series.Ticker, err)
	}

	n := series.Len()
	predicted := model.Predict(Horizon(series, weeks))
	rows := make([]models.MForecastRow, 0, len(predicted))
	for i, row := range predicted {
		wd := row.Time.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			continue
		}
		row.Future = i >= n
		row.TradingDay = true
		if cal != nil {
			row.TradingDay = cal.IsTradingDay(row.Time)
		}
		rows = append(rows, row)
	}

	return models.MForecastResult{
		Ticker: series.Ticker,
		Weeks:  weeks,
		Model:  model.Describe(),
		Rows:   rows,
	}, nil
}
