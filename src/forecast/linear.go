package forecast

import (
	"context"
	"math"
	"time"

	"market-dashboard/src/analysis/core"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/models"
)

// z-score of a two-sided 95% interval
const intervalZ = 1.96

// LinearForecaster fits close = intercept + slope × elapsed days by least squares.
type LinearForecaster struct{}

func NewLinearForecaster() *LinearForecaster {
	return &LinearForecaster{}
}

// -----------------------------------------------------------------------------

func (f *LinearForecaster) Fit(ctx context.Context, points []models.MForecastPoint) (interfaces.IForecastModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return nil, helpers.NewForecastError("need at least 2 points to fit a trend", helpers.ErrInsufficientData)
	}

	origin := points[0].Time
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = elapsedDays(origin, p.Time)
		y[i] = p.Value
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			return nil, helpers.NewForecastError("non-finite close in input", nil)
		}
	}
	if x[len(x)-1] == x[0] {
		return nil, helpers.NewForecastError("input spans no time", nil)
	}

	intercept, slope, residualStd := core.LinearRegression(x, y)
	return &linearModel{
		origin:      origin,
		intercept:   intercept,
		slope:       slope,
		residualStd: residualStd,
		fitted:      len(points),
	}, nil
}

// -----------------------------------------------------------------------------

type linearModel struct {
	origin      time.Time
	intercept   float64
	slope       float64
	residualStd float64
	fitted      int
}

func (m *linearModel) Describe() models.MForecastModel {
	return models.MForecastModel{
		Name: "linear_trend",
		Params: map[string]float64{
			"intercept":     m.intercept,
			"slope_per_day": m.slope,
			"residual_std":  m.residualStd,
		},
		FittedPoints: m.fitted,
	}
}

func (m *linearModel) Predict(at []time.Time) []models.MForecastRow {
	rows := make([]models.MForecastRow, len(at))
	half := intervalZ * m.residualStd
	for i, t := range at {
		yhat := m.intercept + m.slope*elapsedDays(m.origin, t)
		rows[i] = models.MForecastRow{
			Time:      t,
			Yhat:      yhat,
			YhatLower: yhat - half,
			YhatUpper: yhat + half,
		}
	}
	return rows
}

func elapsedDays(origin, t time.Time) float64 {
	return t.Sub(origin).Hours() / 24
}
