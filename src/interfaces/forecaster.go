package interfaces

import (
	"context"
	"time"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IForecaster is a pluggable forecasting capability.
// -----------------------------------------------------------------------------

type IForecaster interface {

	// Fit trains a model on (timestamp, close) points.
	Fit(ctx context.Context, points []models.MForecastPoint) (IForecastModel, error)
}

// IForecastModel is a fitted model handle.
type IForecastModel interface {

	// Describe returns the model name and fitted parameters.
	Describe() models.MForecastModel

	// Predict returns yhat with its interval at each timestamp.
	Predict(at []time.Time) []models.MForecastRow
}

// ITradingCalendar tells trading days from exchange holidays and weekends.
type ITradingCalendar interface {
	IsTradingDay(date time.Time) bool
}
