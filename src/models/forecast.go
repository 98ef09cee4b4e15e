package models

import "time"

// MForecastPoint is one (timestamp, close) input row.
type MForecastPoint struct {
	Time  time.Time `json:"ds"`
	Value float64   `json:"y"`
}

// MForecastRow is one fitted or predicted row.
type MForecastRow struct {
	Time       time.Time `json:"ds"`
	Yhat       float64   `json:"yhat"`
	YhatLower  float64   `json:"yhat_lower"`
	YhatUpper  float64   `json:"yhat_upper"`
	Future     bool      `json:"future"`
	TradingDay bool      `json:"trading_day"`
}

// MForecastModel describes a fitted model.
type MForecastModel struct {
	Name         string             `json:"name"`
	Params       map[string]float64 `json:"params"`
	FittedPoints int                `json:"fitted_points"`
}

type MForecastResult struct {
	Ticker string         `json:"ticker"`
	Weeks  int            `json:"weeks"`
	Model  MForecastModel `json:"model"`
	Rows   []MForecastRow `json:"rows"`
}
