package models

import "time"

// Granularity is the sampling resolution of a series.
type Granularity string

const (
	GranularityIntraday Granularity = "intraday"
	GranularityDaily    Granularity = "daily"
)

// Key layouts for the uniform date/time column.
const (
	IntradayKeyLayout = "2006-01-02 15:04"
	DailyKeyLayout    = "2006-01-02"
)

// -----------------------------------------------------------------------------

// MBar is one OHLCV observation. Key is the normalized date (or date+minute) column.
type MBar struct {
	Key    string    `json:"key"`
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// TypicalPrice is (high+low+close)/3.
func (b MBar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// -----------------------------------------------------------------------------

// MSeries is the ordered bar sequence for one ticker over one requested window.
// Keys are strictly increasing and unique. A series is never mutated after the loader returns it.
type MSeries struct {
	Ticker      string      `json:"ticker"`
	Granularity Granularity `json:"granularity"`
	Timezone    string      `json:"timezone"`
	Bars        []MBar      `json:"bars"`
}

// -----------------------------------------------------------------------------

func (s MSeries) Len() int {
	return len(s.Bars)
}

// -----------------------------------------------------------------------------

func (s MSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// -----------------------------------------------------------------------------

func (s MSeries) TypicalPrices() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.TypicalPrice()
	}
	return out
}

// -----------------------------------------------------------------------------

// Last returns the most recent bar.
func (s MSeries) Last() (MBar, bool) {
	if len(s.Bars) == 0 {
		return MBar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
