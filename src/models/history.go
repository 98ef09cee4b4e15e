package models

import "time"

// MPeriodSpec is the time-window selector: a named window token, or "custom" with a start date (YYYY-MM-DD).
type MPeriodSpec struct {
	Window string `json:"window" yaml:"window"`
	Start  string `json:"start,omitempty" yaml:"start,omitempty"`
}

// Recognized window tokens.
const (
	PeriodOneDay      = "1 day"
	PeriodFiveDays    = "5 days"
	PeriodOneMonth    = "1 month"
	PeriodThreeMonths = "3 months"
	PeriodSixMonths   = "6 months"
	PeriodOneYear     = "1 year"
	PeriodTwoYears    = "2 years"
	PeriodFiveYears   = "5 years"
	PeriodTenYears    = "10 years"
	PeriodYearToDate  = "year-to-date"
	PeriodMax         = "max"
	PeriodCustom      = "custom"
)

// PeriodTokens lists the selector entries in display order.
var PeriodTokens = []string{
	PeriodSixMonths, PeriodOneDay, PeriodFiveDays, PeriodOneMonth, PeriodThreeMonths,
	PeriodOneYear, PeriodTwoYears, PeriodFiveYears, PeriodTenYears, PeriodYearToDate,
	PeriodMax, PeriodCustom,
}

// -----------------------------------------------------------------------------

// MHistoryRequest is what the loader asks the provider for.
// Either Range is set, or Start/End bound an explicit date range.
type MHistoryRequest struct {
	Range       string
	Start       time.Time
	End         time.Time
	Interval    string
	Granularity Granularity
}

// MRawRow is one provider row; nil fields are provider nulls.
type MRawRow struct {
	Timestamp int64
	Open      *float64
	High      *float64
	Low       *float64
	Close     *float64
	Volume    *float64
}

// MRawHistory is the unnormalized provider response for one ticker.
type MRawHistory struct {
	Ticker   string
	Timezone string
	Rows     []MRawRow
}
