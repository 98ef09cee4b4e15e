package utils

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// ticker suffix -> exchange MIC (ISO 10383) as understood by scmhub/calendar.
// Longer suffixes are checked first so ".TO" never matches ".T".
var suffixMICs = []struct {
	suffix string
	mic    string
}{
	{".PA", "xpar"}, {".DE", "xfra"}, {".AS", "xams"}, {".BR", "xbru"},
	{".MI", "xmil"}, {".MC", "xmad"}, {".ST", "xsto"}, {".CO", "xcse"},
	{".HE", "xhel"}, {".VI", "xwbo"}, {".SW", "xswx"}, {".TO", "xtse"},
	{".HK", "xhkg"}, {".AX", "xasx"}, {".KS", "xkrx"}, {".TW", "xtai"},
	{".SS", "xshg"}, {".SZ", "xshe"}, {".L", "xlon"}, {".V", "xtsx"},
	{".T", "xtks"},
}

const defaultMIC = "xnys"

// -----------------------------------------------------------------------------

// TradingCalendar answers trading-day and open-market questions for one exchange.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// MICForTicker maps a ticker's exchange suffix to a MIC; bare tickers and indices are NYSE.
func MICForTicker(ticker string) string {
	t := strings.ToUpper(ticker)
	for _, s := range suffixMICs {
		if strings.HasSuffix(t, s.suffix) {
			return s.mic
		}
	}
	return defaultMIC
}

// -----------------------------------------------------------------------------

// GetCalendar loads the exchange calendar for ticker, falling back to NYSE and then
// to a plain weekday calendar in New York time.
func GetCalendar(ticker string) *TradingCalendar {
	mic := MICForTicker(ticker)

	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != defaultMIC {
		mic = defaultMIC
		cal = calendar.GetCalendar(mic)
	}
	if cal == nil {
		log.Printf("WARNING: no exchange calendar for %s, using Mon-Fri 09:30-16:00 New York", ticker)
		return NewWeekdayCalendar()
	}
	return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// NewWeekdayCalendar treats every Monday-Friday as a session from 09:30 to 16:00 New York time.
func NewWeekdayCalendar() *TradingCalendar {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &TradingCalendar{MIC: defaultMIC, Fallback: true, Timezone: loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}
	if tc.Fallback {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenAt reports whether the exchange is in session at t.
func (tc *TradingCalendar) IsOpenAt(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}
	if !tc.Fallback {
		return tc.Calendar.IsOpen(t)
	}
	if !tc.IsTradingDay(t) {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}
