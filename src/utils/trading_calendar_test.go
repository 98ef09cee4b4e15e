package utils

import (
	"io"
	"testing"
	"time"

	"market-dashboard/src/logger"
)

func TestMICForTicker(t *testing.T) {
	cases := map[string]string{
		"AAPL":    "xnys",
		"^GSPC":   "xnys",
		"SHOP.TO": "xtse",
		"7203.T":  "xtks",
		"VOD.L":   "xlon",
		"sap.de":  "xfra",
		"0700.HK": "xhkg",
	}
	for ticker, want := range cases {
		if got := MICForTicker(ticker); got != want {
			t.Errorf("MICForTicker(%q) = %q, want %q", ticker, got, want)
		}
	}
}

func TestWeekdayCalendar(t *testing.T) {
	cal := NewWeekdayCalendar()
	ny := cal.Timezone

	sat := time.Date(2024, 3, 2, 12, 0, 0, 0, ny)
	mon := time.Date(2024, 3, 4, 12, 0, 0, 0, ny)
	if cal.IsTradingDay(sat) {
		t.Error("Saturday should not be a trading day")
	}
	if !cal.IsTradingDay(mon) {
		t.Error("Monday should be a trading day")
	}

	cases := []struct {
		at   time.Time
		open bool
	}{
		{time.Date(2024, 3, 4, 9, 29, 0, 0, ny), false},
		{time.Date(2024, 3, 4, 9, 30, 0, 0, ny), true},
		{time.Date(2024, 3, 4, 15, 59, 0, 0, ny), true},
		{time.Date(2024, 3, 4, 16, 0, 0, 0, ny), false},
		{time.Date(2024, 3, 2, 11, 0, 0, 0, ny), false},
	}
	for _, c := range cases {
		if got := cal.IsOpenAt(c.at); got != c.open {
			t.Errorf("IsOpenAt(%s) = %v, want %v", c.at, got, c.open)
		}
	}
}

func TestMarketSchedulerCachesPerExchange(t *testing.T) {
	ms := NewMarketScheduler(logger.NewLoggerTo(io.Discard, "ERROR", "test"))
	loads := 0
	ms.loader = func(string) *TradingCalendar {
		loads++
		return NewWeekdayCalendar()
	}
	ms.Now = func() time.Time { return time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC) }

	ms.CalendarFor("AAPL")
	ms.CalendarFor("MSFT")
	ms.CalendarFor("^GSPC")
	if loads != 1 {
		t.Errorf("loaded %d calendars for one exchange, want 1", loads)
	}
	ms.CalendarFor("VOD.L")
	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}

	// 15:00 UTC is 10:00 in New York
	if !ms.MarketOpen("AAPL") {
		t.Error("market should be open")
	}
	if !ms.AnyMarketOpen("VOD.L", "AAPL") {
		t.Error("AnyMarketOpen should be true")
	}
}
