package utils

import (
	"sync"
	"time"

	"market-dashboard/src/logger"
)

// MarketScheduler hands out exchange calendars per ticker, loading each MIC once.
type MarketScheduler struct {
	Logger *logger.Logger
	Now    func() time.Time

	mu        sync.RWMutex
	calendars map[string]*TradingCalendar
	loader    func(ticker string) *TradingCalendar
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(l *logger.Logger) *MarketScheduler {
	return &MarketScheduler{
		Logger:    l,
		Now:       time.Now,
		calendars: make(map[string]*TradingCalendar),
		loader:    GetCalendar,
	}
}

// -----------------------------------------------------------------------------

// CalendarFor returns the (cached) calendar of the exchange ticker trades on.
func (ms *MarketScheduler) CalendarFor(ticker string) *TradingCalendar {
	mic := MICForTicker(ticker)

	ms.mu.RLock()
	cal, ok := ms.calendars[mic]
	ms.mu.RUnlock()
	if ok {
		return cal
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if cal, ok := ms.calendars[mic]; ok {
		return cal
	}
	cal = ms.loader(ticker)
	ms.calendars[mic] = cal
	ms.Logger.Debug("Loaded %s calendar for %s (fallback=%v)", cal.MIC, ticker, cal.Fallback)
	return cal
}

// -----------------------------------------------------------------------------

// MarketOpen reports whether ticker's exchange is in session right now.
func (ms *MarketScheduler) MarketOpen(ticker string) bool {
	return ms.CalendarFor(ticker).IsOpenAt(ms.Now().UTC())
}

// AnyMarketOpen reports whether any of tickers' exchanges is in session.
func (ms *MarketScheduler) AnyMarketOpen(tickers ...string) bool {
	for _, t := range tickers {
		if ms.MarketOpen(t) {
			return true
		}
	}
	return false
}
