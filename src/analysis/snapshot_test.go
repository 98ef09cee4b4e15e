package analysis

import (
	"errors"
	"testing"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
)

func intradaySeries() models.MSeries {
	return models.MSeries{
		Ticker:      "AAPL",
		Granularity: models.GranularityIntraday,
		Bars: []models.MBar{
			{Key: "2024-03-01 09:30", Open: 148.9, High: 151.5, Low: 147.0, Close: 149.2, Volume: 1200},
			{Key: "2024-03-01 09:31", Open: 149.2, High: 149.9, Low: 148.1, Close: 148.6, Volume: 800},
			{Key: "2024-03-01 09:32", Open: 148.6, High: 150.4, Low: 148.5, Close: 150.0, Volume: 300},
		},
	}
}

func TestSnapshotExample(t *testing.T) {
	m, err := Snapshot(intradaySeries(), 150.00, 148.50)
	if err != nil {
		t.Fatal(err)
	}
	if m.AbsoluteChange != 1.50 {
		t.Errorf("absolute change = %v, want 1.50", m.AbsoluteChange)
	}
	if m.PercentChange != 1.01 {
		t.Errorf("percent change = %v, want 1.01", m.PercentChange)
	}
}

func TestSnapshotUsesOpenCloseAndPreviousBarVolume(t *testing.T) {
	m, err := Snapshot(intradaySeries(), 150, 148.5)
	if err != nil {
		t.Fatal(err)
	}
	if m.DayHigh != 150.0 {
		t.Errorf("day high = %v, want 150 (bar high fields ignored)", m.DayHigh)
	}
	if m.DayLow != 148.6 {
		t.Errorf("day low = %v, want 148.6", m.DayLow)
	}
	if m.CumulativeVolume != 2300 {
		t.Errorf("cumulative volume = %d, want 2300", m.CumulativeVolume)
	}
	if m.LastIntervalVolume != 800 {
		t.Errorf("last interval volume = %d, want 800", m.LastIntervalVolume)
	}
}

func TestSnapshotInsufficientData(t *testing.T) {
	s := intradaySeries()
	s.Bars = s.Bars[:1]
	if _, err := Snapshot(s, 150, 148.5); !errors.Is(err, helpers.ErrInsufficientData) {
		t.Errorf("got %v, want insufficient data", err)
	}
	if _, err := PreviousCloseFromSeries(s); !errors.Is(err, helpers.ErrInsufficientData) {
		t.Errorf("got %v, want insufficient data", err)
	}
}

func TestPreviousCloseFromSeries(t *testing.T) {
	pc, err := PreviousCloseFromSeries(flatSeries("AAPL", 100, 101, 102, 103, 104))
	if err != nil {
		t.Fatal(err)
	}
	if pc != 103 {
		t.Errorf("previous close = %v, want 103", pc)
	}
}

func TestCurrentPriceFromSeries(t *testing.T) {
	if _, err := CurrentPriceFromSeries(models.MSeries{}); !errors.Is(err, helpers.ErrInsufficientData) {
		t.Errorf("got %v, want insufficient data", err)
	}
	p, _ := CurrentPriceFromSeries(flatSeries("AAPL", 1, 2, 3))
	if p != 3 {
		t.Errorf("current price = %v, want 3", p)
	}
}

func TestSnapshotChangeAgreesWithRoundedPrices(t *testing.T) {
	m, err := Snapshot(intradaySeries(), 1.005, 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.CurrentPrice != 1.01 || m.PreviousClose != 1 || m.AbsoluteChange != 0.01 {
		t.Errorf("tiles = %.2f %.2f %.2f, want 1.01 1.00 0.01", m.CurrentPrice, m.PreviousClose, m.AbsoluteChange)
	}
}
