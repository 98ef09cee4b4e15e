package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/storage"
)

type fakeProvider struct {
	mu      sync.Mutex
	daily   map[string][]float64
	start   map[string]time.Time
	quotes  map[string]models.MQuoteMetadata
	history int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) FetchHistory(_ context.Context, ticker string, req models.MHistoryRequest) (models.MRawHistory, error) {
	p.mu.Lock()
	p.history++
	p.mu.Unlock()

	out := models.MRawHistory{Ticker: ticker, Timezone: "America/New_York"}
	closes, ok := p.daily[ticker]
	if !ok {
		return out, nil
	}
	if req.Interval == "1m" {
		base := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
		for i, v := range []float64{149.0, 149.5, 150.2, 149.8} {
			out.Rows = append(out.Rows, row(base.Add(time.Duration(i)*time.Minute), v, float64(100*(i+1))))
		}
		return out, nil
	}
	day := p.start[ticker]
	if day.IsZero() {
		day = time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	}
	for _, c := range closes {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
		out.Rows = append(out.Rows, row(day, c, 1000))
		day = day.AddDate(0, 0, 1)
	}
	return out, nil
}

func (p *fakeProvider) FetchQuoteMetadata(_ context.Context, ticker string) (models.MQuoteMetadata, error) {
	if q, ok := p.quotes[ticker]; ok {
		return q, nil
	}
	if _, ok := p.daily[ticker]; !ok {
		return models.MQuoteMetadata{}, helpers.NewEmptyResultError(ticker)
	}
	return models.MQuoteMetadata{
		Ticker:        ticker,
		ShortName:     models.Present(ticker + " Corp"),
		CurrentPrice:  models.Present(150.0),
		PreviousClose: models.Present(148.5),
		Sector:        models.Absent[string]("N/A"),
	}, nil
}

func row(t time.Time, c, v float64) models.MRawRow {
	return models.MRawRow{Timestamp: t.Unix(), Open: &c, High: &c, Low: &c, Close: &c, Volume: &v}
}

type memRecorder struct {
	mu      sync.Mutex
	records []models.MRenderRecord
}

func (r *memRecorder) Initialize() error     { return nil }
func (r *memRecorder) CleanupOldData() error { return nil }
func (r *memRecorder) Close() error          { return nil }
func (r *memRecorder) RecordRender(rec models.MRenderRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

func closes(n int, start float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i%5) + float64(i)/2
	}
	return out
}

func newTestDashboard(p *fakeProvider, rec *memRecorder) *Dashboard {
	settings := models.MDashboardConfig{
		DefaultTicker:    "MSFT",
		DefaultPeriod:    models.PeriodSixMonths,
		Benchmark:        "^GSPC",
		BandLookback:     10,
		BandStdDev:       2,
		ForecastWeeksMax: 4,
	}
	var recorder interfaces.IRenderRecorder
	if rec != nil {
		recorder = rec
	}
	d := NewDashboard(settings, p, nil, nil, recorder, logger.NewLoggerTo(io.Discard, "ERROR", "test"))
	d.Now = func() time.Time { return time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC) }
	return d
}

func defaultProvider() *fakeProvider {
	return &fakeProvider{daily: map[string][]float64{
		"AAPL":  closes(40, 180),
		"MSFT":  closes(40, 400),
		"^GSPC": closes(40, 4700),
		"^N225": closes(10, 33000),
	}, start: map[string]time.Time{
		"^N225": time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestRenderAllStages(t *testing.T) {
	rec := &memRecorder{}
	d := newTestDashboard(defaultProvider(), rec)

	resp, err := d.Render(context.Background(), models.MDashboardRequest{
		Ticker: "aapl", Bands: true, Overlays: []string{"sma"}, Compare: true, Snapshot: true, Forecast: true, ForecastWeeks: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", resp.Warnings)
	}
	if resp.Ticker != "AAPL" || resp.Period.Window != models.PeriodSixMonths {
		t.Errorf("header = %s %+v", resp.Ticker, resp.Period)
	}
	if resp.Series.Len() != 40 || resp.Profile == nil || resp.Profile.ShortName.Value != "AAPL Corp" {
		t.Errorf("series/profile missing")
	}
	if resp.Bands == nil || resp.Bands.Lookback != 10 || len(resp.Overlays) != 1 {
		t.Errorf("bands = %+v overlays = %d", resp.Bands != nil, len(resp.Overlays))
	}
	if resp.Comparison == nil || resp.Comparison.Benchmark != "^GSPC" || len(resp.Comparison.Rows) != 40 {
		t.Errorf("comparison missing or misaligned")
	}
	if resp.Snapshot == nil || resp.Snapshot.AbsoluteChange != 1.5 || resp.Snapshot.PercentChange != 1.01 {
		t.Errorf("snapshot = %+v", resp.Snapshot)
	}
	if resp.Snapshot.LastIntervalVolume != 300 || resp.Snapshot.CumulativeVolume != 1000 {
		t.Errorf("snapshot volumes = %+v", resp.Snapshot)
	}
	if resp.Forecast == nil || resp.Forecast.Weeks != 2 {
		t.Errorf("forecast missing")
	}

	if len(rec.records) != 1 {
		t.Fatalf("journal rows = %d, want 1", len(rec.records))
	}
	r := rec.records[0]
	if r.Ticker != "AAPL" || r.Rows != 40 || !r.Bands || !r.Comparison || !r.Forecast || r.Warnings != 0 {
		t.Errorf("journal row = %+v", r)
	}
}

func TestRenderUnknownTickerHalts(t *testing.T) {
	rec := &memRecorder{}
	d := newTestDashboard(defaultProvider(), rec)
	_, err := d.Render(context.Background(), models.MDashboardRequest{Ticker: "ZZZZ", Bands: true})
	if !errors.Is(err, helpers.ErrEmptyResult) {
		t.Fatalf("got %v, want empty result", err)
	}
	if len(rec.records) != 0 {
		t.Error("failed render should not be journaled")
	}
}

func TestRenderNoOverlapIsWarning(t *testing.T) {
	d := newTestDashboard(defaultProvider(), nil)
	resp, err := d.Render(context.Background(), models.MDashboardRequest{Ticker: "AAPL", Compare: true, Benchmark: "^N225"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Comparison != nil {
		t.Error("comparison should be omitted")
	}
	if len(resp.Warnings) != 1 || !strings.Contains(resp.Warnings[0], "no overlapping dates") {
		t.Errorf("warnings = %v", resp.Warnings)
	}
}

func TestRenderForecastErrorIsWarning(t *testing.T) {
	d := newTestDashboard(defaultProvider(), nil)
	resp, err := d.Render(context.Background(), models.MDashboardRequest{Ticker: "AAPL", Forecast: true, ForecastWeeks: 10})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Forecast != nil || len(resp.Warnings) != 1 || !strings.HasPrefix(resp.Warnings[0], "forecast:") {
		t.Errorf("forecast=%v warnings=%v", resp.Forecast != nil, resp.Warnings)
	}
	if resp.Series == nil {
		t.Error("rest of the dashboard should still render")
	}
}

func TestSnapshotDerivesPreviousClose(t *testing.T) {
	p := defaultProvider()
	p.quotes = map[string]models.MQuoteMetadata{
		"AAPL": {Ticker: "AAPL", CurrentPrice: models.Present(150.0), PreviousClose: models.Absent[float64]("no previous close")},
	}
	d := newTestDashboard(p, nil)

	snap, err := d.Snapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	daily := p.daily["AAPL"]
	want := daily[len(daily)-2]
	if snap.PreviousClose != want {
		t.Errorf("previous close = %v, want %v", snap.PreviousClose, want)
	}
}

func TestNormalizeDefaults(t *testing.T) {
	d := newTestDashboard(defaultProvider(), nil)
	req, err := d.Normalize(models.MDashboardRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if req.Ticker != "MSFT" || req.Benchmark != "^GSPC" || req.Lookback != 10 || req.NumStdDev == nil || *req.NumStdDev != 2 || req.ForecastWeeks != 1 {
		t.Errorf("defaults = %+v", req)
	}
	if _, err := d.Normalize(models.MDashboardRequest{Ticker: "bad ticker"}); !errors.Is(err, helpers.ErrValidation) {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestNewDashboardWithoutRecorder(t *testing.T) {
	d := NewDashboard(models.MDashboardConfig{DefaultTicker: "AAPL", DefaultPeriod: models.PeriodSixMonths, Benchmark: "^GSPC",
		BandLookback: 10, BandStdDev: 2, ForecastWeeksMax: 4}, defaultProvider(), nil, nil, nil,
		logger.NewLoggerTo(io.Discard, "ERROR", "test"))
	if _, ok := d.Recorder.(storage.NoopRecorder); !ok {
		t.Fatalf("recorder = %T, want NoopRecorder", d.Recorder)
	}
	if _, err := d.Render(context.Background(), models.MDashboardRequest{}); err != nil {
		t.Fatalf("render without a journal: %v", err)
	}
}

func TestZeroStdDevIsKept(t *testing.T) {
	d := newTestDashboard(defaultProvider(), nil)
	zero := 0.0
	req, err := d.Normalize(models.MDashboardRequest{NumStdDev: &zero})
	if err != nil {
		t.Fatal(err)
	}
	if req.NumStdDev == nil || *req.NumStdDev != 0 {
		t.Fatalf("num std dev = %v, want 0", req.NumStdDev)
	}

	resp, err := d.Render(context.Background(), models.MDashboardRequest{Ticker: "AAPL", Bands: true, NumStdDev: &zero})
	if err != nil {
		t.Fatal(err)
	}
	b := resp.Bands
	if b == nil || b.NumStdDev != 0 {
		t.Fatalf("bands = %+v", b)
	}
	last := len(b.Mean) - 1
	if b.UpperBand[last].Float64 != b.Mean[last].Float64 || b.LowerBand[last].Float64 != b.Mean[last].Float64 {
		t.Errorf("zero-width bands differ from mean: %v %v %v", b.LowerBand[last], b.Mean[last], b.UpperBand[last])
	}
}
