package pipeline

import (
	"context"
	"fmt"
	"time"

	"market-dashboard/src/analysis"
	"market-dashboard/src/forecast"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/storage"
	"market-dashboard/src/utils"

	"golang.org/x/sync/errgroup"
)

// Trailing window used to derive the previous close when the quote lacks one.
const previousCloseWindow = models.PeriodFiveDays

// Dashboard runs one render cycle per request: fetch, compute, assemble.
// It holds no per-request state.
type Dashboard struct {
	Settings  models.MDashboardConfig
	Provider  interfaces.IMarketDataProvider
	Loader    *analysis.Loader
	Forecast  *forecast.Adapter
	Scheduler *utils.MarketScheduler
	Recorder  interfaces.IRenderRecorder
	Logger    *logger.Logger
	Now       func() time.Time
}

// -----------------------------------------------------------------------------

func NewDashboard(
	settings models.MDashboardConfig,
	provider interfaces.IMarketDataProvider,
	forecaster interfaces.IForecaster,
	scheduler *utils.MarketScheduler,
	recorder interfaces.IRenderRecorder,
	log *logger.Logger,
) *Dashboard {
	if recorder == nil {
		recorder = storage.NoopRecorder{}
	}
	return &Dashboard{
		Settings:  settings,
		Provider:  provider,
		Loader:    analysis.NewLoader(provider, log.Named("Loader")),
		Forecast:  forecast.NewAdapter(forecaster, settings.ForecastWeeksMax),
		Scheduler: scheduler,
		Recorder:  recorder,
		Logger:    log,
		Now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// Normalize fills unset request fields from the dashboard defaults and validates the rest.
func (d *Dashboard) Normalize(req models.MDashboardRequest) (models.MDashboardRequest, error) {
	if req.Ticker == "" {
		req.Ticker = d.Settings.DefaultTicker
	}
	t, err := analysis.NormalizeTicker(req.Ticker)
	if err != nil {
		return req, err
	}
	req.Ticker = t

	if req.Period.Window == "" {
		req.Period.Window = d.Settings.DefaultPeriod
	}
	if req.Lookback == 0 {
		req.Lookback = d.Settings.BandLookback
	}
	if req.NumStdDev == nil {
		std := d.Settings.BandStdDev
		req.NumStdDev = &std
	}
	if req.Overlays == nil {
		req.Overlays = d.Settings.Overlays
	}
	if req.ForecastWeeks == 0 {
		req.ForecastWeeks = 1
	}
	if req.Benchmark == "" {
		req.Benchmark = d.Settings.Benchmark
	}
	b, err := analysis.NormalizeTicker(req.Benchmark)
	if err != nil {
		return req, err
	}
	req.Benchmark = b
	return req, nil
}

// -----------------------------------------------------------------------------

// fetched is what the concurrent fetch phase of a render produces.
type fetched struct {
	series       models.MSeries
	profile      models.MQuoteMetadata
	profileErr   error
	benchmark    models.MSeries
	benchmarkErr error
	intraday     models.MSeries
	intradayErr  error
	trailing     models.MSeries
	trailingErr  error
}

// Render runs a full render cycle. An EmptyResult (unknown ticker) or provider failure on the
// subject series fails the render; every other stage failure becomes a warning.
func (d *Dashboard) Render(ctx context.Context, req models.MDashboardRequest) (*models.MDashboardResponse, error) {
	started := d.Now()

	req, err := d.Normalize(req)
	if err != nil {
		return nil, err
	}

	f, err := d.fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &models.MDashboardResponse{
		Ticker:     req.Ticker,
		Period:     req.Period,
		Series:     &f.series,
		MarketOpen: d.MarketOpen(req.Ticker),
	}

	if f.profileErr != nil {
		resp.Warnings = append(resp.Warnings, "profile: "+f.profileErr.Error())
	} else {
		resp.Profile = &f.profile
	}

	if req.Bands {
		bands, overlays, err := d.Bands(f.series, req)
		if err != nil {
			resp.Warnings = append(resp.Warnings, "bands: "+err.Error())
		} else {
			resp.Bands = bands
			resp.Overlays = overlays
		}
	}

	if req.Compare {
		if f.benchmarkErr != nil {
			resp.Warnings = append(resp.Warnings, "comparison: "+f.benchmarkErr.Error())
		} else if cmp, err := d.Comparison(f.series, f.benchmark); err != nil {
			resp.Warnings = append(resp.Warnings, "comparison: "+err.Error())
		} else {
			resp.Comparison = cmp
		}
	}

	if req.Snapshot {
		var quote *models.MQuoteMetadata
		if f.profileErr == nil {
			quote = &f.profile
		}
		snap, err := d.snapshotFrom(f.intraday, f.intradayErr, quote, f.trailing, f.trailingErr)
		if err != nil {
			resp.Warnings = append(resp.Warnings, "snapshot: "+err.Error())
		} else {
			resp.Snapshot = snap
		}
	}

	if req.Forecast {
		fc, err := d.RunForecast(ctx, f.series, req.ForecastWeeks)
		if err != nil {
			resp.Warnings = append(resp.Warnings, "forecast: "+err.Error())
		} else {
			resp.Forecast = fc
		}
	}

	resp.RenderedAt = d.Now().UTC()
	d.record(req, resp, resp.RenderedAt.Sub(started))
	return resp, nil
}

// -----------------------------------------------------------------------------

// fetch issues every provider call the request needs concurrently and joins them.
// Only the subject series is fatal; the other errors are kept for the stages to report.
func (d *Dashboard) fetch(ctx context.Context, req models.MDashboardRequest) (*fetched, error) {
	f := &fetched{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := d.Series(gctx, req.Ticker, req.Period)
		f.series = s
		return err
	})
	g.Go(func() error {
		f.profile, f.profileErr = d.Profile(gctx, req.Ticker)
		return nil
	})
	if req.Compare {
		g.Go(func() error {
			f.benchmark, f.benchmarkErr = d.Series(gctx, req.Benchmark, req.Period)
			return nil
		})
	}
	if req.Snapshot {
		g.Go(func() error {
			f.intraday, f.intradayErr = d.Series(gctx, req.Ticker, models.MPeriodSpec{Window: models.PeriodOneDay})
			return nil
		})
		g.Go(func() error {
			f.trailing, f.trailingErr = d.Series(gctx, req.Ticker, models.MPeriodSpec{Window: previousCloseWindow})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

// -----------------------------------------------------------------------------
// Stages
// -----------------------------------------------------------------------------

// Series loads ticker over period.
func (d *Dashboard) Series(ctx context.Context, ticker string, period models.MPeriodSpec) (models.MSeries, error) {
	return d.Loader.Load(ctx, ticker, period)
}

// Profile fetches the company profile panel.
func (d *Dashboard) Profile(ctx context.Context, ticker string) (models.MQuoteMetadata, error) {
	return d.Provider.FetchQuoteMetadata(ctx, ticker)
}

// Bands computes the band overlay plus any requested indicator overlays.
func (d *Dashboard) Bands(series models.MSeries, req models.MDashboardRequest) (*models.MBandedSeries, []models.MOverlay, error) {
	bands, err := analysis.ComputeBands(series, req.Lookback, *req.NumStdDev)
	if err != nil {
		return nil, nil, err
	}
	overlays, err := d.Overlays(series, req)
	if err != nil {
		return nil, nil, err
	}
	return &bands, overlays, nil
}

// Overlays computes the requested indicator overlays over closes.
func (d *Dashboard) Overlays(series models.MSeries, req models.MDashboardRequest) ([]models.MOverlay, error) {
	if len(req.Overlays) == 0 {
		return nil, nil
	}
	return analysis.ComputeOverlays(series, req.Overlays, req.Lookback)
}

// Comparison aligns subject against benchmark.
func (d *Dashboard) Comparison(subject, benchmark models.MSeries) (*models.MAlignedComparison, error) {
	cmp, err := analysis.AlignPercentChange(subject, benchmark)
	if err != nil {
		return nil, err
	}
	return &cmp, nil
}

// Snapshot fetches what the metric tiles need and computes them.
func (d *Dashboard) Snapshot(ctx context.Context, ticker string) (*models.MSnapshotMetrics, error) {
	f := &fetched{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f.intraday, f.intradayErr = d.Series(gctx, ticker, models.MPeriodSpec{Window: models.PeriodOneDay})
		return nil
	})
	g.Go(func() error {
		f.profile, f.profileErr = d.Profile(gctx, ticker)
		return nil
	})
	g.Go(func() error {
		f.trailing, f.trailingErr = d.Series(gctx, ticker, models.MPeriodSpec{Window: previousCloseWindow})
		return nil
	})
	_ = g.Wait()

	var quote *models.MQuoteMetadata
	if f.profileErr == nil {
		quote = &f.profile
	}
	return d.snapshotFrom(f.intraday, f.intradayErr, quote, f.trailing, f.trailingErr)
}

// snapshotFrom prefers the quote's prices and falls back to the series: the last intraday
// close for the current price, the second-to-last trailing close for the previous close.
func (d *Dashboard) snapshotFrom(
	intraday models.MSeries, intradayErr error,
	quote *models.MQuoteMetadata,
	trailing models.MSeries, trailingErr error,
) (*models.MSnapshotMetrics, error) {
	if intradayErr != nil {
		return nil, intradayErr
	}

	var current, previous float64
	var err error
	if quote != nil && quote.CurrentPrice.Present {
		current = quote.CurrentPrice.Value
	} else if current, err = analysis.CurrentPriceFromSeries(intraday); err != nil {
		return nil, err
	}

	if quote != nil && quote.PreviousClose.Present {
		previous = quote.PreviousClose.Value
	} else {
		if trailingErr != nil {
			return nil, fmt.Errorf("previous close lookback: %w", trailingErr)
		}
		if previous, err = analysis.PreviousCloseFromSeries(trailing); err != nil {
			return nil, err
		}
	}

	m, err := analysis.Snapshot(intraday, current, previous)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RunForecast fits and extends the series weeks into the future.
func (d *Dashboard) RunForecast(ctx context.Context, series models.MSeries, weeks int) (*models.MForecastResult, error) {
	var cal interfaces.ITradingCalendar
	if d.Scheduler != nil {
		cal = d.Scheduler.CalendarFor(series.Ticker)
	}
	res, err := d.Forecast.Run(ctx, series, weeks, cal)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// MarketOpen reports whether ticker's exchange is trading right now.
func (d *Dashboard) MarketOpen(ticker string) bool {
	if d.Scheduler == nil {
		return false
	}
	return d.Scheduler.MarketOpen(ticker)
}

// -----------------------------------------------------------------------------

func (d *Dashboard) record(req models.MDashboardRequest, resp *models.MDashboardResponse, elapsed time.Duration) {
	period := req.Period.Window
	if req.Period.Window == models.PeriodCustom {
		period += ":" + req.Period.Start
	}
	rec := models.MRenderRecord{
		Ticker:     req.Ticker,
		Period:     period,
		Rows:       resp.Series.Len(),
		Bands:      resp.Bands != nil,
		Comparison: resp.Comparison != nil,
		Forecast:   resp.Forecast != nil,
		Warnings:   len(resp.Warnings),
		ElapsedMs:  elapsed.Milliseconds(),
		RenderedAt: resp.RenderedAt,
	}
	if err := d.Recorder.RecordRender(rec); err != nil {
		d.Logger.Warning("Failed to journal render of %s: %v", req.Ticker, err)
	}
}
