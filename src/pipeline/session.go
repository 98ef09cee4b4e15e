package pipeline

import (
	"context"
	"sync"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
)

// Session event names.
const (
	EventTicker    = "ticker"
	EventPeriod    = "period"
	EventBenchmark = "benchmark"
	EventBands     = "bands"
	EventOverlays  = "overlays"
	EventCompare   = "compare"
	EventSnapshot  = "snapshot"
	EventForecast  = "forecast"
	EventRender    = "render"
)

// Session is one client's interactive state: the current widget inputs and the last
// loaded series. Each event recomputes only the stage it affects.
type Session struct {
	Dashboard *Dashboard

	mu     sync.Mutex
	req    models.MDashboardRequest
	series *models.MSeries
}

func NewSession(d *Dashboard) *Session {
	return &Session{Dashboard: d}
}

// Request returns the current widget inputs.
func (s *Session) Request() models.MDashboardRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}

// -----------------------------------------------------------------------------

// Handle applies one event and returns the partial response for it.
func (s *Session) Handle(ctx context.Context, ev models.MSessionEvent) models.MSessionReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.apply(ctx, ev)
	reply := models.MSessionReply{Event: ev.Event, Data: data}
	if err != nil {
		reply.Error = err.Error()
	}
	return reply
}

// -----------------------------------------------------------------------------

func (s *Session) apply(ctx context.Context, ev models.MSessionEvent) (*models.MDashboardResponse, error) {
	d := s.Dashboard
	next := s.req

	switch ev.Event {
	case EventTicker:
		next.Ticker = ev.Ticker
	case EventPeriod:
		next.Period = ev.Period
	case EventBenchmark:
		next.Benchmark = ev.Benchmark
		next.Compare = true
	case EventBands:
		next.Bands = enabled(ev.Enabled, true)
		if ev.Lookback != 0 {
			next.Lookback = ev.Lookback
		}
		if ev.NumStdDev != nil {
			std := *ev.NumStdDev
			next.NumStdDev = &std
		}
	case EventOverlays:
		next.Overlays = ev.Overlays
		if next.Overlays == nil {
			next.Overlays = []string{}
		}
	case EventCompare:
		next.Compare = enabled(ev.Enabled, true)
	case EventSnapshot:
		next.Snapshot = enabled(ev.Enabled, true)
	case EventForecast:
		next.Forecast = enabled(ev.Enabled, true)
		if ev.ForecastWeeks != 0 {
			next.ForecastWeeks = ev.ForecastWeeks
		}
	case EventRender:
	default:
		return nil, helpers.NewValidationError("unknown event %q", ev.Event)
	}

	next, err := d.Normalize(next)
	if err != nil {
		return nil, err
	}

	if ev.Event == EventRender {
		resp, err := d.Render(ctx, next)
		if err != nil {
			return nil, err
		}
		s.req = next
		s.series = resp.Series
		return resp, nil
	}

	resp := &models.MDashboardResponse{Ticker: next.Ticker, Period: next.Period}

	current := s.series
	refetch := ev.Event == EventTicker || ev.Event == EventPeriod || current == nil ||
		current.Ticker != next.Ticker
	if refetch {
		series, err := d.Series(ctx, next.Ticker, next.Period)
		if err != nil {
			return nil, err
		}
		current = &series
	}
	series := *current

	switch ev.Event {
	case EventTicker, EventPeriod:
		resp.Series = current
		resp.MarketOpen = d.MarketOpen(next.Ticker)
		if ev.Event == EventTicker {
			if p, err := d.Profile(ctx, next.Ticker); err != nil {
				resp.Warnings = append(resp.Warnings, "profile: "+err.Error())
			} else {
				resp.Profile = &p
			}
		}

	case EventBands:
		if !next.Bands {
			break
		}
		bands, overlays, err := d.Bands(series, next)
		if err != nil {
			return nil, err
		}
		resp.Bands = bands
		resp.Overlays = overlays

	case EventOverlays:
		overlays, err := d.Overlays(series, next)
		if err != nil {
			return nil, err
		}
		resp.Overlays = overlays

	case EventBenchmark, EventCompare:
		if !next.Compare {
			break
		}
		benchmark, err := d.Series(ctx, next.Benchmark, next.Period)
		if err != nil {
			return nil, err
		}
		cmp, err := d.Comparison(series, benchmark)
		if err != nil {
			return nil, err
		}
		resp.Comparison = cmp

	case EventSnapshot:
		if !next.Snapshot {
			break
		}
		snap, err := d.Snapshot(ctx, next.Ticker)
		if err != nil {
			return nil, err
		}
		resp.Snapshot = snap

	case EventForecast:
		if !next.Forecast {
			break
		}
		fc, err := d.RunForecast(ctx, series, next.ForecastWeeks)
		if err != nil {
			return nil, err
		}
		resp.Forecast = fc
	}

	// a failed stage leaves the inputs as they were
	s.req = next
	s.series = current
	return resp, nil
}

func enabled(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
