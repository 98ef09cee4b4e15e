package analysis

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,19}$`)

// provider range tokens for the named windows; all but "1 day" sample daily
var periodRanges = map[string]string{
	models.PeriodOneDay:      "1d",
	models.PeriodFiveDays:    "5d",
	models.PeriodOneMonth:    "1mo",
	models.PeriodThreeMonths: "3mo",
	models.PeriodSixMonths:   "6mo",
	models.PeriodOneYear:     "1y",
	models.PeriodTwoYears:    "2y",
	models.PeriodFiveYears:   "5y",
	models.PeriodTenYears:    "10y",
	models.PeriodYearToDate:  "ytd",
	models.PeriodMax:         "max",
}

// -----------------------------------------------------------------------------

// NormalizeTicker upper-cases and validates a ticker symbol.
func NormalizeTicker(ticker string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return "", helpers.NewValidationError("ticker cannot be empty")
	}
	if !tickerPattern.MatchString(t) {
		return "", helpers.NewValidationError("invalid ticker %q", ticker)
	}
	return t, nil
}

// -----------------------------------------------------------------------------

// ResolvePeriod maps a window token (or custom start date) to a provider request.
// Only "1 day" is sampled per minute.
func ResolvePeriod(spec models.MPeriodSpec, now time.Time) (models.MHistoryRequest, error) {
	if spec.Window == models.PeriodCustom {
		if spec.Start == "" {
			return models.MHistoryRequest{}, helpers.NewValidationError("custom period requires a start date")
		}
		start, err := time.ParseInLocation(models.DailyKeyLayout, spec.Start, time.UTC)
		if err != nil {
			return models.MHistoryRequest{}, helpers.NewValidationError("invalid start date %q (want YYYY-MM-DD)", spec.Start)
		}
		if start.After(now) {
			return models.MHistoryRequest{}, helpers.NewValidationError("start date %s is in the future", spec.Start)
		}
		return models.MHistoryRequest{
			Start:       start,
			End:         now,
			Interval:    "1d",
			Granularity: models.GranularityDaily,
		}, nil
	}

	rng, ok := periodRanges[spec.Window]
	if !ok {
		return models.MHistoryRequest{}, helpers.NewValidationError("unknown period %q", spec.Window)
	}
	if spec.Window == models.PeriodOneDay {
		return models.MHistoryRequest{Range: rng, Interval: "1m", Granularity: models.GranularityIntraday}, nil
	}
	return models.MHistoryRequest{Range: rng, Interval: "1d", Granularity: models.GranularityDaily}, nil
}

// -----------------------------------------------------------------------------

// Normalize turns raw provider rows into a canonical series.
// Rows with null fields, non-positive close or negative volume are dropped. Keys are formatted
// in the exchange timezone; when rows collapse onto one key the later row wins.
func Normalize(ticker string, granularity models.Granularity, raw models.MRawHistory) (models.MSeries, error) {
	loc := time.UTC
	if raw.Timezone != "" {
		if l, err := time.LoadLocation(raw.Timezone); err == nil {
			loc = l
		}
	}

	layout := models.DailyKeyLayout
	if granularity == models.GranularityIntraday {
		layout = models.IntradayKeyLayout
	}

	rows := make([]models.MRawRow, 0, len(raw.Rows))
	for _, r := range raw.Rows {
		if r.Open == nil || r.High == nil || r.Low == nil || r.Close == nil || r.Volume == nil {
			continue
		}
		if *r.Close <= 0 || *r.Volume < 0 || *r.Open < 0 || *r.High < 0 || *r.Low < 0 {
			continue
		}
		if math.IsNaN(*r.Close) || math.IsInf(*r.Close, 0) {
			continue
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp < rows[j].Timestamp })

	bars := make([]models.MBar, 0, len(rows))
	for _, r := range rows {
		ts := time.Unix(r.Timestamp, 0).In(loc)
		bar := models.MBar{
			Key:    ts.Format(layout),
			Time:   ts,
			Open:   *r.Open,
			High:   *r.High,
			Low:    *r.Low,
			Close:  *r.Close,
			Volume: int64(math.Round(*r.Volume)),
		}
		if n := len(bars); n > 0 && bars[n-1].Key == bar.Key {
			bars[n-1] = bar
			continue
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return models.MSeries{}, helpers.NewEmptyResultError(ticker)
	}

	return models.MSeries{
		Ticker:      ticker,
		Granularity: granularity,
		Timezone:    loc.String(),
		Bars:        bars,
	}, nil
}

// -----------------------------------------------------------------------------

// Loader fetches and normalizes series from a market-data provider.
type Loader struct {
	Provider interfaces.IMarketDataProvider
	Logger   *logger.Logger
	Now      func() time.Time
}

func NewLoader(provider interfaces.IMarketDataProvider, log *logger.Logger) *Loader {
	return &Loader{
		Provider: provider,
		Logger:   log,
		Now:      time.Now,
	}
}

// -----------------------------------------------------------------------------

// Load returns a new series for ticker over spec, or an EmptyResult / Provider / Validation error.
func (l *Loader) Load(ctx context.Context, ticker string, spec models.MPeriodSpec) (models.MSeries, error) {
	t, err := NormalizeTicker(ticker)
	if err != nil {
		return models.MSeries{}, err
	}
	req, err := ResolvePeriod(spec, l.Now().UTC())
	if err != nil {
		return models.MSeries{}, err
	}

	raw, err := l.Provider.FetchHistory(ctx, t, req)
	if err != nil {
		var pe *helpers.ProviderError
		if errors.As(err, &pe) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return models.MSeries{}, err
		}
		return models.MSeries{}, helpers.NewProviderError("history fetch for "+t, err)
	}

	series, err := Normalize(t, req.Granularity, raw)
	if err != nil {
		return models.MSeries{}, err
	}

	l.Logger.Debug("Loaded %s [%s]: %d bars %s -> %s", t, spec.Window, series.Len(),
		series.Bars[0].Key, series.Bars[len(series.Bars)-1].Key)
	return series, nil
}
