package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"market-dashboard/src/analysis"
	"market-dashboard/src/app"
	"market-dashboard/src/config"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// options are the parsed command line flags.
type options struct {
	configPath string
	timeout    time.Duration
	req        models.MDashboardRequest
}

// Runs one render cycle and prints the response as JSON.
func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

func parseFlags(args []string) (options, error) {
	var opts options
	var ticker, period, start, overlays, benchmark string
	var bands, compare, snapshot, forecast bool
	var weeks int
	var std *float64

	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "config/default.yaml", "path to config file")
	fs.DurationVar(&opts.timeout, "timeout", time.Minute, "overall render timeout")
	fs.StringVar(&ticker, "ticker", "", "ticker symbol (default from config)")
	fs.StringVar(&period, "period", "", "window token, e.g. \"6 months\" or \"custom\"")
	fs.StringVar(&start, "start", "", "start date YYYY-MM-DD for a custom period")
	fs.BoolVar(&bands, "bands", false, "compute Bollinger bands")
	fs.Func("std", "band width in standard deviations (default from config)", func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		std = &f
		return nil
	})
	fs.StringVar(&overlays, "overlays", "", "comma-separated overlays: sma,ema,rsi")
	fs.BoolVar(&compare, "compare", false, "compare against the benchmark")
	fs.StringVar(&benchmark, "benchmark", "", "benchmark ticker (default from config)")
	fs.BoolVar(&snapshot, "snapshot", false, "compute snapshot metrics")
	fs.BoolVar(&forecast, "forecast", false, "run the forecast")
	fs.IntVar(&weeks, "weeks", 1, "forecast horizon in weeks")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.req = models.MDashboardRequest{
		Ticker:        ticker,
		Period:        models.MPeriodSpec{Window: period, Start: start},
		Bands:         bands,
		NumStdDev:     std,
		Compare:       compare,
		Benchmark:     benchmark,
		Snapshot:      snapshot,
		Forecast:      forecast,
		ForecastWeeks: weeks,
	}
	if start != "" && period == "" {
		opts.req.Period.Window = models.PeriodCustom
	}
	if overlays != "" {
		opts.req.Overlays = analysis.ParseOverlayList(overlays)
	}
	return opts, nil
}

// -----------------------------------------------------------------------------

func run(opts options, out io.Writer) error {
	conf, err := config.NewConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Logs go to stderr so stdout stays valid JSON
	appLogger := logger.NewLoggerTo(os.Stderr, conf.LogLevel, conf.Name)

	c, err := app.Setup(conf, appLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer c.Recorder.Close()

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	resp, err := c.Dashboard.Render(ctx, opts.req)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encode failed: %w", err)
	}
	return nil
}
