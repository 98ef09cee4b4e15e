package main

import (
	"strings"
	"testing"

	"market-dashboard/src/models"
)

func TestParseFlagsNormalizesOverlays(t *testing.T) {
	opts, err := parseFlags([]string{"-ticker", "msft", "-bands", "-overlays", "SMA, ema ,", "-weeks", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(opts.req.Overlays, ","); got != "sma,ema" {
		t.Errorf("overlays = %q, want sma,ema", got)
	}
	if !opts.req.Bands || opts.req.ForecastWeeks != 2 || opts.req.NumStdDev != nil {
		t.Errorf("request = %+v", opts.req)
	}
}

func TestParseFlagsStartImpliesCustom(t *testing.T) {
	opts, err := parseFlags([]string{"-start", "2024-01-02", "-std", "0"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.req.Period.Window != models.PeriodCustom || opts.req.Period.Start != "2024-01-02" {
		t.Errorf("period = %+v", opts.req.Period)
	}
	if opts.req.NumStdDev == nil || *opts.req.NumStdDev != 0 {
		t.Errorf("std = %v, want explicit 0", opts.req.NumStdDev)
	}
}

func TestParseFlagsRejectsBadStd(t *testing.T) {
	if _, err := parseFlags([]string{"-std", "wide"}); err == nil {
		t.Error("expected error for non-numeric -std")
	}
}

func TestRunMissingConfig(t *testing.T) {
	opts, err := parseFlags([]string{"-config", "does-not-exist.yaml"})
	if err != nil {
		t.Fatal(err)
	}
	var out strings.Builder
	if err := run(opts, &out); err == nil || out.Len() != 0 {
		t.Errorf("run = %v, output %q", err, out.String())
	}
}
