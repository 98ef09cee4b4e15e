package core

import "github.com/shopspring/decimal"

// -----------------------------------------------------------------------------

// CalculateChangePercent returns (current-previous)/previous*100.
// ok is false when previous is zero.
func CalculateChangePercent(current, previous float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (current - previous) / previous * 100, true
}

// -----------------------------------------------------------------------------

// Round2 rounds half away from zero to 2 decimals for display.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// ChangeRound2 is Round2(current) - Round2(previous), exact in decimal, so the
// change always agrees with the two displayed prices.
func ChangeRound2(current, previous float64) float64 {
	c := decimal.NewFromFloat(current).Round(2)
	p := decimal.NewFromFloat(previous).Round(2)
	f, _ := c.Sub(p).Float64()
	return f
}

// -----------------------------------------------------------------------------

// MaxOpenClose and MinOpenClose scan the open/close fields only.
func MaxOpenClose(open, close float64) float64 {
	if open > close {
		return open
	}
	return close
}

func MinOpenClose(open, close float64) float64 {
	if open < close {
		return open
	}
	return close
}
