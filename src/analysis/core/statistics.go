package core

import "math"

// -----------------------------------------------------------------------------

// CalculateMeanStd computes the mean and sample (N-1) standard deviation.
// A single element has std 0.
func CalculateMeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) == 1 {
		return mean, 0
	}

	// Two-pass variance: stable for prices with a large common offset
	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)-1))
	return mean, std
}

// -----------------------------------------------------------------------------

// RollingMeanStd returns trailing mean and sample std over window points ending at each index.
// ok[i] is false while fewer than window points are available.
func RollingMeanStd(data []float64, window int) (means, stds []float64, ok []bool) {
	n := len(data)
	means = make([]float64, n)
	stds = make([]float64, n)
	ok = make([]bool, n)
	if window < 1 {
		return means, stds, ok
	}

	for i := window - 1; i < n; i++ {
		means[i], stds[i] = CalculateMeanStd(data[i-window+1 : i+1])
		ok[i] = true
	}
	return means, stds, ok
}

// -----------------------------------------------------------------------------

// LinearRegression fits y = intercept + slope*x by least squares and returns the
// sample std of the residuals.
func LinearRegression(x, y []float64) (intercept, slope, residualStd float64) {
	n := len(x)
	if n == 0 || n != len(y) {
		return 0, 0, 0
	}

	meanX, _ := CalculateMeanStd(x)
	meanY, _ := CalculateMeanStd(y)

	sxx, sxy := 0.0, 0.0
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		sxx += dx * dx
		sxy += dx * (y[i] - meanY)
	}
	if sxx != 0 {
		slope = sxy / sxx
	}
	intercept = meanY - slope*meanX

	residuals := make([]float64, n)
	for i := 0; i < n; i++ {
		residuals[i] = y[i] - (intercept + slope*x[i])
	}
	_, residualStd = CalculateMeanStd(residuals)
	return intercept, slope, residualStd
}
