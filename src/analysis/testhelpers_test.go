package analysis

import (
	"time"

	"market-dashboard/src/models"
)

const eps = 1e-6

// flatSeries builds daily bars with high=low=open=close starting on a Monday.
func flatSeries(ticker string, closes ...float64) models.MSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.MBar, len(closes))
	for i, c := range closes {
		ts := start.AddDate(0, 0, i)
		bars[i] = models.MBar{
			Key: ts.Format(models.DailyKeyLayout), Time: ts,
			Open: c, High: c, Low: c, Close: c, Volume: int64(1000 * (i + 1)),
		}
	}
	return models.MSeries{Ticker: ticker, Granularity: models.GranularityDaily, Timezone: "UTC", Bars: bars}
}

func keyedSeries(ticker string, keys []string, closes []float64) models.MSeries {
	bars := make([]models.MBar, len(keys))
	for i := range keys {
		bars[i] = models.MBar{Key: keys[i], Open: closes[i], High: closes[i], Low: closes[i], Close: closes[i]}
	}
	return models.MSeries{Ticker: ticker, Granularity: models.GranularityDaily, Bars: bars}
}

func ptr(v float64) *float64 { return &v }
