package analysis

import (
	"market-dashboard/src/analysis/core"
	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/guregu/null/v6"
)

// -----------------------------------------------------------------------------

// AlignPercentChange inner-joins subject and benchmark on the bar key and computes each
// side's close-to-close percent change against its own previous surviving row.
// Rows absent from either side are dropped before differencing, so a removed row never
// anchors a change. The first surviving row has null changes.
func AlignPercentChange(subject, benchmark models.MSeries) (models.MAlignedComparison, error) {
	benchByKey := make(map[string]float64, benchmark.Len())
	for _, b := range benchmark.Bars {
		benchByKey[b.Key] = b.Close
	}

	rows := make([]models.MAlignedRow, 0, subject.Len())
	for _, s := range subject.Bars {
		bc, ok := benchByKey[s.Key]
		if !ok {
			continue
		}
		rows = append(rows, models.MAlignedRow{
			Key:            s.Key,
			SubjectClose:   s.Close,
			BenchmarkClose: bc,
		})
	}

	if len(rows) == 0 {
		return models.MAlignedComparison{}, helpers.NewNoOverlapError(subject.Ticker, benchmark.Ticker)
	}

	for i := 1; i < len(rows); i++ {
		if v, ok := core.CalculateChangePercent(rows[i].SubjectClose, rows[i-1].SubjectClose); ok {
			rows[i].SubjectPercentChange = null.FloatFrom(v)
		}
		if v, ok := core.CalculateChangePercent(rows[i].BenchmarkClose, rows[i-1].BenchmarkClose); ok {
			rows[i].BenchmarkPercentChange = null.FloatFrom(v)
		}
	}

	return models.MAlignedComparison{
		Subject:   subject.Ticker,
		Benchmark: benchmark.Ticker,
		Rows:      rows,
	}, nil
}
