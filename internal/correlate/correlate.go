package correlate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"newslens/internal/models"
)

// Merge left-joins a ticker's daily sentiment onto its price series, on
// calendar-date equality. The price series is the driving side: every
// trading day is kept, and days without matching news carry nil sentiment
// fields. Sentiment days without a trading bar are excluded.
func Merge(bars []models.PriceBar, daily []models.DailySentiment) []models.MergedRow {
	byDay := make(map[string]models.DailySentiment, len(daily))
	for _, d := range daily {
		byDay[models.DayKey(d.Date)] = d
	}

	rows := make([]models.MergedRow, 0, len(bars))
	for _, b := range bars {
		row := models.MergedRow{
			Date:     b.Date,
			Close:    b.Close,
			Return1D: b.Return1D,
		}
		if d, ok := byDay[models.DayKey(b.Date)]; ok {
			mean := d.SentimentMean
			n := d.NArticles
			row.SentimentMean = &mean
			row.NArticles = &n
		}
		rows = append(rows, row)
	}
	return rows
}

// ApplyLag fills ShiftedReturn so that row i carries the return realized
// lag trading days later: ShiftedReturn[i] = Return1D[i+lag]. The last lag
// rows have no day to shift into and keep nil. No-op when lag == 0.
func ApplyLag(rows []models.MergedRow, lag int) {
	if lag <= 0 {
		return
	}
	for i := range rows {
		if j := i + lag; j < len(rows) {
			rows[i].ShiftedReturn = rows[j].Return1D
		} else {
			rows[i].ShiftedReturn = nil
		}
	}
}

// ReturnColumn picks the return used for correlation: the shifted column
// when a lag is applied, the plain 1-day return otherwise.
func ReturnColumn(row models.MergedRow, lag int) *float64 {
	if lag != 0 {
		return row.ShiftedReturn
	}
	return row.Return1D
}

// Pearson filters rows to those with both sentiment and the chosen return,
// then computes the sample Pearson coefficient over them. An empty filtered
// set or a zero-variance series yields NaN; neither is an error.
func Pearson(rows []models.MergedRow, lag int) (coeff float64, nObs int) {
	var xs, ys []float64
	for _, row := range rows {
		ret := ReturnColumn(row, lag)
		if row.SentimentMean == nil || ret == nil {
			continue
		}
		xs = append(xs, *row.SentimentMean)
		ys = append(ys, *ret)
	}
	if len(xs) == 0 {
		return math.NaN(), 0
	}
	return stat.Correlation(xs, ys, nil), len(xs)
}

// Run merges, lags and correlates one ticker's inputs.
func Run(ticker string, bars []models.PriceBar, daily []models.DailySentiment, lag int) ([]models.MergedRow, models.CorrelationResult) {
	rows := Merge(bars, daily)
	ApplyLag(rows, lag)
	coeff, n := Pearson(rows, lag)
	return rows, models.CorrelationResult{
		Ticker:  ticker,
		LagDays: lag,
		NObs:    n,
		Pearson: coeff,
	}
}
