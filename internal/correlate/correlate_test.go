package correlate

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"newslens/internal/models"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func bars(closes ...float64) []models.PriceBar {
	out := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = models.PriceBar{Date: day(i + 1), Close: decimal.NewFromFloat(c)}
		if i > 0 {
			r := (c - closes[i-1]) / closes[i-1]
			out[i].Return1D = &r
		}
	}
	return out
}

func daily(ticker string, means ...float64) []models.DailySentiment {
	out := make([]models.DailySentiment, len(means))
	for i, m := range means {
		out[i] = models.DailySentiment{Ticker: ticker, Date: day(i + 1), SentimentMean: m, NArticles: 1}
	}
	return out
}

func TestMerge_PriceDriven(t *testing.T) {
	b := bars(100, 101, 102)
	// Sentiment only on days 1 and 2; day 4 sentiment has no bar.
	d := daily("AAPL", 0.5, -0.2)
	d = append(d, models.DailySentiment{Ticker: "AAPL", Date: day(4), SentimentMean: 0.9, NArticles: 2})

	rows := Merge(b, d)
	if len(rows) != 3 {
		t.Fatalf("rows=%d want=3", len(rows))
	}
	if rows[0].SentimentMean == nil || *rows[0].SentimentMean != 0.5 {
		t.Fatalf("row0 sentiment=%v", rows[0].SentimentMean)
	}
	if rows[2].SentimentMean != nil {
		t.Fatalf("day 3 should have nil sentiment")
	}
}

func TestApplyLag_IndexProperty(t *testing.T) {
	b := bars(100, 101, 103, 99, 100)
	rows := Merge(b, nil)
	lag := 2
	ApplyLag(rows, lag)
	for i := range rows {
		j := i + lag
		if j < len(rows) {
			want := rows[j].Return1D
			got := rows[i].ShiftedReturn
			if (want == nil) != (got == nil) {
				t.Fatalf("row %d shifted=%v want=%v", i, got, want)
			}
			if want != nil && *got != *want {
				t.Fatalf("row %d shifted=%v want=%v", i, *got, *want)
			}
		} else if rows[i].ShiftedReturn != nil {
			t.Fatalf("row %d past end should have nil shifted return", i)
		}
	}
}

func TestPearson_HandComputed(t *testing.T) {
	// Perfectly linear: sentiment tracks return exactly, so r = 1.
	b := bars(100, 101, 103.02, 102)
	rows := Merge(b, daily("AAPL", 0, 0.01, 0.02, -0.01))
	coeff, n := Pearson(rows, 0)
	if n != 3 {
		t.Fatalf("n=%d want=3 (first bar has no return)", n)
	}
	if math.Abs(coeff-1.0) > 1e-6 {
		t.Fatalf("coeff=%v want=1", coeff)
	}
}

func TestPearson_EmptyFilter(t *testing.T) {
	rows := Merge(bars(100, 101), nil)
	coeff, n := Pearson(rows, 0)
	if n != 0 {
		t.Fatalf("n=%d want=0", n)
	}
	if !math.IsNaN(coeff) {
		t.Fatalf("coeff=%v want=NaN", coeff)
	}
}

func TestPearson_ConstantSeriesUndefined(t *testing.T) {
	b := bars(100, 110, 121)
	rows := Merge(b, daily("AAPL", 0.5, 0.5, 0.5))
	coeff, n := Pearson(rows, 0)
	if n != 2 {
		t.Fatalf("n=%d want=2", n)
	}
	if !math.IsNaN(coeff) {
		t.Fatalf("constant sentiment should give NaN, got %v", coeff)
	}
}

func TestRun_TwoRowLagCoverage(t *testing.T) {
	b := bars(100, 101)
	d := daily("AAPL", 0.6, -0.4)

	// Same-day: one valid observation (day 1 has no return).
	rows, res := Run("AAPL", b, d, 0)
	if len(rows) != 2 {
		t.Fatalf("rows=%d want=2", len(rows))
	}
	if res.NObs != 1 {
		t.Fatalf("n_obs=%d want=1", res.NObs)
	}

	// Lag 1: day-1 sentiment aligns with the day-2 return.
	_, res = Run("AAPL", b, d, 1)
	if res.NObs != 1 {
		t.Fatalf("lagged n_obs=%d want=1", res.NObs)
	}

	// Lag 2: nothing to shift into, zero observations.
	_, res = Run("AAPL", b, d, 2)
	if res.NObs != 0 {
		t.Fatalf("lagged n_obs=%d want=0", res.NObs)
	}
	if !math.IsNaN(res.Pearson) {
		t.Fatalf("lagged pearson=%v want=NaN", res.Pearson)
	}
}
