package artifacts

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"newslens/internal/models"
)

func newWriter(t *testing.T) *Writer {
	t.Helper()
	w := &Writer{Dir: t.TempDir()}
	if err := w.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	return w
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteSummary_UndefinedCoefficientEmptyCell(t *testing.T) {
	w := newWriter(t)
	err := w.WriteSummary(models.CorrelationResult{
		Ticker: "AAPL", LagDays: 1, NObs: 0, Pearson: math.NaN(),
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rows := readCSV(t, filepath.Join(w.Dir, "AAPL_correlation_summary.csv"))
	if len(rows) != 2 {
		t.Fatalf("rows=%d want=2", len(rows))
	}
	got := rows[1]
	if got[0] != "AAPL" || got[1] != "1" || got[2] != "0" {
		t.Fatalf("row=%v", got)
	}
	if got[3] != "" {
		t.Fatalf("pearson cell=%q want empty", got[3])
	}
}

func TestWriteMerged_ShiftedColumnOnlyWithLag(t *testing.T) {
	w := newWriter(t)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := 0.01
	merged := []models.MergedRow{
		{Date: day, Close: decimal.NewFromInt(100)},
		{Date: day.AddDate(0, 0, 1), Close: decimal.NewFromInt(101), Return1D: &r},
	}

	if err := w.WriteMerged("AAPL", merged, 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows := readCSV(t, filepath.Join(w.Dir, "AAPL_sentiment_returns.csv"))
	if strings.Join(rows[0], ",") != "date,close,return_1d,sentiment_mean,n_articles" {
		t.Fatalf("header=%v", rows[0])
	}
	// Unmatched sentiment stays blank, not zero.
	if rows[1][3] != "" || rows[1][4] != "" {
		t.Fatalf("row=%v", rows[1])
	}

	if err := w.WriteMerged("AAPL", merged, 1); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows = readCSV(t, filepath.Join(w.Dir, "AAPL_sentiment_returns.csv"))
	if strings.Join(rows[0], ",") != "date,close,return_1d,return_shifted,sentiment_mean,n_articles" {
		t.Fatalf("lagged header=%v", rows[0])
	}
}

func TestWriteDailySentiment(t *testing.T) {
	w := newWriter(t)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := w.WriteDailySentiment("MSFT", []models.DailySentiment{
		{Ticker: "MSFT", Date: day, SentimentMean: 0.25, NArticles: 4},
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	rows := readCSV(t, filepath.Join(w.Dir, "MSFT_sentiment_by_day.csv"))
	want := []string{"MSFT", "2024-01-01", "0.25", "4"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Fatalf("row=%v want=%v", rows[1], want)
		}
	}
}

func TestPlotSentimentVsReturn_RequiresObservations(t *testing.T) {
	w := newWriter(t)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	merged := []models.MergedRow{{Date: day, Close: decimal.NewFromInt(100)}}
	if err := w.PlotSentimentVsReturn("AAPL", merged, 0, math.NaN()); err == nil {
		t.Fatalf("expected error with zero observations")
	}
	if _, err := os.Stat(filepath.Join(w.Dir, "AAPL_sentiment_vs_return.png")); !os.IsNotExist(err) {
		t.Fatalf("plot file should not exist")
	}
}
