package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"newslens/internal/artifacts"
	"newslens/internal/models"
	"newslens/internal/news"
	"newslens/internal/prices"
	"newslens/internal/sentiment"
)

type stubFetcher struct {
	bars    map[string][]models.PriceBar
	fetched []string
}

func (f *stubFetcher) DailyBars(ctx context.Context, ticker, window string) ([]models.PriceBar, error) {
	f.fetched = append(f.fetched, ticker)
	bars, ok := f.bars[ticker]
	if !ok || len(bars) == 0 {
		return nil, &prices.NoDataError{Ticker: ticker}
	}
	return bars, nil
}

func writeNewsCSV(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "news.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"headline", "url", "publisher", "date", "stock"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return path
}

func twoDayBars() []models.PriceBar {
	bars := []models.PriceBar{
		{Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(100)},
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromFloat(101)},
	}
	prices.ComputeReturns(bars)
	return bars
}

func newPipeline(t *testing.T, fetcher prices.Fetcher) (*Correlation, string) {
	t.Helper()
	out := t.TempDir()
	return &Correlation{
		Logger:  zap.NewNop(),
		Scorer:  sentiment.NewScorer(),
		Fetcher: fetcher,
		Writer:  &artifacts.Writer{Dir: out},
	}, out
}

func TestCorrelation_EndToEnd(t *testing.T) {
	csvPath := writeNewsCSV(t, [][]string{
		{"Great results", "u1", "p1", "2024-01-01T10:00:00Z", "AAPL"},
		{"Terrible outlook", "u2", "p2", "2024-01-02T10:00:00Z", "AAPL"},
	})
	fetcher := &stubFetcher{bars: map[string][]models.PriceBar{"AAPL": twoDayBars()}}
	p, out := newPipeline(t, fetcher)

	err := p.Run(context.Background(), CorrelationParams{
		NewsCSV: csvPath,
		Tickers: []string{"AAPL"},
		Window:  "1y",
		LagDays: 0,
		OutDir:  out,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for _, name := range []string{
		"AAPL_sentiment_by_day.csv",
		"AAPL_sentiment_returns.csv",
		"AAPL_correlation_summary.csv",
	} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("missing artifact %s: %v", name, err)
		}
	}

	f, err := os.Open(filepath.Join(out, "AAPL_correlation_summary.csv"))
	if err != nil {
		t.Fatalf("open summary: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	// Two sentiment days but only one day with a defined return.
	if got := rows[1][2]; got != "1" {
		t.Fatalf("n_obs=%s want=1", got)
	}
}

func TestCorrelation_RepeatedRunsRefetchPrices(t *testing.T) {
	csvPath := writeNewsCSV(t, [][]string{
		{"Great results", "u1", "p1", "2024-01-01T10:00:00Z", "AAPL"},
	})
	inner := &stubFetcher{bars: map[string][]models.PriceBar{"AAPL": twoDayBars()}}
	// Share one caching fetcher across runs, as a scheduled re-run does.
	p, out := newPipeline(t, &prices.CachedFetcher{Fetcher: inner})

	params := CorrelationParams{
		NewsCSV: csvPath,
		Tickers: []string{"AAPL"},
		Window:  "1y",
		OutDir:  out,
	}
	for i := 0; i < 2; i++ {
		if err := p.Run(context.Background(), params); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	// Each run starts with an empty memo and fetches current bars.
	if len(inner.fetched) != 2 {
		t.Fatalf("fetches=%d want=2", len(inner.fetched))
	}
}

func TestCorrelation_SkipsTickerWithoutNews(t *testing.T) {
	csvPath := writeNewsCSV(t, [][]string{
		{"Great results", "u1", "p1", "2024-01-01T10:00:00Z", "AAPL"},
	})
	fetcher := &stubFetcher{bars: map[string][]models.PriceBar{"AAPL": twoDayBars()}}
	p, out := newPipeline(t, fetcher)

	err := p.Run(context.Background(), CorrelationParams{
		NewsCSV: csvPath,
		Tickers: []string{"MSFT", "AAPL"},
		Window:  "1y",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// MSFT has no news rows: no price fetch, no artifacts.
	for _, fetched := range fetcher.fetched {
		if fetched == "MSFT" {
			t.Fatalf("fetched MSFT despite empty sentiment")
		}
	}
	if _, err := os.Stat(filepath.Join(out, "MSFT_correlation_summary.csv")); !os.IsNotExist(err) {
		t.Fatalf("MSFT artifacts should not exist")
	}
}

func TestCorrelation_NoDataFailsTickerOnly(t *testing.T) {
	csvPath := writeNewsCSV(t, [][]string{
		{"Great results", "u1", "p1", "2024-01-01T10:00:00Z", "ZZZZ"},
		{"Solid quarter", "u2", "p2", "2024-01-01T11:00:00Z", "AAPL"},
		{"Weak guidance", "u3", "p3", "2024-01-02T09:00:00Z", "AAPL"},
	})
	fetcher := &stubFetcher{bars: map[string][]models.PriceBar{"AAPL": twoDayBars()}}
	p, out := newPipeline(t, fetcher)

	err := p.Run(context.Background(), CorrelationParams{
		NewsCSV: csvPath,
		Tickers: []string{"ZZZZ", "AAPL"},
		Window:  "1y",
	})
	if err != nil {
		t.Fatalf("run should absorb per-ticker failures: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "AAPL_correlation_summary.csv")); err != nil {
		t.Fatalf("AAPL artifacts missing after ZZZZ failed: %v", err)
	}
}

func TestCorrelation_SchemaErrorFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	if err := os.WriteFile(path, []byte("headline,publisher\nx,y\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, _ := newPipeline(t, &stubFetcher{})
	err := p.Run(context.Background(), CorrelationParams{NewsCSV: path, Tickers: []string{"AAPL"}})
	var se *news.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestCorrelation_NoPlotWithoutObservations(t *testing.T) {
	csvPath := writeNewsCSV(t, [][]string{
		{"Great results", "u1", "p1", "2024-01-01T10:00:00Z", "AAPL"},
		{"Terrible outlook", "u2", "p2", "2024-01-02T10:00:00Z", "AAPL"},
	})
	fetcher := &stubFetcher{bars: map[string][]models.PriceBar{"AAPL": twoDayBars()}}
	p, out := newPipeline(t, fetcher)

	// Lag 2 over a 2-row series leaves nothing to correlate.
	err := p.Run(context.Background(), CorrelationParams{
		NewsCSV: csvPath,
		Tickers: []string{"AAPL"},
		Window:  "1y",
		LagDays: 2,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "AAPL_sentiment_vs_return.png")); !os.IsNotExist(err) {
		t.Fatalf("plot should not exist with zero observations")
	}
	if _, err := os.Stat(filepath.Join(out, "AAPL_correlation_summary.csv")); err != nil {
		t.Fatalf("summary still expected: %v", err)
	}
}
