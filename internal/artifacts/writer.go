package artifacts

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"newslens/internal/eda"
	"newslens/internal/indicators"
	"newslens/internal/models"
)

// Writer persists pipeline artifacts into a single output directory.
// File names are deterministic per ticker so reruns overwrite in place.
type Writer struct {
	Dir string
}

func (w *Writer) Ensure() error {
	if w == nil || w.Dir == "" {
		return fmt.Errorf("output dir not configured")
	}
	return os.MkdirAll(w.Dir, 0o755)
}

func (w *Writer) path(name string) string {
	return filepath.Join(w.Dir, name)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	f, err := os.Create(w.path(name))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDailySentiment writes {TICKER}_sentiment_by_day.csv.
func (w *Writer) WriteDailySentiment(ticker string, daily []models.DailySentiment) error {
	rows := make([][]string, 0, len(daily))
	for _, d := range daily {
		rows = append(rows, []string{
			d.Ticker,
			models.DayKey(d.Date),
			formatFloat(d.SentimentMean),
			strconv.Itoa(d.NArticles),
		})
	}
	return w.writeCSV(ticker+"_sentiment_by_day.csv",
		[]string{"ticker", "date", "sentiment_mean", "n_articles"}, rows)
}

// WriteMerged writes {TICKER}_sentiment_returns.csv, the full merged table
// including unmatched rows. The return_shifted column appears only when a
// lag was applied; nil fields become empty cells.
func (w *Writer) WriteMerged(ticker string, merged []models.MergedRow, lag int) error {
	header := []string{"date", "close", "return_1d"}
	if lag != 0 {
		header = append(header, "return_shifted")
	}
	header = append(header, "sentiment_mean", "n_articles")

	rows := make([][]string, 0, len(merged))
	for _, m := range merged {
		row := []string{
			models.DayKey(m.Date),
			m.Close.String(),
			formatFloatPtr(m.Return1D),
		}
		if lag != 0 {
			row = append(row, formatFloatPtr(m.ShiftedReturn))
		}
		row = append(row, formatFloatPtr(m.SentimentMean), formatIntPtr(m.NArticles))
		rows = append(rows, row)
	}
	return w.writeCSV(ticker+"_sentiment_returns.csv", header, rows)
}

// WriteSummary writes {TICKER}_correlation_summary.csv: a single row. An
// undefined coefficient becomes an empty cell, never the text "NaN".
func (w *Writer) WriteSummary(res models.CorrelationResult) error {
	pearson := ""
	if !math.IsNaN(res.Pearson) {
		pearson = formatFloat(res.Pearson)
	}
	return w.writeCSV(res.Ticker+"_correlation_summary.csv",
		[]string{"ticker", "lag_days", "n_obs", "pearson_correlation"},
		[][]string{{res.Ticker, strconv.Itoa(res.LagDays), strconv.Itoa(res.NObs), pearson}})
}

// WriteLengthStats writes basic_stats.csv for the EDA task.
func (w *Writer) WriteLengthStats(s eda.LengthStats) error {
	return w.writeCSV("basic_stats.csv",
		[]string{"stat", "value"},
		[][]string{
			{"count", strconv.Itoa(s.Count)},
			{"mean", formatFloat(s.Mean)},
			{"std", formatFloat(s.Std)},
			{"min", formatFloat(s.Min)},
			{"25%", formatFloat(s.P25)},
			{"50%", formatFloat(s.Median)},
			{"75%", formatFloat(s.P75)},
			{"max", formatFloat(s.Max)},
		})
}

// WriteCounts writes a generic (key, article_count) table.
func (w *Writer) WriteCounts(name, keyHeader string, counts []eda.CountRow) error {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Key, strconv.Itoa(c.Count)})
	}
	return w.writeCSV(name, []string{keyHeader, "article_count"}, rows)
}

// WriteIndicators writes {TICKER}_indicators.csv. The sharpe_ratio column
// repeats the series-level value on every row, as the indicator table is
// consumed row-wise.
func (w *Writer) WriteIndicators(ticker string, rep indicators.Report) error {
	sharpe := ""
	if rep.Sharpe != nil {
		sharpe = formatFloat(*rep.Sharpe)
	}
	rows := make([][]string, 0, len(rep.Rows))
	for _, r := range rep.Rows {
		rows = append(rows, []string{
			models.DayKey(r.Date),
			formatFloat(r.Close),
			formatFloatPtr(r.SMA20),
			formatFloatPtr(r.RSI14),
			formatFloatPtr(r.MACD),
			formatFloatPtr(r.MACDSignal),
			formatFloatPtr(r.MACDHist),
			formatFloatPtr(r.Return1D),
			sharpe,
		})
	}
	return w.writeCSV(ticker+"_indicators.csv",
		[]string{"date", "close", "sma_20", "rsi_14", "macd", "macd_signal", "macd_hist", "return_1d", "sharpe_ratio"},
		rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
