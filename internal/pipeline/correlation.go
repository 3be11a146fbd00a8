package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"newslens/internal/artifacts"
	"newslens/internal/correlate"
	"newslens/internal/models"
	"newslens/internal/news"
	"newslens/internal/prices"
	"newslens/internal/repository"
	"newslens/internal/sentiment"
)

// CorrelationParams are the per-invocation inputs of the correlate task.
type CorrelationParams struct {
	NewsCSV string   `json:"news_csv"`
	Tickers []string `json:"tickers"`
	Window  string   `json:"window"`
	LagDays int      `json:"lag_days"`
	OutDir  string   `json:"out_dir"`
}

// Correlation runs the sentiment/return correlation pipeline: load and
// score the news table once, then process tickers strictly sequentially in
// input order. A ticker without news is skipped before any price fetch; a
// failed price fetch (including NoDataError) fails that ticker only.
type Correlation struct {
	Logger  *zap.Logger
	Scorer  *sentiment.Scorer
	Fetcher prices.Fetcher
	Writer  *artifacts.Writer
	Repo    repository.Repository // nil disables run persistence
}

func (p *Correlation) Run(ctx context.Context, params CorrelationParams) error {
	if p == nil || p.Scorer == nil || p.Fetcher == nil || p.Writer == nil {
		return fmt.Errorf("correlation pipeline not configured")
	}
	if params.LagDays < 0 {
		return fmt.Errorf("lag_days must be >= 0, got %d", params.LagDays)
	}
	resetFetcher(p.Fetcher)
	if err := p.Writer.Ensure(); err != nil {
		return err
	}

	loaded, err := news.LoadFile(params.NewsCSV)
	if err != nil {
		return err
	}
	if loaded.Dropped > 0 {
		p.Logger.Warn("dropped rows with unparseable dates",
			zap.Int("dropped", loaded.Dropped),
			zap.Int("kept", len(loaded.Records)))
	}

	scored := p.Scorer.Score(loaded.Records)
	daily := sentiment.AggregateDaily(scored)
	p.Logger.Info("news table scored",
		zap.Int("headlines", len(scored)),
		zap.Int("ticker_days", len(daily)))

	run := p.startRun(ctx, "correlate", params)

	var processed, skipped, failed int
	for _, ticker := range params.Tickers {
		if err := ctx.Err(); err != nil {
			p.finishRun(ctx, run, processed, skipped, failed, err.Error())
			return err
		}

		tickerDaily := sentiment.FilterTicker(daily, ticker)
		if len(tickerDaily) == 0 {
			// No news for this ticker: no fetch, no artifacts.
			skipped++
			p.Logger.Debug("ticker absent from news data, skipping", zap.String("ticker", ticker))
			continue
		}

		res, err := p.processTicker(ctx, ticker, tickerDaily, params)
		if err != nil {
			failed++
			p.Logger.Error("ticker processing failed",
				zap.String("ticker", ticker),
				zap.Error(err))
			continue
		}
		processed++
		p.recordResult(ctx, run, res)
		p.Logger.Info("ticker correlated",
			zap.String("ticker", ticker),
			zap.Int("lag_days", res.LagDays),
			zap.Int("n_obs", res.NObs),
			zap.Float64("pearson", res.Pearson))
	}

	p.finishRun(ctx, run, processed, skipped, failed, "")
	return nil
}

// resetFetcher drops any memoized bars so scheduled re-runs of the same
// pipeline see current prices, not the first run's.
func resetFetcher(f prices.Fetcher) {
	if rf, ok := f.(interface{ Reset() }); ok {
		rf.Reset()
	}
}

func (p *Correlation) processTicker(ctx context.Context, ticker string, daily []models.DailySentiment, params CorrelationParams) (models.CorrelationResult, error) {
	bars, err := p.Fetcher.DailyBars(ctx, ticker, params.Window)
	if err != nil {
		return models.CorrelationResult{}, err
	}

	merged, res := correlate.Run(ticker, bars, daily, params.LagDays)

	if err := p.Writer.WriteDailySentiment(ticker, daily); err != nil {
		return res, err
	}
	if err := p.Writer.WriteMerged(ticker, merged, params.LagDays); err != nil {
		return res, err
	}
	if err := p.Writer.WriteSummary(res); err != nil {
		return res, err
	}
	if res.NObs > 0 {
		if err := p.Writer.PlotSentimentVsReturn(ticker, merged, params.LagDays, res.Pearson); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (p *Correlation) startRun(ctx context.Context, task string, params CorrelationParams) *models.AnalysisRun {
	if p.Repo == nil {
		return nil
	}
	raw, _ := json.Marshal(params)
	run := &models.AnalysisRun{
		Task:      task,
		Params:    datatypes.JSON(raw),
		StartedAt: nowUTC(),
	}
	if err := p.Repo.InsertRun(ctx, run); err != nil {
		p.Logger.Warn("record run failed", zap.Error(err))
		return nil
	}
	return run
}

func (p *Correlation) finishRun(ctx context.Context, run *models.AnalysisRun, tickers, skipped, failed int, errText string) {
	if p.Repo == nil || run == nil {
		return
	}
	if err := p.Repo.FinishRun(ctx, run.ID, tickers, skipped, failed, errText); err != nil {
		p.Logger.Warn("finish run failed", zap.Error(err))
	}
}

func (p *Correlation) recordResult(ctx context.Context, run *models.AnalysisRun, res models.CorrelationResult) {
	if p.Repo == nil || run == nil {
		return
	}
	row := &models.CorrelationRow{
		RunID:       run.ID,
		Ticker:      res.Ticker,
		LagDays:     res.LagDays,
		NObs:        res.NObs,
		ArtifactDir: p.Writer.Dir,
	}
	if !math.IsNaN(res.Pearson) {
		v := res.Pearson
		row.Pearson = &v
	}
	if err := p.Repo.InsertCorrelationRow(ctx, row); err != nil {
		p.Logger.Warn("record correlation failed", zap.Error(err))
	}
}
