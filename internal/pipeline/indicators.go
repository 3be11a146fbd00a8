package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"newslens/internal/artifacts"
	"newslens/internal/indicators"
	"newslens/internal/models"
	"newslens/internal/prices"
	"newslens/internal/repository"
)

type IndicatorsParams struct {
	Tickers []string `json:"tickers"`
	Window  string   `json:"window"`
	OutDir  string   `json:"out_dir"`
}

// Indicators computes technical indicators per ticker over fetched daily
// bars. Tickers are independent: one failed fetch never stops the rest.
type Indicators struct {
	Logger  *zap.Logger
	Fetcher prices.Fetcher
	Writer  *artifacts.Writer
	Repo    repository.Repository
}

func (p *Indicators) Run(ctx context.Context, params IndicatorsParams) error {
	if p == nil || p.Fetcher == nil || p.Writer == nil {
		return fmt.Errorf("indicators pipeline not configured")
	}
	resetFetcher(p.Fetcher)
	if err := p.Writer.Ensure(); err != nil {
		return err
	}

	run := p.startRun(ctx, params)

	var processed, failed int
	for _, ticker := range params.Tickers {
		if err := ctx.Err(); err != nil {
			p.finishRun(ctx, run, processed, failed, err.Error())
			return err
		}

		if err := p.processTicker(ctx, ticker, params.Window); err != nil {
			failed++
			p.Logger.Error("ticker indicators failed",
				zap.String("ticker", ticker),
				zap.Error(err))
			continue
		}
		processed++
		p.Logger.Info("ticker indicators written", zap.String("ticker", ticker))
	}

	p.finishRun(ctx, run, processed, failed, "")
	return nil
}

func (p *Indicators) processTicker(ctx context.Context, ticker, window string) error {
	bars, err := p.Fetcher.DailyBars(ctx, ticker, window)
	if err != nil {
		return err
	}
	rep := indicators.Compute(bars)
	if err := p.Writer.WriteIndicators(ticker, rep); err != nil {
		return err
	}
	return p.Writer.PlotIndicators(ticker, rep)
}

func (p *Indicators) startRun(ctx context.Context, params IndicatorsParams) *models.AnalysisRun {
	if p.Repo == nil {
		return nil
	}
	raw, _ := json.Marshal(params)
	run := &models.AnalysisRun{Task: "indicators", Params: datatypes.JSON(raw), StartedAt: nowUTC()}
	if err := p.Repo.InsertRun(ctx, run); err != nil {
		p.Logger.Warn("record run failed", zap.Error(err))
		return nil
	}
	return run
}

func (p *Indicators) finishRun(ctx context.Context, run *models.AnalysisRun, tickers, failed int, errText string) {
	if p.Repo == nil || run == nil {
		return
	}
	if err := p.Repo.FinishRun(ctx, run.ID, tickers, 0, failed, errText); err != nil {
		p.Logger.Warn("finish run failed", zap.Error(err))
	}
}
