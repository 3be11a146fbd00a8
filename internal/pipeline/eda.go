package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"newslens/internal/artifacts"
	"newslens/internal/eda"
	"newslens/internal/models"
	"newslens/internal/news"
	"newslens/internal/repository"
)

type EDAParams struct {
	NewsCSV string `json:"news_csv"`
	OutDir  string `json:"out_dir"`
}

// EDA runs the descriptive/temporal exploration of the news table.
type EDA struct {
	Logger *zap.Logger
	Writer *artifacts.Writer
	Repo   repository.Repository
}

func (p *EDA) Run(ctx context.Context, params EDAParams) error {
	if p == nil || p.Writer == nil {
		return fmt.Errorf("eda pipeline not configured")
	}
	if err := p.Writer.Ensure(); err != nil {
		return err
	}

	loaded, err := news.LoadFile(params.NewsCSV)
	if err != nil {
		return err
	}
	if loaded.Dropped > 0 {
		p.Logger.Warn("dropped rows with unparseable dates", zap.Int("dropped", loaded.Dropped))
	}
	records := loaded.Records
	p.Logger.Info("news table loaded", zap.Int("rows", len(records)))

	run := p.startRun(ctx, params)

	steps := []struct {
		name string
		fn   func() error
	}{
		{"basic_stats", func() error { return p.Writer.WriteLengthStats(eda.HeadlineLengths(records)) }},
		{"length_hist", func() error { return p.Writer.PlotLengthHistogram(eda.Lengths(records)) }},
		{"top_publishers", func() error {
			return p.Writer.WriteCounts("top_publishers.csv", "publisher", eda.TopPublishers(records))
		}},
		{"articles_per_day", func() error {
			perDay := eda.ArticlesPerDay(records)
			if err := p.Writer.WriteCounts("articles_per_day.csv", "date", perDay); err != nil {
				return err
			}
			return p.Writer.PlotCountsLine("articles_per_day.png", "Articles per Day", perDay)
		}},
		{"articles_by_hour", func() error {
			hours := eda.ArticlesByHour(records)
			rows := make([]eda.CountRow, len(hours))
			for h, n := range hours {
				rows[h] = eda.CountRow{Key: fmt.Sprintf("%d", h), Count: n}
			}
			if err := p.Writer.WriteCounts("articles_by_hour.csv", "hour", rows); err != nil {
				return err
			}
			return p.Writer.PlotCountsBar("articles_by_hour.png", "Articles by Hour of Day", rows)
		}},
		{"articles_by_dow", func() error {
			byDow := eda.ArticlesByWeekday(records)
			if err := p.Writer.WriteCounts("articles_by_dow.csv", "day_of_week", byDow); err != nil {
				return err
			}
			return p.Writer.PlotCountsBar("articles_by_dow.png", "Articles by Day of Week", byDow)
		}},
		{"publisher_domains", func() error {
			return p.Writer.WriteCounts("publisher_domains.csv", "publisher_domain", eda.PublisherDomains(records))
		}},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			p.finishRun(ctx, run, err.Error())
			return fmt.Errorf("eda step %s: %w", step.name, err)
		}
	}

	p.finishRun(ctx, run, "")
	return nil
}

func (p *EDA) startRun(ctx context.Context, params EDAParams) *models.AnalysisRun {
	if p.Repo == nil {
		return nil
	}
	raw, _ := json.Marshal(params)
	run := &models.AnalysisRun{Task: "eda", Params: datatypes.JSON(raw), StartedAt: nowUTC()}
	if err := p.Repo.InsertRun(ctx, run); err != nil {
		p.Logger.Warn("record run failed", zap.Error(err))
		return nil
	}
	return run
}

func (p *EDA) finishRun(ctx context.Context, run *models.AnalysisRun, errText string) {
	if p.Repo == nil || run == nil {
		return
	}
	if err := p.Repo.FinishRun(ctx, run.ID, 0, 0, 0, errText); err != nil {
		p.Logger.Warn("finish run failed", zap.Error(err))
	}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
