package repository

import (
	"context"
	"time"

	"newslens/internal/models"
)

type ListRunsParams struct {
	Task   *string
	Since  *time.Time
	Limit  int
	Offset int
}

type ListCorrelationsParams struct {
	Ticker *string
	RunID  *uint64
	Limit  int
	Offset int
}

// Repository is the run-history store used by pipelines and the serve mode.
type Repository interface {
	InsertRun(ctx context.Context, item *models.AnalysisRun) error
	FinishRun(ctx context.Context, id uint64, tickers, skipped, failed int, errText string) error
	ListRuns(ctx context.Context, params ListRunsParams) ([]models.AnalysisRun, error)

	InsertCorrelationRow(ctx context.Context, item *models.CorrelationRow) error
	ListCorrelationRows(ctx context.Context, params ListCorrelationsParams) ([]models.CorrelationRow, error)
}
