package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"newslens/internal/models"
	"newslens/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertRun(ctx context.Context, item *models.AnalysisRun) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) FinishRun(ctx context.Context, id uint64, tickers, skipped, failed int, errText string) error {
	if s == nil || s.db == nil || id == 0 {
		return nil
	}
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&models.AnalysisRun{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"tickers":     tickers,
			"skipped":     skipped,
			"failed":      failed,
			"error":       errText,
			"finished_at": now,
		}).Error
}

func (s *Store) ListRuns(ctx context.Context, params repository.ListRunsParams) ([]models.AnalysisRun, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.AnalysisRun{})
	if params.Task != nil && strings.TrimSpace(*params.Task) != "" {
		query = query.Where("task = ?", strings.TrimSpace(*params.Task))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("started_at >= ?", *params.Since)
	}
	var items []models.AnalysisRun
	err := query.Order("started_at DESC").
		Limit(normalizeLimit(params.Limit, 50)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertCorrelationRow(ctx context.Context, item *models.CorrelationRow) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListCorrelationRows(ctx context.Context, params repository.ListCorrelationsParams) ([]models.CorrelationRow, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.CorrelationRow{})
	if params.Ticker != nil && strings.TrimSpace(*params.Ticker) != "" {
		query = query.Where("ticker = ?", strings.ToUpper(strings.TrimSpace(*params.Ticker)))
	}
	if params.RunID != nil && *params.RunID != 0 {
		query = query.Where("run_id = ?", *params.RunID)
	}
	var items []models.CorrelationRow
	err := query.Order("created_at DESC").
		Limit(normalizeLimit(params.Limit, 100)).
		Offset(normalizeOffset(params.Offset)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
