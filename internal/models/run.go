package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisRun records one pipeline execution when persistence is enabled.
type AnalysisRun struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	Task       string `gorm:"type:varchar(30);not null;index"`
	Params     datatypes.JSON
	Tickers    int    `gorm:"not null;default:0"`
	Skipped    int    `gorm:"not null;default:0"`
	Failed     int    `gorm:"not null;default:0"`
	Error      string `gorm:"type:text"`
	StartedAt  time.Time
	FinishedAt *time.Time
}

func (AnalysisRun) TableName() string {
	return "analysis_runs"
}

// CorrelationRow is a persisted CorrelationResult tied to a run.
type CorrelationRow struct {
	ID          uint64   `gorm:"primaryKey;autoIncrement"`
	RunID       uint64   `gorm:"not null;index"`
	Ticker      string   `gorm:"type:varchar(20);not null;index"`
	LagDays     int      `gorm:"not null;default:0"`
	NObs        int      `gorm:"not null;default:0"`
	Pearson     *float64 // nil when undefined
	ArtifactDir string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (CorrelationRow) TableName() string {
	return "correlation_rows"
}
