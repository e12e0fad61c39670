// Package persistence defines the repository contracts for storing run
// history, selected pairs, and backtest results.
package persistence

import (
	"context"
	"time"
)

// Run records one walk-forward pipeline execution.
type Run struct {
	ID            string    `db:"id" json:"id"`
	StartedAt     time.Time `db:"started_at" json:"started_at"`
	FinishedAt    time.Time `db:"finished_at" json:"finished_at"`
	Status        string    `db:"status" json:"status"`
	Windows       int       `db:"windows" json:"windows"`
	PairsSelected int       `db:"pairs_selected" json:"pairs_selected"`
}

// Run statuses.
const (
	RunStatusRunning  = "running"
	RunStatusComplete = "complete"
	RunStatusFailed   = "failed"
)

// SelectedPair is a persisted selection result for one formation window.
type SelectedPair struct {
	ID             int64     `db:"id" json:"id"`
	RunID          string    `db:"run_id" json:"run_id"`
	Leg1           string    `db:"leg1" json:"leg1"`
	Leg2           string    `db:"leg2" json:"leg2"`
	Method         string    `db:"method" json:"method"`
	Cluster        int       `db:"cluster" json:"cluster"`
	Segment        string    `db:"segment" json:"segment"`
	Correlation    float64   `db:"correlation" json:"correlation"`
	CointTStat     float64   `db:"coint_tstat" json:"coint_tstat"`
	CointPValue    float64   `db:"coint_pvalue" json:"coint_pvalue"`
	AverageHurst   float64   `db:"average_hurst" json:"average_hurst"`
	HalfLife       float64   `db:"half_life" json:"half_life"`
	SpreadStd      float64   `db:"spread_std" json:"spread_std"`
	FormationStart time.Time `db:"formation_start" json:"formation_start"`
	FormationEnd   time.Time `db:"formation_end" json:"formation_end"`
	TradingStart   time.Time `db:"trading_start" json:"trading_start"`
	TradingEnd     time.Time `db:"trading_end" json:"trading_end"`
}

// BacktestRecord is a persisted per-pair backtest outcome.
type BacktestRecord struct {
	ID          int64   `db:"id" json:"id"`
	RunID       string  `db:"run_id" json:"run_id"`
	Leg1        string  `db:"leg1" json:"leg1"`
	Leg2        string  `db:"leg2" json:"leg2"`
	Method      string  `db:"method" json:"method"`
	TotalReturn float64 `db:"total_return" json:"total_return"`
	AnnReturn   float64 `db:"ann_return" json:"ann_return"`
	Sharpe      float64 `db:"sharpe" json:"sharpe"`
	Sortino     float64 `db:"sortino" json:"sortino"`
	MaxDrawdown float64 `db:"max_drawdown" json:"max_drawdown"`
	WinRate     float64 `db:"win_rate" json:"win_rate"`
	Trades      int     `db:"trades" json:"trades"`
	Days        int     `db:"days" json:"days"`
}

// RunsRepo stores pipeline run metadata.
type RunsRepo interface {
	Insert(ctx context.Context, run Run) error
	Finish(ctx context.Context, id, status string, windows, pairsSelected int) error
	List(ctx context.Context, limit int) ([]Run, error)
}

// PairsRepo stores selected pairs.
type PairsRepo interface {
	InsertBatch(ctx context.Context, pairs []SelectedPair) error
	ListByRun(ctx context.Context, runID string) ([]SelectedPair, error)
}

// BacktestRepo stores backtest outcomes.
type BacktestRepo interface {
	InsertBatch(ctx context.Context, records []BacktestRecord) error
	ListByRun(ctx context.Context, runID string) ([]BacktestRecord, error)
}

// Repository bundles the repos behind one handle.
type Repository struct {
	Runs      RunsRepo
	Pairs     PairsRepo
	Backtests BacktestRepo
}
