// Package sqlstore implements the persistence repositories on sqlx, working
// against both Postgres and the embedded SQLite driver.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/persistence"
)

// schema returns DDL for the given driver. SQLite auto-increments an
// INTEGER PRIMARY KEY; Postgres needs BIGSERIAL.
func schema(driver string) []string {
	rowID := "INTEGER PRIMARY KEY"
	if driver == "postgres" {
		rowID = "BIGSERIAL PRIMARY KEY"
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP,
		status TEXT NOT NULL,
		windows INTEGER NOT NULL DEFAULT 0,
		pairs_selected INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS selected_pairs (
		id ` + rowID + `,
		run_id TEXT NOT NULL,
		leg1 TEXT NOT NULL,
		leg2 TEXT NOT NULL,
		method TEXT NOT NULL,
		cluster INTEGER NOT NULL DEFAULT -1,
		segment TEXT NOT NULL DEFAULT '',
		correlation DOUBLE PRECISION,
		coint_tstat DOUBLE PRECISION,
		coint_pvalue DOUBLE PRECISION,
		average_hurst DOUBLE PRECISION,
		half_life DOUBLE PRECISION,
		spread_std DOUBLE PRECISION,
		formation_start TIMESTAMP,
		formation_end TIMESTAMP,
		trading_start TIMESTAMP,
		trading_end TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS backtest_results (
		id ` + rowID + `,
		run_id TEXT NOT NULL,
		leg1 TEXT NOT NULL,
		leg2 TEXT NOT NULL,
		method TEXT NOT NULL,
		total_return DOUBLE PRECISION,
		ann_return DOUBLE PRECISION,
		sharpe DOUBLE PRECISION,
		sortino DOUBLE PRECISION,
		max_drawdown DOUBLE PRECISION,
		win_rate DOUBLE PRECISION,
		trades INTEGER,
		days INTEGER
	)`,
	}
}

// Migrate applies the schema idempotently.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema(db.DriverName()) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// NewRepository wires the sqlx-backed repositories.
func NewRepository(db *sqlx.DB, timeout time.Duration) *persistence.Repository {
	return &persistence.Repository{
		Runs:      &runsRepo{db: db, timeout: timeout},
		Pairs:     &pairsRepo{db: db, timeout: timeout},
		Backtests: &backtestRepo{db: db, timeout: timeout},
	}
}

type runsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func (r *runsRepo) Insert(ctx context.Context, run persistence.Run) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.Rebind(`
		INSERT INTO runs (id, started_at, finished_at, status, windows, pairs_selected)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.StartedAt, run.FinishedAt, run.Status, run.Windows, run.PairsSelected)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *runsRepo) Finish(ctx context.Context, id, status string, windows, pairsSelected int) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.Rebind(`
		UPDATE runs SET finished_at = ?, status = ?, windows = ?, pairs_selected = ?
		WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), status, windows, pairsSelected, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %s", id)
	}
	return nil
}

func (r *runsRepo) List(ctx context.Context, limit int) ([]persistence.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}
	query := r.db.Rebind(`
		SELECT id, started_at, finished_at, status, windows, pairs_selected
		FROM runs ORDER BY started_at DESC LIMIT ?`)
	var runs []persistence.Run
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

type pairsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func (r *pairsRepo) InsertBatch(ctx context.Context, pairs []persistence.SelectedPair) error {
	if len(pairs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO selected_pairs (
			run_id, leg1, leg2, method, cluster, segment,
			correlation, coint_tstat, coint_pvalue, average_hurst, half_life, spread_std,
			formation_start, formation_end, trading_start, trading_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx, query,
			p.RunID, p.Leg1, p.Leg2, p.Method, p.Cluster, p.Segment,
			p.Correlation, p.CointTStat, p.CointPValue, p.AverageHurst, p.HalfLife, p.SpreadStd,
			p.FormationStart, p.FormationEnd, p.TradingStart, p.TradingEnd); err != nil {
			return fmt.Errorf("insert pair %s-%s: %w", p.Leg1, p.Leg2, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *pairsRepo) ListByRun(ctx context.Context, runID string) ([]persistence.SelectedPair, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.Rebind(`
		SELECT id, run_id, leg1, leg2, method, cluster, segment,
			correlation, coint_tstat, coint_pvalue, average_hurst, half_life, spread_std,
			formation_start, formation_end, trading_start, trading_end
		FROM selected_pairs WHERE run_id = ? ORDER BY id`)
	var pairs []persistence.SelectedPair
	if err := r.db.SelectContext(ctx, &pairs, query, runID); err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	return pairs, nil
}

type backtestRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func (r *backtestRepo) InsertBatch(ctx context.Context, records []persistence.BacktestRecord) error {
	if len(records) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO backtest_results (
			run_id, leg1, leg2, method,
			total_return, ann_return, sharpe, sortino, max_drawdown, win_rate, trades, days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, b := range records {
		if _, err := tx.ExecContext(ctx, query,
			b.RunID, b.Leg1, b.Leg2, b.Method,
			b.TotalReturn, b.AnnReturn, b.Sharpe, b.Sortino, b.MaxDrawdown,
			b.WinRate, b.Trades, b.Days); err != nil {
			return fmt.Errorf("insert backtest %s-%s: %w", b.Leg1, b.Leg2, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *backtestRepo) ListByRun(ctx context.Context, runID string) ([]persistence.BacktestRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := r.db.Rebind(`
		SELECT id, run_id, leg1, leg2, method,
			total_return, ann_return, sharpe, sortino, max_drawdown, win_rate, trades, days
		FROM backtest_results WHERE run_id = ? ORDER BY id`)
	var records []persistence.BacktestRecord
	if err := r.db.SelectContext(ctx, &records, query, runID); err != nil {
		return nil, fmt.Errorf("list backtests: %w", err)
	}
	return records, nil
}
