package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/persistence"
)

func mockRepo(t *testing.T) (*persistence.Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock"), time.Second), mock
}

func TestMigrateAppliesSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	for range schema("sqlmock") {
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	if err := Migrate(context.Background(), sqlx.NewDb(db, "sqlmock")); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSchemaDriverRowID(t *testing.T) {
	pg := schema("postgres")[1]
	lite := schema("sqlite")[1]
	if pg == lite {
		t.Error("postgres and sqlite DDL should differ in the row id column")
	}
}

func TestRunsInsertAndFinish(t *testing.T) {
	repo, mock := mockRepo(t)
	ctx := context.Background()

	run := persistence.Run{
		ID:        "run-1",
		StartedAt: time.Now().UTC(),
		Status:    persistence.RunStatusRunning,
	}
	mock.ExpectExec("INSERT INTO runs").
		WithArgs(run.ID, run.StartedAt, run.FinishedAt, run.Status, 0, 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.Runs.Insert(ctx, run); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	mock.ExpectExec("UPDATE runs SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Runs.Finish(ctx, "run-1", persistence.RunStatusComplete, 5, 12); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunsFinishUnknownRun(t *testing.T) {
	repo, mock := mockRepo(t)

	mock.ExpectExec("UPDATE runs SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Runs.Finish(context.Background(), "missing", persistence.RunStatusFailed, 0, 0); err == nil {
		t.Error("expected error for unknown run id")
	}
}

func TestRunsList(t *testing.T) {
	repo, mock := mockRepo(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "started_at", "finished_at", "status", "windows", "pairs_selected"}).
		AddRow("run-2", now, now, persistence.RunStatusComplete, 5, 12).
		AddRow("run-1", now.Add(-time.Hour), now, persistence.RunStatusComplete, 5, 9)
	mock.ExpectQuery("SELECT id, started_at").WithArgs(50).WillReturnRows(rows)

	runs, err := repo.Runs.List(context.Background(), 0) // 0 falls back to 50
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestPairsInsertBatch(t *testing.T) {
	repo, mock := mockRepo(t)

	pairs := []persistence.SelectedPair{
		{RunID: "run-1", Leg1: "XLE", Leg2: "VDE", Method: "nocluster", Correlation: 0.95},
		{RunID: "run-1", Leg1: "XOP", Leg2: "IEO", Method: "theme", Segment: "exploration"},
	}

	mock.ExpectBegin()
	for range pairs {
		mock.ExpectExec("INSERT INTO selected_pairs").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	mock.ExpectCommit()

	if err := repo.Pairs.InsertBatch(context.Background(), pairs); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPairsInsertBatchRollsBack(t *testing.T) {
	repo, mock := mockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO selected_pairs").WillReturnError(fmt.Errorf("disk full"))
	mock.ExpectRollback()

	pairs := []persistence.SelectedPair{{RunID: "run-1", Leg1: "XLE", Leg2: "VDE"}}
	if err := repo.Pairs.InsertBatch(context.Background(), pairs); err == nil {
		t.Error("expected error to propagate")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPairsInsertBatchEmpty(t *testing.T) {
	repo, mock := mockRepo(t)
	// No expectations: an empty batch must not touch the database.
	if err := repo.Pairs.InsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("empty batch failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestBacktestsRoundTrip(t *testing.T) {
	repo, mock := mockRepo(t)
	ctx := context.Background()

	records := []persistence.BacktestRecord{
		{RunID: "run-1", Leg1: "XLE", Leg2: "VDE", Method: "nocluster", Sharpe: 1.2, Trades: 4, Days: 120},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO backtest_results").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	if err := repo.Backtests.InsertBatch(ctx, records); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	rows := sqlmock.NewRows([]string{
		"id", "run_id", "leg1", "leg2", "method",
		"total_return", "ann_return", "sharpe", "sortino", "max_drawdown", "win_rate", "trades", "days",
	}).AddRow(1, "run-1", "XLE", "VDE", "nocluster", 0.08, 0.17, 1.2, 1.5, 0.03, 0.75, 4, 120)
	mock.ExpectQuery("SELECT id, run_id").WithArgs("run-1").WillReturnRows(rows)

	got, err := repo.Backtests.ListByRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(got) != 1 || got[0].Sharpe != 1.2 || got[0].Trades != 4 {
		t.Errorf("records = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
