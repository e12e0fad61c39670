package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/backtest"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/selection"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/infrastructure/db"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/interfaces/output"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/persistence"
)

var (
	backtestPairsFile string
	backtestRunID     string
	backtestFormat    string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Backtest a pairs CSV with the z-score spread strategy",
	Long: `Backtest replays each pair's trading window: the spread z-score is
measured against its formation distribution, positions open beyond the
entry threshold and close inside the exit threshold, and per-pair
Sharpe, Sortino and drawdown are reported.`,
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestPairsFile, "pairs", "", "pairs CSV to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestRunID, "run-id", "", "attach results to this run in the database")
	backtestCmd.Flags().StringVar(&backtestFormat, "format", output.FormatTable, "output format: table, json or csv")
	backtestCmd.MarkFlagRequired("pairs")
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	frame, err := market.ReadCSV(cfg.Data.CleanFile)
	if err != nil {
		return err
	}
	pairs, err := selection.ReadPairsCSV(backtestPairsFile)
	if err != nil {
		return err
	}
	log.Info().Int("pairs", len(pairs)).Str("file", backtestPairsFile).Msg("backtesting")

	runner := backtest.NewRunner(backtest.Config{
		EntryZ:             cfg.Backtest.EntryZ,
		ExitZ:              cfg.Backtest.ExitZ,
		TradingDaysPerYear: cfg.Backtest.TradingDaysPerYear,
		RiskFreeRate:       cfg.Backtest.RiskFreeRate,
	})
	summary, err := runner.Run(cmd.Context(), frame, pairs)
	if err != nil {
		return err
	}

	if err := output.RenderBacktest(os.Stdout, backtestFormat, summary); err != nil {
		return err
	}

	writer := backtest.NewWriter(cfg.Artifacts.Dir)
	if err := writer.WriteResults(summary); err != nil {
		return err
	}
	if err := writer.WriteReport(summary); err != nil {
		return err
	}
	if err := writer.WriteSummaryJSON(summary); err != nil {
		return err
	}
	log.Info().Str("dir", writer.OutputDir()).Msg("backtest artifacts written")

	if backtestRunID != "" {
		manager, err := db.NewManager(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer manager.Close()
		if repo := manager.Repository(); repo != nil {
			if err := persistBacktest(cmd, repo, summary); err != nil {
				return err
			}
			log.Info().Str("run_id", backtestRunID).Msg("backtest results persisted")
		} else {
			log.Warn().Msg("run-id given but the database is disabled")
		}
	}
	return nil
}

func persistBacktest(cmd *cobra.Command, repo *persistence.Repository, summary *backtest.Summary) error {
	records := make([]persistence.BacktestRecord, 0, summary.Tested)
	for _, p := range summary.Pairs {
		if p.SkipReason != "" {
			continue
		}
		records = append(records, persistence.BacktestRecord{
			RunID:       backtestRunID,
			Leg1:        p.Leg1,
			Leg2:        p.Leg2,
			Method:      p.Method,
			TotalReturn: p.TotalReturn,
			AnnReturn:   p.AnnReturn,
			Sharpe:      p.Sharpe,
			Sortino:     p.Sortino,
			MaxDrawdown: p.MaxDrawdown,
			WinRate:     p.WinRate,
			Trades:      p.Trades,
			Days:        p.Days,
		})
	}
	return repo.Backtests.InsertBatch(cmd.Context(), records)
}
