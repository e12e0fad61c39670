package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/pipeline"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/config"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/infrastructure/db"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/interfaces/output"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

var selectFormat string

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Run the walk-forward pair selection",
	Long: `Select walks the formation/trading windows over the clean panel and
screens candidate pairs with every configured strategy. Selected pairs
land in the artifacts directory and, when the database is enabled, in
the selected_pairs table.`,
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().StringVar(&selectFormat, "format", output.FormatTable, "output format: table, json or csv")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	universe, err := config.LoadUniverse(cfg.Data.UniverseFile)
	if err != nil {
		return err
	}
	frame, err := market.ReadCSV(cfg.Data.CleanFile)
	if err != nil {
		return err
	}
	log.Info().Str("file", cfg.Data.CleanFile).Int("rows", frame.NumRows()).
		Int("columns", len(frame.Columns())).Msg("clean panel loaded")

	manager, err := db.NewManager(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer manager.Close()

	runner := &pipeline.Runner{
		Cfg:        cfg,
		Strategies: pipeline.Strategies(cfg, universe.Segments(), nil),
		Repo:       manager.Repository(),
	}
	result, err := runner.Run(cmd.Context(), frame)
	if err != nil {
		return err
	}

	if err := output.RenderPairs(os.Stdout, selectFormat, result.Selected); err != nil {
		return err
	}
	log.Info().Str("run_id", result.RunID).Str("pairs_csv", result.PairsCSV).
		Interface("by_method", result.ByMethod).Msg("selection complete")
	return nil
}
