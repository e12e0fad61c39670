package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/preprocess"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

var preprocessCmd = &cobra.Command{
	Use:   "preprocess",
	Short: "Clean the raw frame into an adjusted-close panel",
	Long: `Preprocess reads the raw frame, drops duplicate dates, fills gaps,
removes symbols with missing or constant data, and writes the dense
adjusted-close panel the selection pipeline consumes.`,
	RunE: runPreprocess,
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
}

func runPreprocess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	raw, err := market.ReadCSV(cfg.Data.FrameFile)
	if err != nil {
		return err
	}
	log.Info().Str("file", cfg.Data.FrameFile).Int("rows", raw.NumRows()).
		Int("columns", len(raw.Columns())).Msg("raw frame loaded")

	clean, report, err := preprocess.Clean(raw)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Data.CleanFile), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := market.WriteCSV(clean, cfg.Data.CleanFile); err != nil {
		return err
	}

	removalLog := filepath.Join(filepath.Dir(cfg.Data.CleanFile), "removed_symbols.log")
	if err := preprocess.WriteRemovalLog(report, removalLog); err != nil {
		return err
	}

	log.Info().Str("file", cfg.Data.CleanFile).
		Int("symbols", report.SymbolsKept).
		Int("duplicates_removed", report.DuplicateDatesRemoved).
		Int("cells_filled", report.MissingCellsFilled).
		Strs("removed_missing", report.RemovedMissing).
		Strs("removed_constant", report.RemovedConstant).
		Msg("clean panel written")
	return nil
}
