package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/selection"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/interfaces/output"
)

var (
	filterIn     string
	filterOut    string
	filterFormat string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Apply the strict best-pairs filter to a selection artifact",
	Long: `Filter re-screens a pairs CSV with the tighter thresholds used to
pick the final trading book: higher correlation, deeper cointegration,
and a half-life inside the configured band.`,
	RunE: runFilter,
}

func init() {
	filterCmd.Flags().StringVar(&filterIn, "in", "", "pairs CSV to filter (required)")
	filterCmd.Flags().StringVar(&filterOut, "out", "", "write surviving pairs here (optional)")
	filterCmd.Flags().StringVar(&filterFormat, "format", output.FormatTable, "output format: table, json or csv")
	filterCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pairs, err := selection.ReadPairsCSV(filterIn)
	if err != nil {
		return err
	}

	best := selection.FilterBest(pairs, selection.BestPairsCriteria{
		CorrelationMin: cfg.Filter.CorrelationMin,
		CointTStatMax:  cfg.Filter.CointTStatMax,
		HurstMax:       cfg.Filter.HurstMax,
		HalfLifeMin:    cfg.Filter.HalfLifeMinDays,
		HalfLifeMax:    cfg.Filter.HalfLifeMaxDays,
	})

	if err := output.RenderPairs(os.Stdout, filterFormat, best); err != nil {
		return err
	}
	log.Info().Int("in", len(pairs)).Int("kept", len(best)).Msg("best-pairs filter applied")

	if filterOut != "" {
		if err := selection.WritePairsCSV(best, filterOut); err != nil {
			return err
		}
		log.Info().Str("file", filterOut).Msg("filtered pairs written")
	}
	return nil
}
