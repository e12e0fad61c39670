// Command pairscan runs the pairs trading research pipeline: fetch,
// preprocess, select, filter, backtest, and a monitoring server.
package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/config"
)

const (
	appName = "pairscan"
	version = "v1.2.0"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     appName,
	Short:   "Pairs trading candidate selection and backtesting",
	Version: version,
	Long: `pairscan screens an equity universe for tradable pairs.

The pipeline walks formation/trading windows over daily history, screens
candidate pairs on cointegration, mean reversion and dispersion, and
backtests the survivors with a z-score spread strategy. Candidates are
generated three ways: the full universe, segment groups, and OPTICS
clusters over the principal components of standardized returns.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	// Accept --run_id as well as --run-id, matching the config key style.
	rootCmd.PersistentFlags().SetNormalizeFunc(normalizeFlag)
}

func normalizeFlag(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func setupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func main() {
	// Credentials may live in a local .env during research runs.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
