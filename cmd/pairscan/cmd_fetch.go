package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/config"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/infrastructure/cache"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/infrastructure/fetch"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download daily history for the configured universe",
	Long: `Fetch downloads daily OHLCV bars for every universe ticker, joins
them into one wide frame, and writes it to the configured frame file.
Responses are cached in Redis when the cache is enabled.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	universe, err := config.LoadUniverse(cfg.Data.UniverseFile)
	if err != nil {
		return err
	}
	start, err := config.ParseDate(cfg.Data.Start)
	if err != nil {
		return err
	}
	end, err := config.ParseDate(cfg.Data.End)
	if err != nil {
		return err
	}

	var quoteCache *cache.QuoteCache
	if cfg.Redis.Enabled {
		quoteCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer quoteCache.Close()
		if !quoteCache.Healthy(cmd.Context()) {
			log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable, fetching without cache")
			quoteCache = nil
		}
	}

	client := fetch.New(fetch.Config{
		BaseURL:      cfg.Data.BaseURL,
		TickerSuffix: cfg.Data.TickerSuffix,
		RPS:          cfg.Data.RateRPS,
		Burst:        cfg.Data.RateBurst,
		Timeout:      cfg.Data.Timeout,
	}, quoteCache)

	tickers := universe.Tickers()
	bars := make(map[string][]market.Bar, len(tickers))
	for i, ticker := range tickers {
		b, err := client.DailyBars(cmd.Context(), ticker, start, end)
		if err != nil {
			log.Error().Err(err).Str("ticker", ticker).Msg("fetch failed, skipping symbol")
			continue
		}
		bars[ticker] = b
		log.Info().Str("ticker", ticker).Int("bars", len(b)).
			Int("done", i+1).Int("total", len(tickers)).Msg("fetched")
	}
	if len(bars) == 0 {
		return fmt.Errorf("no symbols fetched")
	}

	frame := market.JoinBars(bars)
	if err := os.MkdirAll(filepath.Dir(cfg.Data.FrameFile), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := market.WriteCSV(frame, cfg.Data.FrameFile); err != nil {
		return err
	}

	if quoteCache != nil {
		stats := quoteCache.Stats()
		log.Info().Int64("hits", stats.Hits).Int64("misses", stats.Misses).Msg("cache stats")
	}
	log.Info().Str("file", cfg.Data.FrameFile).Int("symbols", len(bars)).
		Int("rows", frame.NumRows()).Msg("frame written")
	return nil
}
