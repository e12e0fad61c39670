package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/pipeline"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/config"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/infrastructure/db"
	pairshttp "github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/interfaces/http"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
)

var serveRun bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring server",
	Long: `Serve exposes health, Prometheus metrics, run history and a websocket
progress stream. With --run it also executes the walk-forward selection
in the background, streaming progress to connected clients.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveRun, "run", false, "start a selection run in the background")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager, err := db.NewManager(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer manager.Close()

	metrics := pairshttp.NewMetricsRegistry()
	hub := pairshttp.NewHub()
	server := pairshttp.NewServer(cfg.Server.Addr, metrics, hub, manager.Repository())

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	if serveRun {
		go runBackgroundSelection(ctx, cfg, manager, metrics, hub)
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runBackgroundSelection(ctx context.Context, cfg *config.Config, manager *db.Manager, metrics *pairshttp.MetricsRegistry, hub *pairshttp.Hub) {
	universe, err := config.LoadUniverse(cfg.Data.UniverseFile)
	if err != nil {
		log.Error().Err(err).Msg("loading universe for background run")
		return
	}
	frame, err := market.ReadCSV(cfg.Data.CleanFile)
	if err != nil {
		log.Error().Err(err).Msg("loading clean panel for background run")
		return
	}

	runner := &pipeline.Runner{
		Cfg:        cfg,
		Strategies: pipeline.Strategies(cfg, universe.Segments(), metrics.PairEvaluated),
		Repo:       manager.Repository(),
		Observer:   metrics,
		OnProgress: hub.Broadcast,
	}
	if _, err := runner.Run(ctx, frame); err != nil {
		log.Error().Err(err).Msg("background selection run failed")
	}
}
