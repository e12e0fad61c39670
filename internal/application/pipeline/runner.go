package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/application/selection"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/artifacts"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/config"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/market"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/persistence"
)

// Observer receives pipeline lifecycle callbacks; the HTTP metrics registry
// implements it. All methods may be called from the run goroutine only.
type Observer interface {
	RunStarted(runID string)
	WindowDone(method string, selected int, elapsed time.Duration)
	PairEvaluated(method string, kept bool)
	RunFinished(runID, status string)
}

// Progress is a streamed pipeline status event.
type Progress struct {
	RunID    string    `json:"run_id"`
	Stage    string    `json:"stage"`
	Window   int       `json:"window,omitempty"`
	Windows  int       `json:"windows,omitempty"`
	Method   string    `json:"method,omitempty"`
	Selected int       `json:"selected,omitempty"`
	Message  string    `json:"message,omitempty"`
	Time     time.Time `json:"time"`
}

// Result is the outcome of one walk-forward run.
type Result struct {
	RunID    string
	Windows  []selection.Window
	Selected []*selection.PairStats
	ByMethod map[string]int
	PairsCSV string
}

// Runner walks the formation/trading windows and runs every configured
// strategy on each. Repo, Observer and OnProgress are optional.
type Runner struct {
	Cfg        *config.Config
	Strategies []selection.Strategy
	Repo       *persistence.Repository
	Observer   Observer
	OnProgress func(Progress)
}

// Strategies builds the configured selection strategies. Segments come
// from the universe file and only matter for the theme strategy.
func Strategies(cfg *config.Config, segments map[string][]string, onEvaluated func(method string, kept bool)) []selection.Strategy {
	crit := selection.Criteria{
		CorrelationMin: cfg.Selection.CorrelationMin,
		CointPValueMax: cfg.Selection.CointPValueMax,
		HurstMax:       cfg.Selection.HurstMax,
		HalfLifeMin:    cfg.Selection.HalfLifeMinDays,
	}
	evaluator := func(method string) *selection.Evaluator {
		e := &selection.Evaluator{
			Params: selection.StatsParams{
				Significance: cfg.Selection.Significance,
				HurstLags:    cfg.Selection.HurstLags,
			},
			Workers: cfg.Selection.Workers,
		}
		if onEvaluated != nil {
			e.OnEvaluated = func(kept bool) { onEvaluated(method, kept) }
		}
		return e
	}

	var strategies []selection.Strategy
	for _, name := range cfg.Selection.Strategies {
		switch name {
		case "none":
			strategies = append(strategies, &selection.NoCluster{
				Evaluator: evaluator(selection.MethodNoClustering),
				Criteria:  crit,
			})
		case "theme":
			strategies = append(strategies, &selection.Theme{
				Evaluator: evaluator(selection.MethodTheme),
				Criteria:  crit,
				Segments:  segments,
			})
		case "optics":
			strategies = append(strategies, &selection.Optics{
				Evaluator:      evaluator(selection.MethodOptics),
				Criteria:       crit,
				Components:     cfg.Selection.PCAComponents,
				MinPts:         cfg.Selection.OpticsMinPts,
				Xi:             cfg.Selection.OpticsXi,
				MinClusterFrac: cfg.Selection.OpticsMinClusterFrac,
			})
		}
	}
	return strategies
}

// Run executes the full walk-forward selection over the cleaned frame.
func (r *Runner) Run(ctx context.Context, frame *market.Frame) (*Result, error) {
	runID := uuid.New().String()
	result := &Result{
		RunID:    runID,
		ByMethod: make(map[string]int),
	}

	start, err := config.ParseDate(r.Cfg.Data.Start)
	if err != nil {
		return nil, err
	}
	end, err := config.ParseDate(r.Cfg.Data.End)
	if err != nil {
		return nil, err
	}
	windows, err := ComputeWindows(frame, r.Cfg.Windows, start, end)
	if err != nil {
		return nil, err
	}
	result.Windows = windows

	log.Info().Str("run_id", runID).Int("windows", len(windows)).
		Int("strategies", len(r.Strategies)).Msg("starting walk-forward run")
	if r.Observer != nil {
		r.Observer.RunStarted(runID)
	}
	r.progress(Progress{RunID: runID, Stage: "start", Windows: len(windows)})

	if err := r.insertRun(ctx, runID); err != nil {
		return nil, err
	}

	runErr := r.walk(ctx, frame, windows, result)

	status := persistence.RunStatusComplete
	if runErr != nil {
		status = persistence.RunStatusFailed
	}
	if err := r.finishRun(ctx, runID, status, len(windows), len(result.Selected)); err != nil {
		log.Error().Err(err).Msg("recording run completion")
	}
	if r.Observer != nil {
		r.Observer.RunFinished(runID, status)
	}
	r.progress(Progress{RunID: runID, Stage: "done", Selected: len(result.Selected), Message: status})
	if runErr != nil {
		return nil, runErr
	}

	if err := r.writeArtifacts(result); err != nil {
		return nil, err
	}
	if err := r.persistPairs(ctx, result); err != nil {
		return nil, err
	}

	log.Info().Str("run_id", runID).Int("selected", len(result.Selected)).Msg("walk-forward run complete")
	return result, nil
}

func (r *Runner) walk(ctx context.Context, frame *market.Frame, windows []selection.Window, result *Result) error {
	for i, w := range windows {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		formation := frame.SliceDates(w.FormationStart, w.FormationEnd)
		prices := selection.ExtractAdjClose(formation)
		if len(prices.Tickers) < 2 {
			log.Warn().Time("formation_start", w.FormationStart).Msg("window has fewer than 2 symbols, skipping")
			continue
		}

		for _, strat := range r.Strategies {
			began := time.Now()
			selected, err := strat.SelectPairs(ctx, w, prices)
			if err != nil {
				return fmt.Errorf("window %d %s: %w", i, strat.Name(), err)
			}
			elapsed := time.Since(began)

			result.Selected = append(result.Selected, selected...)
			result.ByMethod[strat.Name()] += len(selected)
			if r.Observer != nil {
				r.Observer.WindowDone(strat.Name(), len(selected), elapsed)
			}
			r.progress(Progress{
				RunID: result.RunID, Stage: "window", Window: i + 1, Windows: len(windows),
				Method: strat.Name(), Selected: len(selected),
			})
			log.Info().Int("window", i+1).Int("windows", len(windows)).
				Str("method", strat.Name()).Int("selected", len(selected)).
				Dur("elapsed", elapsed).Msg("window screened")
		}
	}
	return nil
}

func (r *Runner) writeArtifacts(result *Result) error {
	writer := artifacts.NewWriter(r.Cfg.Artifacts.Dir, result.RunID)
	if err := os.MkdirAll(writer.Dir(), 0755); err != nil {
		return fmt.Errorf("ensure artifact dir: %w", err)
	}

	result.PairsCSV = filepath.Join(writer.Dir(), "pairs.csv")
	if err := selection.WritePairsCSV(result.Selected, result.PairsCSV); err != nil {
		return fmt.Errorf("write pairs artifact: %w", err)
	}

	summary := map[string]interface{}{
		"run_id":    result.RunID,
		"windows":   len(result.Windows),
		"selected":  len(result.Selected),
		"by_method": result.ByMethod,
	}
	if _, err := writer.WriteJSON("run-summary", summary); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

func (r *Runner) insertRun(ctx context.Context, runID string) error {
	if r.Repo == nil {
		return nil
	}
	run := persistence.Run{
		ID:        runID,
		StartedAt: time.Now().UTC(),
		Status:    persistence.RunStatusRunning,
	}
	if err := r.Repo.Runs.Insert(ctx, run); err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

func (r *Runner) finishRun(ctx context.Context, runID, status string, windows, selected int) error {
	if r.Repo == nil {
		return nil
	}
	return r.Repo.Runs.Finish(ctx, runID, status, windows, selected)
}

func (r *Runner) persistPairs(ctx context.Context, result *Result) error {
	if r.Repo == nil || len(result.Selected) == 0 {
		return nil
	}
	rows := make([]persistence.SelectedPair, 0, len(result.Selected))
	for _, s := range result.Selected {
		rows = append(rows, persistence.SelectedPair{
			RunID:          result.RunID,
			Leg1:           s.Leg1,
			Leg2:           s.Leg2,
			Method:         s.Method,
			Cluster:        s.Cluster,
			Segment:        s.Segment,
			Correlation:    s.Correlation,
			CointTStat:     s.CointTStat,
			CointPValue:    s.CointPValue,
			AverageHurst:   s.AverageHurst,
			HalfLife:       s.HalfLife,
			SpreadStd:      s.SpreadStd,
			FormationStart: s.FormationStart,
			FormationEnd:   s.FormationEnd,
			TradingStart:   s.TradingStart,
			TradingEnd:     s.TradingEnd,
		})
	}
	if err := r.Repo.Pairs.InsertBatch(ctx, rows); err != nil {
		return fmt.Errorf("persist selected pairs: %w", err)
	}
	return nil
}

func (r *Runner) progress(p Progress) {
	if r.OnProgress == nil {
		return
	}
	p.Time = time.Now().UTC()
	r.OnProgress(p)
}
