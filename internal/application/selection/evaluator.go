package selection

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// Evaluator computes pair statistics over a candidate list with a bounded
// worker pool. Skipped pairs (constant legs, stationary legs, short
// overlap) are dropped silently at debug level; other errors are counted.
type Evaluator struct {
	Params  StatsParams
	Workers int

	// OnEvaluated, when set, is called once per candidate with the accept
	// outcome; the pipeline uses it to feed metrics.
	OnEvaluated func(kept bool)
}

// Evaluate returns the statistics of the candidates that produced a result,
// in candidate order.
func (e *Evaluator) Evaluate(ctx context.Context, prices *PriceSet, pairs [][2]string) []*PairStats {
	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(pairs) && len(pairs) > 0 {
		workers = len(pairs)
	}

	results := make([]*PairStats, len(pairs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				pair := pairs[idx]
				s1, ok1 := prices.Series[pair[0]]
				s2, ok2 := prices.Series[pair[1]]
				if !ok1 || !ok2 {
					continue
				}
				stats, err := ComputePairStats(pair[0], pair[1], s1, s2, e.Params)
				if err != nil {
					if isSkip(err) {
						log.Debug().Str("pair", pair[0]+"-"+pair[1]).Err(err).Msg("pair skipped")
					} else {
						log.Warn().Str("pair", pair[0]+"-"+pair[1]).Err(err).Msg("pair statistics failed")
					}
					if e.OnEvaluated != nil {
						e.OnEvaluated(false)
					}
					continue
				}
				results[idx] = stats
				if e.OnEvaluated != nil {
					e.OnEvaluated(true)
				}
			}
		}()
	}

	for idx := range pairs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return compact(results)
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()
	return compact(results)
}

func isSkip(err error) bool {
	return errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrConstantSeries) ||
		errors.Is(err, ErrStationaryLeg)
}

func compact(results []*PairStats) []*PairStats {
	out := make([]*PairStats, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
