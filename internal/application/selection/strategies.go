package selection

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/domain/cluster"
	"github.com/karandeeps18/PairsTradingUsingMachineLearning/internal/domain/stats"
)

// Strategy generates and screens candidate pairs for one formation window.
type Strategy interface {
	Name() string
	SelectPairs(ctx context.Context, w Window, prices *PriceSet) ([]*PairStats, error)
}

// NoCluster screens every unordered pair in the universe.
type NoCluster struct {
	Evaluator *Evaluator
	Criteria  Criteria
}

func (s *NoCluster) Name() string { return MethodNoClustering }

func (s *NoCluster) SelectPairs(ctx context.Context, w Window, prices *PriceSet) ([]*PairStats, error) {
	crit := s.Criteria
	crit.HalfLifeMax = float64(w.TradingDays)

	candidates := s.Evaluator.Evaluate(ctx, prices, Pairs(prices.Tickers))
	selected := ApplyCohort(candidates, crit)
	Stamp(selected, MethodNoClustering, w)
	return selected, nil
}

// Theme screens pairs only within configured segment groups.
type Theme struct {
	Evaluator *Evaluator
	Criteria  Criteria
	Segments  map[string][]string
}

func (s *Theme) Name() string { return MethodTheme }

func (s *Theme) SelectPairs(ctx context.Context, w Window, prices *PriceSet) ([]*PairStats, error) {
	if len(s.Segments) == 0 {
		return nil, fmt.Errorf("theme strategy: no segments configured")
	}
	crit := s.Criteria
	crit.HalfLifeMax = float64(w.TradingDays)

	// Stable segment order keeps artifact row order reproducible.
	segments := make([]string, 0, len(s.Segments))
	for segment := range s.Segments {
		segments = append(segments, segment)
	}
	sort.Strings(segments)

	var selected []*PairStats
	for _, segment := range segments {
		tickers := s.Segments[segment]
		present := make([]string, 0, len(tickers))
		for _, t := range tickers {
			if _, ok := prices.Series[t]; ok {
				present = append(present, t)
			}
		}
		if len(present) < 2 {
			continue
		}
		candidates := s.Evaluator.Evaluate(ctx, prices, Pairs(present))
		for _, c := range candidates {
			c.Segment = segment
		}
		// The dispersion gate is local to the segment cohort.
		selected = append(selected, ApplyCohort(candidates, crit)...)
	}
	Stamp(selected, MethodTheme, w)
	return selected, nil
}

// Optics clusters assets by the principal components of their standardized
// returns, then screens pairs within each density cluster.
type Optics struct {
	Evaluator      *Evaluator
	Criteria       Criteria
	Components     int
	MinPts         int
	Xi             float64
	MinClusterFrac float64
}

func (s *Optics) Name() string { return MethodOptics }

func (s *Optics) SelectPairs(ctx context.Context, w Window, prices *PriceSet) ([]*PairStats, error) {
	labels, err := s.clusterAssets(prices)
	if err != nil {
		return nil, err
	}

	groups := make(map[int][]string)
	for i, ticker := range prices.Tickers {
		if labels[i] == cluster.NoiseLabel {
			continue
		}
		groups[labels[i]] = append(groups[labels[i]], ticker)
	}
	if len(groups) == 0 {
		log.Info().Time("formation_end", w.FormationEnd).Msg("optics found no clusters")
		return nil, nil
	}

	crit := s.Criteria
	crit.HalfLifeMax = float64(w.TradingDays)

	labelOrder := make([]int, 0, len(groups))
	for label := range groups {
		labelOrder = append(labelOrder, label)
	}
	sort.Ints(labelOrder)

	var selected []*PairStats
	for _, label := range labelOrder {
		tickers := groups[label]
		if len(tickers) < 2 {
			continue
		}
		candidates := s.Evaluator.Evaluate(ctx, prices, Pairs(tickers))
		for _, c := range candidates {
			c.Cluster = label
		}
		selected = append(selected, ApplyCohort(candidates, crit)...)
	}
	Stamp(selected, MethodOptics, w)
	return selected, nil
}

// clusterAssets returns one label per ticker, in prices.Tickers order.
func (s *Optics) clusterAssets(prices *PriceSet) ([]int, error) {
	nAssets := len(prices.Tickers)
	if nAssets < 2 {
		return nil, fmt.Errorf("optics strategy: need at least 2 assets")
	}

	returns := make(map[string][]float64, nAssets)
	nDays := -1
	for _, t := range prices.Tickers {
		r := stats.PctChange(prices.Series[t])
		returns[t] = r
		if nDays < 0 || len(r) < nDays {
			nDays = len(r)
		}
	}
	if nDays < 2 {
		return nil, fmt.Errorf("optics strategy: not enough return observations")
	}

	// days x assets, standardized per asset, then transposed so each asset
	// is one observation for the PCA.
	byDay := mat.NewDense(nDays, nAssets, nil)
	for j, t := range prices.Tickers {
		r := returns[t]
		for i := 0; i < nDays; i++ {
			byDay.Set(i, j, r[i])
		}
	}
	standardized := cluster.StandardizeColumns(byDay)
	byAsset := mat.DenseCopyOf(standardized.T())

	projected, err := cluster.PCAProject(byAsset, s.Components)
	if err != nil {
		return nil, fmt.Errorf("optics strategy: %w", err)
	}

	points := make([][]float64, nAssets)
	_, k := projected.Dims()
	for i := 0; i < nAssets; i++ {
		row := make([]float64, k)
		for j := 0; j < k; j++ {
			row[j] = projected.At(i, j)
		}
		points[i] = row
	}

	result := cluster.Optics(points, s.MinPts, s.Xi, s.MinClusterFrac)
	log.Debug().Int("clusters", result.NumClusters()).Int("assets", nAssets).Msg("optics clustering")
	return result.Labels, nil
}
