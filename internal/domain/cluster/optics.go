package cluster

import (
	"container/heap"
	"math"
)

// OpticsResult holds the OPTICS ordering and extracted flat clustering.
// Labels are indexed by point; noise points carry label -1.
type OpticsResult struct {
	Ordering     []int
	Reachability []float64 // indexed by ordering position
	Labels       []int
}

// NoiseLabel marks points assigned to no cluster.
const NoiseLabel = -1

// Optics runs density-based ordering with unbounded eps followed by xi-steep
// cluster extraction (Ankerst et al.). minPts counts neighbors excluding the
// point itself plus one, mirroring scikit-learn's min_samples.
// minClusterFrac bounds accepted clusters to at least that fraction of the
// sample (never below 2 points).
func Optics(points [][]float64, minPts int, xi, minClusterFrac float64) *OpticsResult {
	n := len(points)
	res := &OpticsResult{
		Ordering:     make([]int, 0, n),
		Reachability: make([]float64, 0, n),
		Labels:       make([]int, n),
	}
	for i := range res.Labels {
		res.Labels[i] = NoiseLabel
	}
	if n == 0 {
		return res
	}
	if minPts < 2 {
		minPts = 2
	}

	dist := distanceMatrix(points)
	core := coreDistances(dist, minPts)

	processed := make([]bool, n)
	reach := make([]float64, n)
	for i := range reach {
		reach[i] = math.Inf(1)
	}

	for start := 0; start < n; start++ {
		if processed[start] {
			continue
		}
		processed[start] = true
		res.Ordering = append(res.Ordering, start)
		res.Reachability = append(res.Reachability, math.Inf(1))

		seeds := &seedQueue{}
		heap.Init(seeds)
		updateSeeds(dist, core, start, processed, reach, seeds)

		for seeds.Len() > 0 {
			p := heap.Pop(seeds).(seedItem).point
			if processed[p] {
				continue
			}
			processed[p] = true
			res.Ordering = append(res.Ordering, p)
			res.Reachability = append(res.Reachability, reach[p])
			updateSeeds(dist, core, p, processed, reach, seeds)
		}
	}

	minSize := int(minClusterFrac * float64(n))
	if minSize < 2 {
		minSize = 2
	}
	clusters := xiClusters(res.Reachability, xi, minSize, minPts)
	assignLabels(res, clusters)
	return res
}

func distanceMatrix(points [][]float64) [][]float64 {
	n := len(points)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := euclidean(points[i], points[j])
			d[i][j], d[j][i] = v, v
		}
	}
	return d
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// coreDistances returns the distance to the (minPts-1)-th nearest other
// point, or +Inf when the sample is too small to be a core point.
func coreDistances(dist [][]float64, minPts int) []float64 {
	n := len(dist)
	core := make([]float64, n)
	need := minPts - 1
	buf := make([]float64, 0, n-1)
	for i := 0; i < n; i++ {
		buf = buf[:0]
		for j := 0; j < n; j++ {
			if j != i {
				buf = append(buf, dist[i][j])
			}
		}
		if len(buf) < need {
			core[i] = math.Inf(1)
			continue
		}
		core[i] = kthSmallest(buf, need)
	}
	return core
}

func kthSmallest(v []float64, k int) float64 {
	// Selection sort of the first k entries; point counts here are small.
	for i := 0; i < k; i++ {
		minIdx := i
		for j := i + 1; j < len(v); j++ {
			if v[j] < v[minIdx] {
				minIdx = j
			}
		}
		v[i], v[minIdx] = v[minIdx], v[i]
	}
	return v[k-1]
}

func updateSeeds(dist [][]float64, core []float64, center int, processed []bool, reach []float64, seeds *seedQueue) {
	if math.IsInf(core[center], 1) {
		return
	}
	for q := range dist[center] {
		if processed[q] {
			continue
		}
		newReach := math.Max(core[center], dist[center][q])
		if newReach < reach[q] {
			reach[q] = newReach
			heap.Push(seeds, seedItem{point: q, reach: newReach})
		}
	}
}

type seedItem struct {
	point int
	reach float64
}

// seedQueue is a min-heap on reachability. Stale entries are skipped on pop.
type seedQueue []seedItem

func (q seedQueue) Len() int            { return len(q) }
func (q seedQueue) Less(i, j int) bool  { return q[i].reach < q[j].reach }
func (q seedQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *seedQueue) Push(x interface{}) { *q = append(*q, x.(seedItem)) }
func (q *seedQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

type steepDownArea struct {
	start, end int
	mib        float64
}

// xiClusters extracts [start,end] ordering-position ranges from the
// reachability plot using xi-steep down/up area matching.
func xiClusters(reachability []float64, xi float64, minSize, minPts int) [][2]int {
	n := len(reachability)
	if n < 2 {
		return nil
	}
	ixi := 1 - xi

	// Sentinel simplifies the end-of-plot boundary.
	r := make([]float64, n+1)
	copy(r, reachability)
	r[n] = math.Inf(1)

	steepDown := func(i int) bool { return r[i]*ixi >= r[i+1] }
	steepUp := func(i int) bool { return r[i] <= r[i+1]*ixi }
	down := func(i int) bool { return r[i] > r[i+1] }
	up := func(i int) bool { return r[i] < r[i+1] }

	var sdas []*steepDownArea
	var clusters [][2]int
	mib := 0.0
	index := 0

	filterSDAs := func() {
		if math.IsInf(mib, 1) {
			sdas = sdas[:0]
			return
		}
		kept := sdas[:0]
		for _, d := range sdas {
			if mib <= r[d.start]*ixi {
				if mib > d.mib {
					d.mib = mib
				}
				kept = append(kept, d)
			}
		}
		sdas = kept
	}

	for index < n-1 {
		if r[index] > mib {
			mib = r[index]
		}
		switch {
		case steepDown(index):
			filterSDAs()
			start := index
			index = extendSteepRegion(index, n-1, minPts, steepDown, up)
			sdas = append(sdas, &steepDownArea{start: start, end: index})
			index++
			mib = r[index]
		case steepUp(index):
			filterSDAs()
			uStart := index
			index = extendSteepRegion(index, n-1, minPts, steepUp, down)
			uEnd := index
			index++
			mib = r[index]

			endReach := r[uEnd+1]
			var found [][2]int
			for _, d := range sdas {
				if d.mib > endReach*ixi {
					continue
				}
				cStart, cEnd := d.start, uEnd
				dMax := r[d.start]
				switch {
				case dMax*ixi >= endReach:
					for cStart < d.end && r[cStart+1] > endReach {
						cStart++
					}
				case endReach*ixi >= dMax:
					for cEnd > uStart && r[cEnd-1] > dMax {
						cEnd--
					}
				}
				if cEnd-cStart+1 < minSize || cStart > d.end || cEnd < uStart {
					continue
				}
				found = append(found, [2]int{cStart, cEnd})
			}
			// Innermost areas first so leaf clusters win label assignment.
			for i := len(found) - 1; i >= 0; i-- {
				clusters = append(clusters, found[i])
			}
		default:
			index++
		}
	}
	return clusters
}

// extendSteepRegion walks forward from index while points stay xi-steep,
// tolerating up to minPts-1 flat points, and returns the last steep index.
func extendSteepRegion(index, last, minPts int, steep, opposite func(int) bool) int {
	end := index
	flat := 0
	for i := index + 1; i <= last; i++ {
		switch {
		case steep(i):
			flat = 0
			end = i
		case opposite(i):
			return end
		default:
			flat++
			if flat >= minPts {
				return end
			}
		}
	}
	return end
}

func assignLabels(res *OpticsResult, clusters [][2]int) {
	n := len(res.Ordering)
	posLabels := make([]int, n)
	for i := range posLabels {
		posLabels[i] = NoiseLabel
	}
	next := 0
	for _, c := range clusters {
		taken := false
		for i := c[0]; i <= c[1] && i < n; i++ {
			if posLabels[i] != NoiseLabel {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		for i := c[0]; i <= c[1] && i < n; i++ {
			posLabels[i] = next
		}
		next++
	}
	for pos, label := range posLabels {
		res.Labels[res.Ordering[pos]] = label
	}
}

// NumClusters returns the count of distinct non-noise labels.
func (r *OpticsResult) NumClusters() int {
	seen := make(map[int]struct{})
	for _, l := range r.Labels {
		if l != NoiseLabel {
			seen[l] = struct{}{}
		}
	}
	return len(seen)
}
