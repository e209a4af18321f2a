package stats

import (
	"math"
	"slices"
)

// Uniform yields uniformly distributed values in [0, 1).
type Uniform interface {
	Float64() float64
}

// ConfidenceInterval bounds a bootstrapped statistic.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// QuantileHF7 returns the p-quantile of an ascending slice using the
// Hyndman-Fan Type 7 linear interpolation. Empty input returns 0.
func QuantileHF7(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	p = math.Max(0, math.Min(1, p))

	h := float64(n-1) * p
	j := int(math.Floor(h))
	if j > n-1 {
		j = n - 1
	}
	k := j + 1
	if k > n-1 {
		k = n - 1
	}
	gamma := h - float64(j)

	return (1-gamma)*sorted[j] + gamma*sorted[k]
}

// Percentiles evaluates several HF7 quantiles over an ascending slice.
func Percentiles(sorted []float64, ps []float64) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = QuantileHF7(sorted, p)
	}
	return out
}

// BootstrapPercentiles resamples an ascending slice with replacement and
// returns a 95% interval for each requested HF7 quantile, index-aligned with ps.
//
// A resample of sorted data is fully described by how often each index was
// drawn, so each resample's order statistics are read from a count vector
// instead of sorting a copy.
func BootstrapPercentiles(sorted []float64, ps []float64, resamples int, src Uniform) []ConfidenceInterval {
	out := make([]ConfidenceInterval, len(ps))
	n := len(sorted)
	if n == 0 || resamples <= 0 {
		return out
	}

	dist := make([][]float64, len(ps))
	for i := range dist {
		dist[i] = make([]float64, resamples)
	}

	counts := make([]int, n)
	for b := 0; b < resamples; b++ {
		clear(counts)
		for i := 0; i < n; i++ {
			idx := int(src.Float64() * float64(n))
			if idx >= n {
				idx = n - 1
			}
			counts[idx]++
		}
		for i, p := range ps {
			dist[i][b] = resampleQuantile(sorted, counts, p)
		}
	}

	lo := int(math.Floor(credibleLowerP * float64(resamples)))
	hi := int(math.Floor(credibleUpperP * float64(resamples)))
	if hi > resamples-1 {
		hi = resamples - 1
	}

	for i := range ps {
		slices.Sort(dist[i])
		out[i] = ConfidenceInterval{Lower: dist[i][lo], Upper: dist[i][hi]}
	}
	return out
}

// resampleQuantile is QuantileHF7 over the resample encoded by counts.
func resampleQuantile(sorted []float64, counts []int, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	p = math.Max(0, math.Min(1, p))
	h := float64(n-1) * p
	j := int(math.Floor(h))
	k := min(j+1, n-1)
	gamma := h - float64(j)
	return (1-gamma)*valueAtRank(sorted, counts, j) + gamma*valueAtRank(sorted, counts, k)
}

// valueAtRank returns the rank-th smallest (0-based) value of the resample.
func valueAtRank(sorted []float64, counts []int, rank int) float64 {
	seen := 0
	for i, c := range counts {
		seen += c
		if seen > rank {
			return sorted[i]
		}
	}
	return sorted[len(sorted)-1]
}
