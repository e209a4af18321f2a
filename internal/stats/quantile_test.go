package stats

import (
	"math/rand/v2"
	"slices"
	"testing"

	mstats "github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantileHF7(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		name     string
		p        float64
		expected float64
	}{
		{"Min", 0, 1},
		{"P10", 0.10, 1.9},
		{"P50", 0.50, 5.5},
		{"P90", 0.90, 9.1},
		{"Max", 1, 10},
		{"BelowRange", -0.5, 1},
		{"AboveRange", 1.5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, QuantileHF7(sorted, tt.p), 1e-12)
		})
	}
}

func TestQuantileHF7_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, QuantileHF7(nil, 0.5))
	assert.Equal(t, 4.0, QuantileHF7([]float64{4}, 0.9))
}

func TestQuantileHF7_MatchesMedian(t *testing.T) {
	data := []float64{12, 3, 7, 7, 41, 5, 9, 18}
	median, err := mstats.Median(data)
	require.NoError(t, err)

	sorted := slices.Clone(data)
	slices.Sort(sorted)
	assert.InDelta(t, median, QuantileHF7(sorted, 0.5), 1e-12)
}

func TestPercentiles_Monotone(t *testing.T) {
	sorted := []float64{3, 3, 4, 8, 15, 16, 23, 42}
	ps := Percentiles(sorted, []float64{0.1, 0.5, 0.9})
	require.Len(t, ps, 3)
	assert.LessOrEqual(t, ps[0], ps[1])
	assert.LessOrEqual(t, ps[1], ps[2])
}

func TestBootstrapPercentiles_BracketsPointEstimate(t *testing.T) {
	src := rand.New(rand.NewPCG(7, 11))
	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = float64(10 + src.IntN(40))
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	ps := []float64{0.1, 0.5, 0.9}
	cis := BootstrapPercentiles(sorted, ps, 500, rand.New(rand.NewPCG(1, 2)))
	require.Len(t, cis, 3)

	for i, p := range ps {
		point := QuantileHF7(sorted, p)
		assert.LessOrEqualf(t, cis[i].Lower, point+0.5, "p=%v", p)
		assert.GreaterOrEqualf(t, cis[i].Upper, point-0.5, "p=%v", p)
		assert.LessOrEqual(t, cis[i].Lower, cis[i].Upper)
	}
}

func TestBootstrapPercentiles_Deterministic(t *testing.T) {
	samples := []float64{1, 2, 2, 3, 5, 8, 13, 21}
	ps := []float64{0.5}

	a := BootstrapPercentiles(samples, ps, 200, rand.New(rand.NewPCG(42, 42)))
	b := BootstrapPercentiles(samples, ps, 200, rand.New(rand.NewPCG(42, 42)))
	assert.Equal(t, a, b)
}

func TestBootstrapPercentiles_Empty(t *testing.T) {
	cis := BootstrapPercentiles(nil, []float64{0.5}, 100, rand.New(rand.NewPCG(1, 1)))
	require.Len(t, cis, 1)
	assert.Equal(t, ConfidenceInterval{}, cis[0])

	cis = BootstrapPercentiles([]float64{1, 2}, []float64{0.5}, 0, rand.New(rand.NewPCG(1, 1)))
	assert.Equal(t, ConfidenceInterval{}, cis[0])
}
