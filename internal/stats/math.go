package stats

import (
	"slices"

	mstats "github.com/montanaflynn/stats"
)

// CalculateMedianContinuous finds the median value in a slice of floats.
// Empty input returns 0.
func CalculateMedianContinuous(values []float64) float64 {
	median, err := mstats.Median(values)
	if err != nil {
		return 0
	}
	return median
}

// TailRatio returns P98/P50 of a set of durations, a fat-tail indicator.
// A zero median with a non-zero tail is reported as 10.
func TailRatio(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	p50 := QuantileHF7(temp, 0.50)
	p98 := QuantileHF7(temp, 0.98)
	if p50 == 0 {
		if p98 > 0 {
			return 10.0
		}
		return 1.0
	}
	return p98 / p50
}
