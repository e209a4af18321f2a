package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
)

const (
	// DefaultPriorStrength is the pseudo-count on each side of the symmetric Beta prior.
	DefaultPriorStrength = 2.0

	credibleLowerP = 0.025
	credibleUpperP = 0.975

	MinGammaShape = 0.1
	MaxGammaShape = 100.0
	MinGammaRate  = 0.01
	MaxGammaRate  = 10.0

	fallbackMeanDays = 7.0
	minFitMean       = 1.0
	varianceFloor    = 0.1
)

// BetaPosterior is the posterior belief about a stage pass rate.
type BetaPosterior struct {
	Alpha    float64 `json:"alpha"`
	Beta     float64 `json:"beta"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Lower    float64 `json:"lower"` // 2.5th percentile
	Upper    float64 `json:"upper"` // 97.5th percentile
	N        int     `json:"n"`
}

// Width returns the width of the 95% credible interval.
func (b BetaPosterior) Width() float64 {
	return b.Upper - b.Lower
}

// GammaDistribution describes the number of days a candidate spends in a stage.
type GammaDistribution struct {
	Shape    float64 `json:"shape"`
	Rate     float64 `json:"rate"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	CV       float64 `json:"cv"`
	N        int     `json:"n"`
}

// ComputeBetaPosterior updates a symmetric Beta(priorStrength, priorStrength)
// prior with pass/fail counts.
func ComputeBetaPosterior(successes, total int, priorStrength float64) BetaPosterior {
	if priorStrength <= 0 || math.IsNaN(priorStrength) {
		priorStrength = DefaultPriorStrength
	}
	if total < 0 {
		total = 0
	}
	if successes < 0 {
		successes = 0
	}
	if successes > total {
		successes = total
	}

	alpha := priorStrength + float64(successes)
	beta := priorStrength + float64(total-successes)
	sum := alpha + beta

	mean := alpha / sum
	variance := (alpha * beta) / (sum * sum * (sum + 1))

	lower := InverseIncompleteBeta(credibleLowerP, alpha, beta)
	upper := InverseIncompleteBeta(credibleUpperP, alpha, beta)
	lower = math.Min(lower, mean)
	upper = math.Max(upper, mean)

	return BetaPosterior{
		Alpha:    alpha,
		Beta:     beta,
		Mean:     mean,
		Variance: variance,
		Lower:    lower,
		Upper:    upper,
		N:        total,
	}
}

// FitGammaDistribution fits a Gamma distribution to observed stage durations
// by the method of moments. Empty input yields an exponential with a 7 day mean.
func FitGammaDistribution(durations []float64) GammaDistribution {
	if len(durations) == 0 {
		return newGamma(1, 1/fallbackMeanDays, 0)
	}

	mean, err := mstats.Mean(durations)
	if err != nil || math.IsNaN(mean) {
		mean = fallbackMeanDays
	}
	variance := 0.0
	if len(durations) > 1 {
		if v, err := mstats.SampleVariance(durations); err == nil && !math.IsNaN(v) {
			variance = v
		}
	}

	mean = math.Max(mean, minFitMean)
	// Near-constant samples would otherwise produce an unbounded shape.
	variance = math.Max(variance, mean*varianceFloor)

	return newGamma(mean*mean/variance, mean/variance, len(durations))
}

// GammaFromMedian builds a duration prior from a typical stage length and a
// coefficient of variation. n records how many real observations backed it.
func GammaFromMedian(medianDays, cv float64, n int) GammaDistribution {
	if medianDays <= 0 || math.IsNaN(medianDays) {
		medianDays = fallbackMeanDays
	}
	if cv <= 0 || math.IsNaN(cv) {
		cv = 1
	}
	shape := 1 / (cv * cv)
	return newGamma(shape, shape/medianDays, n)
}

func newGamma(shape, rate float64, n int) GammaDistribution {
	shape = clamp(shape, MinGammaShape, MaxGammaShape)
	rate = clamp(rate, MinGammaRate, MaxGammaRate)
	return GammaDistribution{
		Shape:    shape,
		Rate:     rate,
		Mean:     shape / rate,
		Variance: shape / (rate * rate),
		CV:       1 / math.Sqrt(shape),
		N:        n,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
