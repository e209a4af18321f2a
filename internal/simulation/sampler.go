package simulation

import (
	"math"

	"hire-oracle/internal/stats"
)

// NormalSample draws a standard normal variate with the Box-Muller transform.
func NormalSample(src Source) float64 {
	u1 := 1 - src.Float64() // (0,1] keeps the log finite
	u2 := src.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// SampleGamma draws from Gamma(shape, rate) with Marsaglia-Tsang. Shapes below
// one are boosted through Gamma(1+shape) * U^(1/shape).
func SampleGamma(src Source, shape, rate float64) float64 {
	if shape <= 0 || math.IsNaN(shape) {
		shape = stats.MinGammaShape
	}
	if rate <= 0 || math.IsNaN(rate) {
		rate = stats.MinGammaRate
	}

	if shape < 1 {
		g := SampleGamma(src, 1+shape, rate)
		u := src.Float64()
		return g * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := NormalSample(src)
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := src.Float64()

		if u < 1-0.0331*x*x*x*x {
			return d * v / rate
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v / rate
		}
	}
}

// SampleBeta draws from Beta(alpha, beta) as X/(X+Y) of two unit-rate Gammas.
func SampleBeta(src Source, alpha, beta float64) float64 {
	x := SampleGamma(src, alpha, 1)
	y := SampleGamma(src, beta, 1)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}
