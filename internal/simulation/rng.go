package simulation

import (
	"math/rand/v2"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"hire-oracle/internal/stats"
)

// Source is the uniform [0,1) generator every sampler draws from.
type Source = stats.Uniform

// BootstrapSeedSuffix derives the resampling stream from the primary seed.
const BootstrapSeedSuffix = "-bootstrap"

// NewSeededSource returns a PCG generator whose state is fully determined by seed.
func NewSeededSource(seed string) *rand.Rand {
	hi := xxhash.Sum64String(seed)
	lo := xxhash.Sum64String(seed + "\x00pcg")
	return rand.New(rand.NewPCG(hi, lo))
}

// SeedFromInt renders an integer seed so that int and string seeds share one path.
func SeedFromInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
