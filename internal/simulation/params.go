package simulation

import (
	"slices"

	"hire-oracle/internal/stats"
)

// DefaultMinSampleSize is the number of observed durations needed before a
// stage's own Gamma fit replaces the global prior.
const DefaultMinSampleSize = 5

// StageHistoricalData aggregates past transitions through one stage.
type StageHistoricalData struct {
	Stage     string    `json:"stage" yaml:"stage" jsonschema:"stage label, canonical (SCREEN, HM_SCREEN, ONSITE, OFFER) or organisation-specific"`
	Entered   int       `json:"entered" yaml:"entered" jsonschema:"number of candidates that entered the stage"`
	Passed    int       `json:"passed" yaml:"passed" jsonschema:"number of candidates that advanced past the stage"`
	Durations []float64 `json:"durations,omitempty" yaml:"durations,omitempty" jsonschema:"observed days spent in the stage"`
}

// StageParams bundles the conversion and duration beliefs for one stage.
type StageParams struct {
	Stage          Stage                   `json:"stage"`
	ConversionRate stats.BetaPosterior     `json:"conversion_rate"`
	Duration       stats.GammaDistribution `json:"duration"`
	PriorOnly      bool                    `json:"prior_only,omitempty"`
}

// StageParamTable holds the parameters of every stage a forecast can visit.
// It is built once per forecast and never mutated afterwards.
type StageParamTable map[Stage]StageParams

// Stages returns the table's stages with funnel stages first, in funnel order.
func (t StageParamTable) Stages() []Stage {
	out := make([]Stage, 0, len(t))
	for _, s := range FunnelStages {
		if _, ok := t[s]; ok {
			out = append(out, s)
		}
	}
	var extra []Stage
	for s := range t {
		if _, inFunnel := FunnelIndex(s); !inFunnel || s == StageApplied {
			extra = append(extra, s)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// BuildStageParams merges per-stage history with the global priors. Records
// whose labels normalise to the same stage are pooled. Every funnel stage is
// present in the returned table.
func BuildStageParams(history []StageHistoricalData, priorStrength float64, minSampleSize int) StageParamTable {
	if minSampleSize <= 0 {
		minSampleSize = DefaultMinSampleSize
	}

	type pooled struct {
		entered, passed int
		durations       []float64
	}
	merged := make(map[Stage]*pooled)
	var order []Stage

	for _, h := range history {
		stage := NormalizeStage(h.Stage)
		if stage == "" {
			continue
		}
		p, ok := merged[stage]
		if !ok {
			p = &pooled{}
			merged[stage] = p
			order = append(order, stage)
		}
		p.entered += max(h.Entered, 0)
		p.passed += max(h.Passed, 0)
		p.durations = appendValidDurations(p.durations, h.Durations)
	}

	table := make(StageParamTable, len(order)+len(FunnelStages))
	for _, stage := range order {
		p := merged[stage]
		var duration stats.GammaDistribution
		if len(p.durations) >= minSampleSize {
			duration = stats.FitGammaDistribution(p.durations)
		} else {
			duration = stats.GammaFromMedian(priorMedian(stage), globalPriorCV, len(p.durations))
		}
		table[stage] = StageParams{
			Stage:          stage,
			ConversionRate: stats.ComputeBetaPosterior(p.passed, p.entered, priorStrength),
			Duration:       duration,
		}
	}

	for _, stage := range FunnelStages {
		if _, ok := table[stage]; ok {
			continue
		}
		table[stage] = DefaultStageParams(stage, priorStrength)
	}

	return table
}

// DefaultStageParams is the prior-only entry used for stages without history.
func DefaultStageParams(stage Stage, priorStrength float64) StageParams {
	return StageParams{
		Stage:          stage,
		ConversionRate: stats.ComputeBetaPosterior(0, 0, priorStrength),
		Duration:       stats.GammaFromMedian(priorMedian(stage), globalPriorCV, 0),
		PriorOnly:      true,
	}
}

func priorMedian(stage Stage) float64 {
	if d, ok := globalPriorMedianDays[stage]; ok {
		return d
	}
	return defaultPriorMedianDays
}

// appendValidDurations appends the non-negative entries of ds to dst. NaN is
// dropped too.
func appendValidDurations(dst, ds []float64) []float64 {
	for _, d := range ds {
		if d >= 0 {
			dst = append(dst, d)
		}
	}
	return dst
}
