package simulation

import (
	"context"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hire-oracle/internal/stats"
)

const (
	// FallbackHorizonDays is reported for all percentiles when no trial hires.
	FallbackHorizonDays = 365

	cancelCheckInterval = 64
)

var forecastPercentiles = []float64{0.10, 0.50, 0.90}

// PipelineCandidate is one in-flight candidate in the current roster.
type PipelineCandidate struct {
	CandidateID  string `json:"candidate_id" yaml:"candidate_id" jsonschema:"opaque candidate identifier"`
	CurrentStage string `json:"current_stage" yaml:"current_stage" jsonschema:"stage the candidate is currently in"`
}

// PercentileIntervals holds bootstrap 95% intervals, in days, for each forecast percentile.
type PercentileIntervals struct {
	P10 stats.ConfidenceInterval `json:"p10"`
	P50 stats.ConfidenceInterval `json:"p50"`
	P90 stats.ConfidenceInterval `json:"p90"`
}

// ForecastMetadata carries diagnostics. Only RunID and Elapsed vary between
// runs with identical inputs.
type ForecastMetadata struct {
	RunID                string        `json:"run_id"`
	Seed                 string        `json:"seed"`
	Iterations           int           `json:"iterations"`
	BootstrapSamples     int           `json:"bootstrap_samples"`
	ActiveCandidates     int           `json:"active_candidates"`
	SkippedCandidates    int           `json:"skipped_candidates"`
	TrialsWithHire       int           `json:"trials_with_hire"`
	MinStageObservations int           `json:"min_stage_observations"`
	StagesUsed           []Stage       `json:"stages_used"`
	UnmappedStages       []string      `json:"unmapped_stages,omitempty"`
	FallbackReason       string        `json:"fallback_reason,omitempty"`
	Elapsed              time.Duration `json:"elapsed_ns"`
}

// ForecastResult is the distribution of days until the next hire.
type ForecastResult struct {
	StartDate           time.Time           `json:"start_date"`
	P10Date             time.Time           `json:"p10_date"`
	P50Date             time.Time           `json:"p50_date"`
	P90Date             time.Time           `json:"p90_date"`
	P10Days             float64             `json:"p10_days"`
	P50Days             float64             `json:"p50_days"`
	P90Days             float64             `json:"p90_days"`
	SimulatedDays       []int               `json:"simulated_days"`
	SuccessProbability  float64             `json:"success_probability"`
	ConfidenceLevel     ConfidenceLevel     `json:"confidence_level"`
	ConfidenceIntervals PercentileIntervals `json:"confidence_intervals"`
	StageParams         StageParamTable     `json:"stage_params"`
	Histogram           Histogram           `json:"histogram"`
	Warnings            []string            `json:"warnings,omitempty"`
	Metadata            ForecastMetadata    `json:"metadata"`
}

// HireProbabilityBy returns the share of all trials that produced a hire on
// or before date.
func (r ForecastResult) HireProbabilityBy(date time.Time) float64 {
	if r.Metadata.Iterations == 0 || len(r.SimulatedDays) == 0 {
		return 0
	}
	limit := date.Sub(r.StartDate).Hours() / 24
	hits := 0
	for _, d := range r.SimulatedDays {
		if float64(d) <= limit {
			hits++
		}
	}
	return float64(hits) / float64(r.Metadata.Iterations)
}

// SimulateCandidateJourney walks one candidate from stage to HIRED. It
// returns the elapsed days and whether the candidate was hired.
func SimulateCandidateJourney(src Source, stage Stage, params StageParamTable) (int, bool) {
	from, ok := FunnelIndex(stage)
	if !ok {
		return 0, false
	}
	return simulateFrom(src, from, params)
}

func simulateFrom(src Source, from int, params StageParamTable) (int, bool) {
	elapsed := 0
	for _, stage := range FunnelStages[from:] {
		p := params[stage]

		days := int(math.Round(SampleGamma(src, p.Duration.Shape, p.Duration.Rate)))
		elapsed += max(days, 1)

		// Thompson sampling: a fresh pass rate per traversal carries the
		// posterior uncertainty into the outcome distribution.
		passRate := SampleBeta(src, p.ConversionRate.Alpha, p.ConversionRate.Beta)
		if src.Float64() > passRate {
			return 0, false
		}
	}
	return elapsed, true
}

// RunOracleForecast simulates every active candidate racing toward a hire in
// each trial and summarises the earliest hire per trial. Statistically
// degenerate inputs produce a fallback result, never an error; errors are
// limited to an invalid config and context cancellation.
func RunOracleForecast(ctx context.Context, candidates []PipelineCandidate, params StageParamTable, startDate time.Time, cfg ForecastConfig) (ForecastResult, error) {
	started := time.Now()

	cfg, err := cfg.Normalize()
	if err != nil {
		return ForecastResult{}, err
	}
	params = completeParams(params, cfg.PriorStrength)

	entries := make([]int, 0, len(candidates))
	var unmapped []string
	terminal := 0
	for _, c := range candidates {
		stage := NormalizeStage(c.CurrentStage)
		if idx, ok := FunnelIndex(stage); ok {
			entries = append(entries, idx)
			continue
		}
		if stage.IsTerminal() {
			terminal++
		} else if !slices.Contains(unmapped, c.CurrentStage) {
			unmapped = append(unmapped, c.CurrentStage)
		}
	}

	meta := ForecastMetadata{
		RunID:             uuid.New().String(),
		Seed:              cfg.Seed,
		Iterations:        cfg.Iterations,
		BootstrapSamples:  cfg.BootstrapSamples,
		ActiveCandidates:  len(entries),
		SkippedCandidates: len(candidates) - len(entries),
		UnmappedStages:    unmapped,
	}

	if len(entries) == 0 {
		switch {
		case len(candidates) == 0:
			meta.FallbackReason = "no active candidates"
		case terminal == len(candidates):
			meta.FallbackReason = "all candidates are in terminal stages"
		default:
			meta.FallbackReason = "no candidate is in a recognised funnel stage"
		}
		res := fallbackResult(startDate, params, ConfidenceInsufficient, meta, started)
		logForecast(res)
		return res, nil
	}

	earliest := slices.Min(entries)
	meta.StagesUsed = slices.Clone(FunnelStages[earliest:])
	meta.MinStageObservations = minObservations(params, earliest)

	src := NewSeededSource(cfg.Seed)
	samples := make([]int, 0, cfg.Iterations)

	for trial := 0; trial < cfg.Iterations; trial++ {
		if trial%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return ForecastResult{}, err
			}
		}

		best := -1
		for _, from := range entries {
			days, hired := simulateFrom(src, from, params)
			if hired && (best < 0 || days < best) {
				best = days
			}
		}
		if best >= 0 {
			samples = append(samples, best)
		}
	}

	meta.TrialsWithHire = len(samples)
	successProbability := float64(len(samples)) / float64(cfg.Iterations)

	if len(samples) == 0 {
		meta.FallbackReason = "no simulated trial produced a hire"
		level := cfg.Confidence.Classify(meta.MinStageObservations, 0)
		res := fallbackResult(startDate, params, level, meta, started)
		logForecast(res)
		return res, nil
	}

	sortedDays := slices.Clone(samples)
	slices.Sort(sortedDays)
	sorted := make([]float64, len(sortedDays))
	for i, d := range sortedDays {
		sorted[i] = float64(d)
	}

	pct := stats.Percentiles(sorted, forecastPercentiles)
	cis := stats.BootstrapPercentiles(sorted, forecastPercentiles, cfg.BootstrapSamples, NewSeededSource(cfg.Seed+BootstrapSeedSuffix))

	res := ForecastResult{
		StartDate:          startDate,
		P10Date:            addDays(startDate, pct[0]),
		P50Date:            addDays(startDate, pct[1]),
		P90Date:            addDays(startDate, pct[2]),
		P10Days:            pct[0],
		P50Days:            pct[1],
		P90Days:            pct[2],
		SimulatedDays:      samples,
		SuccessProbability: successProbability,
		ConfidenceLevel:    cfg.Confidence.Classify(meta.MinStageObservations, successProbability),
		ConfidenceIntervals: PercentileIntervals{
			P10: cis[0],
			P50: cis[1],
			P90: cis[2],
		},
		StageParams: params,
		Histogram:   NewHistogram(sortedDays, cfg.HistogramBins),
		Warnings:    append(Warnings(DiagnoseStages(params, nil)), unmappedWarnings(unmapped)...),
	}
	meta.Elapsed = time.Since(started)
	res.Metadata = meta

	logForecast(res)
	return res, nil
}

// completeParams returns a copy of params with every funnel stage present.
func completeParams(params StageParamTable, priorStrength float64) StageParamTable {
	out := make(StageParamTable, len(params)+len(FunnelStages))
	for k, v := range params {
		out[k] = v
	}
	for _, stage := range FunnelStages {
		if _, ok := out[stage]; !ok {
			out[stage] = DefaultStageParams(stage, priorStrength)
		}
	}
	return out
}

func fallbackResult(startDate time.Time, params StageParamTable, level ConfidenceLevel, meta ForecastMetadata, started time.Time) ForecastResult {
	horizon := startDate.AddDate(0, 0, FallbackHorizonDays)
	meta.Elapsed = time.Since(started)
	return ForecastResult{
		StartDate:       startDate,
		P10Date:         horizon,
		P50Date:         horizon,
		P90Date:         horizon,
		P10Days:         FallbackHorizonDays,
		P50Days:         FallbackHorizonDays,
		P90Days:         FallbackHorizonDays,
		SimulatedDays:   []int{},
		ConfidenceLevel: level,
		StageParams:     params,
		Warnings:        append([]string{"Forecast fell back to a one-year horizon: " + meta.FallbackReason + "."}, unmappedWarnings(meta.UnmappedStages)...),
		Metadata:        meta,
	}
}

func unmappedWarnings(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = strconv.Quote(l)
	}
	return []string{"Candidates in unrecognised stages were skipped: " + strings.Join(quoted, ", ") + "."}
}

func addDays(start time.Time, days float64) time.Time {
	return start.AddDate(0, 0, int(math.Round(days)))
}

func logForecast(res ForecastResult) {
	log.Debug().
		Str("run_id", res.Metadata.RunID).
		Str("seed", res.Metadata.Seed).
		Int("iterations", res.Metadata.Iterations).
		Int("active_candidates", res.Metadata.ActiveCandidates).
		Float64("success_probability", res.SuccessProbability).
		Float64("p50_days", res.P50Days).
		Str("confidence", string(res.ConfidenceLevel)).
		Dur("elapsed", res.Metadata.Elapsed).
		Msg("Oracle forecast complete")
}
