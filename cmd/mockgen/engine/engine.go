// Package engine generates synthetic hiring pipelines with known stage pass
// rates and durations, for exercising the forecast and the backtest.
package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"hire-oracle/internal/scenario"
	"hire-oracle/internal/simulation"
)

// checkpointSpacing separates consecutive backtest snapshots.
const checkpointSpacing = 21

// terminalVisibility is how long a rejected candidate stays on the roster.
const terminalVisibility = 7.0

type GeneratorConfig struct {
	Profile      string // healthy, thin, stalled, chaos
	Distribution string // "gamma" or "weibull"
	Applicants   int
	Checkpoints  int
	Seed         string
	Now          time.Time
}

// Profile is the ground truth a synthetic requisition is drawn from.
type Profile struct {
	PassRates    [4]float64 // SCREEN, HM_SCREEN, ONSITE, OFFER
	MeanDays     [4]float64
	Shape        float64 // Gamma shape, or Weibull k
	ArrivalEvery float64 // days between applicants
}

var Profiles = map[string]Profile{
	"healthy": {PassRates: [4]float64{0.45, 0.55, 0.45, 0.80}, MeanDays: [4]float64{4, 6, 9, 4}, Shape: 3, ArrivalEvery: 1},
	"thin":    {PassRates: [4]float64{0.45, 0.55, 0.45, 0.80}, MeanDays: [4]float64{4, 6, 9, 4}, Shape: 3, ArrivalEvery: 6},
	"stalled": {PassRates: [4]float64{0.30, 0.35, 0.25, 0.60}, MeanDays: [4]float64{8, 12, 18, 9}, Shape: 1.5, ArrivalEvery: 2},
	"chaos":   {PassRates: [4]float64{0.40, 0.50, 0.40, 0.70}, MeanDays: [4]float64{5, 7, 10, 5}, Shape: 0.8, ArrivalEvery: 1.5},
}

type transition struct {
	stage   simulation.Stage
	entered time.Time
	exited  time.Time
	passed  bool
}

type journey struct {
	id     string
	steps  []transition
	hireAt *time.Time
}

// Generate draws Applicants journeys through the funnel, ending at Now, and
// returns the resulting history, roster and backtest checkpoints.
func Generate(cfg GeneratorConfig) (*scenario.File, error) {
	p, ok := Profiles[cfg.Profile]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q", cfg.Profile)
	}
	if cfg.Applicants <= 0 {
		return nil, fmt.Errorf("applicants must be positive, got %d", cfg.Applicants)
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	now := time.Date(cfg.Now.Year(), cfg.Now.Month(), cfg.Now.Day(), 0, 0, 0, 0, time.UTC)
	if cfg.Seed == "" {
		cfg.Seed = cfg.Profile
	}
	src := simulation.NewSeededSource(cfg.Seed)

	first := now.Add(-days(p.ArrivalEvery * float64(cfg.Applicants)))
	journeys := make([]journey, cfg.Applicants)
	for i := range journeys {
		arrival := first.Add(days(p.ArrivalEvery * float64(i)))
		journeys[i] = walk(src, fmt.Sprintf("cand-%04d", i+1), arrival, p, cfg.Distribution)
	}

	history, roster := snapshot(journeys, now)
	f := &scenario.File{
		Name:       fmt.Sprintf("Synthetic %s pipeline", cfg.Profile),
		StartDate:  now.Format(time.DateOnly),
		History:    history,
		Candidates: roster,
	}

	for k := cfg.Checkpoints; k >= 1; k-- {
		asOf := now.AddDate(0, 0, -k*checkpointSpacing)
		h, r := snapshot(journeys, asOf)
		cp := scenario.Checkpoint{Date: asOf.Format(time.DateOnly), History: h, Candidates: r}
		if next := nextHire(journeys, asOf, now); next != nil {
			cp.ActualHireDate = next.Format(time.DateOnly)
		}
		f.Checkpoints = append(f.Checkpoints, cp)
	}
	return f, nil
}

func walk(src simulation.Source, id string, arrival time.Time, p Profile, distribution string) journey {
	j := journey{id: id}
	t := arrival
	for i, stage := range simulation.FunnelStages {
		d := sampleDays(src, p.MeanDays[i], p.Shape, distribution)
		exit := t.Add(days(d))
		passed := src.Float64() < p.PassRates[i]
		j.steps = append(j.steps, transition{stage: stage, entered: t, exited: exit, passed: passed})
		if !passed {
			return j
		}
		t = exit
	}
	j.hireAt = &t
	return j
}

func sampleDays(src simulation.Source, mean, shape float64, distribution string) float64 {
	var d float64
	if distribution == "weibull" {
		d = weibullSample(src, shape, mean/math.Gamma(1+1/shape))
	} else {
		d = simulation.SampleGamma(src, shape, shape/mean)
	}
	return math.Max(0.5, d)
}

func weibullSample(src simulation.Source, k, lambda float64) float64 {
	u := src.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// snapshot aggregates what was observable on asOf: finished stage visits
// become history, open ones become the roster.
func snapshot(journeys []journey, asOf time.Time) ([]simulation.StageHistoricalData, []simulation.PipelineCandidate) {
	agg := make(map[simulation.Stage]*simulation.StageHistoricalData, len(simulation.FunnelStages))
	for _, stage := range simulation.FunnelStages {
		agg[stage] = &simulation.StageHistoricalData{Stage: string(stage)}
	}

	var roster []simulation.PipelineCandidate
	for _, j := range journeys {
		if len(j.steps) == 0 || j.steps[0].entered.After(asOf) {
			continue
		}
		for i, step := range j.steps {
			if step.exited.After(asOf) {
				roster = append(roster, simulation.PipelineCandidate{CandidateID: j.id, CurrentStage: string(step.stage)})
				break
			}
			h := agg[step.stage]
			h.Entered++
			if step.passed {
				h.Passed++
			}
			h.Durations = append(h.Durations, math.Round(step.exited.Sub(step.entered).Hours()/24*10)/10)

			if i == len(j.steps)-1 && !step.passed && asOf.Sub(step.exited).Hours()/24 <= terminalVisibility {
				roster = append(roster, simulation.PipelineCandidate{CandidateID: j.id, CurrentStage: string(simulation.StageRejected)})
			}
		}
	}

	history := make([]simulation.StageHistoricalData, 0, len(agg))
	for _, stage := range simulation.FunnelStages {
		if h := agg[stage]; h.Entered > 0 {
			history = append(history, *h)
		}
	}
	sort.SliceStable(roster, func(a, b int) bool { return roster[a].CandidateID < roster[b].CandidateID })
	return history, roster
}

// nextHire returns the first hire strictly after asOf and no later than now.
func nextHire(journeys []journey, asOf, now time.Time) *time.Time {
	var next *time.Time
	for _, j := range journeys {
		if j.hireAt == nil || !j.hireAt.After(asOf) || j.hireAt.After(now) {
			continue
		}
		if next == nil || j.hireAt.Before(*next) {
			next = j.hireAt
		}
	}
	return next
}

func days(d float64) time.Duration {
	return time.Duration(d * 24 * float64(time.Hour))
}
