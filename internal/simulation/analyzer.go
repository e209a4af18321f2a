package simulation

import (
	"fmt"

	"hire-oracle/internal/stats"
)

// fatTailThreshold is the P98/P50 ratio above which a stage's historical
// durations are flagged as fat-tailed.
const fatTailThreshold = 5.6

// StageDiagnostic summarises how well-supported one stage's parameters are.
type StageDiagnostic struct {
	Stage         Stage   `json:"stage"`
	Observations  int     `json:"observations"`
	DurationN     int     `json:"duration_n"`
	PriorOnly     bool    `json:"prior_only"`
	LowShape      bool    `json:"low_shape"`
	MedianDays    float64 `json:"median_days,omitempty"`
	TailRatio     float64 `json:"tail_ratio,omitempty"`
	FatTailed     bool    `json:"fat_tailed"`
	PassRateWidth float64 `json:"pass_rate_width"`
	Reason        string  `json:"reason"`
}

// DiagnoseStages inspects the funnel parameters and, when supplied, the raw
// history behind them.
func DiagnoseStages(params StageParamTable, history []StageHistoricalData) []StageDiagnostic {
	durations := make(map[Stage][]float64)
	for _, h := range history {
		stage := NormalizeStage(h.Stage)
		durations[stage] = appendValidDurations(durations[stage], h.Durations)
	}

	out := make([]StageDiagnostic, 0, len(FunnelStages))
	for _, stage := range FunnelStages {
		p, ok := params[stage]
		if !ok {
			continue
		}
		d := StageDiagnostic{
			Stage:         stage,
			Observations:  p.ConversionRate.N,
			DurationN:     p.Duration.N,
			PriorOnly:     p.PriorOnly || p.ConversionRate.N == 0,
			LowShape:      p.Duration.Shape < 1,
			PassRateWidth: p.ConversionRate.Width(),
			Reason:        "Parameters backed by stage history",
		}
		if raw := durations[stage]; len(raw) > 0 {
			d.MedianDays = stats.CalculateMedianContinuous(raw)
			d.TailRatio = stats.TailRatio(raw)
			d.FatTailed = d.TailRatio > fatTailThreshold
		}

		switch {
		case d.PriorOnly:
			d.Reason = "No conversion history; using the global prior"
		case d.LowShape:
			d.Reason = "Duration shape below 1; the boosted Gamma sampler is approximate here"
		case d.FatTailed:
			d.Reason = "Historical durations are fat-tailed (P98/P50 above threshold)"
		}
		out = append(out, d)
	}
	return out
}

// Warnings turns diagnostics into user-facing messages.
func Warnings(diags []StageDiagnostic) []string {
	var warnings []string
	for _, d := range diags {
		switch {
		case d.PriorOnly:
			warnings = append(warnings, fmt.Sprintf("Stage %s has no conversion history; its pass rate is the prior (mean 0.5).", d.Stage))
		case d.LowShape:
			warnings = append(warnings, fmt.Sprintf("Stage %s has a high-variance duration distribution (shape < 1); tail percentiles are approximate.", d.Stage))
		}
		if d.FatTailed {
			warnings = append(warnings, fmt.Sprintf("Stage %s durations are fat-tailed (P98/P50 = %.1f); late outliers may dominate P90.", d.Stage, d.TailRatio))
		}
	}
	return warnings
}
