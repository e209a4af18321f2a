package simulation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"hire-oracle/internal/stats"
)

// coneTolerance absorbs the whole-day rounding of simulated durations.
const coneTolerance = 0.5

// BacktestCheckpoint is the pipeline as it looked on Date, plus what
// actually happened afterwards.
type BacktestCheckpoint struct {
	Date           time.Time             `json:"date" yaml:"date" jsonschema:"as-of date of the snapshot"`
	History        []StageHistoricalData `json:"history" yaml:"history" jsonschema:"stage history known on the as-of date"`
	Candidates     []PipelineCandidate   `json:"candidates" yaml:"candidates" jsonschema:"roster on the as-of date"`
	ActualHireDate *time.Time            `json:"actual_hire_date,omitempty" yaml:"actual_hire_date,omitempty" jsonschema:"date of the next hire after the snapshot, if one happened"`
}

// BacktestConfig controls the walk-forward validation.
type BacktestConfig struct {
	Forecast    ForecastConfig `json:"forecast" yaml:"forecast"`
	Parallelism int            `json:"parallelism" yaml:"parallelism"`
}

// ValidationCheckpoint is the outcome of one past forecast.
type ValidationCheckpoint struct {
	Date               string          `json:"date"`
	ActualDays         float64         `json:"actual_days"`
	PredictedP10       float64         `json:"predicted_p10"`
	PredictedP50       float64         `json:"predicted_p50"`
	PredictedP90       float64         `json:"predicted_p90"`
	SuccessProbability float64         `json:"success_probability"`
	ConfidenceLevel    ConfidenceLevel `json:"confidence_level"`
	IsWithinCone       bool            `json:"is_within_cone"` // actual between P10 and P90
}

// BacktestResult aggregates checkpoint outcomes.
type BacktestResult struct {
	AccuracyScore     float64                `json:"accuracy_score"` // share of checkpoints within the cone
	MeanAbsoluteError float64                `json:"mean_absolute_error_days"`
	Checkpoints       []ValidationCheckpoint `json:"checkpoints"`
	Skipped           int                    `json:"skipped"`
	ErrorChart        stats.XmRResult        `json:"error_chart"` // actual minus predicted P50, in checkpoint order
	ValidationMessage string                 `json:"validation_message"`
}

// RunBacktest replays the forecast at each checkpoint and checks whether the
// actual time to hire fell inside the P10-P90 cone. Checkpoints without an
// observed hire cannot be verified and are skipped.
func RunBacktest(ctx context.Context, checkpoints []BacktestCheckpoint, cfg BacktestConfig) (BacktestResult, error) {
	result := BacktestResult{Checkpoints: make([]ValidationCheckpoint, 0, len(checkpoints))}

	verifiable := make([]BacktestCheckpoint, 0, len(checkpoints))
	for _, cp := range checkpoints {
		if cp.ActualHireDate == nil || cp.ActualHireDate.Before(cp.Date) {
			result.Skipped++
			continue
		}
		verifiable = append(verifiable, cp)
	}
	sort.Slice(verifiable, func(i, j int) bool {
		return verifiable[i].Date.Before(verifiable[j].Date)
	})

	outcomes := make([]ValidationCheckpoint, len(verifiable))
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}

	for i, cp := range verifiable {
		g.Go(func() error {
			res, err := ForecastFromHistory(gctx, cp.History, cp.Candidates, cp.Date, cfg.Forecast)
			if err != nil {
				return fmt.Errorf("checkpoint %s: %w", cp.Date.Format(time.DateOnly), err)
			}

			actual := cp.ActualHireDate.Sub(cp.Date).Hours() / 24
			v := ValidationCheckpoint{
				Date:               cp.Date.Format(time.DateOnly),
				ActualDays:         math.Round(actual*10) / 10,
				PredictedP10:       res.P10Days,
				PredictedP50:       res.P50Days,
				PredictedP90:       res.P90Days,
				SuccessProbability: res.SuccessProbability,
				ConfidenceLevel:    res.ConfidenceLevel,
			}
			v.IsWithinCone = actual >= res.P10Days-coneTolerance && actual <= res.P90Days+coneTolerance
			outcomes[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BacktestResult{}, err
	}

	hits := 0
	absErr := 0.0
	errs := make([]float64, 0, len(outcomes))
	dates := make([]string, 0, len(outcomes))
	for _, v := range outcomes {
		if v.IsWithinCone {
			hits++
		}
		absErr += math.Abs(v.ActualDays - v.PredictedP50)
		errs = append(errs, v.ActualDays-v.PredictedP50)
		dates = append(dates, v.Date)
		result.Checkpoints = append(result.Checkpoints, v)
	}
	result.ErrorChart = stats.CalculateXmR(errs, dates)

	total := len(outcomes)
	if total > 0 {
		result.AccuracyScore = float64(hits) / float64(total)
		result.MeanAbsoluteError = absErr / float64(total)
		result.ValidationMessage = fmt.Sprintf("Walk-Forward Analysis: %d/%d (%.0f%%) of actual hires fell within the predicted P10-P90 cone.", hits, total, result.AccuracyScore*100)
	} else {
		result.ValidationMessage = "Insufficient history: no checkpoint has an observed hire to validate against."
	}

	// An 80% cone should hold roughly 80% of outcomes.
	if result.AccuracyScore < 0.6 && total > 3 {
		result.ValidationMessage += " Warning: Low forecast reliability detected."
	}
	if result.ErrorChart.HasShift() {
		result.ValidationMessage += " Warning: forecast errors show a sustained bias."
	}

	return result, nil
}
