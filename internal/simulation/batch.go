package simulation

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// ForecastFromHistory builds the stage table from raw history and runs one
// forecast. History diagnostics (fat tails, medians) are merged into the
// result warnings.
func ForecastFromHistory(ctx context.Context, history []StageHistoricalData, candidates []PipelineCandidate, startDate time.Time, cfg ForecastConfig) (ForecastResult, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return ForecastResult{}, err
	}
	params := BuildStageParams(history, cfg.PriorStrength, cfg.MinSampleSize)

	res, err := RunOracleForecast(ctx, candidates, params, startDate, cfg)
	if err != nil {
		return ForecastResult{}, err
	}
	for _, d := range DiagnoseStages(params, history) {
		if d.FatTailed {
			res.Warnings = append(res.Warnings, fmt.Sprintf("Stage %s durations are fat-tailed (P98/P50 = %.1f); late outliers may dominate P90.", d.Stage, d.TailRatio))
		}
	}
	return res, nil
}

// BatchRequest is one independent requisition to forecast.
type BatchRequest struct {
	ID         string                `json:"id" yaml:"id" jsonschema:"requisition or scenario identifier"`
	History    []StageHistoricalData `json:"history" yaml:"history" jsonschema:"historical per-stage aggregates"`
	Candidates []PipelineCandidate   `json:"candidates" yaml:"candidates" jsonschema:"active pipeline roster"`
	StartDate  time.Time             `json:"start_date" yaml:"start_date" jsonschema:"forecast origin date"`
	Config     ForecastConfig        `json:"config" yaml:"config"`
}

// BatchResult pairs a request id with its forecast.
type BatchResult struct {
	ID     string         `json:"id"`
	Result ForecastResult `json:"result"`
}

// RunBatch forecasts independent requisitions concurrently. Results keep the
// input order. The first failure cancels the remaining runs.
func RunBatch(ctx context.Context, requests []BatchRequest, parallelism int) ([]BatchResult, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	results := make([]BatchResult, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, req := range requests {
		g.Go(func() error {
			res, err := ForecastFromHistory(gctx, req.History, req.Candidates, req.StartDate, req.Config)
			if err != nil {
				return fmt.Errorf("forecast %q: %w", req.ID, err)
			}
			results[i] = BatchResult{ID: req.ID, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
