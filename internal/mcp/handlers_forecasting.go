package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"hire-oracle/internal/scenario"
	"hire-oracle/internal/simulation"
	"hire-oracle/internal/visuals"
)

// ForecastInput is the argument set of run_hiring_forecast.
type ForecastInput struct {
	ScenarioPath string                           `json:"scenario_path,omitempty" jsonschema:"scenario file relative to the data directory"`
	History      []simulation.StageHistoricalData `json:"history,omitempty" jsonschema:"historical per-stage aggregates; replaces the scenario history"`
	Candidates   []simulation.PipelineCandidate   `json:"candidates,omitempty" jsonschema:"active pipeline roster; replaces the scenario roster"`
	StartDate    string                           `json:"start_date,omitempty" jsonschema:"forecast origin (YYYY-MM-DD); defaults to the scenario date or today"`
	EngineOverrides
}

// ForecastOutput is the structured result of run_hiring_forecast.
type ForecastOutput struct {
	Name                string                         `json:"name,omitempty"`
	StartDate           string                         `json:"start_date"`
	P10Date             string                         `json:"p10_date"`
	P50Date             string                         `json:"p50_date"`
	P90Date             string                         `json:"p90_date"`
	P10Days             float64                        `json:"p10_days"`
	P50Days             float64                        `json:"p50_days"`
	P90Days             float64                        `json:"p90_days"`
	SuccessProbability  float64                        `json:"success_probability"`
	ConfidenceLevel     simulation.ConfidenceLevel     `json:"confidence_level"`
	ConfidenceIntervals simulation.PercentileIntervals `json:"confidence_intervals"`
	Stages              []simulation.StageParams       `json:"stages"`
	Warnings            []string                       `json:"warnings,omitempty"`
	Metadata            simulation.ForecastMetadata    `json:"metadata"`
	Charts              []string                       `json:"charts,omitempty"`
}

// StageParametersInput is the argument set of get_stage_parameters.
type StageParametersInput struct {
	ScenarioPath  string                           `json:"scenario_path,omitempty" jsonschema:"scenario file relative to the data directory"`
	History       []simulation.StageHistoricalData `json:"history,omitempty" jsonschema:"historical per-stage aggregates; replaces the scenario history"`
	PriorStrength float64                          `json:"prior_strength,omitempty" jsonschema:"pseudo-observations per side of the symmetric Beta prior"`
	MinSampleSize int                              `json:"min_sample_size,omitempty" jsonschema:"durations needed before a stage's own Gamma fit replaces the prior"`
}

// StageParametersOutput is the structured result of get_stage_parameters.
type StageParametersOutput struct {
	Stages      []simulation.StageParams     `json:"stages"`
	Diagnostics []simulation.StageDiagnostic `json:"diagnostics"`
	Warnings    []string                     `json:"warnings,omitempty"`
	Charts      []string                     `json:"charts,omitempty"`
}

// BacktestInput is the argument set of run_hiring_backtest.
type BacktestInput struct {
	ScenarioPath string                `json:"scenario_path,omitempty" jsonschema:"scenario file relative to the data directory"`
	Checkpoints  []scenario.Checkpoint `json:"checkpoints,omitempty" jsonschema:"past snapshots; replaces the scenario checkpoints"`
	EngineOverrides
}

// BacktestOutput is the structured result of run_hiring_backtest.
type BacktestOutput struct {
	Result simulation.BacktestResult `json:"result"`
	Chart  string                    `json:"chart,omitempty"`
}

func (s *Server) handleRunForecast(ctx context.Context, _ *sdk.CallToolRequest, in ForecastInput) (*sdk.CallToolResult, ForecastOutput, error) {
	file, err := s.loadScenario(in.ScenarioPath)
	if err != nil {
		return nil, ForecastOutput{}, err
	}
	if in.History != nil {
		file.History = in.History
	}
	if in.Candidates != nil {
		file.Candidates = in.Candidates
	}
	if in.StartDate != "" {
		file.StartDate = in.StartDate
	}

	start, err := file.Start(time.Now())
	if err != nil {
		return nil, ForecastOutput{}, err
	}

	res, err := simulation.ForecastFromHistory(ctx, file.History, file.Candidates, start, s.forecastConfig(file, in.EngineOverrides))
	if err != nil {
		return nil, ForecastOutput{}, fmt.Errorf("forecast failed: %w", err)
	}

	log.Info().
		Str("tool", "run_hiring_forecast").
		Str("runId", res.Metadata.RunID).
		Int("candidates", res.Metadata.ActiveCandidates).
		Str("confidence", string(res.ConfidenceLevel)).
		Msg("Forecast served")

	out := ForecastOutput{
		Name:                file.Name,
		StartDate:           formatDate(res.StartDate),
		P10Date:             formatDate(res.P10Date),
		P50Date:             formatDate(res.P50Date),
		P90Date:             formatDate(res.P90Date),
		P10Days:             res.P10Days,
		P50Days:             res.P50Days,
		P90Days:             res.P90Days,
		SuccessProbability:  res.SuccessProbability,
		ConfidenceLevel:     res.ConfidenceLevel,
		ConfidenceIntervals: res.ConfidenceIntervals,
		Stages:              orderedParams(res.StageParams),
		Warnings:            res.Warnings,
		Metadata:            res.Metadata,
	}
	if s.cfg.EnableMermaidCharts {
		out.Charts = nonEmpty(
			visuals.GenerateForecastHistogram(res.Histogram),
			visuals.GenerateHireCDF(res),
		)
	}
	return nil, out, nil
}

func (s *Server) handleGetStageParameters(_ context.Context, _ *sdk.CallToolRequest, in StageParametersInput) (*sdk.CallToolResult, StageParametersOutput, error) {
	file, err := s.loadScenario(in.ScenarioPath)
	if err != nil {
		return nil, StageParametersOutput{}, err
	}
	if in.History != nil {
		file.History = in.History
	}

	cfg, err := file.ForecastConfig(s.cfg.Forecast).Merge(simulation.ForecastConfig{
		PriorStrength: in.PriorStrength,
		MinSampleSize: in.MinSampleSize,
	}).Normalize()
	if err != nil {
		return nil, StageParametersOutput{}, err
	}

	table := simulation.BuildStageParams(file.History, cfg.PriorStrength, cfg.MinSampleSize)
	diags := simulation.DiagnoseStages(table, file.History)

	out := StageParametersOutput{
		Stages:      orderedParams(table),
		Diagnostics: diags,
		Warnings:    simulation.Warnings(diags),
	}
	if s.cfg.EnableMermaidCharts {
		out.Charts = nonEmpty(
			visuals.GenerateFunnelChart(table),
			visuals.GenerateStageDurationChart(table),
		)
	}
	return nil, out, nil
}

func (s *Server) handleRunBacktest(ctx context.Context, _ *sdk.CallToolRequest, in BacktestInput) (*sdk.CallToolResult, BacktestOutput, error) {
	file, err := s.loadScenario(in.ScenarioPath)
	if err != nil {
		return nil, BacktestOutput{}, err
	}
	if in.Checkpoints != nil {
		file.Checkpoints = in.Checkpoints
	}
	if len(file.Checkpoints) == 0 {
		return nil, BacktestOutput{}, fmt.Errorf("no checkpoints to backtest: provide 'checkpoints' or a scenario with a checkpoints section")
	}

	checkpoints, err := file.BacktestCheckpoints()
	if err != nil {
		return nil, BacktestOutput{}, err
	}

	res, err := simulation.RunBacktest(ctx, checkpoints, simulation.BacktestConfig{
		Forecast: s.forecastConfig(file, in.EngineOverrides),
	})
	if err != nil {
		return nil, BacktestOutput{}, fmt.Errorf("backtest failed: %w", err)
	}

	out := BacktestOutput{Result: res}
	if s.cfg.EnableMermaidCharts {
		out.Chart = visuals.GenerateBacktestChart(res)
	}
	return nil, out, nil
}

func nonEmpty(charts ...string) []string {
	var out []string
	for _, c := range charts {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}
