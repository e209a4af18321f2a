package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hire-oracle/internal/config"
	"hire-oracle/internal/simulation"
)

const testScenario = `
name: platform-engineer
start_date: 2026-03-02
history:
  - {stage: SCREEN, entered: 100, passed: 40, durations: [3, 4, 5, 6, 7]}
  - {stage: HM_SCREEN, entered: 100, passed: 50, durations: [5, 6, 7, 8, 9]}
  - {stage: ONSITE, entered: 100, passed: 40, durations: [8, 9, 10, 11, 12]}
  - {stage: OFFER, entered: 100, passed: 75, durations: [3, 4, 5, 6, 7]}
candidates:
  - {candidate_id: c-1, current_stage: SCREEN}
  - {candidate_id: c-2, current_stage: ONSITE}
checkpoints:
  - date: 2026-01-05
    history:
      - {stage: SCREEN, entered: 100, passed: 40, durations: [3, 4, 5, 6, 7]}
      - {stage: HM_SCREEN, entered: 100, passed: 50, durations: [5, 6, 7, 8, 9]}
      - {stage: ONSITE, entered: 100, passed: 40, durations: [8, 9, 10, 11, 12]}
      - {stage: OFFER, entered: 100, passed: 75, durations: [3, 4, 5, 6, 7]}
    candidates:
      - {candidate_id: c-0, current_stage: OFFER}
    actual_hire_date: 2026-01-11
  - date: 2026-02-02
`

// connect starts the server on an in-memory transport and returns a client session.
func connect(t *testing.T, mermaid bool) *sdk.ClientSession {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "req.yaml"), []byte(testScenario), 0644))

	forecast := simulation.DefaultForecastConfig()
	forecast.Iterations = 2000
	forecast.BootstrapSamples = 100

	cfg := &config.AppConfig{DataPath: dir, Forecast: forecast, EnableMermaidCharts: mermaid}
	server := NewServer(cfg, "test")

	ctx := context.Background()
	serverTransport, clientTransport := sdk.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := sdk.NewClient(&sdk.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool[T any](t *testing.T, cs *sdk.ClientSession, name string, args map[string]any) (T, *sdk.CallToolResult) {
	t.Helper()
	var out T
	res, err := cs.CallTool(context.Background(), &sdk.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(*sdk.TextContent)
	require.True(t, ok, "expected text content")
	if !res.IsError {
		require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	}
	return out, res
}

func TestServer_ListTools(t *testing.T) {
	cs := connect(t, false)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
		assert.NotNil(t, tool.InputSchema, tool.Name)
		assert.NotNil(t, tool.OutputSchema, tool.Name)
	}
	for _, want := range []string{"run_hiring_forecast", "get_stage_parameters", "run_hiring_backtest"} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestRunHiringForecast_FromScenario(t *testing.T) {
	cs := connect(t, true)
	out, res := callTool[ForecastOutput](t, cs, "run_hiring_forecast", map[string]any{
		"scenario_path": "req.yaml",
		"seed":          "mcp-test",
	})
	require.False(t, res.IsError)

	assert.Equal(t, "platform-engineer", out.Name)
	assert.Equal(t, "2026-03-02", out.StartDate)
	assert.Equal(t, "mcp-test", out.Metadata.Seed)
	assert.Equal(t, 2000, out.Metadata.Iterations)
	assert.Equal(t, 2, out.Metadata.ActiveCandidates)
	assert.Greater(t, out.SuccessProbability, 0.0)
	assert.LessOrEqual(t, out.P10Days, out.P90Days)
	require.Len(t, out.Stages, len(simulation.FunnelStages))
	assert.Equal(t, simulation.StageScreen, out.Stages[0].Stage)
	assert.NotEmpty(t, out.Charts)
}

func TestRunHiringForecast_InlineOverridesAndDeterminism(t *testing.T) {
	cs := connect(t, false)
	args := map[string]any{
		"scenario_path": "req.yaml",
		"candidates":    []map[string]any{{"candidate_id": "x", "current_stage": "Offer Extended"}},
		"start_date":    "2026-04-01",
		"iterations":    500,
	}

	first, _ := callTool[ForecastOutput](t, cs, "run_hiring_forecast", args)
	second, _ := callTool[ForecastOutput](t, cs, "run_hiring_forecast", args)

	assert.Equal(t, "2026-04-01", first.StartDate)
	assert.Equal(t, 500, first.Metadata.Iterations)
	assert.Equal(t, 1, first.Metadata.ActiveCandidates)
	assert.Equal(t, []simulation.Stage{simulation.StageOffer}, first.Metadata.StagesUsed)
	assert.Equal(t, first.P50Date, second.P50Date)
	assert.Equal(t, first.SuccessProbability, second.SuccessProbability)
	assert.Empty(t, first.Charts)
}

func TestRunHiringForecast_EmptyPipelineFallsBack(t *testing.T) {
	cs := connect(t, false)
	out, res := callTool[ForecastOutput](t, cs, "run_hiring_forecast", map[string]any{
		"start_date": "2026-03-02",
	})
	require.False(t, res.IsError)

	assert.Equal(t, simulation.ConfidenceInsufficient, out.ConfidenceLevel)
	assert.Equal(t, "2027-03-02", out.P50Date)
	assert.Equal(t, 0.0, out.SuccessProbability)
}

func TestRunHiringForecast_Errors(t *testing.T) {
	cs := connect(t, false)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"MissingScenario", map[string]any{"scenario_path": "absent.yaml"}},
		{"EscapingPath", map[string]any{"scenario_path": "../outside.yaml"}},
		{"AbsolutePath", map[string]any{"scenario_path": "/etc/passwd"}},
		{"BadDate", map[string]any{"start_date": "next tuesday"}},
		{"InvalidIterations", map[string]any{"iterations": -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, res := callTool[ForecastOutput](t, cs, "run_hiring_forecast", tt.args)
			assert.True(t, res.IsError)
		})
	}
}

func TestGetStageParameters(t *testing.T) {
	cs := connect(t, true)
	out, res := callTool[StageParametersOutput](t, cs, "get_stage_parameters", map[string]any{
		"history": []map[string]any{
			{"stage": "Phone Screen", "entered": 30, "passed": 12, "durations": []float64{2, 2, 3, 3, 3, 3, 4, 4, 60, 90}},
		},
	})
	require.False(t, res.IsError)

	require.Len(t, out.Stages, len(simulation.FunnelStages))
	assert.Equal(t, 30, out.Stages[0].ConversionRate.N)
	assert.True(t, out.Stages[1].PriorOnly)
	require.Len(t, out.Diagnostics, len(simulation.FunnelStages))
	assert.True(t, out.Diagnostics[0].FatTailed)
	assert.NotEmpty(t, out.Warnings)
	assert.Len(t, out.Charts, 2)
}

func TestRunHiringBacktest(t *testing.T) {
	cs := connect(t, true)
	out, res := callTool[BacktestOutput](t, cs, "run_hiring_backtest", map[string]any{
		"scenario_path": "req.yaml",
	})
	require.False(t, res.IsError)

	assert.Equal(t, 1, out.Result.Skipped)
	require.Len(t, out.Result.Checkpoints, 1)
	assert.Equal(t, 6.0, out.Result.Checkpoints[0].ActualDays)
	assert.Contains(t, out.Result.ValidationMessage, "Walk-Forward Analysis")
	assert.NotEmpty(t, out.Chart)

	_, res = callTool[BacktestOutput](t, cs, "run_hiring_backtest", map[string]any{})
	assert.True(t, res.IsError)
}
