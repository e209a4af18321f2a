package visuals

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hire-oracle/internal/simulation"
)

func sampleForecast(t *testing.T) simulation.ForecastResult {
	t.Helper()
	history := []simulation.StageHistoricalData{
		{Stage: "SCREEN", Entered: 100, Passed: 40, Durations: []float64{3, 4, 5, 6, 7}},
		{Stage: "HM_SCREEN", Entered: 100, Passed: 50, Durations: []float64{5, 6, 7, 8, 9}},
		{Stage: "ONSITE", Entered: 100, Passed: 40, Durations: []float64{8, 9, 10, 11, 12}},
		{Stage: "OFFER", Entered: 100, Passed: 75, Durations: []float64{3, 4, 5, 6, 7}},
	}
	candidates := []simulation.PipelineCandidate{
		{CandidateID: "a", CurrentStage: "SCREEN"},
		{CandidateID: "b", CurrentStage: "ONSITE"},
	}
	start := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	cfg := simulation.ForecastConfig{Iterations: 2000, BootstrapSamples: 100, Seed: "visuals"}

	res, err := simulation.ForecastFromHistory(context.Background(), history, candidates, start, cfg)
	require.NoError(t, err)
	return res
}

func TestGenerateForecastHistogram(t *testing.T) {
	res := sampleForecast(t)
	chart := GenerateForecastHistogram(res.Histogram)

	assert.True(t, strings.HasPrefix(chart, "```mermaid\nxychart-beta\n"))
	assert.True(t, strings.HasSuffix(chart, "```"))
	assert.Contains(t, chart, "Days to Next Hire")
	assert.Equal(t, 1, strings.Count(chart, "    bar ["))

	assert.Empty(t, GenerateForecastHistogram(simulation.Histogram{}))
}

func TestGenerateHireCDF_PlateausAtSuccessProbability(t *testing.T) {
	res := sampleForecast(t)
	chart := GenerateHireCDF(res)
	require.NotEmpty(t, chart)

	line := chart[strings.Index(chart, "line [")+len("line [") : strings.LastIndex(chart, "]")]
	points := strings.Split(line, ", ")
	last, err := strconv.ParseFloat(points[len(points)-1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 100*res.SuccessProbability, last, 0.051)

	empty := simulation.ForecastResult{Metadata: simulation.ForecastMetadata{Iterations: 100}}
	assert.Empty(t, GenerateHireCDF(empty))
}

func TestGenerateFunnelAndDurationCharts(t *testing.T) {
	params := simulation.BuildStageParams(nil, 2, 5)

	funnel := GenerateFunnelChart(params)
	assert.Contains(t, funnel, `x-axis ["SCREEN", "HM_SCREEN", "ONSITE", "OFFER"]`)
	assert.Contains(t, funnel, "bar [50.0, 50.0, 50.0, 50.0]")

	durations := GenerateStageDurationChart(params)
	assert.Contains(t, durations, "bar [5.0, 7.0, 10.0, 5.0]")
	assert.Contains(t, durations, `y-axis "Days" 0 --> 12`)

	assert.Empty(t, GenerateFunnelChart(nil))
}

func TestGenerateOutcomePie(t *testing.T) {
	res := simulation.ForecastResult{Metadata: simulation.ForecastMetadata{Iterations: 1000, TrialsWithHire: 180}}
	pie := GenerateOutcomePie(res)

	assert.Contains(t, pie, "\"Hire\" : 180")
	assert.Contains(t, pie, "\"No hire\" : 820")
}

func TestGenerateBacktestChart(t *testing.T) {
	bt := simulation.BacktestResult{Checkpoints: []simulation.ValidationCheckpoint{
		{Date: "2026-01-05", ActualDays: 14, PredictedP10: 9, PredictedP50: 15, PredictedP90: 24},
		{Date: "2026-02-02", ActualDays: 30, PredictedP10: 10, PredictedP50: 18, PredictedP90: 27},
	}}
	chart := GenerateBacktestChart(bt)

	assert.Equal(t, 4, strings.Count(chart, "    line ["))
	assert.Contains(t, chart, `x-axis ["2026-01-05", "2026-02-02"]`)
	assert.Contains(t, chart, "0 --> 33")
	assert.Empty(t, GenerateBacktestChart(simulation.BacktestResult{}))
}

func TestRenderReport(t *testing.T) {
	res := sampleForecast(t)
	bt := &simulation.BacktestResult{ValidationMessage: "Walk-Forward Analysis: 3/4 (75%) of actual hires fell within the predicted P10-P90 cone."}
	report := NewReport("Backend <Engineer>", res, bt)

	assert.Len(t, report.Stages, len(simulation.FunnelStages))
	assert.Len(t, report.Charts, 5)

	var buf bytes.Buffer
	require.NoError(t, RenderReport(&buf, report))
	html := buf.String()

	assert.Contains(t, html, "Backend &lt;Engineer&gt;")
	assert.Contains(t, html, `<pre class="mermaid">`)
	assert.Contains(t, html, "Walk-Forward Analysis")
	assert.Contains(t, html, res.P50Date.Format(time.DateOnly))
	assert.Contains(t, html, string(res.ConfidenceLevel))
}

func TestWriteReport(t *testing.T) {
	res := sampleForecast(t)
	dir := t.TempDir()

	path, err := WriteReport(dir, NewReport("Staff Engineer / Platform", res, nil))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(path, dir))
	assert.Contains(t, path, "staff-engineer-platform-")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
