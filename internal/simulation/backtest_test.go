package simulation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hireAfter(days int) *time.Time {
	d := testStart.AddDate(0, 0, days)
	return &d
}

func TestRunBacktest(t *testing.T) {
	cfg := BacktestConfig{
		Forecast:    ForecastConfig{Iterations: 3000, BootstrapSamples: 100, Seed: "backtest"},
		Parallelism: 2,
	}
	checkpoints := []BacktestCheckpoint{
		{Date: testStart, History: fourStageHistory(), Candidates: roster(4, "SCREEN"), ActualHireDate: hireAfter(25)},
		{Date: testStart.AddDate(0, 0, -30), History: fourStageHistory(), Candidates: roster(4, "SCREEN"), ActualHireDate: hireAfter(-5)},
		{Date: testStart.AddDate(0, 0, 7), History: fourStageHistory(), Candidates: roster(2, "ONSITE")},
	}

	res, err := RunBacktest(context.Background(), checkpoints, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Checkpoints, 2)
	assert.Equal(t, testStart.AddDate(0, 0, -30).Format(time.DateOnly), res.Checkpoints[0].Date)
	assert.InDelta(t, 25.0, res.Checkpoints[0].ActualDays, 1e-9)
	assert.InDelta(t, 25.0, res.Checkpoints[1].ActualDays, 1e-9)

	for _, cp := range res.Checkpoints {
		assert.LessOrEqual(t, cp.PredictedP10, cp.PredictedP50)
		assert.LessOrEqual(t, cp.PredictedP50, cp.PredictedP90)
		assert.True(t, cp.IsWithinCone, "actual %.1f outside [%.1f, %.1f]", cp.ActualDays, cp.PredictedP10, cp.PredictedP90)
	}
	assert.Equal(t, 1.0, res.AccuracyScore)
	assert.True(t, strings.HasPrefix(res.ValidationMessage, "Walk-Forward Analysis: 2/2"))

	require.Len(t, res.ErrorChart.Values, 2)
	assert.InDelta(t, res.Checkpoints[0].ActualDays-res.Checkpoints[0].PredictedP50, res.ErrorChart.Values[0], 1e-9)
	assert.False(t, res.ErrorChart.HasShift())
}

func TestRunBacktest_LowReliability(t *testing.T) {
	cfg := BacktestConfig{Forecast: ForecastConfig{Iterations: 1000, BootstrapSamples: 50}}
	var checkpoints []BacktestCheckpoint
	for i := 0; i < 4; i++ {
		start := testStart.AddDate(0, 0, i)
		// A hire on day one is below any simulated P10 for a four-stage journey.
		hire := start.AddDate(0, 0, 1)
		checkpoints = append(checkpoints, BacktestCheckpoint{
			Date: start, History: fourStageHistory(), Candidates: roster(1, "SCREEN"), ActualHireDate: &hire,
		})
	}

	res, err := RunBacktest(context.Background(), checkpoints, cfg)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.AccuracyScore)
	assert.Contains(t, res.ValidationMessage, "Low forecast reliability")
}

func TestRunBacktest_NothingVerifiable(t *testing.T) {
	res, err := RunBacktest(context.Background(), []BacktestCheckpoint{{Date: testStart}}, BacktestConfig{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Skipped)
	assert.Empty(t, res.Checkpoints)
	assert.Contains(t, res.ValidationMessage, "Insufficient history")
}

func TestRunBacktest_SustainedBias(t *testing.T) {
	cfg := BacktestConfig{Forecast: ForecastConfig{Iterations: 1000, BootstrapSamples: 20, Seed: "bias"}}
	var checkpoints []BacktestCheckpoint
	for i := 0; i < 16; i++ {
		start := testStart.AddDate(0, 0, 7*i)
		wait := 2
		if i >= 8 {
			wait = 80
		}
		hire := start.AddDate(0, 0, wait)
		checkpoints = append(checkpoints, BacktestCheckpoint{
			Date: start, History: fourStageHistory(), Candidates: roster(3, "SCREEN"), ActualHireDate: &hire,
		})
	}

	res, err := RunBacktest(context.Background(), checkpoints, cfg)
	require.NoError(t, err)

	require.Len(t, res.ErrorChart.Values, 16)
	assert.True(t, res.ErrorChart.HasShift())
	assert.Contains(t, res.ValidationMessage, "sustained bias")
}
