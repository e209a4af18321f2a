package simulation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnoseStages_PriorOnly(t *testing.T) {
	diags := DiagnoseStages(BuildStageParams(nil, 2, 5), nil)
	require.Len(t, diags, len(FunnelStages))

	for i, d := range diags {
		assert.Equal(t, FunnelStages[i], d.Stage)
		assert.True(t, d.PriorOnly)
		assert.Contains(t, d.Reason, "global prior")
	}

	warnings := Warnings(diags)
	assert.Len(t, warnings, len(FunnelStages))
	assert.Contains(t, warnings[0], "SCREEN")
}

func TestDiagnoseStages_FatTail(t *testing.T) {
	history := []StageHistoricalData{
		{Stage: "ONSITE", Entered: 30, Passed: 12, Durations: []float64{2, 2, 3, 3, 3, 3, 4, 4, 60, 90}},
	}
	params := BuildStageParams(history, 2, 5)
	diags := DiagnoseStages(params, history)

	var onsite StageDiagnostic
	for _, d := range diags {
		if d.Stage == StageOnsite {
			onsite = d
		}
	}
	assert.Equal(t, 30, onsite.Observations)
	assert.False(t, onsite.PriorOnly)
	assert.InDelta(t, 3.0, onsite.MedianDays, 1e-9)
	assert.True(t, onsite.FatTailed, "tail ratio %.2f", onsite.TailRatio)

	found := false
	for _, w := range Warnings(diags) {
		if strings.Contains(w, "ONSITE") && strings.Contains(w, "fat-tailed") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDiagnoseStages_IgnoresNegativeDurations(t *testing.T) {
	history := []StageHistoricalData{
		{Stage: "SCREEN", Entered: 20, Passed: 10, Durations: []float64{-400, -300, 3, 4, 5, 6, 7}},
	}
	params := BuildStageParams(history, 2, 5)
	diags := DiagnoseStages(params, history)
	require.NotEmpty(t, diags)

	screen := diags[0]
	assert.Equal(t, StageScreen, screen.Stage)
	assert.Equal(t, 5, screen.DurationN)
	assert.InDelta(t, 5.0, screen.MedianDays, 1e-9)
	assert.False(t, screen.FatTailed)
}

func TestDiagnoseStages_LowShape(t *testing.T) {
	history := []StageHistoricalData{
		{Stage: "OFFER", Entered: 40, Passed: 30, Durations: []float64{1, 1, 1, 2, 1, 40, 1, 1}},
	}
	params := BuildStageParams(history, 2, 5)
	require.Less(t, params[StageOffer].Duration.Shape, 1.0)

	for _, d := range DiagnoseStages(params, nil) {
		if d.Stage == StageOffer {
			assert.True(t, d.LowShape)
			assert.Contains(t, d.Reason, "shape below 1")
		}
	}
}
