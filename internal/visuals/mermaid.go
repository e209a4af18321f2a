package visuals

import (
	"fmt"
	"math"
	"strings"

	"hire-oracle/internal/simulation"
)

// maxCDFPoints keeps the xychart readable; Mermaid starts overlapping
// labels at around 60 points.
const maxCDFPoints = 60

func fence(body string) string {
	if body == "" {
		return ""
	}
	return "```mermaid\n" + body + "```"
}

// GenerateForecastHistogram creates a Mermaid bar chart of simulated days to the next hire.
func GenerateForecastHistogram(h simulation.Histogram) string {
	return fence(histogramBody(h))
}

func histogramBody(h simulation.Histogram) string {
	if len(h.Bins) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0
	for _, b := range h.Bins {
		if h.BinWidth == 1 {
			labels = append(labels, fmt.Sprintf("\"%d\"", b.From))
		} else {
			labels = append(labels, fmt.Sprintf("\"%d-%d\"", b.From, b.To-1))
		}
		values = append(values, fmt.Sprintf("%d", b.Count))
		if b.Count > maxVal {
			maxVal = b.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Days to Next Hire (Simulated Trials)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Trials\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return sb.String()
}

// GenerateHireCDF creates a Mermaid line chart of the probability of at
// least one hire by each day. The curve plateaus at the success probability,
// not at 100%.
func GenerateHireCDF(res simulation.ForecastResult) string {
	return fence(cdfBody(res))
}

func cdfBody(res simulation.ForecastResult) string {
	if len(res.SimulatedDays) == 0 || res.Metadata.Iterations == 0 {
		return ""
	}
	h := res.Histogram
	if len(h.Bins) == 0 {
		return ""
	}

	step := 1
	if len(h.Bins) > maxCDFPoints {
		step = int(math.Ceil(float64(len(h.Bins)) / maxCDFPoints))
	}

	var labels []string
	var values []string
	cumulative := 0
	for i, b := range h.Bins {
		cumulative += b.Count
		if i%step == 0 || i == len(h.Bins)-1 {
			labels = append(labels, fmt.Sprintf("\"%d\"", b.To-1))
			values = append(values, fmt.Sprintf("%.1f", 100*float64(cumulative)/float64(res.Metadata.Iterations)))
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Probability of a Hire by Day\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis \"Days\" [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Probability (%)\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(values, ", ")))
	return sb.String()
}

// GenerateFunnelChart creates a Mermaid bar chart of posterior mean pass rates per stage.
func GenerateFunnelChart(params simulation.StageParamTable) string {
	return fence(funnelBody(params))
}

func funnelBody(params simulation.StageParamTable) string {
	if len(params) == 0 {
		return ""
	}

	var labels []string
	var values []string
	for _, stage := range params.Stages() {
		p := params[stage]
		labels = append(labels, fmt.Sprintf("\"%s\"", stage))
		values = append(values, fmt.Sprintf("%.1f", 100*p.ConversionRate.Mean))
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Stage Pass Rate (Posterior Mean %)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString("    y-axis \"Pass Rate (%)\" 0 --> 100\n")
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return sb.String()
}

// GenerateStageDurationChart creates a Mermaid bar chart of mean days per stage.
func GenerateStageDurationChart(params simulation.StageParamTable) string {
	return fence(durationBody(params))
}

func durationBody(params simulation.StageParamTable) string {
	if len(params) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0.0
	for _, stage := range params.Stages() {
		mean := params[stage].Duration.Mean
		labels = append(labels, fmt.Sprintf("\"%s\"", stage))
		values = append(values, fmt.Sprintf("%.1f", mean))
		if mean > maxVal {
			maxVal = mean
		}
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Stage Duration (Mean Days)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Days\" 0 --> %d\n", int(math.Ceil(math.Max(maxVal, 1)*1.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	return sb.String()
}

// GenerateOutcomePie creates a Mermaid pie chart of trials with and without a hire.
func GenerateOutcomePie(res simulation.ForecastResult) string {
	return fence(outcomeBody(res))
}

func outcomeBody(res simulation.ForecastResult) string {
	if res.Metadata.Iterations == 0 {
		return ""
	}
	hired := res.Metadata.TrialsWithHire

	var sb strings.Builder
	sb.WriteString("pie title Trial Outcomes\n")
	sb.WriteString(fmt.Sprintf("    \"Hire\" : %d\n", hired))
	sb.WriteString(fmt.Sprintf("    \"No hire\" : %d\n", res.Metadata.Iterations-hired))
	return sb.String()
}

// GenerateBacktestChart creates a Mermaid line chart of actual time to hire
// against the predicted P10/P50/P90 at each checkpoint.
func GenerateBacktestChart(res simulation.BacktestResult) string {
	return fence(backtestBody(res))
}

func backtestBody(res simulation.BacktestResult) string {
	if len(res.Checkpoints) == 0 {
		return ""
	}

	var labels, actual, p10, p50, p90 []string
	maxY := 0.0
	for _, cp := range res.Checkpoints {
		labels = append(labels, fmt.Sprintf("\"%s\"", cp.Date))
		actual = append(actual, fmt.Sprintf("%.1f", cp.ActualDays))
		p10 = append(p10, fmt.Sprintf("%.1f", cp.PredictedP10))
		p50 = append(p50, fmt.Sprintf("%.1f", cp.PredictedP50))
		p90 = append(p90, fmt.Sprintf("%.1f", cp.PredictedP90))
		maxY = math.Max(maxY, math.Max(cp.ActualDays, cp.PredictedP90))
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Walk-Forward Backtest (Days to Hire)\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Days\" 0 --> %d\n", int(math.Ceil(math.Max(maxY, 1)*1.1))))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(actual, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(p10, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(p50, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(p90, ", ")))
	return sb.String()
}
