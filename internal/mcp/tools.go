package mcp

import (
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

const guardrail = "\n\nSTRICT GUARDRAIL: YOU MUST NEVER PERFORM PROBABILISTIC FORECASTING OR STATISTICAL ANALYSIS AUTONOMOUSLY.\n" +
	"DO NOT provide hire dates or probabilities from your own reasoning if this tool fails. Report the error and ask the user for the missing data."

func readOnly(title string) *sdk.ToolAnnotations {
	return &sdk.ToolAnnotations{Title: title, ReadOnlyHint: true, IdempotentHint: true}
}

func (s *Server) registerTools() {
	sdk.AddTool(s.sdk, &sdk.Tool{
		Name: "run_hiring_forecast",
		Description: "Forecast when the next hire will happen for one requisition. Every active candidate races through the remaining interview stages in each Monte Carlo trial; the earliest hire per trial forms the distribution.\n\n" +
			"Returns P10/P50/P90 dates with bootstrap 95% intervals, the probability that any current candidate is hired, and a confidence level (HIGH, MEDIUM, LOW, INSUFFICIENT).\n" +
			"Pass either 'scenario_path' (a YAML/JSON scenario under the data directory) or inline 'history' and 'candidates'; inline values win.\n" +
			"INSUFFICIENT or a 365-day fallback means the pipeline cannot produce a hire as it stands. Say so plainly instead of softening it." + guardrail,
		Annotations: readOnly("Run Hiring Forecast"),
	}, s.handleRunForecast)

	sdk.AddTool(s.sdk, &sdk.Tool{
		Name: "get_stage_parameters",
		Description: "Show the per-stage pass-rate posteriors (Beta) and duration distributions (Gamma) the forecast would use, with diagnostics for stages that run on priors only, have very skewed durations, or show fat tails.\n\n" +
			"Use this to explain WHY a forecast looks the way it does before changing any inputs.",
		Annotations: readOnly("Get Stage Parameters"),
	}, s.handleGetStageParameters)

	sdk.AddTool(s.sdk, &sdk.Tool{
		Name: "run_hiring_backtest",
		Description: "Walk-forward validation: replay the forecast at past checkpoints and check whether the actual time to hire fell inside the predicted P10-P90 cone.\n\n" +
			"Checkpoints without an observed hire are skipped. The error chart tracks actual minus predicted P50 per checkpoint; a shift signal means the forecast is consistently early or late. An accuracy well below 80% means the stage history does not describe how this requisition actually moves." + guardrail,
		Annotations: readOnly("Run Hiring Backtest"),
	}, s.handleRunBacktest)
}
