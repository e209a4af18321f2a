package visuals

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"hire-oracle/internal/simulation"
)

// StageRow is one line of the stage parameter table in the report.
type StageRow struct {
	Stage        simulation.Stage
	PassRate     string
	Credible     string
	Observations int
	MeanDays     string
	Shape        string
	Source       string
}

// Report is everything rendered into the HTML forecast report.
type Report struct {
	Title       string
	GeneratedAt time.Time
	Result      simulation.ForecastResult
	Backtest    *simulation.BacktestResult
	Stages      []StageRow
	Charts      []string
}

// NewReport assembles a report from a forecast and an optional backtest.
func NewReport(title string, res simulation.ForecastResult, backtest *simulation.BacktestResult) Report {
	r := Report{
		Title:       title,
		GeneratedAt: time.Now().UTC(),
		Result:      res,
		Backtest:    backtest,
	}

	for _, stage := range res.StageParams.Stages() {
		p := res.StageParams[stage]
		source := "history"
		if p.PriorOnly {
			source = "prior"
		}
		r.Stages = append(r.Stages, StageRow{
			Stage:        stage,
			PassRate:     fmt.Sprintf("%.1f%%", 100*p.ConversionRate.Mean),
			Credible:     fmt.Sprintf("%.1f%% - %.1f%%", 100*p.ConversionRate.Lower, 100*p.ConversionRate.Upper),
			Observations: p.ConversionRate.N,
			MeanDays:     fmt.Sprintf("%.1f", p.Duration.Mean),
			Shape:        fmt.Sprintf("%.2f", p.Duration.Shape),
			Source:       source,
		})
	}

	bodies := []string{
		histogramBody(res.Histogram),
		cdfBody(res),
		funnelBody(res.StageParams),
		durationBody(res.StageParams),
		outcomeBody(res),
	}
	if backtest != nil {
		bodies = append(bodies, backtestBody(*backtest))
	}
	for _, b := range bodies {
		if b != "" {
			r.Charts = append(r.Charts, b)
		}
	}
	return r
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format(time.DateOnly) },
	"pct":  func(f float64) string { return fmt.Sprintf("%.1f%%", 100*f) },
	"days": func(f float64) string { return fmt.Sprintf("%.1f", f) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2933; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #cbd2d9; padding: 0.35rem 0.75rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
.level { font-weight: bold; }
.warn { color: #8d2b0b; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Forecast from {{date .Result.StartDate}} &middot; seed <code>{{.Result.Metadata.Seed}}</code> &middot; {{.Result.Metadata.Iterations}} trials &middot; run {{.Result.Metadata.RunID}}</p>
<p class="level">Confidence: {{.Result.ConfidenceLevel}} &middot; probability of a hire: {{pct .Result.SuccessProbability}}</p>
<table>
<tr><th>Percentile</th><th>Date</th><th>Days</th><th>95% CI (days)</th></tr>
<tr><td>P10</td><td>{{date .Result.P10Date}}</td><td>{{days .Result.P10Days}}</td><td>{{days .Result.ConfidenceIntervals.P10.Lower}} - {{days .Result.ConfidenceIntervals.P10.Upper}}</td></tr>
<tr><td>P50</td><td>{{date .Result.P50Date}}</td><td>{{days .Result.P50Days}}</td><td>{{days .Result.ConfidenceIntervals.P50.Lower}} - {{days .Result.ConfidenceIntervals.P50.Upper}}</td></tr>
<tr><td>P90</td><td>{{date .Result.P90Date}}</td><td>{{days .Result.P90Days}}</td><td>{{days .Result.ConfidenceIntervals.P90.Lower}} - {{days .Result.ConfidenceIntervals.P90.Upper}}</td></tr>
</table>
{{if .Result.Warnings}}<ul>{{range .Result.Warnings}}<li class="warn">{{.}}</li>{{end}}</ul>{{end}}
<h2>Stage parameters</h2>
<table>
<tr><th>Stage</th><th>Pass rate</th><th>95% credible</th><th>Observations</th><th>Mean days</th><th>Shape</th><th>Source</th></tr>
{{range .Stages}}<tr><td>{{.Stage}}</td><td>{{.PassRate}}</td><td>{{.Credible}}</td><td>{{.Observations}}</td><td>{{.MeanDays}}</td><td>{{.Shape}}</td><td>{{.Source}}</td></tr>
{{end}}</table>
{{with .Backtest}}<h2>Backtest</h2>
<p>{{.ValidationMessage}}</p>
{{end}}<h2>Charts</h2>
{{range .Charts}}<pre class="mermaid">
{{.}}</pre>
{{end}}<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
<footer><small>Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</small></footer>
</body>
</html>
`))

// RenderReport writes the HTML report to w.
func RenderReport(w io.Writer, r Report) error {
	return reportTemplate.Execute(w, r)
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// WriteReport renders r into dir and returns the file path.
func WriteReport(dir string, r Report) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := unsafeFileChars.ReplaceAllString(strings.ToLower(r.Title), "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "forecast"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.html", name, r.Result.Metadata.RunID))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := RenderReport(f, r); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return path, nil
}
