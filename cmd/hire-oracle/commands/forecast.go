package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hire-oracle/internal/scenario"
	"hire-oracle/internal/simulation"
	"hire-oracle/internal/visuals"
)

type forecastOptions struct {
	json       bool
	report     bool
	open       bool
	backtest   bool
	seed       string
	iterations int
	start      string
}

func newForecastCmd() *cobra.Command {
	var opts forecastOptions

	cmd := &cobra.Command{
		Use:   "forecast <scenario>",
		Short: "Forecast the next hire for a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForecast(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "print the full result as JSON")
	f.BoolVar(&opts.report, "report", false, "write an HTML report to the report directory")
	f.BoolVar(&opts.open, "open", false, "open the HTML report in a browser (implies --report)")
	f.BoolVar(&opts.backtest, "backtest", false, "also replay the scenario checkpoints")
	f.StringVar(&opts.seed, "seed", "", "override the RNG seed")
	f.IntVar(&opts.iterations, "iterations", 0, "override the number of trials")
	f.StringVar(&opts.start, "start", "", "override the start date (YYYY-MM-DD)")
	return cmd
}

func runForecast(cmd *cobra.Command, path string, opts forecastOptions) error {
	file, err := scenario.Load(path)
	if err != nil {
		return err
	}
	if opts.start != "" {
		file.StartDate = opts.start
	}
	start, err := file.Start(time.Now())
	if err != nil {
		return err
	}

	fc := file.ForecastConfig(cfg.Forecast).Merge(simulation.ForecastConfig{
		Seed:       opts.seed,
		Iterations: opts.iterations,
	})

	ctx := cmd.Context()
	res, err := simulation.ForecastFromHistory(ctx, file.History, file.Candidates, start, fc)
	if err != nil {
		return err
	}

	var bt *simulation.BacktestResult
	if opts.backtest && len(file.Checkpoints) > 0 {
		checkpoints, err := file.BacktestCheckpoints()
		if err != nil {
			return err
		}
		r, err := simulation.RunBacktest(ctx, checkpoints, simulation.BacktestConfig{Forecast: fc})
		if err != nil {
			return err
		}
		bt = &r
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		payload := struct {
			Forecast simulation.ForecastResult  `json:"forecast"`
			Backtest *simulation.BacktestResult `json:"backtest,omitempty"`
		}{res, bt}
		if err := enc.Encode(payload); err != nil {
			return err
		}
	} else {
		printForecast(out, file.Name, res, bt)
	}

	if opts.report || opts.open {
		title := file.Name
		if title == "" {
			title = "Hiring Forecast"
		}
		reportPath, err := visuals.WriteReport(cfg.ReportDir, visuals.NewReport(title, res, bt))
		if err != nil {
			return err
		}
		log.Info().Str("path", reportPath).Msg("Report written")
		fmt.Fprintf(cmd.ErrOrStderr(), "Report: %s\n", reportPath)

		if opts.open {
			browser.Stdout = os.Stderr
			if err := browser.OpenFile(reportPath); err != nil {
				log.Warn().Err(err).Msg("Could not open the report in a browser")
			}
		}
	}
	return nil
}

func printForecast(w io.Writer, name string, res simulation.ForecastResult, bt *simulation.BacktestResult) {
	if name != "" {
		fmt.Fprintf(w, "%s\n", name)
	}
	fmt.Fprintf(w, "Start %s | %d active candidates | %d trials | seed %q\n",
		res.StartDate.Format(time.DateOnly), res.Metadata.ActiveCandidates, res.Metadata.Iterations, res.Metadata.Seed)

	table := tablewriter.NewWriter(w)
	table.Header("Percentile", "Date", "Days", "95% CI (days)")
	rows := []struct {
		label string
		date  time.Time
		days  float64
		lower float64
		upper float64
	}{
		{"P10", res.P10Date, res.P10Days, res.ConfidenceIntervals.P10.Lower, res.ConfidenceIntervals.P10.Upper},
		{"P50", res.P50Date, res.P50Days, res.ConfidenceIntervals.P50.Lower, res.ConfidenceIntervals.P50.Upper},
		{"P90", res.P90Date, res.P90Days, res.ConfidenceIntervals.P90.Lower, res.ConfidenceIntervals.P90.Upper},
	}
	for _, r := range rows {
		table.Append(r.label, r.date.Format(time.DateOnly), fmt.Sprintf("%.1f", r.days), fmt.Sprintf("%.1f - %.1f", r.lower, r.upper))
	}
	table.Render()

	fmt.Fprintf(w, "Probability of a hire: %.1f%% | Confidence: %s\n", 100*res.SuccessProbability, res.ConfidenceLevel)
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warning)
	}

	if bt != nil {
		fmt.Fprintln(w, bt.ValidationMessage)
	}
}

func init() {
	rootCmd.AddCommand(newForecastCmd())
}
