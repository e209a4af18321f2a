package commands

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"hire-oracle/internal/scenario"
	"hire-oracle/internal/simulation"
)

func newParamsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "params <scenario>",
		Short: "Show the stage parameters learned from a scenario's history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			fc, err := file.ForecastConfig(cfg.Forecast).Normalize()
			if err != nil {
				return err
			}

			table := simulation.BuildStageParams(file.History, fc.PriorStrength, fc.MinSampleSize)
			diags := simulation.DiagnoseStages(table, file.History)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Stages      simulation.StageParamTable   `json:"stages"`
					Diagnostics []simulation.StageDiagnostic `json:"diagnostics"`
				}{table, diags})
			}

			tw := tablewriter.NewWriter(out)
			tw.Header("Stage", "N", "Pass rate", "95% credible", "Mean days", "Shape", "Rate", "Source")
			for _, stage := range table.Stages() {
				p := table[stage]
				source := "history"
				if p.PriorOnly {
					source = "prior"
				}
				tw.Append(
					string(stage),
					fmt.Sprintf("%d", p.ConversionRate.N),
					fmt.Sprintf("%.1f%%", 100*p.ConversionRate.Mean),
					fmt.Sprintf("%.1f%% - %.1f%%", 100*p.ConversionRate.Lower, 100*p.ConversionRate.Upper),
					fmt.Sprintf("%.1f", p.Duration.Mean),
					fmt.Sprintf("%.2f", p.Duration.Shape),
					fmt.Sprintf("%.3f", p.Duration.Rate),
					source,
				)
			}
			tw.Render()

			for _, w := range simulation.Warnings(diags) {
				fmt.Fprintf(out, "  ! %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print parameters and diagnostics as JSON")
	return cmd
}

func init() {
	rootCmd.AddCommand(newParamsCmd())
}
