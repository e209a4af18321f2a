package commands

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"hire-oracle/internal/scenario"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of scenario files",
	Args:  cobra.NoArgs,
	// No configuration or log file is needed to print a schema.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := jsonschema.For[scenario.File](nil)
		if err != nil {
			return err
		}
		s.Title = "Hire Oracle scenario"

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
