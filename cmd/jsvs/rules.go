package jsvs

import (
	"encoding/json"

	"github.com/jsvs/jsvs/internal/report"
	"github.com/jsvs/jsvs/internal/rules"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the built-in rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flagJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rules.Table())
			}
			return report.PrintRules(cmd.OutOrStdout(), rules.Table())
		},
	}
	rootCmd.AddCommand(cmd)
}
