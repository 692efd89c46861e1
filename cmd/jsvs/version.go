package jsvs

import (
	"fmt"

	"github.com/jsvs/jsvs/internal/report"
	"github.com/spf13/cobra"
)

func init() {
	report.ToolVersion = version
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the jsvs version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "jsvs", version)
		},
	})
}
