package jsvs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	flagJSON    bool
	flagSARIF   bool
	flagFailOn  string
	flagNoColor bool
	flagVerbose bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the jsvs CLI.
var rootCmd = &cobra.Command{
	Use:           "jsvs",
	Short:         "Find suspicious patterns in JavaScript",
	Long:          "jsvs scans JavaScript sources and HTML pages for dangerous API use, hex obfuscation and nested Base64 payloads.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a non-zero exit status without an error message.
type exitError struct{ code int }

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// errFindings is returned when findings reach the --fail-on threshold.
var errFindings = &exitError{code: 1}

// Execute runs the jsvs CLI. It should be called by the main package.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	return 2
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	rootCmd.PersistentFlags().StringVar(&flagFailOn, "fail-on", "", "exit 1 on findings at or above warning|alert|none (default alert)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging to stderr")
}
