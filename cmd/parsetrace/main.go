package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"parsetrace/internal/version"
)

// newRootCmd builds the command tree. Every call returns a fresh tree so
// tests can run commands side by side.
func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "parsetrace",
		Short: "Parser tracing and diagnostics workbench",
		Long: `parsetrace runs the bundled demo grammars over input and shows how the
parser got where it did: the rule trace, expected and suggested constructs,
and a rendered error.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default: parsetrace.toml or parsetrace.yaml found upwards)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().CountP("verbose", "v", "log verbosity (repeat for more)")
	rootCmd.PersistentFlags().Bool("timings", false, "print phase timings to stderr")
	rootCmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("memprofile", "", "write a heap profile to this file")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")

	rootCmd.AddCommand(
		newParseCmd(a),
		newCheckCmd(a),
		newReplayCmd(a),
		newViewCmd(a),
		newGrammarsCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// main executes the root command and exits with status 1 on any error.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
