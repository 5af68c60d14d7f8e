package main

import (
	"github.com/spf13/cobra"

	"parsetrace/internal/source"
)

// loadInput reads the single input named by args into a new file set. No
// argument or "-" reads stdin.
func (a *app) loadInput(cmd *cobra.Command, args []string) (*source.FileSet, *source.File, error) {
	fileSet := source.NewFileSetWithBase(a.settings.BaseDir)
	opts := source.LoadOptions{NFC: a.settings.NFC}

	var (
		id  source.FileID
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		id, err = fileSet.LoadReader("<stdin>", cmd.InOrStdin(), opts)
	} else {
		id, err = fileSet.Load(args[0], opts)
	}
	if err != nil {
		return nil, nil, err
	}
	return fileSet, fileSet.Get(id), nil
}

func addGrammarFlags(cmd *cobra.Command) {
	cmd.Flags().String("grammar", "", "grammar to run (see `parsetrace grammars`)")
	cmd.Flags().String("strategy", "", "tracer strategy (full|replay|none)")
	cmd.Flags().Bool("nfc", false, "normalize input to Unicode NFC before parsing")
	cmd.Flags().String("base-dir", "", "directory paths are displayed relative to")
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("width", "", "diagnostic detail (short|medium|long)")
	cmd.Flags().Int("context", 0, "source lines shown around an error in long mode")
}

func addTraceFlags(cmd *cobra.Command) {
	cmd.Flags().String("trace-level", "", "trace level (off|frames|hints|debug)")
	cmd.Flags().String("trace-mode", "", "trace storage mode (stream|ring|both)")
	cmd.Flags().String("trace-format", "", "trace output format (text|ndjson|msgpack)")
	cmd.Flags().String("trace-out", "", "trace output path (- for stderr)")
	cmd.Flags().Int("trace-ring-size", 0, "events kept in ring mode")
}
