package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"parsetrace/internal/diag"
	"parsetrace/internal/parser"
	"parsetrace/internal/render"
	"parsetrace/internal/trace"
)

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] [file|-]",
		Short: "Parse one input and show the result or a diagnostic",
		Long: `Parse runs the selected grammar over a file or stdin. On success the value
and any suggestions are printed; on failure the error is rendered with its
expected and suggested constructs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args)
		},
	}
	addGrammarFlags(cmd)
	addRenderFlags(cmd)
	addTraceFlags(cmd)
	cmd.Flags().Bool("trace", false, "print the rendered trace after the result")
	cmd.Flags().String("within", "", "with --trace, only show events inside this rule")
	return cmd
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	showTrace, err := cmd.Flags().GetBool("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	within, err := cmd.Flags().GetString("within")
	if err != nil {
		return fmt.Errorf("failed to get within flag: %w", err)
	}
	if a.settings.Msgpack && a.settings.TraceOut == "" {
		return fmt.Errorf("--trace-format msgpack needs --trace-out")
	}

	phase := a.timer.Begin("load")
	fileSet, file, err := a.loadInput(cmd, args)
	if err != nil {
		return err
	}
	a.timer.End(phase, fmt.Sprintf("%d bytes", len(file.Content)))
	tr, err := trace.New(a.tracerConfig(cmd))
	if err != nil {
		return err
	}

	a.log.Debugf("parsing %s (%d bytes) with %s", file.Path, len(file.Content), a.settings.Grammar.Name)
	phase = a.timer.Begin("parse")
	res := a.settings.Grammar.Run(tr, file.Span(), parser.Options{})
	a.timer.End(phase, a.settings.Grammar.Name)

	phase = a.timer.Begin("render")
	defer a.timer.End(phase, "")
	out := cmd.OutOrStdout()
	opts := a.renderOptions(fileSet.DisplayPath(file.ID))
	if showTrace {
		if err := writeTrace(out, tr, within, opts); err != nil {
			return err
		}
	}
	if a.settings.Msgpack {
		if err := a.writeLog(file.Content, tr); err != nil {
			return err
		}
	}

	if !res.OK() {
		if err := render.Error(out, res.Err, opts); err != nil {
			return err
		}
		a.timer.End(phase, "")
		return a.fail(cmd)
	}
	fmt.Fprintln(out, res.Value)
	if !a.quiet {
		return render.Suggestions(out, res.Suggestions, opts)
	}
	return nil
}

func writeTrace(w io.Writer, tr trace.Tracer, within string, opts render.Options) error {
	switch t := tr.(type) {
	case *trace.CTracer:
		return render.Trace(w, t, withinRule(within), opts)
	case *trace.RTracer:
		return render.Replay(w, t, opts)
	default:
		_, err := fmt.Fprintln(w, "tracing disabled (strategy none)")
		return err
	}
}

// withinRule keeps events of the named rule and of everything it calls.
func withinRule(name string) trace.Filter {
	if name == "" {
		return trace.All
	}
	named := func(c diag.Code) bool {
		return c != nil && strings.EqualFold(c.String(), name)
	}
	return func(ev *trace.Event) bool {
		return named(ev.Func) || slices.ContainsFunc(ev.Parents.Codes(), named)
	}
}

// writeLog persists the full tracer's log for `parsetrace replay`.
func (a *app) writeLog(input string, tr trace.Tracer) error {
	ct, ok := tr.(*trace.CTracer)
	if !ok {
		return fmt.Errorf("msgpack trace logs need the full strategy, not %s", a.settings.Strategy)
	}
	f, err := os.Create(a.settings.TraceOut)
	if err != nil {
		return fmt.Errorf("failed to create trace log: %w", err)
	}
	if err := trace.WriteLog(f, input, ct); err != nil {
		_ = f.Close()
		return err
	}
	a.log.Infof("wrote %d trace records to %s", ct.Len(), a.settings.TraceOut)
	return f.Close()
}
