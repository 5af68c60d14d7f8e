package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"parsetrace/internal/parser"
	"parsetrace/internal/render"
	"parsetrace/internal/trace"
	"parsetrace/internal/ui"
)

func newViewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [flags] [file|-]",
		Short: "Browse the trace of one parse interactively",
		Long: `View parses one input with the full tracer and opens the trace in a pager.
Type / to filter lines, e to jump to the next failing rule and q to quit.
Without a terminal on stdout the trace is printed instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runView(cmd, args)
		},
	}
	addGrammarFlags(cmd)
	addRenderFlags(cmd)
	return cmd
}

func (a *app) runView(cmd *cobra.Command, args []string) error {
	fileSet, file, err := a.loadInput(cmd, args)
	if err != nil {
		return err
	}

	// The viewer needs the whole log whatever strategy is configured
	tr := trace.NewCTracer(trace.SinkFromContext(cmd.Context()))
	res := a.settings.Grammar.Run(tr, file.Span(), parser.Options{})

	path := fileSet.DisplayPath(file.ID)
	opts := a.renderOptions(path)

	var plain, styled, footer strings.Builder
	opts.Color = false
	if err := render.Trace(&plain, tr, trace.All, opts); err != nil {
		return err
	}
	opts.Color = true
	if err := render.Trace(&styled, tr, trace.All, opts); err != nil {
		return err
	}
	opts.Color = a.color
	opts.Width = render.Short
	if res.OK() {
		fmt.Fprintf(&footer, "ok: %v", res.Value)
	} else if err := render.Error(&footer, res.Err, opts); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	f, ok := out.(*os.File)
	if !ok || !isTerminal(f) {
		fmt.Fprint(out, plain.String())
		fmt.Fprintln(out, strings.TrimRight(footer.String(), "\n"))
		return nil
	}

	title := fmt.Sprintf("%s | %s | %d events", path, a.settings.Grammar.Name, tr.Len())
	model := ui.NewViewer(title, ui.ZipLines(plain.String(), styled.String()), strings.TrimRight(footer.String(), "\n"))
	popts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(f)}
	if len(args) == 0 || args[0] == "-" {
		// stdin carried the input; read keys from the terminal
		popts = append(popts, tea.WithInputTTY())
	}
	_, err = tea.NewProgram(model, popts...).Run()
	return err
}
