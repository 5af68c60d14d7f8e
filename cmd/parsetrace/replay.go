package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"parsetrace/internal/render"
	"parsetrace/internal/trace"
)

func newReplayCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay [flags] <log>",
		Short: "Render a trace log written by parse --trace-format msgpack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReplay(cmd, args[0])
		},
	}
	addRenderFlags(cmd)
	return cmd
}

func (a *app) runReplay(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open trace log: %w", err)
	}
	defer f.Close()

	log, err := trace.ReadLog(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	a.log.Debugf("replaying %d records from %s", len(log.Records), path)
	return render.Records(cmd.OutOrStdout(), log, a.renderOptions(path))
}
