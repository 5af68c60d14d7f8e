package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"parsetrace/internal/demo"
)

func newGrammarsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "grammars",
		Short: "List the bundled grammars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range demo.Names() {
				g, err := demo.Lookup(name)
				if err != nil {
					return err
				}
				mark := " "
				if g.Name == a.settings.Grammar.Name {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s %s\t%s\t%s\n", mark, g.Name, g.Start, g.Summary)
			}
			return tw.Flush()
		},
	}
}
