package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	catalog "github.com/nikcli-go/nikcli/internal/models"
)

func buildModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List known models and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROVIDER\tTIER\tCONTEXT\tCAPABILITIES")
			for _, m := range catalog.List(nil) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", m.ID, m.Provider, m.Tier, m.ContextWindow, joinCapabilities(m.Capabilities))
			}
			return w.Flush()
		},
	}
}

func joinCapabilities(caps []catalog.Capability) string {
	if len(caps) == 0 {
		return "-"
	}
	out := string(caps[0])
	for _, c := range caps[1:] {
		out += "," + string(c)
	}
	return out
}
