package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func buildAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List registered agents and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(configPath)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTATUS\tTASKS\tSPECIALIZATION")
			for _, ag := range a.agents.ListAgents() {
				fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\n", ag.Name, ag.Status, ag.CurrentTasks, ag.MaxConcurrentTasks, ag.Specialization)
			}
			return w.Flush()
		},
	}
}
