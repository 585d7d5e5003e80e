package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/journeys/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph <journey-id>",
	Short: "Export a journey as a Mermaid flowchart",
	Long:  `Outputs a Mermaid diagram (graph TD) of the pages, groups and questions of a journey, with rule and follow-up edges.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		return cli.Graph(cmd.Context(), app, args[0], sessionID, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Highlight the progress of a stored session")
}
