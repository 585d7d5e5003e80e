package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/journeys/internal/cli"
	"github.com/aretw0/journeys/pkg/domain"
)

var stepsCmd = &cobra.Command{
	Use:   "steps <journey-id>",
	Short: "Print the visible steps of a journey for a set of answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		mode, _ := cmd.Flags().GetString("mode")
		answers, _ := cmd.Flags().GetString("answers")
		return cli.PrintSteps(cmd.Context(), app.Engine, args[0], domain.PreviewMode(mode), answers, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(stepsCmd)
	stepsCmd.Flags().String("mode", string(domain.ModeQuestion), "Preview mode: question or page")
	stepsCmd.Flags().String("answers", "", `Answers as JSON, e.g. '{"claims":"Yes","claims/amount/a":100}'`)
}
