package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/journeys/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [journey-id...]",
	Short: "Lint journeys for broken references and invalid settings",
	Long:  `Loads every journey (or the ones named) and reports dangling or forward rule references, duplicate IDs, bad repeat bounds and checkout problems.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.Validate(cmd.Context(), app.Engine, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
