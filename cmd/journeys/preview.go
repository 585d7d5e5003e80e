package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/journeys/internal/cli"
	"github.com/aretw0/journeys/pkg/domain"
)

var previewCmd = &cobra.Command{
	Use:   "preview <journey-id>",
	Short: "Preview a journey interactively",
	Long: `Walks through a journey in the terminal. Type an answer and press enter,
or use :next, :back, :add, :remove N and :quit. In page mode answer fields
with id=value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		mode, _ := cmd.Flags().GetString("mode")
		sessionID, _ := cmd.Flags().GetString("session")
		jsonMode, _ := cmd.Flags().GetBool("json")
		watch, _ := cmd.Flags().GetBool("watch")
		fresh, _ := cmd.Flags().GetBool("fresh")

		return cli.Preview(cmd.Context(), app, cli.PreviewOptions{
			JourneyID: args[0],
			SessionID: sessionID,
			Mode:      domain.PreviewMode(mode),
			JSON:      jsonMode,
			Watch:     watch,
			Fresh:     fresh,
			In:        os.Stdin,
			Out:       os.Stdout,
		})
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().String("mode", string(domain.ModeQuestion), "Preview mode: question or page")
	previewCmd.Flags().StringP("session", "s", "", "Session ID to persist and resume")
	previewCmd.Flags().Bool("json", false, "Use the JSON lines protocol on stdin and stdout")
	previewCmd.Flags().BoolP("watch", "w", false, "Reload when journey documents change")
	previewCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
}
