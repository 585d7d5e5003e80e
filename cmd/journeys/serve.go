package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/journeys/internal/cli"
	"github.com/aretw0/journeys/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP preview API",
	Long:  `Serves the preview API described by /openapi.yaml, with server-sent state diffs on /events and Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(path, cmd.Flags())
		if err != nil {
			return err
		}
		var opts []cli.AppOption
		if cfg.HTTP.Metrics {
			opts = append(opts, cli.WithMetrics())
		}
		app, err := cli.NewApp(cfg, opts...)
		if err != nil {
			return err
		}
		defer app.Close()

		ln, err := net.Listen("tcp", app.Config.HTTP.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", app.Config.HTTP.Addr, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving journeys from %s on %s\n", app.Config.Journeys.Dir, ln.Addr())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Serve(ctx, app, ln)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
}
