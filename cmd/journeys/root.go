package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/journeys/internal/cli"
	"github.com/aretw0/journeys/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "journeys",
	Short: "Journeys previews insurance journey schemas",
	Long: `Journeys loads journey schemas (pages, groups, questions, rules and
repeatable follow-ups) and previews them one question or one page at a time,
from the terminal, over HTTP or as an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default .journeys.yaml)")
	flags.String("dir", ".", "Directory containing the journey documents")
	flags.String("loader", "loam", "Journey loader: loam or file")
	flags.String("store", "memory", "Session store: memory, file or redis")
	flags.String("store-dir", ".journeys/sessions", "Directory of the file session store")
	flags.String("redis-addr", "localhost:6379", "Redis address for the redis session store")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
}

// newApp loads the configuration for cmd and wires the application.
func newApp(cmd *cobra.Command, opts ...cli.AppOption) (*cli.App, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, opts...)
}
