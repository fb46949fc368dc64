// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the backlog-exporter CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/backlog-exporter/internal/backlog"
	"github.com/pdiddy/backlog-exporter/internal/config"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultOutputDir is used when export or publish get no directory argument.
const defaultOutputDir = "backlog-export"

// rootCmd is the base command for the backlog-exporter CLI.
var rootCmd = &cobra.Command{
	Use:   "backlog-exporter",
	Short: "Export Backlog documents and attachments to local Markdown",
	Long: `backlog-exporter reads the document API of a Backlog space and writes
documents and their attachments to a local directory tree that mirrors the
project's document tree.

Credentials come from BACKLOG_API_KEY, BACKLOG_PROJECT_KEY and
BACKLOG_SPACE_DOMAIN, a .env file, .secrets/backlog-api-key, or a
backlog-exporter.yaml config file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./backlog-exporter.yaml or ~/.config/backlog-exporter/backlog-exporter.yaml)")
}

// loadConfig builds the configuration. Commands that talk to Backlog pass
// requireCredentials so missing settings fail before any request.
func loadConfig(cmd *cobra.Command, requireCredentials bool) (types.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	return config.Load(config.Options{
		ConfigFile:         cfgFile,
		RequireCredentials: requireCredentials,
		Diag:               cmd.ErrOrStderr(),
	})
}

// newClient loads the configuration and returns a Backlog client for it.
func newClient(cmd *cobra.Command) (*backlog.Client, types.Config, error) {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return nil, types.Config{}, err
	}
	return backlog.NewClient(cfg.Backlog), cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "✗ Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
