// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/backlog-exporter/internal/config"
	"github.com/pdiddy/backlog-exporter/internal/export"
	"github.com/pdiddy/backlog-exporter/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish [output_dir]",
	Short: "Upload an exported tree to object storage",
	Long: `Publish uploads every file of an existing export (default:
backlog-export) to the S3-compatible bucket configured with
BACKLOG_PUBLISH_ENDPOINT, BACKLOG_PUBLISH_BUCKET and the publish credentials.
The SQLite index itself is not uploaded; the manifest is.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := defaultOutputDir
		if len(args) > 0 {
			dir = args[0]
		}

		cfg, err := loadConfig(cmd, false)
		if err != nil {
			return err
		}
		if !cfg.Publish.Enabled() {
			return &config.Error{Missing: []string{"publish.endpoint"}}
		}

		store, err := publish.NewMinIO(cmd.Context(), cfg.Publish)
		if err != nil {
			return err
		}
		res, err := publish.Publish(cmd.Context(), dir, cfg.Publish.Prefix, store, cmd.OutOrStdout(), export.PublishExclude...)
		if err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Published %d objects (%d bytes) to %s\n",
			res.Objects, res.Bytes, cfg.Publish.Bucket)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
}
