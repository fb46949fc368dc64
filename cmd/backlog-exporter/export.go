// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pdiddy/backlog-exporter/internal/export"
	"github.com/pdiddy/backlog-exporter/internal/publish"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [output_dir]",
	Short: "Export every document and attachment to a local directory tree",
	Long: `Export mirrors the project's document tree into output_dir (default:
backlog-export). Each document becomes a directory holding document.md and
its attachments.

Unless --no-index is given, the export is recorded in .backlog/index.db and
summarised in .backlog/manifest.yaml (or manifest.json with
--manifest-format json). With --publish the finished tree is
uploaded to the object storage configured under publish.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	outputDir := defaultOutputDir
	if len(args) > 0 {
		outputDir = args[0]
	}
	noIndex, _ := cmd.Flags().GetBool("no-index")
	doPublish, _ := cmd.Flags().GetBool("publish")
	manifestFormat, _ := cmd.Flags().GetString("manifest-format")

	client, cfg, err := newClient(cmd)
	if err != nil {
		return err
	}

	var opts []export.Option
	opts = append(opts, export.WithProgress(cmd.OutOrStdout()))
	if doPublish {
		store, err := publish.NewMinIO(cmd.Context(), cfg.Publish)
		if err != nil {
			return err
		}
		opts = append(opts, export.WithStorage(store, cfg.Publish.Prefix))
	}

	exp := export.New(client, cfg.Backlog, types.ExportConfig{
		OutputDir:      outputDir,
		Index:          !noIndex,
		ManifestFormat: manifestFormat,
		Publish:        doPublish,
	}, opts...)

	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Fprintf(cmd.OutOrStdout(), "✓ Exported %d documents and %d attachments to %s\n",
		res.Documents, res.Attachments, res.OutputDir)
	if res.Manifest != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "  manifest: %s (run %s)\n", res.Manifest, res.RunID)
	}
	if doPublish {
		fmt.Fprintf(cmd.OutOrStdout(), "  published: %d objects, %d bytes\n", res.Published.Objects, res.Published.Bytes)
	}
	return nil
}

func init() {
	exportCmd.Flags().Bool("no-index", false, "skip the SQLite index and manifest")
	exportCmd.Flags().String("manifest-format", "yaml", "manifest encoding: yaml or json")
	exportCmd.Flags().Bool("publish", false, "upload the export to the configured object storage")
	rootCmd.AddCommand(exportCmd)
}
