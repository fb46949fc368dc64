// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/backlog-exporter/internal/backlog"
	"github.com/pdiddy/backlog-exporter/internal/fsutil"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download <document_id> [output_dir]",
	Short: "Download a document's attachments",
	Long: `Download saves every attachment of one document into output_dir
(default: the current directory). File names come from the server's
Content-Disposition header, falling back to the attachment id.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 1 {
			dir = args[1]
		}
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		return downloadAttachments(cmd.Context(), client, types.ID(args[0]), dir, cmd.OutOrStdout())
	},
}

func downloadAttachments(ctx context.Context, client *backlog.Client, id types.ID, dir string, w io.Writer) error {
	if err := fsutil.EnsureDirs(dir); err != nil {
		return err
	}
	atts, err := client.GetDocumentAttachments(ctx, id)
	if err != nil {
		return err
	}
	if len(atts) == 0 {
		fmt.Fprintf(w, "Document %s has no attachments\n", id)
		return nil
	}
	for _, att := range atts {
		path, err := client.DownloadAttachment(ctx, id, att.ID, dir, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Downloaded %s -> %s\n", att.Name, path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
