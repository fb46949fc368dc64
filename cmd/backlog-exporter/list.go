// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/backlog-exporter/internal/backlog"
	"github.com/pdiddy/backlog-exporter/internal/markdown"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the project's documents as a Markdown table",
	Long: `List fetches every document of the configured project, page by page,
and prints a Markdown table of id, title and browser URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := newClient(cmd)
		if err != nil {
			return err
		}
		pageSize := cfg.Backlog.PageSize
		if cmd.Flags().Changed("page-size") {
			pageSize, _ = cmd.Flags().GetInt("page-size")
		}
		return printDocumentList(cmd.Context(), client, pageSize, cmd.OutOrStdout())
	},
}

func printDocumentList(ctx context.Context, client *backlog.Client, pageSize int, w io.Writer) error {
	projectID, err := client.GetProjectID(ctx)
	if err != nil {
		return err
	}
	docs, err := client.ListDocuments(ctx, projectID, pageSize)
	if err != nil {
		return err
	}

	rows := make([][]string, len(docs))
	for i, d := range docs {
		rows[i] = []string{d.ID.String(), d.Title, client.DocumentURL(d.ID)}
	}
	_, err = fmt.Fprintln(w, markdown.Table([]string{"id", "title", "url"}, rows))
	return err
}

func init() {
	listCmd.Flags().Int("page-size", 0, "documents per list request, 1-100 (default from BACKLOG_PAGE_SIZE or 100)")
	rootCmd.AddCommand(listCmd)
}
