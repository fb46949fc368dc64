// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/backlog-exporter/internal/backlog"
	"github.com/pdiddy/backlog-exporter/internal/tree"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the project's document tree",
	Long: `Tree prints the active document tree as an indented Markdown list, two
spaces per level. Document lines end with the document's browser URL unless
--no-links is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		noLinks, _ := cmd.Flags().GetBool("no-links")
		return printDocumentTree(cmd.Context(), client, !noLinks, cmd.OutOrStdout())
	},
}

func printDocumentTree(ctx context.Context, client *backlog.Client, links bool, w io.Writer) error {
	projectID, err := client.GetProjectID(ctx)
	if err != nil {
		return err
	}
	t, err := client.GetTree(ctx, projectID)
	if err != nil {
		return err
	}

	var link func(types.ID) string
	if links {
		link = client.DocumentURL
	}
	for _, line := range tree.Render(&t.ActiveTree, link) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	treeCmd.Flags().Bool("no-links", false, "omit document URLs")
	rootCmd.AddCommand(treeCmd)
}
