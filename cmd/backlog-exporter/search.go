// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/backlog-exporter/internal/index"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over an exported tree",
	Long: `Search queries the index written by export. Every word of the query
must appear in a document's title or body. No network access is needed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		limit, _ := cmd.Flags().GetInt("limit")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return searchIndex(cmd.Context(), dir, strings.Join(args, " "), limit, jsonOutput, cmd.OutOrStdout())
	},
}

func searchIndex(ctx context.Context, dir, query string, limit int, jsonOutput bool, w io.Writer) error {
	store, err := index.OpenExisting(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. %s  [%s]\n", i+1, r.Title, r.Path)
		if r.Excerpt != "" {
			fmt.Fprintf(w, "   %s\n", r.Excerpt)
		}
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

func init() {
	searchCmd.Flags().String("dir", defaultOutputDir, "export directory holding .backlog/index.db")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = 20)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}
