// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/backlog-exporter/internal/backlog"
	"github.com/pdiddy/backlog-exporter/internal/markdown"
	"github.com/pdiddy/backlog-exporter/pkg/types"
)

var infoCmd = &cobra.Command{
	Use:   "info <document_id>",
	Short: "Show every field of a document",
	Long: `Info fetches one document and prints all of its fields in server order.
The default format is a Markdown key/value list with nested values as
compact JSON; --format yaml or json prints the full payload instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "markdown", "yaml", "json":
		default:
			return fmt.Errorf("unsupported format %q: use markdown, yaml or json", format)
		}

		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		return printDocumentInfo(cmd.Context(), client, types.ID(args[0]), format, cmd.OutOrStdout())
	},
}

func printDocumentInfo(ctx context.Context, client *backlog.Client, id types.ID, format string, w io.Writer) error {
	doc, err := client.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	var out []byte
	switch format {
	case "yaml":
		out, err = jsonToYAML(doc.Raw)
	case "json":
		var buf bytes.Buffer
		err = json.Indent(&buf, doc.Raw, "", "  ")
		buf.WriteByte('\n')
		out = buf.Bytes()
	default:
		var fields []markdown.Field
		fields, err = markdown.Fields(doc.Raw)
		out = []byte(markdown.KeyValues(fields) + "\n")
	}
	if err != nil {
		return fmt.Errorf("formatting document %s: %w", id, err)
	}
	_, err = w.Write(out)
	return err
}

// jsonToYAML re-encodes a JSON document as block-style YAML, keeping key
// order.
func jsonToYAML(raw []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func init() {
	infoCmd.Flags().String("format", "markdown", "output format: markdown, yaml or json")
	rootCmd.AddCommand(infoCmd)
}
