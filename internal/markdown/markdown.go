// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown renders API payloads as Markdown tables and key/value
// lists.
package markdown

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Field is one top-level key of a JSON object with its display value.
type Field struct {
	Key   string
	Value string
}

// Fields returns the top-level keys of a JSON object in document order.
// Strings are unquoted, null becomes empty, and nested objects or arrays
// are rendered as compact JSON. Keys listed in exclude are skipped.
func Fields(raw []byte, exclude ...string) ([]Field, error) {
	skip := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		skip[k] = true
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading JSON object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading value of %q: %w", key, err)
		}
		if skip[key] {
			continue
		}

		display, err := displayValue(value)
		if err != nil {
			return nil, fmt.Errorf("rendering %q: %w", key, err)
		}
		fields = append(fields, Field{Key: key, Value: display})
	}
	return fields, nil
}

func displayValue(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "", nil
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return "", err
		}
		return buf.String(), nil
	case 'n':
		return "", nil
	default:
		return string(v), nil
	}
}

// WriteKeyValues writes one "- **key**: value" line per field.
func WriteKeyValues(w io.Writer, fields []Field) error {
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "- **%s**: %s\n", f.Key, f.Value); err != nil {
			return err
		}
	}
	return nil
}

// KeyValues renders fields as a key/value list without a trailing newline.
func KeyValues(fields []Field) string {
	var b strings.Builder
	WriteKeyValues(&b, fields)
	return strings.TrimSuffix(b.String(), "\n")
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// Table renders rows as a Markdown table. Each row must have one cell per
// header; missing cells render empty.
func Table(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(headers)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				cells[i] = cellReplacer.Replace(row[i])
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
