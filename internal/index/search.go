// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const defaultSearchLimit = 20

// SearchResult is a document matching a search query.
type SearchResult struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Path    string `json:"path" yaml:"path"`
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

// Search finds documents whose title or body contains every term of query.
// Results are ranked by relevance when FTS5 is available and by traversal
// order otherwise. A limit of zero or less uses the default of 20.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("empty search query")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	if s.fts {
		qb.WriteString(
			`SELECT d.id, d.title, d.path, d.body
			FROM documents_fts
			JOIN documents d ON d.rowid = documents_fts.rowid
			WHERE documents_fts MATCH ?
			ORDER BY documents_fts.rank`)
		args = append(args, matchExpr(terms))
	} else {
		qb.WriteString(`SELECT d.id, d.title, d.path, d.body FROM documents d WHERE 1=1`)
		for _, term := range terms {
			qb.WriteString(` AND (d.title LIKE ? ESCAPE '\' OR d.body LIKE ? ESCAPE '\')`)
			pattern := "%" + escapeLike(term) + "%"
			args = append(args, pattern, pattern)
		}
		qb.WriteString(` ORDER BY d.position`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var (
			r    SearchResult
			body string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Path, &body); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		r.Excerpt = excerpt(body, terms[0], 60)
		results = append(results, r)
	}
	return results, rows.Err()
}

// matchExpr quotes each term so FTS5 operators in user input are matched
// literally. Terms are implicitly ANDed.
func matchExpr(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// excerpt returns up to width runes on each side of the first
// case-insensitive occurrence of term, on a single line.
func excerpt(body, term string, width int) string {
	body = strings.Join(strings.Fields(body), " ")
	if body == "" {
		return ""
	}
	lower := strings.ToLower(body)
	at := strings.Index(lower, strings.ToLower(term))
	span := width + utf8.RuneCountInString(term)
	if at < 0 || len(lower) != len(body) {
		at, span = 0, width
	}

	start := at
	for n := 0; start > 0 && n < width; n++ {
		_, size := utf8.DecodeLastRuneInString(body[:start])
		start -= size
	}
	end := at
	for n := 0; end < len(body) && n < span; n++ {
		_, size := utf8.DecodeRuneInString(body[end:])
		end += size
	}

	out := body[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(body) {
		out += "..."
	}
	return out
}
