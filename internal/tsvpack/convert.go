// Package tsvpack converts curator-authored TSV sheets into pack JSON.
// The converter is deliberately strict: a sheet with any problem produces
// no output at all, since partially converted packs are worse than none.
package tsvpack

import (
	"fmt"
	"strings"

	"github.com/genbalog/atlas/internal/normalize"
	"github.com/genbalog/atlas/internal/schema"
)

// requiredColumns must all appear in the TSV header row.
var requiredColumns = []string{"id", "term_ja", "term_en", "category"}

// Row is one parsed TSV line.
type Row struct {
	ID       string
	TermJA   string
	TermEN   string
	Hint     string
	Category string
	Line     int
}

// Parse splits TSV text into rows. The header row is required and must
// contain every required column; hint_text is optional.
func Parse(text string) ([]Row, error) {
	lines := meaningfulLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("tsv is empty")
	}

	header := strings.Split(lines[0], "\t")
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required tsv column: %s", name)
		}
	}

	get := func(cells []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(cells) {
			return ""
		}
		return normalize.Whitespace(cells[idx])
	}

	rows := make([]Row, 0, len(lines)-1)
	for i, line := range lines[1:] {
		cells := strings.Split(line, "\t")
		rows = append(rows, Row{
			ID:       get(cells, "id"),
			TermJA:   get(cells, "term_ja"),
			TermEN:   get(cells, "term_en"),
			Hint:     get(cells, "hint_text"),
			Category: get(cells, "category"),
			Line:     i + 2,
		})
	}
	return rows, nil
}

// Convert validates rows and builds the pack entries. Duplicate ids,
// empty required cells, and categories outside the allowed set are
// rejected with the offending line number. A nil allowed set skips the
// category membership check.
func Convert(rows []Row, allowed map[string]struct{}) ([]schema.Entry, error) {
	seen := make(map[string]int, len(rows))
	entries := make([]schema.Entry, 0, len(rows))

	for _, r := range rows {
		if r.ID == "" {
			return nil, fmt.Errorf("line %d: missing id", r.Line)
		}
		if first, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("line %d: duplicate id %q (first on line %d)", r.Line, r.ID, first)
		}
		seen[r.ID] = r.Line

		if r.TermJA == "" {
			return nil, fmt.Errorf("line %d: missing term_ja for %s", r.Line, r.ID)
		}
		if r.TermEN == "" {
			return nil, fmt.Errorf("line %d: missing term_en for %s", r.Line, r.ID)
		}
		if r.Category == "" {
			return nil, fmt.Errorf("line %d: missing category for %s", r.Line, r.ID)
		}
		if allowed != nil {
			if _, ok := allowed[r.Category]; !ok {
				return nil, fmt.Errorf("line %d: invalid category %q for %s (not in index categories)", r.Line, r.Category, r.ID)
			}
		}

		entries = append(entries, schema.Entry{
			ID:       r.ID,
			Term:     schema.Term{JA: r.TermJA, EN: r.TermEN},
			Hint:     r.Hint,
			Category: r.Category,
		})
	}
	return entries, nil
}

// meaningfulLines normalizes newlines and drops blank lines.
func meaningfulLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
