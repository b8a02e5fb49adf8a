package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genbalog/atlas/internal/loader"
	"github.com/genbalog/atlas/internal/output"
	"github.com/genbalog/atlas/internal/schema"
	"github.com/genbalog/atlas/internal/search"
	"github.com/genbalog/atlas/internal/ui"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	dataDir  string
	lang     string
	category string
	task     string
	fuzzy    bool
	format   string // "text", "json"
	limit    int
}

// newSearchCmd creates the search command.
func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the dictionary",
		Long: `Search the dictionary by substring or fuzzy token match.

Matching is case- and width-insensitive and spans both languages: an
English query finds entries whose Japanese record carries the English
term, and vice versa. An empty query returns every entry, which
combines with --category and --task for browsing.

Examples:
  atlas search "hammer"
  atlas search ハンマー --lang ja
  atlas search "monky wrench" --fuzzy
  atlas search --category power_tools
  atlas search drill --format json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dataDir, "data", "d", "", "Data directory (default from config)")
	cmd.Flags().StringVarP(&opts.lang, "lang", "l", "ja", "Primary language: ja, en")
	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "Filter by category id")
	cmd.Flags().StringVar(&opts.task, "task", "", "Filter by task id")
	cmd.Flags().BoolVar(&opts.fuzzy, "fuzzy", false, "Token-based fuzzy matching, ranked by hits")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "Maximum number of results (0 for all)")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	lang, err := parseLang(opts.lang)
	if err != nil {
		return err
	}
	dataDir, err := resolveDataDir(opts.dataDir)
	if err != nil {
		return err
	}

	slog.Info("search_started",
		slog.String("query", query),
		slog.String("lang", string(lang)),
		slog.Bool("fuzzy", opts.fuzzy))

	entries, err := loader.Load(dataDir)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	index := search.NewIndex(entries)

	var results []schema.Entry
	if opts.fuzzy {
		results = index.Fuzzy(search.Tokenize(query), lang)
	} else {
		results = index.Query(query, lang)
	}
	results = search.FilterByCategory(results, opts.category)
	results = search.FilterByTask(results, opts.task)
	if opts.limit > 0 && len(results) > opts.limit {
		results = results[:opts.limit]
	}
	slog.Info("search_complete", slog.Int("results", len(results)))

	switch opts.format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		return formatResults(cmd, query, results, lang)
	}
}

// formatResults renders results as terminal cards.
func formatResults(cmd *cobra.Command, query string, results []schema.Entry, lang search.Lang) error {
	out := output.New(cmd.OutOrStdout())
	styles := ui.StylesFor(cmd.OutOrStdout())

	if len(results) == 0 {
		out.Status("", fmt.Sprintf("No results found for %q", query))
		return nil
	}

	if query == "" {
		out.Statusf("🔍", "%d entries", len(results))
	} else {
		out.Statusf("🔍", "Found %d result(s) for %q:", len(results), query)
	}
	out.Newline()

	for _, e := range results {
		card := renderCard(styles, e, lang)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), styles.Card.Render(card))
	}
	return nil
}

func renderCard(styles ui.Styles, e schema.Entry, lang search.Lang) string {
	primary, secondary := e.Term.JA, e.Term.EN
	if lang == search.LangEN {
		primary, secondary = e.Term.EN, e.Term.JA
	}

	var b strings.Builder
	b.WriteString(styles.Term.Render(primary))
	if secondary != "" {
		b.WriteString("  ")
		b.WriteString(styles.Label.Render(secondary))
	}
	b.WriteString("\n")
	b.WriteString(styles.ID.Render(e.ID))

	if aliases := append(append([]string{}, e.Aliases.JA...), e.Aliases.EN...); len(aliases) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Label.Render("aliases: " + strings.Join(aliases, ", ")))
	}
	if e.Description != nil {
		desc := e.Description.JA
		if lang == search.LangEN && e.Description.EN != "" {
			desc = e.Description.EN
		}
		if desc != "" {
			b.WriteString("\n")
			b.WriteString(styles.Dim.Render(desc))
		}
	}
	return b.String()
}

func parseLang(s string) (search.Lang, error) {
	switch strings.ToLower(s) {
	case "ja":
		return search.LangJA, nil
	case "en":
		return search.LangEN, nil
	default:
		return "", fmt.Errorf("unknown language %q (use: ja, en)", s)
	}
}
