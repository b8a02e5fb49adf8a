// Package search builds per-language haystacks over a validated entry set
// and answers substring, token-overlap, and filter queries. The index is a
// read-only projection: rebuild it when the entry set changes.
package search

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/genbalog/atlas/internal/normalize"
	"github.com/genbalog/atlas/internal/schema"
)

// Lang selects the query language.
type Lang string

const (
	LangJA Lang = "ja"
	LangEN Lang = "en"
)

// Other returns the opposite language.
func (l Lang) Other() Lang {
	if l == LangJA {
		return LangEN
	}
	return LangJA
}

// queryCacheSize bounds the per-index query result cache.
const queryCacheSize = 128

// Index holds the entries plus their precomputed haystacks. Haystacks are
// built once at construction; the structure is safe for concurrent reads
// apart from the internal LRU, which synchronizes itself.
type Index struct {
	entries []schema.Entry
	hay     map[Lang][]string
	cache   *lru.Cache[string, []int]
}

// NewIndex builds the search index over entries.
func NewIndex(entries []schema.Entry) *Index {
	ix := &Index{
		entries: make([]schema.Entry, len(entries)),
		hay: map[Lang][]string{
			LangJA: make([]string, len(entries)),
			LangEN: make([]string, len(entries)),
		},
	}
	copy(ix.entries, entries)
	for i, e := range entries {
		ix.hay[LangJA][i] = buildHaystack(e, LangJA)
		ix.hay[LangEN][i] = buildHaystack(e, LangEN)
	}
	// Cache creation only fails on a non-positive size.
	ix.cache, _ = lru.New[string, []int](queryCacheSize)
	return ix
}

// buildHaystack concatenates the searchable text of one entry for one
// language: own term and aliases, the language-agnostic fuzzy tokens, both
// description languages, and deliberately the other language's term and
// aliases too, so a query in EN mode still surfaces an entry through its
// JA term and vice versa.
func buildHaystack(e schema.Entry, lang Lang) string {
	var parts []string

	parts = append(parts, termFor(e, lang))
	parts = append(parts, aliasesFor(e, lang)...)
	parts = append(parts, e.Fuzzy...)
	if e.Description != nil {
		parts = append(parts, descFor(e, lang), descFor(e, lang.Other()))
	}
	parts = append(parts, termFor(e, lang.Other()))
	parts = append(parts, aliasesFor(e, lang.Other())...)

	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return normalize.ForSearch(strings.Join(kept, " "))
}

func termFor(e schema.Entry, lang Lang) string {
	if lang == LangJA {
		return e.Term.JA
	}
	return e.Term.EN
}

func aliasesFor(e schema.Entry, lang Lang) []string {
	if lang == LangJA {
		return e.Aliases.JA
	}
	return e.Aliases.EN
}

func descFor(e schema.Entry, lang Lang) string {
	if e.Description == nil {
		return ""
	}
	if lang == LangJA {
		return e.Description.JA
	}
	return e.Description.EN
}

// Entries returns the indexed entries in their original order.
func (ix *Index) Entries() []schema.Entry {
	out := make([]schema.Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Query answers a free-text search: case- and width-insensitive substring
// containment against the haystack for the requested language. An empty
// query returns every indexed entry in original order.
func (ix *Index) Query(text string, lang Lang) []schema.Entry {
	q := normalize.ForSearch(text)
	if q == "" {
		return ix.Entries()
	}
	return ix.collect("q\x00"+string(lang)+"\x00"+q, lang, func(hay string) int {
		if strings.Contains(hay, q) {
			return 1
		}
		return 0
	}, false)
}

// Fuzzy scores each entry by how many of the query tokens its haystack
// contains, excludes zero-score entries, and returns the rest by
// descending score, stable beyond that, de-duplicated by id. No tokens
// means no results.
func (ix *Index) Fuzzy(tokens []string, lang Lang) []schema.Entry {
	toks := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if n := normalize.ForSearch(t); n != "" {
			toks = append(toks, n)
		}
	}
	if len(toks) == 0 {
		return []schema.Entry{}
	}
	key := "f\x00" + string(lang) + "\x00" + strings.Join(toks, "\x00")
	return ix.collect(key, lang, func(hay string) int {
		score := 0
		for _, t := range toks {
			if strings.Contains(hay, t) {
				score++
			}
		}
		return score
	}, true)
}

// collect runs score over every haystack for lang, keeps positive scores,
// optionally ranks by score, and caches the resulting positions by key.
func (ix *Index) collect(key string, lang Lang, score func(hay string) int, ranked bool) []schema.Entry {
	if positions, ok := ix.cache.Get(key); ok {
		return ix.resolve(positions)
	}

	hays, ok := ix.hay[lang]
	if !ok {
		hays = ix.hay[LangEN]
	}

	type hit struct {
		pos   int
		score int
	}
	var hits []hit
	for i, hay := range hays {
		if s := score(hay); s > 0 {
			hits = append(hits, hit{pos: i, score: s})
		}
	}
	if ranked {
		sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	}

	positions := make([]int, 0, len(hits))
	seenID := map[string]struct{}{}
	for _, h := range hits {
		id := ix.entries[h.pos].ID
		if id != "" {
			if _, dup := seenID[id]; dup {
				continue
			}
			seenID[id] = struct{}{}
		}
		positions = append(positions, h.pos)
	}

	ix.cache.Add(key, positions)
	return ix.resolve(positions)
}

func (ix *Index) resolve(positions []int) []schema.Entry {
	out := make([]schema.Entry, len(positions))
	for i, pos := range positions {
		out[i] = ix.entries[pos]
	}
	return out
}

// FilterByCategory keeps entries whose categories contain categoryID,
// falling back to the singular category field. An empty filter passes
// everything through unchanged.
func FilterByCategory(entries []schema.Entry, categoryID string) []schema.Entry {
	cid := strings.TrimSpace(categoryID)
	if cid == "" {
		return entries
	}
	var out []schema.Entry
	for _, e := range entries {
		if containsString(e.Categories, cid) || (len(e.Categories) == 0 && e.Category == cid) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByTask keeps entries whose tasks contain taskID. An empty filter
// passes everything through unchanged.
func FilterByTask(entries []schema.Entry, taskID string) []schema.Entry {
	tid := strings.TrimSpace(taskID)
	if tid == "" {
		return entries
	}
	var out []schema.Entry
	for _, e := range entries {
		if containsString(e.Tasks, tid) {
			out = append(out, e)
		}
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
