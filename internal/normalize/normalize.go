// Package normalize provides the string normalization primitives shared by
// the schema validator, merge engine, and search index. All functions are
// pure and total: malformed input is coerced, never rejected.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Whitespace trims the string and collapses every run of Unicode whitespace
// (including the ideographic space U+3000) to a single ASCII space.
func Whitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// String coerces v to a whitespace-normalized string. The second return is
// false when v is not a string, which callers treat as "absent".
func String(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return Whitespace(s), true
}

// StringArray coerces v to a slice of whitespace-normalized strings.
// Non-array input yields an empty slice. Non-string items and items that
// normalize to empty are dropped. Relative order is preserved and no
// de-duplication happens here; callers that need it use UniquePreserveOrder.
func StringArray(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		} else {
			return []string{}
		}
	}
	out := []string{}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if n := Whitespace(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// ForMatch projects s into the form used for merge keys: NFKC fold (so
// full-width and half-width spellings compare equal), lowercase, and only
// letters and digits kept. Never used for display or storage.
func ForMatch(s string) string {
	folded := strings.ToLower(norm.NFKC.String(s))
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ForSearch projects s into the form used for search haystacks and queries:
// NFKC fold, lowercase, whitespace collapsed. Unlike ForMatch it keeps
// spaces and punctuation so substring queries behave predictably.
func ForSearch(s string) string {
	return Whitespace(strings.ToLower(norm.NFKC.String(s)))
}

// UniquePreserveOrder removes duplicates keeping the first occurrence.
func UniquePreserveOrder(values []string) []string {
	return UniqueBy(values, func(s string) string { return s })
}

// UniqueBy removes duplicates by the given key projection, keeping the
// first occurrence of each key.
func UniqueBy(values []string, key func(string) string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
