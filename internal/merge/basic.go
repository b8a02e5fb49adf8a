// Package merge folds an incoming data pack into a base corpus. It never
// errors on data quality: every uncertain outcome is classified into the
// report for human review.
package merge

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/genbalog/atlas/internal/normalize"
	"github.com/genbalog/atlas/internal/schema"
)

// fieldAliases maps each logical field to the prioritized list of
// historical spellings seen in the wild. Kept as data so new legacy
// spellings are added here, never inside the conversion logic.
var fieldAliases = map[string][]string{
	"term.ja":        {"term_ja", "ja", "jp", "japanese", "name_ja"},
	"term.en":        {"term_en", "en", "eng", "english", "name_en"},
	"description.ja": {"desc_ja", "description_ja", "ja_desc", "meaning_ja"},
	"description.en": {"desc_en", "description_en", "en_desc", "meaning_en"},
	"aliases.ja":     {"alias_ja", "aliasesJa", "aka_ja"},
	"aliases.en":     {"alias_en", "aliasesEn", "aka_en"},
	"categories":     {"categories", "category", "tags"},
	"tasks":          {"tasks", "task"},
	"fuzzy":          {"fuzzy", "keywords"},
	"region":         {"region", "regions"},
	"examples":       {"examples", "example", "usage", "usages"},
}

var idPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// ToBasic converts one raw pack record into the canonical entry shape,
// tolerating every historical field-name spelling. A record with neither a
// JA nor an EN term is flagged needs-manual: it has no reliable key to
// match on and must always be added as new.
func ToBasic(raw any, source string) schema.Entry {
	obj, _ := raw.(map[string]any)

	termJA, termEN := "", ""
	if term, ok := obj["term"].(map[string]any); ok {
		termJA, _ = normalize.String(term["ja"])
		termEN, _ = normalize.String(term["en"])
	} else {
		termJA = firstAlias(obj, "term.ja")
		termEN = firstAlias(obj, "term.en")
	}

	descJA, descEN := "", ""
	if desc, ok := obj["description"].(map[string]any); ok {
		descJA, _ = normalize.String(desc["ja"])
		descEN, _ = normalize.String(desc["en"])
	}
	if descJA == "" {
		descJA = firstAlias(obj, "description.ja")
	}
	if descEN == "" {
		descEN = firstAlias(obj, "description.en")
	}

	aliasJA := firstAliasList(objField(obj, "aliases", "ja"), obj, "aliases.ja")
	aliasEN := firstAliasList(objField(obj, "aliases", "en"), obj, "aliases.en")

	entry := schema.Entry{
		ID:   MakeID(raw),
		Type: stringOr(obj["type"], "tool"),
		Term: schema.Term{JA: termJA, EN: termEN},
		Aliases: schema.Aliases{
			JA: normalize.UniquePreserveOrder(aliasJA),
			EN: normalize.UniquePreserveOrder(aliasEN),
		},
		Categories: uniqueList(obj, "categories"),
		Tasks:      uniqueList(obj, "tasks"),
		Fuzzy:      uniqueList(obj, "fuzzy"),
		Region:     uniqueList(obj, "region"),
	}
	if descJA != "" || descEN != "" {
		entry.Description = &schema.Description{JA: descJA, EN: descEN}
	}
	if img, ok := normalize.String(obj["image"]); ok && img != "" {
		entry.Image = img
	}

	if examples := listField(obj, "examples"); len(examples) > 0 {
		entry.Detail = &schema.Detail{
			Examples: normalize.UniquePreserveOrder(examples),
			From:     []string{source},
		}
	}
	if termJA == "" && termEN == "" {
		if entry.Detail == nil {
			entry.Detail = &schema.Detail{}
		}
		entry.Detail.NeedsManual = true
	}
	return entry
}

// MakeID assigns a deterministic id to a raw record: an existing id, slug,
// or key field that already looks like an id wins; otherwise the English
// term is slugified; otherwise a short hash of the Japanese term (or the
// whole record) is prefixed with "ja_".
func MakeID(raw any) string {
	obj, _ := raw.(map[string]any)

	for _, key := range []string{"id", "slug", "key"} {
		if cand, ok := obj[key].(string); ok && idPattern.MatchString(cand) {
			return cand
		}
	}

	en := ""
	if term, ok := obj["term"].(map[string]any); ok {
		en, _ = normalize.String(term["en"])
	}
	if en == "" {
		en = firstAlias(obj, "term.en")
	}
	if en != "" {
		if s := SlugifyASCII(en); s != "" {
			return s
		}
	}

	ja := ""
	if term, ok := obj["term"].(map[string]any); ok {
		ja, _ = normalize.String(term["ja"])
	}
	if ja == "" {
		ja = firstAlias(obj, "term.ja")
	}
	if ja == "" {
		encoded, _ := json.Marshal(obj)
		ja = string(encoded)
	}
	return "ja_" + shortHash(ja)
}

// SlugifyASCII folds s to NFKC lowercase and reduces it to an
// underscore-separated ascii slug. Non-ascii input collapses to "".
func SlugifyASCII(s string) string {
	folded := strings.ToLower(norm.NFKC.String(s))
	slug := slugStrip.ReplaceAllString(folded, "_")
	slug = strings.Trim(slug, "_")
	return slug
}

func shortHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}

// firstAlias returns the first non-empty spelling of the logical field.
func firstAlias(obj map[string]any, field string) string {
	for _, key := range fieldAliases[field] {
		if s, ok := normalize.String(obj[key]); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstAliasList prefers the canonical nested value, then falls back
// through the spelling table. Scalar values are wrapped as one-item lists.
func firstAliasList(canonical any, obj map[string]any, field string) []string {
	if vals := coerceList(canonical); len(vals) > 0 {
		return vals
	}
	for _, key := range fieldAliases[field] {
		if vals := coerceList(obj[key]); len(vals) > 0 {
			return vals
		}
	}
	return []string{}
}

func listField(obj map[string]any, field string) []string {
	for _, key := range fieldAliases[field] {
		if vals := coerceList(obj[key]); len(vals) > 0 {
			return vals
		}
	}
	return []string{}
}

func uniqueList(obj map[string]any, field string) []string {
	return normalize.UniquePreserveOrder(listField(obj, field))
}

// coerceList accepts arrays and bare scalars alike; historical packs spell
// single-valued fields both ways.
func coerceList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any, []string:
		return normalize.StringArray(t)
	case string:
		if s := normalize.Whitespace(t); s != "" {
			return []string{s}
		}
		return nil
	default:
		return nil
	}
}

func objField(obj map[string]any, outer, inner string) any {
	if m, ok := obj[outer].(map[string]any); ok {
		return m[inner]
	}
	return nil
}

func stringOr(v any, fallback string) string {
	if s, ok := normalize.String(v); ok && s != "" {
		return s
	}
	return fallback
}
