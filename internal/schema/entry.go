// Package schema defines the atlas entry model and validates raw JSON
// records against it.
package schema

// Field length limits enforced by Validate.
const (
	MaxIDLength          = 120
	MaxTermLength        = 200
	MaxAliasLength       = 200
	MaxDescriptionLength = 2000
)

// Term holds the bilingual name of an entry. JA is required; EN is a
// required field but may legitimately be empty.
type Term struct {
	JA string `json:"ja"`
	EN string `json:"en"`
}

// Aliases holds alternative spellings per language. Empty slices are valid.
type Aliases struct {
	JA []string `json:"ja"`
	EN []string `json:"en"`
}

// Description is optional free text per language.
type Description struct {
	JA string `json:"ja,omitempty"`
	EN string `json:"en,omitempty"`
}

// Detail carries ingestion bookkeeping attached by the merge pipeline.
// The underscored JSON names are the on-disk format inherited from the
// historical pack files.
type Detail struct {
	Examples    []string `json:"examples,omitempty"`
	From        []string `json:"_from,omitempty"`
	NeedsManual bool     `json:"_needs_manual,omitempty"`
}

// Entry is the atomic dictionary record. Category is the singular schema
// field; Categories is the superset form produced by pack ingestion, where
// an entry may belong to several categories at once.
type Entry struct {
	ID          string       `json:"id"`
	Type        string       `json:"type,omitempty"`
	Term        Term         `json:"term"`
	Category    string       `json:"category,omitempty"`
	Categories  []string     `json:"categories,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Aliases     Aliases      `json:"aliases"`
	Description *Description `json:"description,omitempty"`
	Tasks       []string     `json:"tasks,omitempty"`
	Fuzzy       []string     `json:"fuzzy,omitempty"`
	Region      []string     `json:"region,omitempty"`
	Image       string       `json:"image,omitempty"`
	Hint        string       `json:"hint,omitempty"`
	Detail      *Detail      `json:"detail,omitempty"`
}

// Raw converts the entry back into the untyped record shape accepted by
// Validate. Used to check idempotence and by callers that round-trip
// entries through the validator.
func (e Entry) Raw() map[string]any {
	raw := map[string]any{
		"id":       e.ID,
		"term":     map[string]any{"ja": e.Term.JA, "en": e.Term.EN},
		"category": e.Category,
		"aliases": map[string]any{
			"ja": toAnySlice(e.Aliases.JA),
			"en": toAnySlice(e.Aliases.EN),
		},
	}
	if e.Tags != nil {
		raw["tags"] = toAnySlice(e.Tags)
	}
	if e.Description != nil {
		desc := map[string]any{}
		if e.Description.JA != "" {
			desc["ja"] = e.Description.JA
		}
		desc["en"] = e.Description.EN
		raw["description"] = desc
	}
	return raw
}

func toAnySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Clone returns a deep copy. The merge engine never mutates base entries in
// place; every merged result is built on a clone.
func (e Entry) Clone() Entry {
	out := e
	out.Categories = cloneSlice(e.Categories)
	out.Tags = cloneSlice(e.Tags)
	out.Aliases.JA = cloneSlice(e.Aliases.JA)
	out.Aliases.EN = cloneSlice(e.Aliases.EN)
	out.Tasks = cloneSlice(e.Tasks)
	out.Fuzzy = cloneSlice(e.Fuzzy)
	out.Region = cloneSlice(e.Region)
	if e.Description != nil {
		d := *e.Description
		out.Description = &d
	}
	if e.Detail != nil {
		d := Detail{
			Examples:    cloneSlice(e.Detail.Examples),
			From:        cloneSlice(e.Detail.From),
			NeedsManual: e.Detail.NeedsManual,
		}
		out.Detail = &d
	}
	return out
}

func cloneSlice(ss []string) []string {
	if ss == nil {
		return nil
	}
	out := make([]string, len(ss))
	copy(out, ss)
	return out
}
