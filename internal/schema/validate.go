package schema

import (
	"fmt"

	"github.com/genbalog/atlas/internal/normalize"
)

// Severity classifies a validation issue. Any error-severity issue
// disqualifies the record from producing a normalized value; warnings are
// surfaced but never block.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding, located by a dotted/bracketed
// field path such as "term.ja" or "aliases.en[2]".
type Issue struct {
	Path     string   `json:"path"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: [%s] %s", i.Severity, i.Path, i.Message)
}

// Result is the outcome of validating one raw record. Value is set only
// when no error-severity issue was found and the required fields resolved
// to non-empty strings.
type Result struct {
	Success bool
	Issues  []Issue
	Value   *Entry
}

// HasErrors reports whether any issue has error severity.
func (r Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks a raw untyped record against the entry schema and
// produces the normalized entry plus all issues found. Every applicable
// check runs; nothing short-circuits on the first failure. Re-validating
// Result.Value.Raw() yields the same value and no new errors.
func Validate(raw any) Result {
	data, ok := asMap(raw)
	if !ok {
		return Result{
			Success: false,
			Issues:  []Issue{{Path: "", Message: "entry must be an object", Severity: SeverityError}},
		}
	}

	var issues []Issue
	addError := func(path, msg string) {
		issues = append(issues, Issue{Path: path, Message: msg, Severity: SeverityError})
	}
	addWarning := func(path, msg string) {
		issues = append(issues, Issue{Path: path, Message: msg, Severity: SeverityWarning})
	}

	id, _ := normalize.String(data["id"])
	switch {
	case id == "":
		addError("id", "id is required and must be a non-empty string")
	case len([]rune(id)) > MaxIDLength:
		addError("id", fmt.Sprintf("id exceeds %d characters", MaxIDLength))
	}

	termRaw, termOK := asMap(data["term"])
	if !termOK {
		addError("term", "term is required")
	}

	termJA, _ := normalize.String(termRaw["ja"])
	switch {
	case termJA == "":
		addError("term.ja", "term.ja is required and must be non-empty")
	case len([]rune(termJA)) > MaxTermLength:
		addError("term.ja", fmt.Sprintf("term.ja exceeds %d characters", MaxTermLength))
	}

	// term.en is required but may be empty: an absent key normalizes to
	// the empty string (warning); a present non-string value is an error.
	termEN := ""
	enError := false
	if enRaw, present := termRaw["en"]; present {
		en, ok := normalize.String(enRaw)
		if !ok {
			enError = true
			addError("term.en", "term.en must be a string (can be empty)")
		} else {
			termEN = en
		}
	}
	switch {
	case enError:
	case len([]rune(termEN)) > MaxTermLength:
		addError("term.en", fmt.Sprintf("term.en exceeds %d characters", MaxTermLength))
	case termEN == "":
		addWarning("term.en", "term.en is empty (allowed, but noted)")
	}

	category, _ := normalize.String(data["category"])
	if category == "" {
		addError("category", "category is required and must be non-empty")
	}

	if tagsRaw, present := data["tags"]; present {
		if _, ok := tagsRaw.([]any); !ok {
			if _, ok := tagsRaw.([]string); !ok {
				addError("tags", "tags must be an array of strings")
			}
		}
	}
	tags := normalize.StringArray(data["tags"])

	aliases := normalizeAliases(data["aliases"])
	for i, v := range aliases.JA {
		if len([]rune(v)) > MaxAliasLength {
			addError(fmt.Sprintf("aliases.ja[%d]", i), fmt.Sprintf("alias exceeds %d characters", MaxAliasLength))
		}
	}
	for i, v := range aliases.EN {
		if len([]rune(v)) > MaxAliasLength {
			addError(fmt.Sprintf("aliases.en[%d]", i), fmt.Sprintf("alias exceeds %d characters", MaxAliasLength))
		}
	}

	description := normalizeDescription(data["description"])
	if description != nil {
		if description.JA != "" && description.EN == "" {
			addWarning("description.en", "description.ja exists but description.en is missing")
		}
		if len([]rune(description.JA)) > MaxDescriptionLength {
			addError("description.ja", fmt.Sprintf("description.ja exceeds %d characters", MaxDescriptionLength))
		}
		if len([]rune(description.EN)) > MaxDescriptionLength {
			addError("description.en", fmt.Sprintf("description.en exceeds %d characters", MaxDescriptionLength))
		}
	}

	result := Result{Issues: issues}
	hasErrors := result.HasErrors()
	result.Success = !hasErrors

	if !hasErrors && id != "" && termJA != "" && category != "" {
		result.Value = &Entry{
			ID:          id,
			Term:        Term{JA: termJA, EN: termEN},
			Category:    category,
			Tags:        tags,
			Aliases:     aliases,
			Description: description,
		}
	}
	return result
}

// asMap accepts the shapes a record can arrive in: decoded JSON objects,
// already-normalized entries, or nothing. Missing input yields an empty map
// so field lookups stay uniform.
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Entry:
		return t.Raw(), true
	case *Entry:
		if t == nil {
			return map[string]any{}, false
		}
		return t.Raw(), true
	case nil:
		return map[string]any{}, false
	default:
		return map[string]any{}, false
	}
}

func normalizeAliases(v any) Aliases {
	data, _ := asMap(v)
	return Aliases{
		JA: normalize.StringArray(data["ja"]),
		EN: normalize.StringArray(data["en"]),
	}
}

// normalizeDescription returns nil unless at least one language has text
// after normalization. An empty EN alongside a present JA is kept so the
// asymmetry warning can point at it.
func normalizeDescription(v any) *Description {
	data, ok := asMap(v)
	if !ok {
		return nil
	}
	ja, _ := normalize.String(data["ja"])
	en, _ := normalize.String(data["en"])
	if ja == "" && en == "" {
		return nil
	}
	return &Description{JA: ja, EN: en}
}
