package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() map[string]any {
	return map[string]any{
		"id":       "gennou",
		"term":     map[string]any{"ja": "玄能", "en": "Hammer"},
		"category": "tool",
	}
}

func TestValidate_NonObject(t *testing.T) {
	for _, raw := range []any{nil, "string", 42, []any{}} {
		result := Validate(raw)
		assert.False(t, result.Success)
		assert.Nil(t, result.Value)
		require.Len(t, result.Issues, 1)
		assert.Equal(t, "", result.Issues[0].Path)
		assert.Equal(t, SeverityError, result.Issues[0].Severity)
	}
}

func TestValidate_MinimalValid(t *testing.T) {
	result := Validate(validRaw())

	assert.True(t, result.Success)
	require.NotNil(t, result.Value)
	assert.Equal(t, "gennou", result.Value.ID)
	assert.Equal(t, "玄能", result.Value.Term.JA)
	assert.Equal(t, "Hammer", result.Value.Term.EN)
	assert.Equal(t, "tool", result.Value.Category)
	assert.Empty(t, result.Value.Tags)
	assert.Empty(t, result.Value.Aliases.JA)
	assert.Empty(t, result.Value.Aliases.EN)
	assert.Nil(t, result.Value.Description)
	assert.Empty(t, result.Issues)
}

func TestValidate_WhitespaceNormalizedBeforeChecks(t *testing.T) {
	raw := validRaw()
	raw["id"] = "  gennou "
	raw["term"] = map[string]any{"ja": " 玄　能 ", "en": " Claw  Hammer "}

	result := Validate(raw)

	require.NotNil(t, result.Value)
	assert.Equal(t, "gennou", result.Value.ID)
	assert.Equal(t, "玄 能", result.Value.Term.JA)
	assert.Equal(t, "Claw Hammer", result.Value.Term.EN)
}

func TestValidate_IDTooLong(t *testing.T) {
	// Concrete scenario: 121-char id yields one error at path "id".
	raw := map[string]any{
		"id":       strings.Repeat("a", 121),
		"term":     map[string]any{"ja": "x", "en": "y"},
		"category": "c",
	}

	result := Validate(raw)

	assert.False(t, result.Success)
	assert.Nil(t, result.Value)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "id", result.Issues[0].Path)
	assert.Contains(t, result.Issues[0].Message, "exceeds 120 characters")
}

func TestValidate_MissingTermEN_WarnsButNormalizes(t *testing.T) {
	// Concrete scenario: no term.en key at all -> warning, value defined
	// with empty EN.
	raw := map[string]any{
		"id":       "x",
		"term":     map[string]any{"ja": "槌"},
		"category": "tool",
	}

	result := Validate(raw)

	assert.True(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "term.en", result.Issues[0].Path)
	assert.Equal(t, SeverityWarning, result.Issues[0].Severity)
	require.NotNil(t, result.Value)
	assert.Equal(t, "", result.Value.Term.EN)
}

func TestValidate_TermENWrongType(t *testing.T) {
	raw := validRaw()
	raw["term"] = map[string]any{"ja": "槌", "en": 12}

	result := Validate(raw)

	assert.False(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "term.en", result.Issues[0].Path)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
}

func TestValidate_MissingTerm_ReportsAllApplicableIssues(t *testing.T) {
	// Checks are independent: a missing term reports both the object-level
	// and the ja-level error in one pass, alongside other field errors.
	raw := map[string]any{"tags": "not-an-array"}

	result := Validate(raw)

	assert.False(t, result.Success)
	paths := make([]string, 0, len(result.Issues))
	for _, issue := range result.Issues {
		paths = append(paths, issue.Path)
	}
	assert.Contains(t, paths, "id")
	assert.Contains(t, paths, "term")
	assert.Contains(t, paths, "term.ja")
	assert.Contains(t, paths, "category")
	assert.Contains(t, paths, "tags")
}

func TestValidate_TagsNormalized(t *testing.T) {
	raw := validRaw()
	raw["tags"] = []any{" demolition ", "", 3, "framing"}

	result := Validate(raw)

	require.NotNil(t, result.Value)
	assert.Equal(t, []string{"demolition", "framing"}, result.Value.Tags)
}

func TestValidate_AliasLengthEnforcedPerItem(t *testing.T) {
	raw := validRaw()
	raw["aliases"] = map[string]any{
		"ja": []any{"かなづち"},
		"en": []any{"mallet", strings.Repeat("x", 201)},
	}

	result := Validate(raw)

	assert.False(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "aliases.en[1]", result.Issues[0].Path)
}

func TestValidate_EmptyAliasArraysAllowed(t *testing.T) {
	raw := validRaw()
	raw["aliases"] = map[string]any{"ja": []any{}, "en": []any{}}

	result := Validate(raw)

	assert.True(t, result.Success)
	assert.Empty(t, result.Issues)
}

func TestValidate_DescriptionAsymmetryWarns(t *testing.T) {
	raw := validRaw()
	raw["description"] = map[string]any{"ja": "釘を打つ道具"}

	result := Validate(raw)

	assert.True(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "description.en", result.Issues[0].Path)
	assert.Equal(t, SeverityWarning, result.Issues[0].Severity)
	require.NotNil(t, result.Value)
	require.NotNil(t, result.Value.Description)
	assert.Equal(t, "釘を打つ道具", result.Value.Description.JA)
}

func TestValidate_DescriptionTooLong(t *testing.T) {
	raw := validRaw()
	raw["description"] = map[string]any{"ja": strings.Repeat("あ", 2001), "en": "ok"}

	result := Validate(raw)

	assert.False(t, result.Success)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "description.ja", result.Issues[0].Path)
}

func TestValidate_Idempotent(t *testing.T) {
	raw := validRaw()
	raw["tags"] = []any{"  demolition "}
	raw["aliases"] = map[string]any{"ja": []any{" かなづち"}, "en": []any{"mallet"}}
	raw["description"] = map[string]any{"ja": "道具", "en": "A tool"}

	first := Validate(raw)
	require.True(t, first.Success)
	require.NotNil(t, first.Value)

	second := Validate(*first.Value)
	require.True(t, second.Success)
	assert.False(t, second.HasErrors())
	require.NotNil(t, second.Value)
	assert.Equal(t, *first.Value, *second.Value)
}
