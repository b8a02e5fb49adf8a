package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBasic_CanonicalShape(t *testing.T) {
	raw := map[string]any{
		"id":          "kanna",
		"term":        map[string]any{"ja": "鉋", "en": "Plane"},
		"description": map[string]any{"ja": "木材を削る道具", "en": "Wood shaving tool"},
		"aliases":     map[string]any{"ja": []any{"カンナ"}, "en": []any{}},
		"categories":  []any{"tool"},
		"tasks":       []any{"finishing"},
	}

	e := ToBasic(raw, "pack-001")

	assert.Equal(t, "kanna", e.ID)
	assert.Equal(t, "鉋", e.Term.JA)
	assert.Equal(t, "Plane", e.Term.EN)
	assert.Equal(t, []string{"カンナ"}, e.Aliases.JA)
	assert.Equal(t, []string{"tool"}, e.Categories)
	require.NotNil(t, e.Description)
	assert.Equal(t, "Wood shaving tool", e.Description.EN)
	assert.Nil(t, e.Detail)
}

func TestToBasic_LegacyFieldSpellings(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		ja   string
		en   string
	}{
		{"term_ja/term_en", map[string]any{"term_ja": "鋸", "term_en": "Saw"}, "鋸", "Saw"},
		{"ja/en", map[string]any{"ja": "鋸", "en": "Saw"}, "鋸", "Saw"},
		{"jp/eng", map[string]any{"jp": "鋸", "eng": "Saw"}, "鋸", "Saw"},
		{"japanese/english", map[string]any{"japanese": "鋸", "english": "Saw"}, "鋸", "Saw"},
		{"name_ja/name_en", map[string]any{"name_ja": "鋸", "name_en": "Saw"}, "鋸", "Saw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ToBasic(tt.raw, "pack-001")
			assert.Equal(t, tt.ja, e.Term.JA)
			assert.Equal(t, tt.en, e.Term.EN)
		})
	}
}

func TestToBasic_ScalarListsAreWrapped(t *testing.T) {
	raw := map[string]any{
		"term_en":  "Saw",
		"category": "tool",
		"alias_en": "handsaw",
	}

	e := ToBasic(raw, "pack-001")

	assert.Equal(t, []string{"tool"}, e.Categories)
	assert.Equal(t, []string{"handsaw"}, e.Aliases.EN)
}

func TestToBasic_ExamplesCarryProvenance(t *testing.T) {
	raw := map[string]any{
		"term_en": "Saw",
		"usage":   []any{"cut along the line", "cut along the line"},
	}

	e := ToBasic(raw, "pack-002")

	require.NotNil(t, e.Detail)
	assert.Equal(t, []string{"cut along the line"}, e.Detail.Examples)
	assert.Equal(t, []string{"pack-002"}, e.Detail.From)
}

func TestToBasic_EmptyTermsFlaggedNeedsManual(t *testing.T) {
	// Concrete scenario: {} converts to empty terms and needs-manual.
	e := ToBasic(map[string]any{}, "pack-001")

	assert.Equal(t, "", e.Term.JA)
	assert.Equal(t, "", e.Term.EN)
	require.NotNil(t, e.Detail)
	assert.True(t, e.Detail.NeedsManual)
	assert.NotEmpty(t, e.ID)
}

func TestMakeID(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want string
	}{
		{"existing id wins", map[string]any{"id": "nokogiri", "term": map[string]any{"en": "Saw"}}, "nokogiri"},
		{"slug field accepted", map[string]any{"slug": "ryoba_saw"}, "ryoba_saw"},
		{"key field accepted", map[string]any{"key": "dozuki"}, "dozuki"},
		{"uppercase id rejected, en slugified", map[string]any{"id": "Nokogiri", "term": map[string]any{"en": "Ryoba Saw"}}, "ryoba_saw"},
		{"en slugified", map[string]any{"term": map[string]any{"en": "Claw Hammer (Large)"}}, "claw_hammer_large"},
		{"legacy en spelling slugified", map[string]any{"term_en": "Chalk Line"}, "chalk_line"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeID(tt.raw))
		})
	}
}

func TestMakeID_JapaneseFallbackIsDeterministic(t *testing.T) {
	raw := map[string]any{"term": map[string]any{"ja": "墨壺"}}

	first := MakeID(raw)
	second := MakeID(raw)

	assert.Equal(t, first, second)
	assert.Regexp(t, `^ja_[0-9a-f]{8}$`, first)
}

func TestMakeID_NoTextAtAllHashesWholeRecord(t *testing.T) {
	a := MakeID(map[string]any{"region": []any{"kansai"}})
	b := MakeID(map[string]any{"region": []any{"kanto"}})

	assert.Regexp(t, `^ja_[0-9a-f]{8}$`, a)
	assert.NotEqual(t, a, b)
}

func TestSlugifyASCII(t *testing.T) {
	assert.Equal(t, "claw_hammer", SlugifyASCII("  Claw -- Hammer!"))
	assert.Equal(t, "", SlugifyASCII("玄能"))
	assert.Equal(t, "abc123", SlugifyASCII("ＡＢＣ１２３"))
}
