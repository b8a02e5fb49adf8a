package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhitespace_CollapsesRuns(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hammer", "hammer"},
		{"leading and trailing", "  hammer  ", "hammer"},
		{"internal run", "claw \t\n hammer", "claw hammer"},
		{"ideographic space", "玄能　ハンマー", "玄能 ハンマー"},
		{"only whitespace", " 　\t ", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Whitespace(tt.in))
		})
	}
}

func TestWhitespace_Idempotent(t *testing.T) {
	inputs := []string{"", "  a  b  ", "　x　", "a b c"}
	for _, s := range inputs {
		once := Whitespace(s)
		assert.Equal(t, once, Whitespace(once), "input %q", s)
	}
}

func TestString_NonStringIsAbsent(t *testing.T) {
	_, ok := String(42)
	assert.False(t, ok)
	_, ok = String(nil)
	assert.False(t, ok)

	s, ok := String("  saw ")
	assert.True(t, ok)
	assert.Equal(t, "saw", s)
}

func TestStringArray(t *testing.T) {
	t.Run("non-array yields empty", func(t *testing.T) {
		assert.Empty(t, StringArray("not an array"))
		assert.Empty(t, StringArray(nil))
	})

	t.Run("drops non-strings and empties, keeps order and duplicates", func(t *testing.T) {
		in := []any{" mallet ", 7, "", "  ", "mallet", "gennou"}
		assert.Equal(t, []string{"mallet", "mallet", "gennou"}, StringArray(in))
	})

	t.Run("accepts []string directly", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, StringArray([]string{" a", "b "}))
	})
}

func TestForMatch(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Hammer", "hammer"},
		{"strips punctuation and spaces", "claw-hammer (large)", "clawhammerlarge"},
		{"folds full-width ascii", "ＨＡＭＭＥＲ１", "hammer1"},
		{"folds half-width katakana", "ﾊﾝﾏｰ", "ハンマー"},
		{"keeps kanji", "玄能", "玄能"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForMatch(tt.in))
		})
	}
}

func TestForSearch_KeepsSpaces(t *testing.T) {
	assert.Equal(t, "claw hammer", ForSearch("  Claw　HAMMER "))
}

func TestUniquePreserveOrder(t *testing.T) {
	in := []string{"b", "a", "b", "c", "a"}
	assert.Equal(t, []string{"b", "a", "c"}, UniquePreserveOrder(in))
}

func TestUniqueBy_FirstOccurrenceWins(t *testing.T) {
	in := []string{"Mallet", "mallet", "ＭＡＬＬＥＴ", "saw"}
	assert.Equal(t, []string{"Mallet", "saw"}, UniqueBy(in, ForMatch))
}
