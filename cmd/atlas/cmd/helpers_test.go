package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeDataDir lays out a small valid data directory: an index manifest
// plus one pack with three entries.
func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	index := `{
  "version": 1,
  "packs": [{"id": "core", "file": "core.json"}],
  "categories": ["hand_tools", "power_tools"]
}`
	pack := `[
  {
    "id": "hammer",
    "term": {"ja": "ハンマー", "en": "Hammer"},
    "category": "hand_tools",
    "aliases": {"ja": ["かなづち"], "en": []},
    "description": {"ja": "釘を打つ工具", "en": "Striking tool"}
  },
  {
    "id": "drill",
    "term": {"ja": "ドリル", "en": "Drill"},
    "category": "power_tools",
    "aliases": {"ja": [], "en": ["power drill"]}
  },
  {
    "id": "saw",
    "term": {"ja": "のこぎり", "en": "Saw"},
    "category": "hand_tools"
  }
]`
	writeFile(t, filepath.Join(dir, "index.json"), index)
	writeFile(t, filepath.Join(dir, "core.json"), pack)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
