package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genbalog/atlas/internal/merge"
	"github.com/genbalog/atlas/internal/schema"
)

func TestMergeCmd_FullRun(t *testing.T) {
	// Given: a base corpus and an incoming pack with one known and one
	// new tool
	dir := writeDataDir(t)
	packPath := filepath.Join(t.TempDir(), "new_tools.json")
	writeFile(t, packPath, `[
  {"id": "hammer", "term": {"ja": "ハンマー", "en": "Hammer"}, "aliases": {"en": ["claw hammer"]}},
  {"term": {"ja": "ノミ", "en": "Chisel"}}
]`)
	outDir := filepath.Join(t.TempDir(), "out")

	cmd := newMergeCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data", dir, "--pack", packPath, "--out-dir", outDir})

	// When: merging
	err := cmd.Execute()

	// Then: the summary and all three artifacts appear
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Merge summary")
	assert.Contains(t, out.String(), outDir)

	var report merge.Report
	readJSONFile(t, filepath.Join(outDir, merge.ReportFileName), &report)
	assert.Equal(t, 2, report.PackCount)
	assert.Equal(t, 3, report.BasicCount)
	assert.Equal(t, 1, report.AddedAsNew)
	assert.Equal(t, 1, report.MergedIntoExisting)

	var merged []schema.Entry
	readJSONFile(t, filepath.Join(outDir, merge.MergedFileName), &merged)
	require.Len(t, merged, 4)
	// hammer gained the new alias, base values untouched
	assert.Equal(t, "ハンマー", merged[0].Term.JA)
	assert.Contains(t, merged[0].Aliases.EN, "claw hammer")
}

func TestMergeCmd_ManualOverrides(t *testing.T) {
	// Given: a manual file assigning an otherwise-new record to hammer
	dir := writeDataDir(t)
	tmp := t.TempDir()
	packPath := filepath.Join(tmp, "pack.json")
	writeFile(t, packPath, `[{"id": "big_hammer", "term": {"ja": "大ハンマー", "en": "Sledge"}}]`)
	manualPath := filepath.Join(tmp, "manual.json")
	writeFile(t, manualPath, `{"merge": {"big_hammer": "hammer"}}`)
	outDir := filepath.Join(tmp, "out")

	cmd := newMergeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data", dir, "--pack", packPath, "--manual", manualPath, "--out-dir", outDir})

	// When: merging
	require.NoError(t, cmd.Execute())

	// Then: the manual merge is recorded and nothing was added
	var report merge.Report
	readJSONFile(t, filepath.Join(outDir, merge.ReportFileName), &report)
	assert.Equal(t, 1, report.ManualMergeApplied)
	assert.Equal(t, 0, report.AddedAsNew)
}

func TestMergeCmd_MissingPackFlag(t *testing.T) {
	cmd := newMergeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	assert.Error(t, cmd.Execute())
}

func TestMergeCmd_InvalidBaseAborts(t *testing.T) {
	// Given: a base corpus with a broken record
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.json"),
		`{"version": 1, "packs": [{"id": "core", "file": "core.json"}]}`)
	writeFile(t, filepath.Join(dir, "core.json"), `[{"term": {"ja": "x"}}]`)
	packPath := filepath.Join(dir, "pack.json")
	writeFile(t, packPath, `[]`)

	cmd := newMergeCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--data", dir, "--pack", packPath, "--out-dir", filepath.Join(dir, "out")})

	// When: merging on top of the invalid base
	err := cmd.Execute()

	// Then: the strict load aborts the run and no artifacts are written
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load base corpus")
	_, statErr := os.Stat(filepath.Join(dir, "out", merge.ReportFileName))
	assert.True(t, os.IsNotExist(statErr))
}

func readJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}
