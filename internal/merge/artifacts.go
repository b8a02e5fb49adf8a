package merge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Artifact file names written by WriteArtifacts.
const (
	PackFileName   = "converted_pack.json"
	MergedFileName = "merged.json"
	ReportFileName = "merge_report.json"
	lockFileName   = ".merge.lock"
)

// WriteArtifacts persists a merge result to outDir: the converted pack,
// the merged corpus, and the classification report. The directory is
// held under a cross-process file lock for the duration so concurrent
// merge runs cannot interleave their files. Callers pass a complete
// Result; nothing is written before the merge computation has finished.
func WriteArtifacts(outDir string, result Result) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(outDir, lockFileName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock output directory: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	files := []struct {
		name  string
		value any
	}{
		{PackFileName, result.Pack},
		{MergedFileName, result.Merged},
		{ReportFileName, result.Report},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(outDir, f.name), f.value); err != nil {
			return err
		}
	}
	return nil
}

// ReadManual decodes a manual-overrides file ({"asNew": [...], "merge":
// {...}}). An empty path yields nil, meaning no overrides.
func ReadManual(path string) (*Manual, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manual
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
