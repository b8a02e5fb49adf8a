// Package loader reads the index manifest plus its referenced data packs
// and feeds every raw record through the schema validator.
//
// Two modes exist. Load is the strict library mode: the first invalid
// record aborts the whole load. Advise is the advisory CLI mode: it
// accumulates every issue across every pack and never aborts early.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/genbalog/atlas/internal/schema"
)

// PackRef is one pack reference inside the index manifest.
type PackRef struct {
	ID    string            `json:"id"`
	File  string            `json:"file"`
	Count int               `json:"count,omitempty"`
	Title map[string]string `json:"title,omitempty"`
}

// Manifest is the index.json shape. Categories and Tasks are the allowed
// vocabularies; historical data files spell them as arrays of strings,
// arrays of {id} objects, or maps keyed by id, so they stay untyped here
// and are decoded by definitionIDs.
type Manifest struct {
	Version    int       `json:"version"`
	Packs      []PackRef `json:"packs"`
	Categories any       `json:"categories,omitempty"`
	Tasks      any       `json:"tasks,omitempty"`
}

// CategoryIDs returns the category vocabulary the manifest declares.
// Empty when the manifest declares none.
func (m Manifest) CategoryIDs() map[string]struct{} {
	return definitionIDs(m.Categories, nil)
}

// ValidationError aggregates the issues that stopped a strict load. Source
// locates the failing record as "file#index".
type ValidationError struct {
	Source string
	Issues []schema.Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Source, strings.Join(msgs, "; "))
}

// LoadManifest reads and decodes index.json from dataDir.
func LoadManifest(dataDir string) (Manifest, error) {
	var m Manifest
	if err := readJSON(filepath.Join(dataDir, "index.json"), &m); err != nil {
		return m, err
	}
	if m.Packs == nil {
		return m, fmt.Errorf("index.json is missing a valid packs array")
	}
	return m, nil
}

// Load reads every pack in the manifest's declared order and returns the
// flat validated entry list. The first record with an error-severity issue,
// id collision, or out-of-vocabulary category aborts the load.
func Load(dataDir string) ([]schema.Entry, error) {
	manifest, err := LoadManifest(dataDir)
	if err != nil {
		return nil, err
	}

	categories := definitionIDs(manifest.Categories, nil)

	var entries []schema.Entry
	seen := make(map[string]string)

	for _, pack := range manifest.Packs {
		records, err := ReadPack(filepath.Join(dataDir, pack.File))
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", pack.File, err)
		}
		for i, record := range records {
			source := fmt.Sprintf("%s#%d", pack.File, i)
			result := schema.Validate(record)
			if !result.Success || result.Value == nil {
				return nil, &ValidationError{Source: source, Issues: result.Issues}
			}
			entry := *result.Value

			if first, ok := seen[entry.ID]; ok {
				return nil, &ValidationError{Source: source, Issues: []schema.Issue{{
					Path:     "id",
					Message:  fmt.Sprintf("duplicate id %q (first defined in %s)", entry.ID, first),
					Severity: schema.SeverityError,
				}}}
			}
			seen[entry.ID] = source

			if len(categories) > 0 {
				if _, ok := categories[entry.Category]; !ok {
					return nil, &ValidationError{Source: source, Issues: []schema.Issue{{
						Path:     "category",
						Message:  fmt.Sprintf("category %q not found in index", entry.Category),
						Severity: schema.SeverityError,
					}}}
				}
			}

			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// ReadPack decodes a pack file, accepting the three historical root
// shapes: a bare array, {"items": [...]}, or {"data": [...]}.
func ReadPack(path string) ([]any, error) {
	var root any
	if err := readJSON(path, &root); err != nil {
		return nil, err
	}
	if records, ok := root.([]any); ok {
		return records, nil
	}
	if obj, ok := root.(map[string]any); ok {
		for _, key := range []string{"items", "data"} {
			if records, ok := obj[key].([]any); ok {
				return records, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown JSON shape in %s", path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// definitionIDs decodes an allowed-vocabulary declaration into an id set.
// Malformed items are reported through report when provided and otherwise
// skipped; an absent declaration yields an empty set, which disables the
// membership check.
func definitionIDs(v any, report func(msg string)) map[string]struct{} {
	ids := make(map[string]struct{})
	note := func(msg string) {
		if report != nil {
			report(msg)
		}
	}
	add := func(id, source string) {
		id = strings.TrimSpace(id)
		if id == "" {
			note(fmt.Sprintf("definition id must be a non-empty string (%s)", source))
			return
		}
		if _, ok := ids[id]; ok {
			note(fmt.Sprintf("definition id is duplicated: %s", id))
			return
		}
		ids[id] = struct{}{}
	}

	switch defs := v.(type) {
	case nil:
	case []any:
		for i, item := range defs {
			switch t := item.(type) {
			case string:
				add(t, fmt.Sprintf("array[%d]", i))
			case map[string]any:
				if id, ok := t["id"].(string); ok {
					add(id, fmt.Sprintf("array[%d]", i))
				} else {
					note(fmt.Sprintf("definition entry missing id in array[%d]", i))
				}
			default:
				note(fmt.Sprintf("definition entry must be object or string in array[%d]", i))
			}
		}
	case map[string]any:
		for key, entry := range defs {
			if _, ok := entry.(map[string]any); !ok {
				note(fmt.Sprintf("definition map entry for %s must be an object", key))
				continue
			}
			add(key, fmt.Sprintf("map.%s", key))
		}
	default:
		note("definitions must be an array or object map")
	}
	return ids
}
