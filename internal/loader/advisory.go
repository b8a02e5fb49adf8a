package loader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/genbalog/atlas/internal/normalize"
	"github.com/genbalog/atlas/internal/schema"
)

// Advisory accumulates every issue found across all packs. Unlike the
// strict Load it never aborts early: structural problems with one pack are
// recorded and the walk continues with the next one.
type Advisory struct {
	Errors   []string
	Warnings []string

	PackCount  int
	EntryCount int
}

// Failed reports whether any error-severity problem was recorded.
// Warnings alone never fail an advisory run.
func (a *Advisory) Failed() bool {
	return len(a.Errors) > 0
}

// Report writes warnings to warnOut and errors to errOut, one per line,
// followed by a summary line on errOut when the run failed.
func (a *Advisory) Report(warnOut, errOut io.Writer) {
	for _, w := range a.Warnings {
		fmt.Fprintln(warnOut, w)
	}
	for _, e := range a.Errors {
		fmt.Fprintln(errOut, e)
	}
	if a.Failed() {
		fmt.Fprintf(errOut, "validation failed with %d error(s)\n", len(a.Errors))
	}
}

func (a *Advisory) errorf(source, format string, args ...any) {
	a.Errors = append(a.Errors, fmt.Sprintf("[%s] %s", source, fmt.Sprintf(format, args...)))
}

func (a *Advisory) warnf(source, format string, args ...any) {
	a.Warnings = append(a.Warnings, fmt.Sprintf("[%s] %s", source, fmt.Sprintf(format, args...)))
}

// Advise runs the advisory validation pass over dataDir. Every pack in the
// manifest's order is traversed; all issues are collected with their
// source location; id collisions are tracked across pack boundaries,
// remembering which earlier file first claimed the id.
func Advise(dataDir string) *Advisory {
	a := &Advisory{}

	manifest, err := LoadManifest(dataDir)
	if err != nil {
		a.errorf("index.json", "failed to load index: %v", err)
		return a
	}

	categories := definitionIDs(manifest.Categories, func(msg string) {
		a.errorf("index.json", "category %s", msg)
	})
	tasks := definitionIDs(manifest.Tasks, func(msg string) {
		a.errorf("index.json", "task %s", msg)
	})

	firstClaim := make(map[string]string)

	for _, pack := range manifest.Packs {
		a.PackCount++
		records, err := ReadPack(filepath.Join(dataDir, pack.File))
		if err != nil {
			a.errorf(pack.File, "failed to load pack: %v", err)
			continue
		}

		for i, record := range records {
			source := fmt.Sprintf("%s#%d", pack.File, i)
			result := schema.Validate(record)
			for _, issue := range result.Issues {
				if issue.Severity == schema.SeverityError {
					a.errorf(source, "[%s] %s", issue.Path, issue.Message)
				} else {
					a.warnf(source, "[%s] %s", issue.Path, issue.Message)
				}
			}
			if result.Value == nil {
				continue
			}
			entry := *result.Value
			a.EntryCount++

			if first, ok := firstClaim[entry.ID]; ok {
				a.errorf(source, "[id] duplicate id %q (first defined in %s)", entry.ID, first)
			} else {
				firstClaim[entry.ID] = source
			}

			// Reference checks run over the raw record: categories and
			// tasks in their superset forms are ingestion-level fields the
			// core schema does not carry.
			rawCategories := []string{entry.Category}
			var rawTasks []string
			if obj, ok := record.(map[string]any); ok {
				rawCategories = append(rawCategories, normalize.StringArray(obj["categories"])...)
				rawTasks = normalize.StringArray(obj["tasks"])
			}
			a.checkRefs(source, "category", rawCategories, categories)
			a.checkRefs(source, "task", rawTasks, tasks)
		}
	}
	return a
}

// checkRefs validates vocabulary references when the manifest declares the
// vocabulary. An empty declared set disables the check entirely.
func (a *Advisory) checkRefs(source, label string, ids []string, declared map[string]struct{}) {
	if len(declared) == 0 {
		return
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := declared[id]; !ok {
			a.errorf(source, "[%s] %s id not found in index: %s", label, label, id)
		}
	}
}
