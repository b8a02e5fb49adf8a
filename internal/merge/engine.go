package merge

import (
	"sort"
	"strings"

	"github.com/genbalog/atlas/internal/normalize"
	"github.com/genbalog/atlas/internal/schema"
)

// Options tunes the near-match heuristic and tags provenance. The floors
// and ratio are policy choices, not derived invariants; DefaultOptions
// mirrors the values the corpus has been curated against.
type Options struct {
	// Source tags detail._from on entries touched by this run.
	Source string
	// SubstringFloor is the minimum length (runes) both keys need before
	// substring containment counts as a near match.
	SubstringFloor int
	// PrefixFloor is the minimum length both keys need before the prefix
	// heuristic applies.
	PrefixFloor int
	// PrefixRatio is the share of the shorter key that must match as a
	// common prefix.
	PrefixRatio float64
	// NearMatchLimit caps how many candidates one record may surface.
	NearMatchLimit int
	// Manual carries human resolutions applied before automatic matching.
	Manual *Manual
}

// DefaultOptions returns the thresholds the atlas data has been curated
// against.
func DefaultOptions(source string) Options {
	return Options{
		Source:         source,
		SubstringFloor: 4,
		PrefixFloor:    6,
		PrefixRatio:    0.8,
		NearMatchLimit: 5,
	}
}

// Result bundles the merged corpus, the converted incoming pack, and the
// classification report.
type Result struct {
	Merged []schema.Entry
	Pack   []schema.Entry
	Report Report
}

// Merge folds incoming raw records into the base corpus. Base entries are
// never mutated in place; merging builds new entries. The call never fails
// on data quality: exact matches are merged, everything uncertain lands in
// the report.
func Merge(base []schema.Entry, incoming []any, opts Options) Result {
	pack := make([]schema.Entry, len(incoming))
	for i, raw := range incoming {
		pack[i] = ToBasic(raw, opts.Source)
	}

	merged := make([]schema.Entry, len(base))
	copy(merged, base)

	byID := make(map[string]int, len(merged))
	for i, e := range merged {
		if e.ID != "" {
			if _, ok := byID[e.ID]; !ok {
				byID[e.ID] = i
			}
		}
	}

	index := newKeyIndex()
	for i := range merged {
		index.add(merged[i], i)
	}

	report := Report{
		PackCount:       len(pack),
		BasicCount:      len(base),
		DuplicatesExact: []Duplicate{},
		Ambiguous:       []Ambiguous{},
		PackNeedsManual: []NeedsManual{},
	}

	manualAsNew := map[string]struct{}{}
	manualMerge := map[string]string{}
	if opts.Manual != nil {
		for _, id := range opts.Manual.AsNew {
			manualAsNew[id] = struct{}{}
		}
		for packID, baseID := range opts.Manual.Merge {
			manualMerge[packID] = baseID
		}
	}

	addAsNew := func(e schema.Entry) {
		merged = append(merged, e)
		if _, ok := byID[e.ID]; !ok {
			byID[e.ID] = len(merged) - 1
		}
		index.add(e, len(merged)-1)
		report.AddedAsNew++
	}
	mergeAt := func(idx int, e schema.Entry, packID, reason string) {
		merged[idx] = mergeInto(merged[idx], e, opts.Source)
		index.add(merged[idx], idx)
		report.MergedIntoExisting++
		report.DuplicatesExact = append(report.DuplicatesExact, Duplicate{
			PackID: packID, BaseID: merged[idx].ID, Reason: reason,
		})
	}

	for _, pe := range pack {
		packID := pe.ID

		// Manual resolutions win over everything automatic.
		if _, ok := manualAsNew[packID]; ok {
			addAsNew(pe)
			report.ManualAsNewApplied++
			continue
		}
		if targetID, ok := manualMerge[packID]; ok {
			idx, found := byID[targetID]
			if !found {
				report.Ambiguous = append(report.Ambiguous, Ambiguous{
					PackID:   packID,
					PackTerm: pe.Term,
					Candidates: []Candidate{{
						BaseID: targetID, Why: ReasonManualTargetMissing,
					}},
				})
				continue
			}
			mergeAt(idx, pe, packID, ReasonManualMerge)
			report.ManualMergeApplied++
			continue
		}

		// A record with no term text in either language has no reliable
		// key: always added as new, never matched.
		if pe.Detail != nil && pe.Detail.NeedsManual {
			report.PackNeedsManual = append(report.PackNeedsManual, NeedsManual{
				PackID: packID, PackTerm: pe.Term,
			})
			addAsNew(pe)
			continue
		}

		// Direct id match.
		if idx, ok := byID[packID]; ok {
			mergeAt(idx, pe, packID, ReasonIDMatch)
			continue
		}

		peKeys := entryKeys(pe)
		hits := index.lookup(peKeys)

		switch {
		case len(hits) == 1:
			mergeAt(hits[0], pe, packID, ReasonNormalizedExact)
		case len(hits) > 1:
			candidates := make([]Candidate, 0, len(hits))
			for _, idx := range hits {
				if len(candidates) == opts.NearMatchLimit {
					break
				}
				candidates = append(candidates, Candidate{
					BaseID: merged[idx].ID, Why: ReasonMultipleHits,
				})
			}
			report.Ambiguous = append(report.Ambiguous, Ambiguous{
				PackID: packID, PackTerm: pe.Term, Candidates: candidates,
			})
		default:
			near := index.nearMatches(peKeys, merged, opts)
			if len(near) > 0 {
				report.Ambiguous = append(report.Ambiguous, Ambiguous{
					PackID: packID, PackTerm: pe.Term, Candidates: near,
				})
				continue
			}
			addAsNew(pe)
		}
	}

	report.FinalIDDuplicates = finalIDDuplicates(merged)
	return Result{Merged: merged, Pack: pack, Report: report}
}

// entryKeys computes the normalized match keys for an entry: id, both
// terms, and every alias in both languages, folded via ForMatch.
func entryKeys(e schema.Entry) []string {
	raw := []string{e.ID, e.Term.JA, e.Term.EN}
	raw = append(raw, e.Aliases.JA...)
	raw = append(raw, e.Aliases.EN...)

	keys := []string{}
	seen := map[string]struct{}{}
	for _, v := range raw {
		k := normalize.ForMatch(v)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// keyIndex maps every normalized key to the positions of its owning
// entries. A key owned by several entries is itself a signal of
// pre-existing ambiguity; lookup surfaces all owners.
type keyIndex struct {
	byKey map[string][]int
}

func newKeyIndex() *keyIndex {
	return &keyIndex{byKey: make(map[string][]int)}
}

func (ix *keyIndex) add(e schema.Entry, pos int) {
	for _, k := range entryKeys(e) {
		owners := ix.byKey[k]
		known := false
		for _, o := range owners {
			if o == pos {
				known = true
				break
			}
		}
		if !known {
			ix.byKey[k] = append(owners, pos)
		}
	}
}

// lookup returns the distinct entry positions whose key sets intersect the
// given keys, in first-hit order.
func (ix *keyIndex) lookup(keys []string) []int {
	var hits []int
	seen := map[int]struct{}{}
	for _, k := range keys {
		for _, pos := range ix.byKey[k] {
			if _, ok := seen[pos]; ok {
				continue
			}
			seen[pos] = struct{}{}
			hits = append(hits, pos)
		}
	}
	return hits
}

// nearMatches scans every indexed key for approximate equality against the
// record's keys: substring containment either direction (both keys at
// least SubstringFloor runes), or a common prefix covering PrefixRatio of
// the shorter key (both at least PrefixFloor runes). Hits are reported for
// review, never merged automatically.
func (ix *keyIndex) nearMatches(keys []string, entries []schema.Entry, opts Options) []Candidate {
	ids := []string{}
	seen := map[string]struct{}{}
	for indexed, owners := range ix.byKey {
		matched := false
		for _, k := range keys {
			if nearEqual(indexed, k, opts) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		for _, pos := range owners {
			id := entries[pos].ID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	// Map iteration order is random; sort so repeated runs over the same
	// pack produce the same report.
	sort.Strings(ids)
	if len(ids) > opts.NearMatchLimit {
		ids = ids[:opts.NearMatchLimit]
	}
	out := make([]Candidate, len(ids))
	for i, id := range ids {
		out[i] = Candidate{BaseID: id, Why: ReasonNearMatch}
	}
	return out
}

func nearEqual(a, b string, opts Options) bool {
	if a == b {
		return true
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)

	if la >= opts.SubstringFloor && lb >= opts.SubstringFloor {
		if strings.Contains(a, b) || strings.Contains(b, a) {
			return true
		}
	}

	if la >= opts.PrefixFloor && lb >= opts.PrefixFloor {
		shorter := la
		if lb < shorter {
			shorter = lb
		}
		n := int(float64(shorter) * opts.PrefixRatio)
		if n > 0 && string(ra[:n]) == string(rb[:n]) {
			return true
		}
	}
	return false
}

// mergeInto combines incoming into base without mutating either. Base
// scalars win on conflict and are filled only when empty; arrays are
// unioned base-then-incoming; examples accumulate and provenance grows.
func mergeInto(base, incoming schema.Entry, source string) schema.Entry {
	out := base.Clone()

	if out.Type == "" {
		out.Type = incoming.Type
	}
	if out.Type == "" {
		out.Type = "tool"
	}
	if out.Term.JA == "" {
		out.Term.JA = incoming.Term.JA
	}
	if out.Term.EN == "" {
		out.Term.EN = incoming.Term.EN
	}

	if incoming.Description != nil {
		if out.Description == nil {
			out.Description = &schema.Description{}
		}
		if out.Description.JA == "" {
			out.Description.JA = incoming.Description.JA
		}
		if out.Description.EN == "" {
			out.Description.EN = incoming.Description.EN
		}
	}

	out.Aliases.JA = unionByMatch(out.Aliases.JA, incoming.Aliases.JA)
	out.Aliases.EN = unionByMatch(out.Aliases.EN, incoming.Aliases.EN)
	out.Categories = union(out.Categories, incoming.Categories)
	out.Tasks = union(out.Tasks, incoming.Tasks)
	out.Fuzzy = union(out.Fuzzy, incoming.Fuzzy)
	out.Region = union(out.Region, incoming.Region)

	if out.Image == "" {
		out.Image = incoming.Image
	}

	if incoming.Detail != nil && len(incoming.Detail.Examples) > 0 {
		if out.Detail == nil {
			out.Detail = &schema.Detail{}
		}
		out.Detail.Examples = union(out.Detail.Examples, incoming.Detail.Examples)
		out.Detail.From = union(out.Detail.From, []string{source})
	}

	return out
}

func union(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	return normalize.UniquePreserveOrder(append(append([]string{}, base...), extra...))
}

// unionByMatch dedupes aliases by their match projection so spellings that
// differ only in case or width do not pile up. The base spelling wins.
func unionByMatch(base, extra []string) []string {
	if len(extra) == 0 && len(base) == 0 {
		return base
	}
	return normalize.UniqueBy(append(append([]string{}, base...), extra...), normalize.ForMatch)
}

// finalIDDuplicates is the defensive post-merge pass: duplicate ids should
// be structurally impossible here, so any finding is a logic-bug signal
// for the report consumer, not a thrown error.
func finalIDDuplicates(entries []schema.Entry) []string {
	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		counts[e.ID]++
	}
	var dups []string
	seen := map[string]struct{}{}
	for _, e := range entries {
		if counts[e.ID] > 1 {
			if _, ok := seen[e.ID]; !ok {
				seen[e.ID] = struct{}{}
				dups = append(dups, e.ID)
			}
		}
	}
	return dups
}
