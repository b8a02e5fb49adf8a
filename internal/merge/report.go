package merge

import "github.com/genbalog/atlas/internal/schema"

// Match reasons recorded in the report.
const (
	ReasonIDMatch             = "id_match"
	ReasonNormalizedExact     = "normalized_exact"
	ReasonMultipleHits        = "multiple_hits"
	ReasonNearMatch           = "near_match"
	ReasonManualMerge         = "manual_merge"
	ReasonManualTargetMissing = "manual_merge_target_missing"
)

// Candidate is one plausible base-entry match for an ambiguous record.
type Candidate struct {
	BaseID string `json:"basicId"`
	Why    string `json:"why"`
}

// Duplicate records an incoming record that was folded into an existing
// base entry, with the reason the match was trusted.
type Duplicate struct {
	PackID string `json:"packId"`
	BaseID string `json:"basicId"`
	Reason string `json:"reason"`
}

// Ambiguous records an incoming record that could not be resolved to a
// single base entry. It is neither merged nor added; a human decides.
type Ambiguous struct {
	PackID     string      `json:"packId"`
	PackTerm   schema.Term `json:"packTerm"`
	Candidates []Candidate `json:"candidates"`
}

// NeedsManual records an incoming record that lacked both term fields and
// was therefore appended as new without any matching attempt.
type NeedsManual struct {
	PackID   string      `json:"packId"`
	PackTerm schema.Term `json:"packTerm"`
}

// Report is the aggregate outcome of one merge run. It is always produced;
// data-quality problems classify records here instead of failing the run.
type Report struct {
	PackCount          int           `json:"packCount"`
	BasicCount         int           `json:"basicCount"`
	AddedAsNew         int           `json:"addedAsNew"`
	MergedIntoExisting int           `json:"mergedIntoExisting"`
	DuplicatesExact    []Duplicate   `json:"duplicatesExact"`
	Ambiguous          []Ambiguous   `json:"ambiguous"`
	PackNeedsManual    []NeedsManual `json:"packNeedsManual"`
	FinalIDDuplicates  []string      `json:"finalIdDuplicates,omitempty"`
	ManualAsNewApplied int           `json:"manualAsNewApplied"`
	ManualMergeApplied int           `json:"manualMergeApplied"`
}

// Manual carries human resolutions for records a previous run classified
// as ambiguous: ids to adopt as new entries, and pack-id to base-id merge
// assignments. Manual decisions take precedence over automatic matching.
type Manual struct {
	AsNew []string          `json:"asNew"`
	Merge map[string]string `json:"merge"`
}
