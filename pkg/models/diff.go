package models

import "fmt"

// DiffKind classifies a single structural divergence.
type DiffKind string

const (
	// DiffAdded means the entry exists only on the experimental side.
	DiffAdded DiffKind = "added"
	// DiffRemoved means the entry exists only on the baseline side.
	DiffRemoved DiffKind = "removed"
	// DiffChanged means both sides have the entry but the values differ.
	DiffChanged DiffKind = "changed"
)

// Valid returns true if the kind is a known value.
func (k DiffKind) Valid() bool {
	switch k {
	case DiffAdded, DiffRemoved, DiffChanged:
		return true
	default:
		return false
	}
}

// DiffEntry records one divergence between two normalized artifacts.
// Path addresses the diverging value, e.g. "references[2].sourceLocation.column".
// The side a value is absent from holds the empty string.
type DiffEntry struct {
	Kind         DiffKind `json:"kind"`
	Path         string   `json:"path"`
	Baseline     string   `json:"baseline,omitempty"`
	Experimental string   `json:"experimental,omitempty"`
}

// String renders the entry in a single diff-style line.
func (e DiffEntry) String() string {
	switch e.Kind {
	case DiffAdded:
		return fmt.Sprintf("+ %s = %s", e.Path, e.Experimental)
	case DiffRemoved:
		return fmt.Sprintf("- %s = %s", e.Path, e.Baseline)
	default:
		return fmt.Sprintf("~ %s: %s -> %s", e.Path, e.Baseline, e.Experimental)
	}
}
