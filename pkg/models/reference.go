// Package models defines the shared value types for refparity: references,
// normalized artifacts, diff entries, and comparison results.
package models

import (
	"encoding/json"
	"sort"
)

// Location is a line/column position within a source file.
type Location struct {
	// Line is the 1-based line number.
	Line int `json:"line"`
	// Column is the 1-based column number.
	Column int `json:"column"`
}

// Reference is one unresolved-constant record from an artifact.
type Reference struct {
	// ConstantName is the symbolic name the resolver could not map.
	ConstantName string `json:"constantName"`
	// Location is where the reference occurs in the source file.
	Location Location `json:"sourceLocation"`
	// Extra holds producer fields this tool does not model. They are
	// preserved verbatim, never influence ordering, and participate
	// in diffs.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownReferenceFields are the JSON keys mapped to typed fields; everything
// else lands in Extra.
var knownReferenceFields = []string{"constantName", "sourceLocation"}

// UnmarshalJSON decodes the typed fields and captures any remaining keys
// into Extra.
func (r *Reference) UnmarshalJSON(data []byte) error {
	type plain Reference
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownReferenceFields {
		delete(raw, k)
	}
	if len(raw) > 0 {
		p.Extra = raw
	}

	*r = Reference(p)
	return nil
}

// MarshalJSON re-merges Extra with the typed fields so a reference round-trips
// without losing producer data.
func (r Reference) MarshalJSON() ([]byte, error) {
	merged := make(map[string]json.RawMessage, len(r.Extra)+2)
	for k, v := range r.Extra {
		merged[k] = v
	}

	name, err := json.Marshal(r.ConstantName)
	if err != nil {
		return nil, err
	}
	loc, err := json.Marshal(r.Location)
	if err != nil {
		return nil, err
	}
	merged["constantName"] = name
	merged["sourceLocation"] = loc

	return json.Marshal(merged)
}

// Less orders references by (constantName, line, column). Used with a stable
// sort so ties keep their original relative order.
func (r Reference) Less(o Reference) bool {
	if r.ConstantName != o.ConstantName {
		return r.ConstantName < o.ConstantName
	}
	if r.Location.Line != o.Location.Line {
		return r.Location.Line < o.Location.Line
	}
	return r.Location.Column < o.Location.Column
}

// NormalizedArtifact is the canonical, comparable form of one artifact file.
type NormalizedArtifact struct {
	// SourcePath is the artifact's on-disk location, kept for reporting.
	SourcePath string `json:"sourcePath"`
	// References is the canonically ordered reference sequence. Empty when
	// the artifact file does not exist.
	References []Reference `json:"references"`
}

// Normalize applies the canonical sort. Safe to call repeatedly.
func (a *NormalizedArtifact) Normalize() {
	sort.SliceStable(a.References, func(i, j int) bool {
		return a.References[i].Less(a.References[j])
	})
}
