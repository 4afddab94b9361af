// Package diff computes structural differences between normalized artifacts.
package diff

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ethankhall/refparity/pkg/models"
)

// Compare walks two normalized artifacts and returns one DiffEntry per
// diverging value. Both inputs must already be canonically sorted; because
// of that, the result reflects genuine content divergence, never production
// order. Identical artifacts produce an empty slice.
//
// Pure function of its inputs.
func Compare(baseline, experimental models.NormalizedArtifact) []models.DiffEntry {
	var entries []models.DiffEntry

	n := len(baseline.References)
	if len(experimental.References) > n {
		n = len(experimental.References)
	}

	for i := 0; i < n; i++ {
		prefix := "references[" + strconv.Itoa(i) + "]"

		switch {
		case i >= len(experimental.References):
			entries = append(entries, models.DiffEntry{
				Kind:     models.DiffRemoved,
				Path:     prefix,
				Baseline: renderReference(baseline.References[i]),
			})
		case i >= len(baseline.References):
			entries = append(entries, models.DiffEntry{
				Kind:         models.DiffAdded,
				Path:         prefix,
				Experimental: renderReference(experimental.References[i]),
			})
		default:
			entries = append(entries, compareReference(prefix, baseline.References[i], experimental.References[i])...)
		}
	}

	return entries
}

// compareReference diffs one aligned pair of references field by field.
func compareReference(prefix string, b, e models.Reference) []models.DiffEntry {
	var entries []models.DiffEntry

	changed := func(path, bv, ev string) {
		entries = append(entries, models.DiffEntry{
			Kind:         models.DiffChanged,
			Path:         prefix + "." + path,
			Baseline:     bv,
			Experimental: ev,
		})
	}

	if b.ConstantName != e.ConstantName {
		changed("constantName", b.ConstantName, e.ConstantName)
	}
	if b.Location.Line != e.Location.Line {
		changed("sourceLocation.line", strconv.Itoa(b.Location.Line), strconv.Itoa(e.Location.Line))
	}
	if b.Location.Column != e.Location.Column {
		changed("sourceLocation.column", strconv.Itoa(b.Location.Column), strconv.Itoa(e.Location.Column))
	}

	entries = append(entries, compareExtras(prefix, b, e)...)
	return entries
}

// compareExtras diffs the opaque producer fields. Keys are visited in sorted
// order so entry order is deterministic.
func compareExtras(prefix string, b, e models.Reference) []models.DiffEntry {
	keys := make(map[string]struct{}, len(b.Extra)+len(e.Extra))
	for k := range b.Extra {
		keys[k] = struct{}{}
	}
	for k := range e.Extra {
		keys[k] = struct{}{}
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var entries []models.DiffEntry
	for _, k := range sorted {
		path := prefix + "." + k
		bv, inB := b.Extra[k]
		ev, inE := e.Extra[k]

		switch {
		case !inE:
			entries = append(entries, models.DiffEntry{
				Kind:     models.DiffRemoved,
				Path:     path,
				Baseline: string(bv),
			})
		case !inB:
			entries = append(entries, models.DiffEntry{
				Kind:         models.DiffAdded,
				Path:         path,
				Experimental: string(ev),
			})
		case string(bv) != string(ev):
			entries = append(entries, models.DiffEntry{
				Kind:         models.DiffChanged,
				Path:         path,
				Baseline:     string(bv),
				Experimental: string(ev),
			})
		}
	}
	return entries
}

func renderReference(r models.Reference) string {
	return fmt.Sprintf("%s@%d:%d", r.ConstantName, r.Location.Line, r.Location.Column)
}
