package diff

import (
	"encoding/json"
	"testing"

	"github.com/ethankhall/refparity/pkg/models"
)

func ref(name string, line, col int) models.Reference {
	return models.Reference{
		ConstantName: name,
		Location:     models.Location{Line: line, Column: col},
	}
}

func artifact(refs ...models.Reference) models.NormalizedArtifact {
	a := models.NormalizedArtifact{References: refs}
	a.Normalize()
	return a
}

func TestCompareIdentical(t *testing.T) {
	b := artifact(ref("Foo", 1, 1))
	e := artifact(ref("Foo", 1, 1))

	if entries := Compare(b, e); len(entries) != 0 {
		t.Errorf("expected empty diff, got %v", entries)
	}
}

func TestCompareOrderIndependent(t *testing.T) {
	// Same two references in swapped input order normalize identically.
	b := artifact(ref("Alpha", 3, 1), ref("Beta", 1, 1))
	e := artifact(ref("Beta", 1, 1), ref("Alpha", 3, 1))

	if entries := Compare(b, e); len(entries) != 0 {
		t.Errorf("expected empty diff after normalization, got %v", entries)
	}
}

func TestCompareMissingExperimental(t *testing.T) {
	b := artifact(ref("Foo", 1, 1))
	e := artifact()

	entries := Compare(b, e)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Kind != models.DiffRemoved {
		t.Errorf("expected removed entry, got %s", entries[0].Kind)
	}
	if entries[0].Path != "references[0]" {
		t.Errorf("unexpected path %s", entries[0].Path)
	}
}

func TestCompareExtraExperimental(t *testing.T) {
	b := artifact(ref("Foo", 1, 1))
	e := artifact(ref("Foo", 1, 1), ref("Bar", 2, 2))

	entries := Compare(b, e)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Kind != models.DiffAdded {
		t.Errorf("expected added entry, got %s", entries[0].Kind)
	}
}

func TestCompareChangedColumn(t *testing.T) {
	b := artifact(ref("Foo", 1, 1))
	e := artifact(ref("Foo", 1, 2))

	entries := Compare(b, e)
	if len(entries) != 1 {
		t.Fatalf("expected exactly 1 entry, got %d: %v", len(entries), entries)
	}
	got := entries[0]
	if got.Kind != models.DiffChanged {
		t.Errorf("expected changed entry, got %s", got.Kind)
	}
	if got.Path != "references[0].sourceLocation.column" {
		t.Errorf("unexpected path %s", got.Path)
	}
	if got.Baseline != "1" || got.Experimental != "2" {
		t.Errorf("unexpected values %s -> %s", got.Baseline, got.Experimental)
	}
}

func TestCompareExtraFields(t *testing.T) {
	withExtra := func(r models.Reference, key, raw string) models.Reference {
		r.Extra = map[string]json.RawMessage{key: json.RawMessage(raw)}
		return r
	}

	tests := []struct {
		name     string
		baseline models.Reference
		experim  models.Reference
		wantKind models.DiffKind
		wantPath string
	}{
		{
			name:     "value changed",
			baseline: withExtra(ref("Foo", 1, 1), "namespace", `"A"`),
			experim:  withExtra(ref("Foo", 1, 1), "namespace", `"B"`),
			wantKind: models.DiffChanged,
			wantPath: "references[0].namespace",
		},
		{
			name:     "only in baseline",
			baseline: withExtra(ref("Foo", 1, 1), "confidence", `0.9`),
			experim:  ref("Foo", 1, 1),
			wantKind: models.DiffRemoved,
			wantPath: "references[0].confidence",
		},
		{
			name:     "only in experimental",
			baseline: ref("Foo", 1, 1),
			experim:  withExtra(ref("Foo", 1, 1), "confidence", `0.9`),
			wantKind: models.DiffAdded,
			wantPath: "references[0].confidence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := Compare(artifact(tt.baseline), artifact(tt.experim))
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d: %v", len(entries), entries)
			}
			if entries[0].Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", entries[0].Kind, tt.wantKind)
			}
			if entries[0].Path != tt.wantPath {
				t.Errorf("path = %s, want %s", entries[0].Path, tt.wantPath)
			}
		})
	}
}

func TestCompareBothEmpty(t *testing.T) {
	if entries := Compare(artifact(), artifact()); len(entries) != 0 {
		t.Errorf("expected empty diff for empty artifacts, got %v", entries)
	}
}
