package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func refKey(name string, line, col int) string {
	return fmt.Sprintf("%s@%d:%d", name, line, col)
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")

	// Repeated calls must be idempotent: empty references, nil error.
	for i := 0; i < 2; i++ {
		art, err := Load(path)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if len(art.References) != 0 {
			t.Errorf("call %d: expected 0 references, got %d", i, len(art.References))
		}
		if art.SourcePath != path {
			t.Errorf("call %d: SourcePath = %s, want %s", i, art.SourcePath, path)
		}
	}
}

func TestLoadSortsReferences(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "a", `{
		"references": [
			{"constantName": "Zeta", "sourceLocation": {"line": 1, "column": 1}},
			{"constantName": "Alpha", "sourceLocation": {"line": 9, "column": 3}},
			{"constantName": "Alpha", "sourceLocation": {"line": 2, "column": 7}},
			{"constantName": "Alpha", "sourceLocation": {"line": 2, "column": 4}}
		]
	}`)

	art, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := []string{"Alpha@2:4", "Alpha@2:7", "Alpha@9:3", "Zeta@1:1"}
	if len(art.References) != len(order) {
		t.Fatalf("expected %d references, got %d", len(order), len(art.References))
	}
	for i, ref := range art.References {
		got := refKey(ref.ConstantName, ref.Location.Line, ref.Location.Column)
		if got != order[i] {
			t.Errorf("position %d: got %s, want %s", i, got, order[i])
		}
	}
}

func TestLoadPreservesExtraFields(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "a", `{
		"references": [
			{"constantName": "Foo", "sourceLocation": {"line": 1, "column": 1},
			 "namespace": ["A", "B"], "confidence": 0.9}
		]
	}`)

	art, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(art.References) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(art.References))
	}

	extra := art.References[0].Extra
	if string(extra["namespace"]) != `["A", "B"]` {
		t.Errorf("namespace not preserved: %s", extra["namespace"])
	}
	if string(extra["confidence"]) != "0.9" {
		t.Errorf("confidence not preserved: %s", extra["confidence"])
	}
	if _, ok := extra["constantName"]; ok {
		t.Error("typed field leaked into Extra")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "a", `{"references": [{`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed artifact")
	}
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("error does not wrap ErrMalformed: %v", err)
	}
}
