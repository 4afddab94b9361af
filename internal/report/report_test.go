package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethankhall/refparity/pkg/models"
)

func success(path string) models.ComparisonResult {
	return models.ComparisonResult{FileID: "id-" + path, InputPath: path}
}

func failure(path string) models.ComparisonResult {
	return models.ComparisonResult{
		FileID:    "id-" + path,
		InputPath: path,
		Baseline: models.NormalizedArtifact{
			SourcePath: "/cache/id-" + path,
			References: []models.Reference{{ConstantName: "Foo"}},
		},
		Experimental: models.NormalizedArtifact{SourcePath: "/cache/id-" + path + "-experimental"},
		Diffs: []models.DiffEntry{
			{Kind: models.DiffRemoved, Path: "references[0]", Baseline: "Foo@1:1"},
		},
	}
}

func TestSummarize(t *testing.T) {
	results := []models.ComparisonResult{
		success("a.rb"),
		failure("b.rb"),
		{InputPath: "c.rb", Err: errors.New("malformed artifact")},
		{InputPath: "d.rb", Skipped: true},
		success("e.rb"),
	}

	sum := Summarize(results)
	if sum.Total != 4 {
		t.Errorf("Total = %d, want 4 (skips excluded)", sum.Total)
	}
	if sum.Successes != 2 {
		t.Errorf("Successes = %d, want 2", sum.Successes)
	}
	if len(sum.Failures) != 1 {
		t.Errorf("Failures = %d, want 1", len(sum.Failures))
	}
	if len(sum.Errors) != 1 {
		t.Errorf("Errors = %d, want 1", len(sum.Errors))
	}
	if sum.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", sum.Skipped)
	}
	if sum.AllPassed() {
		t.Error("AllPassed should be false with a failure present")
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	a := []models.ComparisonResult{success("a.rb"), failure("b.rb"), success("c.rb")}
	b := []models.ComparisonResult{failure("b.rb"), success("c.rb"), success("a.rb")}

	sa, sb := Summarize(a), Summarize(b)
	if sa.Successes != sb.Successes || len(sa.Failures) != len(sb.Failures) {
		t.Errorf("grouping depends on input order: %+v vs %+v", sa, sb)
	}
}

func TestSuccessPercent(t *testing.T) {
	sum := Summarize([]models.ComparisonResult{success("a.rb"), failure("b.rb")})
	if got := sum.SuccessPercent(); got != 50 {
		t.Errorf("SuccessPercent = %.1f, want 50.0", got)
	}

	if got := Summarize(nil).SuccessPercent(); got != 100 {
		t.Errorf("empty run SuccessPercent = %.1f, want 100.0", got)
	}
}

func TestRenderSuccessSummary(t *testing.T) {
	var buf strings.Builder
	New(&buf).Render(Summarize([]models.ComparisonResult{success("a.rb"), success("b.rb")}))

	out := buf.String()
	if !strings.Contains(out, "2/2 files matched") {
		t.Errorf("missing success ratio in output:\n%s", out)
	}
}

func TestRenderFirstFailureDetail(t *testing.T) {
	var buf strings.Builder
	New(&buf).Render(Summarize([]models.ComparisonResult{success("a.rb"), failure("b.rb")}))

	out := buf.String()
	for _, want := range []string{
		"b.rb",
		"id-b.rb",
		"baseline:     1 references",
		"experimental: 0 references",
		"differences:  1",
		"references[0]",
		"constantName",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderDistinguishesErrors(t *testing.T) {
	var buf strings.Builder
	results := []models.ComparisonResult{
		{InputPath: "c.rb", Err: errors.New("malformed artifact: /cache/x")},
	}
	New(&buf).Render(Summarize(results))

	out := buf.String()
	if !strings.Contains(out, "fatal artifact errors") {
		t.Errorf("errors not reported as their own category:\n%s", out)
	}
	if !strings.Contains(out, "malformed artifact") {
		t.Errorf("error message missing:\n%s", out)
	}
}
