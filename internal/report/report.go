// Package report aggregates comparison results and renders the run summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/ethankhall/refparity/pkg/models"
)

// Summary groups a run's results. Skipped results are excluded from the
// success/failure accounting but their count is kept for the tally.
type Summary struct {
	// Total counts non-skipped results.
	Total int
	// Successes counts files whose artifacts matched.
	Successes int
	// Failures holds every result with a structural divergence, in
	// aggregation order.
	Failures []models.ComparisonResult
	// Errors holds every result that aborted on a per-file fatal error.
	// These need different debugging than diff failures, so they are
	// grouped and rendered separately.
	Errors []models.ComparisonResult
	// Skipped counts results suppressed by fail-fast.
	Skipped int
}

// AllPassed reports whether every compared file reached parity.
func (s Summary) AllPassed() bool {
	return len(s.Failures) == 0 && len(s.Errors) == 0
}

// SuccessPercent returns the success ratio over non-skipped results.
func (s Summary) SuccessPercent() float64 {
	if s.Total == 0 {
		return 100
	}
	return float64(s.Successes) / float64(s.Total) * 100
}

// Summarize groups results by outcome. Input order does not matter.
func Summarize(results []models.ComparisonResult) Summary {
	var sum Summary
	for _, res := range results {
		if res.Skipped {
			sum.Skipped++
			continue
		}
		sum.Total++
		switch {
		case res.Errored():
			sum.Errors = append(sum.Errors, res)
		case res.Failed():
			sum.Failures = append(sum.Failures, res)
		default:
			sum.Successes++
		}
	}
	return sum
}

// Reporter renders run summaries for humans.
type Reporter struct {
	out io.Writer
}

// New creates a Reporter writing to out.
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Render prints the summary: the success ratio, full detail for the first
// diff failure, and every per-file error. Failure detail favors completeness
// over brevity; it is the primary debugging surface.
func (r *Reporter) Render(sum Summary) {
	fmt.Fprintf(r.out, "%s %d/%d files matched (%.1f%%)\n",
		statusSymbol(sum), sum.Successes, sum.Total, sum.SuccessPercent())
	if sum.Skipped > 0 {
		fmt.Fprintf(r.out, "%s %d files skipped (fail-fast)\n",
			color.YellowString("⚠"), sum.Skipped)
	}

	if len(sum.Failures) > 0 {
		fmt.Fprintf(r.out, "\n%s %d files diverged; first divergence:\n\n",
			color.RedString("✗"), len(sum.Failures))
		r.renderFailure(sum.Failures[0])
	}

	if len(sum.Errors) > 0 {
		fmt.Fprintf(r.out, "\n%s %d files hit fatal artifact errors (not diffs):\n",
			color.RedString("✗"), len(sum.Errors))
		for _, res := range sum.Errors {
			fmt.Fprintf(r.out, "  %s: %v\n", res.InputPath, res.Err)
		}
	}
}

// renderFailure prints everything an engineer needs to debug one divergence.
func (r *Reporter) renderFailure(res models.ComparisonResult) {
	fmt.Fprintf(r.out, "  file:         %s\n", res.InputPath)
	fmt.Fprintf(r.out, "  id:           %s\n", res.FileID)
	fmt.Fprintf(r.out, "  baseline:     %d references (%s)\n",
		len(res.Baseline.References), res.Baseline.SourcePath)
	fmt.Fprintf(r.out, "  experimental: %d references (%s)\n",
		len(res.Experimental.References), res.Experimental.SourcePath)
	fmt.Fprintf(r.out, "  differences:  %d\n\n", len(res.Diffs))

	for _, entry := range res.Diffs {
		fmt.Fprintf(r.out, "  %s\n", colorEntry(entry))
	}

	fmt.Fprintf(r.out, "\n  baseline references:\n%s\n", indentJSON(res.Baseline.References))
	fmt.Fprintf(r.out, "  experimental references:\n%s\n", indentJSON(res.Experimental.References))
}

func statusSymbol(sum Summary) string {
	if sum.AllPassed() {
		return color.GreenString("✓")
	}
	return color.RedString("✗")
}

func colorEntry(entry models.DiffEntry) string {
	switch entry.Kind {
	case models.DiffAdded:
		return color.GreenString(entry.String())
	case models.DiffRemoved:
		return color.RedString(entry.String())
	default:
		return color.YellowString(entry.String())
	}
}

// indentJSON pretty-prints v with a fixed leading indent.
func indentJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "    ", "  ")
	if err != nil {
		return fmt.Sprintf("    (unrenderable: %v)", err)
	}
	return "    " + string(data)
}
