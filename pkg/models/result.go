package models

// RunState represents the lifecycle of one verification run.
type RunState string

const (
	// RunStatePending indicates the run has not started dispatching.
	RunStatePending RunState = "pending"
	// RunStateRunning indicates workers are processing files.
	RunStateRunning RunState = "running"
	// RunStateCompleted indicates all non-skipped files were processed.
	RunStateCompleted RunState = "completed"
	// RunStateAborted indicates a run-level error stopped the scheduler.
	RunStateAborted RunState = "aborted"
)

// Valid returns true if the state is a known value.
func (s RunState) Valid() bool {
	switch s {
	case RunStatePending, RunStateRunning, RunStateCompleted, RunStateAborted:
		return true
	default:
		return false
	}
}

// ComparisonResult is the outcome for one input file. It is created once by
// a worker, never mutated afterward, and consumed exactly once by the
// reporter.
type ComparisonResult struct {
	// FileID is the digest-derived identifier for the input file.
	FileID string
	// InputPath is the original source file the artifacts were produced for.
	InputPath string
	// Baseline is the normalized baseline artifact.
	Baseline NormalizedArtifact
	// Experimental is the normalized experimental artifact.
	Experimental NormalizedArtifact
	// Diffs lists every structural divergence, empty on parity.
	Diffs []DiffEntry
	// Err is set when loading either artifact failed fatally. An errored
	// result carries no diffs.
	Err error
	// Skipped is set when fail-fast suppressed this file's comparison.
	Skipped bool
}

// Success reports whether the two artifacts were structurally identical.
// Skipped and errored results are never successes.
func (r ComparisonResult) Success() bool {
	return r.Err == nil && !r.Skipped && len(r.Diffs) == 0
}

// Failed reports whether the comparison ran and found a divergence.
func (r ComparisonResult) Failed() bool {
	return r.Err == nil && !r.Skipped && len(r.Diffs) > 0
}

// Errored reports whether the comparison aborted on a per-file fatal error.
func (r ComparisonResult) Errored() bool {
	return r.Err != nil
}
