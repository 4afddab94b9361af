// Package state provides SQLite-based run history for refparity.
package state

import (
	"io"

	"github.com/ethankhall/refparity/pkg/models"
)

// RunStore handles run-level persistence operations.
type RunStore interface {
	CreateRun(r *Run) error
	FinishRun(r *Run) error
	RecordOutcomes(runID string, results []models.ComparisonResult) error
	ListRuns(limit int) ([]Run, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// HistoryStore defines the interface for run-history persistence. It lets
// the run command work with any backend without depending on the concrete
// SQLite implementation.
type HistoryStore interface {
	io.Closer
	Migrator
	RunStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ HistoryStore = (*DB)(nil)
	_ Migrator     = (*DB)(nil)
	_ RunStore     = (*DB)(nil)
)
