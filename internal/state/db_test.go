package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethankhall/refparity/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Errorf("second migrate failed: %v", err)
	}
}

func TestRunLifecycle(t *testing.T) {
	db := openTestDB(t)

	run := &Run{
		ID:        "run-0001",
		StartedAt: time.Now().UTC(),
		State:     models.RunStateRunning,
	}
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("create run: %v", err)
	}

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.State = models.RunStateCompleted
	run.Total = 3
	run.Successes = 2
	run.Failures = 1
	if err := db.FinishRun(run); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	got := runs[0]
	if got.State != models.RunStateCompleted {
		t.Errorf("state = %s, want completed", got.State)
	}
	if got.Successes != 2 || got.Failures != 1 || got.Total != 3 {
		t.Errorf("counters not persisted: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Error("finished_at not persisted")
	}
}

func TestRecordOutcomes(t *testing.T) {
	db := openTestDB(t)

	run := &Run{ID: "run-0002", StartedAt: time.Now().UTC(), State: models.RunStateRunning}
	if err := db.CreateRun(run); err != nil {
		t.Fatalf("create run: %v", err)
	}

	results := []models.ComparisonResult{
		{FileID: "aaa", InputPath: "lib/a.rb"},
		{FileID: "bbb", InputPath: "lib/b.rb", Diffs: []models.DiffEntry{{Kind: models.DiffChanged}}},
		{FileID: "ccc", InputPath: "lib/c.rb", Err: errors.New("malformed artifact")},
		{InputPath: "lib/d.rb", Skipped: true},
	}
	if err := db.RecordOutcomes(run.ID, results); err != nil {
		t.Fatalf("record outcomes: %v", err)
	}

	// Re-inserting the same run's outcomes violates the primary key.
	if err := db.RecordOutcomes(run.ID, results[:1]); err == nil {
		t.Error("expected duplicate outcome insert to fail")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		run := &Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute), State: models.RunStateCompleted}
		if err := db.CreateRun(run); err != nil {
			t.Fatalf("create run %s: %v", id, err)
		}
	}

	runs, err := db.ListRuns(2)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "new" || runs[1].ID != "mid" {
		t.Errorf("unexpected order: %s, %s", runs[0].ID, runs[1].ID)
	}
}
