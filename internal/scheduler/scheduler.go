// Package scheduler runs comparisons over the input file set with a bounded
// worker pool and aggregates their results.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ethankhall/refparity/pkg/models"
)

// Comparer produces one ComparisonResult for one input file.
type Comparer interface {
	Compare(inputPath string) models.ComparisonResult
}

// Progress is a snapshot emitted as results arrive. Observability only; it
// carries no correctness guarantees.
type Progress struct {
	// Processed counts results aggregated so far, skips included.
	Processed int
	// Total is the number of input files.
	Total int
	// Remaining estimates time to completion from throughput so far.
	Remaining time.Duration
}

// Options configures a verification run.
type Options struct {
	// Workers is the worker-pool size; values below 1 fall back to 8.
	Workers int
	// FailFast suppresses new dispatch once any failure is observed.
	// Best-effort: in-flight comparisons still complete, and a worker that
	// has already read a stale flag may start one more item.
	FailFast bool
	// Shuffle randomizes file order before dispatch.
	Shuffle bool
	// Seed seeds the shuffle; zero derives from the clock.
	Seed int64
	// OnProgress, if set, is called after each result is aggregated. It is
	// invoked from the aggregating goroutine only.
	OnProgress func(Progress)
}

// Counts is a snapshot of the run's shared counters.
type Counts struct {
	Dispatched int64
	Completed  int64
	Successes  int64
	Failures   int64
	Errors     int64
	Skipped    int64
}

// Scheduler dispatches input files to a Comparer under a fixed worker pool.
type Scheduler struct {
	comparer Comparer
	opts     Options

	// runID tags log lines and the run-history record.
	runID string

	mu    sync.RWMutex
	state models.RunState

	dispatched atomic.Int64
	completed  atomic.Int64
	successes  atomic.Int64
	failures   atomic.Int64
	errs       atomic.Int64
	skipped    atomic.Int64

	// failureSeen gates new dispatch in fail-fast mode. Workers read it
	// without further synchronization; a stale read is acceptable.
	failureSeen atomic.Bool
}

// New creates a Scheduler in the Pending state.
func New(comparer Comparer, opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = 8
	}
	return &Scheduler{
		comparer: comparer,
		opts:     opts,
		runID:    uuid.New().String()[:8],
		state:    models.RunStatePending,
	}
}

// RunID returns the identifier tagging this run.
func (s *Scheduler) RunID() string {
	return s.runID
}

// State returns the run's current lifecycle state.
func (s *Scheduler) State() models.RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Scheduler) setState(state models.RunState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Counts returns a snapshot of the shared counters. Consistent only once the
// run has finished.
func (s *Scheduler) Counts() Counts {
	return Counts{
		Dispatched: s.dispatched.Load(),
		Completed:  s.completed.Load(),
		Successes:  s.successes.Load(),
		Failures:   s.failures.Load(),
		Errors:     s.errs.Load(),
		Skipped:    s.skipped.Load(),
	}
}

// Run processes every file and returns all results, skips included. Result
// order is arbitrary: workers complete asynchronously and the aggregator
// appends as results arrive. Returns an error only for run-level failures
// (context cancellation), in which case the state is Aborted; individual
// comparison failures never abort the run.
func (s *Scheduler) Run(ctx context.Context, files []string) ([]models.ComparisonResult, error) {
	s.setState(models.RunStateRunning)
	debugLog("[scheduler %s] starting: %d files, %d workers, failFast=%v shuffle=%v",
		s.runID, len(files), s.opts.Workers, s.opts.FailFast, s.opts.Shuffle)

	ordered := files
	if s.opts.Shuffle {
		ordered = s.shuffled(files)
	}

	work := make(chan string)
	resultCh := make(chan models.ComparisonResult)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(work, resultCh)
		}()
	}

	// Feeder closes work when the list is drained or the run is canceled.
	go func() {
		defer close(work)
		for _, path := range ordered {
			select {
			case work <- path:
				s.dispatched.Add(1)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close the result channel once every worker has finished.
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Single aggregator: the only goroutine that touches the result slice
	// or invokes the progress callback.
	started := time.Now()
	results := make([]models.ComparisonResult, 0, len(ordered))
	for res := range resultCh {
		s.record(res)
		results = append(results, res)
		s.emitProgress(started, len(results), len(ordered))
	}

	if err := ctx.Err(); err != nil {
		s.setState(models.RunStateAborted)
		return results, fmt.Errorf("run %s aborted: %w", s.runID, err)
	}

	s.setState(models.RunStateCompleted)
	debugLog("[scheduler %s] completed: %+v", s.runID, s.Counts())
	return results, nil
}

// worker drains the work channel. In fail-fast mode it checks the shared
// failure flag before starting each item and records a skip instead of
// comparing; items already being compared are not interrupted.
func (s *Scheduler) worker(work <-chan string, resultCh chan<- models.ComparisonResult) {
	for path := range work {
		if s.opts.FailFast && s.failureSeen.Load() {
			debugLog("[scheduler %s] skipping %s: failure already seen", s.runID, path)
			resultCh <- models.ComparisonResult{InputPath: path, Skipped: true}
			continue
		}
		res := s.comparer.Compare(path)
		if res.Errored() || res.Failed() {
			s.failureSeen.Store(true)
		}
		resultCh <- res
	}
}

// record updates the shared counters for one result.
func (s *Scheduler) record(res models.ComparisonResult) {
	s.completed.Add(1)
	switch {
	case res.Skipped:
		s.skipped.Add(1)
	case res.Errored():
		s.errs.Add(1)
	case res.Failed():
		s.failures.Add(1)
	default:
		s.successes.Add(1)
	}
}

func (s *Scheduler) emitProgress(started time.Time, processed, total int) {
	if s.opts.OnProgress == nil {
		return
	}

	var remaining time.Duration
	if processed > 0 && processed < total {
		perItem := time.Since(started) / time.Duration(processed)
		remaining = perItem * time.Duration(total-processed)
	}

	s.opts.OnProgress(Progress{
		Processed: processed,
		Total:     total,
		Remaining: remaining,
	})
}

// shuffled returns a seeded permutation of files, leaving the input intact.
func (s *Scheduler) shuffled(files []string) []string {
	seed := s.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	debugLog("[scheduler %s] shuffling %d files with seed %d", s.runID, len(files), seed)

	out := make([]string, len(files))
	copy(out, files)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
