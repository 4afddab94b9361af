package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ethankhall/refparity/internal/compare"
	"github.com/ethankhall/refparity/internal/config"
	"github.com/ethankhall/refparity/internal/discover"
	"github.com/ethankhall/refparity/internal/pathmap"
	"github.com/ethankhall/refparity/internal/producer"
	"github.com/ethankhall/refparity/internal/report"
	"github.com/ethankhall/refparity/internal/scheduler"
	"github.com/ethankhall/refparity/internal/state"
	"github.com/ethankhall/refparity/pkg/models"
)

var (
	runSourceRoot string
	runCacheRoot  string
	runFailFast   bool
	runShuffle    bool
	runSeed       int64
	runWorkers    int
	runNoHistory  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compare baseline and experimental artifacts for every source file",
	Long: `Run a full parity verification.

Enumerates source files under the source root, locates each file's baseline
and experimental artifacts in the cache, and compares them under a bounded
worker pool. Prints a success ratio, full detail for the first divergence,
and records the run in the local history database.

Environment overrides:
  FAIL_FAST            stop dispatching new files after the first failure
  SHUFFLE              randomize file order before dispatch
  REFPARITY_CACHE_DIR  override the artifact cache root
  REFPARITY_WORKERS    override the worker-pool size`,
	RunE: runVerification,
}

func init() {
	runCmd.Flags().StringVar(&runSourceRoot, "source", "", "Source tree to enumerate (default from config)")
	runCmd.Flags().StringVar(&runCacheRoot, "cache", "", "Artifact cache root (default from config)")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "Skip remaining files after the first failure (best-effort)")
	runCmd.Flags().BoolVar(&runShuffle, "shuffle", false, "Randomize file order before dispatch")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Shuffle seed (0 derives from the clock)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Worker-pool size (default 8)")
	runCmd.Flags().BoolVar(&runNoHistory, "no-history", false, "Do not record this run in the history database")
}

func runVerification(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyRunFlags(cmd, cfg)

	logger, err := scheduler.NewDebugLogger(cfg.Debug.LogPath)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer logger.Close()
	scheduler.SetDebugLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := producer.FromConfig(cfg.Producer.Command).Ensure(ctx, cfg.Source.Root); err != nil {
		return err
	}

	files, err := discover.Files(cfg.Source.Root, cfg.Source.Extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("no source files found under %s\n", cfg.Source.Root)
		return nil
	}

	mapper := pathmap.New(cfg.Cache.Root)
	sched := scheduler.New(compare.New(mapper), scheduler.Options{
		Workers:    cfg.Run.Workers,
		FailFast:   cfg.Run.FailFast,
		Shuffle:    cfg.Run.Shuffle,
		Seed:       cfg.Run.Seed,
		OnProgress: printProgress,
	})

	var history state.HistoryStore
	if !runNoHistory {
		history = openHistory(sched.RunID())
	}

	results, runErr := sched.Run(ctx, files)
	fmt.Fprintln(os.Stderr)

	sum := report.Summarize(results)
	report.New(os.Stdout).Render(sum)

	if history != nil {
		recordRun(history, sched, sum, results)
		history.Close()
	}

	// Individual comparison failures do not fail the process; only a
	// run-level abort does.
	return runErr
}

// applyRunFlags lets explicit flags override loaded configuration.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if runSourceRoot != "" {
		cfg.Source.Root = runSourceRoot
	}
	if runCacheRoot != "" {
		cfg.Cache.Root = runCacheRoot
	}
	if cmd.Flags().Changed("fail-fast") {
		cfg.Run.FailFast = runFailFast
	}
	if cmd.Flags().Changed("shuffle") {
		cfg.Run.Shuffle = runShuffle
	}
	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = runSeed
	}
	if runWorkers > 0 {
		cfg.Run.Workers = runWorkers
	}
}

func printProgress(p scheduler.Progress) {
	if p.Remaining > 0 {
		fmt.Fprintf(os.Stderr, "\rcompared %d/%d (about %s left)   ",
			p.Processed, p.Total, p.Remaining.Round(time.Second))
		return
	}
	fmt.Fprintf(os.Stderr, "\rcompared %d/%d   ", p.Processed, p.Total)
}

// openHistory opens the history store and registers the run. History is an
// aid, not a requirement: failures only warn.
func openHistory(runID string) state.HistoryStore {
	db, err := state.Open(state.DefaultDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		return nil
	}
	if err := db.Migrate(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		db.Close()
		return nil
	}
	if err := db.CreateRun(&state.Run{
		ID:        runID,
		StartedAt: time.Now().UTC(),
		State:     models.RunStateRunning,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		db.Close()
		return nil
	}
	return db
}

func recordRun(history state.HistoryStore, sched *scheduler.Scheduler, sum report.Summary, results []models.ComparisonResult) {
	finished := time.Now().UTC()
	run := &state.Run{
		ID:         sched.RunID(),
		FinishedAt: &finished,
		State:      sched.State(),
		Total:      sum.Total,
		Successes:  sum.Successes,
		Failures:   len(sum.Failures),
		Errors:     len(sum.Errors),
		Skipped:    sum.Skipped,
	}
	if err := history.FinishRun(run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record run: %v\n", err)
		return
	}
	if err := history.RecordOutcomes(sched.RunID(), results); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record outcomes: %v\n", err)
	}
}
