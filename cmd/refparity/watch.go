package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ethankhall/refparity/internal/compare"
	"github.com/ethankhall/refparity/internal/config"
	"github.com/ethankhall/refparity/internal/discover"
	"github.com/ethankhall/refparity/internal/pathmap"
	"github.com/ethankhall/refparity/internal/watch"
	"github.com/ethankhall/refparity/pkg/models"
)

var (
	watchSourceRoot string
	watchCacheRoot  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-compare artifact pairs as they change on disk",
	Long: `Watch the artifact cache and re-compare each pair as its files are
rewritten. Useful while iterating on the experimental resolver: regenerate a
file's artifact and its parity verdict prints immediately.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchSourceRoot, "source", "", "Source tree to enumerate (default from config)")
	watchCmd.Flags().StringVar(&watchCacheRoot, "cache", "", "Artifact cache root (default from config)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if watchSourceRoot != "" {
		cfg.Source.Root = watchSourceRoot
	}
	if watchCacheRoot != "" {
		cfg.Cache.Root = watchCacheRoot
	}

	files, err := discover.Files(cfg.Source.Root, cfg.Source.Extensions)
	if err != nil {
		return err
	}

	mapper := pathmap.New(cfg.Cache.Root)
	watcher := watch.New(mapper, compare.New(mapper), files, printVerdict)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("watching %s for artifact changes (%d files paired)\n", cfg.Cache.Root, len(files))
	return watcher.Run(ctx)
}

func printVerdict(res models.ComparisonResult) {
	switch {
	case res.Errored():
		fmt.Printf("%s %s: %v\n", color.RedString("✗"), res.InputPath, res.Err)
	case res.Failed():
		fmt.Printf("%s %s: %d differences\n", color.RedString("✗"), res.InputPath, len(res.Diffs))
		for _, entry := range res.Diffs {
			fmt.Printf("    %s\n", entry)
		}
	default:
		fmt.Printf("%s %s\n", color.GreenString("✓"), res.InputPath)
	}
}
