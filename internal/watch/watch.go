// Package watch re-runs comparisons when artifacts change on disk. It is a
// development convenience: leave `refparity watch` running while iterating
// on the experimental resolver and see each file's parity as its artifact
// is rewritten.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/ethankhall/refparity/internal/pathmap"
	"github.com/ethankhall/refparity/pkg/models"
)

// Comparer produces one ComparisonResult for one input file.
type Comparer interface {
	Compare(inputPath string) models.ComparisonResult
}

// Watcher maps artifact writes under the cache root back to their input
// files and re-compares each affected pair.
type Watcher struct {
	mapper   *pathmap.Mapper
	comparer Comparer
	// byID maps a file identifier to the input path it was derived from.
	byID     map[string]string
	onResult func(models.ComparisonResult)
}

// New creates a Watcher covering the given input files. onResult is invoked
// from the watch loop for every re-comparison.
func New(mapper *pathmap.Mapper, comparer Comparer, files []string, onResult func(models.ComparisonResult)) *Watcher {
	byID := make(map[string]string, len(files))
	for _, f := range files {
		byID[mapper.FileID(f)] = f
	}
	return &Watcher{
		mapper:   mapper,
		comparer: comparer,
		byID:     byID,
		onResult: onResult,
	}
}

// InputFor resolves an artifact file name to its input path. The second
// return is false for artifacts of files outside the watched set.
func (w *Watcher) InputFor(artifactName string) (string, bool) {
	id := strings.TrimSuffix(artifactName, pathmap.ExperimentalSuffix)
	input, ok := w.byID[id]
	return input, ok
}

// Run blocks, re-comparing pairs as their artifacts are written, until ctx
// is canceled or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.mapper.CacheRoot()); err != nil {
		return fmt.Errorf("watch %s: %w", w.mapper.CacheRoot(), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if input, ok := w.InputFor(filepath.Base(event.Name)); ok {
				w.onResult(w.comparer.Compare(input))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("fs watcher: %w", err)
		}
	}
}
