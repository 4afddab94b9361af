// Package compare produces a ComparisonResult for a single input file by
// combining path mapping, artifact loading, and structural diffing.
package compare

import (
	"fmt"

	"github.com/ethankhall/refparity/internal/artifact"
	"github.com/ethankhall/refparity/internal/diff"
	"github.com/ethankhall/refparity/internal/pathmap"
	"github.com/ethankhall/refparity/pkg/models"
)

// Comparator compares the baseline and experimental artifacts of input files.
type Comparator struct {
	mapper *pathmap.Mapper
}

// New creates a Comparator resolving artifacts through mapper.
func New(mapper *pathmap.Mapper) *Comparator {
	return &Comparator{mapper: mapper}
}

// Compare builds exactly one ComparisonResult for inputPath. Loader failures
// are recorded on the result's Err field so a corrupt artifact fails that
// file, never the whole run.
func (c *Comparator) Compare(inputPath string) models.ComparisonResult {
	res := models.ComparisonResult{
		FileID:    c.mapper.FileID(inputPath),
		InputPath: inputPath,
	}

	baseline, err := artifact.Load(c.mapper.BaselinePath(inputPath))
	if err != nil {
		res.Err = fmt.Errorf("load baseline for %s: %w", inputPath, err)
		return res
	}

	experimental, err := artifact.Load(c.mapper.ExperimentalPath(inputPath))
	if err != nil {
		res.Err = fmt.Errorf("load experimental for %s: %w", inputPath, err)
		return res
	}

	res.Baseline = baseline
	res.Experimental = experimental
	res.Diffs = diff.Compare(baseline, experimental)
	return res
}
