// Package pathmap derives stable artifact locations for input files.
//
// Every input file maps to a content-independent identifier (a digest of its
// path string), which in turn names the baseline and experimental artifact
// files under the cache root.
package pathmap

import (
	"encoding/hex"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// ExperimentalSuffix distinguishes the experimental artifact from the
// baseline one under the cache root.
const ExperimentalSuffix = "-experimental"

// Mapper maps input file paths to artifact locations under a cache root.
// All methods are pure functions: no I/O, no error conditions.
type Mapper struct {
	cacheRoot string
}

// New creates a Mapper rooted at cacheRoot.
func New(cacheRoot string) *Mapper {
	return &Mapper{cacheRoot: cacheRoot}
}

// CacheRoot returns the directory artifact paths are derived under.
func (m *Mapper) CacheRoot() string {
	return m.cacheRoot
}

// FileID returns the fixed-length identifier for an input file path.
// Identical paths always yield identical identifiers, across calls and
// across process runs.
func (m *Mapper) FileID(inputPath string) string {
	sum := blake3.Sum256([]byte(inputPath))
	return hex.EncodeToString(sum[:])
}

// BaselinePath returns the baseline artifact location for an input file.
func (m *Mapper) BaselinePath(inputPath string) string {
	return filepath.Join(m.cacheRoot, m.FileID(inputPath))
}

// ExperimentalPath returns the experimental artifact location for an
// input file.
func (m *Mapper) ExperimentalPath(inputPath string) string {
	return filepath.Join(m.cacheRoot, m.FileID(inputPath)+ExperimentalSuffix)
}
