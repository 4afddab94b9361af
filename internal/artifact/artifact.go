// Package artifact loads resolver output files into their canonical
// comparable form.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethankhall/refparity/pkg/models"
)

// ErrMalformed indicates an artifact file existed but could not be parsed.
// A corrupt artifact points at a producer bug, so it is fatal for that
// file's comparison rather than being retried or papered over.
var ErrMalformed = errors.New("malformed artifact")

// artifactFile mirrors the on-disk record shape. Unknown fields per
// reference are captured by models.Reference itself.
type artifactFile struct {
	References []models.Reference `json:"references"`
}

// Load reads the artifact at path and returns its normalized form.
//
// A missing file is not an error: the producer emitted nothing for this
// input, which normalizes to an empty reference sequence. A present but
// unparsable file returns an error wrapping ErrMalformed.
func Load(path string) (models.NormalizedArtifact, error) {
	art := models.NormalizedArtifact{SourcePath: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return art, nil
	}
	if err != nil {
		return art, fmt.Errorf("read artifact %s: %w", path, err)
	}

	var f artifactFile
	if err := json.Unmarshal(data, &f); err != nil {
		return art, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}

	art.References = f.References
	art.Normalize()
	return art, nil
}
