// Package discover enumerates the source files a run should compare.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Files walks root and returns every regular file whose extension matches
// exts, in walk order. Extensions may be given with or without the leading
// dot. An enumeration failure is fatal for the whole run, so it surfaces as
// an error rather than a partial list.
func Files(root string, exts []string) ([]string, error) {
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[strings.ToLower(e)] = struct{}{}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip VCS metadata; everything else is walked.
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate source files under %s: %w", root, err)
	}
	return files, nil
}
