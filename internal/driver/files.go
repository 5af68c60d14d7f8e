package driver

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExt is the extension ListFiles looks for when none is given.
const DefaultExt = ".pt"

// ListFiles returns all files below dir with extension ext, sorted.
func ListFiles(dir, ext string) ([]string, error) {
	if ext == "" {
		ext = DefaultExt
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sorted for a deterministic order
	sort.Strings(files)
	return files, nil
}
