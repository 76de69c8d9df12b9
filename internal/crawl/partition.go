package crawl

import (
	"io/fs"
	"path/filepath"
	"strings"

	"tree-crawler/internal/logging"
)

// DefaultUnitSize is the number of directories per work unit. The batched
// insert binds parameters per extracted file, not per directory, so trees
// with file-dense directories can overflow the SQLite statement parameter
// cap and abort their units; configure UNIT_SIZE lower for such trees.
const DefaultUnitSize = 16

// Partition walks the configured roots and groups directory paths into work
// units of at most unitSize directories each. Hidden directories are skipped.
// Unreadable paths are logged and skipped; the walk continues.
//
// The engine does not depend on this partitioner: any coordinator can feed
// the work channel with its own units.
func Partition(roots []string, unitSize int) []WorkUnit {
	if unitSize <= 0 {
		unitSize = DefaultUnitSize
	}

	var units []WorkUnit
	var current []string

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logging.Warn("Error accessing path %s: %v", path, err)
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}

			current = append(current, path)
			if len(current) >= unitSize {
				units = append(units, NewWorkUnit(current))
				current = nil
			}
			return nil
		})
		if err != nil {
			logging.Warn("Walk of root %s failed: %v", root, err)
		}
	}

	if len(current) > 0 {
		units = append(units, NewWorkUnit(current))
	}

	logging.Info("Partitioned %d roots into %d work units", len(roots), len(units))
	return units
}
