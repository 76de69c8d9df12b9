package crawl

import "github.com/google/uuid"

// WorkUnit is an ordered batch of directory paths assigned to one worker
// invocation. A unit is immutable once dispatched and consumed exactly once;
// the ID correlates its log lines across the pool.
type WorkUnit struct {
	ID    string
	Paths []string
}

// NewWorkUnit wraps a batch of paths in a tagged work unit.
func NewWorkUnit(paths []string) WorkUnit {
	return WorkUnit{
		ID:    uuid.NewString(),
		Paths: paths,
	}
}
