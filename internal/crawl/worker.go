package crawl

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"tree-crawler/internal/database"
	"tree-crawler/internal/extract"
	"tree-crawler/internal/logging"
	"tree-crawler/internal/metrics"
)

// Pool runs a set of crawl workers over shared work and command channels.
type Pool struct {
	db         *database.Database
	extractor  *extract.Extractor
	crawlID    int64
	numWorkers int

	wg        sync.WaitGroup
	startTime time.Time

	unitsProcessed atomic.Int64
	unitsAborted   atomic.Int64
	filesInserted  atomic.Int64
	activeWorkers  atomic.Int64
}

// NewPool creates a worker pool for one crawl generation. The crawl id is
// externally supplied and constant for the lifetime of the crawl. The start
// time is fixed at construction so Status stays safe to call from the ops
// server while Start runs.
func NewPool(db *database.Database, extractor *extract.Extractor, crawlID int64, numWorkers int) *Pool {
	return &Pool{
		db:         db,
		extractor:  extractor,
		crawlID:    crawlID,
		numWorkers: numWorkers,
		startTime:  time.Now(),
	}
}

// Start launches the workers. Each worker leases its own database connection;
// no memory is shared between workers except the two channels.
func (p *Pool) Start(ctx context.Context, work <-chan WorkUnit, commands <-chan Command) {
	metrics.CrawlRunning.Set(1)
	logging.Info("Starting crawl %d with %d workers", p.crawlID, p.numWorkers)

	for i := 0; i < p.numWorkers; i++ {
		w := &Worker{
			id:       i,
			pool:     p,
			work:     work,
			commands: commands,
		}
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Run(ctx)
		}()
	}
}

// Wait blocks until every worker has terminated.
func (p *Pool) Wait() {
	p.wg.Wait()
	metrics.CrawlRunning.Set(0)
	logging.Info("Crawl %d finished: %d units processed, %d aborted, %d records inserted in %v",
		p.crawlID, p.unitsProcessed.Load(), p.unitsAborted.Load(),
		p.filesInserted.Load(), time.Since(p.startTime))
}

// Status is a point-in-time snapshot of pool progress for the ops server.
type Status struct {
	CrawlID        int64     `json:"crawlId"`
	Workers        int       `json:"workers"`
	ActiveWorkers  int64     `json:"activeWorkers"`
	UnitsProcessed int64     `json:"unitsProcessed"`
	UnitsAborted   int64     `json:"unitsAborted"`
	FilesInserted  int64     `json:"filesInserted"`
	StartedAt      time.Time `json:"startedAt"`
}

// Status returns the current pool progress.
func (p *Pool) Status() Status {
	return Status{
		CrawlID:        p.crawlID,
		Workers:        p.numWorkers,
		ActiveWorkers:  p.activeWorkers.Load(),
		UnitsProcessed: p.unitsProcessed.Load(),
		UnitsAborted:   p.unitsAborted.Load(),
		FilesInserted:  p.filesInserted.Load(),
		StartedAt:      p.startTime,
	}
}

// Worker is one unit of parallel execution in the pool.
type Worker struct {
	id       int
	pool     *Pool
	work     <-chan WorkUnit
	commands <-chan Command
	conn     *sql.Conn
}

// Run executes the worker loop. Each iteration polls the command channel
// first, non-blocking; a pending command is dispatched before any work is
// touched. If no command is pending, one work unit is pulled non-blocking and
// processed synchronously; an empty work channel means all work is done and
// the worker terminates normally.
func (w *Worker) Run(ctx context.Context) {
	conn, err := w.pool.db.Lease(ctx)
	if err != nil {
		logging.Error("Worker %d could not lease a database connection: %v", w.id, err)
		// Every termination path leaves the work channel drained.
		if drained := w.drainWork(); drained > 0 {
			logging.Debug("Worker %d discarded %d unprocessed units during cleanup", w.id, drained)
		}
		return
	}
	w.conn = conn

	w.pool.activeWorkers.Add(1)
	metrics.WorkersActive.Inc()
	logging.Info("Worker %d started", w.id)
	defer w.cleanup()

	for {
		select {
		case cmd := <-w.commands:
			if w.runCommand(cmd) {
				return
			}
		default:
		}

		select {
		case unit, ok := <-w.work:
			if !ok {
				return
			}
			w.process(ctx, unit)
		default:
			// Work source exhausted: normal completion.
			return
		}
	}
}

// runCommand dispatches one control command. It returns true when the worker
// must terminate. Pause blocks on the command channel until the next command
// arrives and dispatches it recursively; there is no timeout, so a paused
// worker that never receives another command waits forever.
func (w *Worker) runCommand(cmd Command) bool {
	logging.Debug("Worker %d received command %s", w.id, cmd)
	switch cmd {
	case Unpause:
		return false
	case Pause:
		metrics.WorkersPaused.Inc()
		next := <-w.commands
		metrics.WorkersPaused.Dec()
		return w.runCommand(next)
	case Stop:
		return true
	default:
		// Protocol violation: fatal to this worker.
		logging.Error("Worker %d received unrecognized command %s, terminating", w.id, cmd)
		metrics.ProtocolFaults.Inc()
		return true
	}
}

// process handles one work unit: extract, build, insert, detect deletions.
// Stage failures abort the remainder of the unit; the worker then proceeds to
// its next iteration.
func (w *Worker) process(ctx context.Context, unit WorkUnit) {
	logging.Debug("Worker %d processing unit %s (%d paths)", w.id, unit.ID, len(unit.Paths))

	results, err := w.pool.extractor.Extract(ctx, unit.Paths)
	if err != nil {
		logging.Error("Worker %d unit %s: extractor failed: %v", w.id, unit.ID, err)
		w.abortUnit("extract")
		return
	}

	records, err := BuildRecords(w.pool.crawlID, results)
	if err != nil {
		logging.Error("Worker %d unit %s: %v", w.id, unit.ID, err)
		w.abortUnit("hash")
		return
	}

	if err := w.pool.db.InsertBatch(ctx, w.conn, records); err != nil {
		logging.Error("Worker %d unit %s: %v", w.id, unit.ID, err)
		w.abortUnit("insert")
		return
	}

	w.detectDeletions(ctx, records)

	w.pool.unitsProcessed.Add(1)
	w.pool.filesInserted.Add(int64(len(records)))
	metrics.UnitsProcessed.Inc()
}

func (w *Worker) abortUnit(stage string) {
	w.pool.unitsAborted.Add(1)
	metrics.UnitsAborted.WithLabelValues(stage).Inc()
}

// detectDeletions runs the cross-generation diff for every directory the
// inserted records touched and soft-delete marks the candidates. History
// lookup failures skip the directory; marking failures are absorbed by the
// persistence layer.
func (w *Worker) detectDeletions(ctx context.Context, records []database.FileRecord) {
	hashesByDir := make(map[string]map[string]bool)
	for _, r := range records {
		hashes, ok := hashesByDir[r.DirPath]
		if !ok {
			hashes = make(map[string]bool)
			hashesByDir[r.DirPath] = hashes
		}
		hashes[r.FileHash] = true
	}

	for dir, currentHashes := range hashesByDir {
		history, err := w.pool.db.DirectoryHistory(ctx, w.conn, dir)
		if err != nil {
			logging.Warn("Worker %d: history lookup for %s failed: %v", w.id, dir, err)
			continue
		}
		ids := DeletionCandidates(history, currentHashes)
		w.pool.db.MarkDeleted(ctx, w.conn, ids)
	}
}

// cleanup releases the worker's database connection and drains any units left
// on the work channel so no producer blocks on a full or abandoned channel.
func (w *Worker) cleanup() {
	w.pool.db.Release(w.conn)
	w.conn = nil

	if drained := w.drainWork(); drained > 0 {
		logging.Debug("Worker %d discarded %d unprocessed units during cleanup", w.id, drained)
	}
	w.pool.activeWorkers.Add(-1)
	metrics.WorkersActive.Dec()
	logging.Info("Worker %d terminated", w.id)
}

// drainWork discards pending units until the work channel is empty or closed
// and returns how many were discarded.
func (w *Worker) drainWork() int {
	drained := 0
	for {
		select {
		case _, ok := <-w.work:
			if !ok {
				return drained
			}
			drained++
		default:
			return drained
		}
	}
}
