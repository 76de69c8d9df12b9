package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"tree-crawler/internal/logging"
	"tree-crawler/internal/metrics"
)

// Default timeout for standalone database operations
const defaultTimeout = 5 * time.Second

// Database manages the crawl record store and its connection pool.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the crawl database at dbPath.
// The parent directory must already exist and be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// busy_timeout helps prevent "database is locked" errors when several
	// worker connections write concurrently
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// One dedicated connection per worker plus headroom for the ops server
	// and the coordinator.
	db.SetMaxOpenConns(32)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	-- One row per file per crawl generation. Rows are never merged across
	-- generations; deletion detection marks prior-generation rows instead of
	-- removing them.
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		crawl_id INTEGER NOT NULL,
		dir_path TEXT NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		size INTEGER NOT NULL CHECK (size >= 0),
		metadata TEXT NOT NULL DEFAULT '{}',
		creation_time TEXT NOT NULL,
		access_time TEXT NOT NULL,
		modification_time TEXT NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		deleted_time TEXT,
		file_hash TEXT NOT NULL,
		in_metadata INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_files_dir_path ON files(dir_path);
	CREATE INDEX IF NOT EXISTS idx_files_crawl ON files(crawl_id);
	CREATE INDEX IF NOT EXISTS idx_files_dir_crawl ON files(dir_path, crawl_id);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

// Lease returns a dedicated connection from the pool. A crawl worker calls
// this once at startup and holds the connection until it terminates; Release
// returns it to the pool.
func (d *Database) Lease(ctx context.Context) (*sql.Conn, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lease connection: %w", err)
	}
	d.UpdateDBMetrics()
	return conn, nil
}

// Release returns a leased connection to the pool.
func (d *Database) Release(conn *sql.Conn) {
	if conn == nil {
		return
	}
	if err := conn.Close(); err != nil {
		logging.Warn("Error releasing database connection: %v", err)
	}
	d.UpdateDBMetrics()
}

// NextCrawlID returns the next crawl generation id: one past the highest id
// currently stored. Generation ids only ever increase.
func (d *Database) NextCrawlID(ctx context.Context) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("next_crawl_id", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var next int64
	err = d.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(crawl_id), 0) + 1 FROM files`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to determine next crawl id: %w", err)
	}
	return next, nil
}

// recordQuery records database operation metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// Stats exposes the sql.DB pool statistics for the health endpoint.
func (d *Database) Stats() sql.DBStats {
	return d.db.Stats()
}
