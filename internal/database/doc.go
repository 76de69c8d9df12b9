// Package database provides SQLite persistence for crawl file records.
//
// It owns the connection pool and exposes the three operations the crawl
// engine needs:
//   - a single-statement batched insert of file records (all-or-nothing)
//   - a directory history lookup across all crawl generations
//   - a bulk soft-delete that marks records deleted without removing them
//
// Each crawl worker leases one dedicated connection from the pool for its
// whole lifetime and returns it on termination; connections are never shared
// between workers. The database uses WAL mode for concurrent access.
package database
