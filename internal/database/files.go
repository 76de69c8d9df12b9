package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tree-crawler/internal/logging"
	"tree-crawler/internal/metrics"
)

// insertColumns is the column list for batched inserts. The surrogate id is
// assigned by storage.
const insertColumns = "crawl_id, dir_path, name, type, size, metadata, " +
	"creation_time, access_time, modification_time, deleted, deleted_time, " +
	"file_hash, in_metadata"

const insertParamsPerRow = 13

// InsertBatch inserts all records for one work unit in a single multi-row
// parameterized statement inside a transaction. Any failure rolls the whole
// batch back and is returned to the caller; no partial batch is ever
// committed. An empty batch is a no-op.
//
// SQLite caps host parameters per statement and each record binds 13 of
// them, so the cap is on records per batch, not on how many directories a
// unit holds. A unit whose directories are dense enough in files to exceed
// the cap fails here and aborts at the insert stage; the remedy is a smaller
// unit size.
func (d *Database) InsertBatch(ctx context.Context, conn *sql.Conn, records []FileRecord) error {
	if len(records) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("insert_batch", start, err) }()

	query, args := buildInsert(records)

	var tx *sql.Tx
	tx, err = conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert transaction: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Error("rollback after insert failure also failed: %v", rbErr)
		}
		return fmt.Errorf("failed to insert batch of %d records: %w", len(records), err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch of %d records: %w", len(records), err)
	}

	metrics.DBBatchSize.Observe(float64(len(records)))
	metrics.FilesInserted.Add(float64(len(records)))
	return nil
}

// buildInsert emits one parameterized multi-row INSERT for a typed record
// slice. No values are ever concatenated into the SQL text.
func buildInsert(records []FileRecord) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO files (")
	sb.WriteString(insertColumns)
	sb.WriteString(") VALUES ")

	row := "(" + strings.TrimSuffix(strings.Repeat("?,", insertParamsPerRow), ",") + ")"
	args := make([]interface{}, 0, len(records)*insertParamsPerRow)

	for i, r := range records {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(row)
		args = append(args,
			r.CrawlID,
			r.DirPath,
			r.Name,
			r.Type,
			r.Size,
			r.Metadata,
			r.CreationTime,
			r.AccessTime,
			r.ModificationTime,
			r.Deleted,
			r.DeletedTime,
			r.FileHash,
			r.InMetadata,
		)
	}

	return sb.String(), args
}

// DirectoryHistory returns every stored record for dirPath across all crawl
// generations, projected to (id, crawl_id, file_hash).
func (d *Database) DirectoryHistory(ctx context.Context, conn *sql.Conn, dirPath string) ([]HistoryEntry, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("directory_history", start, err) }()

	var rows *sql.Rows
	rows, err = conn.QueryContext(ctx,
		`SELECT id, crawl_id, file_hash FROM files WHERE dir_path = ?`, dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", dirPath, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			logging.Warn("Error closing history rows: %v", closeErr)
		}
	}()

	var history []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err = rows.Scan(&e.ID, &e.CrawlID, &e.FileHash); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history for %s: %w", dirPath, err)
	}

	return history, nil
}

// MarkDeleted sets deleted=true and deleted_time=now for every id in one
// statement. No query is issued for an empty set. Failures are logged and
// rolled back but never surfaced: the affected records simply stay un-marked
// until a later crawl.
func (d *Database) MarkDeleted(ctx context.Context, conn *sql.Conn, ids []int64) {
	if len(ids) == 0 {
		return
	}

	start := time.Now()
	var err error
	defer func() { recordQuery("mark_deleted", start, err) }()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := "UPDATE files SET deleted = 1, deleted_time = ? WHERE id IN (" + placeholders + ")"

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, time.Now().UTC().Format(time.RFC3339))
	for _, id := range ids {
		args = append(args, id)
	}

	var tx *sql.Tx
	tx, err = conn.BeginTx(ctx, nil)
	if err != nil {
		logging.Warn("Error beginning soft-delete transaction: %v", err)
		metrics.DeleteMarkFailures.Inc()
		return
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		logging.Warn("Error marking %d records deleted: %v", len(ids), err)
		metrics.DeleteMarkFailures.Inc()
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Error("rollback after soft-delete failure also failed: %v", rbErr)
		}
		return
	}

	if err = tx.Commit(); err != nil {
		logging.Warn("Error committing soft-delete of %d records: %v", len(ids), err)
		metrics.DeleteMarkFailures.Inc()
		return
	}

	metrics.RecordsMarkedDeleted.Add(float64(len(ids)))
	logging.Debug("Marked %d records deleted", len(ids))
}
