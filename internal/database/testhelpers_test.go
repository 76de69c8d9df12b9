package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// setupTestDB creates a temporary crawl database and a leased connection.
func setupTestDB(t *testing.T) (*Database, *sql.Conn) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "crawl.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	conn, err := db.Lease(context.Background())
	if err != nil {
		t.Fatalf("failed to lease connection: %v", err)
	}
	t.Cleanup(func() { db.Release(conn) })

	return db, conn
}

// testRecord returns a valid record for the given crawl generation.
func testRecord(crawlID int64, dir, name, hash string) FileRecord {
	return FileRecord{
		CrawlID:          crawlID,
		DirPath:          dir,
		Name:             name,
		Type:             "TXT",
		Size:             512,
		Metadata:         `{"FileName":"` + name + `"}`,
		CreationTime:     "2024-03-01T10:00:00Z",
		AccessTime:       "2024-03-02T10:00:00Z",
		ModificationTime: "2024-03-01T12:00:00Z",
		FileHash:         hash,
		InMetadata:       true,
	}
}

// countFiles counts rows in the files table, optionally restricted by a
// WHERE clause.
func countFiles(t *testing.T, db *Database, where string, args ...interface{}) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM files"
	if where != "" {
		query += " WHERE " + where
	}

	var count int
	if err := db.db.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("failed to count files: %v", err)
	}
	return count
}
