package database

import (
	"context"
	"strings"
	"testing"
)

func TestInsertBatch(t *testing.T) {
	db, conn := setupTestDB(t)
	ctx := context.Background()

	t.Run("inserts all records in one batch", func(t *testing.T) {
		records := []FileRecord{
			testRecord(1, "/data", "a.txt", "hashA"),
			testRecord(1, "/data", "b.txt", "hashB"),
			testRecord(1, "/data/sub", "c.txt", "hashC"),
		}

		if err := db.InsertBatch(ctx, conn, records); err != nil {
			t.Fatalf("InsertBatch failed: %v", err)
		}

		if got := countFiles(t, db, ""); got != 3 {
			t.Errorf("expected 3 rows, got %d", got)
		}
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		if err := db.InsertBatch(ctx, conn, nil); err != nil {
			t.Errorf("empty batch should not error: %v", err)
		}
	})

	t.Run("new rows carry the not-deleted state", func(t *testing.T) {
		if got := countFiles(t, db, "deleted = 0 AND deleted_time IS NULL"); got != 3 {
			t.Errorf("expected 3 un-deleted rows, got %d", got)
		}
	})
}

func TestInsertBatchAtomicity(t *testing.T) {
	db, conn := setupTestDB(t)
	ctx := context.Background()

	// The third record violates the size check, failing the statement
	// partway through the batch.
	bad := testRecord(1, "/data", "bad.txt", "hashBad")
	bad.Size = -1

	records := []FileRecord{
		testRecord(1, "/data", "a.txt", "hashA"),
		testRecord(1, "/data", "b.txt", "hashB"),
		bad,
	}

	err := db.InsertBatch(ctx, conn, records)
	if err == nil {
		t.Fatal("expected batch insert to fail")
	}

	if got := countFiles(t, db, ""); got != 0 {
		t.Errorf("failed batch must commit zero rows, got %d", got)
	}
}

func TestBuildInsert(t *testing.T) {
	records := []FileRecord{
		testRecord(1, "/data", "a.txt", "hashA"),
		testRecord(1, "/data", "b.txt", "hashB"),
	}

	query, args := buildInsert(records)

	if got := strings.Count(query, "("); got != 3 { // column list + one group per row
		t.Errorf("expected 3 parenthesized groups, got %d in %q", got, query)
	}
	if want := len(records) * insertParamsPerRow; len(args) != want {
		t.Errorf("expected %d args, got %d", want, len(args))
	}
	if strings.Contains(query, "hashA") {
		t.Error("record values must not appear in the SQL text")
	}
}

func TestDirectoryHistory(t *testing.T) {
	db, conn := setupTestDB(t)
	ctx := context.Background()

	seed := []FileRecord{
		testRecord(1, "/d", "a.txt", "hashA"),
		testRecord(1, "/d", "b.txt", "hashB"),
		testRecord(2, "/d", "a.txt", "hashA"),
		testRecord(1, "/other", "x.txt", "hashX"),
	}
	if err := db.InsertBatch(ctx, conn, seed); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	t.Run("returns all generations for the directory", func(t *testing.T) {
		history, err := db.DirectoryHistory(ctx, conn, "/d")
		if err != nil {
			t.Fatalf("DirectoryHistory failed: %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("expected 3 entries for /d, got %d", len(history))
		}
		for _, e := range history {
			if e.ID == 0 || e.FileHash == "" {
				t.Errorf("incomplete history entry: %+v", e)
			}
		}
	})

	t.Run("unknown directory yields empty history", func(t *testing.T) {
		history, err := db.DirectoryHistory(ctx, conn, "/nowhere")
		if err != nil {
			t.Fatalf("DirectoryHistory failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("expected empty history, got %d entries", len(history))
		}
	})
}

func TestMarkDeleted(t *testing.T) {
	db, conn := setupTestDB(t)
	ctx := context.Background()

	seed := []FileRecord{
		testRecord(1, "/d", "a.txt", "hashA"),
		testRecord(1, "/d", "b.txt", "hashB"),
		testRecord(1, "/d", "c.txt", "hashC"),
	}
	if err := db.InsertBatch(ctx, conn, seed); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	history, err := db.DirectoryHistory(ctx, conn, "/d")
	if err != nil {
		t.Fatalf("DirectoryHistory failed: %v", err)
	}

	t.Run("marks the given ids in one statement", func(t *testing.T) {
		db.MarkDeleted(ctx, conn, []int64{history[0].ID, history[1].ID})

		if got := countFiles(t, db, "deleted = 1 AND deleted_time IS NOT NULL"); got != 2 {
			t.Errorf("expected 2 marked rows, got %d", got)
		}
		if got := countFiles(t, db, "deleted = 0"); got != 1 {
			t.Errorf("expected 1 unmarked row, got %d", got)
		}
	})

	t.Run("empty id set issues no query", func(t *testing.T) {
		db.MarkDeleted(ctx, conn, nil)

		if got := countFiles(t, db, "deleted = 1"); got != 2 {
			t.Errorf("marked row count changed on empty set: %d", got)
		}
	})

	t.Run("failure is absorbed, not surfaced", func(t *testing.T) {
		// A released connection makes the statement fail; MarkDeleted must
		// log and return without panicking, leaving rows un-marked.
		badConn, err := db.Lease(ctx)
		if err != nil {
			t.Fatalf("failed to lease connection: %v", err)
		}
		db.Release(badConn)

		db.MarkDeleted(ctx, badConn, []int64{history[2].ID})

		if got := countFiles(t, db, "deleted = 1"); got != 2 {
			t.Errorf("failed soft-delete must not mark rows, got %d marked", got)
		}
	})
}

func TestNextCrawlID(t *testing.T) {
	db, conn := setupTestDB(t)
	ctx := context.Background()

	t.Run("empty store starts at generation 1", func(t *testing.T) {
		next, err := db.NextCrawlID(ctx)
		if err != nil {
			t.Fatalf("NextCrawlID failed: %v", err)
		}
		if next != 1 {
			t.Errorf("expected 1, got %d", next)
		}
	})

	t.Run("advances past the highest stored generation", func(t *testing.T) {
		if err := db.InsertBatch(ctx, conn, []FileRecord{testRecord(7, "/d", "a.txt", "hashA")}); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}

		next, err := db.NextCrawlID(ctx)
		if err != nil {
			t.Fatalf("NextCrawlID failed: %v", err)
		}
		if next != 8 {
			t.Errorf("expected 8, got %d", next)
		}
	})
}
