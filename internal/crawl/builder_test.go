package crawl

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tree-crawler/internal/extract"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"512 bytes", 512},
		{"3 kB", 3000},
		{"3 KiB", 3000}, // first character decides; base 1000 regardless
		{"7 MB", 7000000},
		{"2 GB", 2000000000},
		{"1 TB", 1000000000000},
		{"1.5 kB", 1500},
		{"42 weird", 42},
		{"1024", 1024},
		{"", 0},
		{"junk kB", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseSize(tt.input); got != tt.expected {
				t.Errorf("parseSize(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"vendor format with zone", "2024:03:01 10:30:00+02:00", "2024-03-01T10:30:00+02:00"},
		{"vendor format without zone", "2024:03:01 10:30:00", "2024-03-01T10:30:00Z"},
		{"vendor format without seconds", "2024:03:01 10:30", "2024-03-01T10:30:00Z"},
		{"absent", "", TimeNegativeInfinity},
		{"garbage", "yesterday-ish", TimeNegativeInfinity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeTime(tt.input); got != tt.expected {
				t.Errorf("normalizeTime(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// makeResult writes a file to dir and returns an extractor result describing it.
func makeResult(t *testing.T, dir, name, content string) extract.Result {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	res := extract.Result{
		Directory:      dir,
		FileName:       name,
		FileType:       "TXT",
		FileSize:       fmt.Sprintf("%d bytes", len(content)),
		FileModifyDate: "2024:03:01 12:00:00",
	}
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("failed to marshal result: %v", err)
	}
	res.Raw = raw
	return res
}

func TestBuildRecords(t *testing.T) {
	dir := t.TempDir()

	t.Run("builds fully populated records", func(t *testing.T) {
		res := makeResult(t, dir, "a.txt", "hello")

		records, err := BuildRecords(3, []extract.Result{res})
		if err != nil {
			t.Fatalf("BuildRecords failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}

		r := records[0]
		if r.CrawlID != 3 || r.DirPath != dir || r.Name != "a.txt" || r.Type != "TXT" {
			t.Errorf("unexpected record identity: %+v", r)
		}
		if r.Size != 5 {
			t.Errorf("expected size 5, got %d", r.Size)
		}
		if want := fmt.Sprintf("%x", sha256.Sum256([]byte("hello"))); r.FileHash != want {
			t.Errorf("expected hash %s, got %s", want, r.FileHash)
		}
		if r.ModificationTime != "2024-03-01T12:00:00Z" {
			t.Errorf("unexpected modification time %s", r.ModificationTime)
		}
		if r.CreationTime != TimeNegativeInfinity || r.AccessTime != TimeNegativeInfinity {
			t.Error("absent timestamps must use the sentinel")
		}
		if r.Metadata != string(res.Raw) {
			t.Error("raw metadata must be retained verbatim")
		}
		if !r.InMetadata || r.Deleted || r.DeletedTime.Valid {
			t.Errorf("unexpected record state: %+v", r)
		}
	})

	t.Run("missing mandatory field skips only that result", func(t *testing.T) {
		valid := makeResult(t, dir, "b.txt", "world")
		invalid := makeResult(t, dir, "c.txt", "no type")
		invalid.FileType = ""

		records, err := BuildRecords(3, []extract.Result{invalid, valid})
		if err != nil {
			t.Fatalf("BuildRecords failed: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Name != "b.txt" {
			t.Errorf("wrong record survived: %s", records[0].Name)
		}
	})

	t.Run("hash read failure aborts the unit", func(t *testing.T) {
		gone := makeResult(t, dir, "gone.txt", "removed mid-crawl")
		if err := os.Remove(filepath.Join(dir, "gone.txt")); err != nil {
			t.Fatalf("failed to remove file: %v", err)
		}
		valid := makeResult(t, dir, "d.txt", "still here")

		records, err := BuildRecords(3, []extract.Result{valid, gone})
		if err == nil {
			t.Fatal("expected an error for the unreadable file")
		}
		if records != nil {
			t.Errorf("aborted unit must yield no records, got %d", len(records))
		}
	})
}
