package database

import "database/sql"

// FileRecord is one row of the files table. Once inserted, every field is
// immutable except Deleted/DeletedTime, which transition exactly once from
// (false, NULL) to (true, timestamp) via MarkDeleted.
type FileRecord struct {
	ID               int64
	CrawlID          int64
	DirPath          string
	Name             string
	Type             string
	Size             int64
	Metadata         string
	CreationTime     string
	AccessTime       string
	ModificationTime string
	Deleted          bool
	DeletedTime      sql.NullString
	FileHash         string
	InMetadata       bool
}

// HistoryEntry is one row of the directory history projection used by
// deletion detection: the record id, the generation it belongs to, and its
// content hash.
type HistoryEntry struct {
	ID       int64
	CrawlID  int64
	FileHash string
}
