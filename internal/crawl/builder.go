package crawl

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tree-crawler/internal/database"
	"tree-crawler/internal/extract"
	"tree-crawler/internal/logging"
	"tree-crawler/internal/metrics"
)

// TimeNegativeInfinity is the sentinel stored when a vendor timestamp is
// absent or unparsable. The record is kept; only the timestamp degrades.
const TimeNegativeInfinity = "-infinity"

// vendorTimeLayouts are the extractor's date formats, most specific first.
var vendorTimeLayouts = []string{
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05",
	"2006:01:02 15:04",
}

// BuildRecords validates and normalizes extractor results into persistable
// file records for one work unit. Results missing a mandatory field are
// logged and skipped without affecting the rest of the batch. A content-hash
// read failure aborts the whole remainder of the unit: the error is returned
// and no records from this unit reach storage.
func BuildRecords(crawlID int64, results []extract.Result) ([]database.FileRecord, error) {
	records := make([]database.FileRecord, 0, len(results))

	for _, res := range results {
		if !hasMandatoryFields(res) {
			logging.Warn("Skipping %s: missing mandatory metadata fields",
				filepath.Join(res.Directory, res.FileName))
			metrics.ValidationSkips.Inc()
			continue
		}

		path := filepath.Join(res.Directory, res.FileName)
		hash, err := hashFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", path, err)
		}

		records = append(records, database.FileRecord{
			CrawlID:          crawlID,
			DirPath:          res.Directory,
			Name:             res.FileName,
			Type:             res.FileType,
			Size:             parseSize(res.FileSize),
			Metadata:         string(res.Raw),
			CreationTime:     normalizeTime(res.FileCreationDate),
			AccessTime:       normalizeTime(res.FileAccessDate),
			ModificationTime: normalizeTime(res.FileModifyDate),
			FileHash:         hash,
			InMetadata:       true,
		})
	}

	return records, nil
}

// hasMandatoryFields reports whether a result carries every field required
// for insertion.
func hasMandatoryFields(res extract.Result) bool {
	return res.Directory != "" && res.FileName != "" && res.FileType != "" && res.FileSize != ""
}

// parseSize converts the extractor's "<number> <unit>" size string into
// bytes. The multiplier is keyed on the unit's first character, base 1000:
// k, m, g, t; any other unit (or no unit at all) multiplies by 1.
func parseSize(size string) int64 {
	fields := strings.Fields(size)
	if len(fields) == 0 {
		return 0
	}

	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}

	multiplier := float64(1)
	if len(fields) > 1 && len(fields[1]) > 0 {
		switch strings.ToLower(fields[1])[0] {
		case 'k':
			multiplier = 1e3
		case 'm':
			multiplier = 1e6
		case 'g':
			multiplier = 1e9
		case 't':
			multiplier = 1e12
		}
	}

	return int64(n * multiplier)
}

// normalizeTime rewrites a vendor timestamp into RFC 3339. Absent or
// unparsable values yield the negative-infinity sentinel instead of failing
// the record.
func normalizeTime(value string) string {
	if value == "" {
		return TimeNegativeInfinity
	}
	for _, layout := range vendorTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(time.RFC3339)
		}
	}
	return TimeNegativeInfinity
}

// hashFile computes the hex-encoded SHA-256 digest over the exact bytes on
// disk at read time.
func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}
