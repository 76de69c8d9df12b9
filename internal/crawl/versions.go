package crawl

import "tree-crawler/internal/database"

// DeletionCandidates computes the record ids to soft-delete mark for one
// directory. The maximum crawl id in the history is the in-progress
// generation and is excluded; the baseline is the next-highest remaining
// generation, the most recently completed crawl for this directory. When the
// directory has only a single generation there is nothing to compare against
// and the result is empty.
//
// Candidates are the baseline generation's ids whose file hash is present in
// currentHashes. That membership polarity is the historical contract of this
// engine and is preserved as-is; callers must not invert it.
func DeletionCandidates(history []database.HistoryEntry, currentHashes map[string]bool) []int64 {
	if len(history) == 0 {
		return nil
	}

	maxID := history[0].CrawlID
	for _, e := range history {
		if e.CrawlID > maxID {
			maxID = e.CrawlID
		}
	}

	baseline := int64(-1)
	for _, e := range history {
		if e.CrawlID != maxID && e.CrawlID > baseline {
			baseline = e.CrawlID
		}
	}
	if baseline < 0 {
		// First time this directory is seen.
		return nil
	}

	var ids []int64
	for _, e := range history {
		if e.CrawlID == baseline && currentHashes[e.FileHash] {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
