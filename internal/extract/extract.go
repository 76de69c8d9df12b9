package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"tree-crawler/internal/logging"
	"tree-crawler/internal/metrics"
)

// Result is the structured metadata the extractor reports for one file.
// Directory, FileName, FileType and FileSize are mandatory for persistence;
// the date fields are best-effort. Raw holds the result's original JSON
// object verbatim.
type Result struct {
	Directory        string `json:"Directory"`
	FileName         string `json:"FileName"`
	FileType         string `json:"FileType"`
	FileSize         string `json:"FileSize"`
	FileAccessDate   string `json:"FileAccessDate"`
	FileModifyDate   string `json:"FileModifyDate"`
	FileCreationDate string `json:"FileCreationDate"`

	Raw json.RawMessage `json:"-"`
}

// Extractor runs the configured metadata tool.
type Extractor struct {
	path string
}

// New creates an Extractor for the executable at path.
func New(path string) *Extractor {
	return &Extractor{path: path}
}

// Extract invokes the tool once for the whole batch of paths and decodes its
// output. A result may be absent for a path the tool skipped; that is not
// distinguishable from the path being skipped upstream. Invocation and decode
// failures are returned to the caller, which aborts the unit.
func (e *Extractor) Extract(ctx context.Context, paths []string) ([]Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	start := time.Now()

	args := make([]string, 0, len(paths)+1)
	args = append(args, "-json")
	args = append(args, paths...)

	cmd := exec.CommandContext(ctx, e.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// The tool exits non-zero when some paths are unreadable but may
		// still have produced usable output; only fail when there is none.
		if stdout.Len() == 0 {
			metrics.ExtractorInvocations.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("extractor %s failed: %w (stderr: %s)", e.path, err, stderr.String())
		}
		logging.Debug("Extractor exited non-zero with partial output: %v", err)
	}

	var rawResults []json.RawMessage
	if err := json.Unmarshal(stdout.Bytes(), &rawResults); err != nil {
		metrics.ExtractorInvocations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode extractor output: %w", err)
	}

	results := make([]Result, 0, len(rawResults))
	for _, raw := range rawResults {
		var res Result
		if err := json.Unmarshal(raw, &res); err != nil {
			metrics.ExtractorInvocations.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to decode extractor result: %w", err)
		}
		res.Raw = raw
		results = append(results, res)
	}

	metrics.ExtractorInvocations.WithLabelValues("success").Inc()
	metrics.ExtractorDuration.Observe(time.Since(start).Seconds())
	logging.Debug("Extractor produced %d results for %d paths in %v",
		len(results), len(paths), time.Since(start))

	return results, nil
}
