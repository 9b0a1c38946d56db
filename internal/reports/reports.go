// Package reports writes decoded results to timestamped JSON files.
package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimestampFormat is the time layout embedded in report filenames.
const TimestampFormat = "20060102-150405"

// Save pretty-prints data into dir/{prefix}-{YYYYMMDD-HHMMSS}.json, creating dir if
// needed, and returns the path written.
func Save(dir, prefix string, data any) (string, error) {
	return save(dir, prefix, data, time.Now().UTC())
}

func save(dir, prefix string, data any, now time.Time) (string, error) {
	if prefix == "" {
		prefix = "report"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", prefix, now.Format(TimestampFormat)))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
