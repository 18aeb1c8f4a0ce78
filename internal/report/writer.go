// Package report persists run reports and aggregates historical
// reports into a cross-run comparison view.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/benchdeck/benchdeck/internal/result"
)

// Write serializes the report as indented JSON at path, creating
// parent directories as needed and overwriting any existing file. One
// file per run; there are no merge semantics.
func Write(rep *result.Report, path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Read parses one report file.
func Read(path string) (*result.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var rep result.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", filepath.Base(path), err)
	}
	return &rep, nil
}

// DefaultFileName returns the report file name for a run started at t.
func DefaultFileName(t time.Time) string {
	return fmt.Sprintf("report-%s-%s.json", t.UTC().Format("20060102-150405"), uuid.NewString()[:8])
}
