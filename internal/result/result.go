// Package result defines the data model shared by the benchmark
// catalog, the execution engine, and the report aggregator.
package result

import "time"

// Status represents the outcome of a single benchmark invocation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusSkipped Status = "skipped"
	StatusError   Status = "error"
)

// Metrics holds the measured values of one benchmark. The schema is
// benchmark-specific; keys are never unified across benchmarks.
type Metrics map[string]any

// Parameters records the effective configuration a benchmark actually
// ran with, defaults and overrides merged. Always populated, even for
// skipped or failed runs, so a report is reproducible.
type Parameters map[string]any

// Result is the immutable record of one benchmark invocation.
type Result struct {
	Name            string     `json:"name"`
	Status          Status     `json:"status"`
	Categories      []string   `json:"categories,omitempty"`
	Presets         []string   `json:"presets"`
	Metrics         Metrics    `json:"metrics"`
	Parameters      Parameters `json:"parameters"`
	DurationSeconds float64    `json:"duration_seconds"`
	Command         string     `json:"command"`
	Message         string     `json:"message,omitempty"`
	RawOutput       string     `json:"raw_output,omitempty"`
	Version         string     `json:"version,omitempty"`
}

// SystemInfo is a snapshot of host identity captured once at run start.
type SystemInfo struct {
	Platform         string `json:"platform"`
	Machine          string `json:"machine"`
	Processor        string `json:"processor"`
	Hostname         string `json:"hostname"`
	CPUCount         int    `json:"cpu_count"`
	OS               string `json:"os,omitempty"`
	Kernel           string `json:"kernel,omitempty"`
	CPUModel         string `json:"cpu_model,omitempty"`
	MemoryTotalBytes uint64 `json:"memory_total_bytes,omitempty"`
	GPU              string `json:"gpu,omitempty"`
}

// Report is the complete serializable output of one orchestration run.
// Every Result name appears in BenchmarksRequested, which holds no
// duplicates.
type Report struct {
	GeneratedAt         time.Time  `json:"generated_at"`
	System              SystemInfo `json:"system"`
	Benchmarks          []Result   `json:"benchmarks"`
	PresetsRequested    []string   `json:"presets_requested"`
	BenchmarksRequested []string   `json:"benchmarks_requested"`
}

// Counts returns the number of results per status.
func (r *Report) Counts() (ok, skipped, errors int) {
	for _, b := range r.Benchmarks {
		switch b.Status {
		case StatusOK:
			ok++
		case StatusSkipped:
			skipped++
		case StatusError:
			errors++
		}
	}
	return ok, skipped, errors
}
