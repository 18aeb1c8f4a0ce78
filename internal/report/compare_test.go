package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benchdeck/benchdeck/internal/result"
	"github.com/benchdeck/benchdeck/internal/score"
)

func writeTestReport(t *testing.T, dir, name string, rep *result.Report) {
	t.Helper()
	if err := Write(rep, filepath.Join(dir, name)); err != nil {
		t.Fatalf("failed to write report %s: %v", name, err)
	}
}

func runReport(generatedAt time.Time, results ...result.Result) *result.Report {
	return &result.Report{
		GeneratedAt: generatedAt,
		System:      result.SystemInfo{Hostname: "host1"},
		Benchmarks:  results,
	}
}

func okRes(name string, metrics result.Metrics) result.Result {
	return result.Result{
		Name:       name,
		Status:     result.StatusOK,
		Categories: []string{"cpu"},
		Presets:    []string{"all"},
		Metrics:    metrics,
		Parameters: result.Parameters{},
	}
}

func TestBuildMatrixSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)

	writeTestReport(t, dir, "a.json", runReport(t1, okRes("cpu-sysbench", result.Metrics{"events_per_second": 100.0})))
	writeTestReport(t, dir, "b.json", runReport(t2, okRes("cpu-sysbench", result.Metrics{"events_per_second": 110.0})))
	if err := os.WriteFile(filepath.Join(dir, "c.json"), []byte("{ corrupted"), 0644); err != nil {
		t.Fatal(err)
	}

	matrix, err := BuildMatrix(dir, score.Default())
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}
	if len(matrix.Rows) != 2 {
		t.Fatalf("expected 2 rows (corrupt file skipped), got %d", len(matrix.Rows))
	}
	if len(matrix.Columns) != 1 || matrix.Columns[0].Key != "cpu-sysbench" {
		t.Fatalf("unexpected columns: %+v", matrix.Columns)
	}
}

func TestBuildMatrixColumnUnionAndPlaceholder(t *testing.T) {
	dir := t.TempDir()
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(24 * time.Hour)

	writeTestReport(t, dir, "run1.json", runReport(t1,
		okRes("cpu-sysbench", result.Metrics{"events_per_second": 100.0})))
	writeTestReport(t, dir, "run2.json", runReport(t2,
		okRes("cpu-sysbench", result.Metrics{"events_per_second": 110.0}),
		okRes("disk-dd", result.Metrics{"write_mb_per_second": 200.0})))

	matrix, err := BuildMatrix(dir, score.Default())
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}

	if len(matrix.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(matrix.Rows))
	}
	if len(matrix.Columns) != 2 {
		t.Fatalf("expected union of 2 columns, got %d", len(matrix.Columns))
	}
	// Columns are sorted lexicographically.
	if matrix.Columns[0].Key != "cpu-sysbench" || matrix.Columns[1].Key != "disk-dd" {
		t.Errorf("unexpected column order: %s, %s", matrix.Columns[0].Key, matrix.Columns[1].Key)
	}

	// Rows are chronological; run1 never executed disk-dd.
	first := matrix.Rows[0]
	if !first.GeneratedAt.Equal(t1) {
		t.Errorf("expected chronological row order, first row at %v", first.GeneratedAt)
	}
	diskCell := first.Cells[1]
	if !diskCell.Missing || diskCell.Text != score.Placeholder {
		t.Errorf("expected placeholder for never-ran benchmark, got %+v", diskCell)
	}

	cpuCell := matrix.Rows[1].Cells[0]
	if !cpuCell.Numeric || cpuCell.Sort != 110.0 {
		t.Errorf("expected numeric cell with sort value 110, got %+v", cpuCell)
	}
}

func TestBuildMatrixColumnTypes(t *testing.T) {
	dir := t.TempDir()
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	writeTestReport(t, dir, "run1.json", runReport(t1,
		okRes("cpu-sysbench", result.Metrics{"events_per_second": 100.0}),
		okRes("mystery-bench", result.Metrics{"whatever": 1.0})))

	matrix, err := BuildMatrix(dir, score.Default())
	if err != nil {
		t.Fatalf("BuildMatrix failed: %v", err)
	}
	types := map[string]CellType{}
	for _, col := range matrix.Columns {
		types[col.Key] = col.Type
	}
	if types["cpu-sysbench"] != TypeNumber {
		t.Errorf("scored column should be number-typed, got %s", types["cpu-sysbench"])
	}
	if types["mystery-bench"] != TypeText {
		t.Errorf("unscored column should be text-typed, got %s", types["mystery-bench"])
	}
}

func TestWriteComparison(t *testing.T) {
	dir := t.TempDir()
	t1 := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	writeTestReport(t, dir, "run1.json", runReport(t1,
		okRes("cpu-sysbench", result.Metrics{"events_per_second": 100.0})))
	writeTestReport(t, dir, "run2.json", runReport(t1.Add(time.Hour),
		okRes("cpu-sysbench", result.Metrics{"events_per_second": 105.0})))

	out := filepath.Join(dir, "view", "compare.html")
	if err := WriteComparison(dir, out, score.Default()); err != nil {
		t.Fatalf("WriteComparison failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("comparison view not written: %v", err)
	}
	html := string(data)
	if !strings.Contains(html, "<table") {
		t.Error("expected a table in the comparison view")
	}
	if !strings.Contains(html, "cpu-sysbench") {
		t.Error("expected benchmark column in the comparison view")
	}
	if !strings.Contains(html, `data-type="number"`) {
		t.Error("expected data-type tags on columns")
	}
}

func TestBuildMatrixMissingDir(t *testing.T) {
	if _, err := BuildMatrix(filepath.Join(t.TempDir(), "nope"), score.Default()); err == nil {
		t.Error("expected error for missing results directory")
	}
}
