package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benchdeck/benchdeck/internal/catalog"
	"github.com/benchdeck/benchdeck/internal/engine"
	"github.com/benchdeck/benchdeck/internal/history"
	"github.com/benchdeck/benchdeck/internal/probes"
	"github.com/benchdeck/benchdeck/internal/report"
	"github.com/benchdeck/benchdeck/internal/result"
	"github.com/benchdeck/benchdeck/internal/score"
	"github.com/benchdeck/benchdeck/internal/sysinfo"
	"github.com/benchdeck/benchdeck/internal/upload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run selected benchmarks and write a report",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringSliceP("preset", "p", nil, "Preset name(s) to run (comma-separated or repeated)")
	runCmd.Flags().StringSliceP("benchmark", "b", nil, "Explicit benchmark key(s); overrides presets for selection")
	runCmd.Flags().StringP("output", "o", "", "Report file path (default: results dir with a generated name)")
	runCmd.Flags().String("hostname", "", "Override the hostname recorded in the report")
	runCmd.Flags().StringArray("set", nil, "Parameter override, e.g. --set cpu-sysbench.seconds=5")
	runCmd.Flags().Bool("upload", false, "Upload the report to S3-compatible storage (BENCHDECK_S3_* env)")
	runCmd.Flags().Bool("no-history", false, "Skip recording the run in the history database")
	runCmd.Flags().String("db", "", "History database path")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	presetNames, _ := cmd.Flags().GetStringSlice("preset")
	benchmarkKeys, _ := cmd.Flags().GetStringSlice("benchmark")
	hostname, _ := cmd.Flags().GetString("hostname")
	sets, _ := cmd.Flags().GetStringArray("set")

	cat, resolver, err := probes.Load()
	if err != nil {
		return err
	}

	selection := resolver.Resolve(presetNames, benchmarkKeys)
	if len(selection) == 0 {
		return fmt.Errorf("selection resolved to zero benchmarks")
	}

	overrides, err := parseOverrides(sets)
	if err != nil {
		return err
	}

	rc := &catalog.RunContext{
		Hostname:   hostname,
		ScratchDir: os.TempDir(),
		Overrides:  overrides,
		Logger:     slog.Default(),
	}

	slog.Info("starting run", "benchmarks", strings.Join(selection, ","))
	results := engine.New(cat).Execute(cmd.Context(), rc, selection)

	system := sysinfo.Collect()
	if hostname != "" {
		system.Hostname = hostname
	}

	rep := &result.Report{
		GeneratedAt:         time.Now().UTC(),
		System:              system,
		Benchmarks:          results,
		PresetsRequested:    presetNames,
		BenchmarksRequested: selection,
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		path = filepath.Join(getResultsDir(cmd), report.DefaultFileName(rep.GeneratedAt))
	}
	if err := report.Write(rep, path); err != nil {
		return err
	}
	slog.Info("report written", "path", path)

	printSummary(cmd, rep)

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		recordHistory(cmd, rep, path)
	}
	if doUpload, _ := cmd.Flags().GetBool("upload"); doUpload {
		uploadReport(cmd, path)
	}

	return nil
}

func printSummary(cmd *cobra.Command, rep *result.Report) {
	rules := score.Default()
	for _, res := range rep.Benchmarks {
		line := fmt.Sprintf("%-8s %-18s %s", res.Status, res.Name, rules.Cell(res))
		if res.Message != "" {
			line += "  (" + res.Message + ")"
		}
		cmd.Println(line)
	}
	ok, skipped, errors := rep.Counts()
	cmd.Printf("%d ok, %d skipped, %d errors\n", ok, skipped, errors)
}

// recordHistory indexes the run in SQLite. History is best-effort; a
// failure never fails the run itself.
func recordHistory(cmd *cobra.Command, rep *result.Report, path string) {
	db, err := history.Open(cmd.Context(), getDatabasePath(cmd))
	if err != nil {
		slog.Warn("history disabled", "error", err)
		return
	}
	defer db.Close()

	if _, err := db.RecordRun(cmd.Context(), rep, path); err != nil {
		slog.Warn("failed to record run in history", "error", err)
	}
}

// uploadReport ships the report file to remote storage. Upload is
// best-effort; a failure never fails the run itself.
func uploadReport(cmd *cobra.Command, path string) {
	provider := upload.NewMinioProvider()
	if err := provider.Configure(upload.ConfigFromEnv()); err != nil {
		slog.Warn("upload skipped", "provider", provider.Name(), "error", err)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		slog.Warn("upload skipped", "error", err)
		return
	}
	defer file.Close()

	if err := provider.Upload(cmd.Context(), file, filepath.Base(path)); err != nil {
		slog.Warn("upload failed", "error", err)
		return
	}
	slog.Info("report uploaded", "provider", provider.Name(), "object", filepath.Base(path))
}

// parseOverrides turns --set benchmark.param=value flags into the
// per-benchmark override map.
func parseOverrides(sets []string) (map[string]map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	overrides := map[string]map[string]any{}
	for _, entry := range sets {
		spec, value, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("invalid --set %q, want benchmark.param=value", entry)
		}
		bench, param, found := strings.Cut(spec, ".")
		if !found || bench == "" || param == "" {
			return nil, fmt.Errorf("invalid --set %q, want benchmark.param=value", entry)
		}
		if overrides[bench] == nil {
			overrides[bench] = map[string]any{}
		}
		overrides[bench][param] = value
	}
	return overrides, nil
}

func getDatabasePath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = os.Getenv("BENCHDECK_DB")
	}
	if path == "" {
		path = filepath.Join(getResultsDir(cmd), "history.db")
	}
	return path
}
