package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X github.com/benchdeck/benchdeck/cmd.Version=..."
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "benchdeck",
	Short: "Host benchmark orchestrator",
	Long: `Benchdeck runs a curated catalog of benchmarks wrapping external
tools, writes one JSON report per run, and aggregates historical
reports into a comparison view.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, _ := cmd.Flags().GetString("log-level")
		setupLogging(level)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("results-dir", "r", "", "Directory holding report files")
	rootCmd.Flags().BoolP("version", "v", false, "Print version and exit")

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			cmd.Printf("benchdeck version %s\n", Version)
			return
		}
		cmd.Help()
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

func getResultsDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("results-dir")
	if dir == "" {
		dir = os.Getenv("BENCHDECK_RESULTS_DIR")
	}
	if dir == "" {
		dir = "results"
	}
	return dir
}
