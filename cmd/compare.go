package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/benchdeck/benchdeck/internal/report"
	"github.com/benchdeck/benchdeck/internal/score"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Build the cross-run comparison view from stored reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		resultsDir := getResultsDir(cmd)
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = filepath.Join(resultsDir, "compare.html")
		}
		return report.WriteComparison(resultsDir, out, score.Default())
	},
}

func init() {
	compareCmd.Flags().StringP("output", "o", "", "Comparison view path (default: <results-dir>/compare.html)")
	rootCmd.AddCommand(compareCmd)
}
