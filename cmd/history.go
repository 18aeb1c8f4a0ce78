package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/benchdeck/benchdeck/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs from the history database",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.Open(cmd.Context(), getDatabasePath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := db.RecentRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer w.Flush()
		w.Write([]byte("ID\tWHEN\tHOST\tOK\tSKIPPED\tERRORS\tREPORT\n"))
		for _, run := range runs {
			age := units.HumanDuration(time.Since(run.GeneratedAt)) + " ago"
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%s\n",
				run.ID, age, run.Hostname, run.OK, run.Skipped, run.Errors, run.ReportPath)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	historyCmd.Flags().String("db", "", "History database path")
	rootCmd.AddCommand(historyCmd)
}
