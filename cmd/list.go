package cmd

import (
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/benchdeck/benchdeck/internal/probes"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List benchmarks or presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, resolver, err := probes.Load()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer w.Flush()

		if showPresets, _ := cmd.Flags().GetBool("presets"); showPresets {
			w.Write([]byte("NAME\tBENCHMARKS\tDESCRIPTION\n"))
			for _, p := range resolver.Presets() {
				keys := resolver.Resolve([]string{p.Name}, nil)
				w.Write([]byte(p.Name + "\t" + strings.Join(keys, ",") + "\t" + p.Description + "\n"))
			}
			return nil
		}

		w.Write([]byte("KEY\tCATEGORIES\tPRESETS\tDESCRIPTION\n"))
		for _, def := range cat.List() {
			w.Write([]byte(def.Key + "\t" +
				strings.Join(def.Categories, ",") + "\t" +
				strings.Join(def.Presets, ",") + "\t" +
				def.Description + "\n"))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("presets", false, "List presets instead of benchmarks")
	rootCmd.AddCommand(listCmd)
}
