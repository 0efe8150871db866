package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/cseis-labs/csmod/internal/registry"
	"github.com/spf13/cobra"
)

var standardJSON bool

func init() {
	standardListCmd.Flags().BoolVar(&standardJSON, "json", false, "Output in JSON format")
	standardCmd.AddCommand(standardListCmd)
	rootCmd.AddCommand(standardCmd)
}

var standardCmd = &cobra.Command{
	Use:   "standard",
	Short: "Query the modules built into the engine",
}

var standardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List standard modules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names := registry.StandardNames()
		if standardJSON {
			return writeJSON(cmd.OutOrStdout(), names)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		const cols = 4
		for i, name := range names {
			sep := "\t"
			if (i+1)%cols == 0 || i == len(names)-1 {
				sep = "\n"
			}
			fmt.Fprint(w, name, sep)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d standard modules (%d single-trace, %d multi-trace)\n",
			registry.Count(), registry.SingleTraceCount, registry.MultiTraceCount)
		return nil
	},
}
