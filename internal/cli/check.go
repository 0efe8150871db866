package cli

import (
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/dispatch"
	"github.com/cseis-labs/csmod/internal/resolver"
	"github.com/spf13/cobra"
)

var (
	checkVersion string
	checkJobs    int
	checkJSON    bool
)

func init() {
	checkCmd.Flags().StringVar(&checkVersion, "version", "", "Library version to probe")
	checkCmd.Flags().IntVar(&checkJobs, "jobs", runtime.NumCPU(), "Modules probed in parallel")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load every declared module and report failures",
	Long: `Load every declared module's library, look up its entry points, and
release it again. Fails when any module cannot be resolved.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// staticCatalog serves one catalog for the life of a command.
type staticCatalog struct{ c *catalog.Catalog }

func (s staticCatalog) Get() *catalog.Catalog { return s.c }

func runCheck(cmd *cobra.Command, args []string) error {
	c, logger, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	r := resolver.New(resolver.Options{Logger: logger})
	defer r.Close()
	d := dispatch.New(staticCatalog{c}, r, logger)

	results, err := d.ResolveAll(cmd.Context(), resolver.ParseVersion(checkVersion), checkJobs)
	if err != nil {
		return fmt.Errorf("checking modules: %w", err)
	}
	failed := dispatch.Failed(results)

	if checkJSON {
		if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MODULE\tCATEGORY\tSTATUS")
		for _, res := range results {
			status := "ok"
			if !res.OK() {
				status = "FAILED"
			} else if res.Standard {
				status = "ok (shadows standard)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", res.Module, res.Category, status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, res := range failed {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s: %v\n", res.Module, res.Err)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d modules failed to resolve", len(failed), len(results))
	}
	return nil
}
