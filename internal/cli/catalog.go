package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/config"
	"github.com/cseis-labs/csmod/internal/registry"
	"github.com/spf13/cobra"
)

var (
	catalogListCategory string
	catalogListJSON     bool
	catalogShowJSON     bool
	catalogStrict       bool
)

func init() {
	catalogListCmd.Flags().StringVar(&catalogListCategory, "category", "", "Filter by category (single-trace, multi-trace, whole-file, input)")
	catalogListCmd.Flags().BoolVar(&catalogListJSON, "json", false, "Output in JSON format")
	catalogShowCmd.Flags().BoolVar(&catalogShowJSON, "json", false, "Output in JSON format")
	catalogValidateCmd.Flags().BoolVar(&catalogStrict, "strict", false, "Treat missing module libraries as errors")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	rootCmd.AddCommand(catalogCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and validate the module catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List declared modules",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one declared module",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a catalog document",
	Long: `Validate a catalog document: schema, categories, port arity, the library
root and the presence of every declared module library. Without a path the
configured catalog is validated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogValidate,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	c, _, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	var want catalog.Category
	if catalogListCategory != "" {
		if want, err = catalog.ParseCategory(catalogListCategory); err != nil {
			return err
		}
	}

	entries := []catalog.Entry{}
	for _, e := range c.Entries() {
		if want == 0 || e.Category == want {
			entries = append(entries, e)
		}
	}

	if catalogListJSON {
		return writeJSON(cmd.OutOrStdout(), entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No modules declared.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tIN\tOUT\tARTIFACT")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", e.Name, e.Category, e.InPorts, e.OutPorts, e.Artifact)
	}
	return w.Flush()
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	c, _, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	name := args[0]
	e, ok := c.Entry(name)
	if !ok {
		if registry.IsStandard(name) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is a standard module built into the engine.\n", name)
			return nil
		}
		return fmt.Errorf("module %s is not declared in %s", name, c.Path())
	}

	if catalogShowJSON {
		return writeJSON(cmd.OutOrStdout(), e)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", e.Name)
	fmt.Fprintf(w, "Category:\t%s\n", e.Category)
	fmt.Fprintf(w, "Ports:\t%d in, %d out\n", e.InPorts, e.OutPorts)
	fmt.Fprintf(w, "Artifact:\t%s\n", e.Artifact)
	fmt.Fprintf(w, "Prefix:\t%s\n", c.Prefix())
	if registry.IsStandard(e.Name) {
		fmt.Fprintf(w, "Note:\tshadows the standard module of the same name\n")
	}
	return w.Flush()
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	s := config.Current()
	path := s.Catalog
	if len(args) == 1 {
		path = args[0]
	}

	out := cmd.OutOrStdout()
	c, err := catalog.Load(path, catalogOptions(s, logger))
	if err != nil {
		printLoadError(out, err)
		return fmt.Errorf("catalog %s is invalid", path)
	}

	problems := c.Problems()
	for _, p := range problems {
		fmt.Fprintf(out, "  warning: %v\n", p)
	}
	if catalogStrict && len(problems) > 0 {
		return fmt.Errorf("catalog %s: %d module libraries missing", path, len(problems))
	}

	fmt.Fprintf(out, "%s: %d modules, library root %s, artifact prefix %s\n", path, c.Len(), c.LibraryRoot(), c.Prefix())
	return nil
}

// printLoadError lists every port arity violation on its own line, or the
// single load error otherwise.
func printLoadError(w io.Writer, err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			fmt.Fprintf(w, "  error: %v\n", e)
		}
		return
	}
	fmt.Fprintf(w, "  error: %v\n", err)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
