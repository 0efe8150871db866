package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/cseis-labs/csmod/internal/dispatch"
	"github.com/cseis-labs/csmod/internal/resolver"
	"github.com/spf13/cobra"
)

var (
	resolveVersion string
	resolveJSON    bool
)

func init() {
	resolveCmd.Flags().StringVar(&resolveVersion, "version", "", "Library version: major.minor or a free-form suffix")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <name>",
	Short: "Resolve a module to its library entry points",
	Long: `Resolve a module the way the pipeline executor does: standard modules are
reported as built in, declared modules are loaded from the library root and
their three entry points looked up. Nothing is executed.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

type resolveReport struct {
	Module   string `json:"module"`
	Version  string `json:"version,omitempty"`
	Standard bool   `json:"standard"`
	Path     string `json:"path,omitempty"`
	Category string `json:"category,omitempty"`
	Params   string `json:"params,omitempty"`
	Init     string `json:"init,omitempty"`
	Exec     string `json:"exec,omitempty"`
	ExecKind string `json:"exec_kind,omitempty"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	c, logger, err := loadCatalog(cmd)
	if err != nil {
		return err
	}

	r := resolver.New(resolver.Options{Logger: logger})
	defer r.Close()
	d := dispatch.New(staticCatalog{c}, r, logger)

	name := args[0]
	v := resolver.ParseVersion(resolveVersion)
	report := resolveReport{Module: name, Version: v.String()}

	h, err := d.Resolve(name, v)
	switch {
	case errors.Is(err, dispatch.ErrStandardModule):
		report.Standard = true
	case err != nil:
		return err
	default:
		defer h.Release()
		b := h.Binding()
		report.Path = b.Path
		report.Category = b.Category.String()
		report.Params = resolver.ParamsSymbol(name)
		report.Init = resolver.InitSymbol(name)
		report.Exec = b.Exec.Symbol()
		report.ExecKind = execKind(b.Exec)
	}

	if resolveJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	out := cmd.OutOrStdout()
	if report.Standard {
		fmt.Fprintf(out, "%s is a standard module built into the engine.\n", name)
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Module:\t%s\n", report.Module)
	if report.Version != "" {
		fmt.Fprintf(w, "Version:\t%s\n", report.Version)
	}
	fmt.Fprintf(w, "Library:\t%s\n", report.Path)
	fmt.Fprintf(w, "Category:\t%s\n", report.Category)
	fmt.Fprintf(w, "Params:\t%s\n", report.Params)
	fmt.Fprintf(w, "Init:\t%s\n", report.Init)
	fmt.Fprintf(w, "Exec:\t%s (%s)\n", report.Exec, report.ExecKind)
	return w.Flush()
}

func execKind(e resolver.Exec) string {
	switch e.(type) {
	case resolver.SingleTraceExec:
		return "single-trace"
	case resolver.MultiTraceExec:
		return "multi-trace"
	default:
		return "unknown"
	}
}
