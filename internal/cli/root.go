package cli

import (
	"fmt"
	"os"

	"github.com/cseis-labs/csmod/internal/branding"
	"github.com/cseis-labs/csmod/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` reads the processing-module catalog of a seismic pipeline, checks
each declared module against its port arity and its shared library, and
resolves modules to their native entry points.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("catalog", "", "Catalog document (default ~/"+branding.HomeDir()+"/modules.yaml)")
	pf.String("libdir", "", "Library root, overriding the catalog's libdir")
	pf.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.String("log-format", "", "Log format (console, json)")

	_ = viper.BindPFlag(config.KeyCatalog, pf.Lookup("catalog"))
	_ = viper.BindPFlag(config.KeyLibDir, pf.Lookup("libdir"))
	_ = viper.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format"))
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
