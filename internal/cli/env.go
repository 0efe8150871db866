package cli

import (
	"fmt"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/config"
	"github.com/cseis-labs/csmod/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// newLogger builds the command's logger from the effective settings. Logs
// go to stderr so stdout stays parseable.
func newLogger(cmd *cobra.Command) (zerolog.Logger, error) {
	s := config.Current()
	return logging.New(s.LogLevel, s.LogFormat, cmd.ErrOrStderr())
}

func catalogOptions(s config.Settings, logger zerolog.Logger) catalog.Options {
	return catalog.Options{
		Prefix:      s.ModulePrefix,
		LibraryRoot: s.LibDir,
		Logger:      logger,
	}
}

// loadCatalog loads the configured catalog document.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, zerolog.Logger, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, logger, err
	}
	s := config.Current()
	c, err := catalog.Load(s.Catalog, catalogOptions(s, logger))
	if err != nil {
		return nil, logger, fmt.Errorf("loading catalog: %w", err)
	}
	return c, logger, nil
}
