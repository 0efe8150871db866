package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/cseis-labs/csmod/internal/config"
	"github.com/cseis-labs/csmod/internal/dispatch"
	"github.com/cseis-labs/csmod/internal/metrics"
	"github.com/cseis-labs/csmod/internal/resolver"
	"github.com/cseis-labs/csmod/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveWatch bool

func init() {
	serveCmd.Flags().String("listen", "", "Address to listen on (default "+config.DefaultListen+")")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "Reload the catalog when its file changes")
	_ = viper.BindPFlag(config.KeyListen, serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve catalog and resolver state over HTTP",
	Long: `Serve the catalog, the standard module list, resolver statistics and
Prometheus metrics over HTTP. The catalog is reloaded on SIGHUP, on
POST /reload and, with --watch, whenever its file changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	s := config.Current()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewWithRegistry(reg)

	holder, err := catalog.NewHolder(s.Catalog, catalogOptions(s, logger))
	if err != nil {
		return err
	}
	holder.WithMetrics(m)
	defer holder.Stop()
	holder.OnChange(func(c *catalog.Catalog) {
		logger.Info().Str("path", c.Path()).Str("prefix", c.Prefix()).Strs("modules", c.Names()).Msg("serving catalog")
	})

	holder.WatchSignals()
	if serveWatch {
		if err := holder.WatchFile(); err != nil {
			return err
		}
	}

	r := resolver.New(resolver.Options{Logger: logger, Metrics: m})
	defer r.Close()

	router := server.NewRouter(server.Config{
		Catalog:    holder,
		Dispatcher: dispatch.New(holder, r, logger).WithMetrics(m),
		Resolver:   r,
		Metrics:    m,
		Gatherer:   reg,
		Logger:     logger,
		Version:    buildVersion,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Serve(ctx, s.Listen, router, logger)
}
