package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/intentgraph/internal/server"
	"github.com/matzehuels/intentgraph/pkg/errors"
	"github.com/matzehuels/intentgraph/pkg/observability"
	"github.com/matzehuels/intentgraph/pkg/tree"
)

// serveCommand runs the HTTP API over the configured store.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		seed string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editing session over HTTP",
		Long: `Serve the editing session over HTTP.

The stored tree for the configured namespace is loaded at startup. When the
store is empty, --tree seeds it from a file. Prometheus metrics for builds,
reorganizations, drags, store calls and extraction requests are exposed at
/metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, seed)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&seed, "tree", "", "tree file to seed an empty store with")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, seed string) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetEngineHooks(hooks)
	observability.SetStoreHooks(hooks)
	observability.SetHTTPHooks(hooks)

	gw, err := c.openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer gw.Close()

	s := c.newSession(cfg, gw)
	switch err := s.Load(ctx); {
	case err == nil:
	case errors.Is(err, errors.ErrCodeNotFound) && seed != "":
		t, err := tree.ReadFile(seed)
		if err != nil {
			return err
		}
		if err := s.Replace(ctx, t); err != nil {
			return err
		}
		logger.Info("seeded store", "tree", seed, "namespace", cfg.Store.Namespace)
	case errors.Is(err, errors.ErrCodeNotFound):
		logger.Warn("no stored tree, starting empty", "namespace", cfg.Store.Namespace)
	default:
		return err
	}

	printInfo("Serving %s on %s", s, cfg.Server.Addr)
	printDetail("backend %s, extraction %s", cfg.Store.Backend, extractionStatus(cfg.Extract.Enabled()))

	srv := server.New(cfg.Server, server.NewRouter(s, reg, logger), logger)
	return srv.Run(ctx)
}

func extractionStatus(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
