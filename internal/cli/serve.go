package cli

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tanglestat/internal/server"
	"github.com/matzehuels/tanglestat/pkg/observability"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	metrics bool
	origins []string
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tangle analysis over HTTP",
		Long: `Serve tangle analysis over HTTP.

Endpoints:
  GET  /healthz      liveness and build info
  GET  /metrics      Prometheus metrics (with --metrics)
  POST /v1/analyze   statistics report for the posted tangle
  POST /v1/render    SVG diagram of the posted tangle

The server uses the report cache configured in the config file, so several
instances can share a Redis or MongoDB cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.addr == "" {
				opts.addr = c.Config.Server.Addr
			}
			if !cmd.Flags().Changed("metrics") {
				opts.metrics = c.Config.Server.Metrics
			}
			if len(opts.origins) == 0 {
				opts.origins = c.Config.Server.CORSOrigins
			}
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	cmd.Flags().StringSliceVar(&opts.origins, "cors-origin", nil, "allowed CORS origin (repeatable)")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	srvOpts := server.Options{
		Precision:   c.Config.Report.Precision,
		CORSOrigins: opts.origins,
	}
	if opts.metrics {
		handler, err := c.enableMetrics()
		if err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		srvOpts.Metrics = handler
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	return server.New(opts.addr, runner, logger, srvOpts).Run(ctx)
}

// enableMetrics registers Prometheus hooks alongside the log hooks and
// returns the handler serving the registry.
func (c *CLI) enableMetrics() (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom, err := observability.NewPromHooks(reg)
	if err != nil {
		return nil, err
	}
	observability.SetAll(observability.Tee{observability.NewLogHooks(c.Logger), prom})
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), nil
}
