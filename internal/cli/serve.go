package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/runshape/pkg/cache"
	"github.com/matzehuels/runshape/pkg/config"
	"github.com/matzehuels/runshape/pkg/observability/metrics"
	"github.com/matzehuels/runshape/pkg/server"
	"github.com/matzehuels/runshape/pkg/source"
	"github.com/matzehuels/runshape/pkg/view"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout HTTP API",
		Long: `Serve column layering, graph layout and views over HTTP, with Prometheus
metrics on /metrics. Remote runs are loaded from the configured source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			m, err := metrics.New(prometheus.DefaultRegisterer)
			if err != nil {
				return err
			}
			m.Install()

			resolve, closeResolver, err := c.newResolver(ctx, noCache)
			if err != nil {
				return err
			}
			defer closeResolver()

			memo, err := view.NewMemo(c.Config.Memo.Size, nil)
			if err != nil {
				return err
			}
			srv, err := server.New(server.Config{
				Layout:      c.Config.LayoutOptions(),
				DefaultMode: c.Config.DefaultMode(),
				Memo:        memo,
				Resolve:     resolve,
				Logger:      c.Logger,
			})
			if err != nil {
				return err
			}

			printSuccess("Serving on %s", StyleLink.Render(addr))
			printDetail("Source: %s · Cache: %s · Engine: %s", c.Config.Source.Kind, c.Config.Cache.Kind, c.Config.Layout.Engine)
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache")
	return cmd
}

// newResolver returns the remote run resolver for the configured source
// kind, or nil for the file source.
func (c *CLI) newResolver(ctx context.Context, noCache bool) (server.Resolver, func(), error) {
	switch c.Config.Source.Kind {
	case config.SourceHTTP:
		cc, err := c.newCache(ctx, noCache)
		if err != nil {
			return nil, func() {}, err
		}
		observed := cache.NewObserved(cc, "http")
		resolve := func(tenant, runID string) (source.Source, error) {
			return source.NewHTTP(source.HTTPConfig{
				BaseURL:     c.Config.Source.BaseURL,
				URLTemplate: c.Config.Source.URLTemplate,
				Tenant:      tenant,
				Run:         runID,
				Token:       c.Config.Source.Token,
				Cache:       observed,
				TTL:         c.Config.Cache.TTL,
				Logger:      c.Logger,
			})
		}
		return resolve, func() { c.closeCache(cc) }, nil

	case config.SourceMongo:
		store, err := source.NewMongoStore(ctx, c.mongoConfig())
		if err != nil {
			return nil, func() {}, err
		}
		resolve := func(tenant, runID string) (source.Source, error) {
			return store.Source(tenant, runID)
		}
		return resolve, func() { store.Close(context.Background()) }, nil

	default:
		return nil, func() {}, nil
	}
}
