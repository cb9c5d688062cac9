package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/runshape/pkg/config"
	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/run"
	"github.com/matzehuels/runshape/pkg/source"
)

// inputFlags select a run: a snapshot path argument, or --tenant and --run
// against the configured remote source.
type inputFlags struct {
	tenant  string
	run     string
	noCache bool
	refresh bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tenant, "tenant", "", "tenant id of a remote run")
	cmd.Flags().StringVar(&f.run, "run", "", "workflow run id of a remote run")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the response cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached responses")
}

func (f *inputFlags) remote() bool { return f.tenant != "" || f.run != "" }

// openSource returns the source selected by args and flags, and a function
// releasing its resources.
func (c *CLI) openSource(ctx context.Context, args []string, f inputFlags) (source.Source, func(), error) {
	noop := func() {}
	switch {
	case len(args) == 1 && f.remote():
		return nil, noop, errors.New(errors.ErrCodeInvalidInput, "pass either a snapshot file or --tenant/--run, not both")
	case len(args) == 1:
		return source.NewFile(args[0]), noop, nil
	case !f.remote():
		return nil, noop, errors.New(errors.ErrCodeInvalidInput, "a snapshot file or --tenant and --run are required")
	}

	switch c.Config.Source.Kind {
	case config.SourceHTTP:
		cc, err := c.newCache(ctx, f.noCache)
		if err != nil {
			return nil, noop, err
		}
		src, err := source.NewHTTP(source.HTTPConfig{
			BaseURL:     c.Config.Source.BaseURL,
			URLTemplate: c.Config.Source.URLTemplate,
			Tenant:      f.tenant,
			Run:         f.run,
			Token:       c.Config.Source.Token,
			Cache:       cc,
			TTL:         c.Config.Cache.TTL,
			Logger:      c.Logger,
		})
		if err != nil {
			c.closeCache(cc)
			return nil, noop, err
		}
		src.Refresh(f.refresh)
		return src, func() { c.closeCache(cc) }, nil

	case config.SourceMongo:
		store, err := source.NewMongoStore(ctx, c.mongoConfig())
		if err != nil {
			return nil, noop, err
		}
		src, err := store.Source(f.tenant, f.run)
		if err != nil {
			store.Close(context.Background())
			return nil, noop, err
		}
		return src, func() { store.Close(context.Background()) }, nil

	default:
		return nil, noop, errors.New(errors.ErrCodeInvalidInput,
			"source.kind %q cannot load remote runs; set it to http or mongo", c.Config.Source.Kind)
	}
}

func (c *CLI) mongoConfig() source.MongoConfig {
	return source.MongoConfig{
		URI:        c.Config.Mongo.URI,
		Database:   c.Config.Mongo.Database,
		Collection: c.Config.Mongo.Collection,
	}
}

// load fetches a run and returns its snapshot. Failed and still-loading
// queries are errors on the command line.
func (c *CLI) load(ctx context.Context, args []string, f inputFlags) (*run.Snapshot, error) {
	src, closeSrc, err := c.openSource(ctx, args, f)
	if err != nil {
		return nil, err
	}
	defer closeSrc()

	var q run.Query
	if f.remote() {
		spinner := newSpinner(ctx, os.Stderr, "Fetching run "+f.run+"...")
		spinner.Start()
		q = src.Fetch(ctx)
		switch {
		case spinner.Interrupted():
			spinner.StopWithError("Fetch interrupted")
		case q.IsError:
			spinner.StopWithError("Fetch failed")
		default:
			spinner.StopWithSuccess(fmt.Sprintf("Fetched run %s (%s)", f.run, c.Config.Source.Kind))
		}
	} else {
		q = src.Fetch(ctx)
	}

	if snap, ok := q.Snapshot(); ok {
		if n := snap.Normalized; n.Any() {
			c.Logger.Debug("normalized shape", "edges_dropped", n.EdgesDropped, "children_dropped", n.ChildrenDropped)
		}
		return snap, nil
	}
	if q.IsError {
		return nil, q.Err
	}
	return nil, errors.New(errors.ErrCodeNotFound, "run is %s, nothing to show", q.State())
}
