package source

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/runshape/pkg/buildinfo"
	"github.com/matzehuels/runshape/pkg/cache"
	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/observability"
	"github.com/matzehuels/runshape/pkg/run"
)

const (
	httpTimeout = 10 * time.Second

	// maxBodySize bounds a run-details response.
	maxBodySize = 32 << 20

	// DefaultURLTemplate is the workflow-run details endpoint. {base},
	// {tenant} and {run} are substituted; tenant and run are path-escaped.
	DefaultURLTemplate = "{base}/api/v1/stable/tenants/{tenant}/workflow-runs/{run}/details"

	httpNamespace = "run-details"
)

// HTTPConfig configures an [HTTP] source.
type HTTPConfig struct {
	BaseURL     string
	URLTemplate string // defaults to DefaultURLTemplate
	Tenant      string
	Run         string
	Token       string // sent as a bearer token when set

	Cache cache.Cache       // nil disables caching
	Keyer cache.Keyer       // defaults to cache.DefaultKeyer
	TTL   time.Duration     // cache entry lifetime
	Retry cache.RetryPolicy // defaults to cache.DefaultRetry

	Client *http.Client
	Logger *log.Logger
}

// HTTP fetches workflow-run details from the orchestration API.
type HTTP struct {
	url     string
	tenant  string
	run     string
	token   string
	cache   cache.Cache
	key     string
	ttl     time.Duration
	retry   cache.RetryPolicy
	client  *http.Client
	logger  *log.Logger
	refresh bool
}

// NewHTTP validates cfg and returns the source. A missing tenant or run is
// an INVALID_INPUT error.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if err := errors.ValidateTenantID(cfg.Tenant); err != nil {
		return nil, err
	}
	if err := errors.ValidateRunID(cfg.Run); err != nil {
		return nil, err
	}
	if err := errors.ValidateURL(cfg.BaseURL); err != nil {
		return nil, err
	}

	tmpl := cfg.URLTemplate
	if tmpl == "" {
		tmpl = DefaultURLTemplate
	}
	keyer := cfg.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	retry := cfg.Retry
	if retry.Attempts == 0 {
		retry = cache.DefaultRetry
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: httpTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &HTTP{
		url:    expandURL(tmpl, cfg.BaseURL, cfg.Tenant, cfg.Run),
		tenant: cfg.Tenant,
		run:    cfg.Run,
		token:  cfg.Token,
		cache:  c,
		key:    keyer.HTTPKey(httpNamespace, cfg.Tenant+"/"+cfg.Run),
		ttl:    cfg.TTL,
		retry:  retry,
		client: client,
		logger: logger,
	}, nil
}

func expandURL(tmpl, base, tenant, runID string) string {
	return strings.NewReplacer(
		"{base}", strings.TrimRight(base, "/"),
		"{tenant}", url.PathEscape(tenant),
		"{run}", url.PathEscape(runID),
	).Replace(tmpl)
}

// URL returns the resolved endpoint.
func (h *HTTP) URL() string { return h.url }

// Refresh makes the next fetches bypass cached responses.
func (h *HTTP) Refresh(refresh bool) { h.refresh = refresh }

// Fetch loads the run details, from cache when possible.
func (h *HTTP) Fetch(ctx context.Context) run.Query {
	snap, err := h.fetch(ctx)
	if err != nil {
		h.logger.Debug("fetch failed", "tenant", h.tenant, "run", h.run, "err", err)
		return run.Failed(err)
	}
	return run.Ready(snap)
}

func (h *HTTP) fetch(ctx context.Context) (*run.Snapshot, error) {
	if !h.refresh {
		data, ok, err := h.cache.Get(ctx, h.key)
		if err != nil {
			h.logger.Warn("cache read failed", "key", h.key, "err", err)
		}
		if ok {
			snap, err := run.DecodeRunDetails(bytes.NewReader(data))
			if err == nil {
				h.logger.Debug("run details from cache", "run", h.run)
				return snap, nil
			}
			_ = h.cache.Delete(ctx, h.key)
		}
	}

	var body []byte
	err := cache.Retry(ctx, h.retry, func() error {
		var err error
		body, err = h.get(ctx)
		return err
	})
	if err != nil {
		return nil, classify(err, h.run)
	}

	snap, err := run.DecodeRunDetails(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if n := snap.Normalized; n.Any() {
		h.logger.Debug("normalized run details", "run", h.run,
			"edges_dropped", n.EdgesDropped, "children_dropped", n.ChildrenDropped)
	}
	if err := h.cache.Set(ctx, h.key, body, h.ttl); err != nil {
		h.logger.Warn("cache write failed", "key", h.key, "err", err)
	}
	return snap, nil
}

func (h *HTTP) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := h.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

// classify maps fetch errors onto error codes.
func classify(err error, runID string) error {
	switch {
	case stderrors.Is(err, cache.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "run %s", runID)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "fetch run %s", runID)
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "fetch run %s", runID)
	}
}
