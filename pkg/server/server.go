// Package server exposes column layering and graph layout over HTTP.
//
// # Routes
//
//	GET  /healthz
//	POST /v1/columns                          snapshot JSON → columns
//	POST /v1/graph                            snapshot JSON → node/edge layout
//	POST /v1/view?mode=graph|minimap          snapshot JSON → effective view
//	GET  /v1/tenants/{tenant}/runs/{run}/view run from the configured source
//	GET  /metrics                             Prometheus exposition
//
// Failed requests answer with {"error": CODE, "message": text} and the status
// from [errors.HTTPStatus]. A run that is still loading, or whose fetch
// failed, answers 204: there is nothing to render yet.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/runshape/pkg/buildinfo"
	"github.com/matzehuels/runshape/pkg/errors"
	"github.com/matzehuels/runshape/pkg/graphlayout"
	"github.com/matzehuels/runshape/pkg/run"
	"github.com/matzehuels/runshape/pkg/source"
	"github.com/matzehuels/runshape/pkg/view"
)

const (
	maxBodySize     = 8 << 20
	shutdownTimeout = 10 * time.Second
)

// Resolver returns the source of a remote run.
type Resolver func(tenant, runID string) (source.Source, error)

// Config configures a [Server].
type Config struct {
	Layout      graphlayout.Options
	DefaultMode view.Mode
	Memo        *view.Memo          // nil creates one with the default size
	Resolve     Resolver            // nil disables the remote run route
	Gatherer    prometheus.Gatherer // nil means the default gatherer
	Logger      *log.Logger
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	memo   *view.Memo
	logger *log.Logger
	router chi.Router
}

// New builds the server and its routes.
func New(cfg Config) (*Server, error) {
	if cfg.DefaultMode == "" {
		cfg.DefaultMode = view.DefaultMode
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	memo := cfg.Memo
	if memo == nil {
		var err error
		if memo, err = view.NewMemo(view.DefaultMemoSize, nil); err != nil {
			return nil, err
		}
	}

	s := &Server{cfg: cfg, memo: memo, logger: logger}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/columns", s.handleColumns)
		r.Post("/graph", s.handleGraph)
		r.Post("/view", s.handleView)
		r.Get("/tenants/{tenant}/runs/{run}/view", s.handleRunView)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Get().Version})
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	snap, err := s.decodeSnapshot(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cols := view.BuildColumns(r.Context(), snap, s.logger)
	writeJSON(w, http.StatusOK, cols)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	snap, err := s.decodeSnapshot(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.layoutOptions(r)
	layout, err := graphlayout.Build(r.Context(), snap.Tasks, snap.Shape, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if layout == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, layout)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	snap, err := s.decodeSnapshot(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.serveView(w, r, run.Ready(snap))
}

func (s *Server) handleRunView(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Resolve == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no run source configured"))
		return
	}
	src, err := s.cfg.Resolve(chi.URLParam(r, "tenant"), chi.URLParam(r, "run"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := src.Fetch(r.Context())
	if q.IsError {
		s.logger.Warn("run fetch failed", "tenant", chi.URLParam(r, "tenant"), "run", chi.URLParam(r, "run"), "err", q.Err)
	}
	s.serveView(w, r, q)
}

func (s *Server) serveView(w http.ResponseWriter, r *http.Request, q run.Query) {
	mode := s.cfg.DefaultMode
	if raw := r.URL.Query().Get("mode"); raw != "" {
		var err error
		if mode, err = view.ParseMode(raw); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	v, err := s.memo.Build(r.Context(), q, view.Request{
		Mode:   mode,
		Layout: s.layoutOptions(r),
		Logger: s.logger,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if v == nil {
		w.Header().Set("X-Query-State", q.State())
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// layoutOptions applies the engine and rankdir query parameters to the
// configured layout.
func (s *Server) layoutOptions(r *http.Request) graphlayout.Options {
	opts := s.cfg.Layout
	opts.Logger = s.logger
	q := r.URL.Query()
	if e := q.Get("engine"); e != "" {
		opts.Engine = e
	}
	if d := q.Get("rankdir"); d != "" {
		opts.RankDir = d
	}
	return opts
}

// =============================================================================
// Encoding
// =============================================================================

func (s *Server) decodeSnapshot(w http.ResponseWriter, r *http.Request) (*run.Snapshot, error) {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	defer body.Close()
	snap, err := run.Decode(body, run.FormatJSON)
	if err != nil {
		return nil, err
	}
	if n := snap.Normalized; n.Any() {
		s.logger.Debug("normalized snapshot", "request_id", RequestID(r.Context()),
			"edges_dropped", n.EdgesDropped, "children_dropped", n.ChildrenDropped)
	}
	return snap, nil
}

type errorBody struct {
	Error     errors.Code `json:"error"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{
		Error:     code,
		Message:   errors.UserMessage(err),
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
