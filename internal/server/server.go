// Package server exposes relation queries over HTTP.
//
// Routes (all GET, all JSON unless noted):
//
//	/healthz                      liveness and family size
//	/people                       every person, sorted by name
//	/people/{name}                one person
//	/people/{name}/connections    the person's connection index
//	/relation?from=A&to=B         how A is related to B
//	/matrix?names=A,B,C           pairwise relations (everyone if names is empty)
//	/graph?format=svg|dot         the family diagram (image/svg+xml or text/vnd.graphviz)
//
// Errors are returned as {"error": "...", "code": "..."} with a status
// derived from the code: 400 for invalid input, 404 for unknown people, 429
// when rate limited.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	kerrors "github.com/matzehuels/kinship/pkg/errors"
	"github.com/matzehuels/kinship/pkg/pipeline"
)

// Options tunes the HTTP server.
type Options struct {
	// RateLimit is the sustained number of requests per second accepted from
	// all clients together. Zero disables limiting.
	RateLimit float64
	Burst     int

	// Timeout bounds the handling of one request.
	Timeout time.Duration
}

// Server answers queries about one loaded family.
type Server struct {
	runner  *pipeline.Runner
	family  *pipeline.Family
	logger  *log.Logger
	limiter *rate.Limiter
	timeout time.Duration
}

// New returns a server for fam. The runner and its cache are shared by all
// requests.
func New(runner *pipeline.Runner, fam *pipeline.Family, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner:  runner,
		family:  fam,
		logger:  logger.WithPrefix("http"),
		timeout: opts.Timeout,
	}
	if opts.RateLimit > 0 {
		burst := max(opts.Burst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return s
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.logRequests)
	if s.limiter != nil {
		r.Use(s.rateLimit)
	}
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/people", s.handlePeople)
	r.Get("/people/{name}", s.handlePerson)
	r.Get("/people/{name}/connections", s.handleConnections)
	r.Get("/relation", s.handleRelation)
	r.Get("/matrix", s.handleMatrix)
	r.Get("/graph", s.handleGraph)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, kerrors.New(kerrors.ErrCodeNotFound, "no such route: %s", r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully, giving in-flight requests five seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "people", s.family.Graph.Len())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("stopped")
	return nil
}
