package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/sttts/kmanage/internal/assistant"
	"github.com/sttts/kmanage/internal/backend"
	"github.com/sttts/kmanage/internal/backend/kube"
)

const (
	// DefaultAddr is where the gateway listens.
	DefaultAddr = ":8080"
	// DefaultUpdateTimeout bounds a PUT, which for pods waits for the old
	// pod to disappear.
	DefaultUpdateTimeout = 60 * time.Second

	maxBodyBytes = 4 << 20
)

// ClusterInfo serves the read-only cluster endpoints.
type ClusterInfo interface {
	ClusterName(ctx context.Context) (string, error)
	Nodes(ctx context.Context) ([]kube.NodeInfo, error)
}

// Completer answers drafting requests with a raw chat completion.
type Completer interface {
	Complete(ctx context.Context, req assistant.Request) ([]byte, error)
}

// Server exposes a Backend under /api.
type Server struct {
	backend       backend.Backend
	info          ClusterInfo
	completer     Completer
	origins       []string
	updateTimeout time.Duration
	log           logr.Logger

	router *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithClusterInfo enables /api/cluster-name and /api/node-details.
func WithClusterInfo(info ClusterInfo) Option {
	return func(s *Server) { s.info = info }
}

// WithCompleter enables /api/groq.
func WithCompleter(c Completer) Option {
	return func(s *Server) { s.completer = c }
}

// WithAllowedOrigins sets the CORS origins. Default is any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// WithUpdateTimeout bounds PUT requests.
func WithUpdateTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.updateTimeout = d
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(log logr.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New returns a gateway for b.
func New(b backend.Backend, opts ...Option) *Server {
	s := &Server{
		backend:       b,
		origins:       []string{"*"},
		updateTimeout: DefaultUpdateTimeout,
		log:           ctrl.Log.WithName("server"),
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})).Methods(http.MethodGet)
	r.Handle("/metrics", metricsHandler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	handle := func(route, path string, fn http.HandlerFunc, methods ...string) {
		api.Handle(path, instrument(route, fn)).Methods(methods...)
	}
	handle("namespaces", "/namespaces", s.listNamespaces, http.MethodGet)
	handle("list", "/{plural:pods|deployments}/{namespace}", s.list, http.MethodGet)
	handle("create", "/{kind:pod|deployment}/{namespace}/{name}", s.create, http.MethodPost)
	handle("update", "/{kind:pod|deployment}/{namespace}/{name}", s.update, http.MethodPut)
	handle("delete", "/{kind:pod|deployment}/{namespace}/{name}", s.delete, http.MethodDelete)
	handle("logs", "/pod/{namespace}/{name}/logs", s.logs, http.MethodGet)
	handle("yaml", "/{kind:pod|deployment}/{namespace}/{name}/yaml", s.manifest, http.MethodGet)
	handle("groq", "/groq", s.draft, http.MethodPost)
	handle("cluster-name", "/cluster-name", s.clusterName, http.MethodGet)
	handle("node-details", "/node-details", s.nodeDetails, http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, s.log, notFound(req))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, s.log, methodNotAllowed(req))
	})
	return r
}

// Handler returns the router wrapped with recovery, access logging and CORS.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.log}), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CustomLoggingHandler(io.Discard, h, s.accessLog)
	return handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	s.log.V(1).Info("request", "method", p.Request.Method, "path", p.URL.Path, "code", p.StatusCode, "bytes", p.Size, "duration", time.Since(p.TimeStamp))
}

type recoveryLogger struct {
	log logr.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.log.Error(nil, "panic serving request", "detail", fmt.Sprint(v...))
}
