package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glint-ui/glint/pkg/pages"
)

// Server owns the HTTP listener, the page registry, and every live
// session. Typical use:
//
//	srv := server.New(nil, logger)
//	srv.RegisterPage("/", pages.Home)
//	err := srv.ListenAndServe()
type Server struct {
	config *ServerConfig
	logger *slog.Logger

	pages       *pages.Registry
	broadcaster *Broadcaster
	dispatcher  *Dispatcher
	navigator   *Navigator
	metrics     *Metrics

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New creates a server. config may be nil for defaults; logger may be nil
// for slog.Default().
func New(config *ServerConfig, logger *slog.Logger) *Server {
	config = config.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	var metrics *Metrics
	if !config.DisableMetrics {
		opts := []MetricsOption{WithNamespace(config.MetricsNamespace)}
		if config.MetricsRegistry != nil {
			opts = append(opts, WithRegistry(config.MetricsRegistry))
		}
		metrics = NewMetrics(opts...)
	}

	reg := pages.NewRegistry()
	broadcaster := NewBroadcaster(logger)
	broadcaster.metrics = metrics

	srv := &Server{
		config:      config,
		logger:      logger,
		pages:       reg,
		broadcaster: broadcaster,
		dispatcher:  NewDispatcher(logger, metrics),
		navigator:   NewNavigator(reg, logger, metrics),
		metrics:     metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}

	srv.httpSrv = &http.Server{
		Addr:              config.Address,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	return srv
}

// RegisterPage installs a page at an exact route.
func (srv *Server) RegisterPage(route string, fn pages.PageFunc) {
	srv.pages.Register(route, fn)
}

// Pages returns the server's page registry.
func (srv *Server) Pages() *pages.Registry {
	return srv.pages
}

// Broadcaster returns the server's session registry, for application code
// pushing updates outside any one session's handlers.
func (srv *Server) Broadcaster() *Broadcaster {
	return srv.broadcaster
}

// Navigator returns the server's navigator, for handlers that move their
// own session to a different route.
func (srv *Server) Navigator() *Navigator {
	return srv.navigator
}

// Handler returns the HTTP routes: the websocket endpoint, health, and
// Prometheus metrics.
func (srv *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", srv.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if !srv.config.DisableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/*", srv.handlePage)
	return r
}

// ListenAndServe runs the server until Shutdown or a listener error.
func (srv *Server) ListenAndServe() error {
	srv.logger.Info("listening", "address", srv.config.Address)
	if err := srv.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections, tells every session the server is
// going away, and closes them. Bounded by the configured shutdown timeout
// when ctx carries no earlier deadline.
func (srv *Server) Shutdown(ctx context.Context) error {
	srv.logger.Info("shutting down", "sessions", srv.broadcaster.Count())

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, srv.config.ShutdownTimeout)
		defer cancel()
	}

	for _, s := range srv.broadcaster.snapshot() {
		s.NotifyShutdown()
		s.Close()
	}
	return srv.httpSrv.Shutdown(ctx)
}
