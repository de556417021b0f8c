package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/powersuspend/powersuspend-go/pkg/control"
)

// Defaults for ServerConfig.
const (
	DefaultListenAddress  = ":8080"
	DefaultRequestTimeout = 20 * time.Second
	DefaultShutdownGrace  = 15 * time.Second
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// ListenAddress is the TCP address to bind. Port 0 picks a free port.
	ListenAddress string

	// RequestTimeout bounds non-streaming requests.
	RequestTimeout time.Duration

	// EventBuffer is the per-subscriber notification queue size.
	EventBuffer int

	// Logger receives request and subscriber logs.
	Logger *slog.Logger
}

// DefaultServerConfig returns the default configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddress:  DefaultListenAddress,
		RequestTimeout: DefaultRequestTimeout,
		EventBuffer:    DefaultEventBuffer,
	}
}

// Server serves the HTTP API for one coordinator.
type Server struct {
	config   ServerConfig
	api      *API
	http     *http.Server
	listener net.Listener
}

// NewServer creates a server for the given control surface and coordinator.
func NewServer(config ServerConfig, surface *control.Surface, coordinator Coordinator) *Server {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	api := &API{
		surface:     surface,
		coordinator: coordinator,
		logger:      config.Logger,
		eventBuffer: config.EventBuffer,
	}
	s := &Server{config: config, api: api}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RecoverJSON(s.api))
	r.Use(RequestLogger(s.api))

	// The event stream is long-lived and stays outside the timeout group.
	r.Get("/api/v1/events", s.api.Events)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
		r.Get("/healthz", s.api.Health)
		r.Route("/api/v1", func(api chi.Router) {
			api.Get("/attributes", s.api.ListAttributes)
			api.Get("/attributes/{name}", s.api.GetAttribute)
			api.Put("/attributes/{name}", s.api.PutAttribute)
			api.Post("/triggers/{source}", s.api.PostTrigger)
			api.Get("/handlers", s.api.ListHandlers)
		})
	})
	return r
}

// Listen binds the listen address. It is separate from Serve so callers
// can learn the bound port before serving.
func (s *Server) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Port returns the bound TCP port, or 0 before Listen.
func (s *Server) Port() uint16 {
	if s.listener == nil {
		return 0
	}
	if addr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return uint16(addr.Port)
	}
	return 0
}

// Serve serves until ctx is cancelled, then shuts down gracefully.
// Listen is called first if it has not been.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}
	// Event streams outlive hijacking; tie them to ctx.
	s.http.BaseContext = func(net.Listener) context.Context { return ctx }
	return RunServer(ctx, s.http, s.listener, s.config.Logger)
}

// RunServer serves on ln until ctx is done.
func RunServer(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownGrace)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", "err", err)
			return err
		}
		return nil
	}
}
