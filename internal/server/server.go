// Package server hosts the netlab HTTP API: core routes, canvas and
// catalog handlers, plugin routes, metrics and the event stream.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/plugin"
	"github.com/danmudi/netlab/internal/version"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

// RouteRegistrar is implemented by handlers that mount their own routes.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Option configures a Server.
type Option func(*Server)

// WithHandlers mounts additional route registrars, such as the canvas and
// catalog handlers.
func WithHandlers(hs ...RouteRegistrar) Option {
	return func(s *Server) { s.handlers = append(s.handlers, hs...) }
}

// WithMetrics serves h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithEvents serves the event stream at GET /api/v1/events.
func WithEvents(hub *Hub) Option {
	return func(s *Server) { s.hub = hub }
}

// WithAPIDocs serves the Swagger UI at /swagger/. The document is read
// from the swag registry, so the binary must import the generated docs
// package.
func WithAPIDocs() Option {
	return func(s *Server) { s.apiDocs = true }
}

// Server is the main netlab server.
type Server struct {
	httpServer *http.Server
	registry   *plugin.Registry
	logger     *zap.Logger
	mux        *http.ServeMux

	handlers []RouteRegistrar
	metrics  http.Handler
	hub      *Hub
	apiDocs  bool
}

// New creates a new Server instance.
func New(addr string, reg *plugin.Registry, logger *zap.Logger, opts ...Option) *Server {
	mux := http.NewServeMux()

	s := &Server{
		registry: reg,
		logger:   logger,
		mux:      mux,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.versionHeader(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.registerCoreRoutes()
	for _, h := range s.handlers {
		h.RegisterRoutes(mux)
	}
	s.mountPluginRoutes()

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/plugins", s.handlePlugins)
	s.mux.HandleFunc("/api/", s.handleUnknown)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
	if s.hub != nil {
		s.mux.Handle("GET /api/v1/events", s.hub)
	}
	if s.apiDocs {
		s.mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}
}

// mountPluginRoutes registers all plugin routes under /api/v1/{plugin}/.
func (s *Server) mountPluginRoutes() {
	allRoutes := s.registry.AllRoutes()
	for pluginName, routes := range allRoutes {
		for _, route := range routes {
			pattern := fmt.Sprintf("%s /api/v1/%s%s", route.Method, pluginName, route.Path)
			s.mux.HandleFunc(pattern, route.Handler)
			s.logger.Debug("mounted route",
				zap.String("plugin", pluginName),
				zap.String("pattern", pattern),
			)
		}
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown closes event stream clients, then gracefully shuts down the
// HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) versionHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Netlab-Version", version.Short())
		next.ServeHTTP(w, r)
	})
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string                            `json:"status"`
	Service string                            `json:"service"`
	Version map[string]string                 `json:"version"`
	Plugins map[string]pkgplugin.HealthStatus `json:"plugins"`
}

// handleHealth aggregates plugin health. Any plugin reporting down makes
// the server degraded; the response is still 200 so the UI can render it.
//
//	@Summary		Health check
//	@Tags			system
//	@Produce		json
//	@Success		200 {object} HealthResponse
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	plugins := s.registry.HealthAll(r.Context())
	status := pkgplugin.HealthOK
	for _, h := range plugins {
		if h.Status != pkgplugin.HealthOK {
			status = pkgplugin.HealthDegraded
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  status,
		Service: "netlab",
		Version: version.Map(),
		Plugins: plugins,
	})
}

type pluginResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Enabled bool   `json:"enabled"`
}

// handlePlugins returns the list of registered plugins.
//
//	@Summary		List plugins
//	@Tags			system
//	@Produce		json
//	@Success		200 {array} pluginResponse
//	@Router			/plugins [get]
func (s *Server) handlePlugins(w http.ResponseWriter, _ *http.Request) {
	plugins := s.registry.All()
	info := make([]pluginResponse, 0, len(plugins))
	for _, p := range plugins {
		info = append(info, pluginResponse{
			Name:    p.Name(),
			Version: p.Version(),
			Enabled: s.registry.Enabled(p.Name()),
		})
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleUnknown(w http.ResponseWriter, r *http.Request) {
	NotFound(w, "no route for "+r.Method+" "+r.URL.Path, r.URL.Path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
