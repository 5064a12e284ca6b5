package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/llm/ollama"
	"github.com/danmudi/netlab/internal/plugin"
	"github.com/danmudi/netlab/internal/server"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/llm"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

var (
	_ plugin.Plugin           = (*Plugin)(nil)
	_ pkgplugin.HealthChecker = (*Plugin)(nil)
)

// Plugin exposes the tutor and command simulator as the "tutor" module.
type Plugin struct {
	store    *topology.Store
	bus      pkgplugin.EventBus
	provider llm.Provider
	logger   *zap.Logger

	service     *Service
	model       string
	providerURL string
	unwatch     func()
}

// PluginOption configures a Plugin.
type PluginOption func(*Plugin)

// WithProvider uses provider instead of the configured Ollama endpoint.
func WithProvider(provider llm.Provider) PluginOption {
	return func(p *Plugin) { p.provider = provider }
}

// New creates the tutor plugin over store.
func New(store *topology.Store, bus pkgplugin.EventBus, opts ...PluginOption) *Plugin {
	p := &Plugin{store: store, bus: bus}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Name() string    { return "tutor" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger
	p.model = config.GetString("model")
	p.providerURL = config.GetString("provider_url")

	if p.provider == nil && p.providerURL != "" {
		p.provider = ollama.New(p.providerURL, p.model, ollama.WithTimeout(config.GetDuration("timeout")))
	}
	if p.provider == nil {
		p.logger.Warn("no tutor provider configured, replies will use fallbacks")
	}

	perMinute := DefaultRatePerMinute
	if config.IsSet("rate_per_minute") {
		perMinute = config.GetInt("rate_per_minute")
	}
	p.service = NewService(p.provider, p.store, logger,
		WithRatePerMinute(perMinute),
		WithCommandModel(config.GetString("command_model")),
	)

	p.logger.Info("tutor module initialized",
		zap.String("provider_url", p.providerURL),
		zap.String("model", p.model),
		zap.Int("rate_per_minute", perMinute),
	)
	return nil
}

func (p *Plugin) Start(_ context.Context) error {
	if p.bus != nil {
		p.unwatch = p.service.Watch(p.bus)
	}
	return nil
}

func (p *Plugin) Stop() error {
	if p.unwatch != nil {
		p.unwatch()
		p.unwatch = nil
	}
	return nil
}

// Service returns the tutor service. Nil before Init.
func (p *Plugin) Service() *Service { return p.service }

// Health reports degraded when no provider is configured.
func (p *Plugin) Health(_ context.Context) pkgplugin.HealthStatus {
	if p.provider == nil {
		return pkgplugin.HealthStatus{Status: pkgplugin.HealthDegraded, Message: "no provider configured"}
	}
	return pkgplugin.HealthStatus{
		Status:  pkgplugin.HealthOK,
		Details: map[string]string{"model": p.model},
	}
}

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/ask", Handler: p.handleAsk},
		{Method: "POST", Path: "/devices/{id}/command", Handler: p.handleCommand},
		{Method: "GET", Path: "/devices/{id}/transcript", Handler: p.handleTranscript},
	}
}

// AskRequest is the body of POST /tutor/ask.
type AskRequest struct {
	History  []llm.Message `json:"history"`
	Question string        `json:"question"`
}

// CommandRequest is the body of POST /tutor/devices/{id}/command.
type CommandRequest struct {
	Command string `json:"command"`
}

// handleAsk answers a lab question with the topology as context.
//
//	@Summary		Ask the tutor
//	@Tags			tutor
//	@Accept			json
//	@Produce		json
//	@Param			body body AskRequest true "Question and prior conversation"
//	@Success		200 {object} Answer
//	@Failure		400 {object} map[string]any
//	@Failure		429 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/tutor/ask [post]
func (p *Plugin) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		server.BadRequest(w, "question is required", r.URL.Path)
		return
	}
	ans, err := p.service.Ask(r.Context(), req.History, req.Question)
	if err != nil {
		p.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ans)
}

// handleCommand simulates one console command on a device.
//
//	@Summary		Run console command
//	@Description	clear empties the console without calling the model.
//	@Tags			tutor
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Device ID"
//	@Param			body body CommandRequest true "Command line"
//	@Success		200 {object} CommandResult
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Failure		429 {object} map[string]any
//	@Router			/tutor/devices/{id}/command [post]
func (p *Plugin) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	cmd := strings.TrimSpace(req.Command)
	if cmd == "" {
		server.BadRequest(w, "command is required", r.URL.Path)
		return
	}
	res, err := p.service.RunCommand(r.Context(), r.PathValue("id"), cmd)
	if err != nil {
		p.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleTranscript returns the console history of a device.
//
//	@Summary		Get console transcript
//	@Tags			tutor
//	@Produce		json
//	@Param			id path string true "Device ID"
//	@Success		200 {array} TranscriptEntry
//	@Failure		404 {object} map[string]any
//	@Router			/tutor/devices/{id}/transcript [get]
func (p *Plugin) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := p.store.Device(id); !ok {
		server.NotFound(w, "device not found", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, p.service.Transcript(id))
}

func (p *Plugin) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, topology.ErrNotFound):
		server.NotFound(w, "device not found", r.URL.Path)
	case errors.Is(err, ErrRateLimited):
		server.RateLimited(w, "too many tutor requests, try again shortly", r.URL.Path)
	default:
		p.logger.Error("tutor request failed", zap.String("path", r.URL.Path), zap.Error(err))
		server.InternalError(w, "tutor request failed", r.URL.Path)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
