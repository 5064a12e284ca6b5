package simulation

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/plugin"
	"github.com/danmudi/netlab/internal/topology"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

var (
	_ plugin.Plugin           = (*Plugin)(nil)
	_ pkgplugin.HealthChecker = (*Plugin)(nil)
)

// Plugin exposes the tick driver as the "simulation" module.
type Plugin struct {
	store  *topology.Store
	bus    pkgplugin.EventBus
	logger *zap.Logger
	config *viper.Viper

	driver    *Driver
	autostart bool

	mu  sync.Mutex
	ctx context.Context
}

// New creates a simulation plugin over store.
func New(store *topology.Store, bus pkgplugin.EventBus) *Plugin {
	return &Plugin{store: store, bus: bus, ctx: context.Background()}
}

func (p *Plugin) Name() string    { return "simulation" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.config = config
	p.logger = logger

	interval := config.GetDuration("interval")
	maxStep := DefaultMaxStep
	if config.IsSet("max_step") {
		maxStep = config.GetFloat64("max_step")
	}
	p.autostart = config.GetBool("autostart")
	p.driver = NewDriver(p.store, interval, maxStep, logger, WithBus(p.bus))

	p.logger.Info("simulation module initialized",
		zap.Duration("interval", p.driver.Interval()),
		zap.Float64("max_step", p.driver.MaxStep()),
	)
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
	if p.autostart {
		return p.driver.Start(ctx)
	}
	return nil
}

func (p *Plugin) Stop() error {
	if p.driver != nil {
		p.driver.Stop()
	}
	return nil
}

// Driver returns the tick driver. Nil before Init.
func (p *Plugin) Driver() *Driver { return p.driver }

// Health implements pkgplugin.HealthChecker.
func (p *Plugin) Health(_ context.Context) pkgplugin.HealthStatus {
	status := "stopped"
	if p.driver.Running() {
		status = "running"
	}
	return pkgplugin.HealthStatus{
		Status:  pkgplugin.HealthOK,
		Details: map[string]string{"simulation": status},
	}
}

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "/status", Handler: p.handleStatus},
		{Method: "POST", Path: "/start", Handler: p.handleStart},
		{Method: "POST", Path: "/stop", Handler: p.handleStop},
		{Method: "POST", Path: "/step", Handler: p.handleStep},
	}
}

// StatusResponse describes the tick driver.
type StatusResponse struct {
	Running    bool    `json:"running"`
	IntervalMS int64   `json:"interval_ms"`
	MaxStep    float64 `json:"max_step"`
	Ticks      uint64  `json:"ticks"`
}

func (p *Plugin) status() StatusResponse {
	return StatusResponse{
		Running:    p.driver.Running(),
		IntervalMS: p.driver.Interval().Milliseconds(),
		MaxStep:    p.driver.MaxStep(),
		Ticks:      p.driver.Ticks(),
	}
}

// handleStatus reports the tick driver.
//
//	@Summary		Simulation status
//	@Tags			simulation
//	@Produce		json
//	@Success		200 {object} StatusResponse
//	@Router			/simulation/status [get]
func (p *Plugin) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, p.status())
}

// handleStart runs the loop under the plugin's lifetime, not the request's.
//
//	@Summary		Start simulation
//	@Tags			simulation
//	@Produce		json
//	@Success		200 {object} StatusResponse
//	@Failure		500 {object} map[string]any
//	@Router			/simulation/start [post]
func (p *Plugin) handleStart(w http.ResponseWriter, _ *http.Request) {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if err := p.driver.Start(ctx); err != nil {
		p.logger.Error("failed to start simulation", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p.status())
}

// handleStop halts the loop.
//
//	@Summary		Stop simulation
//	@Tags			simulation
//	@Produce		json
//	@Success		200 {object} StatusResponse
//	@Router			/simulation/stop [post]
func (p *Plugin) handleStop(w http.ResponseWriter, _ *http.Request) {
	p.driver.Stop()
	writeJSON(w, http.StatusOK, p.status())
}

// handleStep advances every sensor by one tick.
//
//	@Summary		Step simulation
//	@Tags			simulation
//	@Produce		json
//	@Success		200 {array} topology.SensorReading
//	@Router			/simulation/step [post]
func (p *Plugin) handleStep(w http.ResponseWriter, _ *http.Request) {
	readings := p.driver.Step()
	if readings == nil {
		readings = []topology.SensorReading{}
	}
	writeJSON(w, http.StatusOK, readings)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
