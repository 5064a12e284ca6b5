package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

// Registry manages the lifecycle of all registered plugins. Only plugins
// enabled by configuration and successfully initialized take part in
// Start, Stop, routing and health.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
	active  map[string]bool
	started []string
	logger  *zap.Logger
}

// NewRegistry creates a new plugin registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		active:  make(map[string]bool),
		logger:  logger,
	}
}

// Register adds a plugin to the registry.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}

	r.plugins[name] = p
	r.order = append(r.order, name)
	r.logger.Info("plugin registered", zap.String("name", name), zap.String("version", p.Version()))
	return nil
}

// InitAll initializes every plugin whose plugins.<name>.enabled key is
// true, handing it the plugins.<name> subtree.
func (r *Registry) InitAll(config *viper.Viper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		p := r.plugins[name]

		if enabled := config.GetBool("plugins." + name + ".enabled"); !enabled {
			r.logger.Info("plugin disabled, skipping", zap.String("name", name))
			continue
		}

		pluginConfig := config.Sub("plugins." + name)
		if pluginConfig == nil {
			pluginConfig = viper.New()
		}

		r.logger.Info("initializing plugin", zap.String("name", name))
		if err := p.Init(pluginConfig, r.logger.Named(name)); err != nil {
			return fmt.Errorf("failed to initialize plugin %q: %w", name, err)
		}
		r.active[name] = true
	}
	return nil
}

// StartAll starts all initialized plugins in registration order. When a
// plugin fails to start, the ones already started are stopped again.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		if !r.active[name] {
			continue
		}
		r.logger.Info("starting plugin", zap.String("name", name))
		if err := r.plugins[name].Start(ctx); err != nil {
			r.stopLocked()
			return fmt.Errorf("failed to start plugin %q: %w", name, err)
		}
		r.started = append(r.started, name)
	}
	return nil
}

// StopAll stops started plugins in reverse order.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Registry) stopLocked() {
	for i := len(r.started) - 1; i >= 0; i-- {
		name := r.started[i]
		r.logger.Info("stopping plugin", zap.String("name", name))
		if err := r.plugins[name].Stop(); err != nil {
			r.logger.Error("failed to stop plugin", zap.String("name", name), zap.Error(err))
		}
	}
	r.started = nil
}

// Get returns a plugin by name, enabled or not.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Enabled reports whether the named plugin was initialized.
func (r *Registry) Enabled(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[name]
}

// All returns all registered plugins in registration order.
func (r *Registry) All() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.plugins[name])
	}
	return result
}

// AllRoutes returns the routes of every initialized plugin, keyed by
// plugin name.
func (r *Registry) AllRoutes() map[string][]Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make(map[string][]Route)
	for _, name := range r.order {
		if !r.active[name] {
			continue
		}
		if pr := r.plugins[name].Routes(); len(pr) > 0 {
			routes[name] = pr
		}
	}
	return routes
}

// HealthAll collects the health of every initialized plugin. Plugins
// that do not implement HealthChecker report ok.
func (r *Registry) HealthAll(ctx context.Context) map[string]pkgplugin.HealthStatus {
	r.mu.RLock()
	checks := make(map[string]Plugin, len(r.active))
	for name := range r.active {
		checks[name] = r.plugins[name]
	}
	r.mu.RUnlock()

	out := make(map[string]pkgplugin.HealthStatus, len(checks))
	for name, p := range checks {
		if hc, ok := p.(pkgplugin.HealthChecker); ok {
			out[name] = hc.Health(ctx)
			continue
		}
		out[name] = pkgplugin.HealthStatus{Status: pkgplugin.HealthOK}
	}
	return out
}
