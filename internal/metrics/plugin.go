package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/plugin"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

var _ plugin.Plugin = (*Plugin)(nil)

// Plugin is the "metrics" module. Its handler is served at /metrics by
// the HTTP server rather than under /api/v1.
type Plugin struct {
	counts Counts
	bus    pkgplugin.EventBus
	logger *zap.Logger

	registry  *prometheus.Registry
	collector *Collector
	unsub     func()
}

// New creates the metrics plugin.
func New(counts Counts, bus pkgplugin.EventBus) *Plugin {
	return &Plugin{counts: counts, bus: bus}
}

func (p *Plugin) Name() string    { return "metrics" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger
	p.registry = prometheus.NewRegistry()

	if !config.IsSet("runtime") || config.GetBool("runtime") {
		p.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c, err := NewCollector(p.registry, p.counts)
	if err != nil {
		return err
	}
	p.collector = c
	p.logger.Info("metrics module initialized")
	return nil
}

func (p *Plugin) Start(_ context.Context) error {
	p.unsub = p.bus.SubscribeAll(p.collector.Observe)
	return nil
}

func (p *Plugin) Stop() error {
	if p.unsub != nil {
		p.unsub()
		p.unsub = nil
	}
	return nil
}

// Collector returns the metric set. Nil before Init.
func (p *Plugin) Collector() *Collector { return p.collector }

// Handler serves the registry. Nil before Init.
func (p *Plugin) Handler() http.Handler {
	if p.collector == nil {
		return nil
	}
	return p.collector.Handler()
}

func (p *Plugin) Routes() []plugin.Route { return nil }
