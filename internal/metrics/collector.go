// Package metrics exports lab activity as Prometheus metrics.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmudi/netlab/internal/simulation"
	"github.com/danmudi/netlab/internal/topology"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

// Counts reports the current size of the topology.
type Counts interface {
	Counts() (devices, links int)
}

// Collector bundles the netlab metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	TopologyEvents    *prometheus.CounterVec
	SimulationTicks   prometheus.Counter
	LinksRejected     *prometheus.CounterVec
	SimulationRunning prometheus.Gauge
}

// NewCollector registers the metrics against reg, defaulting to the
// global registry when nil. Device and link gauges read counts on scrape.
func NewCollector(reg prometheus.Registerer, counts Counts) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlab_topology_events_total",
		Help: "Topology and canvas events published on the bus, by topic.",
	}, []string{"topic"}), "netlab_topology_events_total")
	if err != nil {
		return nil, err
	}
	rejected, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "netlab_links_rejected_total",
		Help: "Link requests rejected by the topology store, by reason.",
	}, []string{"reason"}), "netlab_links_rejected_total")
	if err != nil {
		return nil, err
	}
	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "netlab_simulation_ticks_total",
		Help: "Sensor ticks applied by the simulation driver.",
	}), "netlab_simulation_ticks_total")
	if err != nil {
		return nil, err
	}
	running, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "netlab_simulation_running",
		Help: "1 while the simulation tick loop runs.",
	}), "netlab_simulation_running")
	if err != nil {
		return nil, err
	}

	if counts != nil {
		devices := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "netlab_devices",
			Help: "Devices on the canvas.",
		}, func() float64 {
			d, _ := counts.Counts()
			return float64(d)
		})
		links := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "netlab_links",
			Help: "Links on the canvas.",
		}, func() float64 {
			_, l := counts.Counts()
			return float64(l)
		})
		for _, c := range []prometheus.Collector{devices, links} {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					return nil, err
				}
			}
		}
	}

	return &Collector{
		gatherer:          gatherer,
		TopologyEvents:    events,
		SimulationTicks:   ticks,
		LinksRejected:     rejected,
		SimulationRunning: running,
	}, nil
}

// Observe updates the metrics for one bus event. It has the
// pkgplugin.EventHandler signature.
func (c *Collector) Observe(_ context.Context, e pkgplugin.Event) {
	switch {
	case e.Topic == simulation.TopicTick:
		c.SimulationTicks.Inc()
	case e.Topic == simulation.TopicStarted:
		c.SimulationRunning.Set(1)
	case e.Topic == simulation.TopicStopped:
		c.SimulationRunning.Set(0)
	case strings.HasPrefix(e.Topic, "topology.") || strings.HasPrefix(e.Topic, "canvas."):
		c.TopologyEvents.WithLabelValues(e.Topic).Inc()
		if e.Topic == topology.TopicLinkRejected {
			if p, ok := e.Payload.(topology.LinkRejectedEvent); ok {
				c.LinksRejected.WithLabelValues(p.Reason).Inc()
			}
		}
	}
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
