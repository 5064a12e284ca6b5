// Package simulation perturbs sensor readings on a fixed interval while
// the lab is running.
package simulation

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/topology"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

// Bus topics.
const (
	TopicTick    = "simulation.tick"
	TopicStarted = "simulation.started"
	TopicStopped = "simulation.stopped"
)

// Defaults used when the configuration leaves a value unset.
const (
	DefaultInterval = time.Second
	DefaultMaxStep  = 5.0
)

// TickEvent is the payload of simulation.tick.
type TickEvent struct {
	Seq      uint64                   `json:"seq"`
	Readings []topology.SensorReading `json:"readings"`
}

// StateEvent is the payload of simulation.started and simulation.stopped.
type StateEvent struct {
	Interval time.Duration `json:"interval"`
	MaxStep  float64       `json:"max_step"`
}

// Option configures a Driver.
type Option func(*Driver)

// WithBus publishes simulation events on bus.
func WithBus(bus pkgplugin.EventBus) Option {
	return func(d *Driver) { d.bus = bus }
}

// WithRand sets the random source for sensor drift.
func WithRand(r *rand.Rand) Option {
	return func(d *Driver) { d.rng = r }
}

// Driver runs the tick loop. Each tick moves every sensor by a uniform
// step in [-maxStep, maxStep], clamped to the sensor's range, in one
// store write.
type Driver struct {
	store    *topology.Store
	interval time.Duration
	maxStep  float64
	bus      pkgplugin.EventBus
	logger   *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
	seq   atomic.Uint64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewDriver creates a stopped driver.
func NewDriver(store *topology.Store, interval time.Duration, maxStep float64, logger *zap.Logger, opts ...Option) *Driver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxStep < 0 {
		maxStep = -maxStep
	}
	d := &Driver{
		store:    store,
		interval: interval,
		maxStep:  maxStep,
		logger:   logger,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x73696d)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Interval returns the tick period.
func (d *Driver) Interval() time.Duration { return d.interval }

// MaxStep returns the largest change a single tick applies.
func (d *Driver) MaxStep() float64 { return d.maxStep }

// Ticks returns the number of ticks applied so far.
func (d *Driver) Ticks() uint64 { return d.seq.Load() }

// Running reports whether the tick loop is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Start launches the tick loop. It is a no-op when already running. The
// loop ends when ctx is cancelled or Stop is called.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	d.running = true
	d.cancel = cancel
	d.done = make(chan struct{})
	done := d.done
	d.mu.Unlock()

	go d.run(loopCtx, done)

	d.logger.Info("simulation started",
		zap.Duration("interval", d.interval),
		zap.Float64("max_step", d.maxStep),
	)
	d.publish(TopicStarted, StateEvent{Interval: d.interval, MaxStep: d.maxStep})
	return nil
}

// Stop ends the tick loop and waits for it to exit; no tick is applied
// after Stop returns. It must not be called from a simulation.tick
// handler.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	cancel, done := d.cancel, d.done
	d.running = false
	d.cancel = nil
	d.mu.Unlock()

	cancel()
	<-done

	d.logger.Info("simulation stopped", zap.Uint64("ticks", d.seq.Load()))
	d.publish(TopicStopped, StateEvent{Interval: d.interval, MaxStep: d.maxStep})
}

func (d *Driver) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.mu.Lock()
			if d.done == done {
				d.running = false
			}
			d.mu.Unlock()
			return
		case <-ticker.C:
			// A cancelled loop applies no further ticks.
			if ctx.Err() != nil {
				continue
			}
			d.Step()
		}
	}
}

// Step applies one tick immediately, whether or not the loop is running.
func (d *Driver) Step() []topology.SensorReading {
	readings := d.store.UpdateSensors(func(r topology.SensorReading) float64 {
		return r.Value + d.drift()
	})
	seq := d.seq.Add(1)
	if len(readings) > 0 {
		d.logger.Debug("simulation tick", zap.Uint64("seq", seq), zap.Int("sensors", len(readings)))
	}
	d.publish(TopicTick, TickEvent{Seq: seq, Readings: readings})
	return readings
}

func (d *Driver) drift() float64 {
	d.rngMu.Lock()
	defer d.rngMu.Unlock()
	return (d.rng.Float64()*2 - 1) * d.maxStep
}

func (d *Driver) publish(topic string, payload any) {
	if d.bus == nil {
		return
	}
	_ = d.bus.Publish(context.Background(), pkgplugin.Event{
		Topic:     topic,
		Source:    "simulation",
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
