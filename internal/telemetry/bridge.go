// Package telemetry mirrors simulated sensor readings and actuator state
// onto an MQTT broker so external dashboards can follow a running lab.
package telemetry

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/simulation"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/models"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

// DefaultQueueSize bounds the messages waiting for the broker.
const DefaultQueueSize = 256

// SensorMessage is published to <prefix>/devices/<id>/sensor.
type SensorMessage struct {
	DeviceID  string            `json:"device_id"`
	Name      string            `json:"name"`
	Type      models.DeviceType `json:"type"`
	Value     float64           `json:"value"`
	Seq       uint64            `json:"seq"`
	Timestamp time.Time         `json:"timestamp"`
}

// ActuatorMessage is published to <prefix>/devices/<id>/actuator.
type ActuatorMessage struct {
	DeviceID  string            `json:"device_id"`
	Name      string            `json:"name"`
	Type      models.DeviceType `json:"type"`
	On        bool              `json:"on"`
	Timestamp time.Time         `json:"timestamp"`
}

// SensorTopic returns the topic for a device's sensor readings.
func SensorTopic(prefix, deviceID string) string {
	return strings.TrimRight(prefix, "/") + "/devices/" + deviceID + "/sensor"
}

// ActuatorTopic returns the topic for a device's actuator state.
func ActuatorTopic(prefix, deviceID string) string {
	return strings.TrimRight(prefix, "/") + "/devices/" + deviceID + "/actuator"
}

type message struct {
	topic   string
	payload []byte
}

// Bridge forwards bus events to a Publisher. Bus handlers only enqueue;
// a single worker publishes so a slow broker never stalls the tick loop.
type Bridge struct {
	pub    Publisher
	prefix string
	logger *zap.Logger

	queue chan message

	mu        sync.Mutex
	actuators map[string]bool
	unsub     []func()
	cancel    context.CancelFunc
	done      chan struct{}

	published atomic.Uint64
	dropped   atomic.Uint64
	failed    atomic.Uint64
}

// NewBridge creates a stopped bridge.
func NewBridge(pub Publisher, prefix string, queueSize int, logger *zap.Logger) *Bridge {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Bridge{
		pub:       pub,
		prefix:    prefix,
		logger:    logger,
		queue:     make(chan message, queueSize),
		actuators: make(map[string]bool),
	}
}

// Start subscribes to bus and launches the publish worker.
func (b *Bridge) Start(ctx context.Context, bus pkgplugin.EventBus) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	b.mu.Lock()
	b.cancel = cancel
	b.done = done
	b.unsub = []func(){
		bus.Subscribe(simulation.TopicTick, b.onTick),
		bus.Subscribe(topology.TopicDeviceUpdated, b.onDevice),
		bus.Subscribe(topology.TopicDeviceAdded, b.onDevice),
		bus.Subscribe(topology.TopicDeviceDeleted, b.onDeleted),
		bus.Subscribe(topology.TopicReplaced, b.onReplaced),
	}
	b.mu.Unlock()

	go b.run(ctx, done)
}

// Stop unsubscribes, publishes what is already queued and stops the
// worker.
func (b *Bridge) Stop() {
	b.mu.Lock()
	unsub, cancel, done := b.unsub, b.cancel, b.done
	b.unsub, b.cancel, b.done = nil, nil, nil
	b.mu.Unlock()

	for _, off := range unsub {
		off()
	}
	if cancel != nil {
		cancel()
		<-done
	}
}

// Stats reports delivery counters.
func (b *Bridge) Stats() (published, dropped, failed uint64) {
	return b.published.Load(), b.dropped.Load(), b.failed.Load()
}

func (b *Bridge) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case m := <-b.queue:
			b.deliver(ctx, m)
		case <-ctx.Done():
			b.drain()
			return
		}
	}
}

func (b *Bridge) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case m := <-b.queue:
			b.deliver(ctx, m)
		default:
			return
		}
	}
}

func (b *Bridge) deliver(ctx context.Context, m message) {
	if err := b.pub.Publish(ctx, m.topic, m.payload); err != nil {
		b.failed.Add(1)
		b.logger.Debug("telemetry publish failed", zap.String("topic", m.topic), zap.Error(err))
		return
	}
	b.published.Add(1)
}

func (b *Bridge) enqueue(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("telemetry encode failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	select {
	case b.queue <- message{topic: topic, payload: payload}:
	default:
		b.dropped.Add(1)
	}
}

func (b *Bridge) onTick(_ context.Context, e pkgplugin.Event) {
	tick, ok := e.Payload.(simulation.TickEvent)
	if !ok {
		return
	}
	for _, r := range tick.Readings {
		b.enqueue(SensorTopic(b.prefix, r.DeviceID), SensorMessage{
			DeviceID:  r.DeviceID,
			Name:      r.Name,
			Type:      r.Type,
			Value:     r.Value,
			Seq:       tick.Seq,
			Timestamp: e.Timestamp,
		})
	}
}

// onDevice publishes actuator state when it differs from the last value
// seen for that device.
func (b *Bridge) onDevice(_ context.Context, e pkgplugin.Event) {
	de, ok := e.Payload.(topology.DeviceEvent)
	if !ok || de.Device.ActuatorState == nil {
		return
	}
	d := de.Device
	on := *d.ActuatorState

	b.mu.Lock()
	prev, seen := b.actuators[d.ID]
	b.actuators[d.ID] = on
	b.mu.Unlock()
	if seen && prev == on {
		return
	}
	b.enqueue(ActuatorTopic(b.prefix, d.ID), ActuatorMessage{
		DeviceID:  d.ID,
		Name:      d.Name,
		Type:      d.Type,
		On:        on,
		Timestamp: e.Timestamp,
	})
}

func (b *Bridge) onDeleted(_ context.Context, e pkgplugin.Event) {
	if de, ok := e.Payload.(topology.DeviceDeletedEvent); ok {
		b.mu.Lock()
		delete(b.actuators, de.Device.ID)
		b.mu.Unlock()
	}
}

func (b *Bridge) onReplaced(context.Context, pkgplugin.Event) {
	b.mu.Lock()
	clear(b.actuators)
	b.mu.Unlock()
}
