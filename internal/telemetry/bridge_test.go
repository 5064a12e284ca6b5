package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/event"
	"github.com/danmudi/netlab/internal/simulation"
	"github.com/danmudi/netlab/internal/testutil"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/models"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

type published struct {
	topic   string
	payload []byte
}

// fakePublisher records messages instead of talking to a broker.
type fakePublisher struct {
	mu     sync.Mutex
	msgs   []published
	err    error
	block  chan struct{}
	closed bool
}

func (f *fakePublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic: topic, payload: payload})
	return nil
}

func (f *fakePublisher) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakePublisher) messages() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "netlab/devices/d1/sensor", SensorTopic("netlab", "d1"))
	assert.Equal(t, "lab/x/devices/d1/actuator", ActuatorTopic("lab/x/", "d1"))
}

func TestBridge_SensorReadings(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	store := topology.NewStore(zap.NewNop(), topology.WithBus(bus))
	temp := store.AddDevice(models.DeviceTypeSensorTemp, nil)

	pub := &fakePublisher{}
	b := NewBridge(pub, "netlab", 0, zap.NewNop())
	b.Start(context.Background(), bus)

	driver := simulation.NewDriver(store, time.Hour, 0, zap.NewNop(), simulation.WithBus(bus))
	driver.Step()
	b.Stop()

	msgs := pub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, SensorTopic("netlab", temp.ID), msgs[0].topic)

	var m SensorMessage
	require.NoError(t, json.Unmarshal(msgs[0].payload, &m))
	assert.Equal(t, temp.ID, m.DeviceID)
	assert.Equal(t, models.DeviceTypeSensorTemp, m.Type)
	assert.Equal(t, uint64(1), m.Seq)
	assert.Equal(t, *temp.SensorValue, m.Value, "zero max step keeps the value")

	published, dropped, failed := b.Stats()
	assert.Equal(t, uint64(1), published)
	assert.Zero(t, dropped)
	assert.Zero(t, failed)
}

func TestBridge_ActuatorChanges(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	store := topology.NewStore(zap.NewNop(), topology.WithBus(bus))

	pub := &fakePublisher{}
	b := NewBridge(pub, "netlab", 0, zap.NewNop())
	b.Start(context.Background(), bus)

	led := store.AddDevice(models.DeviceTypeLED, nil)
	store.UpdateDevice(led.ID, topology.DevicePatch{Name: stringPtr("Status LED")})
	store.UpdateDevice(led.ID, topology.DevicePatch{ActuatorState: models.Bool(true)})
	store.AddDevice(models.DeviceTypePC, nil)
	b.Stop()

	msgs := pub.messages()
	require.Len(t, msgs, 2, "renames without a state change are not republished")

	var first, second ActuatorMessage
	require.NoError(t, json.Unmarshal(msgs[0].payload, &first))
	require.NoError(t, json.Unmarshal(msgs[1].payload, &second))
	assert.Equal(t, ActuatorTopic("netlab", led.ID), msgs[1].topic)
	assert.False(t, first.On)
	assert.True(t, second.On)
	assert.Equal(t, "Status LED", second.Name)
}

func TestBridge_DropsWhenQueueFull(t *testing.T) {
	pub := &fakePublisher{block: make(chan struct{})}
	b := NewBridge(pub, "netlab", 1, zap.NewNop())

	tick := pkgplugin.Event{Topic: simulation.TopicTick, Payload: simulation.TickEvent{
		Seq: 1,
		Readings: []topology.SensorReading{
			{DeviceID: "a"}, {DeviceID: "b"}, {DeviceID: "c"},
		},
	}}
	// Worker not started: one message fits, the rest are dropped.
	b.onTick(context.Background(), tick)
	_, dropped, _ := b.Stats()
	assert.Equal(t, uint64(2), dropped)
}

func TestBridge_CountsFailures(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	pub := &fakePublisher{err: errors.New("broker gone")}
	b := NewBridge(pub, "netlab", 0, zap.NewNop())
	b.Start(context.Background(), bus)

	_ = bus.Publish(context.Background(), pkgplugin.Event{Topic: simulation.TopicTick, Payload: simulation.TickEvent{
		Readings: []topology.SensorReading{{DeviceID: "a"}},
	}})
	b.Stop()

	_, _, failed := b.Stats()
	assert.Equal(t, uint64(1), failed)
}

func TestPlugin_Lifecycle(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	pub := &fakePublisher{}
	p := New(bus, WithPublisher(pub))
	require.NoError(t, p.Init(testutil.Viper(map[string]any{"topic_prefix": "lab"}), zap.NewNop()))
	assert.Equal(t, pkgplugin.HealthDown, p.Health(context.Background()).Status)

	require.NoError(t, p.Start(context.Background()))
	_ = bus.Publish(context.Background(), pkgplugin.Event{Topic: simulation.TopicTick, Payload: simulation.TickEvent{
		Readings: []topology.SensorReading{{DeviceID: "s1", Value: 21}},
	}})
	require.Eventually(t, func() bool { return len(pub.messages()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "lab/devices/s1/sensor", pub.messages()[0].topic)

	h := p.Health(context.Background())
	assert.Equal(t, pkgplugin.HealthOK, h.Status)
	assert.Equal(t, "1", h.Details["published"])

	require.NoError(t, p.Stop())
	assert.False(t, pub.closed, "injected publishers are owned by the caller")
}

func TestPlugin_InitValidation(t *testing.T) {
	p := New(event.NewBus(zap.NewNop()))
	assert.Error(t, p.Init(testutil.Viper(map[string]any{"broker": ""}), zap.NewNop()))
	assert.Error(t, p.Init(testutil.Viper(map[string]any{"broker": "tcp://x:1883", "qos": 3}), zap.NewNop()))
	assert.NoError(t, p.Init(testutil.Viper(map[string]any{"broker": "tcp://x:1883", "qos": 1}), zap.NewNop()))
}

func stringPtr(s string) *string { return &s }
