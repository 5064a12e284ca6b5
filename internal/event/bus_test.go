package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/pkg/plugin"
)

func TestPublish_TopicThenWildcardOrder(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var order []string

	bus.SubscribeAll(func(_ context.Context, e plugin.Event) { order = append(order, "all:"+e.Topic) })
	bus.Subscribe("topology.device.added", func(_ context.Context, _ plugin.Event) { order = append(order, "added") })
	bus.Subscribe("topology.link.added", func(_ context.Context, _ plugin.Event) { order = append(order, "link") })

	require.NoError(t, bus.Publish(context.Background(), plugin.Event{Topic: "topology.device.added"}))
	require.NoError(t, bus.Publish(context.Background(), plugin.Event{Topic: "simulation.tick"}))

	assert.Equal(t, []string{"added", "all:topology.device.added", "all:simulation.tick"}, order)
}

func TestPublish_StampsTimestamp(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var got []time.Time
	bus.SubscribeAll(func(_ context.Context, e plugin.Event) { got = append(got, e.Timestamp) })

	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	_ = bus.Publish(context.Background(), plugin.Event{Topic: "a"})
	_ = bus.Publish(context.Background(), plugin.Event{Topic: "b", Timestamp: fixed})

	require.Len(t, got, 2)
	assert.False(t, got[0].IsZero())
	assert.Equal(t, time.UTC, got[0].Location())
	assert.Equal(t, fixed, got[1], "caller timestamps are kept")
}

func TestPublish_HandlersMayPublish(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var ticks int32

	bus.Subscribe("simulation.tick", func(_ context.Context, _ plugin.Event) {
		atomic.AddInt32(&ticks, 1)
	})
	bus.Subscribe("topology.device.updated", func(ctx context.Context, _ plugin.Event) {
		_ = bus.Publish(ctx, plugin.Event{Topic: "simulation.tick"})
	})

	done := make(chan struct{})
	go func() {
		_ = bus.Publish(context.Background(), plugin.Event{Topic: "topology.device.updated"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested publish deadlocked")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&ticks))
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var topic, all int32

	unsubTopic := bus.Subscribe("topology.replaced", func(_ context.Context, _ plugin.Event) {
		atomic.AddInt32(&topic, 1)
	})
	unsubAll := bus.SubscribeAll(func(_ context.Context, _ plugin.Event) {
		atomic.AddInt32(&all, 1)
	})

	_ = bus.Publish(context.Background(), plugin.Event{Topic: "topology.replaced"})
	unsubTopic()
	unsubAll()
	unsubTopic()
	_ = bus.Publish(context.Background(), plugin.Event{Topic: "topology.replaced"})

	assert.Equal(t, int32(1), atomic.LoadInt32(&topic))
	assert.Equal(t, int32(1), atomic.LoadInt32(&all))

	bus.mu.RLock()
	_, tracked := bus.topics["topology.replaced"]
	bus.mu.RUnlock()
	assert.False(t, tracked, "empty topics are dropped")
}

func TestPublishAsync(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var wg sync.WaitGroup
	var count int32

	wg.Add(2)
	bus.Subscribe("canvas.selection", func(_ context.Context, _ plugin.Event) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})
	bus.SubscribeAll(func(_ context.Context, _ plugin.Event) {
		atomic.AddInt32(&count, 1)
		wg.Done()
	})

	bus.PublishAsync(context.Background(), plugin.Event{Topic: "canvas.selection"})

	wg.Wait()
	assert.Equal(t, int32(2), atomic.LoadInt32(&count))
}

func TestHandlerPanicIsContained(t *testing.T) {
	bus := NewBus(zap.NewNop())
	var count int32

	bus.Subscribe("simulation.tick", func(_ context.Context, _ plugin.Event) {
		panic("bad reading")
	})
	bus.Subscribe("simulation.tick", func(_ context.Context, _ plugin.Event) {
		atomic.AddInt32(&count, 1)
	})

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), plugin.Event{Topic: "simulation.tick"})
	})
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}
