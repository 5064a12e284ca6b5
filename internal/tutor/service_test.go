package tutor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/event"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/llm"
	"github.com/danmudi/netlab/pkg/models"
)

// mockProvider implements llm.Provider for testing.
type mockProvider struct {
	mu           sync.Mutex
	prompts      []string
	chats        [][]llm.Message
	opts         []llm.CallOptions
	chatFunc     func(ctx context.Context, messages []llm.Message) (*llm.Response, error)
	generateFunc func(ctx context.Context, prompt string) (*llm.Response, error)
}

func (m *mockProvider) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, llm.ApplyOptions(opts...))
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return &llm.Response{Content: "Reply from 192.168.1.2: bytes=32 time<1ms TTL=64", Model: "mock-model", Done: true}, nil
}

func (m *mockProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	m.mu.Lock()
	m.chats = append(m.chats, messages)
	m.opts = append(m.opts, llm.ApplyOptions(opts...))
	m.mu.Unlock()
	if m.chatFunc != nil {
		return m.chatFunc(ctx, messages)
	}
	return &llm.Response{Content: "A switch forwards frames by MAC address.", Model: "mock-model", Done: true}, nil
}

func (m *mockProvider) lastOpts() llm.CallOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts[len(m.opts)-1]
}

func newLab(t *testing.T) (*topology.Store, models.Device, models.Device, models.Device) {
	t.Helper()
	store := topology.NewStore(zap.NewNop())
	pc := store.AddDevice(models.DeviceTypePC, nil)
	board := store.AddDevice(models.DeviceTypeArduino, nil)
	sensor := store.AddDevice(models.DeviceTypeSensorTemp, nil)
	_, ok := store.AddLink(board.ID, sensor.ID, models.CableGPIO)
	require.True(t, ok)
	return store, pc, board, sensor
}

func TestAsk(t *testing.T) {
	store, _, _, _ := newLab(t)
	mp := &mockProvider{}
	s := NewService(mp, store, zap.NewNop())

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "Menene router?"},
		{Role: llm.RoleSystem, Content: "Router na haɗa networks."},
	}
	ans, err := s.Ask(context.Background(), history, "What does a switch do?")
	require.NoError(t, err)

	assert.Equal(t, "A switch forwards frames by MAC address.", ans.Text)
	assert.Equal(t, "mock-model", ans.Model)
	assert.False(t, ans.Fallback)
	assert.False(t, ans.Stale)

	require.Len(t, mp.chats, 1)
	sent := mp.chats[0]
	require.Len(t, sent, 3)
	assert.Equal(t, llm.RoleAssistant, sent[1].Role, "console replies are sent as assistant turns")
	assert.Equal(t, llm.RoleUser, sent[2].Role)
	assert.Equal(t, "What does a switch do?", sent[2].Content)

	system := mp.lastOpts().System
	assert.Contains(t, system, "Hausa")
	assert.Contains(t, system, "Current Lab Context: Topology Devices:")
	assert.Contains(t, system, "Total Links: 1")
}

func TestAsk_Fallbacks(t *testing.T) {
	store, _, _, _ := newLab(t)

	failing := &mockProvider{chatFunc: func(context.Context, []llm.Message) (*llm.Response, error) {
		return nil, llm.NewProviderError(llm.ErrCodeServerError, "down", nil)
	}}
	ans, err := NewService(failing, store, zap.NewNop()).Ask(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, FallbackTutor, ans.Text)
	assert.True(t, ans.Fallback)

	empty := &mockProvider{chatFunc: func(context.Context, []llm.Message) (*llm.Response, error) {
		return &llm.Response{Content: "  ", Done: true}, nil
	}}
	ans, err = NewService(empty, store, zap.NewNop()).Ask(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, EmptyTutor, ans.Text)

	ans, err = NewService(nil, store, zap.NewNop()).Ask(context.Background(), nil, "hi")
	require.NoError(t, err)
	assert.Equal(t, FallbackTutor, ans.Text)
}

func TestRunCommand_TerminalPrompt(t *testing.T) {
	store, pc, _, _ := newLab(t)
	mp := &mockProvider{}
	s := NewService(mp, store, zap.NewNop(), WithCommandModel("fast"))

	res, err := s.RunCommand(context.Background(), pc.ID, "ping 192.168.1.2")
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.Contains(t, res.Output, "Reply from")

	prompt := mp.prompts[0]
	assert.Contains(t, prompt, "network terminal simulator")
	assert.Contains(t, prompt, `"ping 192.168.1.2"`)
	assert.Contains(t, prompt, "show ip interface brief")
	assert.Contains(t, prompt, pc.ID)
	assert.Equal(t, "fast", mp.lastOpts().Model)

	tr := s.Transcript(pc.ID)
	require.Len(t, tr, 2)
	assert.Equal(t, "ping 192.168.1.2", tr[0].Content)
	assert.Equal(t, res.Output, tr[1].Content)
}

func TestRunCommand_MicrocontrollerPrompt(t *testing.T) {
	store, _, board, sensor := newLab(t)
	store.UpdateSensors(func(topology.SensorReading) float64 { return 42 })
	mp := &mockProvider{}
	s := NewService(mp, store, zap.NewNop())

	_, err := s.RunCommand(context.Background(), board.ID, "run")
	require.NoError(t, err)

	prompt := mp.prompts[0]
	assert.Contains(t, prompt, "IoT Microcontroller Simulator")
	assert.Contains(t, prompt, topology.StarterProgram)
	assert.Contains(t, prompt, `"name":"`+sensor.Name+`"`)
	assert.Contains(t, prompt, `"currentValue":42`)
	assert.NotContains(t, prompt, "Network State")
}

func TestRunCommand_Fallbacks(t *testing.T) {
	store, pc, _, _ := newLab(t)

	failing := &mockProvider{generateFunc: func(context.Context, string) (*llm.Response, error) {
		return nil, errors.New("boom")
	}}
	res, err := NewService(failing, store, zap.NewNop()).RunCommand(context.Background(), pc.ID, "ipconfig")
	require.NoError(t, err)
	assert.Equal(t, FallbackCommand, res.Output)
	assert.True(t, res.Fallback)

	empty := &mockProvider{generateFunc: func(context.Context, string) (*llm.Response, error) {
		return &llm.Response{}, nil
	}}
	res, err = NewService(empty, store, zap.NewNop()).RunCommand(context.Background(), pc.ID, "ipconfig")
	require.NoError(t, err)
	assert.Equal(t, EmptyCommand, res.Output)
}

func TestRunCommand_UnknownDevice(t *testing.T) {
	store, _, _, _ := newLab(t)
	_, err := NewService(&mockProvider{}, store, zap.NewNop()).RunCommand(context.Background(), "nope", "ping")
	assert.ErrorIs(t, err, topology.ErrNotFound)
}

func TestRunCommand_StaleAfterDelete(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	store := topology.NewStore(zap.NewNop(), topology.WithBus(bus))
	pc := store.AddDevice(models.DeviceTypePC, nil)

	mp := &mockProvider{generateFunc: func(context.Context, string) (*llm.Response, error) {
		// The user deletes the device while the reply is in flight.
		store.DeleteDevice(pc.ID)
		return &llm.Response{Content: "late output"}, nil
	}}
	s := NewService(mp, store, zap.NewNop())
	defer s.Watch(bus)()

	res, err := s.RunCommand(context.Background(), pc.ID, "ifconfig")
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Empty(t, s.Transcript(pc.ID))
}

func TestRunCommand_SupersededByNewerCommand(t *testing.T) {
	store, pc, _, _ := newLab(t)

	var s *Service
	calls := 0
	mp := &mockProvider{generateFunc: func(ctx context.Context, prompt string) (*llm.Response, error) {
		calls++
		if calls == 1 {
			// A second command is issued before the first reply lands.
			second, err := s.RunCommand(ctx, pc.ID, "ipconfig")
			require.NoError(t, err)
			assert.False(t, second.Stale)
			return &llm.Response{Content: "first"}, nil
		}
		return &llm.Response{Content: "second"}, nil
	}}
	s = NewService(mp, store, zap.NewNop())

	first, err := s.RunCommand(context.Background(), pc.ID, "ping 10.0.0.1")
	require.NoError(t, err)
	assert.True(t, first.Stale)

	tr := s.Transcript(pc.ID)
	require.Len(t, tr, 2)
	assert.Equal(t, "ipconfig", tr[0].Content)
	assert.Equal(t, "second", tr[1].Content)
}

func TestAsk_StaleWhenSuperseded(t *testing.T) {
	store, _, _, _ := newLab(t)

	var s *Service
	mp := &mockProvider{}
	mp.chatFunc = func(ctx context.Context, messages []llm.Message) (*llm.Response, error) {
		if strings.Contains(messages[len(messages)-1].Content, "first") {
			mp.chatFunc = nil
			_, err := s.Ask(ctx, nil, "second question")
			require.NoError(t, err)
		}
		return &llm.Response{Content: "answer"}, nil
	}
	s = NewService(mp, store, zap.NewNop())

	ans, err := s.Ask(context.Background(), nil, "first question")
	require.NoError(t, err)
	assert.True(t, ans.Stale)
}

func TestRateLimit(t *testing.T) {
	store, pc, _, _ := newLab(t)
	s := NewService(&mockProvider{}, store, zap.NewNop(), WithRatePerMinute(2))

	for i := 0; i < 2; i++ {
		_, err := s.RunCommand(context.Background(), pc.ID, "ping")
		require.NoError(t, err)
	}
	_, err := s.RunCommand(context.Background(), pc.ID, "ping")
	assert.ErrorIs(t, err, ErrRateLimited)
	_, err = s.Ask(context.Background(), nil, "hi")
	assert.ErrorIs(t, err, ErrRateLimited)

	unlimited := NewService(&mockProvider{}, store, zap.NewNop(), WithRatePerMinute(0))
	for i := 0; i < 50; i++ {
		_, err := unlimited.Ask(context.Background(), nil, "hi")
		require.NoError(t, err)
	}
}

func TestTranscriptLimit(t *testing.T) {
	store, pc, _, _ := newLab(t)
	s := NewService(&mockProvider{}, store, zap.NewNop(), WithRatePerMinute(0), WithTranscriptLimit(4))

	for _, cmd := range []string{"a", "b", "c"} {
		_, err := s.RunCommand(context.Background(), pc.ID, cmd)
		require.NoError(t, err)
	}
	tr := s.Transcript(pc.ID)
	require.Len(t, tr, 4)
	assert.Equal(t, "b", tr[0].Content)
	assert.Equal(t, "c", tr[2].Content)
}

func TestWatch_ReplaceResets(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	store := topology.NewStore(zap.NewNop(), topology.WithBus(bus))
	pc := store.AddDevice(models.DeviceTypePC, nil)

	s := NewService(&mockProvider{}, store, zap.NewNop())
	unwatch := s.Watch(bus)
	defer unwatch()

	_, err := s.RunCommand(context.Background(), pc.ID, "ipconfig")
	require.NoError(t, err)
	require.Len(t, s.Transcript(pc.ID), 2)

	store.Clear()
	assert.Empty(t, s.Transcript(pc.ID))
}

func TestRunCommand_ClearIsLocal(t *testing.T) {
	store, pc, _, _ := newLab(t)
	mp := &mockProvider{}
	s := NewService(mp, store, zap.NewNop(), WithRatePerMinute(1))

	_, err := s.RunCommand(context.Background(), pc.ID, "ipconfig")
	require.NoError(t, err)
	require.Len(t, s.Transcript(pc.ID), 2)

	for _, cmd := range []string{"clear", "CLEAR", "  Clear "} {
		res, err := s.RunCommand(context.Background(), pc.ID, cmd)
		require.NoError(t, err, "clear must not consume a rate token")
		assert.Empty(t, res.Output)
		assert.False(t, res.Fallback)
		assert.False(t, res.Stale)
	}

	assert.Empty(t, s.Transcript(pc.ID))
	mp.mu.Lock()
	assert.Len(t, mp.prompts, 1)
	mp.mu.Unlock()
}
