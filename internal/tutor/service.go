// Package tutor answers lab questions and simulates device consoles
// through an llm.Provider. Provider failures never touch the topology;
// callers get a fixed fallback reply instead.
package tutor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/llm"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

// ErrRateLimited is returned when a request exceeds the configured rate.
var ErrRateLimited = errors.New("tutor rate limit exceeded")

// Defaults used when options leave a value unset.
const (
	DefaultRatePerMinute   = 30
	DefaultTranscriptLimit = 200
)

// Answer is a tutor reply. Stale is set when a newer question was asked
// before this one completed.
type Answer struct {
	Text     string `json:"text"`
	Model    string `json:"model,omitempty"`
	Fallback bool   `json:"fallback"`
	Stale    bool   `json:"stale"`
}

// CommandResult is the simulated console output of one command. A stale
// result was superseded by a newer command or its device was deleted; it
// is not recorded in the transcript.
type CommandResult struct {
	DeviceID string `json:"device_id"`
	Command  string `json:"command"`
	Output   string `json:"output"`
	Model    string `json:"model,omitempty"`
	Fallback bool   `json:"fallback"`
	Stale    bool   `json:"stale"`
}

// TranscriptEntry is one line of a device console.
type TranscriptEntry struct {
	Role    llm.Role  `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Option configures a Service.
type Option func(*Service)

// WithRatePerMinute limits Ask and RunCommand to n calls per minute,
// shared. n <= 0 disables the limit.
func WithRatePerMinute(n int) Option {
	return func(s *Service) {
		if n <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
	}
}

// WithCommandModel routes command simulation to a different model than
// the tutor.
func WithCommandModel(model string) Option {
	return func(s *Service) { s.commandModel = model }
}

// WithTranscriptLimit caps the entries kept per device console.
func WithTranscriptLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.transcriptLimit = n
		}
	}
}

// Service owns the provider calls and the per-device request generations
// used to discard late replies.
type Service struct {
	provider        llm.Provider
	store           *topology.Store
	logger          *zap.Logger
	limiter         *rate.Limiter
	commandModel    string
	transcriptLimit int
	now             func() time.Time

	mu          sync.Mutex
	askGen      uint64
	gens        map[string]uint64
	transcripts map[string][]TranscriptEntry
}

// NewService creates a Service. A nil provider makes every call return
// its fallback reply.
func NewService(provider llm.Provider, store *topology.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		provider:        provider,
		store:           store,
		logger:          logger,
		transcriptLimit: DefaultTranscriptLimit,
		now:             func() time.Time { return time.Now().UTC() },
		gens:            make(map[string]uint64),
		transcripts:     make(map[string][]TranscriptEntry),
	}
	WithRatePerMinute(DefaultRatePerMinute)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask sends question, preceded by history, to the tutor. The current
// topology summary is attached as lab context.
func (s *Service) Ask(ctx context.Context, history []llm.Message, question string) (Answer, error) {
	if !s.limiter.Allow() {
		return Answer{}, ErrRateLimited
	}

	s.mu.Lock()
	s.askGen++
	gen := s.askGen
	s.mu.Unlock()

	messages := make([]llm.Message, 0, len(history)+1)
	for _, m := range history {
		if m.Role == llm.RoleSystem {
			// Earlier tutor replies arrive with the console's "system" role.
			m.Role = llm.RoleAssistant
		}
		messages = append(messages, m)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	ans := Answer{}
	resp, err := s.chat(ctx, messages, llm.WithSystem(tutorSystem(s.store.Summary())))
	switch {
	case err != nil:
		s.logger.Warn("tutor request failed", zap.Error(err))
		ans.Text, ans.Fallback = FallbackTutor, true
	case strings.TrimSpace(resp.Content) == "":
		ans.Text, ans.Model = EmptyTutor, resp.Model
	default:
		ans.Text, ans.Model = resp.Content, resp.Model
	}

	s.mu.Lock()
	ans.Stale = gen != s.askGen
	s.mu.Unlock()
	return ans, nil
}

// ClearCommand wipes a device console without calling the provider.
const ClearCommand = "clear"

// RunCommand simulates command on device deviceID. It returns
// topology.ErrNotFound for an unknown device. ClearCommand, in any case,
// empties the console history and returns an empty result.
func (s *Service) RunCommand(ctx context.Context, deviceID, command string) (CommandResult, error) {
	dev, ok := s.store.Device(deviceID)
	if !ok {
		return CommandResult{}, topology.ErrNotFound
	}
	if strings.EqualFold(strings.TrimSpace(command), ClearCommand) {
		s.mu.Lock()
		delete(s.transcripts, deviceID)
		s.mu.Unlock()
		return CommandResult{DeviceID: deviceID, Command: command}, nil
	}
	if !s.limiter.Allow() {
		return CommandResult{}, ErrRateLimited
	}

	s.mu.Lock()
	s.gens[deviceID]++
	gen := s.gens[deviceID]
	s.mu.Unlock()

	prompt := commandPrompt(dev, command, s.store.Snapshot())
	res := CommandResult{DeviceID: deviceID, Command: command}

	var opts []llm.CallOption
	if s.commandModel != "" {
		opts = append(opts, llm.WithModel(s.commandModel))
	}
	resp, err := s.generate(ctx, prompt, opts...)
	switch {
	case err != nil:
		s.logger.Warn("command simulation failed",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
		res.Output, res.Fallback = FallbackCommand, true
	case strings.TrimSpace(resp.Content) == "":
		res.Output, res.Model = EmptyCommand, resp.Model
	default:
		res.Output, res.Model = resp.Content, resp.Model
	}

	_, exists := s.store.Device(deviceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !exists || s.gens[deviceID] != gen {
		res.Stale = true
		s.logger.Debug("discarding stale command output", zap.String("device_id", deviceID))
		return res, nil
	}
	now := s.now()
	s.appendLocked(deviceID,
		TranscriptEntry{Role: llm.RoleUser, Content: command, At: now},
		TranscriptEntry{Role: llm.RoleSystem, Content: res.Output, At: now},
	)
	return res, nil
}

// Transcript returns a copy of the console history of deviceID.
func (s *Service) Transcript(deviceID string) []TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TranscriptEntry, len(s.transcripts[deviceID]))
	copy(out, s.transcripts[deviceID])
	return out
}

// Forget invalidates in-flight commands for deviceID and drops its
// console history.
func (s *Service) Forget(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forgetLocked(deviceID)
}

// Reset invalidates every in-flight request and drops all history.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.gens {
		s.forgetLocked(id)
	}
	clear(s.transcripts)
	s.askGen++
}

// Watch forgets devices as they are deleted or replaced on bus. The
// returned function unsubscribes.
func (s *Service) Watch(bus pkgplugin.EventBus) func() {
	offDeleted := bus.Subscribe(topology.TopicDeviceDeleted, func(_ context.Context, e pkgplugin.Event) {
		if p, ok := e.Payload.(topology.DeviceDeletedEvent); ok {
			s.Forget(p.Device.ID)
		}
	})
	offReplaced := bus.Subscribe(topology.TopicReplaced, func(context.Context, pkgplugin.Event) {
		s.Reset()
	})
	return func() {
		offDeleted()
		offReplaced()
	}
}

// forgetLocked bumps the generation past any captured value; deleting
// the entry alone would let a later command restart at a reused value.
func (s *Service) forgetLocked(deviceID string) {
	s.gens[deviceID]++
	delete(s.transcripts, deviceID)
}

func (s *Service) appendLocked(deviceID string, entries ...TranscriptEntry) {
	t := append(s.transcripts[deviceID], entries...)
	if over := len(t) - s.transcriptLimit; over > 0 {
		t = append([]TranscriptEntry(nil), t[over:]...)
	}
	s.transcripts[deviceID] = t
}

func (s *Service) chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.Response, error) {
	if s.provider == nil {
		return nil, llm.ErrProviderUnavailable
	}
	return s.provider.Chat(ctx, messages, opts...)
}

func (s *Service) generate(ctx context.Context, prompt string, opts ...llm.CallOption) (*llm.Response, error) {
	if s.provider == nil {
		return nil, llm.ErrProviderUnavailable
	}
	return s.provider.Generate(ctx, prompt, opts...)
}
