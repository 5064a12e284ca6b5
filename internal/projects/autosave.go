package projects

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/pkg/models"
)

// DefaultAutosaveSchedule is used when autosave_schedule is unset.
const DefaultAutosaveSchedule = "@every 1m"

// Source is the live topology the autosaver captures.
type Source interface {
	Revision() uint64
	Snapshot() models.Snapshot
}

// Autosaver writes the live topology to the autosave project whenever
// its revision moved since the last save.
type Autosaver struct {
	repo   Repository
	source Source
	logger *zap.Logger

	mu       sync.Mutex
	last     uint64
	cron     *cron.Cron
	schedule string
}

// NewAutosaver creates an autosaver. The revision current at creation
// counts as saved, so an untouched lab is never written.
func NewAutosaver(repo Repository, source Source, schedule string, logger *zap.Logger) (*Autosaver, error) {
	if schedule == "" {
		schedule = DefaultAutosaveSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}
	return &Autosaver{
		repo:     repo,
		source:   source,
		logger:   logger,
		last:     source.Revision(),
		schedule: schedule,
	}, nil
}

// Run saves once if the topology changed. It reports whether a save
// happened.
func (a *Autosaver) Run(ctx context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rev := a.source.Revision()
	if rev == a.last {
		return false, nil
	}
	p, err := a.repo.Autosave(ctx, a.source.Snapshot())
	if err != nil {
		return false, err
	}
	a.last = rev
	a.logger.Debug("topology autosaved",
		zap.Uint64("revision", rev),
		zap.Int("devices", p.DeviceCount),
		zap.Int("links", p.LinkCount),
	)
	return true, nil
}

// Start schedules Run until Stop. Jobs that overrun their slot are
// skipped rather than queued.
func (a *Autosaver) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(a.schedule, func() {
		if _, err := a.Run(ctx); err != nil {
			a.logger.Warn("autosave failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule autosave: %w", err)
	}
	c.Start()

	a.mu.Lock()
	a.cron = c
	a.mu.Unlock()
	a.logger.Info("autosave scheduled", zap.String("schedule", a.schedule))
	return nil
}

// Stop cancels the schedule and waits for a running save to finish.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	a.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
