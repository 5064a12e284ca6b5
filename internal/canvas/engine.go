// Package canvas turns pointer input into topology edits. It owns the one
// interaction session (mode, selection, drag, connection workflow) and
// applies every edit through the topology store.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/config"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/models"
	"github.com/danmudi/netlab/pkg/plugin"
)

// Engine errors.
var (
	ErrConfirmationRequired = errors.New("clear requires confirmation")
	ErrInvalidMode          = errors.New("unknown canvas mode")
	ErrInvalidCable         = errors.New("unknown cable type")
	ErrInvalidDeviceType    = errors.New("unknown device type")
	ErrInvalidPortCount     = errors.New("port count must be positive")
)

// Bus topics published by the engine.
const (
	TopicDeviceSelected  = "canvas.device.selected"
	TopicDeviceConfigure = "canvas.device.configure"
)

// SelectionEvent is the payload of canvas events. DeviceID is empty when a
// selection was cleared.
type SelectionEvent struct {
	DeviceID string         `json:"device_id"`
	Device   *models.Device `json:"device,omitempty"`
}

// DefaultLinkTolerance is how far, in pixels, the pointer may be from a
// link and still hit it.
const DefaultLinkTolerance = 6.0

// Settings tune the engine.
type Settings struct {
	LinkTolerance float64
	PortSelection bool
	DefaultCable  models.CableType
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		LinkTolerance: DefaultLinkTolerance,
		PortSelection: true,
		DefaultCable:  models.CableStraight,
	}
}

// SettingsFromConfig reads the canvas.* keys, falling back to
// DefaultSettings for anything unset or invalid.
func SettingsFromConfig(cfg *config.Config) Settings {
	s := DefaultSettings()
	if v := cfg.GetFloat64("canvas.link_tolerance"); v > 0 {
		s.LinkTolerance = v
	}
	if cfg.IsSet("canvas.port_selection") {
		s.PortSelection = cfg.GetBool("canvas.port_selection")
	}
	if ct := models.CableType(cfg.GetString("canvas.default_cable")); ct.Valid() {
		s.DefaultCable = ct
	}
	return s
}

// Callbacks notify the embedding UI. Any of them may be nil. They run
// without the engine lock held and may call back into the engine.
type Callbacks struct {
	// OnSelect receives the selected device, or nil when the selection
	// is cleared.
	OnSelect       func(d *models.Device)
	OnDoubleClick  func(d models.Device)
	OnDeleteDevice func(id string)
	OnDeleteLink   func(id string)
}

// Option configures an Engine.
type Option func(*Engine)

// WithBus publishes canvas events on bus.
func WithBus(bus plugin.EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithCallbacks installs UI callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(e *Engine) { e.callbacks = cb }
}

// Engine serialises interaction state behind its own mutex. Store writes,
// callbacks and bus publishes happen after the mutex is released, so a
// subscriber can always call back into the engine.
//
// commitMu is held by Confirm from validation until the pending link is
// resolved; Cancel and SetMode take it first so they order strictly before
// or after a commit. Link event subscribers must not call either
// synchronously.
type Engine struct {
	commitMu sync.Mutex
	mu       sync.Mutex
	session  Session
	flow     *Workflow

	// beforeCommit runs between validation and the store write. Tests use
	// it to land concurrent calls in that window.
	beforeCommit func()

	store     *topology.Store
	settings  Settings
	callbacks Callbacks
	bus       plugin.EventBus
	logger    *zap.Logger
}

// NewEngine creates an engine over store.
func NewEngine(store *topology.Store, settings Settings, logger *zap.Logger, opts ...Option) *Engine {
	if !settings.DefaultCable.Valid() {
		settings.DefaultCable = models.CableStraight
	}
	e := &Engine{
		session:  newSession(settings.DefaultCable),
		store:    store,
		settings: settings,
		logger:   logger,
	}
	e.flow = NewWorkflow(&e.session, store, settings.PortSelection, logger)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the topology the engine edits.
func (e *Engine) Store() *topology.Store {
	return e.store
}

// Session returns a copy of the interaction session.
func (e *Engine) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone()
}

// effects are deferred until the engine lock is released.
type effects []func()

func (fx *effects) add(f func()) { *fx = append(*fx, f) }

func (fx effects) run() {
	for _, f := range fx {
		f()
	}
}

// update runs fn under the lock, then runs the effects it queued.
func (e *Engine) update(fn func(fx *effects)) Session {
	var fx effects
	e.mu.Lock()
	fn(&fx)
	out := e.session.Clone()
	e.mu.Unlock()
	fx.run()
	return out
}

// PointerDown handles a press at p.
func (e *Engine) PointerDown(p models.Point) Session {
	return e.update(func(fx *effects) {
		switch e.session.Mode {
		case ModeCursor:
			d, ok := hitDevice(e.store.Devices(), p)
			if !ok {
				e.session.Drag = nil
				if e.session.SelectedID != "" {
					e.session.SelectedID = ""
					fx.add(func() { e.notifySelect(nil) })
				}
				return
			}
			e.session.SelectedID = d.ID
			e.session.Drag = &Drag{DeviceID: d.ID, Offset: models.Point{X: p.X - d.X, Y: p.Y - d.Y}}
			fx.add(func() { e.notifySelect(&d) })
		case ModeConnect:
			if d, ok := hitDevice(e.store.Devices(), p); ok {
				e.flow.Begin(d.ID, d.Center())
			}
		case ModeErase:
			devices := e.store.Devices()
			if d, ok := hitDevice(devices, p); ok {
				e.forgetDeviceLocked(d.ID)
				fx.add(func() { e.deleteDevice(d.ID) })
				return
			}
			if l, ok := hitLink(devices, e.store.Links(), p, e.settings.LinkTolerance); ok {
				fx.add(func() { e.deleteLink(l.ID) })
			}
		}
	})
}

// PointerMove handles pointer motion to p.
func (e *Engine) PointerMove(p models.Point) Session {
	return e.update(func(fx *effects) {
		switch e.session.Mode {
		case ModeCursor:
			if drag := e.session.Drag; drag != nil {
				id, x, y := drag.DeviceID, p.X-drag.Offset.X, p.Y-drag.Offset.Y
				fx.add(func() { e.store.MoveDevice(id, x, y) })
			}
		case ModeConnect:
			e.flow.Drag(p)
		}
	})
}

// PointerUp handles a release at p.
func (e *Engine) PointerUp(p models.Point) Session {
	return e.update(func(fx *effects) {
		switch e.session.Mode {
		case ModeCursor:
			e.session.Drag = nil
		case ModeConnect:
			if e.flow.State() != StateDragging {
				return
			}
			var target string
			if d, ok := hitDevice(e.store.Devices(), p); ok {
				target = d.ID
			}
			if req := e.flow.Release(target); req != nil {
				fx.add(func() { _, _ = e.commit(*req) })
			}
		}
	})
}

// PointerLeave handles the pointer leaving the canvas.
func (e *Engine) PointerLeave() Session {
	return e.update(func(_ *effects) {
		e.session.Drag = nil
		e.flow.Leave()
	})
}

// DoubleClick opens the configuration surface for the device under p.
func (e *Engine) DoubleClick(p models.Point) (models.Device, bool) {
	d, ok := hitDevice(e.store.Devices(), p)
	if !ok {
		return models.Device{}, false
	}
	if e.callbacks.OnDoubleClick != nil {
		e.callbacks.OnDoubleClick(d)
	}
	e.publish(TopicDeviceConfigure, SelectionEvent{DeviceID: d.ID, Device: &d})
	return d, true
}

// SetMode switches tools. Any drag or connection in progress is dropped.
func (e *Engine) SetMode(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}
	e.commitMu.Lock()
	defer e.commitMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Mode = m
	e.session.Drag = nil
	e.flow.Cancel()
	return nil
}

// SetCableType sets the cable used for new links. A link already awaiting
// port selection keeps the cable it was drawn with.
func (e *Engine) SetCableType(ct models.CableType) error {
	if !ct.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCable, ct)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.CableType = ct
	return nil
}

// Confirm commits the pending link with the chosen interfaces. On
// ErrInterfaceUnavailable the pending link is kept so the user can pick
// again.
func (e *Engine) Confirm(sourceIf, targetIf string) (models.Link, error) {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()

	e.mu.Lock()
	req, err := e.flow.Confirm(sourceIf, targetIf)
	e.mu.Unlock()
	if err != nil {
		return models.Link{}, err
	}
	if e.beforeCommit != nil {
		e.beforeCommit()
	}

	l, err := e.commit(req)
	switch {
	case errors.Is(err, topology.ErrInterfaceBound):
		return models.Link{}, ErrInterfaceUnavailable
	case errors.Is(err, topology.ErrNotFound):
		// An interface vanished between validation and commit.
		return models.Link{}, ErrInterfaceUnavailable
	}

	// Committed, or the pair became invalid (linked elsewhere meanwhile):
	// either way the pending link is finished.
	e.mu.Lock()
	e.flow.Resolve(req)
	e.mu.Unlock()
	return l, err
}

// Cancel abandons a drag or pending link.
func (e *Engine) Cancel() Session {
	e.commitMu.Lock()
	defer e.commitMu.Unlock()
	return e.update(func(_ *effects) { e.flow.Cancel() })
}

// Clear deletes every device and link. confirm must be true.
func (e *Engine) Clear(confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	e.mu.Lock()
	e.session.resetInteraction()
	e.mu.Unlock()

	e.store.Clear()
	e.logger.Info("canvas cleared")
	return nil
}

// Import replaces the topology with snap and resets the session. An
// invalid snapshot leaves everything untouched.
func (e *Engine) Import(snap models.Snapshot) error {
	if err := e.store.Replace(snap.Devices, snap.Links); err != nil {
		return err
	}
	e.mu.Lock()
	e.session.resetInteraction()
	e.mu.Unlock()
	return nil
}

// AddDevice places a new device and selects it.
func (e *Engine) AddDevice(dt models.DeviceType, hint *models.Point) (models.Device, error) {
	if !dt.Valid() {
		return models.Device{}, fmt.Errorf("%w: %q", ErrInvalidDeviceType, dt)
	}
	d := e.store.AddDevice(dt, hint)
	e.selectAdded(d)
	return d, nil
}

// QuickAddSwitch places a switch with ports interfaces and selects it.
func (e *Engine) QuickAddSwitch(ports int, hint *models.Point) (models.Device, error) {
	if ports <= 0 {
		return models.Device{}, ErrInvalidPortCount
	}
	d := e.store.AddSwitch(ports, hint)
	e.selectAdded(d)
	return d, nil
}

func (e *Engine) selectAdded(d models.Device) {
	e.mu.Lock()
	e.session.SelectedID = d.ID
	e.mu.Unlock()
	e.notifySelect(&d)
}

// DeleteDevice removes a device and its links, cancelling any interaction
// that involves it.
func (e *Engine) DeleteDevice(id string) bool {
	e.mu.Lock()
	e.forgetDeviceLocked(id)
	e.mu.Unlock()
	return e.deleteDevice(id)
}

// DeleteLink removes a link.
func (e *Engine) DeleteLink(id string) bool {
	return e.deleteLink(id)
}

// forgetDeviceLocked drops every session reference to id.
func (e *Engine) forgetDeviceLocked(id string) {
	if e.session.SelectedID == id {
		e.session.SelectedID = ""
	}
	if e.session.Drag != nil && e.session.Drag.DeviceID == id {
		e.session.Drag = nil
	}
	e.flow.DeviceRemoved(id)
}

func (e *Engine) deleteDevice(id string) bool {
	_, dropped, ok := e.store.DeleteDevice(id)
	if !ok {
		return false
	}
	if cb := e.callbacks.OnDeleteLink; cb != nil {
		for _, l := range dropped {
			cb(l.ID)
		}
	}
	if cb := e.callbacks.OnDeleteDevice; cb != nil {
		cb(id)
	}
	return true
}

func (e *Engine) deleteLink(id string) bool {
	if _, ok := e.store.DeleteLink(id); !ok {
		return false
	}
	if cb := e.callbacks.OnDeleteLink; cb != nil {
		cb(id)
	}
	return true
}

// commit applies req to the store. Rejections surface as the store's
// sentinel errors.
func (e *Engine) commit(req LinkRequest) (models.Link, error) {
	return e.store.AddBoundLink(req.SourceID, req.TargetID, req.CableType,
		req.SourceInterfaceID, req.TargetInterfaceID)
}

func (e *Engine) notifySelect(d *models.Device) {
	if e.callbacks.OnSelect != nil {
		e.callbacks.OnSelect(d)
	}
	ev := SelectionEvent{Device: d}
	if d != nil {
		ev.DeviceID = d.ID
	}
	e.publish(TopicDeviceSelected, ev)
}

func (e *Engine) publish(topic string, payload any) {
	if e.bus == nil {
		return
	}
	_ = e.bus.Publish(context.Background(), plugin.Event{
		Topic:     topic,
		Source:    "canvas",
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}
