// Package topology owns the lab's devices and links and keeps the graph
// consistent: no self links, at most one link per device pair, no links to
// missing devices, and port bindings recorded only on links.
package topology

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/danmudi/netlab/pkg/models"
	"github.com/danmudi/netlab/pkg/plugin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sentinel errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrSelfLink        = errors.New("link endpoints must differ")
	ErrDuplicateLink   = errors.New("devices already linked")
	ErrInterfaceBound  = errors.New("interface already bound")
	ErrInvalidTopology = errors.New("invalid topology")
)

// StarterProgram is loaded into every new programmable board.
const StarterProgram = `void setup() {
  Serial.begin(9600);
  pinMode(LED_BUILTIN, OUTPUT);
}

void loop() {
  Serial.println("System Running...");
  digitalWrite(LED_BUILTIN, HIGH);
  delay(1000);
  digitalWrite(LED_BUILTIN, LOW);
  delay(1000);
}`

// DefaultLEDColor is the color of a freshly placed LED.
const DefaultLEDColor = "#ef4444"

// New devices without a placement hint land within placementJitter of
// basePosition so they never stack exactly.
var basePosition = models.Point{X: 100, Y: 100}

const placementJitter = 50.0

// Option configures a Store.
type Option func(*Store)

// WithBus publishes topology events on bus.
func WithBus(bus plugin.EventBus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithRand sets the random source used for placement jitter.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rng = r }
}

// WithIDGenerator overrides id generation. fn receives the prefix
// ("dev", "iot", "if", "link").
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Store) { s.newID = fn }
}

// Store is the authoritative device and link collection.
//
// Every mutation builds the next slices from copies and swaps them in under
// the write lock, so readers and the simulation driver always observe a
// whole state. Events are published after the lock is released.
type Store struct {
	mu       sync.RWMutex
	devices  []models.Device
	links    []models.Link
	revision uint64

	bus    plugin.EventBus
	logger *zap.Logger
	rng    *rand.Rand
	newID  func(prefix string) string
}

// NewStore creates an empty topology.
func NewStore(logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		logger: logger,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6e65746c6162)),
		newID:  newID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}

// AddDevice places a new device of type dt. A nil hint picks a position
// near the canvas origin. Always succeeds.
func (s *Store) AddDevice(dt models.DeviceType, hint *models.Point) models.Device {
	return s.add(dt, DefaultInterfaces(dt), hint)
}

// AddSwitch places a switch with ports FastEthernet interfaces.
func (s *Store) AddSwitch(ports int, hint *models.Point) models.Device {
	return s.add(models.DeviceTypeSwitch, SwitchPorts(ports), hint)
}

func (s *Store) add(dt models.DeviceType, ifaces []models.Interface, hint *models.Point) models.Device {
	caps := dt.Capabilities()
	prefix := "dev"
	if caps.Category == models.CategoryIoT {
		prefix = "iot"
	}

	s.mu.Lock()
	d := models.Device{
		ID:         s.newID(prefix),
		Type:       dt,
		Name:       fmt.Sprintf("%s-%d", dt, s.countTypeLocked(dt)+1),
		Status:     models.DeviceStatusOnline,
		Interfaces: ifaces,
	}
	if d.Interfaces == nil {
		d.Interfaces = []models.Interface{}
	}
	for i := range d.Interfaces {
		if d.Interfaces[i].ID == "" {
			d.Interfaces[i].ID = s.newID("if")
		}
		d.Interfaces[i].ConnectedToID = ""
	}
	if hint != nil {
		d.X, d.Y = hint.X, hint.Y
	} else {
		d.X = basePosition.X + s.rng.Float64()*placementJitter
		d.Y = basePosition.Y + s.rng.Float64()*placementJitter
	}
	applyPayloadDefaults(&d, caps)

	s.devices = append(slices.Clone(s.devices), d)
	s.revision++
	s.mu.Unlock()

	out := d.Clone()
	s.logger.Debug("device added",
		zap.String("device_id", d.ID),
		zap.String("type", string(dt)),
		zap.Int("interfaces", len(d.Interfaces)),
	)
	s.publish(TopicDeviceAdded, DeviceEvent{Device: out.Clone()})
	return out
}

func applyPayloadDefaults(d *models.Device, caps models.Capabilities) {
	if caps.HasProgram {
		d.Code = StarterProgram
	}
	if caps.IsSensor {
		d.SensorValue = models.Float64(caps.SensorMin)
	}
	if caps.IsActuator {
		d.ActuatorState = models.Bool(false)
	}
	if d.Type == models.DeviceTypeLED {
		d.Color = DefaultLEDColor
	}
}

// DevicePatch lists the device fields an update may change. Nil fields are
// left alone. Payload fields only apply to device types that carry them.
type DevicePatch struct {
	Name          *string              `json:"name,omitempty"`
	Status        *models.DeviceStatus `json:"status,omitempty"`
	Color         *string              `json:"color,omitempty"`
	Code          *string              `json:"code,omitempty"`
	SensorValue   *float64             `json:"sensorValue,omitempty"`
	ActuatorState *bool                `json:"actuatorState,omitempty"`
}

func (p DevicePatch) apply(d *models.Device) {
	caps := d.Type.Capabilities()
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Status != nil && p.Status.Valid() {
		d.Status = *p.Status
	}
	if p.Color != nil {
		d.Color = *p.Color
	}
	if p.Code != nil && caps.HasProgram {
		d.Code = *p.Code
	}
	if p.SensorValue != nil && caps.IsSensor {
		d.SensorValue = models.Float64(d.Type.ClampSensor(*p.SensorValue))
	}
	if p.ActuatorState != nil && caps.IsActuator {
		d.ActuatorState = models.Bool(*p.ActuatorState)
	}
}

// UpdateDevice merges p into device id. Unknown ids are a no-op and
// return false.
func (s *Store) UpdateDevice(id string, p DevicePatch) bool {
	d, ok := s.mutateDevice(id, func(d *models.Device) bool {
		p.apply(d)
		return true
	})
	if !ok {
		s.logger.Debug("update of unknown device ignored", zap.String("device_id", id))
		return false
	}
	s.publish(TopicDeviceUpdated, DeviceEvent{Device: d})
	return true
}

// MoveDevice overwrites the device position. The canvas is unbounded.
func (s *Store) MoveDevice(id string, x, y float64) bool {
	_, ok := s.mutateDevice(id, func(d *models.Device) bool {
		d.X, d.Y = x, y
		return true
	})
	if !ok {
		return false
	}
	s.publish(TopicDeviceMoved, DeviceMovedEvent{DeviceID: id, X: x, Y: y})
	return true
}

// DeleteDevice removes the device and every link incident to it in one
// step. The removed links are returned so collaborators can drop stale
// references.
func (s *Store) DeleteDevice(id string) (models.Device, []models.Link, bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("delete of unknown device ignored", zap.String("device_id", id))
		return models.Device{}, nil, false
	}
	removed := s.devices[i].Clone()

	var kept, dropped []models.Link
	for _, l := range s.links {
		if l.Touches(id) {
			dropped = append(dropped, l)
		} else {
			kept = append(kept, l)
		}
	}
	s.devices = slices.Delete(slices.Clone(s.devices), i, i+1)
	s.links = kept
	s.revision++
	s.mu.Unlock()

	s.logger.Debug("device deleted",
		zap.String("device_id", id),
		zap.Int("links_removed", len(dropped)),
	)
	for _, l := range dropped {
		s.publish(TopicLinkDeleted, LinkEvent{Link: l})
	}
	s.publish(TopicDeviceDeleted, DeviceDeletedEvent{Device: removed, Links: dropped})
	return removed, dropped, true
}

// AddLink connects two devices. Self links, duplicate links (in either
// direction), and links to missing devices are rejected without error.
func (s *Store) AddLink(sourceID, targetID string, cable models.CableType) (models.Link, bool) {
	l, err := s.insertLink(sourceID, targetID, cable, "", "")
	if err != nil {
		return models.Link{}, false
	}
	return l, true
}

// AddBoundLink creates a link and binds one interface on each end in a
// single step. An empty interface id leaves that end unbound.
func (s *Store) AddBoundLink(sourceID, targetID string, cable models.CableType, sourceIf, targetIf string) (models.Link, error) {
	return s.insertLink(sourceID, targetID, cable, sourceIf, targetIf)
}

func (s *Store) insertLink(sourceID, targetID string, cable models.CableType, sourceIf, targetIf string) (models.Link, error) {
	if !cable.Valid() {
		cable = models.CableStraight
	}

	s.mu.Lock()
	reason, err := s.checkLinkLocked(sourceID, targetID)
	if err == nil {
		err = s.checkFreeLocked(sourceID, sourceIf)
	}
	if err == nil {
		err = s.checkFreeLocked(targetID, targetIf)
	}
	if err != nil {
		s.mu.Unlock()
		s.logger.Debug("link rejected",
			zap.String("source_id", sourceID),
			zap.String("target_id", targetID),
			zap.Error(err),
		)
		if reason != "" {
			s.publish(TopicLinkRejected, LinkRejectedEvent{SourceID: sourceID, TargetID: targetID, Reason: reason})
		}
		return models.Link{}, err
	}

	l := models.Link{
		ID:                s.newID("link"),
		SourceID:          sourceID,
		TargetID:          targetID,
		Type:              cable,
		SourceInterfaceID: sourceIf,
		TargetInterfaceID: targetIf,
	}
	s.links = append(slices.Clone(s.links), l)
	s.revision++
	s.mu.Unlock()

	s.publish(TopicLinkAdded, LinkEvent{Link: l})
	return l, nil
}

// checkLinkLocked returns the rejection reason and error for a proposed
// link between a and b.
func (s *Store) checkLinkLocked(a, b string) (string, error) {
	if a == b {
		return RejectSelf, ErrSelfLink
	}
	if s.indexLocked(a) < 0 || s.indexLocked(b) < 0 {
		return RejectMissingEndpoint, fmt.Errorf("link endpoint: %w", ErrNotFound)
	}
	for _, l := range s.links {
		if l.Joins(a, b) {
			return RejectDuplicate, ErrDuplicateLink
		}
	}
	return "", nil
}

// DeleteLink removes the link; the bindings it carried go with it.
func (s *Store) DeleteLink(id string) (models.Link, bool) {
	s.mu.Lock()
	i := slices.IndexFunc(s.links, func(l models.Link) bool { return l.ID == id })
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("delete of unknown link ignored", zap.String("link_id", id))
		return models.Link{}, false
	}
	l := s.links[i]
	s.links = slices.Delete(slices.Clone(s.links), i, i+1)
	s.revision++
	s.mu.Unlock()

	s.publish(TopicLinkDeleted, LinkEvent{Link: l})
	return l, true
}

// Device returns a copy of the device with interface peers filled in.
func (s *Store) Device(id string) (models.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return models.Device{}, false
	}
	return decorate(s.devices[i], bindings(s.links)), true
}

// Devices returns copies of all devices in draw order.
func (s *Store) Devices() []models.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decorateAll(s.devices, s.links)
}

// Links returns a copy of all links.
func (s *Store) Links() []models.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.links)
}

// Link returns the link with the given id.
func (s *Store) Link(id string) (models.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.ID == id {
			return l, true
		}
	}
	return models.Link{}, false
}

// LinkBetween returns the link joining a and b in either direction.
func (s *Store) LinkBetween(a, b string) (models.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.Joins(a, b) {
			return l, true
		}
	}
	return models.Link{}, false
}

// Snapshot returns the whole topology as an exportable value.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	links := slices.Clone(s.links)
	if links == nil {
		links = []models.Link{}
	}
	return models.Snapshot{
		Version: models.SnapshotVersion,
		Devices: decorateAll(s.devices, s.links),
		Links:   links,
	}
}

// Counts returns the number of devices and links.
func (s *Store) Counts() (devices, links int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices), len(s.links)
}

// Revision increases on every structural or field change. Sensor ticks do
// not advance it.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Replace swaps in a whole new topology. Invalid input leaves the current
// state untouched.
func (s *Store) Replace(devices []models.Device, links []models.Link) error {
	if err := Validate(devices, links); err != nil {
		return err
	}

	nextDevices := make([]models.Device, 0, len(devices))
	for _, d := range devices {
		c := d.Clone()
		if c.Interfaces == nil {
			c.Interfaces = []models.Interface{}
		}
		for i := range c.Interfaces {
			c.Interfaces[i].ConnectedToID = ""
		}
		nextDevices = append(nextDevices, c)
	}
	nextLinks := slices.Clone(links)

	s.mu.Lock()
	s.devices = nextDevices
	s.links = nextLinks
	s.revision++
	s.mu.Unlock()

	s.logger.Info("topology replaced",
		zap.Int("devices", len(nextDevices)),
		zap.Int("links", len(nextLinks)),
	)
	s.publish(TopicReplaced, ReplacedEvent{Devices: len(nextDevices), Links: len(nextLinks)})
	return nil
}

// Clear removes every device and link.
func (s *Store) Clear() {
	_ = s.Replace(nil, nil)
}

// SensorReading is the current value of one sensor device.
type SensorReading struct {
	DeviceID string            `json:"device_id"`
	Name     string            `json:"name"`
	Type     models.DeviceType `json:"type"`
	Value    float64           `json:"value"`
}

// UpdateSensors rewrites every sensor value with fn(reading), clamped to
// the sensor's range, in one atomic step. fn runs under the store lock and
// must not call back into the store. Only sensor values change.
func (s *Store) UpdateSensors(fn func(r SensorReading) float64) []SensorReading {
	s.mu.Lock()
	var readings []SensorReading
	var next []models.Device
	for i, d := range s.devices {
		if !d.Type.Capabilities().IsSensor {
			continue
		}
		if next == nil {
			next = slices.Clone(s.devices)
		}
		r := SensorReading{DeviceID: d.ID, Name: d.Name, Type: d.Type}
		if d.SensorValue != nil {
			r.Value = *d.SensorValue
		}
		r.Value = d.Type.ClampSensor(fn(r))

		c := d.Clone()
		c.SensorValue = models.Float64(r.Value)
		next[i] = c
		readings = append(readings, r)
	}
	if next != nil {
		s.devices = next
	}
	s.mu.Unlock()
	return readings
}

// mutateDevice applies fn to a copy of device id and swaps it in when fn
// returns true. It returns the decorated result.
func (s *Store) mutateDevice(id string, fn func(d *models.Device) bool) (models.Device, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return models.Device{}, false
	}
	d := s.devices[i].Clone()
	if !fn(&d) {
		return models.Device{}, false
	}
	next := slices.Clone(s.devices)
	next[i] = d
	s.devices = next
	s.revision++
	return decorate(d, bindings(s.links)), true
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.devices, func(d models.Device) bool { return d.ID == id })
}

func (s *Store) countTypeLocked(dt models.DeviceType) int {
	n := 0
	for _, d := range s.devices {
		if d.Type == dt {
			n++
		}
	}
	return n
}

func (s *Store) publish(topic string, payload any) {
	if s.bus == nil {
		return
	}
	_ = s.bus.Publish(context.Background(), plugin.Event{
		Topic:     topic,
		Source:    "topology",
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// endpoint identifies one interface on one device.
type endpoint struct {
	device, iface string
}

// bindings maps each bound interface to the peer device on the other end
// of its link.
func bindings(links []models.Link) map[endpoint]string {
	out := make(map[endpoint]string, len(links)*2)
	for _, l := range links {
		if l.SourceInterfaceID != "" {
			out[endpoint{l.SourceID, l.SourceInterfaceID}] = l.TargetID
		}
		if l.TargetInterfaceID != "" {
			out[endpoint{l.TargetID, l.TargetInterfaceID}] = l.SourceID
		}
	}
	return out
}

func decorate(d models.Device, bound map[endpoint]string) models.Device {
	out := d.Clone()
	for i := range out.Interfaces {
		out.Interfaces[i].ConnectedToID = bound[endpoint{d.ID, out.Interfaces[i].ID}]
	}
	return out
}

func decorateAll(devices []models.Device, links []models.Link) []models.Device {
	bound := bindings(links)
	out := make([]models.Device, 0, len(devices))
	for _, d := range devices {
		out = append(out, decorate(d, bound))
	}
	return out
}
