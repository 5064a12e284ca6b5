package canvas

import (
	"slices"

	"github.com/danmudi/netlab/pkg/models"
)

// Mode is the active canvas tool.
type Mode string

// Canvas modes.
const (
	ModeCursor  Mode = "cursor"
	ModeConnect Mode = "connect"
	ModeErase   Mode = "erase"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeCursor, ModeConnect, ModeErase:
		return true
	}
	return false
}

// ConnState is the state of the connection workflow.
type ConnState string

// Connection workflow states.
const (
	StateIdle                  ConnState = "idle"
	StateDragging              ConnState = "dragging"
	StateAwaitingPortSelection ConnState = "awaiting_port_selection"
)

// Drag records a device being moved in cursor mode. Offset is the pointer
// position relative to the device origin at grab time.
type Drag struct {
	DeviceID string       `json:"deviceId"`
	Offset   models.Point `json:"offset"`
}

// PortPicker lists the interfaces offered for each end of a pending link.
// A nil list means that end takes no interface.
type PortPicker struct {
	Source []models.Interface `json:"source"`
	Target []models.Interface `json:"target"`
}

// Session is the whole interaction state of one canvas. The engine owns
// the only instance; callers receive copies.
type Session struct {
	Mode       Mode             `json:"mode"`
	CableType  models.CableType `json:"cableType"`
	SelectedID string           `json:"selectedId,omitempty"`
	Drag       *Drag            `json:"drag,omitempty"`

	Connection ConnState           `json:"connection"`
	SourceID   string              `json:"sourceId,omitempty"`
	Anchor     *models.Point       `json:"anchor,omitempty"`
	CableEnd   *models.Point       `json:"cableEnd,omitempty"`
	Pending    *models.PendingLink `json:"pending,omitempty"`
	Picker     *PortPicker         `json:"picker,omitempty"`
}

func newSession(cable models.CableType) Session {
	return Session{Mode: ModeCursor, CableType: cable, Connection: StateIdle}
}

// Clone returns a deep copy of s.
func (s Session) Clone() Session {
	c := s
	if s.Drag != nil {
		d := *s.Drag
		c.Drag = &d
	}
	if s.Anchor != nil {
		p := *s.Anchor
		c.Anchor = &p
	}
	if s.CableEnd != nil {
		p := *s.CableEnd
		c.CableEnd = &p
	}
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Picker != nil {
		c.Picker = &PortPicker{
			Source: slices.Clone(s.Picker.Source),
			Target: slices.Clone(s.Picker.Target),
		}
	}
	return c
}

// resetConnection returns the connection workflow to idle.
func (s *Session) resetConnection() {
	s.Connection = StateIdle
	s.SourceID = ""
	s.Anchor = nil
	s.CableEnd = nil
	s.Pending = nil
	s.Picker = nil
}

// resetInteraction drops selection, drag and any connection in progress.
// Mode and cable type survive.
func (s *Session) resetInteraction() {
	s.SelectedID = ""
	s.Drag = nil
	s.resetConnection()
}
