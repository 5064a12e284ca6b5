package canvas

import (
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/danmudi/netlab/pkg/models"
)

// Workflow errors.
var (
	ErrNoPendingLink        = errors.New("no pending link")
	ErrInterfaceUnavailable = errors.New("interface unavailable")
)

// Topology is the read side of the topology store the workflow consults.
type Topology interface {
	Device(id string) (models.Device, bool)
	LinkBetween(a, b string) (models.Link, bool)
	AvailableInterfaces(deviceID string) []models.Interface
}

// LinkRequest is a link the workflow wants created. Empty interface ids
// leave that end unbound.
type LinkRequest struct {
	SourceID          string
	TargetID          string
	CableType         models.CableType
	SourceInterfaceID string
	TargetInterfaceID string
}

// Workflow drives a link from pointer-down on the source, through the
// drag, to either a direct commit or port selection. It keeps its state in
// the engine's Session and never writes to the topology itself: the
// operations that finish a link return a LinkRequest for the caller to
// apply. Not safe for concurrent use.
type Workflow struct {
	session       *Session
	topo          Topology
	portSelection bool
	logger        *zap.Logger
}

// NewWorkflow binds a workflow to session.
func NewWorkflow(session *Session, topo Topology, portSelection bool, logger *zap.Logger) *Workflow {
	return &Workflow{session: session, topo: topo, portSelection: portSelection, logger: logger}
}

// State returns the current workflow state.
func (w *Workflow) State() ConnState {
	return w.session.Connection
}

// Begin starts dragging a cable from sourceID, anchored at anchor. It is
// ignored unless the workflow is idle and the source exists.
func (w *Workflow) Begin(sourceID string, anchor models.Point) bool {
	if w.session.Connection != StateIdle {
		return false
	}
	if _, ok := w.topo.Device(sourceID); !ok {
		return false
	}
	end := anchor
	w.session.Connection = StateDragging
	w.session.SourceID = sourceID
	w.session.Anchor = &anchor
	w.session.CableEnd = &end
	return true
}

// Drag moves the free end of the cable.
func (w *Workflow) Drag(p models.Point) {
	if w.session.Connection != StateDragging {
		return
	}
	w.session.CableEnd = &p
}

// Release drops the cable on targetID, or on empty canvas when targetID is
// empty. It returns the link to create when the connection commits
// directly, and nil when nothing is created or port selection begins.
//
// Self and duplicate pairs are returned as plain requests so the store
// rejects and records them; they never reach port selection.
func (w *Workflow) Release(targetID string) *LinkRequest {
	if w.session.Connection != StateDragging {
		return nil
	}
	sourceID := w.session.SourceID
	cable := w.session.CableType
	w.session.resetConnection()

	if targetID == "" {
		return nil
	}
	plain := &LinkRequest{SourceID: sourceID, TargetID: targetID, CableType: cable}
	if targetID == sourceID {
		return plain
	}
	if _, dup := w.topo.LinkBetween(sourceID, targetID); dup {
		return plain
	}
	src, okSrc := w.topo.Device(sourceID)
	dst, okDst := w.topo.Device(targetID)
	if !okSrc || !okDst {
		return plain
	}
	if !w.portSelection || (!src.PortAware() && !dst.PortAware()) {
		return plain
	}

	picker := &PortPicker{}
	if src.PortAware() {
		if picker.Source = w.topo.AvailableInterfaces(sourceID); len(picker.Source) == 0 {
			w.logger.Debug("connection aborted, no free interface", zap.String("device_id", sourceID))
			return nil
		}
	}
	if dst.PortAware() {
		if picker.Target = w.topo.AvailableInterfaces(targetID); len(picker.Target) == 0 {
			w.logger.Debug("connection aborted, no free interface", zap.String("device_id", targetID))
			return nil
		}
	}

	w.session.Connection = StateAwaitingPortSelection
	w.session.Pending = &models.PendingLink{SourceID: sourceID, TargetID: targetID, CableType: cable}
	w.session.Picker = picker
	return nil
}

// Leave handles the pointer leaving the canvas mid-drag. A pending port
// selection is unaffected.
func (w *Workflow) Leave() {
	if w.session.Connection == StateDragging {
		w.session.resetConnection()
	}
}

// Confirm validates the chosen interfaces for the pending link and returns
// the request to commit. The pending link stays in place until Resolve, so
// a rejected choice can be retried.
func (w *Workflow) Confirm(sourceIf, targetIf string) (LinkRequest, error) {
	p := w.session.Pending
	if w.session.Connection != StateAwaitingPortSelection || p == nil {
		return LinkRequest{}, ErrNoPendingLink
	}
	if !w.selectable(p.SourceID, sourceIf) || !w.selectable(p.TargetID, targetIf) {
		return LinkRequest{}, ErrInterfaceUnavailable
	}
	return LinkRequest{
		SourceID:          p.SourceID,
		TargetID:          p.TargetID,
		CableType:         p.CableType,
		SourceInterfaceID: sourceIf,
		TargetInterfaceID: targetIf,
	}, nil
}

// selectable reports whether ifID is an acceptable choice for deviceID.
// Port-aware devices must name a free interface they own; other devices
// may pass "" or a free interface.
func (w *Workflow) selectable(deviceID, ifID string) bool {
	d, ok := w.topo.Device(deviceID)
	if !ok {
		return false
	}
	if ifID == "" {
		return !d.PortAware()
	}
	return slices.ContainsFunc(w.topo.AvailableInterfaces(deviceID), func(i models.Interface) bool {
		return i.ID == ifID
	})
}

// Resolve clears the pending link once req has been committed. A pending
// link for a different pair is left alone.
func (w *Workflow) Resolve(req LinkRequest) {
	p := w.session.Pending
	if p != nil && p.SourceID == req.SourceID && p.TargetID == req.TargetID {
		w.session.resetConnection()
	}
}

// Cancel abandons any connection in progress.
func (w *Workflow) Cancel() {
	w.session.resetConnection()
}

// DeviceRemoved cancels the connection in progress when id is one of its
// endpoints.
func (w *Workflow) DeviceRemoved(id string) {
	if id == "" {
		return
	}
	s := w.session
	switch {
	case s.SourceID == id:
		s.resetConnection()
	case s.Pending != nil && (s.Pending.SourceID == id || s.Pending.TargetID == id):
		s.resetConnection()
	}
}
