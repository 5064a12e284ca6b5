package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/models"
)

func newTestWorkflow(t *testing.T, portSelection bool) (*Workflow, *Session, *topology.Store) {
	t.Helper()
	store := topology.NewStore(zap.NewNop())
	session := newSession(models.CableStraight)
	return NewWorkflow(&session, store, portSelection, zap.NewNop()), &session, store
}

func TestWorkflowBeginRequiresIdleAndKnownSource(t *testing.T) {
	w, s, store := newTestWorkflow(t, true)
	a := store.AddDevice(models.DeviceTypePC, nil)

	assert.False(t, w.Begin("missing", models.Point{}))
	assert.Equal(t, StateIdle, w.State())

	require.True(t, w.Begin(a.ID, a.Center()))
	assert.Equal(t, StateDragging, w.State())
	assert.Equal(t, a.Center(), *s.Anchor)
	assert.False(t, w.Begin(a.ID, a.Center()), "already dragging")
}

func TestWorkflowReleaseOutcomes(t *testing.T) {
	w, s, store := newTestWorkflow(t, true)
	pc := store.AddDevice(models.DeviceTypePC, nil)
	router := store.AddDevice(models.DeviceTypeRouter, nil)
	board := store.AddDevice(models.DeviceTypeESP32, nil)
	temp := store.AddDevice(models.DeviceTypeSensorTemp, nil)

	// Release without a drag does nothing.
	assert.Nil(t, w.Release(router.ID))

	// IoT to IoT commits directly.
	w.Begin(board.ID, models.Point{})
	req := w.Release(temp.ID)
	require.NotNil(t, req)
	assert.Equal(t, LinkRequest{SourceID: board.ID, TargetID: temp.ID, CableType: models.CableStraight}, *req)
	assert.Equal(t, StateIdle, w.State())

	// Network endpoints open the picker.
	s.CableType = models.CableSerial
	w.Begin(pc.ID, models.Point{})
	assert.Nil(t, w.Release(router.ID))
	assert.Equal(t, StateAwaitingPortSelection, w.State())
	require.NotNil(t, s.Picker)
	assert.Len(t, s.Picker.Source, 1)
	assert.Len(t, s.Picker.Target, 1)
	assert.Equal(t, models.CableSerial, s.Pending.CableType)

	// No new drag starts while the picker is open.
	assert.False(t, w.Begin(pc.ID, models.Point{}))
	w.Cancel()
	assert.Equal(t, StateIdle, w.State())
	assert.Nil(t, s.Pending)

	// Mixed pair: only the port-aware end is offered interfaces.
	w.Begin(pc.ID, models.Point{})
	assert.Nil(t, w.Release(board.ID))
	require.Equal(t, StateAwaitingPortSelection, w.State())
	assert.Len(t, s.Picker.Source, 1)
	assert.Nil(t, s.Picker.Target)

	req2, err := w.Confirm(pc.Interfaces[0].ID, "")
	require.NoError(t, err)
	assert.Equal(t, board.ID, req2.TargetID)
	assert.Empty(t, req2.TargetInterfaceID)
	assert.Equal(t, StateAwaitingPortSelection, w.State(), "confirm alone does not clear the pending link")

	w.Resolve(LinkRequest{SourceID: "other", TargetID: board.ID})
	assert.Equal(t, StateAwaitingPortSelection, w.State())
	w.Resolve(req2)
	assert.Equal(t, StateIdle, w.State())
}

func TestWorkflowPortSelectionDisabled(t *testing.T) {
	w, _, store := newTestWorkflow(t, false)
	a := store.AddDevice(models.DeviceTypePC, nil)
	b := store.AddDevice(models.DeviceTypePC, nil)

	w.Begin(a.ID, models.Point{})
	req := w.Release(b.ID)
	require.NotNil(t, req)
	assert.Empty(t, req.SourceInterfaceID)
	assert.Equal(t, StateIdle, w.State())
}

func TestWorkflowDeviceRemoved(t *testing.T) {
	w, _, store := newTestWorkflow(t, true)
	a := store.AddDevice(models.DeviceTypePC, nil)
	b := store.AddDevice(models.DeviceTypePC, nil)
	c := store.AddDevice(models.DeviceTypePC, nil)

	w.Begin(a.ID, models.Point{})
	w.DeviceRemoved(c.ID)
	assert.Equal(t, StateDragging, w.State(), "unrelated device")
	w.DeviceRemoved(a.ID)
	assert.Equal(t, StateIdle, w.State())

	w.Begin(a.ID, models.Point{})
	w.Release(b.ID)
	require.Equal(t, StateAwaitingPortSelection, w.State())
	w.DeviceRemoved("")
	assert.Equal(t, StateAwaitingPortSelection, w.State(), "empty id matches no endpoint")
	w.DeviceRemoved(b.ID)
	assert.Equal(t, StateIdle, w.State())
}

func TestSessionCloneIsDeep(t *testing.T) {
	s := newSession(models.CableStraight)
	s.Drag = &Drag{DeviceID: "a"}
	s.CableEnd = &models.Point{X: 1}
	s.Pending = &models.PendingLink{SourceID: "a"}
	s.Picker = &PortPicker{Source: []models.Interface{{ID: "i"}}}

	c := s.Clone()
	c.Drag.DeviceID = "b"
	c.CableEnd.X = 9
	c.Pending.SourceID = "b"
	c.Picker.Source[0].ID = "j"

	assert.Equal(t, "a", s.Drag.DeviceID)
	assert.Equal(t, 1.0, s.CableEnd.X)
	assert.Equal(t, "a", s.Pending.SourceID)
	assert.Equal(t, "i", s.Picker.Source[0].ID)
}
