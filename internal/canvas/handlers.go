package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/snapshot"
	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/models"
)

// maxImportBytes caps snapshot uploads.
const maxImportBytes = 8 << 20

// Handler serves the topology and canvas API.
type Handler struct {
	engine *Engine
	logger *zap.Logger
}

// NewHandler creates a canvas API handler.
func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

// RegisterRoutes registers topology and canvas routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Topology data
	mux.HandleFunc("GET /api/v1/topology", h.handleGetTopology)
	mux.HandleFunc("GET /api/v1/topology/summary", h.handleSummary)
	mux.HandleFunc("GET /api/v1/topology/export", h.handleExport)
	mux.HandleFunc("POST /api/v1/topology/import", h.handleImport)
	mux.HandleFunc("POST /api/v1/topology/devices", h.handleAddDevice)
	mux.HandleFunc("POST /api/v1/topology/switches", h.handleAddSwitch)
	mux.HandleFunc("GET /api/v1/topology/devices/{id}", h.handleGetDevice)
	mux.HandleFunc("PATCH /api/v1/topology/devices/{id}", h.handleUpdateDevice)
	mux.HandleFunc("DELETE /api/v1/topology/devices/{id}", h.handleDeleteDevice)
	mux.HandleFunc("PUT /api/v1/topology/devices/{id}/position", h.handleMoveDevice)
	mux.HandleFunc("POST /api/v1/topology/devices/{id}/interfaces", h.handleAddInterface)
	mux.HandleFunc("PATCH /api/v1/topology/devices/{id}/interfaces/{ifid}", h.handleUpdateInterface)
	mux.HandleFunc("DELETE /api/v1/topology/devices/{id}/interfaces/{ifid}", h.handleRemoveInterface)
	mux.HandleFunc("POST /api/v1/topology/links", h.handleAddLink)
	mux.HandleFunc("DELETE /api/v1/topology/links/{id}", h.handleDeleteLink)

	// Interaction session
	mux.HandleFunc("GET /api/v1/canvas/session", h.handleSession)
	mux.HandleFunc("GET /api/v1/canvas/mode", h.handleGetMode)
	mux.HandleFunc("PUT /api/v1/canvas/mode", h.handleSetMode)
	mux.HandleFunc("PUT /api/v1/canvas/cable", h.handleSetCable)
	mux.HandleFunc("POST /api/v1/canvas/pointer/{action}", h.handlePointer)
	mux.HandleFunc("POST /api/v1/canvas/pending/confirm", h.handleConfirm)
	mux.HandleFunc("POST /api/v1/canvas/pending/cancel", h.handleCancel)
	mux.HandleFunc("POST /api/v1/canvas/clear", h.handleClear)
}

func (h *Handler) store() *topology.Store { return h.engine.Store() }

// handleGetTopology returns the full topology snapshot.
//
//	@Summary		Get topology
//	@Tags			topology
//	@Produce		json
//	@Success		200 {object} models.Snapshot
//	@Router			/topology [get]
func (h *Handler) handleGetTopology(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store().Snapshot())
}

// handleSummary returns the plain-text lab summary used as tutor context.
//
//	@Summary		Get topology summary
//	@Tags			topology
//	@Produce		plain
//	@Success		200 {string} string
//	@Router			/topology/summary [get]
func (h *Handler) handleSummary(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, h.store().Summary())
}

// handleExport encodes the topology for download.
//
//	@Summary		Export topology
//	@Tags			topology
//	@Produce		json,application/yaml
//	@Param			format query string false "json or yaml" default(json)
//	@Success		200 {object} models.Snapshot
//	@Failure		400 {object} map[string]any
//	@Router			/topology/export [get]
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := snapshot.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := snapshot.Encode(h.store().Snapshot(), format)
	if err != nil {
		h.logger.Error("failed to encode snapshot", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to encode topology")
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="topology.%s"`, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ImportResponse reports the outcome of a snapshot import.
type ImportResponse struct {
	Devices int             `json:"devices"`
	Links   int             `json:"links"`
	Report  snapshot.Report `json:"report"`
}

// handleImport replaces the topology with an uploaded snapshot.
//
//	@Summary		Import topology
//	@Description	Validates the whole document first; an invalid snapshot leaves the topology untouched. Self, duplicate and dangling links are dropped and reported.
//	@Tags			topology
//	@Accept			json
//	@Produce		json
//	@Param			format query string false "json or yaml" default(json)
//	@Param			body body models.Snapshot true "Snapshot document"
//	@Success		200 {object} ImportResponse
//	@Failure		400 {object} map[string]any
//	@Router			/topology/import [post]
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := snapshot.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read snapshot")
		return
	}
	snap, report, err := snapshot.Decode(data, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.engine.Import(snap); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Info("topology imported",
		zap.Int("devices", len(snap.Devices)),
		zap.Int("links", len(snap.Links)),
		zap.Int("dropped_links", len(report.DroppedLinks)),
	)
	writeJSON(w, http.StatusOK, ImportResponse{Devices: len(snap.Devices), Links: len(snap.Links), Report: report})
}

// AddDeviceRequest places a device. X and Y are optional.
type AddDeviceRequest struct {
	Type models.DeviceType `json:"type"`
	X    *float64          `json:"x,omitempty"`
	Y    *float64          `json:"y,omitempty"`
}

func (r AddDeviceRequest) hint() *models.Point {
	if r.X == nil || r.Y == nil {
		return nil
	}
	return &models.Point{X: *r.X, Y: *r.Y}
}

// handleAddDevice places a device on the canvas.
//
//	@Summary		Add device
//	@Tags			topology
//	@Accept			json
//	@Produce		json
//	@Param			body body AddDeviceRequest true "Device type and optional position"
//	@Success		201 {object} models.Device
//	@Failure		400 {object} map[string]any
//	@Router			/topology/devices [post]
func (h *Handler) handleAddDevice(w http.ResponseWriter, r *http.Request) {
	var req AddDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := h.engine.AddDevice(req.Type, req.hint())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// AddSwitchRequest quick-adds a switch with Ports interfaces.
type AddSwitchRequest struct {
	Ports int      `json:"ports"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
}

// handleAddSwitch quick-adds a switch with a chosen port count.
//
//	@Summary		Quick-add switch
//	@Tags			topology
//	@Accept			json
//	@Produce		json
//	@Param			body body AddSwitchRequest true "Port count and optional position"
//	@Success		201 {object} models.Device
//	@Failure		400 {object} map[string]any
//	@Router			/topology/switches [post]
func (h *Handler) handleAddSwitch(w http.ResponseWriter, r *http.Request) {
	var req AddSwitchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hint := AddDeviceRequest{X: req.X, Y: req.Y}.hint()
	d, err := h.engine.QuickAddSwitch(req.Ports, hint)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// handleGetDevice returns one device.
//
//	@Summary		Get device
//	@Tags			topology
//	@Produce		json
//	@Param			id path string true "Device ID"
//	@Success		200 {object} models.Device
//	@Failure		404 {object} map[string]any
//	@Router			/topology/devices/{id} [get]
func (h *Handler) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	h.writeDevice(w, r.PathValue("id"))
}

// handleUpdateDevice applies a configuration patch to a device.
//
//	@Summary		Update device
//	@Tags			topology
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Device ID"
//	@Param			body body topology.DevicePatch true "Fields to change"
//	@Success		200 {object} models.Device
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/topology/devices/{id} [patch]
func (h *Handler) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	var patch topology.DevicePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	id := r.PathValue("id")
	if !h.store().UpdateDevice(id, patch) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	h.writeDevice(w, id)
}

// handleDeleteDevice removes a device and every link touching it.
//
//	@Summary		Delete device
//	@Tags			topology
//	@Param			id path string true "Device ID"
//	@Success		204
//	@Failure		404 {object} map[string]any
//	@Router			/topology/devices/{id} [delete]
func (h *Handler) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if !h.engine.DeleteDevice(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMoveDevice sets a device position.
//
//	@Summary		Move device
//	@Tags			topology
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Device ID"
//	@Param			body body models.Point true "New position"
//	@Success		200 {object} models.Device
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/topology/devices/{id}/position [put]
func (h *Handler) handleMoveDevice(w http.ResponseWriter, r *http.Request) {
	var p models.Point
	if !decodeBody(w, r, &p) {
		return
	}
	id := r.PathValue("id")
	if !h.store().MoveDevice(id, p.X, p.Y) {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	h.writeDevice(w, id)
}

// handleAddInterface adds a named interface to a device.
//
//	@Summary		Add interface
//	@Tags			topology
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Device ID"
//	@Param			body body map[string]string true "Interface name"
//	@Success		201 {object} models.Interface
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/topology/devices/{id}/interfaces [post]
func (h *Handler) handleAddInterface(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	iface, ok := h.store().AddInterface(r.PathValue("id"), req.Name)
	if !ok {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	writeJSON(w, http.StatusCreated, iface)
}

// handleUpdateInterface edits interface addressing.
//
//	@Summary		Update interface
//	@Tags			topology
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Device ID"
//	@Param			ifid path string true "Interface ID"
//	@Param			body body topology.InterfacePatch true "Fields to change"
//	@Success		200 {object} models.Device
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/topology/devices/{id}/interfaces/{ifid} [patch]
func (h *Handler) handleUpdateInterface(w http.ResponseWriter, r *http.Request) {
	var patch topology.InterfacePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	id := r.PathValue("id")
	if !h.store().UpdateInterface(id, r.PathValue("ifid"), patch) {
		writeError(w, http.StatusNotFound, "interface not found")
		return
	}
	h.writeDevice(w, id)
}

// handleRemoveInterface removes an interface and the link bound to it.
//
//	@Summary		Remove interface
//	@Tags			topology
//	@Param			id path string true "Device ID"
//	@Param			ifid path string true "Interface ID"
//	@Success		204
//	@Failure		404 {object} map[string]any
//	@Router			/topology/devices/{id}/interfaces/{ifid} [delete]
func (h *Handler) handleRemoveInterface(w http.ResponseWriter, r *http.Request) {
	if !h.store().RemoveInterface(r.PathValue("id"), r.PathValue("ifid")) {
		writeError(w, http.StatusNotFound, "interface not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLinkRequest creates a link directly, bypassing the pointer workflow.
type AddLinkRequest struct {
	SourceID          string           `json:"sourceId"`
	TargetID          string           `json:"targetId"`
	Type              models.CableType `json:"type"`
	SourceInterfaceID string           `json:"sourceInterfaceId,omitempty"`
	TargetInterfaceID string           `json:"targetInterfaceId,omitempty"`
}

// handleAddLink creates a link directly, bypassing the pointer workflow.
//
//	@Summary		Add link
//	@Tags			topology
//	@Accept			json
//	@Produce		json
//	@Param			body body AddLinkRequest true "Endpoints, cable and optional interfaces"
//	@Success		201 {object} models.Link
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Failure		409 {object} map[string]any
//	@Router			/topology/links [post]
func (h *Handler) handleAddLink(w http.ResponseWriter, r *http.Request) {
	var req AddLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = h.engine.Session().CableType
	}
	l, err := h.store().AddBoundLink(req.SourceID, req.TargetID, req.Type, req.SourceInterfaceID, req.TargetInterfaceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// handleDeleteLink removes a link and frees its interfaces.
//
//	@Summary		Delete link
//	@Tags			topology
//	@Param			id path string true "Link ID"
//	@Success		204
//	@Failure		404 {object} map[string]any
//	@Router			/topology/links/{id} [delete]
func (h *Handler) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	if !h.engine.DeleteLink(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "link not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSession returns the interaction session.
//
//	@Summary		Get canvas session
//	@Tags			canvas
//	@Produce		json
//	@Success		200 {object} Session
//	@Router			/canvas/session [get]
func (h *Handler) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Session())
}

type modeBody struct {
	Mode Mode `json:"mode"`
}

// handleGetMode returns the active tool.
//
//	@Summary		Get tool mode
//	@Tags			canvas
//	@Produce		json
//	@Success		200 {object} modeBody
//	@Router			/canvas/mode [get]
func (h *Handler) handleGetMode(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, modeBody{Mode: h.engine.Session().Mode})
}

// handleSetMode switches tools, dropping any drag or connection in progress.
//
//	@Summary		Set tool mode
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body body modeBody true "cursor, connect or erase"
//	@Success		200 {object} modeBody
//	@Failure		400 {object} map[string]any
//	@Router			/canvas/mode [put]
func (h *Handler) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeBody
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.SetMode(req.Mode); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// handleSetCable sets the cable used for new links.
//
//	@Summary		Set cable type
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body body map[string]string true "Cable type"
//	@Success		200 {object} Session
//	@Failure		400 {object} map[string]any
//	@Router			/canvas/cable [put]
func (h *Handler) handleSetCable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type models.CableType `json:"type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.SetCableType(req.Type); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Session())
}

// handlePointer feeds one pointer event to the engine.
//
//	@Summary		Pointer event
//	@Description	Returns the session after the event; dblclick returns the device under the point instead.
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			action path string true "down, move, up, leave or dblclick"
//	@Param			body body models.Point false "Canvas point; omitted for leave"
//	@Success		200 {object} Session
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/canvas/pointer/{action} [post]
func (h *Handler) handlePointer(w http.ResponseWriter, r *http.Request) {
	action := r.PathValue("action")
	var p models.Point
	if action != "leave" && !decodeBody(w, r, &p) {
		return
	}

	switch action {
	case "down":
		writeJSON(w, http.StatusOK, h.engine.PointerDown(p))
	case "move":
		writeJSON(w, http.StatusOK, h.engine.PointerMove(p))
	case "up":
		writeJSON(w, http.StatusOK, h.engine.PointerUp(p))
	case "leave":
		writeJSON(w, http.StatusOK, h.engine.PointerLeave())
	case "dblclick":
		d, ok := h.engine.DoubleClick(p)
		if !ok {
			writeError(w, http.StatusNotFound, "no device at point")
			return
		}
		writeJSON(w, http.StatusOK, d)
	default:
		writeError(w, http.StatusNotFound, "unknown pointer action: "+action)
	}
}

// ConfirmRequest picks the interfaces for the pending link.
type ConfirmRequest struct {
	SourceInterfaceID string `json:"sourceInterfaceId"`
	TargetInterfaceID string `json:"targetInterfaceId"`
}

// handleConfirm commits the pending link with the picked interfaces.
//
//	@Summary		Confirm pending link
//	@Tags			canvas
//	@Accept			json
//	@Produce		json
//	@Param			body body ConfirmRequest true "Chosen interfaces"
//	@Success		201 {object} models.Link
//	@Failure		400 {object} map[string]any
//	@Failure		409 {object} map[string]any
//	@Router			/canvas/pending/confirm [post]
func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	l, err := h.engine.Confirm(req.SourceInterfaceID, req.TargetInterfaceID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// handleCancel abandons a drag or pending link.
//
//	@Summary		Cancel pending link
//	@Tags			canvas
//	@Produce		json
//	@Success		200 {object} Session
//	@Router			/canvas/pending/cancel [post]
func (h *Handler) handleCancel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Cancel())
}

// handleClear deletes every device and link once confirmed.
//
//	@Summary		Clear canvas
//	@Tags			canvas
//	@Accept			json
//	@Param			body body map[string]bool true "confirm must be true"
//	@Success		204
//	@Failure		400 {object} map[string]any
//	@Router			/canvas/clear [post]
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.engine.Clear(req.Confirm); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeDevice(w http.ResponseWriter, id string) {
	d, ok := h.store().Device(id)
	if !ok {
		writeError(w, http.StatusNotFound, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// -- helpers --

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeStoreError maps topology and workflow errors to problem responses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, topology.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, topology.ErrSelfLink),
		errors.Is(err, topology.ErrDuplicateLink),
		errors.Is(err, topology.ErrInterfaceBound),
		errors.Is(err, ErrNoPendingLink),
		errors.Is(err, ErrInterfaceUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://netlab.dev/problems/canvas-error",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
