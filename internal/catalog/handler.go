package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	pkgcatalog "github.com/danmudi/netlab/pkg/catalog"
	"github.com/danmudi/netlab/pkg/models"
)

// Loader replaces the live topology.
type Loader interface {
	Import(snap models.Snapshot) error
}

// TemplateSummary is a catalog entry without its topology.
type TemplateSummary struct {
	ID          string          `json:"id"`
	Kind        pkgcatalog.Kind `json:"kind"`
	Mode        models.Category `json:"mode"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Difficulty  string          `json:"difficulty,omitempty"`
	Goal        string          `json:"goal,omitempty"`
	Devices     int             `json:"devices"`
	Links       int             `json:"links"`
}

// ListResponse is the response for GET /api/v1/catalog/templates.
type ListResponse struct {
	Count     int               `json:"count"`
	Templates []TemplateSummary `json:"templates"`
}

// OpenResponse reports what an open or scratch request loaded.
type OpenResponse struct {
	Template     string          `json:"template,omitempty"`
	Mode         models.Category `json:"mode"`
	Devices      int             `json:"devices"`
	Links        int             `json:"links"`
	DroppedLinks int             `json:"dropped_links"`
}

// ScratchRequest is the body of POST /api/v1/catalog/scratch.
type ScratchRequest struct {
	Mode  models.Category   `json:"mode"`
	Board models.DeviceType `json:"board,omitempty"`
}

// Handler serves the template catalog API.
type Handler struct {
	engine *Engine
	loader Loader
	logger *zap.Logger
}

// NewHandler creates a new catalog API handler. Opened templates are
// handed to loader.
func NewHandler(engine *Engine, loader Loader, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, loader: loader, logger: logger}
}

// RegisterRoutes mounts the catalog routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/catalog/templates", h.handleList)
	mux.HandleFunc("GET /api/v1/catalog/templates/{id}", h.handleGet)
	mux.HandleFunc("POST /api/v1/catalog/templates/{id}/open", h.handleOpen)
	mux.HandleFunc("POST /api/v1/catalog/scratch", h.handleScratch)
}

// handleList returns template summaries filtered by ?mode=, ?kind= and ?q=.
//
//	@Summary		List templates
//	@Tags			catalog
//	@Produce		json
//	@Param			mode query string false "net or iot"
//	@Param			kind query string false "challenge or starter"
//	@Param			q query string false "Search title and description"
//	@Success		200 {object} ListResponse
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/catalog/templates [get]
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Mode:   models.Category(q.Get("mode")),
		Kind:   pkgcatalog.Kind(q.Get("kind")),
		Search: q.Get("q"),
	}
	if f.Mode != "" && f.Mode != models.CategoryNetwork && f.Mode != models.CategoryIoT {
		writeError(w, http.StatusBadRequest, ErrInvalidMode.Error())
		return
	}

	templates, err := h.engine.List(f)
	if err != nil {
		h.logger.Error("failed to load catalog", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}

	out := make([]TemplateSummary, 0, len(templates))
	for i := range templates {
		t := &templates[i]
		out = append(out, TemplateSummary{
			ID:          t.ID,
			Kind:        t.Kind,
			Mode:        t.Mode,
			Title:       t.Title,
			Description: t.Description,
			Difficulty:  t.Difficulty,
			Goal:        t.Goal,
			Devices:     len(t.Topology.Devices),
			Links:       len(t.Topology.Links),
		})
	}
	writeJSON(w, http.StatusOK, ListResponse{Count: len(out), Templates: out})
}

// handleGet returns one template with its topology.
//
//	@Summary		Get template
//	@Tags			catalog
//	@Produce		json
//	@Param			id path string true "Template ID"
//	@Success		200 {object} pkgcatalog.Template
//	@Failure		404 {object} map[string]any
//	@Router			/catalog/templates/{id} [get]
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	t, err := h.engine.Get(r.PathValue("id"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handleOpen replaces the canvas with the template's topology.
//
//	@Summary		Open template
//	@Tags			catalog
//	@Produce		json
//	@Param			id path string true "Template ID"
//	@Success		200 {object} OpenResponse
//	@Failure		404 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/catalog/templates/{id}/open [post]
func (h *Handler) handleOpen(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	snap, report, err := h.engine.Instantiate(id)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if err := h.loader.Import(snap); err != nil {
		h.logger.Error("failed to open template", zap.String("template", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to open template")
		return
	}
	h.logger.Info("template opened", zap.String("template", id))
	writeJSON(w, http.StatusOK, OpenResponse{
		Template:     id,
		Mode:         snap.Mode,
		Devices:      len(snap.Devices),
		Links:        len(snap.Links),
		DroppedLinks: len(report.DroppedLinks),
	})
}

// handleScratch replaces the canvas with an empty lab.
//
//	@Summary		Start from scratch
//	@Tags			catalog
//	@Accept			json
//	@Produce		json
//	@Param			body body ScratchRequest true "Lab mode and optional IoT board"
//	@Success		200 {object} OpenResponse
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/catalog/scratch [post]
func (h *Handler) handleScratch(w http.ResponseWriter, r *http.Request) {
	var req ScratchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	snap, err := Scratch(req.Mode, req.Board)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.loader.Import(snap); err != nil {
		h.logger.Error("failed to start scratch lab", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to start lab")
		return
	}
	writeJSON(w, http.StatusOK, OpenResponse{Mode: snap.Mode, Devices: len(snap.Devices)})
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrTemplateNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("catalog request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "failed to load catalog")
}

// -- helpers --

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://netlab.dev/problems/catalog-error",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
