package projects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/danmudi/netlab/internal/plugin"
	"github.com/danmudi/netlab/internal/server"
	"github.com/danmudi/netlab/internal/snapshot"
	"github.com/danmudi/netlab/pkg/models"
	pkgplugin "github.com/danmudi/netlab/pkg/plugin"
)

var (
	_ plugin.Plugin           = (*Plugin)(nil)
	_ pkgplugin.HealthChecker = (*Plugin)(nil)
)

// Loader replaces the live topology with a saved one.
type Loader interface {
	Import(snap models.Snapshot) error
}

// Plugin exposes saved projects as the "projects" module.
type Plugin struct {
	store  pkgplugin.Store
	source Source
	loader Loader
	logger *zap.Logger

	repo      Repository
	autosaver *Autosaver
}

// New creates the projects plugin. source is captured by saves and
// autosave; loader receives loaded projects.
func New(store pkgplugin.Store, source Source, loader Loader) *Plugin {
	return &Plugin{store: store, source: source, loader: loader}
}

func (p *Plugin) Name() string    { return "projects" }
func (p *Plugin) Version() string { return "0.1.0" }

func (p *Plugin) Init(config *viper.Viper, logger *zap.Logger) error {
	p.logger = logger

	repo, err := NewSQLiteRepository(context.Background(), p.store)
	if err != nil {
		return err
	}
	p.repo = repo

	p.autosaver, err = NewAutosaver(repo, p.source, config.GetString("autosave_schedule"), logger)
	if err != nil {
		return err
	}
	p.logger.Info("projects module initialized")
	return nil
}

func (p *Plugin) Start(ctx context.Context) error {
	return p.autosaver.Start(ctx)
}

func (p *Plugin) Stop() error {
	p.autosaver.Stop()
	return nil
}

// Repository returns the project repository. Nil before Init.
func (p *Plugin) Repository() Repository { return p.repo }

// schemaVersioner is implemented by stores that can report migrations.
type schemaVersioner interface {
	SchemaVersion(ctx context.Context, owner string) (int, error)
}

// Health implements pkgplugin.HealthChecker by pinging the database.
func (p *Plugin) Health(ctx context.Context) pkgplugin.HealthStatus {
	if err := p.store.DB().PingContext(ctx); err != nil {
		return pkgplugin.HealthStatus{Status: pkgplugin.HealthDown, Message: err.Error()}
	}
	status := pkgplugin.HealthStatus{Status: pkgplugin.HealthOK}
	if sv, ok := p.store.(schemaVersioner); ok {
		if v, err := sv.SchemaVersion(ctx, p.Name()); err == nil {
			status.Details = map[string]string{"schema_version": strconv.Itoa(v)}
		}
	}
	return status
}

func (p *Plugin) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "", Handler: p.handleList},
		{Method: "POST", Path: "", Handler: p.handleCreate},
		{Method: "POST", Path: "/autosave", Handler: p.handleAutosave},
		{Method: "GET", Path: "/{id}", Handler: p.handleGet},
		{Method: "PUT", Path: "/{id}", Handler: p.handleUpdate},
		{Method: "DELETE", Path: "/{id}", Handler: p.handleDelete},
		{Method: "POST", Path: "/{id}/load", Handler: p.handleLoad},
	}
}

// CreateRequest is the body of POST /projects. Without a snapshot the
// live topology is saved.
type CreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
}

// UpdateRequest is the body of PUT /projects/{id}. Capture replaces the
// saved snapshot with the live topology; Snapshot replaces it with the
// given document.
type UpdateRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Capture     bool            `json:"capture"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
}

// LoadResponse reports what POST /projects/{id}/load put on the canvas.
type LoadResponse struct {
	ID      string `json:"id"`
	Devices int    `json:"devices"`
	Links   int    `json:"links"`
}

// handleList returns saved projects, newest first by default.
//
//	@Summary		List projects
//	@Tags			projects
//	@Produce		json
//	@Param			sort query string false "name, created_at or updated_at"
//	@Param			order query string false "asc or desc"
//	@Param			q query string false "Search name and description"
//	@Param			limit query int false "Page size"
//	@Param			offset query int false "Page offset"
//	@Success		200 {object} ListResult[Project]
//	@Failure		500 {object} map[string]any
//	@Router			/projects [get]
func (p *Plugin) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := ListOptions{
		SortBy:    q.Get("sort"),
		SortOrder: q.Get("order"),
		Search:    q.Get("q"),
	}
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	opts.Offset, _ = strconv.Atoi(q.Get("offset"))

	res, err := p.repo.List(r.Context(), opts)
	if err != nil {
		p.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCreate saves a project. Without a snapshot the live topology is captured.
//
//	@Summary		Save project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body body CreateRequest true "Project"
//	@Success		201 {object} Project
//	@Failure		400 {object} map[string]any
//	@Failure		409 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/projects [post]
func (p *Plugin) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		server.BadRequest(w, "name is required", r.URL.Path)
		return
	}

	snap, ok := p.snapshotFrom(w, r, req.Snapshot)
	if !ok {
		return
	}
	proj := &Project{Name: name, Description: req.Description, Snapshot: &snap}
	if err := p.repo.Create(r.Context(), proj); err != nil {
		p.writeRepoError(w, r, err)
		return
	}
	p.logger.Info("project saved", zap.String("id", proj.ID), zap.String("name", proj.Name))
	writeJSON(w, http.StatusCreated, proj)
}

// handleGet returns one project with its snapshot.
//
//	@Summary		Get project
//	@Tags			projects
//	@Produce		json
//	@Param			id path string true "Project ID"
//	@Success		200 {object} Project
//	@Failure		404 {object} map[string]any
//	@Router			/projects/{id} [get]
func (p *Plugin) handleGet(w http.ResponseWriter, r *http.Request) {
	proj, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

// handleUpdate renames a project or replaces its snapshot.
//
//	@Summary		Update project
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			id path string true "Project ID"
//	@Param			body body UpdateRequest true "Fields to change"
//	@Success		200 {object} Project
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Failure		409 {object} map[string]any
//	@Router			/projects/{id} [put]
func (p *Plugin) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.BadRequest(w, "invalid request body", r.URL.Path)
		return
	}
	proj, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeRepoError(w, r, err)
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			server.BadRequest(w, "name must not be empty", r.URL.Path)
			return
		}
		proj.Name = name
	}
	if req.Description != nil {
		proj.Description = *req.Description
	}
	switch {
	case len(req.Snapshot) > 0:
		snap, ok := p.snapshotFrom(w, r, req.Snapshot)
		if !ok {
			return
		}
		proj.Snapshot, proj.Mode = &snap, ""
	case req.Capture:
		snap := p.source.Snapshot()
		proj.Snapshot, proj.Mode = &snap, ""
	default:
		proj.Snapshot = nil
	}

	if err := p.repo.Update(r.Context(), proj); err != nil {
		p.writeRepoError(w, r, err)
		return
	}
	updated, err := p.repo.Get(r.Context(), proj.ID)
	if err != nil {
		p.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// handleDelete removes a saved project.
//
//	@Summary		Delete project
//	@Tags			projects
//	@Param			id path string true "Project ID"
//	@Success		204
//	@Failure		404 {object} map[string]any
//	@Router			/projects/{id} [delete]
func (p *Plugin) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := p.repo.Delete(r.Context(), r.PathValue("id")); err != nil {
		p.writeRepoError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLoad replaces the canvas with a project's snapshot.
//
//	@Summary		Load project
//	@Tags			projects
//	@Produce		json
//	@Param			id path string true "Project ID"
//	@Success		200 {object} LoadResponse
//	@Failure		400 {object} map[string]any
//	@Failure		404 {object} map[string]any
//	@Router			/projects/{id}/load [post]
func (p *Plugin) handleLoad(w http.ResponseWriter, r *http.Request) {
	proj, err := p.repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		p.writeRepoError(w, r, err)
		return
	}
	if err := p.loader.Import(*proj.Snapshot); err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return
	}
	p.logger.Info("project loaded", zap.String("id", proj.ID))
	writeJSON(w, http.StatusOK, LoadResponse{
		ID:      proj.ID,
		Devices: len(proj.Snapshot.Devices),
		Links:   len(proj.Snapshot.Links),
	})
}

// handleAutosave runs the autosave job now.
//
//	@Summary		Autosave
//	@Description	Saves the live topology to the autosave project unless it is unchanged since the last run.
//	@Tags			projects
//	@Produce		json
//	@Success		200 {object} map[string]bool
//	@Failure		500 {object} map[string]any
//	@Router			/projects/autosave [post]
func (p *Plugin) handleAutosave(w http.ResponseWriter, r *http.Request) {
	saved, err := p.autosaver.Run(r.Context())
	if err != nil {
		p.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

// snapshotFrom decodes a request snapshot, or captures the live topology
// when raw is empty.
func (p *Plugin) snapshotFrom(w http.ResponseWriter, r *http.Request, raw json.RawMessage) (models.Snapshot, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return p.source.Snapshot(), true
	}
	snap, report, err := snapshot.Decode(raw, snapshot.FormatJSON)
	if err != nil {
		server.BadRequest(w, err.Error(), r.URL.Path)
		return models.Snapshot{}, false
	}
	if n := len(report.DroppedLinks); n > 0 {
		p.logger.Debug("dropped invalid links from project snapshot", zap.Int("count", n))
	}
	return snap, true
}

func (p *Plugin) writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		server.NotFound(w, "project not found", r.URL.Path)
	case errors.Is(err, ErrAlreadyExists):
		server.Conflict(w, "a project with that name already exists", r.URL.Path)
	default:
		p.internalError(w, r, err)
	}
}

func (p *Plugin) internalError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("projects request failed", zap.String("path", r.URL.Path), zap.Error(err))
	server.InternalError(w, "projects request failed", r.URL.Path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
