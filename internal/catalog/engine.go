// Package catalog filters the embedded template catalog and turns
// templates into snapshots the canvas can load.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danmudi/netlab/internal/snapshot"
	"github.com/danmudi/netlab/internal/topology"
	pkgcatalog "github.com/danmudi/netlab/pkg/catalog"
	"github.com/danmudi/netlab/pkg/models"
)

// Errors returned by the engine.
var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidMode      = errors.New("mode must be net or iot")
	ErrInvalidBoard     = errors.New("scratch board must be a programmable IoT device")
)

// Scratch board placement.
const (
	scratchBoardID   = "dev-1"
	scratchBoardName = "My Board"
	scratchBoardX    = 400
	scratchBoardY    = 300
)

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Mode   models.Category
	Kind   pkgcatalog.Kind
	Search string
}

// Engine filters catalog templates and instantiates them.
type Engine struct {
	cat *pkgcatalog.Catalog
}

// NewEngine creates a new engine backed by the given catalog.
func NewEngine(cat *pkgcatalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// List returns templates matching f in catalog order. Search matches the
// title or description, case-insensitively.
func (e *Engine) List(f Filter) ([]pkgcatalog.Template, error) {
	templates, err := e.cat.Templates()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(f.Search))
	result := make([]pkgcatalog.Template, 0, len(templates))
	for i := range templates {
		t := &templates[i]
		if f.Mode != "" && t.Mode != f.Mode {
			continue
		}
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

// Get returns a single template.
func (e *Engine) Get(id string) (pkgcatalog.Template, error) {
	t, ok, err := e.cat.Template(id)
	if err != nil {
		return pkgcatalog.Template{}, err
	}
	if !ok {
		return pkgcatalog.Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// Instantiate returns the template's topology as a loadable snapshot.
// It runs through the snapshot codec, so templates obey the same rules
// as imported files.
func (e *Engine) Instantiate(id string) (models.Snapshot, snapshot.Report, error) {
	t, err := e.Get(id)
	if err != nil {
		return models.Snapshot{}, snapshot.Report{}, err
	}
	data, err := snapshot.Encode(t.Snapshot(), snapshot.FormatYAML)
	if err != nil {
		return models.Snapshot{}, snapshot.Report{}, fmt.Errorf("encode template %q: %w", id, err)
	}
	snap, report, err := snapshot.Decode(data, snapshot.FormatYAML)
	if err != nil {
		return models.Snapshot{}, snapshot.Report{}, fmt.Errorf("template %q: %w", id, err)
	}
	return snap, report, nil
}

// Scratch returns an empty starting topology. The net palette starts
// empty; the iot palette starts with one programmable board, ARDUINO
// unless board says otherwise.
func Scratch(mode models.Category, board models.DeviceType) (models.Snapshot, error) {
	switch mode {
	case models.CategoryNetwork:
		return models.Snapshot{Mode: mode, Devices: []models.Device{}, Links: []models.Link{}}, nil
	case models.CategoryIoT:
	default:
		return models.Snapshot{}, ErrInvalidMode
	}

	if board == "" {
		board = models.DeviceTypeArduino
	}
	caps := board.Capabilities()
	if !board.Valid() || caps.Category != models.CategoryIoT || !caps.HasProgram {
		return models.Snapshot{}, fmt.Errorf("%w: %q", ErrInvalidBoard, board)
	}
	return models.Snapshot{
		Mode: mode,
		Devices: []models.Device{{
			ID:         scratchBoardID,
			Type:       board,
			Name:       scratchBoardName,
			X:          scratchBoardX,
			Y:          scratchBoardY,
			Status:     models.DeviceStatusOnline,
			Interfaces: []models.Interface{},
			Code:       topology.StarterProgram,
		}},
		Links: []models.Link{},
	}, nil
}
