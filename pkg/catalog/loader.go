// Package catalog embeds the lab template catalog: guided challenges and
// starter projects that open a prepared topology on the canvas.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/danmudi/netlab/pkg/models"
)

//go:embed templates.yaml
var templatesRawData []byte

// Kind separates guided challenges from starter projects.
type Kind string

const (
	KindChallenge Kind = "challenge"
	KindStarter   Kind = "starter"
)

// Topology is a template's initial devices and links.
type Topology struct {
	Devices []models.Device `yaml:"devices" json:"devices"`
	Links   []models.Link   `yaml:"links" json:"links"`
}

// Template is one catalog entry.
type Template struct {
	ID          string          `yaml:"id" json:"id"`
	Kind        Kind            `yaml:"kind" json:"kind"`
	Mode        models.Category `yaml:"mode" json:"mode"`
	Title       string          `yaml:"title" json:"title"`
	Description string          `yaml:"description" json:"description"`
	Difficulty  string          `yaml:"difficulty,omitempty" json:"difficulty,omitempty"`
	Goal        string          `yaml:"goal,omitempty" json:"goal,omitempty"`
	Topology    Topology        `yaml:"topology" json:"topology"`
}

// Snapshot returns the template topology as a snapshot in the template's
// mode. The result shares no memory with the catalog.
func (t Template) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		Mode:    t.Mode,
		Devices: make([]models.Device, len(t.Topology.Devices)),
		Links:   make([]models.Link, len(t.Topology.Links)),
	}
	for i, d := range t.Topology.Devices {
		snap.Devices[i] = d.Clone()
	}
	copy(snap.Links, t.Topology.Links)
	return snap
}

// templatesFile is the top-level structure of the embedded YAML.
type templatesFile struct {
	Templates []Template `yaml:"templates"`
}

// Catalog provides lazy-loaded access to the embedded templates.
type Catalog struct {
	once      sync.Once
	templates []Template
	err       error
	raw       []byte
}

// NewCatalog creates a new Catalog that will parse the embedded YAML on
// first access.
func NewCatalog() *Catalog {
	return &Catalog{raw: templatesRawData}
}

// Parse creates a Catalog over an external YAML document with the same
// layout as the embedded one.
func Parse(data []byte) *Catalog {
	return &Catalog{raw: data}
}

// Templates returns a copy of all templates in file order.
func (c *Catalog) Templates() ([]Template, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	cp := make([]Template, len(c.templates))
	copy(cp, c.templates)
	return cp, nil
}

// Template returns the template with the given id.
func (c *Catalog) Template(id string) (Template, bool, error) {
	all, err := c.Templates()
	if err != nil {
		return Template{}, false, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, true, nil
		}
	}
	return Template{}, false, nil
}

// load parses the YAML catalog data and rejects entries the dashboard
// could not open.
func (c *Catalog) load() {
	var f templatesFile
	if err := yaml.Unmarshal(c.raw, &f); err != nil {
		c.err = fmt.Errorf("catalog: parse yaml: %w", err)
		return
	}
	seen := make(map[string]bool, len(f.Templates))
	for _, t := range f.Templates {
		switch {
		case t.ID == "":
			c.err = fmt.Errorf("catalog: template %q has no id", t.Title)
		case seen[t.ID]:
			c.err = fmt.Errorf("catalog: duplicate template id %q", t.ID)
		case t.Kind != KindChallenge && t.Kind != KindStarter:
			c.err = fmt.Errorf("catalog: template %q has unknown kind %q", t.ID, t.Kind)
		case t.Mode != models.CategoryNetwork && t.Mode != models.CategoryIoT:
			c.err = fmt.Errorf("catalog: template %q has unknown mode %q", t.ID, t.Mode)
		}
		if c.err != nil {
			return
		}
		seen[t.ID] = true
	}
	c.templates = f.Templates
}
