// Package snapshot encodes and decodes whole-topology snapshots in JSON
// and YAML. Decoding validates the document shape and normalises the links
// so the result can be loaded into a topology store in one step.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danmudi/netlab/pkg/models"
)

// ErrInvalidSnapshot is returned for any document that cannot be loaded.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Format is a snapshot serialization.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied name to a Format. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported snapshot format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode serializes snap, stamping the current version tag.
func Encode(snap models.Snapshot, f Format) ([]byte, error) {
	snap.Version = models.SnapshotVersion
	if snap.Devices == nil {
		snap.Devices = []models.Device{}
	}
	if snap.Links == nil {
		snap.Links = []models.Link{}
	}
	switch f {
	case FormatJSON:
		return json.MarshalIndent(snap, "", "  ")
	case FormatYAML:
		return yaml.Marshal(snap)
	}
	return nil, fmt.Errorf("unsupported snapshot format %q", f)
}

// Decode parses data and returns a snapshot ready for loading together
// with a report of everything normalisation dropped or repaired.
func Decode(data []byte, f Format) (models.Snapshot, Report, error) {
	var tree any
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &tree); err != nil {
			return models.Snapshot{}, Report{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return models.Snapshot{}, Report{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	default:
		return models.Snapshot{}, Report{}, fmt.Errorf("unsupported snapshot format %q", f)
	}
	return decodeTree(tree)
}

// decodeTree checks the generic document shape, then decodes it through
// JSON so both formats share one set of field rules.
func decodeTree(tree any) (models.Snapshot, Report, error) {
	doc, ok := tree.(map[string]any)
	if !ok {
		return models.Snapshot{}, Report{}, fmt.Errorf("%w: document is not an object", ErrInvalidSnapshot)
	}
	if _, ok := doc["devices"].([]any); !ok {
		return models.Snapshot{}, Report{}, fmt.Errorf("%w: devices must be a list", ErrInvalidSnapshot)
	}
	switch doc["links"].(type) {
	case nil:
		doc["links"] = []any{}
	case []any:
	default:
		return models.Snapshot{}, Report{}, fmt.Errorf("%w: links must be a list", ErrInvalidSnapshot)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return models.Snapshot{}, Report{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.Snapshot{}, Report{}, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	if snap.Version != "" && snap.Version != models.SnapshotVersion {
		return models.Snapshot{}, Report{}, fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, snap.Version)
	}
	switch snap.Mode {
	case "", models.CategoryNetwork, models.CategoryIoT:
	default:
		return models.Snapshot{}, Report{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidSnapshot, snap.Mode)
	}

	report, err := normalize(&snap)
	if err != nil {
		return models.Snapshot{}, Report{}, err
	}
	snap.Version = models.SnapshotVersion
	return snap, report, nil
}
