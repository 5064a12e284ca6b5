package snapshot

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/danmudi/netlab/internal/topology"
	"github.com/danmudi/netlab/pkg/models"
)

// Reasons reported for dropped links and bindings.
const (
	ReasonSelf      = "self"
	ReasonDuplicate = "duplicate"
	ReasonDangling  = "dangling"
	ReasonBinding   = "binding"
)

// Dropped is a link removed during normalisation.
type Dropped struct {
	Link   models.Link `json:"link"`
	Reason string      `json:"reason"`
}

// Report lists the repairs made while decoding.
type Report struct {
	DroppedLinks []Dropped `json:"dropped_links,omitempty"`
	// ClearedBindings counts link ends whose interface id was unknown or
	// already taken.
	ClearedBindings int `json:"cleared_bindings,omitempty"`
	// LegacyBindings counts bindings recovered from interface
	// connectedToId fields.
	LegacyBindings int `json:"legacy_bindings,omitempty"`
}

// normalize validates devices and repairs links in place.
func normalize(snap *models.Snapshot) (Report, error) {
	var report Report

	// legacy[device][iface] = peer, as written by older exports.
	legacy := make(map[string]map[string]string)
	owned := make(map[string]map[string]bool)
	for i := range snap.Devices {
		d := &snap.Devices[i]
		if d.ID == "" {
			return report, fmt.Errorf("%w: device %d has no id", ErrInvalidSnapshot, i)
		}
		if _, dup := owned[d.ID]; dup {
			return report, fmt.Errorf("%w: duplicate device id %q", ErrInvalidSnapshot, d.ID)
		}
		if !d.Type.Valid() {
			return report, fmt.Errorf("%w: device %q has unknown type %q", ErrInvalidSnapshot, d.ID, d.Type)
		}
		if !d.Status.Valid() {
			d.Status = models.DeviceStatusOnline
		}
		if d.Interfaces == nil {
			d.Interfaces = []models.Interface{}
		}
		if d.SensorValue != nil {
			d.SensorValue = models.Float64(d.Type.ClampSensor(*d.SensorValue))
		}

		owned[d.ID] = make(map[string]bool, len(d.Interfaces))
		for j := range d.Interfaces {
			iface := &d.Interfaces[j]
			if iface.ID == "" {
				iface.ID = "if-" + uuid.New().String()
			}
			if owned[d.ID][iface.ID] {
				return report, fmt.Errorf("%w: device %q repeats interface %q", ErrInvalidSnapshot, d.ID, iface.ID)
			}
			owned[d.ID][iface.ID] = true
			if iface.ConnectedToID != "" {
				if legacy[d.ID] == nil {
					legacy[d.ID] = make(map[string]string)
				}
				legacy[d.ID][iface.ID] = iface.ConnectedToID
				iface.ConnectedToID = ""
			}
		}
	}

	type end struct{ device, iface string }
	taken := make(map[end]bool)
	pairs := make(map[[2]string]bool)
	linkIDs := make(map[string]bool)

	// bind claims ifID on deviceID if it is owned and free.
	bind := func(deviceID, ifID string) bool {
		e := end{deviceID, ifID}
		if !owned[deviceID][ifID] || taken[e] {
			return false
		}
		taken[e] = true
		return true
	}

	links := make([]models.Link, 0, len(snap.Links))
	for _, l := range snap.Links {
		if l.Type == "" {
			l.Type = models.CableStraight
		}
		if !l.Type.Valid() {
			return report, fmt.Errorf("%w: link %q has unknown cable type %q", ErrInvalidSnapshot, l.ID, l.Type)
		}
		if l.ID == "" || linkIDs[l.ID] {
			l.ID = "link-" + uuid.New().String()
		}

		reason := ""
		switch {
		case l.SourceID == l.TargetID:
			reason = ReasonSelf
		case owned[l.SourceID] == nil || owned[l.TargetID] == nil:
			reason = ReasonDangling
		case pairs[topology.PairKey(l.SourceID, l.TargetID)]:
			reason = ReasonDuplicate
		}
		if reason != "" {
			report.DroppedLinks = append(report.DroppedLinks, Dropped{Link: l, Reason: reason})
			continue
		}

		if l.SourceInterfaceID != "" && !bind(l.SourceID, l.SourceInterfaceID) {
			l.SourceInterfaceID = ""
			report.ClearedBindings++
		}
		if l.TargetInterfaceID != "" && !bind(l.TargetID, l.TargetInterfaceID) {
			l.TargetInterfaceID = ""
			report.ClearedBindings++
		}

		pairs[topology.PairKey(l.SourceID, l.TargetID)] = true
		linkIDs[l.ID] = true
		links = append(links, l)
	}

	// Recover bindings that older exports only recorded on interfaces.
	for i := range links {
		l := &links[i]
		if l.SourceInterfaceID == "" {
			if ifID := legacyInterface(legacy[l.SourceID], l.TargetID); ifID != "" && bind(l.SourceID, ifID) {
				l.SourceInterfaceID = ifID
				report.LegacyBindings++
			}
		}
		if l.TargetInterfaceID == "" {
			if ifID := legacyInterface(legacy[l.TargetID], l.SourceID); ifID != "" && bind(l.TargetID, ifID) {
				l.TargetInterfaceID = ifID
				report.LegacyBindings++
			}
		}
	}
	snap.Links = links

	if err := topology.Validate(snap.Devices, snap.Links); err != nil {
		return report, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return report, nil
}

// legacyInterface returns the interface whose recorded peer is peerID.
// Ambiguous records yield "".
func legacyInterface(ifaces map[string]string, peerID string) string {
	found := ""
	for ifID, peer := range ifaces {
		if peer != peerID {
			continue
		}
		if found != "" {
			return ""
		}
		found = ifID
	}
	return found
}
