package topology

import (
	"fmt"

	"github.com/danmudi/netlab/pkg/models"
)

// Validate checks that devices and links form a consistent topology:
// unique non-empty ids, known device types, unique interface ids per
// device, links between two distinct existing devices, one link per pair,
// and each interface bound by at most one link on its own device.
func Validate(devices []models.Device, links []models.Link) error {
	ifaces := make(map[string]map[string]bool, len(devices))
	for i, d := range devices {
		if d.ID == "" {
			return fmt.Errorf("%w: device %d has no id", ErrInvalidTopology, i)
		}
		if _, dup := ifaces[d.ID]; dup {
			return fmt.Errorf("%w: duplicate device id %q", ErrInvalidTopology, d.ID)
		}
		if !d.Type.Valid() {
			return fmt.Errorf("%w: device %q has unknown type %q", ErrInvalidTopology, d.ID, d.Type)
		}
		own := make(map[string]bool, len(d.Interfaces))
		for _, iface := range d.Interfaces {
			if iface.ID == "" {
				return fmt.Errorf("%w: device %q has an interface without id", ErrInvalidTopology, d.ID)
			}
			if own[iface.ID] {
				return fmt.Errorf("%w: device %q repeats interface id %q", ErrInvalidTopology, d.ID, iface.ID)
			}
			own[iface.ID] = true
		}
		ifaces[d.ID] = own
	}

	linkIDs := make(map[string]bool, len(links))
	pairs := make(map[[2]string]bool, len(links))
	bound := make(map[endpoint]bool)
	for i, l := range links {
		if l.ID == "" {
			return fmt.Errorf("%w: link %d has no id", ErrInvalidTopology, i)
		}
		if linkIDs[l.ID] {
			return fmt.Errorf("%w: duplicate link id %q", ErrInvalidTopology, l.ID)
		}
		linkIDs[l.ID] = true

		if l.SourceID == l.TargetID {
			return fmt.Errorf("%w: link %q connects %q to itself", ErrInvalidTopology, l.ID, l.SourceID)
		}
		if ifaces[l.SourceID] == nil || ifaces[l.TargetID] == nil {
			return fmt.Errorf("%w: link %q references a missing device", ErrInvalidTopology, l.ID)
		}
		key := PairKey(l.SourceID, l.TargetID)
		if pairs[key] {
			return fmt.Errorf("%w: link %q duplicates an existing pair", ErrInvalidTopology, l.ID)
		}
		pairs[key] = true

		for _, end := range []endpoint{{l.SourceID, l.SourceInterfaceID}, {l.TargetID, l.TargetInterfaceID}} {
			if end.iface == "" {
				continue
			}
			if !ifaces[end.device][end.iface] {
				return fmt.Errorf("%w: link %q binds unknown interface %q", ErrInvalidTopology, l.ID, end.iface)
			}
			if bound[end] {
				return fmt.Errorf("%w: interface %q bound twice", ErrInvalidTopology, end.iface)
			}
			bound[end] = true
		}
	}
	return nil
}

// PairKey returns an order-independent key for a device pair.
func PairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}
