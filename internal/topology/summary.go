package topology

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmudi/netlab/pkg/models"
)

// Summary renders the topology as the plain-text lab context handed to the
// tutor. One line per device, then the link count.
func Summary(devices []models.Device, links []models.Link) string {
	var b strings.Builder
	b.WriteString("Topology Devices:\n")
	for i, d := range devices {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(summaryLine(d))
	}
	fmt.Fprintf(&b, "\nTotal Links: %d", len(links))
	return b.String()
}

func summaryLine(d models.Device) string {
	switch {
	case d.Code != "":
		return fmt.Sprintf("%s (%s) [Code]", d.Name, d.Type)
	case d.Type.Capabilities().IsSensor:
		v := 0.0
		if d.SensorValue != nil {
			v = *d.SensorValue
		}
		return fmt.Sprintf("%s (%s) [Value: %s]", d.Name, d.Type, strconv.FormatFloat(v, 'f', -1, 64))
	}
	parts := make([]string, 0, len(d.Interfaces))
	for _, iface := range d.Interfaces {
		parts = append(parts, iface.Name+": "+iface.IP)
	}
	return fmt.Sprintf("%s (%s) [%s]", d.Name, d.Type, strings.Join(parts, ", "))
}

// Summary renders the current topology.
func (s *Store) Summary() string {
	snap := s.Snapshot()
	return Summary(snap.Devices, snap.Links)
}
