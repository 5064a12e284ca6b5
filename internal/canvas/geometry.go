package canvas

import (
	"math"

	"github.com/danmudi/netlab/pkg/models"
)

// segmentDistance returns the shortest distance from p to the segment ab.
func segmentDistance(p, a, b models.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = max(0, min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// hitDevice returns the topmost device whose footprint contains p. Devices
// are drawn in slice order, so the search runs back to front.
func hitDevice(devices []models.Device, p models.Point) (models.Device, bool) {
	for i := len(devices) - 1; i >= 0; i-- {
		if devices[i].Bounds().Contains(p) {
			return devices[i], true
		}
	}
	return models.Device{}, false
}

// hitLink returns the link whose centre-to-centre segment passes within
// tolerance of p. The closest link wins when several qualify.
func hitLink(devices []models.Device, links []models.Link, p models.Point, tolerance float64) (models.Link, bool) {
	centers := make(map[string]models.Point, len(devices))
	for _, d := range devices {
		centers[d.ID] = d.Center()
	}

	var (
		best     models.Link
		bestDist = math.Inf(1)
		found    bool
	)
	for _, l := range links {
		a, okA := centers[l.SourceID]
		b, okB := centers[l.TargetID]
		if !okA || !okB {
			continue
		}
		if d := segmentDistance(p, a, b); d <= tolerance && d < bestDist {
			best, bestDist, found = l, d, true
		}
	}
	return best, found
}
