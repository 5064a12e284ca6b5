package topology

import "github.com/danmudi/netlab/pkg/models"

// Event topics published by the topology store.
const (
	TopicDeviceAdded   = "topology.device.added"
	TopicDeviceUpdated = "topology.device.updated"
	TopicDeviceMoved   = "topology.device.moved"
	TopicDeviceDeleted = "topology.device.deleted"
	TopicLinkAdded     = "topology.link.added"
	TopicLinkDeleted   = "topology.link.deleted"
	TopicLinkUpdated   = "topology.link.updated"
	TopicLinkRejected  = "topology.link.rejected"
	TopicReplaced      = "topology.replaced"
)

// Reasons carried by LinkRejectedEvent.
const (
	RejectSelf            = "self"
	RejectDuplicate       = "duplicate"
	RejectMissingEndpoint = "missing_endpoint"
)

// DeviceEvent is the payload for added and updated devices.
type DeviceEvent struct {
	Device models.Device `json:"device"`
}

// DeviceMovedEvent is the payload for TopicDeviceMoved events.
type DeviceMovedEvent struct {
	DeviceID string  `json:"device_id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// DeviceDeletedEvent is the payload for TopicDeviceDeleted events.
type DeviceDeletedEvent struct {
	Device models.Device `json:"device"`
	Links  []models.Link `json:"links"`
}

// LinkEvent is the payload for added and deleted links.
type LinkEvent struct {
	Link models.Link `json:"link"`
}

// LinkRejectedEvent is the payload for TopicLinkRejected events.
type LinkRejectedEvent struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Reason   string `json:"reason"`
}

// ReplacedEvent is the payload for TopicReplaced events.
type ReplacedEvent struct {
	Devices int `json:"devices"`
	Links   int `json:"links"`
}
