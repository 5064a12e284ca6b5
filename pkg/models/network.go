package models

// Interface is a named, addressable connection point on a device.
// ConnectedToID is filled in on read from the link collection and is
// ignored by the store on write.
type Interface struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	IP            string `json:"ip" yaml:"ip"`
	Subnet        string `json:"subnet" yaml:"subnet"`
	Gateway       string `json:"gateway" yaml:"gateway"`
	ConnectedToID string `json:"connectedToId,omitempty" yaml:"connectedToId,omitempty"`
}

// Default addressing offered by the configuration surface.
const (
	DefaultSubnet  = "255.255.255.0"
	DefaultGateway = "0.0.0.0"
)

// CableType is the closed set of link styles.
type CableType string

const (
	CableStraight  CableType = "STRAIGHT"
	CableCrossover CableType = "CROSSOVER"
	CableFiber     CableType = "FIBER"
	CableSerial    CableType = "SERIAL"
	CableGPIO      CableType = "GPIO"
	CableUSB       CableType = "USB"
)

// CableStyle describes how a cable is drawn.
type CableStyle struct {
	Color string `json:"color"`
	Width int    `json:"width"`
	Dash  string `json:"dash,omitempty"`
}

// CableStyles maps each cable type to its rendering style.
var CableStyles = map[CableType]CableStyle{
	CableStraight:  {Color: "#000000", Width: 2},
	CableCrossover: {Color: "#000000", Width: 2, Dash: "5,5"},
	CableFiber:     {Color: "#ea580c", Width: 2},
	CableSerial:    {Color: "#2563eb", Width: 2},
	CableGPIO:      {Color: "#16a34a", Width: 1},
	CableUSB:       {Color: "#64748b", Width: 2},
}

// Valid reports whether ct is a known cable type.
func (ct CableType) Valid() bool {
	_, ok := CableStyles[ct]
	return ok
}

// Style returns the rendering style for ct, falling back to a straight cable.
func (ct CableType) Style() CableStyle {
	if s, ok := CableStyles[ct]; ok {
		return s
	}
	return CableStyles[CableStraight]
}

// Link is a committed, undirected connection between two devices.
// SourceInterfaceID and TargetInterfaceID record port bindings when the
// link was made through port selection.
type Link struct {
	ID                string    `json:"id" yaml:"id"`
	SourceID          string    `json:"sourceId" yaml:"sourceId"`
	TargetID          string    `json:"targetId" yaml:"targetId"`
	Type              CableType `json:"type" yaml:"type"`
	SourceInterfaceID string    `json:"sourceInterfaceId,omitempty" yaml:"sourceInterfaceId,omitempty"`
	TargetInterfaceID string    `json:"targetInterfaceId,omitempty" yaml:"targetInterfaceId,omitempty"`
}

// Joins reports whether the link connects a and b in either direction.
func (l Link) Joins(a, b string) bool {
	return (l.SourceID == a && l.TargetID == b) || (l.SourceID == b && l.TargetID == a)
}

// Touches reports whether deviceID is one of the link's endpoints.
func (l Link) Touches(deviceID string) bool {
	return l.SourceID == deviceID || l.TargetID == deviceID
}

// Peer returns the endpoint opposite deviceID.
func (l Link) Peer(deviceID string) string {
	if l.SourceID == deviceID {
		return l.TargetID
	}
	return l.SourceID
}

// InterfaceOn returns the interface id bound on deviceID's end, if any.
func (l Link) InterfaceOn(deviceID string) string {
	switch deviceID {
	case l.SourceID:
		return l.SourceInterfaceID
	case l.TargetID:
		return l.TargetInterfaceID
	}
	return ""
}

// PendingLink is a link awaiting explicit interface selection.
type PendingLink struct {
	SourceID  string    `json:"sourceId"`
	TargetID  string    `json:"targetId"`
	CableType CableType `json:"cableType"`
}

// SnapshotVersion tags exported topologies.
const SnapshotVersion = "netlab/v1"

// Snapshot is the import/export representation of a topology.
type Snapshot struct {
	Version string   `json:"version" yaml:"version"`
	Mode    Category `json:"mode,omitempty" yaml:"mode,omitempty"`
	Devices []Device `json:"devices" yaml:"devices"`
	Links   []Link   `json:"links" yaml:"links"`
}
