package models

// DeviceType identifies the kind of device placed on the canvas.
type DeviceType string

// Network device types.
const (
	DeviceTypePC          DeviceType = "PC"
	DeviceTypeLaptop      DeviceType = "LAPTOP"
	DeviceTypeServer      DeviceType = "SERVER"
	DeviceTypeRouter      DeviceType = "ROUTER"
	DeviceTypeSwitch      DeviceType = "SWITCH"
	DeviceTypeFirewall    DeviceType = "FIREWALL"
	DeviceTypeAccessPoint DeviceType = "ACCESS_POINT"
	DeviceTypeCloud       DeviceType = "CLOUD"
)

// IoT device types.
const (
	DeviceTypeArduino     DeviceType = "ARDUINO"
	DeviceTypeESP32       DeviceType = "ESP32"
	DeviceTypeRaspberryPi DeviceType = "RASPBERRY_PI"
	DeviceTypeGSMModule   DeviceType = "GSM_MODULE"

	DeviceTypeSensorTemp     DeviceType = "SENSOR_TEMP"
	DeviceTypeSensorMoisture DeviceType = "SENSOR_MOISTURE"
	DeviceTypeSensorGas      DeviceType = "SENSOR_GAS"
	DeviceTypeSensorWater    DeviceType = "SENSOR_WATER"
	DeviceTypeSensorMotion   DeviceType = "SENSOR_MOTION"

	DeviceTypeLED    DeviceType = "ACTUATOR_LED"
	DeviceTypeMotor  DeviceType = "ACTUATOR_MOTOR"
	DeviceTypeRelay  DeviceType = "RELAY"
	DeviceTypeBuzzer DeviceType = "ACTUATOR_BUZZER"
	DeviceTypeServo  DeviceType = "ACTUATOR_SERVO"
)

// DeviceStatus represents the displayed state of a device.
type DeviceStatus string

const (
	DeviceStatusOnline  DeviceStatus = "online"
	DeviceStatusOffline DeviceStatus = "offline"
	DeviceStatusBooting DeviceStatus = "booting"
)

// Valid reports whether s is one of the known statuses.
func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceStatusOnline, DeviceStatusOffline, DeviceStatusBooting:
		return true
	}
	return false
}

// Device is a node in the lab topology.
type Device struct {
	ID            string       `json:"id" yaml:"id"`
	Type          DeviceType   `json:"type" yaml:"type"`
	Name          string       `json:"name" yaml:"name"`
	X             float64      `json:"x" yaml:"x"`
	Y             float64      `json:"y" yaml:"y"`
	Interfaces    []Interface  `json:"interfaces" yaml:"interfaces"`
	Status        DeviceStatus `json:"status" yaml:"status"`
	Color         string       `json:"color,omitempty" yaml:"color,omitempty"`
	Code          string       `json:"code,omitempty" yaml:"code,omitempty"`
	SensorValue   *float64     `json:"sensorValue,omitempty" yaml:"sensorValue,omitempty"`
	ActuatorState *bool        `json:"actuatorState,omitempty" yaml:"actuatorState,omitempty"`
}

// Clone returns a deep copy of the device.
func (d Device) Clone() Device {
	out := d
	if d.Interfaces != nil {
		out.Interfaces = make([]Interface, len(d.Interfaces))
		copy(out.Interfaces, d.Interfaces)
	}
	if d.SensorValue != nil {
		v := *d.SensorValue
		out.SensorValue = &v
	}
	if d.ActuatorState != nil {
		v := *d.ActuatorState
		out.ActuatorState = &v
	}
	return out
}

// Interface returns the interface with the given id.
func (d *Device) Interface(id string) (*Interface, bool) {
	for i := range d.Interfaces {
		if d.Interfaces[i].ID == id {
			return &d.Interfaces[i], true
		}
	}
	return nil, false
}

// PortAware reports whether connections to the device go through port
// selection. GPIO-style IoT wiring never does.
func (d Device) PortAware() bool {
	return d.Type.Capabilities().Category == CategoryNetwork && len(d.Interfaces) > 0
}

// Center returns the device's visual connection point.
func (d Device) Center() Point {
	c := d.Type.Capabilities()
	return Point{X: d.X + c.Width/2, Y: d.Y + c.Height/2}
}

// Bounds returns the rectangle occupied by the device on the canvas.
func (d Device) Bounds() Rect {
	c := d.Type.Capabilities()
	return Rect{X: d.X, Y: d.Y, W: c.Width, H: c.Height}
}

// Point is a position on the canvas plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
