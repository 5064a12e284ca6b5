package models

// Category groups device types into the two lab palettes.
type Category string

const (
	CategoryNetwork Category = "net"
	CategoryIoT     Category = "iot"
)

// Capabilities is the behavior-relevant classification of a DeviceType.
// All type-dependent branching goes through this table.
type Capabilities struct {
	Category   Category `json:"category"`
	HasProgram bool     `json:"has_program"`
	IsSensor   bool     `json:"is_sensor"`
	IsActuator bool     `json:"is_actuator"`
	HasPorts   bool     `json:"has_ports"`
	PortCount  int      `json:"port_count"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	SensorMin  float64  `json:"sensor_min"`
	SensorMax  float64  `json:"sensor_max"`
}

// Icon footprint used by most device types.
const (
	IconSize    = 64.0
	BoardWidth  = 96.0
	BoardHeight = 128.0
)

func network(ports int) Capabilities {
	return Capabilities{
		Category:  CategoryNetwork,
		HasPorts:  ports > 0,
		PortCount: ports,
		Width:     IconSize,
		Height:    IconSize,
	}
}

func board() Capabilities {
	return Capabilities{
		Category:   CategoryIoT,
		HasProgram: true,
		HasPorts:   true,
		PortCount:  1,
		Width:      BoardWidth,
		Height:     BoardHeight,
	}
}

func module() Capabilities {
	return Capabilities{Category: CategoryIoT, HasPorts: true, PortCount: 1, Width: IconSize, Height: IconSize}
}

func sensor(hi float64) Capabilities {
	c := module()
	c.IsSensor = true
	c.SensorMax = hi
	return c
}

func actuator() Capabilities {
	c := module()
	c.IsActuator = true
	return c
}

var capabilities = map[DeviceType]Capabilities{
	DeviceTypePC:          network(1),
	DeviceTypeLaptop:      network(1),
	DeviceTypeServer:      network(1),
	DeviceTypeRouter:      network(1),
	DeviceTypeSwitch:      network(0),
	DeviceTypeFirewall:    network(1),
	DeviceTypeAccessPoint: network(1),
	DeviceTypeCloud:       network(1),

	DeviceTypeArduino:     board(),
	DeviceTypeESP32:       board(),
	DeviceTypeRaspberryPi: board(),
	DeviceTypeGSMModule:   module(),

	// Moisture and gas probes report raw 10-bit analog reads.
	DeviceTypeSensorTemp:     sensor(100),
	DeviceTypeSensorMoisture: sensor(1023),
	DeviceTypeSensorGas:      sensor(1023),
	DeviceTypeSensorWater:    sensor(100),
	DeviceTypeSensorMotion:   sensor(100),

	DeviceTypeLED:    actuator(),
	DeviceTypeMotor:  actuator(),
	DeviceTypeRelay:  actuator(),
	DeviceTypeBuzzer: actuator(),
	DeviceTypeServo:  actuator(),
}

// deviceTypes preserves palette order.
var deviceTypes = []DeviceType{
	DeviceTypePC, DeviceTypeLaptop, DeviceTypeServer, DeviceTypeRouter,
	DeviceTypeSwitch, DeviceTypeFirewall, DeviceTypeAccessPoint, DeviceTypeCloud,
	DeviceTypeArduino, DeviceTypeESP32, DeviceTypeRaspberryPi, DeviceTypeGSMModule,
	DeviceTypeSensorTemp, DeviceTypeSensorMoisture, DeviceTypeSensorGas,
	DeviceTypeSensorWater, DeviceTypeSensorMotion,
	DeviceTypeLED, DeviceTypeMotor, DeviceTypeRelay, DeviceTypeBuzzer, DeviceTypeServo,
}

// DeviceTypes returns every known device type in palette order.
func DeviceTypes() []DeviceType {
	out := make([]DeviceType, len(deviceTypes))
	copy(out, deviceTypes)
	return out
}

// Valid reports whether dt is a known device type.
func (dt DeviceType) Valid() bool {
	_, ok := capabilities[dt]
	return ok
}

// Capabilities returns the classification for dt. Unknown types get an
// inert network icon with no ports.
func (dt DeviceType) Capabilities() Capabilities {
	if c, ok := capabilities[dt]; ok {
		return c
	}
	return network(0)
}

// ClampSensor limits v to the sensor range of dt.
func (dt DeviceType) ClampSensor(v float64) float64 {
	c := dt.Capabilities()
	if v < c.SensorMin {
		return c.SensorMin
	}
	if c.SensorMax > c.SensorMin && v > c.SensorMax {
		return c.SensorMax
	}
	return v
}
