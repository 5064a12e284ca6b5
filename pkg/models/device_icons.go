package models

// DeviceIcon maps a DeviceType to its icon identifier.
// Identifiers use Lucide icon names (https://lucide.dev) for
// compatibility with the React canvas.
var DeviceIcon = map[DeviceType]string{
	DeviceTypePC:          "monitor",
	DeviceTypeLaptop:      "laptop",
	DeviceTypeServer:      "server",
	DeviceTypeRouter:      "router",
	DeviceTypeSwitch:      "network",
	DeviceTypeFirewall:    "shield",
	DeviceTypeAccessPoint: "radio",
	DeviceTypeCloud:       "cloud",

	DeviceTypeArduino:     "cpu",
	DeviceTypeESP32:       "wifi",
	DeviceTypeRaspberryPi: "box",
	DeviceTypeGSMModule:   "smartphone",

	DeviceTypeSensorTemp:     "thermometer",
	DeviceTypeSensorMoisture: "droplets",
	DeviceTypeSensorMotion:   "eye",
	DeviceTypeSensorGas:      "wind",
	DeviceTypeSensorWater:    "droplets",

	DeviceTypeLED:    "lightbulb",
	DeviceTypeMotor:  "fan",
	DeviceTypeRelay:  "toggle-left",
	DeviceTypeBuzzer: "bell",
	DeviceTypeServo:  "settings-2",
}

// Icon returns the icon identifier for a DeviceType.
// Returns "box" for unrecognised types.
func (dt DeviceType) Icon() string {
	if icon, ok := DeviceIcon[dt]; ok {
		return icon
	}
	return "box"
}
