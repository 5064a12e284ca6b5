// Package testutil provides fixtures, fakes and a manual clock shared by
// netlab tests.
package testutil

import (
	"github.com/google/uuid"

	"github.com/danmudi/netlab/pkg/models"
)

// NewDevice returns an online PC with a single eth0 interface, suitable for
// test fixtures. Options override individual fields.
func NewDevice(opts ...func(*models.Device)) models.Device {
	d := models.Device{
		ID:     "dev-" + uuid.New().String(),
		Type:   models.DeviceTypePC,
		Name:   "test-device",
		X:      100,
		Y:      100,
		Status: models.DeviceStatusOnline,
		Interfaces: []models.Interface{
			{ID: "if-" + uuid.New().String(), Name: "eth0"},
		},
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// WithID sets the device id.
func WithID(id string) func(*models.Device) {
	return func(d *models.Device) { d.ID = id }
}

// WithName sets the display name.
func WithName(name string) func(*models.Device) {
	return func(d *models.Device) { d.Name = name }
}

// WithType sets the device type.
func WithType(dt models.DeviceType) func(*models.Device) {
	return func(d *models.Device) { d.Type = dt }
}

// WithPosition sets the canvas position.
func WithPosition(x, y float64) func(*models.Device) {
	return func(d *models.Device) { d.X, d.Y = x, y }
}

// WithStatus sets the device status.
func WithStatus(s models.DeviceStatus) func(*models.Device) {
	return func(d *models.Device) { d.Status = s }
}

// WithInterfaces replaces the interface list.
func WithInterfaces(ifaces ...models.Interface) func(*models.Device) {
	return func(d *models.Device) {
		d.Interfaces = append([]models.Interface{}, ifaces...)
	}
}

// WithSensorValue sets the sensor reading.
func WithSensorValue(v float64) func(*models.Device) {
	return func(d *models.Device) { d.SensorValue = models.Float64(v) }
}
