package topology

import (
	"testing"

	"github.com/danmudi/netlab/pkg/models"
)

func TestSummary(t *testing.T) {
	devices := []models.Device{
		{Name: "Uno", Type: models.DeviceTypeArduino, Code: "void loop() {}"},
		{Name: "DHT22", Type: models.DeviceTypeSensorTemp, SensorValue: models.Float64(24.5)},
		{Name: "PIR", Type: models.DeviceTypeSensorMotion},
		{Name: "PC1", Type: models.DeviceTypePC, Interfaces: []models.Interface{
			{Name: "eth0", IP: "192.168.1.10"},
			{Name: "eth1"},
		}},
		{Name: "Switch1", Type: models.DeviceTypeSwitch, Interfaces: []models.Interface{}},
	}
	links := []models.Link{{ID: "l1"}, {ID: "l2"}}

	want := "Topology Devices:\n" +
		"Uno (ARDUINO) [Code]\n" +
		"DHT22 (SENSOR_TEMP) [Value: 24.5]\n" +
		"PIR (SENSOR_MOTION) [Value: 0]\n" +
		"PC1 (PC) [eth0: 192.168.1.10, eth1: ]\n" +
		"Switch1 (SWITCH) []\n" +
		"Total Links: 2"

	if got := Summary(devices, links); got != want {
		t.Errorf("Summary() =\n%s\nwant\n%s", got, want)
	}
}

func TestSummaryEmpty(t *testing.T) {
	want := "Topology Devices:\n\nTotal Links: 0"
	if got := Summary(nil, nil); got != want {
		t.Errorf("Summary(nil, nil) = %q, want %q", got, want)
	}
}

func TestStoreSummary(t *testing.T) {
	s, _ := newTestStore(t)
	s.AddDevice(models.DeviceTypeSensorGas, nil)

	want := "Topology Devices:\nSENSOR_GAS-1 (SENSOR_GAS) [Value: 0]\nTotal Links: 0"
	if got := s.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}
