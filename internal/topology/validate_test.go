package topology

import (
	"errors"
	"testing"

	"github.com/danmudi/netlab/pkg/models"
)

func TestValidate(t *testing.T) {
	pc := func(id string, ifaces ...string) models.Device {
		d := models.Device{ID: id, Type: models.DeviceTypePC}
		for _, i := range ifaces {
			d.Interfaces = append(d.Interfaces, models.Interface{ID: i, Name: i})
		}
		return d
	}

	tests := []struct {
		name    string
		devices []models.Device
		links   []models.Link
		wantErr bool
	}{
		{"empty", nil, nil, false},
		{"valid", []models.Device{pc("a", "ia"), pc("b", "ib")},
			[]models.Link{{ID: "l", SourceID: "a", TargetID: "b", SourceInterfaceID: "ia"}}, false},
		{"missing device id", []models.Device{pc("")}, nil, true},
		{"duplicate device id", []models.Device{pc("a"), pc("a")}, nil, true},
		{"unknown type", []models.Device{{ID: "a", Type: "TOASTER"}}, nil, true},
		{"interface without id", []models.Device{pc("a", "")}, nil, true},
		{"repeated interface id", []models.Device{pc("a", "i", "i")}, nil, true},
		{"link without id", []models.Device{pc("a"), pc("b")},
			[]models.Link{{SourceID: "a", TargetID: "b"}}, true},
		{"duplicate link id", []models.Device{pc("a"), pc("b"), pc("c")},
			[]models.Link{{ID: "l", SourceID: "a", TargetID: "b"}, {ID: "l", SourceID: "a", TargetID: "c"}}, true},
		{"self link", []models.Device{pc("a")},
			[]models.Link{{ID: "l", SourceID: "a", TargetID: "a"}}, true},
		{"dangling link", []models.Device{pc("a")},
			[]models.Link{{ID: "l", SourceID: "a", TargetID: "gone"}}, true},
		{"reverse duplicate pair", []models.Device{pc("a"), pc("b")},
			[]models.Link{{ID: "l1", SourceID: "a", TargetID: "b"}, {ID: "l2", SourceID: "b", TargetID: "a"}}, true},
		{"binding on wrong device", []models.Device{pc("a", "ia"), pc("b", "ib")},
			[]models.Link{{ID: "l", SourceID: "a", TargetID: "b", SourceInterfaceID: "ib"}}, true},
		{"interface bound twice", []models.Device{pc("a", "ia"), pc("b"), pc("c")},
			[]models.Link{
				{ID: "l1", SourceID: "a", TargetID: "b", SourceInterfaceID: "ia"},
				{ID: "l2", SourceID: "c", TargetID: "a", TargetInterfaceID: "ia"},
			}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.devices, tc.links)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTopology) {
				t.Errorf("error %v does not wrap ErrInvalidTopology", err)
			}
		})
	}
}

func TestPairKeyOrderIndependent(t *testing.T) {
	if PairKey("a", "b") != PairKey("b", "a") {
		t.Error("PairKey should not depend on argument order")
	}
}
