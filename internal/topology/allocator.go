package topology

import (
	"fmt"
	"slices"

	"github.com/danmudi/netlab/pkg/models"
	"go.uber.org/zap"
)

// Port counts offered by the quick-add switch palette.
var SwitchVariants = []int{8, 16, 24, 48}

// DefaultInterfaces returns the interfaces a new device of type dt starts
// with: none for a plain switch, a single eth0 otherwise. Ids are assigned
// by the store.
func DefaultInterfaces(dt models.DeviceType) []models.Interface {
	caps := dt.Capabilities()
	if !caps.HasPorts {
		return []models.Interface{}
	}
	out := make([]models.Interface, 0, caps.PortCount)
	for i := range caps.PortCount {
		out = append(out, models.Interface{Name: fmt.Sprintf("eth%d", i)})
	}
	return out
}

// SwitchPorts returns n sequentially named switch ports,
// FastEthernet0/1 through FastEthernet0/n.
func SwitchPorts(n int) []models.Interface {
	out := make([]models.Interface, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		out = append(out, models.Interface{Name: switchPortName(i)})
	}
	return out
}

func switchPortName(i int) string {
	return fmt.Sprintf("FastEthernet0/%d", i)
}

// InterfacePatch lists the interface fields an edit may change. Address
// fields are free text and not validated here.
type InterfacePatch struct {
	Name    *string `json:"name,omitempty"`
	IP      *string `json:"ip,omitempty"`
	Subnet  *string `json:"subnet,omitempty"`
	Gateway *string `json:"gateway,omitempty"`
}

// UpdateInterface edits one interface. Unknown device or interface ids are
// a no-op and return false.
func (s *Store) UpdateInterface(deviceID, ifID string, p InterfacePatch) bool {
	d, ok := s.mutateDevice(deviceID, func(d *models.Device) bool {
		iface, found := d.Interface(ifID)
		if !found {
			return false
		}
		if p.Name != nil {
			iface.Name = *p.Name
		}
		if p.IP != nil {
			iface.IP = *p.IP
		}
		if p.Subnet != nil {
			iface.Subnet = *p.Subnet
		}
		if p.Gateway != nil {
			iface.Gateway = *p.Gateway
		}
		return true
	})
	if !ok {
		s.logger.Debug("interface update ignored",
			zap.String("device_id", deviceID),
			zap.String("interface_id", ifID),
		)
		return false
	}
	s.publish(TopicDeviceUpdated, DeviceEvent{Device: d})
	return true
}

// AddInterface appends an interface to the device. An empty name picks the
// next port name for the device's naming scheme.
func (s *Store) AddInterface(deviceID, name string) (models.Interface, bool) {
	var added models.Interface
	id := s.newID("if")
	d, ok := s.mutateDevice(deviceID, func(d *models.Device) bool {
		if name == "" {
			if d.Type == models.DeviceTypeSwitch {
				name = switchPortName(len(d.Interfaces) + 1)
			} else {
				name = fmt.Sprintf("eth%d", len(d.Interfaces))
			}
		}
		added = models.Interface{ID: id, Name: name}
		d.Interfaces = append(d.Interfaces, added)
		return true
	})
	if !ok {
		return models.Interface{}, false
	}
	s.publish(TopicDeviceUpdated, DeviceEvent{Device: d})
	return added, true
}

// RemoveInterface deletes an interface. A link bound on it stays but loses
// that binding.
func (s *Store) RemoveInterface(deviceID, ifID string) bool {
	s.mu.Lock()
	i := s.indexLocked(deviceID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	d := s.devices[i].Clone()
	j := slices.IndexFunc(d.Interfaces, func(x models.Interface) bool { return x.ID == ifID })
	if j < 0 {
		s.mu.Unlock()
		return false
	}
	d.Interfaces = slices.Delete(d.Interfaces, j, j+1)

	devices := slices.Clone(s.devices)
	devices[i] = d
	links := slices.Clone(s.links)
	var touched []models.Link
	for k := range links {
		if unbindEnd(&links[k], deviceID, ifID) {
			touched = append(touched, links[k])
		}
	}
	s.devices, s.links = devices, links
	s.revision++
	out := decorate(d, bindings(s.links))
	s.mu.Unlock()

	for _, l := range touched {
		s.publish(TopicLinkUpdated, LinkEvent{Link: l})
	}
	s.publish(TopicDeviceUpdated, DeviceEvent{Device: out})
	return true
}

// BindInterface records that interface ifID on deviceID carries the link
// between deviceID and peerID. The link must exist and the interface must
// not already carry another link.
func (s *Store) BindInterface(deviceID, ifID, peerID string) error {
	s.mu.Lock()
	if err := s.checkInterfaceLocked(deviceID, ifID); err != nil {
		s.mu.Unlock()
		return err
	}
	k := slices.IndexFunc(s.links, func(l models.Link) bool { return l.Joins(deviceID, peerID) })
	if k < 0 {
		s.mu.Unlock()
		return fmt.Errorf("link %s-%s: %w", deviceID, peerID, ErrNotFound)
	}
	if s.links[k].InterfaceOn(deviceID) == ifID {
		s.mu.Unlock()
		return nil
	}
	if _, bound := bindings(s.links)[endpoint{deviceID, ifID}]; bound {
		s.mu.Unlock()
		return fmt.Errorf("interface %s on %s: %w", ifID, deviceID, ErrInterfaceBound)
	}

	links := slices.Clone(s.links)
	if links[k].SourceID == deviceID {
		links[k].SourceInterfaceID = ifID
	} else {
		links[k].TargetInterfaceID = ifID
	}
	s.links = links
	s.revision++
	l := links[k]
	s.mu.Unlock()

	s.publish(TopicLinkUpdated, LinkEvent{Link: l})
	return nil
}

// UnbindInterface clears whatever binding interface ifID carries. Unbinding
// a free interface is a no-op.
func (s *Store) UnbindInterface(deviceID, ifID string) error {
	s.mu.Lock()
	if err := s.checkInterfaceLocked(deviceID, ifID); err != nil {
		s.mu.Unlock()
		return err
	}
	links := slices.Clone(s.links)
	var touched []models.Link
	for k := range links {
		if unbindEnd(&links[k], deviceID, ifID) {
			touched = append(touched, links[k])
		}
	}
	if len(touched) > 0 {
		s.links = links
		s.revision++
	}
	s.mu.Unlock()

	for _, l := range touched {
		s.publish(TopicLinkUpdated, LinkEvent{Link: l})
	}
	return nil
}

// AvailableInterfaces returns the device's interfaces that carry no link.
// Unknown devices have none.
func (s *Store) AvailableInterfaces(deviceID string) []models.Interface {
	d, ok := s.Device(deviceID)
	if !ok {
		return nil
	}
	out := make([]models.Interface, 0, len(d.Interfaces))
	for _, iface := range d.Interfaces {
		if iface.ConnectedToID == "" {
			out = append(out, iface)
		}
	}
	return out
}

func (s *Store) checkInterfaceLocked(deviceID, ifID string) error {
	i := s.indexLocked(deviceID)
	if i < 0 {
		return fmt.Errorf("device %s: %w", deviceID, ErrNotFound)
	}
	if _, ok := s.devices[i].Interface(ifID); !ok {
		return fmt.Errorf("interface %s on %s: %w", ifID, deviceID, ErrNotFound)
	}
	return nil
}

// checkFreeLocked verifies that ifID exists on deviceID and carries no
// link. An empty ifID always passes.
func (s *Store) checkFreeLocked(deviceID, ifID string) error {
	if ifID == "" {
		return nil
	}
	if err := s.checkInterfaceLocked(deviceID, ifID); err != nil {
		return err
	}
	if _, bound := bindings(s.links)[endpoint{deviceID, ifID}]; bound {
		return fmt.Errorf("interface %s on %s: %w", ifID, deviceID, ErrInterfaceBound)
	}
	return nil
}

// unbindEnd clears the binding of ifID on deviceID's end of l.
func unbindEnd(l *models.Link, deviceID, ifID string) bool {
	switch {
	case l.SourceID == deviceID && l.SourceInterfaceID == ifID:
		l.SourceInterfaceID = ""
		return true
	case l.TargetID == deviceID && l.TargetInterfaceID == ifID:
		l.TargetInterfaceID = ""
		return true
	}
	return false
}
