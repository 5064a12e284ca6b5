// Package mcpserver exposes the lab to Model Context Protocol clients:
// assistants can read the topology, place devices, wire them and run
// simulated console commands.
package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/danmudi/netlab/internal/canvas"
	"github.com/danmudi/netlab/internal/tutor"
	"github.com/danmudi/netlab/pkg/models"
)

// ErrCommandsUnavailable is returned by run_command when no command
// simulator is wired.
var ErrCommandsUnavailable = errors.New("command simulation is not enabled")

// CommandFunc simulates one console command on a device.
type CommandFunc func(ctx context.Context, deviceID, command string) (tutor.CommandResult, error)

// TutorCommands adapts the tutor plugin. The service is looked up on
// each call; it is nil until the plugin is initialized.
func TutorCommands(p *tutor.Plugin) CommandFunc {
	return func(ctx context.Context, deviceID, command string) (tutor.CommandResult, error) {
		svc := p.Service()
		if svc == nil {
			return tutor.CommandResult{}, ErrCommandsUnavailable
		}
		return svc.RunCommand(ctx, deviceID, command)
	}
}

type summaryOutput struct {
	Summary string `json:"summary"`
	Devices int    `json:"devices"`
	Links   int    `json:"links"`
}

type deviceInfo struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Type       models.DeviceType `json:"type"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Interfaces []string          `json:"interfaces,omitempty"`
}

type listDevicesOutput struct {
	Devices []deviceInfo `json:"devices"`
}

type addDeviceInput struct {
	Type string   `json:"type" jsonschema:"device type such as PC, ROUTER, SWITCH, ARDUINO or SENSOR_TEMP"`
	X    *float64 `json:"x,omitempty" jsonschema:"optional canvas x position"`
	Y    *float64 `json:"y,omitempty" jsonschema:"optional canvas y position"`
}

type connectInput struct {
	SourceID string `json:"source_id" jsonschema:"id of the first device"`
	TargetID string `json:"target_id" jsonschema:"id of the second device"`
	Cable    string `json:"cable,omitempty" jsonschema:"cable type, STRAIGHT when omitted"`
}

type connectOutput struct {
	Created bool   `json:"created"`
	LinkID  string `json:"link_id,omitempty"`
}

type commandInput struct {
	DeviceID string `json:"device_id" jsonschema:"id of the device whose console runs the command"`
	Command  string `json:"command" jsonschema:"command line, for example ping 192.168.1.2 or run"`
}

type commandOutput struct {
	Output string `json:"output"`
	Stale  bool   `json:"stale"`
}

// tools binds the tool handlers to one engine.
type tools struct {
	engine   *canvas.Engine
	commands CommandFunc
}

func (t *tools) register(s *mcp.Server) {
	mcp.AddTool(s, &mcp.Tool{
		Name:        "topology_summary",
		Description: "Describe the devices and links currently on the lab canvas.",
	}, t.summary)
	mcp.AddTool(s, &mcp.Tool{
		Name:        "list_devices",
		Description: "List every device with its id, type, position and interfaces.",
	}, t.listDevices)
	mcp.AddTool(s, &mcp.Tool{
		Name:        "add_device",
		Description: "Place a new device on the canvas.",
	}, t.addDevice)
	mcp.AddTool(s, &mcp.Tool{
		Name:        "connect_devices",
		Description: "Link two devices. Self links and duplicate links are ignored.",
	}, t.connect)
	if t.commands != nil {
		mcp.AddTool(s, &mcp.Tool{
			Name:        "run_command",
			Description: "Run a console command on a device and return the simulated output.",
		}, t.runCommand)
	}
}

func (t *tools) summary(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, summaryOutput, error) {
	store := t.engine.Store()
	devices, links := store.Counts()
	return nil, summaryOutput{Summary: store.Summary(), Devices: devices, Links: links}, nil
}

func (t *tools) listDevices(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, listDevicesOutput, error) {
	devices := t.engine.Store().Devices()
	out := listDevicesOutput{Devices: make([]deviceInfo, 0, len(devices))}
	for _, d := range devices {
		info := deviceInfo{ID: d.ID, Name: d.Name, Type: d.Type, X: d.X, Y: d.Y}
		for _, iface := range d.Interfaces {
			info.Interfaces = append(info.Interfaces, iface.Name)
		}
		out.Devices = append(out.Devices, info)
	}
	return nil, out, nil
}

func (t *tools) addDevice(_ context.Context, _ *mcp.CallToolRequest, in addDeviceInput) (*mcp.CallToolResult, deviceInfo, error) {
	var hint *models.Point
	if in.X != nil && in.Y != nil {
		hint = &models.Point{X: *in.X, Y: *in.Y}
	}
	d, err := t.engine.AddDevice(models.DeviceType(in.Type), hint)
	if err != nil {
		return nil, deviceInfo{}, fmt.Errorf("add %q: %w", in.Type, err)
	}
	return nil, deviceInfo{ID: d.ID, Name: d.Name, Type: d.Type, X: d.X, Y: d.Y}, nil
}

func (t *tools) connect(_ context.Context, _ *mcp.CallToolRequest, in connectInput) (*mcp.CallToolResult, connectOutput, error) {
	cable := models.CableType(in.Cable)
	if in.Cable == "" {
		cable = models.CableStraight
	}
	if !cable.Valid() {
		return nil, connectOutput{}, fmt.Errorf("unknown cable type %q", in.Cable)
	}
	l, ok := t.engine.Store().AddLink(in.SourceID, in.TargetID, cable)
	if !ok {
		return nil, connectOutput{Created: false}, nil
	}
	return nil, connectOutput{Created: true, LinkID: l.ID}, nil
}

func (t *tools) runCommand(ctx context.Context, _ *mcp.CallToolRequest, in commandInput) (*mcp.CallToolResult, commandOutput, error) {
	res, err := t.commands(ctx, in.DeviceID, in.Command)
	if err != nil {
		return nil, commandOutput{}, err
	}
	return nil, commandOutput{Output: res.Output, Stale: res.Stale}, nil
}
