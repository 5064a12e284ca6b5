package tutor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danmudi/netlab/pkg/models"
)

// Fixed replies used when the provider fails or returns nothing.
const (
	FallbackCommand = "Error: Simulation service unavailable."
	FallbackTutor   = "I'm having trouble connecting to the knowledge base right now."
	EmptyCommand    = "No output returned."
	EmptyTutor      = "I couldn't generate a response."
)

const tutorSystemPrompt = `You are a helpful Network & IoT Engineering Tutor.
You assist students in "Dan Mudi Virtual Networking & IoT Lab".
Topics: CCNA Networking, IoT, Arduino/ESP32 coding, Electronics.

LANGUAGE INSTRUCTION:
You are strictly required to understand and communicate in multiple languages to help users solve their problems.
Specifically, you must be proficient in Hausa and English.
- If a user asks a question in Hausa, you MUST reply in Hausa.
- If a user asks in English, reply in English.
- Adapt to the user's language automatically.

Keep answers concise and educational.`

const microcontrollerTemplate = `Role: You are an IoT Microcontroller Simulator (Arduino/ESP32).
Context: The user is running code on %q.
Connected Components: %s
Device Code:
` + "```cpp" + `
%s
` + "```" + `

Task: Simulate the "Serial Monitor" output for one loop iteration or the specific command %q.

Rules:
1. Interpret the C++/Arduino code logic.
2. If the code reads a pin connected to a sensor (e.g., Temp Sensor), use the 'currentValue' from Connected Components in your logic.
3. If the code prints to Serial, output that text.
4. If the code controls an LED/Motor, output a status message like "[System] LED turned ON".
5. If the command is "run", simulate the 'loop()'.
6. Be concise.`

const terminalTemplate = `Role: You are a network terminal simulator.
Context: User is on %q (%s).
Network State: %s
Connections: %s

Task: Simulate output for command: %q.

Rules:
1. Analyze IPs/Subnets/Links.
2. For 'ping', check connectivity. Output realistic Linux/Cisco ping results (max 4 lines).
3. If unreachable, show "Host Unreachable".
4. Support basic commands: ping, ipconfig, ifconfig, show ip interface brief, traceroute.
5. No explanations, only terminal output.`

// tutorSystem returns the tutor instruction with the lab summary appended.
func tutorSystem(labContext string) string {
	if labContext == "" {
		return tutorSystemPrompt
	}
	return tutorSystemPrompt + "\n\nCurrent Lab Context: " + labContext
}

type peripheral struct {
	Name         string            `json:"name"`
	Type         models.DeviceType `json:"type"`
	CurrentValue *float64          `json:"currentValue,omitempty"`
}

type nodeState struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       models.DeviceType  `json:"type"`
	Interfaces []models.Interface `json:"interfaces"`
}

// isMicrocontroller reports whether dt runs a sketch rather than a shell.
// A Raspberry Pi is programmable but answers like a Linux host.
func isMicrocontroller(dt models.DeviceType) bool {
	return dt == models.DeviceTypeArduino || dt == models.DeviceTypeESP32
}

// commandPrompt builds the simulator prompt for dev.
func commandPrompt(dev models.Device, command string, snap models.Snapshot) string {
	if isMicrocontroller(dev.Type) {
		code := dev.Code
		if strings.TrimSpace(code) == "" {
			code = "// No code uploaded"
		}
		return fmt.Sprintf(microcontrollerTemplate, dev.Name, mustJSON(peripherals(dev.ID, snap)), code, command)
	}

	nodes := make([]nodeState, 0, len(snap.Devices))
	for _, d := range snap.Devices {
		nodes = append(nodes, nodeState{ID: d.ID, Name: d.Name, Type: d.Type, Interfaces: d.Interfaces})
	}
	links := snap.Links
	if links == nil {
		links = []models.Link{}
	}
	return fmt.Sprintf(terminalTemplate, dev.Name, dev.Type, mustJSON(nodes), mustJSON(links), command)
}

// peripherals lists the devices linked to id in link order.
func peripherals(id string, snap models.Snapshot) []peripheral {
	byID := make(map[string]models.Device, len(snap.Devices))
	for _, d := range snap.Devices {
		byID[d.ID] = d
	}
	out := make([]peripheral, 0)
	for _, l := range snap.Links {
		other := ""
		switch id {
		case l.SourceID:
			other = l.TargetID
		case l.TargetID:
			other = l.SourceID
		default:
			continue
		}
		if d, ok := byID[other]; ok {
			out = append(out, peripheral{Name: d.Name, Type: d.Type, CurrentValue: d.SensorValue})
		}
	}
	return out
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
