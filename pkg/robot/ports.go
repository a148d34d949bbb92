package robot

import (
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial"
)

// ListPorts returns the serial ports available on this machine, sorted.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}

	var out []string
	for _, p := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(p, "Bluetooth") {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
