// Package serialbot provides keyboard teleoperation for a mobile robot whose
// motor controller listens for 8-byte motion-command frames on a serial port.
//
// # Installation
//
//	go install github.com/gwillem/serialbot/cmd/serialbot@latest
//
// # Usage
//
// First, pick the serial port and control profile:
//
//	serialbot setup
//
// Then start teleoperation:
//
//	serialbot teleoperate
//
// Without a terminal UI, or over ssh, one command per line works too:
//
//	serialbot teleoperate --plain --profile yaw
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/serialbot: CLI with setup, ports and teleoperate commands
//   - cmd/frame-monitor: decodes and prints a captured frame stream
//   - pkg/frame: the wire frame codec
//   - pkg/robot: serial link, configuration and limits
//   - pkg/teleop: motion state, command dispatch and the session loop
//   - pkg/log: logging
//   - pkg/telemetry: optional MQTT publication of session events
package serialbot
