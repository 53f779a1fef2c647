// Package mello connects the Mello handheld input device to a robot arm.
//
// The Mello streams one record line per tick over a serial link. The host
// side reads those lines, converts the joint angles to radians and exposes
// the latest pose to a monitor, an MQTT bridge or a robot controller.
//
// # Installation
//
//	go install github.com/gwillem/mello/cmd/mello@latest
//
// # Usage
//
// First, run setup to find the Mello stream and its servo bus:
//
//	mello setup
//
// Then watch the joint values:
//
//	mello monitor
//
// Or publish them to an MQTT broker:
//
//	mello bridge --broker tcp://localhost:1883
//
// On the device itself, run the position tracker:
//
//	mello device
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/mello: CLI with setup, monitor, bridge and device commands
//   - pkg/robot: Pose types, calibration, configuration and the servo arm
//   - pkg/record: Record line codec
//   - pkg/teleop: Serial reader holding the latest pose
//   - pkg/device: Position tracker with zero capture and stream toggle
//   - pkg/button: Single and double click detection, GPIO button watcher
//   - pkg/bridge: Pose publisher for MQTT
package mello
