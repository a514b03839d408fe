// Package config assembles the top-level CLI layout consumed by kong.
package config

import "github.com/padlink/padlink/internal/cmd"

// LogConfig groups the logging flags shared by every command.
type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"PADLINK_LOG_LEVEL"`
	File    string `help:"Write logs to this file instead of stdout/stderr" env:"PADLINK_LOG_FILE"`
	RawFile string `help:"Write raw datagram hex dumps to this file" env:"PADLINK_LOG_RAW_FILE"`
}

// CLI is the root command structure.
type CLI struct {
	ConfigFile string            `name:"config" help:"Path to a configuration file" env:"PADLINK_CONFIG"`
	Log        LogConfig         `embed:"" prefix:"log."`
	Client     cmd.Client        `cmd:"" help:"Capture local gamepads and stream them to a bridge"`
	Bridge     cmd.Bridge        `cmd:"" help:"Receive gamepad snapshots and present them as virtual controllers"`
	Reset      cmd.Reset         `cmd:"" help:"Tell a bridge to detach all virtual controllers"`
	Config     cmd.ConfigCommand `cmd:"" help:"Configuration utilities"`
}
