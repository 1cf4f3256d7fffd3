// Command keyteleop drives a mobile base and a pan-tilt unit from the keyboard.
//
// It publishes a Twist on <namespace>/cmd_vel and a PanTiltCmdDeg on
// /pan_tilt_cmd_deg at a fixed rate over ZeroMQ until 'q' or Ctrl-C.
package main

import (
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the command line. Without flags the built-in defaults apply.
type CLI struct {
	Config   string `help:"YAML configuration file overlaid on the built-in defaults." type:"path" placeholder:"FILE"`
	LogLevel string `help:"Log level (debug, info, warn, error). Overrides logging.level." placeholder:"LEVEL"`
	Server   bool   `help:"Serve the read-only status API even when server.enabled is false."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("keyteleop"),
		kong.Description("Keyboard teleoperation for a mobile base and a pan-tilt unit."),
		kong.UsageOnError(),
	)

	os.Exit(run(cli, os.Stdin, os.Stdout, os.Stderr))
}
