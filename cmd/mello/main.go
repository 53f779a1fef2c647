package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/mello/pkg/robot"
)

type Options struct {
	Config string `long:"config" description:"Configuration file (default mello.json)"`

	Setup   SetupCommand   `command:"setup" description:"Find the Mello and the servo bus and save them to the config"`
	Monitor MonitorCommand `command:"monitor" alias:"test" description:"Show the joint values the host receives from the Mello"`
	Bridge  BridgeCommand  `command:"bridge" description:"Publish Mello poses to an MQTT broker"`
	Device  DeviceCommand  `command:"device" description:"Run the Mello position tracker on a servo arm"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Mello - teleoperation bridge between the Mello input device and a robot arm"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// configPath returns the --config path or the default config file.
func configPath() string {
	if opts.Config == "" {
		return robot.DefaultConfigFile
	}
	return opts.Config
}

// loadConfig reads the config file, falling back to defaults when it does not exist.
func loadConfig() (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(configPath())
	if errors.Is(err, os.ErrNotExist) {
		return robot.NewConfig(), nil
	}
	return cfg, err
}
