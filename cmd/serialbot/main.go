package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config      string             `short:"c" long:"config" default:"serialbot.json" description:"Configuration file"`
	Setup       SetupCommand       `command:"setup" description:"Pick the serial port and profile and save them"`
	Ports       PortsCommand       `command:"ports" description:"List available serial ports"`
	Teleoperate TeleoperateCommand `command:"teleoperate" alias:"teleop" description:"Drive the robot from the keyboard"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "serialbot - keyboard teleoperation for serial motor controllers"

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
