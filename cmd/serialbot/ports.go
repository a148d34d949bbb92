package main

import (
	"fmt"

	"github.com/gwillem/serialbot/pkg/robot"
)

type PortsCommand struct{}

func (c *PortsCommand) Execute(args []string) error {
	ports, err := robot.ListPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println(dimStyle.Render("No serial ports found."))
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
