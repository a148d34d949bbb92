package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/serialbot/pkg/robot"
	"github.com/gwillem/serialbot/pkg/teleop"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const manualPort = "manual"

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("serialbot setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━"))
	fmt.Println()

	// Start from the existing file so a second run only changes what the user picks
	cfg, err := robot.LoadConfigFrom(opts.Config)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Ignoring %s: %v", opts.Config, err)))
		}
		cfg = robot.DefaultConfig()
	}

	port, err := choosePort(cfg.Port)
	if err != nil {
		return abortSetup(err)
	}
	cfg.Port = port

	baud := strconv.Itoa(cfg.BaudRate)
	profile := cfg.Profile
	broker := cfg.Telemetry.Broker

	profileOptions := make([]huh.Option[string], 0, len(teleop.ProfileNames()))
	for _, name := range teleop.ProfileNames() {
		p, _ := teleop.ProfileByName(name)
		profileOptions = append(profileOptions, huh.NewOption(profileLabel(p), name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Baud rate").
				Value(&baud).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("enter a positive number")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Control profile").
				Options(profileOptions...).
				Value(&profile),
			huh.NewInput().
				Title("MQTT broker").
				Description("Optional, e.g. tcp://localhost:1883. Leave empty to disable telemetry.").
				Value(&broker),
		),
	)
	if err := form.Run(); err != nil {
		return abortSetup(err)
	}

	cfg.BaudRate, _ = strconv.Atoi(baud)
	cfg.Profile = profile
	cfg.Telemetry.Broker = broker
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := cfg.SaveTo(opts.Config); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("  Port:    %s @ %d baud\n", cfg.Port, cfg.BaudRate)
	fmt.Printf("  Profile: %s\n", cfg.Profile)
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Start teleoperation with: " + headerStyle.Render("serialbot teleoperate"))

	return nil
}

func choosePort(current string) (string, error) {
	ports, err := robot.ListPorts()
	if err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
	}

	var choice string
	if len(ports) > 0 {
		options := make([]huh.Option[string], 0, len(ports)+1)
		for _, p := range ports {
			options = append(options, huh.NewOption(p, p).Selected(p == current))
		}
		options = append(options, huh.NewOption("Enter a path manually", manualPort))

		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Serial port").
				Description("The port the motor controller is connected to").
				Options(options...).
				Value(&choice),
		)).Run()
		if err != nil {
			return "", err
		}
		if choice != manualPort {
			return choice, nil
		}
	} else {
		fmt.Println(dimStyle.Render("No serial ports detected."))
	}

	choice = current
	err = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Serial port path").
			Value(&choice).
			Validate(func(s string) error {
				if s == "" {
					return fmt.Errorf("port is required")
				}
				return nil
			}),
	)).Run()
	return choice, err
}

func profileLabel(p teleop.Profile) string {
	label := fmt.Sprintf("%s (speed %.1f, step %.1f", p.Name, p.InitialSpeed, p.SpeedStep)
	if p.Supports(teleop.TurnLeft) {
		label += fmt.Sprintf(", yaw %.1f rad/s", p.InitialYawRate)
	}
	return label + ")"
}

// abortSetup treats a cancelled form as a clean exit.
func abortSetup(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		fmt.Println()
		os.Exit(0)
	}
	return err
}
