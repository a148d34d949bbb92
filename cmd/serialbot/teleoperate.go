package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/multierr"

	"github.com/gwillem/serialbot/pkg/log"
	"github.com/gwillem/serialbot/pkg/robot"
	"github.com/gwillem/serialbot/pkg/telemetry"
	"github.com/gwillem/serialbot/pkg/teleop"
)

type TeleoperateCommand struct {
	Port       string `short:"p" long:"port" description:"Serial port (overrides config)"`
	Baud       int    `short:"b" long:"baud" description:"Baud rate (overrides config)"`
	Profile    string `long:"profile" choice:"planar" choice:"yaw" description:"Control profile (overrides config)"`
	Plain      bool   `long:"plain" description:"Read one command per line instead of the full-screen UI"`
	DryRun     bool   `long:"dry-run" description:"Print frames instead of writing to the serial port"`
	Retries    int    `long:"retries" default:"0" description:"Extra attempts for a failed serial write"`
	LogFile    string `long:"log-file" description:"Append logs to this file"`
	LogLevel   string `long:"log-level" default:"info" description:"Log level (debug, info, warn, error)"`
	Verbose    bool   `short:"v" long:"verbose" description:"Also log to stderr in plain mode"`
	MQTTBroker string `long:"mqtt-broker" description:"Publish session events to this MQTT broker"`
	MQTTTopic  string `long:"mqtt-topic" description:"MQTT topic for session events"`
}

// teleopLink is what a session writes to and the command closes afterwards.
type teleopLink interface {
	teleop.Transport
	io.Closer
}

func (c *TeleoperateCommand) Execute(args []string) (err error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	profile, err := teleop.ProfileByName(cfg.Profile)
	if err != nil {
		return err
	}
	profile = profile.WithOverride(cfg.Overrides)
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", profile.Name, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var console io.Writer
	if c.Plain && c.Verbose {
		console = os.Stderr
	}
	logger, logCloser, err := log.New(log.Options{Level: c.LogLevel, File: c.LogFile, Out: console})
	if err != nil {
		return err
	}

	link, err := c.openLink(ctx, cfg)
	if err != nil {
		logCloser.Close()
		var cerr *robot.ConfigurationError
		if errors.As(err, &cerr) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Cannot open serial port: %v", err)))
			fmt.Fprintln(os.Stderr, "Check the port with 'serialbot ports' or run 'serialbot setup'.")
			os.Exit(1)
		}
		return err
	}
	logger.Infof("link open: port=%s baud=%d dry_run=%v", cfg.Port, cfg.BaudRate, c.DryRun)

	pub := c.openTelemetry(cfg.Telemetry, logger)

	defer func() {
		err = multierr.Combine(err, link.Close(), pub.Close(), logCloser.Close())
	}()

	sess, err := teleop.NewSession(teleop.Config{
		Profile:   profile,
		Transport: link,
		Sleeper:   teleop.NewClockSleeper(nil),
		Logger:    logger,
		Publisher: pub,
	})
	if err != nil {
		return err
	}

	if c.Plain {
		err = runPlain(ctx, sess)
	} else {
		err = runTUI(ctx, sess)
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

func (c *TeleoperateCommand) loadConfig() (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(opts.Config)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = robot.DefaultConfig()
	case err != nil:
		return nil, err
	}

	if c.Port != "" {
		cfg.Port = c.Port
	}
	if c.Baud != 0 {
		cfg.BaudRate = c.Baud
	}
	if c.Profile != "" {
		cfg.Profile = c.Profile
	}
	if c.MQTTBroker != "" {
		cfg.Telemetry.Broker = c.MQTTBroker
	}
	if c.MQTTTopic != "" {
		cfg.Telemetry.Topic = c.MQTTTopic
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Config, err)
	}
	return cfg, nil
}

func (c *TeleoperateCommand) openLink(ctx context.Context, cfg *robot.Config) (teleopLink, error) {
	if c.DryRun {
		// Frames printed to stdout would tear the full-screen UI
		out := io.Discard
		if c.Plain {
			out = os.Stdout
		}
		return robot.NewDryLink(out), nil
	}

	fmt.Printf("Opening %s at %d baud...\n", cfg.Port, cfg.BaudRate)
	return robot.OpenLink(ctx, robot.LinkConfig{
		Port:         cfg.Port,
		BaudRate:     cfg.BaudRate,
		WriteRetries: c.Retries,
	})
}

// openTelemetry connects to the configured broker. Telemetry is optional, so
// a failed connection only disables it.
func (c *TeleoperateCommand) openTelemetry(tc robot.TelemetryConfig, logger log.Logger) telemetry.Publisher {
	if !tc.Enabled() {
		return telemetry.Nop()
	}
	pub, err := telemetry.NewMQTT(telemetry.MQTTConfig{
		Broker:   tc.Broker,
		ClientID: tc.ClientID,
		Topic:    tc.Topic,
	})
	if err != nil {
		logger.Warnf("telemetry disabled: %v", err)
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Telemetry disabled: %v", err)))
		return telemetry.Nop()
	}
	logger.Infof("publishing telemetry to %s topic %s", tc.Broker, tc.Topic)
	return pub
}

// runPlain reads one command per line from stdin.
func runPlain(ctx context.Context, sess *teleop.Session) error {
	fmt.Println(renderHelp(sess.Profile()))
	fmt.Println(dimStyle.Render("Type a command and press Enter. An empty line stops the robot."))

	done := make(chan struct{})
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for {
			select {
			case msg := <-sess.Logs():
				fmt.Println(msg)
			case <-done:
				for {
					select {
					case msg := <-sess.Logs():
						fmt.Println(msg)
					default:
						return
					}
				}
			}
		}
	}()

	err := sess.Run(ctx, teleop.ReadLines(ctx, os.Stdin, sess.Profile().Keys))
	close(done)
	<-printed
	return err
}

// runTUI runs the session behind the full-screen UI. The session owns the
// exit: the UI asks it to quit and closes once Run has returned.
func runTUI(ctx context.Context, sess *teleop.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inputs := make(chan teleop.Input, 16)
	p := tea.NewProgram(newTeleopModel(sess, inputs, cancel), tea.WithAltScreen())

	result := make(chan error, 1)
	go func() {
		err := sess.Run(ctx, inputs)
		result <- err
		p.Send(sessionDoneMsg{err: err})
	}()

	_, uiErr := p.Run()

	// The UI can also end on its own (SIGTERM or a terminal error)
	cancel()
	err := <-result

	if uiErr != nil {
		return multierr.Append(err, fmt.Errorf("run ui: %w", uiErr))
	}
	return err
}

func renderHelp(p teleop.Profile) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("Commands (%s)", p.Name)))
	for _, b := range p.Keys.Bindings() {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  %-8s %s", strings.Join(b.Keys, "/"), dimStyle.Render(b.Symbol.String())))
	}
	return sb.String()
}
