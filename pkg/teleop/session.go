// Package teleop provides keyboard teleoperation over the frame protocol.
//
// A Session owns a Dispatcher and processes one Input at a time. Every way
// out of Run (quit, closed input, cancellation, panic) leaves the controller
// with zero velocity and disabled, on a best-effort basis.
package teleop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gwillem/serialbot/pkg/frame"
	"github.com/gwillem/serialbot/pkg/log"
	"github.com/gwillem/serialbot/pkg/telemetry"
)

// State is published to the UI after every step.
type State struct {
	Snapshot
	Symbol    Symbol
	Frames    []frame.Frame
	Timestamp time.Time
	Error     error
}

// Config holds configuration for a session.
type Config struct {
	Profile   Profile
	Transport Transport
	Sleeper   Sleeper             // nil uses the wall clock
	Logger    log.Logger          // nil discards
	Publisher telemetry.Publisher // nil publishes nothing
}

// Session runs the teleoperation control loop.
type Session struct {
	d      *Dispatcher
	logger log.Logger
	pub    telemetry.Publisher

	mu      sync.Mutex
	running bool
	stopped bool // full shutdown already sent

	stateCh chan State
	logCh   chan string
}

// NewSession creates a session. The transport must already be open.
func NewSession(cfg Config) (*Session, error) {
	d, err := NewDispatcher(cfg.Profile, cfg.Transport, cfg.Sleeper)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = telemetry.Nop()
	}
	return &Session{
		d:       d,
		logger:  cfg.Logger.WithField("profile", cfg.Profile.Name),
		pub:     cfg.Publisher,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 64),
	}, nil
}

// States returns a channel that receives the latest state.
func (s *Session) States() <-chan State {
	return s.stateCh
}

// Logs returns a channel that receives operator-facing messages.
func (s *Session) Logs() <-chan string {
	return s.logCh
}

// Profile returns the active profile.
func (s *Session) Profile() Profile {
	return s.d.Profile()
}

// Initial returns the state before any input was processed.
func (s *Session) Initial() Snapshot {
	return s.d.State()
}

// Run processes inputs until Quit, until inputs is closed or until ctx is
// cancelled. It returns ctx.Err() on cancellation and nil otherwise.
func (s *Session) Run(ctx context.Context, inputs <-chan Input) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("panic in control loop: %v", r)
			s.shutdown("panic")
			panic(r)
		}
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	p := s.d.Profile()
	s.logger.Infof("session started: speed=%.2f yaw_rate=%.2f stop_also_disarms=%v", p.InitialSpeed, p.InitialYawRate, p.StopAlsoDisarms)
	s.log("Teleoperation started (%s profile)", p.Name)
	s.sendState(State{Snapshot: s.d.State(), Timestamp: time.Now()})

	for {
		if ctx.Err() != nil {
			return s.interrupt(ctx)
		}

		select {
		case <-ctx.Done():
			return s.interrupt(ctx)

		case in, ok := <-inputs:
			if !ok {
				s.shutdown("input closed")
				return nil
			}
			// A cancel can race an input that was already queued.
			if ctx.Err() != nil {
				return s.interrupt(ctx)
			}

			res, err := s.d.Dispatch(ctx, in.Symbol)
			s.report(in, res, err)

			if res.Quit {
				s.mu.Lock()
				s.stopped = true
				s.mu.Unlock()
				s.log("Teleoperation stopped")
				return nil
			}
			if err != nil && ctx.Err() != nil {
				return s.interrupt(ctx)
			}
		}
	}
}

func (s *Session) interrupt(ctx context.Context) error {
	s.log("Interrupted, stopping safely")
	s.shutdown("interrupt")
	return ctx.Err()
}

// shutdown sends the full shutdown sequence once per session.
func (s *Session) shutdown(reason string) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	res, err := s.d.Shutdown()
	s.report(Input{Symbol: Quit, Key: reason}, res, err)
	s.log("Teleoperation stopped")
}

func (s *Session) report(in Input, res Result, err error) {
	l := s.logger.WithField("symbol", in.Symbol)

	switch {
	case res.Invalid:
		l.Debugf("invalid input %q", in.Key)
		s.log("Invalid command %q", in.Key)
	case res.Quit:
		s.log("Shutdown: velocities zeroed, robot disabled")
	case res.Stopped && res.Disarmed:
		s.log("Safety stop: velocities zeroed, robot disabled")
	case res.Stopped:
		s.log("Safety stop: velocities zeroed")
	}

	if res.Armed {
		s.log("Robot enabled")
	}
	if res.SpeedChanged {
		s.log("Speed: %.2f", res.State.Speed)
	}
	if res.YawRateChanged {
		s.log("Yaw rate: %.2f rad/s", res.State.YawRate)
	}
	for _, f := range res.Frames {
		switch f.Axis() {
		case frame.AxisX, frame.AxisY:
			if v := f.Value(); v != 0 {
				s.log("Move %s: %.2f", res.State.LastDirection, math.Abs(float64(v)))
			}
		case frame.AxisYaw:
			if v := f.Value(); v < 0 {
				s.log("Turn left: %.2f rad/s", -v)
			} else if v > 0 {
				s.log("Turn right: %.2f rad/s", v)
			}
		}
	}

	hexFrames := make([]string, len(res.Frames))
	for i, f := range res.Frames {
		hexFrames[i] = f.Hex()
	}

	ev := telemetry.Event{
		Time:    time.Now(),
		Symbol:  in.Symbol.String(),
		Armed:   res.State.Armed,
		Speed:   res.State.Speed,
		YawRate: res.State.YawRate,
		Frames:  hexFrames,
	}
	if res.State.HasDirection() {
		ev.LastDirection = res.State.LastDirection.String()
	}

	if err != nil {
		ev.Error = err.Error()
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			l.Warnf("step interrupted: %v", err)
		default:
			l.Errorf("send failed: %v", err)
			s.log("Send failed: %v", err)
		}
	} else if !res.Invalid {
		l.Infof("armed=%v speed=%.2f yaw_rate=%.2f frames=%v", res.State.Armed, res.State.Speed, res.State.YawRate, hexFrames)
	}

	if perr := s.pub.Publish(ev); perr != nil {
		l.Warnf("publish telemetry: %v", perr)
	}

	s.sendState(State{
		Snapshot:  res.State,
		Symbol:    in.Symbol,
		Frames:    res.Frames,
		Timestamp: time.Now(),
		Error:     err,
	})
}

func (s *Session) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case s.logCh <- msg:
	default:
		// Drop if channel full
	}
}

func (s *Session) sendState(st State) {
	select {
	case s.stateCh <- st:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-s.stateCh:
		default:
		}
		select {
		case s.stateCh <- st:
		default:
		}
	}
}
