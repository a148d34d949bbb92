package teleop

import (
	"context"
	"fmt"

	"github.com/gwillem/serialbot/pkg/frame"
	"github.com/gwillem/serialbot/pkg/robot"
)

// Transport is the outgoing byte link to the motor controller. It is opened
// and closed by the caller.
type Transport interface {
	Write(p []byte) (int, error)
	Flush() error
}

// Result describes what a single Dispatch did.
type Result struct {
	Symbol Symbol
	Frames []frame.Frame // frames written, in send order

	Armed          bool // the enable frame was sent during this step
	Disarmed       bool
	SpeedChanged   bool
	YawRateChanged bool
	Redispatched   bool // a speed change re-sent the active direction
	Stopped        bool
	Quit           bool
	Invalid        bool

	State Snapshot // state after the step
}

// Dispatcher turns symbols into frames. It is the only code that mutates
// the motion state and must be driven from a single goroutine.
type Dispatcher struct {
	profile Profile
	state   *motionState
	out     Transport
	sleep   Sleeper
}

// NewDispatcher validates p and returns a disarmed dispatcher writing to out.
// A nil sleeper uses the wall clock.
func NewDispatcher(p Profile, out Transport, sleep Sleeper) (*Dispatcher, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if out == nil {
		return nil, fmt.Errorf("nil transport")
	}
	if sleep == nil {
		sleep = NewClockSleeper(nil)
	}
	return &Dispatcher{
		profile: p,
		state:   newMotionState(p),
		out:     out,
		sleep:   sleep,
	}, nil
}

// Profile returns the active profile.
func (d *Dispatcher) Profile() Profile {
	return d.profile
}

// State returns a copy of the current motion state.
func (d *Dispatcher) State() Snapshot {
	return d.state.snapshot()
}

// Dispatch applies s. Transport failures are returned as *robot.TransportError;
// state changes made before the failure are kept.
func (d *Dispatcher) Dispatch(ctx context.Context, s Symbol) (Result, error) {
	res := Result{Symbol: s}
	var err error

	switch {
	case !d.profile.Supports(s):
		res.Invalid = true
	case s.IsDirection():
		err = d.move(ctx, s, &res)
	case s == SpeedUp:
		err = d.adjust(ctx, classLinear, d.profile.SpeedStep, &res)
	case s == SpeedDown:
		err = d.adjust(ctx, classLinear, -d.profile.SpeedStep, &res)
	case s == YawRateUp:
		err = d.adjust(ctx, classYaw, d.profile.YawRateStep, &res)
	case s == YawRateDown:
		err = d.adjust(ctx, classYaw, -d.profile.YawRateStep, &res)
	case s == Stop:
		err = d.stop(&res)
	case s == Quit:
		err = d.quit(&res)
	default:
		res.Invalid = true
	}

	res.State = d.state.snapshot()
	return res, err
}

// Shutdown runs the full shutdown sequence outside of normal input, for
// interrupts and errors. It never blocks on ctx.
func (d *Dispatcher) Shutdown() (Result, error) {
	res := Result{Symbol: Quit}
	err := d.quit(&res)
	res.State = d.state.snapshot()
	return res, err
}

func (d *Dispatcher) move(ctx context.Context, s Symbol, res *Result) error {
	if !d.state.armed {
		if err := d.send(res, frame.Enable()); err != nil {
			return err
		}
		d.state.arm()
		res.Armed = true
		if err := d.sleep.Sleep(ctx, d.profile.SettleDelay); err != nil {
			return fmt.Errorf("settle delay: %w", err)
		}
	}

	axis, value := command(s, d.state.speed, d.state.yawRate)
	if err := d.send(res, frame.Encode(axis, float32(value))); err != nil {
		return err
	}
	d.state.setLastDirection(s)
	return nil
}

func (d *Dispatcher) adjust(ctx context.Context, class axisClass, delta float64, res *Result) error {
	switch class {
	case classLinear:
		d.state.adjustSpeed(delta)
		res.SpeedChanged = true
	case classYaw:
		d.state.adjustYawRate(delta)
		res.YawRateChanged = true
	}

	last := d.state.lastDirection
	if last == Invalid || last.class() != class {
		return nil
	}
	res.Redispatched = true
	return d.move(ctx, last, res)
}

func (d *Dispatcher) stop(res *Result) error {
	frames := ZeroAll(d.profile)
	if d.profile.StopAlsoDisarms {
		frames = append(frames, frame.Disable())
	}
	err := d.sendAndFlush(res, frames...)

	// Applied even if the link failed: a later move must re-arm from scratch.
	d.state.clearLastDirection()
	if d.profile.StopAlsoDisarms {
		d.state.disarm()
		res.Disarmed = true
	}
	res.Stopped = true
	return err
}

func (d *Dispatcher) quit(res *Result) error {
	err := d.sendAndFlush(res, FullShutdown(d.profile)...)
	d.state.disarm()
	res.Disarmed = true
	res.Quit = true
	return err
}

func (d *Dispatcher) send(res *Result, frames ...frame.Frame) error {
	if _, err := d.out.Write(frame.Join(frames...)); err != nil {
		return robot.WrapTransport("write", err)
	}
	res.Frames = append(res.Frames, frames...)
	return nil
}

func (d *Dispatcher) sendAndFlush(res *Result, frames ...frame.Frame) error {
	if err := d.send(res, frames...); err != nil {
		return err
	}
	return robot.WrapTransport("flush", d.out.Flush())
}
