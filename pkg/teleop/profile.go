package teleop

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/gwillem/serialbot/pkg/frame"
	"github.com/gwillem/serialbot/pkg/robot"
)

// DefaultSettleDelay is the pause between the enable frame and the first
// motion frame.
const DefaultSettleDelay = 500 * time.Millisecond

// MinStep is the smallest speed or yaw-rate step. Adjusted values are kept
// on a 0.001 grid, so a smaller step would never change them.
const MinStep = 0.001

// Profile describes one control variant: which axes exist, the magnitude
// model, the key bindings and whether Stop also disarms.
type Profile struct {
	Name string
	Axes []frame.Axis // motion axes

	InitialSpeed float64
	SpeedStep    float64
	SpeedRange   robot.Range

	InitialYawRate float64
	YawRateStep    float64
	YawRateRange   robot.Range

	StopAlsoDisarms bool
	SettleDelay     time.Duration
	Keys            Keymap
}

// Planar is the X/Y variant. Stop zeroes velocity but leaves the controller
// enabled.
func Planar() Profile {
	return Profile{
		Name:           "planar",
		Axes:           []frame.Axis{frame.AxisX, frame.AxisY},
		InitialSpeed:   0.5,
		SpeedStep:      0.1,
		SpeedRange:     robot.DefaultSpeedRange,
		InitialYawRate: 0.5,
		YawRateStep:    0.1,
		YawRateRange:   robot.DefaultYawRateRange,
		SettleDelay:    DefaultSettleDelay,
		Keys: Keymap{
			"W": Forward,
			"S": Back,
			"A": Left,
			"D": Right,
			"+": SpeedUp,
			"-": SpeedDown,
			"Q": Quit,
		},
	}
}

// Yaw adds turning. Stop zeroes all three axes and disables the controller.
func Yaw() Profile {
	return Profile{
		Name:            "yaw",
		Axes:            []frame.Axis{frame.AxisX, frame.AxisY, frame.AxisYaw},
		InitialSpeed:    1.5,
		SpeedStep:       0.5,
		SpeedRange:      robot.DefaultSpeedRange,
		InitialYawRate:  0.5,
		YawRateStep:     0.1,
		YawRateRange:    robot.DefaultYawRateRange,
		StopAlsoDisarms: true,
		SettleDelay:     DefaultSettleDelay,
		Keys: Keymap{
			"W": Forward,
			"S": Back,
			"A": Left,
			"D": Right,
			"Q": TurnLeft,
			"E": TurnRight,
			"+": SpeedUp,
			"-": SpeedDown,
			"]": YawRateUp,
			"[": YawRateDown,
			"X": Quit,
		},
	}
}

// ProfileNames lists the built-in profiles.
func ProfileNames() []string {
	return []string{"planar", "yaw"}
}

// ProfileByName returns a built-in profile.
func ProfileByName(name string) (Profile, error) {
	switch name {
	case "planar", "":
		return Planar(), nil
	case "yaw":
		return Yaw(), nil
	default:
		return Profile{}, fmt.Errorf("unknown profile %q (want one of %v)", name, ProfileNames())
	}
}

// WithOverride returns a copy of p with the non-zero override values applied.
func (p Profile) WithOverride(o robot.ProfileOverride) Profile {
	if o.InitialSpeed != 0 {
		p.InitialSpeed = o.InitialSpeed
	}
	if o.SpeedStep != 0 {
		p.SpeedStep = o.SpeedStep
	}
	if o.SpeedRange != nil {
		p.SpeedRange = *o.SpeedRange
	}
	if o.InitialYawRate != 0 {
		p.InitialYawRate = o.InitialYawRate
	}
	if o.YawRateStep != 0 {
		p.YawRateStep = o.YawRateStep
	}
	if o.YawRateRange != nil {
		p.YawRateRange = *o.YawRateRange
	}
	if o.StopAlsoDisarms != nil {
		p.StopAlsoDisarms = *o.StopAlsoDisarms
	}
	if o.SettleDelayMs != 0 {
		p.SettleDelay = time.Duration(o.SettleDelayMs) * time.Millisecond
	}
	return p
}

// Validate checks that the profile can drive a dispatcher.
func (p Profile) Validate() error {
	if len(p.Axes) == 0 {
		return errors.New("profile has no motion axes")
	}
	for _, a := range p.Axes {
		if a == frame.AxisEnable || !a.Valid() {
			return fmt.Errorf("profile axis %s is not a motion axis", a)
		}
	}
	if err := p.SpeedRange.Validate(); err != nil {
		return fmt.Errorf("speed: %w", err)
	}
	if p.SpeedStep < MinStep {
		return fmt.Errorf("speed step %g must be at least %g", p.SpeedStep, MinStep)
	}
	if !p.SpeedRange.Contains(p.InitialSpeed) {
		return fmt.Errorf("initial speed %g outside [%g, %g]", p.InitialSpeed, p.SpeedRange.Min, p.SpeedRange.Max)
	}
	if p.HasAxis(frame.AxisYaw) {
		if err := p.YawRateRange.Validate(); err != nil {
			return fmt.Errorf("yaw rate: %w", err)
		}
		if p.YawRateStep < MinStep {
			return fmt.Errorf("yaw rate step %g must be at least %g", p.YawRateStep, MinStep)
		}
		if !p.YawRateRange.Contains(p.InitialYawRate) {
			return fmt.Errorf("initial yaw rate %g outside [%g, %g]", p.InitialYawRate, p.YawRateRange.Min, p.YawRateRange.Max)
		}
	}
	if p.SettleDelay < 0 {
		return fmt.Errorf("settle delay %v is negative", p.SettleDelay)
	}
	return nil
}

// HasAxis reports whether a is one of the profile's motion axes.
func (p Profile) HasAxis(a frame.Axis) bool {
	return slices.Contains(p.Axes, a)
}

// Supports reports whether s is meaningful for this profile.
func (p Profile) Supports(s Symbol) bool {
	switch s {
	case Forward, Back:
		return p.HasAxis(frame.AxisX)
	case Left, Right:
		return p.HasAxis(frame.AxisY)
	case TurnLeft, TurnRight, YawRateUp, YawRateDown:
		return p.HasAxis(frame.AxisYaw)
	case SpeedUp, SpeedDown, Stop, Quit:
		return true
	default:
		return false
	}
}

// command returns the axis and signed value for a directional symbol.
func command(s Symbol, speed, yawRate float64) (frame.Axis, float64) {
	switch s {
	case Forward:
		return frame.AxisX, speed
	case Back:
		return frame.AxisX, -speed
	case Right:
		return frame.AxisY, speed
	case Left:
		return frame.AxisY, -speed
	case TurnRight:
		return frame.AxisYaw, yawRate
	case TurnLeft:
		return frame.AxisYaw, -yawRate
	default:
		panic(fmt.Sprintf("teleop: %s is not a direction", s))
	}
}
