package teleop

import (
	"math"

	"github.com/gwillem/serialbot/pkg/robot"
)

// Snapshot is a read-only copy of the motion state.
type Snapshot struct {
	Armed         bool
	Speed         float64
	YawRate       float64
	LastDirection Symbol // Invalid when no direction is active
}

// HasDirection reports whether a directional command is currently active.
func (s Snapshot) HasDirection() bool {
	return s.LastDirection != Invalid
}

// motionState is owned by a single Dispatcher and mutated only by it.
//
// Invariant: while disarmed no non-zero motion frame has been sent since the
// last disarm. Speed and yaw rate always lie within their ranges.
type motionState struct {
	armed         bool
	speed         float64
	yawRate       float64
	speedRange    robot.Range
	yawRateRange  robot.Range
	lastDirection Symbol
}

func newMotionState(p Profile) *motionState {
	return &motionState{
		speed:        p.SpeedRange.Clamp(p.InitialSpeed),
		yawRate:      p.YawRateRange.Clamp(p.InitialYawRate),
		speedRange:   p.SpeedRange,
		yawRateRange: p.YawRateRange,
	}
}

func (m *motionState) arm() {
	m.armed = true
}

func (m *motionState) disarm() {
	m.armed = false
	m.lastDirection = Invalid
}

func (m *motionState) adjustSpeed(delta float64) float64 {
	m.speed = m.speedRange.Clamp(round3(m.speed + delta))
	return m.speed
}

func (m *motionState) adjustYawRate(delta float64) float64 {
	m.yawRate = m.yawRateRange.Clamp(round3(m.yawRate + delta))
	return m.yawRate
}

func (m *motionState) setLastDirection(s Symbol) {
	m.lastDirection = s
}

func (m *motionState) clearLastDirection() {
	m.lastDirection = Invalid
}

func (m *motionState) snapshot() Snapshot {
	return Snapshot{
		Armed:         m.armed,
		Speed:         m.speed,
		YawRate:       m.yawRate,
		LastDirection: m.lastDirection,
	}
}

// round3 keeps repeated steps from drifting: 0.7+0.1 is 0.7999999999999999.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
