package robot

import (
	"fmt"
	"math"
)

// Range is an inclusive [Min, Max] bound for a commanded magnitude.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Default bounds for linear speed and yaw rate.
var (
	DefaultSpeedRange   = Range{Min: 0.1, Max: 2.0}
	DefaultYawRateRange = Range{Min: 0.05, Max: 1.0}
)

// Validate returns an error if the range is inverted or not finite.
func (r Range) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return fmt.Errorf("range [%g, %g] is not finite", r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("range [%g, %g] is inverted", r.Min, r.Max)
	}
	return nil
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Percent converts a value within the range to [0, 100], used for gauges.
func (r Range) Percent(v float64) float64 {
	size := r.Max - r.Min
	if size == 0 {
		return 100
	}
	return (r.Clamp(v) - r.Min) / size * 100
}
