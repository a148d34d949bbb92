package teleop

import (
	"slices"

	"github.com/gwillem/serialbot/pkg/frame"
)

// ZeroAll returns one zero-value frame per motion axis of p, ordered X, Y, Yaw
// regardless of how the profile lists them.
func ZeroAll(p Profile) []frame.Frame {
	axes := slices.Clone(p.Axes)
	slices.Sort(axes)
	axes = slices.Compact(axes)

	frames := make([]frame.Frame, 0, len(axes)+1)
	for _, a := range axes {
		if a == frame.AxisEnable {
			continue
		}
		frames = append(frames, frame.Encode(a, 0))
	}
	return frames
}

// FullShutdown returns ZeroAll followed by the disable frame. It is the
// sequence sent on every way out of a session.
func FullShutdown(p Profile) []frame.Frame {
	return append(ZeroAll(p), frame.Disable())
}
