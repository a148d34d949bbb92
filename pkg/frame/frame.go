// Package frame implements the 8-byte command frame understood by the motor controller.
//
// Layout (little-endian):
//
//	0: 0x23  header1
//	1: 0x02  header2
//	2: axis  0x00 enable, 0x01 X, 0x02 Y, 0x03 yaw
//	3-6:     float32 value
//	7: 0xAA  footer
//
// There is no checksum or length field; receivers frame on header and footer only.
package frame

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

const (
	Size    = 8
	Header1 = 0x23
	Header2 = 0x02
	Footer  = 0xAA
)

// Axis identifies the control channel a frame targets.
type Axis byte

const (
	AxisEnable Axis = 0x00
	AxisX      Axis = 0x01
	AxisY      Axis = 0x02
	AxisYaw    Axis = 0x03
)

func (a Axis) String() string {
	switch a {
	case AxisEnable:
		return "enable"
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisYaw:
		return "yaw"
	default:
		return fmt.Sprintf("axis(0x%02x)", byte(a))
	}
}

// Valid reports whether a is one of the known axis codes.
func (a Axis) Valid() bool {
	return a <= AxisYaw
}

var (
	ErrShortFrame  = errors.New("frame: short frame")
	ErrBadHeader   = errors.New("frame: bad header")
	ErrBadFooter   = errors.New("frame: bad footer")
	ErrUnknownAxis = errors.New("frame: unknown axis")
)

// Frame is a single encoded command. Frames with equal bytes are interchangeable.
type Frame [Size]byte

// Encode builds the frame for axis and value. The value is written verbatim;
// range limits are the caller's concern.
func Encode(axis Axis, value float32) Frame {
	var f Frame
	f[0] = Header1
	f[1] = Header2
	f[2] = byte(axis)
	binary.LittleEndian.PutUint32(f[3:7], math.Float32bits(value))
	f[7] = Footer
	return f
}

// Enable returns the frame that arms the controller.
func Enable() Frame { return Encode(AxisEnable, 1) }

// Disable returns the frame that disarms the controller.
func Disable() Frame { return Encode(AxisEnable, 0) }

// Decode parses b, which must start with a complete frame.
func Decode(b []byte) (Frame, error) {
	var f Frame
	if len(b) < Size {
		return f, ErrShortFrame
	}
	if b[0] != Header1 || b[1] != Header2 {
		return f, ErrBadHeader
	}
	if b[7] != Footer {
		return f, ErrBadFooter
	}
	copy(f[:], b[:Size])
	if !f.Axis().Valid() {
		return f, fmt.Errorf("%w: 0x%02x", ErrUnknownAxis, b[2])
	}
	return f, nil
}

// Axis returns the axis code carried by f.
func (f Frame) Axis() Axis {
	return Axis(f[2])
}

// Value returns the float carried by f.
func (f Frame) Value() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(f[3:7]))
}

// Bytes returns a copy of the wire bytes.
func (f Frame) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, f[:])
	return b
}

func (f Frame) String() string {
	return fmt.Sprintf("%s(%g) [% x]", f.Axis(), f.Value(), f[:])
}

// Hex returns the wire bytes as a lowercase hex string.
func (f Frame) Hex() string {
	return hex.EncodeToString(f[:])
}

// Join concatenates frames in order so they can go out in one write.
func Join(frames ...Frame) []byte {
	b := make([]byte, 0, len(frames)*Size)
	for _, f := range frames {
		b = append(b, f[:]...)
	}
	return b
}
