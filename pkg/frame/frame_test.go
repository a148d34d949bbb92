package frame

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestEncode_Layout(t *testing.T) {
	tests := []struct {
		axis  Axis
		value float32
		want  []byte
	}{
		{AxisEnable, 1.0, []byte{0x23, 0x02, 0x00, 0x00, 0x00, 0x80, 0x3f, 0xaa}},
		{AxisEnable, 0.0, []byte{0x23, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0xaa}},
		{AxisX, 0.5, []byte{0x23, 0x02, 0x01, 0x00, 0x00, 0x00, 0x3f, 0xaa}},
		{AxisY, -0.5, []byte{0x23, 0x02, 0x02, 0x00, 0x00, 0x00, 0xbf, 0xaa}},
		{AxisYaw, 2.0, []byte{0x23, 0x02, 0x03, 0x00, 0x00, 0x00, 0x40, 0xaa}},
	}

	for _, tt := range tests {
		got := Encode(tt.axis, tt.value)
		if !bytes.Equal(got[:], tt.want) {
			t.Errorf("Encode(%s, %g) = % x, want % x", tt.axis, tt.value, got[:], tt.want)
		}
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 0.1, 0.6, -2, 1e-7, 123456.75, math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32}
	axes := []Axis{AxisEnable, AxisX, AxisY, AxisYaw}

	for _, axis := range axes {
		for _, v := range values {
			enc := Encode(axis, v)
			if len(enc.Bytes()) != Size {
				t.Fatalf("Encode produced %d bytes", len(enc.Bytes()))
			}
			if enc[0] != Header1 || enc[1] != Header2 || enc[7] != Footer {
				t.Errorf("Encode(%s, %g) framing = % x", axis, v, enc[:])
			}

			dec, err := Decode(enc[:])
			if err != nil {
				t.Fatalf("Decode(% x) error: %v", enc[:], err)
			}
			if dec.Axis() != axis || dec.Value() != v {
				t.Errorf("round trip (%s, %g) -> (%s, %g)", axis, v, dec.Axis(), dec.Value())
			}
		}
	}
}

func TestEncode_DoesNotClamp(t *testing.T) {
	f := Encode(AxisX, 99.5)
	if f.Value() != 99.5 {
		t.Errorf("Value() = %g, want 99.5", f.Value())
	}
}

func TestDecode_Errors(t *testing.T) {
	good := Encode(AxisX, 1)

	badHeader := good
	badHeader[1] = 0x03

	badFooter := good
	badFooter[7] = 0x00

	badAxis := good
	badAxis[2] = 0x09

	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"short", good[:7], ErrShortFrame},
		{"header", badHeader[:], ErrBadHeader},
		{"footer", badFooter[:], ErrBadFooter},
		{"axis", badAxis[:], ErrUnknownAxis},
	}

	for _, tt := range tests {
		_, err := Decode(tt.in)
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: Decode error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestJoin(t *testing.T) {
	got := Join(Encode(AxisX, 0), Encode(AxisY, 0), Disable())
	if len(got) != 3*Size {
		t.Fatalf("Join length = %d, want %d", len(got), 3*Size)
	}
	if got[2] != byte(AxisX) || got[10] != byte(AxisY) || got[18] != byte(AxisEnable) {
		t.Errorf("Join axis order = %x %x %x", got[2], got[10], got[18])
	}
}

func TestDecoder_Resync(t *testing.T) {
	var stream []byte
	stream = append(stream, 0xaa, 0x23, 0x17) // noise, including a lone header byte
	stream = append(stream, Join(Enable(), Encode(AxisX, 0.5))...)
	stream = append(stream, 0x23, 0x02, 0x01) // truncated frame
	stream = append(stream, Encode(AxisYaw, -0.3).Bytes()...)

	d := NewDecoder(bytes.NewReader(stream))

	var got []Frame
	for {
		f, err := d.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next() error: %v", err)
		}
		got = append(got, f)
	}

	want := []Frame{Enable(), Encode(AxisX, 0.5), Encode(AxisYaw, -0.3)}
	if len(got) != len(want) {
		t.Fatalf("decoded %d frames, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
	if d.Skipped() != 6 {
		t.Errorf("Skipped() = %d, want 6", d.Skipped())
	}
}

func TestDecoder_TrailingPartial(t *testing.T) {
	stream := append(Enable().Bytes(), 0x23, 0x02, 0x01)
	d := NewDecoder(bytes.NewReader(stream))

	if _, err := d.Next(); err != nil {
		t.Fatalf("first Next() error: %v", err)
	}
	if _, err := d.Next(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("second Next() error = %v, want io.ErrUnexpectedEOF", err)
	}
}
