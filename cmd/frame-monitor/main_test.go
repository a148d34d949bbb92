package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gwillem/serialbot/pkg/frame"
)

func TestMonitor(t *testing.T) {
	stream := append([]byte{0x00, 0xaa}, frame.Join(frame.Enable(), frame.Encode(frame.AxisX, -0.5))...)
	stream = append(stream, 0x23, 0x02, 0x01)

	var out bytes.Buffer
	n, skipped, err := monitor(bytes.NewReader(stream), &out, false)
	if err != nil {
		t.Fatalf("monitor error: %v", err)
	}
	if n != 2 {
		t.Errorf("frames = %d, want 2", n)
	}
	if skipped != 5 {
		t.Errorf("skipped = %d, want 5", skipped)
	}

	got := out.String()
	for _, want := range []string{"enable", "1.000", "x", "-0.500", frame.Disable().Hex()[:6], "stream ended inside a frame"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestOpen_RequiresSource(t *testing.T) {
	if _, err := open(Options{}); err == nil {
		t.Error("expected error without --port or --file")
	}
}
