package teleop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gwillem/serialbot/pkg/frame"
)

// recorder is a Transport that decodes and keeps every frame written to it.
type recorder struct {
	frames   []frame.Frame
	writes   int
	flushes  int
	failAt   map[int]bool // 1-based write numbers that fail
	flushErr error
	panicAt  int
}

func (r *recorder) Write(b []byte) (int, error) {
	r.writes++
	if r.panicAt == r.writes {
		panic("link exploded")
	}
	if r.failAt[r.writes] {
		return 0, errors.New("link down")
	}
	for off := 0; off+frame.Size <= len(b); off += frame.Size {
		f, err := frame.Decode(b[off : off+frame.Size])
		if err != nil {
			return off, err
		}
		r.frames = append(r.frames, f)
	}
	return len(b), nil
}

func (r *recorder) Flush() error {
	r.flushes++
	return r.flushErr
}

type fakeSleeper struct {
	calls []time.Duration
	err   error
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

func newTestDispatcher(t *testing.T, p Profile) (*Dispatcher, *recorder, *fakeSleeper) {
	t.Helper()
	rec := &recorder{}
	sl := &fakeSleeper{}
	d, err := NewDispatcher(p, rec, sl)
	if err != nil {
		t.Fatalf("NewDispatcher error: %v", err)
	}
	return d, rec, sl
}

func x(v float32) frame.Frame   { return frame.Encode(frame.AxisX, v) }
func y(v float32) frame.Frame   { return frame.Encode(frame.AxisY, v) }
func yaw(v float32) frame.Frame { return frame.Encode(frame.AxisYaw, v) }
