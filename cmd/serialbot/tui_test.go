package main

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gwillem/serialbot/pkg/frame"
	"github.com/gwillem/serialbot/pkg/robot"
	"github.com/gwillem/serialbot/pkg/teleop"
)

func newTestModel(t *testing.T, p teleop.Profile) (teleopModel, chan teleop.Input) {
	t.Helper()
	sess, err := teleop.NewSession(teleop.Config{Profile: p, Transport: robot.NewDryLink(io.Discard)})
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	inputs := make(chan teleop.Input, 4)
	return newTeleopModel(sess, inputs, func() {}), inputs
}

func TestKeyInput(t *testing.T) {
	m, _ := newTestModel(t, teleop.Yaw())

	tests := []struct {
		msg  tea.KeyMsg
		want teleop.Symbol
		ok   bool
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("w")}, teleop.Forward, true},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Q")}, teleop.TurnLeft, true},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")}, teleop.YawRateUp, true},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}, teleop.Invalid, true},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, teleop.Stop, true},
		{tea.KeyMsg{Type: tea.KeyEnter}, teleop.Stop, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, teleop.Quit, true},
		{tea.KeyMsg{Type: tea.KeyUp}, teleop.Invalid, false},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("w"), Alt: true}, teleop.Invalid, false},
	}

	for _, tt := range tests {
		in, ok := m.keyInput(tt.msg)
		if ok != tt.ok || (ok && in.Symbol != tt.want) {
			t.Errorf("keyInput(%q) = %s, %v; want %s, %v", tt.msg.String(), in.Symbol, ok, tt.want, tt.ok)
		}
	}
}

func TestUpdate_ForwardsKeys(t *testing.T) {
	m, inputs := newTestModel(t, teleop.Planar())

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	select {
	case in := <-inputs:
		if in.Symbol != teleop.Right || in.Key != "d" {
			t.Errorf("input = %+v", in)
		}
	default:
		t.Fatal("key was not forwarded")
	}
}

func TestObserve_TracksCommandedValues(t *testing.T) {
	m, _ := newTestModel(t, teleop.Yaw())

	m.observe([]frame.Frame{frame.Enable(), frame.Encode(frame.AxisX, 1.5)})
	m.observe([]frame.Frame{frame.Encode(frame.AxisYaw, -0.5)})

	if m.velocity[frame.AxisX] != 1.5 || m.velocity[frame.AxisYaw] != -0.5 {
		t.Errorf("velocity = %v", m.velocity)
	}
	if _, ok := m.velocity[frame.AxisEnable]; ok {
		t.Error("enable frames must not be charted")
	}
}

func TestSend_QuitWithFullQueueCancels(t *testing.T) {
	m, inputs := newTestModel(t, teleop.Planar())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.cancel = cancel

	for range cap(inputs) {
		m.send(teleop.Input{Symbol: teleop.Forward, Key: "w"})
	}
	m.send(teleop.Input{Symbol: teleop.Back, Key: "s"})
	if ctx.Err() != nil {
		t.Fatal("a dropped motion key must not cancel the session")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if ctx.Err() == nil {
		t.Error("ctrl+c with a full queue did not cancel the session")
	}
}
