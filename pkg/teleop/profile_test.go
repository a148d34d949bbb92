package teleop

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gwillem/serialbot/pkg/frame"
	"github.com/gwillem/serialbot/pkg/robot"
)

func TestKeymap_Lookup(t *testing.T) {
	tests := []struct {
		profile Profile
		key     string
		want    Symbol
	}{
		{Planar(), "w", Forward},
		{Planar(), " W ", Forward},
		{Planar(), "s", Back},
		{Planar(), "a", Left},
		{Planar(), "d", Right},
		{Planar(), "+", SpeedUp},
		{Planar(), "-", SpeedDown},
		{Planar(), "q", Quit},
		{Planar(), "", Stop},
		{Planar(), " ", Stop},
		{Planar(), "e", Invalid},
		{Planar(), "ww", Invalid},
		{Yaw(), "q", TurnLeft},
		{Yaw(), "E", TurnRight},
		{Yaw(), "]", YawRateUp},
		{Yaw(), "[", YawRateDown},
		{Yaw(), "x", Quit},
		{Yaw(), "\t", Stop},
	}

	for _, tt := range tests {
		if got := tt.profile.Keys.Lookup(tt.key); got != tt.want {
			t.Errorf("%s Lookup(%q) = %s, want %s", tt.profile.Name, tt.key, got, tt.want)
		}
	}
}

func TestKeymap_Bindings(t *testing.T) {
	got := Planar().Keys.Bindings()
	want := []Binding{
		{Keys: []string{"W"}, Symbol: Forward},
		{Keys: []string{"S"}, Symbol: Back},
		{Keys: []string{"A"}, Symbol: Left},
		{Keys: []string{"D"}, Symbol: Right},
		{Keys: []string{"+"}, Symbol: SpeedUp},
		{Keys: []string{"-"}, Symbol: SpeedDown},
		{Keys: []string{"SPACE"}, Symbol: Stop},
		{Keys: []string{"Q"}, Symbol: Quit},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Bindings (-want +got):\n%s", diff)
	}
}

func TestSymbol_String(t *testing.T) {
	if Forward.String() != "forward" || TurnLeft.String() != "turn_left" || Symbol(-1).String() != "invalid" {
		t.Errorf("unexpected names: %s %s %s", Forward, TurnLeft, Symbol(-1))
	}
}

func TestProfile_Builtins(t *testing.T) {
	for _, name := range ProfileNames() {
		p, err := ProfileByName(name)
		if err != nil {
			t.Fatalf("ProfileByName(%q) error: %v", name, err)
		}
		if p.Name != name {
			t.Errorf("ProfileByName(%q).Name = %q", name, p.Name)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("%s: Validate error: %v", name, err)
		}
		for _, b := range p.Keys.Bindings() {
			if !p.Supports(b.Symbol) {
				t.Errorf("%s binds %v to unsupported %s", name, b.Keys, b.Symbol)
			}
		}
	}

	if _, err := ProfileByName("hexapod"); err == nil {
		t.Error("expected error for unknown profile")
	}
	if p, _ := ProfileByName(""); p.Name != "planar" {
		t.Errorf("empty profile name resolved to %q", p.Name)
	}

	if Planar().StopAlsoDisarms || !Yaw().StopAlsoDisarms {
		t.Error("stop_also_disarms defaults do not match the variants")
	}
}

func TestProfile_WithOverride(t *testing.T) {
	keep := false
	p := Yaw().WithOverride(robot.ProfileOverride{
		InitialSpeed:    0.8,
		SpeedStep:       0.2,
		YawRateRange:    &robot.Range{Min: 0.1, Max: 0.5},
		StopAlsoDisarms: &keep,
		SettleDelayMs:   250,
	})

	if p.InitialSpeed != 0.8 || p.SpeedStep != 0.2 {
		t.Errorf("speed overrides not applied: %+v", p)
	}
	if p.YawRateRange.Max != 0.5 || p.YawRateStep != 0.1 {
		t.Errorf("yaw overrides wrong: range %+v step %g", p.YawRateRange, p.YawRateStep)
	}
	if p.StopAlsoDisarms {
		t.Error("StopAlsoDisarms override not applied")
	}
	if p.SettleDelay != 250*time.Millisecond {
		t.Errorf("SettleDelay = %v", p.SettleDelay)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate error: %v", err)
	}
}

func TestProfile_OverrideStepTooSmall(t *testing.T) {
	p := Planar().WithOverride(robot.ProfileOverride{SpeedStep: 0.0004})
	if err := p.Validate(); err == nil {
		t.Error("expected a step below MinStep to be rejected")
	}

	p = Planar().WithOverride(robot.ProfileOverride{SpeedStep: MinStep})
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	m := newMotionState(p)
	for range 5 {
		m.adjustSpeed(p.SpeedStep)
	}
	if got := m.snapshot().Speed; got != 0.505 {
		t.Errorf("speed after 5 minimum steps = %v, want 0.505", got)
	}
}

func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Profile)
	}{
		{"no axes", func(p *Profile) { p.Axes = nil }},
		{"enable axis", func(p *Profile) { p.Axes = []frame.Axis{frame.AxisEnable} }},
		{"unknown axis", func(p *Profile) { p.Axes = []frame.Axis{frame.Axis(7)} }},
		{"zero step", func(p *Profile) { p.SpeedStep = 0 }},
		{"step below grid", func(p *Profile) { p.SpeedStep = 0.0004 }},
		{"yaw step below grid", func(p *Profile) { p.YawRateStep = 0.0009 }},
		{"inverted range", func(p *Profile) { p.SpeedRange = robot.Range{Min: 2, Max: 1} }},
		{"initial outside", func(p *Profile) { p.InitialSpeed = 3 }},
		{"yaw step", func(p *Profile) { p.YawRateStep = -0.1 }},
		{"yaw initial", func(p *Profile) { p.InitialYawRate = 2 }},
		{"negative settle", func(p *Profile) { p.SettleDelay = -time.Second }},
	}

	for _, tt := range tests {
		p := Yaw()
		tt.modify(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestZeroAll_Order(t *testing.T) {
	p := Yaw()
	p.Axes = []frame.Axis{frame.AxisYaw, frame.AxisX, frame.AxisY, frame.AxisX}

	want := []frame.Frame{x(0), y(0), yaw(0)}
	if diff := cmp.Diff(want, ZeroAll(p)); diff != "" {
		t.Errorf("ZeroAll (-want +got):\n%s", diff)
	}

	full := FullShutdown(p)
	if len(full) != 4 || full[3] != frame.Disable() {
		t.Errorf("FullShutdown = %v", full)
	}
	for _, f := range full[:3] {
		if f.Value() != 0 {
			t.Errorf("non-zero stop frame %v", f)
		}
	}
}
