package teleop

import (
	"sort"
	"strings"
)

// Symbol is one discrete operator command.
type Symbol int

const (
	Invalid Symbol = iota
	Forward
	Back
	Left
	Right
	TurnLeft
	TurnRight
	SpeedUp
	SpeedDown
	YawRateUp
	YawRateDown
	Stop
	Quit
)

var symbolNames = [...]string{
	Invalid:     "invalid",
	Forward:     "forward",
	Back:        "back",
	Left:        "left",
	Right:       "right",
	TurnLeft:    "turn_left",
	TurnRight:   "turn_right",
	SpeedUp:     "speed_up",
	SpeedDown:   "speed_down",
	YawRateUp:   "yaw_rate_up",
	YawRateDown: "yaw_rate_down",
	Stop:        "stop",
	Quit:        "quit",
}

func (s Symbol) String() string {
	if s < 0 || int(s) >= len(symbolNames) {
		return "invalid"
	}
	return symbolNames[s]
}

// IsDirection reports whether s commands motion on an axis.
func (s Symbol) IsDirection() bool {
	return s >= Forward && s <= TurnRight
}

// axisClass groups symbols by the magnitude they use.
type axisClass int

const (
	classNone axisClass = iota
	classLinear
	classYaw
)

func (s Symbol) class() axisClass {
	switch s {
	case Forward, Back, Left, Right, SpeedUp, SpeedDown:
		return classLinear
	case TurnLeft, TurnRight, YawRateUp, YawRateDown:
		return classYaw
	default:
		return classNone
	}
}

// Input is a symbol together with the raw key that produced it.
type Input struct {
	Symbol Symbol
	Key    string
}

// Keymap maps upper-cased key text to symbols.
type Keymap map[string]Symbol

// Lookup translates a key. Case and surrounding whitespace are ignored and
// an empty key means Stop.
func (k Keymap) Lookup(key string) Symbol {
	key = strings.ToUpper(strings.TrimSpace(key))
	if key == "" {
		return Stop
	}
	if s, ok := k[key]; ok {
		return s
	}
	return Invalid
}

// Binding is a help line: the keys bound to one symbol.
type Binding struct {
	Keys   []string
	Symbol Symbol
}

// Bindings lists the keymap grouped by symbol in a stable order. Stop is
// always listed with SPACE since the empty key maps to it.
func (k Keymap) Bindings() []Binding {
	bySymbol := make(map[Symbol][]string)
	for key, s := range k {
		bySymbol[s] = append(bySymbol[s], key)
	}
	bySymbol[Stop] = append(bySymbol[Stop], "SPACE")

	var out []Binding
	for s := Forward; s <= Quit; s++ {
		keys := bySymbol[s]
		if len(keys) == 0 {
			continue
		}
		sort.Strings(keys)
		out = append(out, Binding{Keys: keys, Symbol: s})
	}
	return out
}
