// Package blendmode translates between the editor's layer blend modes and the
// blend mode IDs stored in LCI documents.
//
// The editor side has more modes than the LCI side. Modes without an LCI
// counterpart (Reflect, Glow, Negation, Xor) can not be saved. The table below
// is the single source of truth for both directions.
package blendmode

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is an editor layer blend mode.
type Mode int

// Editor blend modes, in editor ID order.
const (
	Normal Mode = iota
	Multiply
	Additive
	ColorBurn
	ColorDodge
	Reflect
	Glow
	Overlay
	Difference
	Negation
	Lighten
	Darken
	Screen
	Xor
)

// Target is a blend mode ID as written into an LCI document.
type Target int

// Unsupported marks an editor mode with no LCI counterpart.
const Unsupported Target = -1

var (
	// ErrUnsupportedBlendMode is returned when an editor mode has no LCI ID.
	ErrUnsupportedBlendMode = errors.New("blend mode is not supported")

	// ErrUnknownBlendMode is returned when an LCI ID maps to no editor mode.
	ErrUnknownBlendMode = errors.New("illegal blend mode in LCI document")
)

var modeNames = [...]string{
	Normal:     "normal",
	Multiply:   "multiply",
	Additive:   "additive",
	ColorBurn:  "color_burn",
	ColorDodge: "color_dodge",
	Reflect:    "reflect",
	Glow:       "glow",
	Overlay:    "overlay",
	Difference: "difference",
	Negation:   "negation",
	Lighten:    "lighten",
	Darken:     "darken",
	Screen:     "screen",
	Xor:        "xor",
}

// table maps every editor mode to its LCI ID. Indexed by Mode.
var table = [...]Target{
	Normal:     0,
	Multiply:   2,
	Additive:   1,
	ColorBurn:  8,
	ColorDodge: 7,
	Reflect:    Unsupported,
	Glow:       Unsupported,
	Overlay:    4,
	Difference: 11,
	Negation:   Unsupported,
	Lighten:    6,
	Darken:     5,
	Screen:     3,
	Xor:        Unsupported,
}

// Modes returns every editor mode in ID order.
func Modes() []Mode {
	modes := make([]Mode, len(table))
	for i := range table {
		modes[i] = Mode(i)
	}
	return modes
}

// String returns the snake_case mode name.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

// Supported reports whether m can be written to an LCI document.
func (m Mode) Supported() bool {
	_, err := ToTarget(m)
	return err == nil
}

// ToTarget returns the LCI ID for m.
func ToTarget(m Mode) (Target, error) {
	if m < 0 || int(m) >= len(table) || table[m] == Unsupported {
		return Unsupported, fmt.Errorf("%w: %s", ErrUnsupportedBlendMode, m)
	}
	return table[m], nil
}

// FromTarget returns the first editor mode whose LCI ID is t.
func FromTarget(t Target) (Mode, error) {
	for m, target := range table {
		if target != Unsupported && target == t {
			return Mode(m), nil
		}
	}
	return Normal, fmt.Errorf("%w: %d", ErrUnknownBlendMode, int(t))
}

// ParseMode looks up a mode by name. Matching ignores case, and spaces or
// dashes are accepted in place of underscores.
func ParseMode(name string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		return Normal, nil
	}
	for m, n := range modeNames {
		if n == key {
			return Mode(m), nil
		}
	}
	return Normal, fmt.Errorf("unknown blend mode name %q", name)
}
