package fluid

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is the integer factor by which the canvas size is divided to
// size a field.
type Resolution int

// Supported downscale factors.
const (
	One     Resolution = 1
	Two     Resolution = 2
	Four    Resolution = 4
	Eight   Resolution = 8
	Sixteen Resolution = 16
)

// Valid reports whether r is a supported factor.
func (r Resolution) Valid() bool {
	switch r {
	case One, Two, Four, Eight, Sixteen:
		return true
	}
	return false
}

// String returns the factor as a decimal number.
func (r Resolution) String() string {
	return strconv.Itoa(int(r))
}

// Scale divides a canvas dimension by the factor. The result is at
// least 1.
func (r Resolution) Scale(n int) int {
	return max(n/int(r), 1)
}

// ParseResolution parses "1", "2", "4", "8" or "16". A leading "1/" is
// accepted ("1/4" is Four).
func ParseResolution(s string) (Resolution, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "1/")
	n, err := strconv.Atoi(s)
	if err != nil || !Resolution(n).Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	return Resolution(n), nil
}

// Mode selects the field the draw pass shows.
type Mode int

// Display modes.
const (
	Dye Mode = iota
	Velocity
	Pressure
)

var modeNames = [...]string{
	Dye:      "dye",
	Velocity: "velocity",
	Pressure: "pressure",
}

// String returns the lower-case mode name.
func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
	return modeNames[m]
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("fluid: unknown mode %q", s)
}
