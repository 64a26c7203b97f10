package choreo

import (
	"fmt"
	"math"
	"strings"
)

// Splatter receives the splats of a choreography. *fluid.Simulator
// implements it.
type Splatter interface {
	Splat(radius float32, position, velocity, color []float32) error
}

// Kind selects the scripted choreography.
type Kind int

// Choreographies.
const (
	None Kind = iota
	KindSpells
	KindSpin
)

var kindNames = [...]string{
	None:       "none",
	KindSpells: "spells",
	KindSpin:   "spin",
}

// String returns the lower-case name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind parses a choreography name, ignoring case. The empty string
// is None.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return None, nil
	}
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return None, fmt.Errorf("choreo: unknown choreography %q", s)
}

// Default jet colors.
var (
	Red  = [3]float32{214.0 / 255, 61.0 / 255, 47.0 / 255}
	Blue = [3]float32{47.0 / 255, 161.0 / 255, 214.0 / 255}
)

// Radius converts a radius factor into the splat radius for a canvas of
// the given size. The simulator falls off with the square of the radius,
// so the blob area grows linearly with the smaller canvas side.
func Radius(width, height int, factor float32) float32 {
	return float32(math.Sqrt(float64(min(width, height)) * 10 * float64(factor)))
}

// Jet is one dye source of Spells.
type Jet struct {
	Color    [3]float32
	Radius   float32
	Strength float32
	// XOffset is the distance from the jet's own edge, as a fraction of
	// the width.
	XOffset float32
	// YOffset moves the jet up from the middle, as a fraction of half the
	// height.
	YOffset float32
}

// Spells is a pair of jets facing each other from the left and right
// edges.
type Spells struct {
	Left  Jet
	Right Jet
}

// DefaultSpells returns a red jet on the left and a blue one on the right.
func DefaultSpells() Spells {
	return Spells{
		Left:  Jet{Color: Red, Radius: 0.2, Strength: 10, XOffset: 0.05},
		Right: Jet{Color: Blue, Radius: 0.2, Strength: 10, XOffset: 0.05},
	}
}

// Apply splats both jets onto a canvas of the given size.
func (s Spells) Apply(dst Splatter, width, height int) error {
	w, halfH := float32(width), float32(height)*0.5

	l := s.Left
	pos := []float32{w * l.XOffset, (1 + l.YOffset) * halfH}
	vel := []float32{10 * l.Strength, 0}
	if err := dst.Splat(Radius(width, height, l.Radius), pos, vel, l.Color[:]); err != nil {
		return fmt.Errorf("choreo: left jet: %w", err)
	}

	r := s.Right
	pos = []float32{(1 - r.XOffset) * w, (1 + r.YOffset) * halfH}
	vel = []float32{-10 * r.Strength, 0}
	if err := dst.Splat(Radius(width, height, r.Radius), pos, vel, r.Color[:]); err != nil {
		return fmt.Errorf("choreo: right jet: %w", err)
	}
	return nil
}

// Spin is a single jet whose direction rotates over time.
type Spin struct {
	Color    [3]float32
	Radius   float32
	Strength float32

	// Speed is the angular velocity in radians per second.
	Speed float32
	// Offset is the direction at time zero, in radians.
	Offset float32

	// X and Y move the jet from the canvas center, as fractions of half
	// the width and height.
	X float32
	Y float32
}

// DefaultSpin returns a slow red jet slightly above the center.
func DefaultSpin() Spin {
	return Spin{
		Color:    Red,
		Radius:   0.2,
		Strength: 10,
		Speed:    0.2,
		Offset:   math.Pi,
		Y:        0.05,
	}
}

// Direction returns the unit direction of the jet at time t, in seconds.
func (s Spin) Direction(t float64) (dx, dy float32) {
	a := float64(s.Speed)*t + float64(s.Offset)
	return float32(math.Cos(a)), float32(math.Sin(a))
}

// Apply splats the jet at time t onto a canvas of the given size.
func (s Spin) Apply(dst Splatter, width, height int, t float64) error {
	pos := []float32{(1 + s.X) * float32(width) * 0.5, (1 + s.Y) * float32(height) * 0.5}
	dx, dy := s.Direction(t)
	vel := []float32{dx * 10 * s.Strength, dy * 10 * s.Strength}
	if err := dst.Splat(Radius(width, height, s.Radius), pos, vel, s.Color[:]); err != nil {
		return fmt.Errorf("choreo: spin: %w", err)
	}
	return nil
}
