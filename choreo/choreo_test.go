package choreo

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

type splat struct {
	radius   float32
	position []float32
	velocity []float32
	color    []float32
}

type recorder struct {
	splats []splat
	err    error
}

func (r *recorder) Splat(radius float32, position, velocity, color []float32) error {
	if r.err != nil {
		return r.err
	}
	r.splats = append(r.splats, splat{
		radius:   radius,
		position: append([]float32(nil), position...),
		velocity: append([]float32(nil), velocity...),
		color:    append([]float32(nil), color...),
	})
	return nil
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestPointer(t *testing.T) {
	p := NewPointer(0, 0)

	p.Update(10, 10, 5)
	if p.Moved() {
		t.Fatal("released pointer moved")
	}

	p.Down(100, 50)
	if !p.IsDown() || p.Moved() {
		t.Fatalf("after Down: down=%v moved=%v", p.IsDown(), p.Moved())
	}

	p.Update(104, 47, 10)
	if !p.Moved() {
		t.Fatal("Update did not mark the pointer moved")
	}
	if v := p.Velocity(); v[0] != 40 || v[1] != -30 {
		t.Errorf("Velocity = %v, want [40 -30]", v)
	}
	if pos := p.Position(); pos[0] != 104 || pos[1] != 47 {
		t.Errorf("Position = %v", pos)
	}

	p.ResetMove()
	if p.Moved() {
		t.Error("ResetMove kept the moved flag")
	}

	p.Update(104, 47, 10)
	if p.Moved() {
		t.Error("zero movement marked the pointer moved")
	}

	p.Up()
	p.Update(200, 200, 10)
	if pos := p.Position(); pos[0] != 104 {
		t.Errorf("released pointer followed a move: %v", pos)
	}
}

func TestRadius(t *testing.T) {
	tests := []struct {
		w, h   int
		factor float32
		want   float32
	}{
		{800, 600, 0.2, float32(math.Sqrt(1200))},
		{600, 800, 0.2, float32(math.Sqrt(1200))},
		{100, 100, 1, float32(math.Sqrt(1000))},
		{100, 100, 0, 0},
	}
	for _, tt := range tests {
		if got := Radius(tt.w, tt.h, tt.factor); !near(got, tt.want) {
			t.Errorf("Radius(%d, %d, %v) = %v, want %v", tt.w, tt.h, tt.factor, got, tt.want)
		}
	}
}

func TestSpellsApply(t *testing.T) {
	s := DefaultSpells()
	s.Right.YOffset = 0.5
	s.Right.Strength = 2

	var r recorder
	if err := s.Apply(&r, 1000, 400); err != nil {
		t.Fatal(err)
	}
	if len(r.splats) != 2 {
		t.Fatalf("%d splats, want 2", len(r.splats))
	}

	left, right := r.splats[0], r.splats[1]
	if !near(left.position[0], 50) || !near(left.position[1], 200) {
		t.Errorf("left position = %v, want [50 200]", left.position)
	}
	if left.velocity[0] != 100 || left.velocity[1] != 0 {
		t.Errorf("left velocity = %v, want [100 0]", left.velocity)
	}
	if !near(right.position[0], 950) || !near(right.position[1], 300) {
		t.Errorf("right position = %v, want [950 300]", right.position)
	}
	if right.velocity[0] != -20 {
		t.Errorf("right velocity = %v, want [-20 0]", right.velocity)
	}
	if !near(left.radius, Radius(1000, 400, 0.2)) {
		t.Errorf("left radius = %v", left.radius)
	}
	if left.color[0] != Red[0] || right.color[2] != Blue[2] {
		t.Errorf("colors = %v %v", left.color, right.color)
	}
}

func TestSpinApply(t *testing.T) {
	s := DefaultSpin()
	s.Speed = math.Pi / 2
	s.Offset = 0

	var r recorder
	if err := s.Apply(&r, 200, 100, 1); err != nil {
		t.Fatal(err)
	}
	got := r.splats[0]
	if !near(got.position[0], 100) || !near(got.position[1], 52.5) {
		t.Errorf("position = %v, want [100 52.5]", got.position)
	}
	// A quarter turn after one second points straight up.
	if !near(got.velocity[0], 0) || !near(got.velocity[1], 100) {
		t.Errorf("velocity = %v, want [0 100]", got.velocity)
	}
}

func TestApplyError(t *testing.T) {
	boom := errors.New("boom")
	r := recorder{err: boom}
	if err := DefaultSpells().Apply(&r, 10, 10); !errors.Is(err, boom) {
		t.Errorf("Spells error = %v", err)
	}
	if err := DefaultSpin().Apply(&r, 10, 10, 0); !errors.Is(err, boom) {
		t.Errorf("Spin error = %v", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"Spells", KindSpells, false},
		{" spin ", KindSpin, false},
		{"swirl", None, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v", tt.in, got, err)
		}
	}
	if KindSpin.String() != "spin" || Kind(9).String() != "Kind(9)" {
		t.Error("Kind.String")
	}
}

func TestRandomColor(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		c := RandomColor(rng, DefaultHue, DefaultSaturation, DefaultLightness)
		hi := max(c[0], c[1], c[2])
		lo := min(c[0], c[1], c[2])
		// Lightness is (max+min)/2.
		if l := (hi + lo) / 2; l < 0.3-1e-4 || l > 0.5+1e-4 {
			t.Fatalf("color %v has lightness %v", c, l)
		}
		if hi == lo {
			t.Fatalf("color %v is gray", c)
		}
	}
}

func TestRandomColorReversedRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c := RandomColor(rng, Range{120, 120}, Range{1, 1}, Range{0.5, 0.5})
	if !near(c[0], 0) || !near(c[1], 1) || !near(c[2], 0) {
		t.Errorf("pure green = %v", c)
	}
	for i := 0; i < 20; i++ {
		c = RandomColor(rng, Range{0, 0}, Range{0, 0}, Range{0.8, 0.6})
		if c[0] < 0.6-1e-4 || c[0] > 0.8+1e-4 {
			t.Fatalf("gray %v outside reversed lightness range", c)
		}
	}
}
