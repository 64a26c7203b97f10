package choreo

// Pointer tracks one mouse or touch pointer.
//
// Velocity is the movement since the previous update scaled by the
// strength given to Update. A pointer counts as moved until ResetMove,
// which hosts call once per frame after splatting.
type Pointer struct {
	position [2]float32
	velocity [2]float32
	down     bool
	moved    bool
}

// NewPointer returns a released pointer at (x, y).
func NewPointer(x, y float32) *Pointer {
	return &Pointer{position: [2]float32{x, y}}
}

// Down presses the pointer at (x, y) without producing velocity.
func (p *Pointer) Down(x, y float32) {
	p.down = true
	p.moved = false
	p.position = [2]float32{x, y}
	p.velocity = [2]float32{}
}

// Update moves a pressed pointer to (x, y). Moves of a released pointer
// are ignored.
func (p *Pointer) Update(x, y, strength float32) {
	if !p.down {
		return
	}
	p.velocity = [2]float32{(x - p.position[0]) * strength, (y - p.position[1]) * strength}
	p.position = [2]float32{x, y}
	p.moved = p.velocity != [2]float32{}
}

// Up releases the pointer.
func (p *Pointer) Up() {
	p.down = false
}

// ResetMove clears the moved flag.
func (p *Pointer) ResetMove() {
	p.moved = false
}

// Position returns the last known position as a two-element slice, the
// shape Splat takes.
func (p *Pointer) Position() []float32 {
	return []float32{p.position[0], p.position[1]}
}

// Velocity returns the velocity of the last move.
func (p *Pointer) Velocity() []float32 {
	return []float32{p.velocity[0], p.velocity[1]}
}

// Moved reports whether the pointer moved since the last ResetMove.
func (p *Pointer) Moved() bool { return p.moved }

// IsDown reports whether the pointer is pressed.
func (p *Pointer) IsDown() bool { return p.down }
