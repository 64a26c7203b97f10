package fluid

const (
	// DefaultIterations is the pressure iteration floor. Fewer Jacobi
	// iterations leave visibly wrong pressure fields.
	DefaultIterations = 20

	// MaxDeltaTime caps the step between two updates, in seconds.
	MaxDeltaTime = 0.0333333
)

// Params are the tunable coefficients a host feeds into every frame.
type Params struct {
	Viscosity   float32 `toml:"viscosity"`
	Dissipation float32 `toml:"dissipation"`
	Curl        float32 `toml:"curl"`
	Pressure    float32 `toml:"pressure"`
	Iterations  int     `toml:"iterations"`
}

// DefaultParams returns the coefficients the reference hosts start with.
func DefaultParams() Params {
	return Params{
		Viscosity:   0.5,
		Dissipation: 2.0,
		Curl:        0.25,
		Pressure:    0.8,
		Iterations:  DefaultIterations,
	}
}

// Frame builds the Frame for time t, in seconds.
func (p Params) Frame(t float64, mode Mode, paused bool) Frame {
	return Frame{
		Paused:      paused,
		Time:        t,
		Mode:        mode,
		Viscosity:   p.Viscosity,
		Dissipation: p.Dissipation,
		Curl:        p.Curl,
		Pressure:    p.Pressure,
		Iterations:  p.Iterations,
	}
}

// SuggestedIterations returns a pressure iteration count that keeps the
// cost per frame roughly even across simulation resolutions.
func SuggestedIterations(sim Resolution) int {
	switch sim {
	case One:
		return 50
	case Two:
		return 40
	case Four:
		return 30
	default:
		return DefaultIterations
	}
}
