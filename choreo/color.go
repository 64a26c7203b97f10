package choreo

import (
	"math/rand"

	"github.com/gogpu/gg"
)

// Range is a closed interval. A reversed range is read as if its ends
// were swapped.
type Range struct {
	Min, Max float64
}

func (r Range) sample(rng *rand.Rand) float64 {
	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// Default random color ranges: any hue, fairly saturated, darker than
// mid-gray so the dye does not saturate to white.
var (
	DefaultHue        = Range{0, 360}
	DefaultSaturation = Range{0.5, 0.9}
	DefaultLightness  = Range{0.3, 0.5}
)

// RandomColor picks an RGB color uniformly in HSL space. Hue is in
// degrees, saturation and lightness in [0, 1].
func RandomColor(rng *rand.Rand, hue, saturation, lightness Range) [3]float32 {
	c := gg.HSL(hue.sample(rng), saturation.sample(rng), lightness.sample(rng))
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}
}
