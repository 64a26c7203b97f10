// Package snapshot turns read-back fields into image files.
package snapshot

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/fluid"
)

// Image converts a field into an image with the top row first.
//
// Dye and screen fields are shown as they are. Signed fields (velocity and
// pressure) are remapped from [-1, 1] to [0, 1], the way the draw pass
// shows them. Values outside the displayable range are clamped.
func Image(f *fluid.Field, signed bool) *image.NRGBA {
	pm := gg.NewPixmap(f.Width, f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := f.At(x, y)
			c := gg.RGBA{R: float64(v[0]), G: float64(v[1]), B: float64(v[2]), A: 1}
			if signed {
				c.R, c.G, c.B = c.R*0.5+0.5, c.G*0.5+0.5, c.B*0.5+0.5
			}
			pm.SetPixel(x, y, c)
		}
	}
	// Fields are stored bottom row first.
	return imaging.FlipV(pm)
}

// Signed reports whether fields of the given mode hold signed values.
func Signed(mode fluid.Mode) bool {
	return mode == fluid.Velocity || mode == fluid.Pressure
}

// Scale resamples img to width x height with Catmull-Rom filtering. The
// image is returned unchanged when it already has that size.
func Scale(img *image.NRGBA, width, height int) *image.NRGBA {
	if b := img.Bounds(); b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// Save writes img to path, creating missing directories. The format
// follows the extension (png, jpg, gif, tif, bmp).
func Save(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("snapshot: save %s: %w", path, err)
	}
	return nil
}

// FramePath numbers path for frame n: "out/fluid.png" becomes
// "out/fluid_0042.png".
func FramePath(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(path, ext), n, ext)
}
