package surface

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// BlendOver blends a layer pixel over a base terminal color, honouring the
// pixel's alpha and the layer's configured opacity.
func BlendOver(base tcell.Color, pixel color.RGBA, opacity float32) tcell.Color {
	t := float64(pixel.A) / 255.0 * float64(opacity)
	if t <= 0 {
		return base
	}
	if t > 1 {
		t = 1
	}

	br, bg, bb := base.RGB()
	from := colorful.Color{R: float64(br) / 255.0, G: float64(bg) / 255.0, B: float64(bb) / 255.0}
	to := colorful.Color{R: float64(pixel.R) / 255.0, G: float64(pixel.G) / 255.0, B: float64(pixel.B) / 255.0}

	mixed := from.BlendRgb(to, t).Clamped()
	return tcell.NewRGBColor(int32(mixed.R*255), int32(mixed.G*255), int32(mixed.B*255))
}
