package fonts

import (
	"image/color"

	"github.com/fogleman/gg"
)

// FillText draws s centered on (x, y). Text wider than maxWidth is squeezed
// horizontally to fit; a non-positive maxWidth disables the limit.
func FillText(dc *gg.Context, s string, x, y, maxWidth float64) {
	w, _ := dc.MeasureString(s)
	if maxWidth > 0 && w > maxWidth {
		dc.Push()
		dc.ScaleAbout(maxWidth/w, 1, x, y)
		dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
		dc.Pop()
		return
	}
	dc.DrawStringAnchored(s, x, y, 0.5, 0.5)
}

// WithAlpha returns c with its alpha replaced by a in [0, 1].
func WithAlpha(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	n.A = uint8(a*255 + 0.5)
	return n
}
