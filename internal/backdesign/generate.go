package backdesign

import (
	"image"
	"image/color"
	"log"

	"github.com/fogleman/gg"
	"github.com/kozaktomas/amiibo-sheets/internal/fonts"
)

// Proportions of the generated design, as fractions of the edge length.
const (
	ringRadius    = 0.42
	ringInset     = 0.08
	ringWidth     = 0.02
	titleSize     = 0.12
	titleMinSize  = 0.06
	titleMaxWidth = 0.75
	subtitleSize  = 0.06
	subtitleY     = 0.58
	nfcSize       = 0.05
	nfcY          = 0.85
)

var fallbackGray = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}

// Generate draws a design as a size x size image: the base shape (circle or
// square), a soft radial shading, a decorative ring, the centered title with
// optional subtitle, and a faint "NFC" caption. Output depends only on the
// arguments.
func Generate(d Design, size int, circle bool) image.Image {
	if size < 1 {
		size = 1
	}
	s := float64(size)
	dc := gg.NewContext(size, size)

	base, err := ParseHexColor(d.BaseColor)
	if err != nil {
		base = fallbackGray
	}
	ink, err := ParseHexColor(d.TextColor)
	if err != nil {
		ink = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}

	shape := func() {
		if circle {
			dc.DrawCircle(s/2, s/2, s/2)
		} else {
			dc.DrawRectangle(0, 0, s, s)
		}
	}

	dc.SetColor(base)
	shape()
	dc.Fill()

	shade := gg.NewRadialGradient(s*0.3, s*0.3, 0, s/2, s/2, s*0.7)
	shade.AddColorStop(0, color.NRGBA{R: 255, G: 255, B: 255, A: 38})
	shade.AddColorStop(1, color.NRGBA{A: 38})
	dc.SetFillStyle(shade)
	shape()
	dc.Fill()

	dc.SetColor(fonts.WithAlpha(ink, 0.3))
	dc.SetLineWidth(s * ringWidth)
	if circle {
		dc.DrawCircle(s/2, s/2, s*ringRadius)
	} else {
		p := s * ringInset
		dc.DrawRectangle(p, p, s-2*p, s-2*p)
	}
	dc.Stroke()

	maxWidth := s * titleMaxWidth
	titleY := s * 0.5
	if d.Subtitle != "" {
		titleY = s * 0.45
	}

	dc.SetColor(ink)
	if setTitleFace(dc, d.Name, s, maxWidth) {
		fonts.FillText(dc, d.Name, s/2, titleY, maxWidth)
	}

	if d.Subtitle != "" {
		if face, err := fonts.Regular(s * subtitleSize); err == nil {
			dc.SetFontFace(face)
			dc.SetColor(fonts.WithAlpha(ink, 0.8))
			fonts.FillText(dc, d.Subtitle, s/2, s*subtitleY, maxWidth)
		}
	}

	if face, err := fonts.Regular(s * nfcSize); err == nil {
		dc.SetFontFace(face)
		dc.SetColor(fonts.WithAlpha(ink, 0.5))
		fonts.FillText(dc, "NFC", s/2, s*nfcY, 0)
	}

	return dc.Image()
}

// setTitleFace picks the largest bold size, stepping down one pixel at a time
// from 12% of the edge, at which the title fits maxWidth. It stops at 6%.
func setTitleFace(dc *gg.Context, title string, s, maxWidth float64) bool {
	size := s * titleSize
	for {
		face, err := fonts.Bold(size)
		if err != nil {
			log.Printf("WARNING: back design title font: %v", err)
			return false
		}
		dc.SetFontFace(face)
		w, _ := dc.MeasureString(title)
		if w <= maxWidth || size <= s*titleMinSize {
			return true
		}
		size--
	}
}
