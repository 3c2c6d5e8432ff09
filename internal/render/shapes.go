package render

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/kozaktomas/amiibo-sheets/internal/adjust"
	"github.com/kozaktomas/amiibo-sheets/internal/colorsample"
	"github.com/kozaktomas/amiibo-sheets/internal/fonts"
	"golang.org/x/image/draw"
)

var (
	outlineColor = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	white        = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	shadowColor  = color.NRGBA{A: 128}
)

const (
	outlineWidth      = 2.0
	bannerBorderWidth = 4.0
	bannerMargin      = 4.0
	clipInset         = 2.0
)

// frame is the pixel rectangle of one slot.
type frame struct {
	X, Y, W, H float64
}

func (f frame) centerX() float64 { return f.X + f.W/2 }
func (f frame) centerY() float64 { return f.Y + f.H/2 }

// placement computes where an image is drawn inside a frame: fitted by width
// when wide and by height otherwise, multiplied by zoom, centered, then moved
// by the offsets in percent of the frame size.
func placement(f frame, imgW, imgH int, a adjust.Adjustment) (x, y, w, h float64) {
	aspect := float64(imgW) / float64(imgH)
	if aspect > 1 {
		w = f.W * a.Zoom
		h = w / aspect
	} else {
		h = f.H * a.Zoom
		w = h * aspect
	}
	x = f.centerX() - w/2 + a.OffsetX/100*f.W
	y = f.centerY() - h/2 + a.OffsetY/100*f.H
	return x, y, w, h
}

// drawPlaced draws img at the placement computed for the frame, honoring the
// current clip. Large sources are first downscaled with Catmull-Rom so the
// final bilinear transform does not alias.
func drawPlaced(dc *gg.Context, img image.Image, f frame, a adjust.Adjustment) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 || a.Zoom <= 0 {
		return
	}
	x, y, w, h := placement(f, b.Dx(), b.Dy(), a)
	if w < 1 || h < 1 {
		return
	}

	src := img
	tw, th := int(math.Ceil(w)), int(math.Ceil(h))
	if b.Dx() > 2*tw || b.Dy() > 2*th {
		scaled := image.NewRGBA(image.Rect(0, 0, tw, th))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)
		src = scaled
	}

	sb := src.Bounds()
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(w/float64(sb.Dx()), h/float64(sb.Dy()))
	dc.DrawImage(src, -sb.Min.X, -sb.Min.Y)
	dc.Pop()
}

// shape draws the path of a coin or card frame inset by n pixels.
type shape interface {
	path(dc *gg.Context, f frame, inset float64)
}

type circleShape struct{}

func (circleShape) path(dc *gg.Context, f frame, inset float64) {
	dc.DrawCircle(f.centerX(), f.centerY(), f.W/2-inset)
}

type roundedRect struct {
	radius float64
}

func (r roundedRect) path(dc *gg.Context, f frame, inset float64) {
	dc.DrawRoundedRectangle(f.X+inset, f.Y+inset, f.W-2*inset, f.H-2*inset, r.radius)
}

func drawOutline(dc *gg.Context, s shape, f frame) {
	dc.SetColor(outlineColor)
	dc.SetLineWidth(outlineWidth)
	s.path(dc, f, outlineWidth/2)
	dc.Stroke()
}

// banner describes the pill drawn over the front face.
type banner struct {
	X, Y, W, H float64 // pill rectangle
	FontScale  float64 // font size as a fraction of H
	TextWidth  float64 // text max width as a fraction of W
	MaxChars   int
}

func coinBanner(f frame) banner {
	r := f.W / 2
	h := r * 0.28
	w := r * 1.5
	cy := f.centerY() + r*0.55
	return banner{X: f.centerX() - w/2, Y: cy - h/2, W: w, H: h, FontScale: 0.55, TextWidth: 0.85, MaxChars: 12}
}

func cardBanner(f frame) banner {
	h := f.H * 0.12
	w := f.W * 0.85
	return banner{X: f.centerX() - w/2, Y: f.Y + f.H - h*1.3, W: w, H: h, FontScale: 0.6, TextWidth: 0.9, MaxChars: 18}
}

// drawBanner fills the pill with fill, borders it white and writes the name
// with a soft shadow. The pill is clipped to the frame shape inset by
// bannerMargin so it never crosses the edge.
// The text stays inside the pill, so it is drawn after the clip is dropped.
func drawBanner(dc *gg.Context, s shape, f frame, b banner, name string, fill color.Color) error {
	dc.Push()
	s.path(dc, f, bannerMargin)
	dc.Clip()
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, b.H/2)
	dc.SetColor(fill)
	dc.FillPreserve()
	dc.SetColor(white)
	dc.SetLineWidth(bannerBorderWidth)
	dc.Stroke()
	dc.Pop()

	face, err := fonts.Bold(math.Round(b.H * b.FontScale))
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	text := truncateName(name, b.MaxChars)
	cx, cy := b.X+b.W/2, b.Y+b.H/2
	maxW := b.W * b.TextWidth

	dc.SetColor(shadowColor)
	fonts.FillText(dc, text, cx+1, cy+1, maxW)
	dc.SetColor(white)
	fonts.FillText(dc, text, cx, cy, maxW)
	return nil
}

// bannerFill picks the pill color from the bottom-center of the artwork.
func bannerFill(img image.Image) color.Color {
	return colorsample.BannerColor(img)
}
