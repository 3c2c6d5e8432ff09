// Package colorsample estimates representative colors of item artwork.
package colorsample

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Fallback is returned when no pixel qualifies or the image is unavailable.
// Both sampling modes share it (#6b7280, neutral gray).
var Fallback = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}

const (
	// SampleSize is the edge of the thumbnail the dominant color is read from.
	SampleSize = 50

	// SampleStride reads every n-th pixel of the thumbnail.
	SampleStride = 4

	// QuantStep collapses near-identical channel values into one bucket.
	QuantStep = 32

	// MinAlpha skips mostly transparent pixels.
	MinAlpha = 128

	// NearWhite skips pixels whose channels all exceed this value.
	NearWhite = 240
)

// Banner sampling region as fractions of the image size.
const (
	BannerRegionX = 0.4
	BannerRegionY = 0.9
	BannerRegionW = 0.2
	BannerRegionH = 0.1
)

// Dominant returns the most frequent quantized color of img, ignoring
// transparent and near-white pixels. Ties go to the color seen first.
func Dominant(img image.Image) color.RGBA {
	if img == nil || img.Bounds().Empty() {
		return Fallback
	}

	thumb := imaging.Resize(img, SampleSize, SampleSize, imaging.Box)

	counts := make(map[color.RGBA]int)
	var order []color.RGBA

	pix := thumb.Pix
	for i := 0; i+3 < len(pix); i += 4 * SampleStride {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		if a < MinAlpha || (r > NearWhite && g > NearWhite && b > NearWhite) {
			continue
		}
		c := color.RGBA{R: quantize(r), G: quantize(g), B: quantize(b), A: 0xff}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}

	best, bestCount := Fallback, 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}

func quantize(v uint8) uint8 {
	q := math.Round(float64(v)/QuantStep) * QuantStep
	if q > 255 {
		q = 255
	}
	return uint8(q)
}

// BannerColor averages the bottom-center region of img (40-60% width,
// 90-100% height) over pixels that are not mostly transparent.
func BannerColor(img image.Image) color.RGBA {
	if img == nil {
		return Fallback
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	x0 := b.Min.X + int(math.Floor(float64(w)*BannerRegionX))
	y0 := b.Min.Y + int(math.Floor(float64(h)*BannerRegionY))
	sw := int(math.Floor(float64(w) * BannerRegionW))
	sh := int(math.Floor(float64(h) * BannerRegionH))
	if sw <= 0 || sh <= 0 {
		return Fallback
	}
	return RegionAverage(img, image.Rect(x0, y0, x0+sw, y0+sh))
}

// RegionAverage averages the non-transparent pixels of img inside rect.
func RegionAverage(img image.Image, rect image.Rectangle) color.RGBA {
	if img == nil {
		return Fallback
	}
	region := imaging.Crop(img, rect)

	var r, g, b, n int
	pix := region.Pix
	for i := 0; i+3 < len(pix); i += 4 {
		if pix[i+3] <= MinAlpha {
			continue
		}
		r += int(pix[i])
		g += int(pix[i+1])
		b += int(pix[i+2])
		n++
	}
	if n == 0 {
		return Fallback
	}
	return color.RGBA{
		R: uint8(math.Round(float64(r) / float64(n))),
		G: uint8(math.Round(float64(g) / float64(n))),
		B: uint8(math.Round(float64(b) / float64(n))),
		A: 0xff,
	}
}

// CSS formats c as rgb(r,g,b).
func CSS(c color.RGBA) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
