// Package fonts provides the Go font family as sized faces for raster drawing.
package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	parseOnce sync.Once
	boldFont  *opentype.Font
	regFont   *opentype.Font
	parseErr  error
)

func parse() {
	parseOnce.Do(func() {
		boldFont, parseErr = opentype.Parse(gobold.TTF)
		if parseErr != nil {
			parseErr = fmt.Errorf("parse bold font: %w", parseErr)
			return
		}
		regFont, parseErr = opentype.Parse(goregular.TTF)
		if parseErr != nil {
			parseErr = fmt.Errorf("parse regular font: %w", parseErr)
		}
	})
}

// Bold returns a bold face whose em size is px pixels.
// Faces are not safe for concurrent use; create one per drawing context.
func Bold(px float64) (font.Face, error) {
	parse()
	if parseErr != nil {
		return nil, parseErr
	}
	return newFace(boldFont, px)
}

// Regular returns a regular face whose em size is px pixels.
func Regular(px float64) (font.Face, error) {
	parse()
	if parseErr != nil {
		return nil, parseErr
	}
	return newFace(regFont, px)
}

func newFace(f *opentype.Font, px float64) (font.Face, error) {
	if px < 1 {
		px = 1
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}
