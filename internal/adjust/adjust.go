// Package adjust holds per-face image adjustments and the cover-fit zoom policy.
package adjust

import "math"

// Policy constants. Callers may override them via CoverZoomWithCap or by
// setting explicit adjustments.
const (
	// DefaultZoom is applied to faces with no stored adjustment.
	DefaultZoom = 1.2

	// MaxCoverZoom caps the cover-fit zoom so very elongated artwork is not
	// cropped down to a sliver. It is a policy choice, not a geometric bound.
	MaxCoverZoom = 2.0

	// MaxOffset bounds offsets in percent of the frame dimension.
	MaxOffset = 100.0
)

// Adjustment positions an image inside its frame: a zoom multiplier over the
// contain-fit size plus offsets in percent of the frame width/height.
type Adjustment struct {
	Zoom    float64 `json:"zoom"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Default returns the adjustment used when none has been stored.
func Default() Adjustment {
	return Adjustment{Zoom: DefaultZoom}
}

// Clamp returns a copy with zoom >= 0 and offsets within [-100, 100].
func (a Adjustment) Clamp() Adjustment {
	if a.Zoom < 0 || math.IsNaN(a.Zoom) {
		a.Zoom = 0
	}
	a.OffsetX = clampOffset(a.OffsetX)
	a.OffsetY = clampOffset(a.OffsetY)
	return a
}

func clampOffset(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-MaxOffset, math.Min(MaxOffset, v))
}

// CoverZoomUncapped returns max(aspect, 1/aspect), the zoom that makes a
// contain-fitted image cover a square frame. Degenerate sizes yield 1.
func CoverZoomUncapped(width, height int) float64 {
	if width <= 0 || height <= 0 {
		return 1
	}
	aspect := float64(width) / float64(height)
	if aspect > 1 {
		return aspect
	}
	return 1 / aspect
}

// CoverZoom returns the cover-fit zoom capped at MaxCoverZoom.
func CoverZoom(width, height int) float64 {
	return CoverZoomWithCap(width, height, MaxCoverZoom)
}

// CoverZoomWithCap returns the cover-fit zoom capped at maxZoom. A non-positive
// maxZoom disables the cap.
func CoverZoomWithCap(width, height int, maxZoom float64) float64 {
	z := CoverZoomUncapped(width, height)
	if maxZoom > 0 && z > maxZoom {
		return maxZoom
	}
	return z
}
