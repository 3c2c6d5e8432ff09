package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPageSize is returned when a page size key does not resolve.
var ErrUnknownPageSize = errors.New("unknown page size")

// PageSize is a physical paper size in portrait orientation.
type PageSize struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	WidthMM  float64 `json:"width"`
	HeightMM float64 `json:"height"`
}

// DefaultPageSizeKey is used when a template does not name a page size.
const DefaultPageSizeKey = "a4"

var pageSizes = []PageSize{
	{Key: "a4", Name: "A4 (210 × 297 mm)", WidthMM: 210, HeightMM: 297},
	{Key: "letter", Name: "Letter (8.5 × 11 in)", WidthMM: 215.9, HeightMM: 279.4},
	{Key: "a3", Name: "A3 (297 × 420 mm)", WidthMM: 297, HeightMM: 420},
	{Key: "legal", Name: "Legal (8.5 × 14 in)", WidthMM: 215.9, HeightMM: 355.6},
}

// PageSizes returns all known page sizes in display order.
func PageSizes() []PageSize {
	out := make([]PageSize, len(pageSizes))
	copy(out, pageSizes)
	return out
}

// LookupPageSize resolves a page size key (case-insensitive).
func LookupPageSize(key string) (PageSize, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	for _, ps := range pageSizes {
		if ps.Key == k {
			return ps, nil
		}
	}
	return PageSize{}, fmt.Errorf("%w: %q", ErrUnknownPageSize, key)
}

// WidthPx returns the page width in pixels at print resolution.
func (p PageSize) WidthPx() int {
	return MMToPixels(p.WidthMM)
}

// HeightPx returns the page height in pixels at print resolution.
func (p PageSize) HeightPx() int {
	return MMToPixels(p.HeightMM)
}

// Landscape reports whether the page is wider than it is tall.
func (p PageSize) Landscape() bool {
	return p.WidthMM > p.HeightMM
}
