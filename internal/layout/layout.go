// Package layout computes the row/column grid that print sheets are laid out on.
package layout

import (
	"errors"
	"fmt"
	"math"
)

// ErrLayoutImpossible is wrapped by ConfigError when no item fits on a page.
var ErrLayoutImpossible = errors.New("layout impossible")

// ErrInvalidParams is wrapped by ConfigError when dimensions are out of range.
var ErrInvalidParams = errors.New("invalid layout parameters")

// ErrUnknownTemplateType is returned for template types other than coin and card.
var ErrUnknownTemplateType = errors.New("unknown template type")

// ConfigError describes a configuration that cannot be rendered.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// TemplateType selects the printed shape.
type TemplateType string

const (
	Coin TemplateType = "coin"
	Card TemplateType = "card"
)

// ParseTemplateType validates a template type string.
func ParseTemplateType(s string) (TemplateType, error) {
	switch TemplateType(s) {
	case Coin, Card:
		return TemplateType(s), nil
	default:
		return "", fmt.Errorf("%w %q (expected coin or card)", ErrUnknownTemplateType, s)
	}
}

// Params holds the physical layout inputs, all in millimeters.
type Params struct {
	PageSize   PageSize
	Type       TemplateType
	Diameter   float64 // coin
	CardWidth  float64 // card
	CardHeight float64 // card
	Margin     float64
	Spacing    float64
}

// Footprint returns the width and height of one printed item.
func (p Params) Footprint() (float64, float64) {
	if p.Type == Card {
		return p.CardWidth, p.CardHeight
	}
	return p.Diameter, p.Diameter
}

// Validate checks that dimensions are non-negative and the footprint is non-empty.
func (p Params) Validate() error {
	fw, fh := p.Footprint()
	switch {
	case p.Type != Coin && p.Type != Card:
		return &ConfigError{Reason: fmt.Sprintf("unknown template type %q", p.Type), Err: ErrInvalidParams}
	case p.PageSize.WidthMM <= 0 || p.PageSize.HeightMM <= 0:
		return &ConfigError{Reason: "page size is not set", Err: ErrInvalidParams}
	case p.Margin < 0 || p.Spacing < 0:
		return &ConfigError{Reason: fmt.Sprintf("margin (%.1fmm) and spacing (%.1fmm) must not be negative", p.Margin, p.Spacing), Err: ErrInvalidParams}
	case fw <= 0 || fh <= 0:
		return &ConfigError{Reason: fmt.Sprintf("item size %.1fx%.1fmm must be positive", fw, fh), Err: ErrInvalidParams}
	}
	return nil
}

// Grid is the computed page grid plus the pixel geometry the renderer draws on.
type Grid struct {
	Params       Params
	ItemsPerRow  int
	RowsPerPage  int
	ItemsPerPage int

	PageWidthPx  int
	PageHeightPx int
	MarginPx     int
	SpacingPx    int
	ItemWidthPx  int
	ItemHeightPx int
}

// Calculate computes the grid for the given parameters.
// A footprint that does not fit the usable area is reported as a ConfigError
// wrapping ErrLayoutImpossible.
func Calculate(p Params) (Grid, error) {
	if err := p.Validate(); err != nil {
		return Grid{}, err
	}

	fw, fh := p.Footprint()
	usableW := p.PageSize.WidthMM - 2*p.Margin
	usableH := p.PageSize.HeightMM - 2*p.Margin

	perRow := int(math.Floor((usableW + p.Spacing) / (fw + p.Spacing)))
	rows := int(math.Floor((usableH + p.Spacing) / (fh + p.Spacing)))

	if perRow <= 0 || rows <= 0 {
		return Grid{}, &ConfigError{
			Reason: fmt.Sprintf("item %.1fx%.1fmm does not fit usable page area %.1fx%.1fmm (%s, margin %.1fmm)",
				fw, fh, usableW, usableH, p.PageSize.Key, p.Margin),
			Err: ErrLayoutImpossible,
		}
	}

	return Grid{
		Params:       p,
		ItemsPerRow:  perRow,
		RowsPerPage:  rows,
		ItemsPerPage: perRow * rows,
		PageWidthPx:  p.PageSize.WidthPx(),
		PageHeightPx: p.PageSize.HeightPx(),
		MarginPx:     MMToPixels(p.Margin),
		SpacingPx:    MMToPixels(p.Spacing),
		ItemWidthPx:  MMToPixels(fw),
		ItemHeightPx: MMToPixels(fh),
	}, nil
}

// TotalSlots returns the number of faces printed for itemCount items (front + back).
func TotalSlots(itemCount int) int {
	if itemCount < 0 {
		return 0
	}
	return 2 * itemCount
}

// PagesNeeded returns ceil(2*itemCount / ItemsPerPage).
func (g Grid) PagesNeeded(itemCount int) int {
	slots := TotalSlots(itemCount)
	if slots == 0 || g.ItemsPerPage <= 0 {
		return 0
	}
	return (slots + g.ItemsPerPage - 1) / g.ItemsPerPage
}

// SlotOrigin returns the top-left pixel position of the index-th slot on a page.
// Slots fill left to right, then top to bottom.
func (g Grid) SlotOrigin(index int) (int, int) {
	col := index % g.ItemsPerRow
	row := index / g.ItemsPerRow
	x := g.MarginPx + col*(g.ItemWidthPx+g.SpacingPx)
	y := g.MarginPx + row*(g.ItemHeightPx+g.SpacingPx)
	return x, y
}

// Summary is the layout overview shown before rendering.
type Summary struct {
	ItemsPerRow  int `json:"items_per_row"`
	RowsPerPage  int `json:"rows_per_page"`
	ItemsPerPage int `json:"items_per_page"`
	TotalSlots   int `json:"total_slots"`
	PagesNeeded  int `json:"pages_needed"`
}

// Summarize returns the layout summary for itemCount items.
func (g Grid) Summarize(itemCount int) Summary {
	return Summary{
		ItemsPerRow:  g.ItemsPerRow,
		RowsPerPage:  g.RowsPerPage,
		ItemsPerPage: g.ItemsPerPage,
		TotalSlots:   TotalSlots(itemCount),
		PagesNeeded:  g.PagesNeeded(itemCount),
	}
}
