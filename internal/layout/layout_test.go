package layout

import (
	"errors"
	"testing"
)

func a4() PageSize {
	ps, err := LookupPageSize("a4")
	if err != nil {
		panic(err)
	}
	return ps
}

func coinParams() Params {
	return Params{PageSize: a4(), Type: Coin, Diameter: 30, Margin: 5, Spacing: 5}
}

func TestCalculate_CoinA4(t *testing.T) {
	g, err := Calculate(coinParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// usable 200mm: floor(205/35) = 5; usable 287mm: floor(292/35) = 8
	if g.ItemsPerRow != 5 {
		t.Errorf("ItemsPerRow: expected 5, got %d", g.ItemsPerRow)
	}
	if g.RowsPerPage != 8 {
		t.Errorf("RowsPerPage: expected 8, got %d", g.RowsPerPage)
	}
	if g.ItemsPerPage != 40 {
		t.Errorf("ItemsPerPage: expected 40, got %d", g.ItemsPerPage)
	}
	if got := g.PagesNeeded(15); got != 1 {
		t.Errorf("PagesNeeded(15): expected 1, got %d", got)
	}
}

func TestCalculate_CoinA4_TwoPages(t *testing.T) {
	g, err := Calculate(coinParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := g.Summarize(25)
	if s.TotalSlots != 50 {
		t.Errorf("TotalSlots: expected 50, got %d", s.TotalSlots)
	}
	if s.PagesNeeded != 2 {
		t.Errorf("PagesNeeded: expected 2, got %d", s.PagesNeeded)
	}
}

func TestCalculate_CardA4(t *testing.T) {
	p := Params{PageSize: a4(), Type: Card, CardWidth: 54, CardHeight: 85, Margin: 5, Spacing: 5}
	g, err := Calculate(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ItemsPerRow != 3 || g.RowsPerPage != 3 || g.ItemsPerPage != 9 {
		t.Errorf("expected 3x3=9, got %dx%d=%d", g.ItemsPerRow, g.RowsPerPage, g.ItemsPerPage)
	}
	if g.ItemWidthPx != 638 || g.ItemHeightPx != 1004 {
		t.Errorf("expected item 638x1004px, got %dx%d", g.ItemWidthPx, g.ItemHeightPx)
	}
}

func TestCalculate_FootprintTooLarge(t *testing.T) {
	p := coinParams()
	p.Diameter = 250

	_, err := Calculate(p)
	if err == nil {
		t.Fatal("expected configuration error for 250mm coin on A4")
	}
	if !errors.Is(err, ErrLayoutImpossible) {
		t.Errorf("expected ErrLayoutImpossible, got %v", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cfgErr.Reason == "" {
		t.Error("expected a diagnosis in the error reason")
	}
}

func TestCalculate_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		modify func(p *Params)
	}{
		{"negative margin", func(p *Params) { p.Margin = -1 }},
		{"negative spacing", func(p *Params) { p.Spacing = -2 }},
		{"zero diameter", func(p *Params) { p.Diameter = 0 }},
		{"unknown type", func(p *Params) { p.Type = "sticker" }},
		{"missing page size", func(p *Params) { p.PageSize = PageSize{} }},
		{"card without height", func(p *Params) { p.Type = Card; p.CardWidth = 54 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := coinParams()
			tt.modify(&p)
			_, err := Calculate(p)
			if !errors.Is(err, ErrInvalidParams) {
				t.Errorf("expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	for _, key := range []string{"a4", "letter", "a3", "legal"} {
		ps, err := LookupPageSize(key)
		if err != nil {
			t.Fatalf("LookupPageSize(%q): %v", key, err)
		}
		p := Params{PageSize: ps, Type: Card, CardWidth: 54, CardHeight: 85, Margin: 7, Spacing: 3}
		g1, err1 := Calculate(p)
		g2, err2 := Calculate(p)
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: unexpected errors %v / %v", key, err1, err2)
		}
		if g1 != g2 {
			t.Errorf("%s: grid differs between calls: %+v vs %+v", key, g1, g2)
		}
	}
}

func TestPagesNeeded_Zero(t *testing.T) {
	g, err := Calculate(coinParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.PagesNeeded(0); got != 0 {
		t.Errorf("PagesNeeded(0): expected 0, got %d", got)
	}
	if got := g.PagesNeeded(20); got != 1 {
		t.Errorf("PagesNeeded(20): expected exactly one full page, got %d", got)
	}
	if got := g.PagesNeeded(21); got != 2 {
		t.Errorf("PagesNeeded(21): expected 2, got %d", got)
	}
}

func TestSlotOrigin(t *testing.T) {
	g, err := Calculate(coinParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// margin 59px, footprint 354px, spacing 59px
	tests := []struct {
		index int
		x, y  int
	}{
		{0, 59, 59},
		{1, 59 + 413, 59},
		{4, 59 + 4*413, 59},
		{5, 59, 59 + 413},
		{39, 59 + 4*413, 59 + 7*413},
	}
	for _, tt := range tests {
		x, y := g.SlotOrigin(tt.index)
		if x != tt.x || y != tt.y {
			t.Errorf("SlotOrigin(%d) = (%d,%d), want (%d,%d)", tt.index, x, y, tt.x, tt.y)
		}
	}

	// Last slot must stay on the page.
	x, y := g.SlotOrigin(g.ItemsPerPage - 1)
	if x+g.ItemWidthPx > g.PageWidthPx || y+g.ItemHeightPx > g.PageHeightPx {
		t.Errorf("last slot at (%d,%d) overflows page %dx%d", x, y, g.PageWidthPx, g.PageHeightPx)
	}
}

func TestLookupPageSize(t *testing.T) {
	ps, err := LookupPageSize(" Letter ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ps.WidthMM != 215.9 || ps.HeightMM != 279.4 {
		t.Errorf("letter: got %.1fx%.1f", ps.WidthMM, ps.HeightMM)
	}

	_, err = LookupPageSize("b5")
	if !errors.Is(err, ErrUnknownPageSize) {
		t.Errorf("expected ErrUnknownPageSize, got %v", err)
	}
}

func TestParseTemplateType(t *testing.T) {
	if tt, err := ParseTemplateType("card"); err != nil || tt != Card {
		t.Errorf("ParseTemplateType(card) = %q, %v", tt, err)
	}
	if _, err := ParseTemplateType("poster"); err == nil {
		t.Error("expected error for unknown template type")
	}
}
