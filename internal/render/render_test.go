package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/kozaktomas/amiibo-sheets/internal/adjust"
	"github.com/kozaktomas/amiibo-sheets/internal/backdesign"
	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
	"github.com/kozaktomas/amiibo-sheets/internal/colorsample"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
)

type images map[string]image.Image

func (m images) Get(ref string) image.Image { return m[ref] }

type fakeBacks map[string]backdesign.Source

func (f fakeBacks) Resolve(series string) backdesign.Source { return f[series] }

// smallGrid is an 80x80mm page holding 2x2 coins of 30mm.
func smallGrid(t *testing.T, tt layout.TemplateType) layout.Grid {
	t.Helper()
	p := layout.Params{
		PageSize: layout.PageSize{Key: "test", WidthMM: 80, HeightMM: 80},
		Type:     tt, Diameter: 30, CardWidth: 30, CardHeight: 30, Margin: 5, Spacing: 5,
	}
	g, err := layout.Calculate(p)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if g.ItemsPerPage != 4 {
		t.Fatalf("expected 4 slots per page, got %d", g.ItemsPerPage)
	}
	return g
}

func makeItems(n int) []catalog.ListItem {
	items := make([]catalog.ListItem, n)
	for i := range items {
		items[i] = catalog.ListItem{
			Head: "0000000" + string(rune('0'+i)), Tail: "00000002",
			Name: "Item " + string(rune('A'+i)), Image: "img-" + string(rune('a'+i)),
			AmiiboSeries: "Series",
		}
	}
	return items
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func pixel(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestBuildSlots_Order(t *testing.T) {
	items := makeItems(3)
	slots := BuildSlots(items)
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	for i, s := range slots {
		if s.Item.ID() != items[i/2].ID() {
			t.Errorf("slot %d belongs to %v, want %v", i, s.Item.ID(), items[i/2].ID())
		}
		if s.Front != (i%2 == 0) {
			t.Errorf("slot %d front=%v", i, s.Front)
		}
	}
}

func TestPaginate(t *testing.T) {
	slots := BuildSlots(makeItems(25))
	pages := Paginate(slots, 40)
	if len(pages) != 2 || len(pages[0]) != 40 || len(pages[1]) != 10 {
		t.Fatalf("unexpected page sizes: %d pages", len(pages))
	}
	if Paginate(slots, 0) != nil {
		t.Error("expected nil for non-positive page size")
	}
}

func TestRender_PaginationCompleteness(t *testing.T) {
	g := smallGrid(t, layout.Coin)
	items := makeItems(5)

	pages, err := Render(context.Background(), Job{Items: items, Grid: g, Adjustments: adjust.NewStore().Snapshot()}, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(pages) != g.PagesNeeded(len(items)) || len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}

	var all []Slot
	for i, p := range pages {
		if p.Index != i {
			t.Errorf("page %d has index %d", i, p.Index)
		}
		if b := p.Image.Bounds(); b.Dx() != g.PageWidthPx || b.Dy() != g.PageHeightPx {
			t.Errorf("page %d has size %v", i, b)
		}
		all = append(all, p.Slots...)
	}
	want := BuildSlots(items)
	if len(all) != len(want) {
		t.Fatalf("rendered %d slots, want %d", len(all), len(want))
	}
	for i := range want {
		if all[i] != want[i] {
			t.Errorf("slot %d out of order", i)
		}
	}
}

func TestRender_MissingImagesDegrade(t *testing.T) {
	g := smallGrid(t, layout.Coin)
	pages, err := Render(context.Background(), Job{Items: makeItems(1), Grid: g}, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	p := pages[0]
	if len(p.Warnings) != 2 {
		t.Fatalf("expected 2 warnings (front and back), got %+v", p.Warnings)
	}

	// Outline still drawn at the top of the first coin.
	x, y := g.SlotOrigin(0)
	top := pixel(p.Image, x+g.ItemWidthPx/2, y+1)
	if !near(top.R, 0xcc) || !near(top.G, 0xcc) || !near(top.B, 0xcc) {
		t.Errorf("expected outline color at top of coin, got %v", top)
	}
	// Interior stays white.
	center := pixel(p.Image, x+g.ItemWidthPx/2, y+g.ItemHeightPx/3)
	if center != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("expected white interior, got %v", center)
	}

	// The front keeps its name banner, filled with the fallback color.
	d := float64(g.ItemWidthPx)
	b := coinBanner(frame{X: float64(x), Y: float64(y), W: d, H: d})
	px, py := int(b.X+b.H*0.5), int(b.Y+b.H/2)
	fb := colorsample.Fallback
	if c := pixel(p.Image, px, py); !near(c.R, fb.R) || !near(c.G, fb.G) || !near(c.B, fb.B) {
		t.Errorf("expected fallback banner %v at (%d,%d), got %v", fb, px, py, c)
	}

	// The back slot has no banner at the same spot.
	bx, by := g.SlotOrigin(1)
	if c := pixel(p.Image, px-x+bx, py-y+by); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("expected no banner on the back slot, got %v", c)
	}
}

func TestRender_FrontBackAndBanner(t *testing.T) {
	g := smallGrid(t, layout.Coin)
	items := makeItems(1)

	front := solid(100, 100, color.NRGBA{R: 255, A: 255})
	draw.Draw(front, image.Rect(40, 90, 60, 100), &image.Uniform{C: color.NRGBA{B: 255, A: 255}}, image.Point{}, draw.Src)

	job := Job{
		Items:       items,
		Grid:        g,
		Adjustments: adjust.NewStore().Snapshot(),
		Images:      images{items[0].Image: front},
		Backs: fakeBacks{"Series": {
			Kind: backdesign.SourceGenerated, DesignID: "test", Image: solid(50, 50, color.NRGBA{G: 255, A: 255}),
		}},
	}
	pages, err := Render(context.Background(), job, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	p := pages[0]
	if len(p.Warnings) != 0 {
		t.Errorf("unexpected warnings %+v", p.Warnings)
	}

	fx, fy := g.SlotOrigin(0)
	r := float64(g.ItemWidthPx) / 2
	cx, cy := float64(fx)+r, float64(fy)+r

	if c := pixel(p.Image, int(cx), int(cy-r/3)); c.R < 240 || c.G > 15 || c.B > 15 {
		t.Errorf("expected red front artwork, got %v", c)
	}

	// Left end of the pill, inside the cap and clear of text and border.
	b := coinBanner(frame{X: float64(fx), Y: float64(fy), W: 2 * r, H: 2 * r})
	px, py := int(b.X+b.H*0.5), int(b.Y+b.H/2)
	if c := pixel(p.Image, px, py); c.B < 240 || c.R > 15 {
		t.Errorf("expected banner sampled from blue bottom-center, got %v at (%d,%d)", c, px, py)
	}

	bx, by := g.SlotOrigin(1)
	if c := pixel(p.Image, bx+g.ItemWidthPx/2, by+g.ItemHeightPx/2); c.G < 240 || c.R > 15 {
		t.Errorf("expected green back design, got %v", c)
	}
}

func TestRender_CardCorners(t *testing.T) {
	g := smallGrid(t, layout.Card)
	items := makeItems(1)
	job := Job{
		Items:  items,
		Grid:   g,
		Images: images{items[0].Image: solid(10, 10, color.NRGBA{R: 255, A: 255})},
	}
	pages, err := Render(context.Background(), job, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	x, y := g.SlotOrigin(0)
	// Rounded corner leaves the very corner pixel white.
	if c := pixel(pages[0].Image, x+1, y+1); c != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("expected white outside rounded corner, got %v", c)
	}
	if c := pixel(pages[0].Image, x+g.ItemWidthPx/2, y+g.ItemHeightPx/4); c.R < 240 || c.G > 15 {
		t.Errorf("expected red card artwork, got %v", c)
	}
}

func TestRender_DegenerateGrid(t *testing.T) {
	_, err := Render(context.Background(), Job{Items: makeItems(1)}, nil)
	if !errors.Is(err, layout.ErrLayoutImpossible) {
		t.Errorf("expected ErrLayoutImpossible, got %v", err)
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Render(ctx, Job{Items: makeItems(1), Grid: smallGrid(t, layout.Coin)}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRender_Progress(t *testing.T) {
	var last int
	calls := 0
	_, err := Render(context.Background(), Job{Items: makeItems(3), Grid: smallGrid(t, layout.Coin)}, func(p int, _ string) {
		if p < last {
			t.Errorf("progress went backwards: %d after %d", p, last)
		}
		last = p
		calls++
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if last != 100 || calls != 3 {
		t.Errorf("expected 3 progress calls ending at 100, got %d calls ending at %d", calls, last)
	}
}

func TestPlacement(t *testing.T) {
	f := frame{X: 0, Y: 0, W: 100, H: 100}
	tests := []struct {
		name         string
		w, h         int
		a            adjust.Adjustment
		x, y, dw, dh float64
	}{
		{"wide fits width", 200, 100, adjust.Adjustment{Zoom: 1}, 0, 25, 100, 50},
		{"tall fits height", 100, 200, adjust.Adjustment{Zoom: 1}, 25, 0, 50, 100},
		{"cover zoom fills", 200, 100, adjust.Adjustment{Zoom: 2}, -50, 0, 200, 100},
		{"offsets in percent", 100, 100, adjust.Adjustment{Zoom: 1, OffsetX: 10, OffsetY: -20}, 10, -20, 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := placement(f, tt.w, tt.h, tt.a)
			const eps = 0.001
			if math.Abs(x-tt.x) > eps || math.Abs(y-tt.y) > eps || math.Abs(w-tt.dw) > eps || math.Abs(h-tt.dh) > eps {
				t.Errorf("placement = (%.1f,%.1f,%.1f,%.1f), want (%.1f,%.1f,%.1f,%.1f)", x, y, w, h, tt.x, tt.y, tt.dw, tt.dh)
			}
		})
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("Pikachu", 12); got != "Pikachu" {
		t.Errorf("short name changed: %q", got)
	}
	if got := truncateName("Super Mario Odyssey", 12); got != "Super Mario " {
		t.Errorf("got %q", got)
	}
	if got := truncateName("ポケモンポケモンポケモンポケモン", 12); got != "ポケモンポケモンポケモン" {
		t.Errorf("expected rune-safe truncation, got %q", got)
	}
}

func TestUniqueSeries(t *testing.T) {
	items := []catalog.ListItem{{AmiiboSeries: "B"}, {AmiiboSeries: "A"}, {AmiiboSeries: "B"}}
	got := UniqueSeries(items)
	if len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Errorf("UniqueSeries = %v", got)
	}
}

func near(v, want uint8) bool {
	d := int(v) - int(want)
	return d >= -12 && d <= 12
}
