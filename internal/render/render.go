// Package render rasterizes print sheets: every item's front and back face
// placed on the layout grid at print resolution.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/fogleman/gg"
	"github.com/kozaktomas/amiibo-sheets/internal/adjust"
	"github.com/kozaktomas/amiibo-sheets/internal/backdesign"
	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
)

// BackResolver resolves the back image source of a series.
type BackResolver interface {
	Resolve(series string) backdesign.Source
}

// ImageLookup returns previously loaded images by reference.
type ImageLookup interface {
	Get(ref string) image.Image
}

// ProgressFunc receives a completion percentage and a short status message.
type ProgressFunc func(percent int, message string)

// Job is everything one render pass reads. It must not change while the
// pass runs; adjustments are therefore a snapshot.
type Job struct {
	Items       []catalog.ListItem
	Grid        layout.Grid
	Adjustments adjust.Snapshot
	Backs       BackResolver
	Images      ImageLookup
}

// Page is one rendered sheet.
type Page struct {
	Index    int
	Image    image.Image
	Slots    []Slot
	Warnings []Warning
}

// Warning records a slot that rendered without its artwork.
type Warning struct {
	Page   int    `json:"page"`
	Slot   int    `json:"slot"`
	Item   string `json:"item"`
	Side   string `json:"side"`
	Reason string `json:"reason"`
}

// Render draws every page of the job in order. A degenerate grid is rejected
// before any canvas is allocated; missing images only degrade their slot.
// Cancellation is checked between pages and discards the partial result.
func Render(ctx context.Context, job Job, progress ProgressFunc) ([]Page, error) {
	if job.Grid.ItemsPerRow <= 0 || job.Grid.RowsPerPage <= 0 {
		return nil, &layout.ConfigError{
			Reason: fmt.Sprintf("grid has %d items per row and %d rows", job.Grid.ItemsPerRow, job.Grid.RowsPerPage),
			Err:    layout.ErrLayoutImpossible,
		}
	}

	chunks := Paginate(BuildSlots(job.Items), job.Grid.ItemsPerPage)
	pages := make([]Page, 0, len(chunks))

	if progress != nil {
		progress(0, "Generating pages...")
	}
	for i, slots := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("render cancelled: %w", err)
		}
		pages = append(pages, RenderPage(job, i, slots))
		if progress != nil {
			progress((i+1)*100/len(chunks), fmt.Sprintf("Rendered page %d of %d", i+1, len(chunks)))
		}
	}
	return pages, nil
}

// RenderPage draws one sheet holding slots, which must fit the grid.
func RenderPage(job Job, index int, slots []Slot) Page {
	g := job.Grid
	dc := gg.NewContext(g.PageWidthPx, g.PageHeightPx)
	dc.SetColor(color.White)
	dc.Clear()

	var sh shape = circleShape{}
	if g.Params.Type == layout.Card {
		sh = roundedRect{radius: float64(layout.MMToPixels(3))}
	}

	page := Page{Index: index, Slots: slots}
	for i, slot := range slots {
		x, y := g.SlotOrigin(i)
		f := frame{X: float64(x), Y: float64(y), W: float64(g.ItemWidthPx), H: float64(g.ItemHeightPx)}

		img, reason := job.slotImage(slot)
		if img == nil {
			page.Warnings = append(page.Warnings, Warning{
				Page: index, Slot: i, Item: slot.Item.Name, Side: slot.Key().Side.String(), Reason: reason,
			})
		}
		drawSlot(dc, sh, f, slot, img, job.Adjustments.Get(slot.Key()), g.Params.Type)
	}

	page.Image = dc.Image()
	return page
}

// slotImage returns the artwork of a slot, or nil with the reason it is missing.
func (job Job) slotImage(slot Slot) (image.Image, string) {
	if slot.Front {
		if slot.Item.Image == "" {
			return nil, "item has no image"
		}
		if img := job.lookup(slot.Item.Image); img != nil {
			return img, ""
		}
		return nil, "front image not loaded"
	}

	if job.Backs == nil {
		return nil, "no back designs configured"
	}
	src := job.Backs.Resolve(slot.Item.AmiiboSeries)
	switch src.Kind {
	case backdesign.SourceGenerated:
		return src.Image, ""
	case backdesign.SourceNone:
		return nil, fmt.Sprintf("no image for back design %q", src.DesignID)
	default:
		if img := job.lookup(src.Ref); img != nil {
			return img, ""
		}
		return nil, fmt.Sprintf("back design %q image not loaded", src.DesignID)
	}
}

func (job Job) lookup(ref string) image.Image {
	if job.Images == nil {
		return nil
	}
	return job.Images.Get(ref)
}

func drawSlot(dc *gg.Context, sh shape, f frame, slot Slot, img image.Image, a adjust.Adjustment, t layout.TemplateType) {
	drawOutline(dc, sh, f)

	if img != nil {
		dc.Push()
		sh.path(dc, f, clipInset)
		dc.Clip()
		drawPlaced(dc, img, f, a)
		dc.Pop()
	}

	if !slot.Front {
		return
	}
	b := coinBanner(f)
	if t == layout.Card {
		b = cardBanner(f)
	}
	if err := drawBanner(dc, sh, f, b, slot.Item.Name, bannerFill(img)); err != nil {
		log.Printf("WARNING: banner for %s: %v", slot.Item.Name, err)
	}
}
