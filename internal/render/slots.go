package render

import (
	"github.com/kozaktomas/amiibo-sheets/internal/adjust"
	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
)

// Slot is one printed face of one item.
type Slot struct {
	Item  catalog.ListItem
	Front bool
}

// Key returns the adjustment key of the slot: per item for fronts, per series
// for backs.
func (s Slot) Key() adjust.Key {
	if s.Front {
		return adjust.FrontKey(s.Item.ID())
	}
	return adjust.BackKey(s.Item.AmiiboSeries)
}

// BuildSlots emits each item's front immediately followed by its back, in
// list order.
func BuildSlots(items []catalog.ListItem) []Slot {
	slots := make([]Slot, 0, 2*len(items))
	for _, it := range items {
		slots = append(slots, Slot{Item: it, Front: true}, Slot{Item: it, Front: false})
	}
	return slots
}

// Paginate splits slots into pages of at most perPage slots, preserving order.
func Paginate(slots []Slot, perPage int) [][]Slot {
	if perPage <= 0 || len(slots) == 0 {
		return nil
	}
	pages := make([][]Slot, 0, (len(slots)+perPage-1)/perPage)
	for start := 0; start < len(slots); start += perPage {
		end := min(start+perPage, len(slots))
		pages = append(pages, slots[start:end])
	}
	return pages
}

// UniqueSeries returns the distinct series of items in first-seen order.
func UniqueSeries(items []catalog.ListItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if !seen[it.AmiiboSeries] {
			seen[it.AmiiboSeries] = true
			out = append(out, it.AmiiboSeries)
		}
	}
	return out
}

// truncateName returns the first n characters of name.
func truncateName(name string, n int) string {
	r := []rune(name)
	if len(r) <= n {
		return name
	}
	return string(r[:n])
}
