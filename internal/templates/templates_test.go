package templates

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/amiibo-sheets/internal/adjust"
	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
)

func sampleConfig(name string) Config {
	c := Defaults()
	c.Name = name
	c.Items = []catalog.ListItem{
		{Head: "00000000", Tail: "00000002", Name: "Mario", AmiiboSeries: "Super Smash Bros."},
		{Head: "01000000", Tail: "03540902", Name: "Link", AmiiboSeries: "The Legend of Zelda"},
		{Head: "00010000", Tail: "00000002", Name: "Peach", AmiiboSeries: "Super Smash Bros."},
	}
	return c
}

func TestDefaults(t *testing.T) {
	c := Defaults()

	if c.TemplateType != layout.Coin {
		t.Errorf("expected coin template, got %q", c.TemplateType)
	}
	if c.PageSize != "a4" {
		t.Errorf("expected a4 page size, got %q", c.PageSize)
	}
	if c.Diameter != 30 || c.CardWidth != 54 || c.CardHeight != 85 || c.Margin != 5 || c.Spacing != 5 {
		t.Errorf("unexpected default dimensions: %+v", c)
	}
}

func TestConfig_Params(t *testing.T) {
	c := sampleConfig("Coins")

	p, err := c.Params()
	if err != nil {
		t.Fatalf("Params() error: %v", err)
	}
	g, err := layout.Calculate(p)
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if g.ItemsPerRow != 5 || g.RowsPerPage != 8 {
		t.Errorf("expected 5x8 grid, got %dx%d", g.ItemsPerRow, g.RowsPerPage)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing name", func(c *Config) { c.Name = "" }, true},
		{"unknown type", func(c *Config) { c.TemplateType = "hexagon" }, true},
		{"unknown page", func(c *Config) { c.PageSize = "b5" }, true},
		{"negative margin", func(c *Config) { c.Margin = -1 }, true},
		{"zero diameter", func(c *Config) { c.Diameter = 0 }, true},
		{"card ignores diameter", func(c *Config) { c.TemplateType = layout.Card; c.Diameter = 0 }, false},
		{"known back design", func(c *Config) { c.SeriesBackDesigns = map[string]string{"Zelda": "zelda"} }, false},
		{"custom back design", func(c *Config) { c.SeriesBackDesigns = map[string]string{"Zelda": "custom"} }, false},
		{"unknown back design", func(c *Config) { c.SeriesBackDesigns = map[string]string{"Zelda": "zelda-2"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleConfig("x")
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Adjustments(t *testing.T) {
	c := sampleConfig("Adjusted")
	c.ImageAdjustments = map[string]adjust.Adjustment{
		"00000000-00000002":      {Zoom: 1.5, OffsetX: 10, OffsetY: -5},
		"back-Super Smash Bros.": {Zoom: 2, OffsetX: 0, OffsetY: 0},
		"garbage":                {Zoom: 1},
	}

	store, skipped := c.Adjustments()

	if len(skipped) != 1 || skipped[0] != "garbage" {
		t.Errorf("expected garbage key to be skipped, got %v", skipped)
	}
	front := store.Get(adjust.FrontKey(catalog.ItemID{Head: "00000000", Tail: "00000002"}))
	if front.Zoom != 1.5 || front.OffsetX != 10 || front.OffsetY != -5 {
		t.Errorf("unexpected front adjustment %+v", front)
	}
	back := store.Get(adjust.BackKey("Super Smash Bros."))
	if back.Zoom != 2 {
		t.Errorf("expected back zoom 2, got %v", back.Zoom)
	}

	var out Config
	out.SetAdjustments(store)
	if len(out.ImageAdjustments) != 2 {
		t.Errorf("expected 2 adjustments after round trip, got %d", len(out.ImageAdjustments))
	}
}

func TestConfig_Series(t *testing.T) {
	got := sampleConfig("s").Series()
	want := []string{"Super Smash Bros.", "The Legend of Zelda"}
	if len(got) != len(want) {
		t.Fatalf("Series() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Series()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	saved, err := store.Save(ctx, sampleConfig("First"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if !saved.CreatedAt.Equal(clock) || !saved.UpdatedAt.Equal(clock) {
		t.Errorf("unexpected timestamps %v / %v", saved.CreatedAt, saved.UpdatedAt)
	}

	got, err := store.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "First" || len(got.Items) != 3 {
		t.Errorf("unexpected template %+v", got)
	}

	// Update keeps createdAt and bumps updatedAt.
	clock = clock.Add(time.Hour)
	got.Name = "Renamed"
	got.CreatedAt = time.Time{}
	updated, err := store.Save(ctx, got)
	if err != nil {
		t.Fatalf("Save() update error: %v", err)
	}
	if !updated.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("createdAt changed on update: %v -> %v", saved.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(clock) {
		t.Errorf("expected updatedAt %v, got %v", clock, updated.UpdatedAt)
	}

	list, _ := store.List(ctx)
	if len(list) != 1 || list[0].Name != "Renamed" {
		t.Errorf("unexpected list %+v", list)
	}

	if err := store.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := store.Get(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_RejectsInvalid(t *testing.T) {
	store := NewMemoryStore()
	c := sampleConfig("Bad")
	c.PageSize = "tabloid"

	if _, err := store.Save(context.Background(), c); err == nil {
		t.Error("expected error for unknown page size")
	}
	if n, _ := store.List(context.Background()); len(n) != 0 {
		t.Errorf("expected empty store, got %d templates", len(n))
	}
}

func TestMemoryStore_ListOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"a", "b", "c"} {
		at := base.Add(time.Duration(3-i) * time.Minute)
		store.now = func() time.Time { return at }
		if _, err := store.Save(ctx, sampleConfig(name)); err != nil {
			t.Fatalf("Save(%s) error: %v", name, err)
		}
	}

	list, _ := store.List(ctx)
	got := []string{list[0].Name, list[1].Name, list[2].Name}
	if strings.Join(got, ",") != "c,b,a" {
		t.Errorf("expected oldest first (c,b,a), got %v", got)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryStore()
	for _, name := range []string{"One", "Two"} {
		if _, err := src.Save(ctx, sampleConfig(name)); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	data, err := ExportAll(ctx, src)
	if err != nil {
		t.Fatalf("ExportAll() error: %v", err)
	}

	dst := NewMemoryStore()
	res, err := Import(ctx, dst, data)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 0 {
		t.Errorf("expected 2 imported / 0 skipped, got %+v", res)
	}

	srcList, _ := src.List(ctx)
	dstList, _ := dst.List(ctx)
	for i := range srcList {
		if srcList[i].ID != dstList[i].ID {
			t.Errorf("expected id %s to be preserved, got %s", srcList[i].ID, dstList[i].ID)
		}
	}
}

func TestImport_DuplicateIDsGetFreshID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	existing, _ := store.Save(ctx, sampleConfig("Existing"))

	dup := sampleConfig("Copy")
	dup.ID = existing.ID
	data, _ := json.Marshal(dup)

	res, err := Import(ctx, store, data)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("expected 1 imported, got %+v", res)
	}

	list, _ := store.List(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(list))
	}
	orig, _ := store.Get(ctx, existing.ID)
	if orig.Name != "Existing" {
		t.Errorf("existing template was overwritten: %q", orig.Name)
	}
}

func TestImport_SkipsIncomplete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	data := []byte(`[
		{"id": "a", "name": "Complete", "templateType": "coin", "pageSize": "a4", "diameter": 30, "margin": 5, "spacing": 5},
		{"name": "No id", "templateType": "coin"},
		{"id": "b", "templateType": "card"},
		{"id": "c", "name": "No type"},
		{"id": "d", "name": "Bad page", "templateType": "coin", "pageSize": "b5", "diameter": 30}
	]`)

	res, err := Import(ctx, store, data)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 4 {
		t.Errorf("expected 1 imported / 4 skipped, got %+v", res)
	}
}

func TestImport_SingleObjectAndOriginalTimestamps(t *testing.T) {
	data := []byte(`{
		"id": "template-1700000000000-abc123def",
		"name": "From browser",
		"createdAt": "2024-02-10T08:30:00.000Z",
		"updatedAt": "2024-02-11T08:30:00.000Z",
		"templateType": "card",
		"pageSize": "letter",
		"diameter": 30, "cardWidth": 54, "cardHeight": 85, "margin": 5, "spacing": 5,
		"seriesBackDesigns": {"Animal Crossing": "animal-crossing"},
		"imageAdjustments": {"back-Animal Crossing": {"zoom": 1.4, "offsetX": 0, "offsetY": 12}},
		"items": [{"head": "01810000", "tail": "024b0502", "name": "Isabelle", "image": "", "character": "Isabelle",
			"amiiboSeries": "Animal Crossing", "gameSeries": "Animal Crossing", "type": "Figure"}],
		"listName": "Villagers"
	}`)

	ctx := context.Background()
	store := NewMemoryStore()
	res, err := Import(ctx, store, data)
	if err != nil {
		t.Fatalf("Import() error: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("expected 1 imported, got %+v", res)
	}

	got, err := store.Get(ctx, "template-1700000000000-abc123def")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	want := time.Date(2024, 2, 10, 8, 30, 0, 0, time.UTC)
	if !got.CreatedAt.Equal(want) {
		t.Errorf("expected createdAt %v, got %v", want, got.CreatedAt)
	}
	if got.SeriesBackDesigns["Animal Crossing"] != "animal-crossing" {
		t.Errorf("back design selection lost: %v", got.SeriesBackDesigns)
	}
	if got.ListName != "Villagers" || len(got.Items) != 1 {
		t.Errorf("unexpected import result %+v", got)
	}
}

func TestImport_InvalidJSON(t *testing.T) {
	if _, err := Import(context.Background(), NewMemoryStore(), []byte("{not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := Import(context.Background(), NewMemoryStore(), []byte("   ")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestExport_EmptyIsArray(t *testing.T) {
	data, err := Export(nil)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected [], got %s", data)
	}
}
