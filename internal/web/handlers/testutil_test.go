package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/amiibo-sheets/internal/backdesign"
	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
	"github.com/kozaktomas/amiibo-sheets/internal/imageload"
	"github.com/kozaktomas/amiibo-sheets/internal/sheets"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonRequest creates a request with a JSON-encoded body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeResponse unmarshals a recorded JSON response into v
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to unmarshal response %q: %v", rec.Body.String(), err)
	}
}

// solidPNG encodes a w x h PNG filled with c
func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// solidDataURL returns a PNG data URL filled with c
func solidDataURL(t *testing.T, w, h int, c color.Color) string {
	t.Helper()
	return imageload.EncodeDataURL("image/png", solidPNG(t, w, h, c))
}

// testLoader creates a loader that refuses local files, as the server does without ASSET_DIR
func testLoader() *imageload.Loader {
	return imageload.NewLoader(imageload.Options{})
}

// testAssetLoader creates a loader that reads local files under root only
func testAssetLoader(root string) *imageload.Loader {
	return imageload.NewLoader(imageload.Options{LocalRoot: root})
}

// testGenerator creates a generator that resolves assets against assetBase
func testGenerator(assetBase string) *sheets.Generator {
	return sheets.New(testAssetLoader(assetBase), backdesign.DefaultCatalog(), assetBase)
}

// testTemplate returns a valid two-item coin template with data URL images
func testTemplate(t *testing.T) templates.Config {
	t.Helper()
	red := solidDataURL(t, 40, 40, color.NRGBA{R: 220, A: 255})
	cfg := templates.Defaults()
	cfg.Name = "Smash sheet"
	cfg.SeriesBackDesigns = map[string]string{"Super Smash Bros.": "smash-bros"}
	cfg.Items = []catalog.ListItem{
		{Head: "00000000", Tail: "00000002", Name: "Mario", Image: red, AmiiboSeries: "Super Smash Bros."},
		{Head: "00010000", Tail: "00000002", Name: "Peach", Image: red, AmiiboSeries: "Super Smash Bros."},
	}
	return cfg
}
