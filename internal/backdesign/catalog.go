// Package backdesign resolves and draws the shared back face of each series.
package backdesign

import (
	_ "embed"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed designs.yaml
var designsYAML []byte

const (
	// CustomID selects the user-uploaded image of a series.
	CustomID = "custom"

	// DefaultID is used for series with no selection.
	DefaultID = "amiibo-logo"

	// PreviewSize is the edge length of selection thumbnails.
	PreviewSize = 100

	// PrintSize is the edge length of generated designs placed on sheets.
	PrintSize = 400
)

// Design is one back design. Image is a static asset path; designs without
// one are generated.
type Design struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	BaseColor string `yaml:"color" json:"color"`
	TextColor string `yaml:"text_color" json:"textColor"`
	Image     string `yaml:"image,omitempty" json:"imageUrl,omitempty"`
	Subtitle  string `yaml:"subtitle,omitempty" json:"subtitle,omitempty"`
}

// Generated reports whether the design is drawn procedurally.
func (d Design) Generated() bool {
	return d.Image == "" && d.ID != CustomID
}

// Catalog is the ordered set of known designs.
type Catalog struct {
	designs []Design
	byID    map[string]int
}

// DefaultCatalog parses the embedded design list. The file is compiled in, so
// a parse failure is a programming error.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(designsYAML)
	if err != nil {
		panic("failed to parse embedded designs.yaml: " + err.Error())
	}
	return c
}

// ParseCatalog parses a YAML design list.
func ParseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Designs []Design `yaml:"designs"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal designs: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(doc.Designs))}
	for _, d := range doc.Designs {
		if d.ID == "" || d.ID == CustomID {
			return nil, fmt.Errorf("invalid design id %q", d.ID)
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate design id %q", d.ID)
		}
		if _, err := ParseHexColor(d.BaseColor); err != nil {
			return nil, fmt.Errorf("design %s: %w", d.ID, err)
		}
		if _, err := ParseHexColor(d.TextColor); err != nil {
			return nil, fmt.Errorf("design %s: %w", d.ID, err)
		}
		c.byID[d.ID] = len(c.designs)
		c.designs = append(c.designs, d)
	}
	return c, nil
}

// All returns the designs in display order, static-image designs first.
func (c *Catalog) All() []Design {
	out := make([]Design, len(c.designs))
	copy(out, c.designs)
	return out
}

// Lookup returns the design with the given id.
func (c *Catalog) Lookup(id string) (Design, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Design{}, false
	}
	return c.designs[i], true
}

// Valid reports whether id names a design or the custom variant.
func (c *Catalog) Valid(id string) bool {
	if id == CustomID {
		return true
	}
	_, ok := c.byID[id]
	return ok
}

// ParseHexColor parses #rgb or #rrggbb.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
