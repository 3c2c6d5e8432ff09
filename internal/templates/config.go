// Package templates holds saved sheet configurations and their persistence.
package templates

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/amiibo-sheets/internal/adjust"
	"github.com/kozaktomas/amiibo-sheets/internal/backdesign"
	"github.com/kozaktomas/amiibo-sheets/internal/catalog"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
)

// ErrNameRequired is returned when saving a template without a name.
var ErrNameRequired = errors.New("template name is required")

// ErrUnknownBackDesign is returned when a series selects a design that does not exist.
var ErrUnknownBackDesign = errors.New("unknown back design")

var backDesigns = sync.OnceValue(backdesign.DefaultCatalog)

// Default physical dimensions in millimeters.
const (
	DefaultDiameter   = 30.0
	DefaultCardWidth  = 54.0
	DefaultCardHeight = 85.0
	DefaultMargin     = 5.0
	DefaultSpacing    = 5.0
)

// Config is a saved template: layout parameters, per-series back selections,
// image adjustments and the items to print.
type Config struct {
	ID                string                       `json:"id"`
	Name              string                       `json:"name"`
	CreatedAt         time.Time                    `json:"createdAt"`
	UpdatedAt         time.Time                    `json:"updatedAt"`
	TemplateType      layout.TemplateType          `json:"templateType"`
	PageSize          string                       `json:"pageSize"`
	Diameter          float64                      `json:"diameter"`
	CardWidth         float64                      `json:"cardWidth"`
	CardHeight        float64                      `json:"cardHeight"`
	Margin            float64                      `json:"margin"`
	Spacing           float64                      `json:"spacing"`
	SeriesBackDesigns map[string]string            `json:"seriesBackDesigns"`
	CustomBackImages  map[string]string            `json:"customBackImages,omitempty"`
	ImageAdjustments  map[string]adjust.Adjustment `json:"imageAdjustments"`
	Items             []catalog.ListItem           `json:"items"`
	ListName          string                       `json:"listName,omitempty"`
}

// Defaults returns an unnamed A4 coin configuration.
func Defaults() Config {
	return Config{
		TemplateType:      layout.Coin,
		PageSize:          layout.DefaultPageSizeKey,
		Diameter:          DefaultDiameter,
		CardWidth:         DefaultCardWidth,
		CardHeight:        DefaultCardHeight,
		Margin:            DefaultMargin,
		Spacing:           DefaultSpacing,
		SeriesBackDesigns: map[string]string{},
		ImageAdjustments:  map[string]adjust.Adjustment{},
	}
}

// NewID returns a fresh template identifier.
func NewID() string {
	return uuid.NewString()
}

// Params converts the configuration into layout parameters.
func (c Config) Params() (layout.Params, error) {
	tt, err := layout.ParseTemplateType(string(c.TemplateType))
	if err != nil {
		return layout.Params{}, err
	}
	ps, err := layout.LookupPageSize(c.PageSize)
	if err != nil {
		return layout.Params{}, err
	}
	return layout.Params{
		PageSize:   ps,
		Type:       tt,
		Diameter:   c.Diameter,
		CardWidth:  c.CardWidth,
		CardHeight: c.CardHeight,
		Margin:     c.Margin,
		Spacing:    c.Spacing,
	}, nil
}

// Validate checks the name, template type, page size, dimensions and the
// back design selected for each series.
func (c Config) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	series := make([]string, 0, len(c.SeriesBackDesigns))
	for s := range c.SeriesBackDesigns {
		series = append(series, s)
	}
	sort.Strings(series)
	for _, s := range series {
		if id := c.SeriesBackDesigns[s]; !backDesigns().Valid(id) {
			return fmt.Errorf("%w %q for series %q", ErrUnknownBackDesign, id, s)
		}
	}
	return nil
}

// Adjustments loads the saved image adjustments into a store. Keys that
// cannot be parsed are returned.
func (c Config) Adjustments() (*adjust.Store, []string) {
	s := adjust.NewStore()
	skipped := s.LoadLegacy(c.ImageAdjustments)
	return s, skipped
}

// SetAdjustments replaces the saved image adjustments with the store contents.
func (c *Config) SetAdjustments(s *adjust.Store) {
	c.ImageAdjustments = s.Legacy()
}

// Series returns the distinct series of the configured items in first-seen order.
func (c Config) Series() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range c.Items {
		if seen[it.AmiiboSeries] {
			continue
		}
		seen[it.AmiiboSeries] = true
		out = append(out, it.AmiiboSeries)
	}
	return out
}

// Stamp assigns an id and timestamps before a save. createdAt of an existing
// record wins over whatever the caller supplied.
func Stamp(c Config, existing *Config, now time.Time) Config {
	if c.ID == "" {
		c.ID = NewID()
	}
	switch {
	case existing != nil:
		c.CreatedAt = existing.CreatedAt
	case c.CreatedAt.IsZero():
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.SeriesBackDesigns == nil {
		c.SeriesBackDesigns = map[string]string{}
	}
	if c.ImageAdjustments == nil {
		c.ImageAdjustments = map[string]adjust.Adjustment{}
	}
	return c
}
