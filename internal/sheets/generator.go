// Package sheets runs the full generation pipeline for a saved template:
// layout, image pre-load, back-design resolution and page rendering.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/schollz/progressbar/v3"

	"github.com/kozaktomas/amiibo-sheets/internal/backdesign"
	"github.com/kozaktomas/amiibo-sheets/internal/config"
	"github.com/kozaktomas/amiibo-sheets/internal/export"
	"github.com/kozaktomas/amiibo-sheets/internal/imageload"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
	"github.com/kozaktomas/amiibo-sheets/internal/render"
	"github.com/kozaktomas/amiibo-sheets/internal/templates"
)

// ErrNoItems is returned when a template has nothing to print.
var ErrNoItems = errors.New("template has no items")

// Phases reported through ProgressInfo.
const (
	PhaseLoading   = "loading"
	PhaseRendering = "rendering"
	PhaseDone      = "done"
)

// Share of overall progress given to image loading; rendering takes the rest.
const loadingShare = 50

type Generator struct {
	loader    *imageload.Loader
	designs   *backdesign.Catalog
	assetBase string
}

// ProgressInfo contains progress information for callbacks
type ProgressInfo struct {
	Phase        string `json:"phase"`
	PhasePercent int    `json:"phase_percent"`
	Percent      int    `json:"percent"`
	Message      string `json:"message,omitempty"`
}

type Options struct {
	ShowProgress bool               // Draw a terminal progress bar
	OnProgress   func(ProgressInfo) // Optional progress callback for web UI
}

type Result struct {
	Config   templates.Config
	Grid     layout.Grid
	Pages    []render.Page
	Warnings []render.Warning
	// SkippedAdjustments lists saved adjustment keys that could not be parsed.
	SkippedAdjustments []string
	LoadErrors         map[string]error
}

// Images returns the page rasters in order.
func (r *Result) Images() []image.Image {
	out := make([]image.Image, len(r.Pages))
	for i, p := range r.Pages {
		out[i] = p.Image
	}
	return out
}

// ListName returns the name used for exported files.
func (r *Result) ListName() string {
	switch {
	case r.Config.ListName != "":
		return r.Config.ListName
	case r.Config.Name != "":
		return r.Config.Name
	default:
		return export.DefaultListName
	}
}

func New(loader *imageload.Loader, designs *backdesign.Catalog, assetBase string) *Generator {
	return &Generator{
		loader:    loader,
		designs:   designs,
		assetBase: assetBase,
	}
}

// NewFromConfig wires a Generator from the image, asset and design settings.
// Unless allowLocal is set, file references are only read from ASSET_DIR.
func NewFromConfig(cfg *config.Config, allowLocal bool) *Generator {
	loader := imageload.NewLoader(imageload.Options{
		Timeout:    cfg.Images.FetchTimeout,
		MaxSize:    cfg.Images.MaxSize,
		CacheDir:   cfg.Images.CacheDir,
		AllowLocal: allowLocal,
		LocalRoot:  cfg.Assets.Dir,
	})
	return New(loader, backdesign.DefaultCatalog(), cfg.Assets.Base())
}

// Loader returns the image loader shared with other components.
func (g *Generator) Loader() *imageload.Loader { return g.loader }

// Designs returns the back design catalog.
func (g *Generator) Designs() *backdesign.Catalog { return g.designs }

// AssetBase returns where static back-design assets resolve against.
func (g *Generator) AssetBase() string { return g.assetBase }

// Resolver builds the back-design resolver for a template.
func (g *Generator) Resolver(cfg templates.Config) *backdesign.Resolver {
	return backdesign.NewResolver(g.designs, backdesign.ResolverOptions{
		Selections: cfg.SeriesBackDesigns,
		Custom:     cfg.CustomBackImages,
		Circle:     cfg.TemplateType != layout.Card,
		AssetBase:  g.assetBase,
	})
}

// Generate renders every page of cfg. Layout problems are reported before any
// image is fetched; missing images only degrade their slot.
func (g *Generator) Generate(ctx context.Context, cfg templates.Config, opts Options) (*Result, error) {
	params, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	grid, err := layout.Calculate(params)
	if err != nil {
		return nil, err
	}
	if len(cfg.Items) == 0 {
		return nil, ErrNoItems
	}

	adjustments, skipped := cfg.Adjustments()
	resolver := g.Resolver(cfg)

	report := g.reporter(opts)
	defer report.finish()

	fronts := make([]string, 0, len(cfg.Items))
	for _, it := range cfg.Items {
		fronts = append(fronts, it.Image)
	}
	backs := resolver.Refs(render.UniqueSeries(cfg.Items))

	images, err := g.loader.Preload(ctx, fronts, backs, func(p int, msg string) {
		report.send(PhaseLoading, p, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("loading images: %w", err)
	}

	job := render.Job{
		Items:       cfg.Items,
		Grid:        grid,
		Adjustments: adjustments.Snapshot(),
		Backs:       resolver,
		Images:      images,
	}
	pages, err := render.Render(ctx, job, func(p int, msg string) {
		report.send(PhaseRendering, p, msg)
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Config:             cfg,
		Grid:               grid,
		Pages:              pages,
		SkippedAdjustments: skipped,
		LoadErrors:         images.Errors(),
	}
	for _, p := range pages {
		res.Warnings = append(res.Warnings, p.Warnings...)
	}
	report.send(PhaseDone, 100, fmt.Sprintf("Generated %d pages", len(pages)))
	return res, nil
}

type reporter struct {
	bar      *progressbar.ProgressBar
	callback func(ProgressInfo)
}

func (g *Generator) reporter(opts Options) *reporter {
	r := &reporter{callback: opts.OnProgress}
	if opts.ShowProgress {
		r.bar = progressbar.NewOptions(100,
			progressbar.OptionSetDescription("Generating sheets"),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	return r
}

// send maps a phase-local percentage onto overall progress.
func (r *reporter) send(phase string, percent int, msg string) {
	overall := percent
	switch phase {
	case PhaseLoading:
		overall = percent * loadingShare / 100
	case PhaseRendering:
		overall = loadingShare + percent*(100-loadingShare)/100
	}

	if r.bar != nil {
		if msg != "" {
			r.bar.Describe(msg)
		}
		_ = r.bar.Set(overall)
	}
	if r.callback != nil {
		r.callback(ProgressInfo{Phase: phase, PhasePercent: percent, Percent: overall, Message: msg})
	}
}

func (r *reporter) finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
