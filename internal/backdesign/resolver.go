package backdesign

import (
	"image"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
)

// SourceKind tells where a resolved back image comes from.
type SourceKind int

const (
	// SourceNone means no image is available (custom design without upload).
	SourceNone SourceKind = iota
	// SourceCustom is a user-uploaded data URL.
	SourceCustom
	// SourceAsset is a static image path or URL that must be loaded.
	SourceAsset
	// SourceGenerated is an image drawn in memory.
	SourceGenerated
)

func (k SourceKind) String() string {
	switch k {
	case SourceCustom:
		return "custom"
	case SourceAsset:
		return "asset"
	case SourceGenerated:
		return "generated"
	default:
		return "none"
	}
}

// Source is the resolved back image of a series. Ref is set for custom and
// asset sources and is the key the loaded image is stored under; Image is set
// for generated sources.
type Source struct {
	Kind     SourceKind
	DesignID string
	Ref      string
	Image    image.Image
}

// Resolver maps series names to back images. Selections and uploads are
// fixed at construction; build a new Resolver when they change.
type Resolver struct {
	catalog    *Catalog
	selections map[string]string
	custom     map[string]string
	circle     bool
	size       int
	assetBase  string

	mu        sync.Mutex
	generated map[string]image.Image
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Selections maps series name to design id. Missing series use DefaultID.
	Selections map[string]string
	// Custom maps series name to an uploaded image data URL.
	Custom map[string]string
	// Circle draws generated designs as circles (coin templates).
	Circle bool
	// Size is the edge length of generated designs. Defaults to PrintSize.
	Size int
	// AssetBase is prefixed to static asset paths (a URL or a directory).
	AssetBase string
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog *Catalog, opts ResolverOptions) *Resolver {
	size := opts.Size
	if size <= 0 {
		size = PrintSize
	}
	r := &Resolver{
		catalog:    catalog,
		selections: make(map[string]string, len(opts.Selections)),
		custom:     make(map[string]string, len(opts.Custom)),
		circle:     opts.Circle,
		size:       size,
		assetBase:  opts.AssetBase,
		generated:  make(map[string]image.Image),
	}
	for k, v := range opts.Selections {
		r.selections[k] = v
	}
	for k, v := range opts.Custom {
		r.custom[k] = v
	}
	return r
}

// DesignFor returns the design id selected for series.
func (r *Resolver) DesignFor(series string) string {
	if id, ok := r.selections[series]; ok && id != "" {
		return id
	}
	return DefaultID
}

// Resolve returns the back image source of series: the uploaded image for
// "custom", the static asset of an image design, or a generated design.
func (r *Resolver) Resolve(series string) Source {
	id := r.DesignFor(series)

	if id == CustomID {
		if dataURL := r.custom[series]; dataURL != "" {
			return Source{Kind: SourceCustom, DesignID: id, Ref: dataURL}
		}
		return Source{Kind: SourceNone, DesignID: id}
	}

	d, ok := r.catalog.Lookup(id)
	if !ok {
		return Source{Kind: SourceNone, DesignID: id}
	}
	if d.Image != "" {
		return Source{Kind: SourceAsset, DesignID: id, Ref: r.assetRef(d.Image)}
	}
	return Source{Kind: SourceGenerated, DesignID: id, Image: r.generate(d)}
}

func (r *Resolver) generate(d Design) image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	if img, ok := r.generated[d.ID]; ok {
		return img
	}
	img := Generate(d, r.size, r.circle)
	r.generated[d.ID] = img
	return img
}

// assetRef joins the asset base and a design's asset path.
func (r *Resolver) assetRef(p string) string {
	if r.assetBase == "" {
		return p
	}
	if u, err := url.Parse(r.assetBase); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return u.JoinPath(p).String()
	}
	return filepath.Join(r.assetBase, filepath.FromSlash(strings.TrimPrefix(p, "/")))
}

// Refs returns the distinct loadable references for the given series, in
// first-seen order. Generated and missing sources have no reference.
func (r *Resolver) Refs(series []string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, s := range series {
		src := r.Resolve(s)
		if src.Ref == "" || seen[src.Ref] {
			continue
		}
		seen[src.Ref] = true
		refs = append(refs, src.Ref)
	}
	return refs
}
