package imageload

import (
	"context"
	"image"
	"log"
	"sync"
)

// Progress shares of the preload phase: fronts fill 0-60%, backs 60-90%.
const (
	frontsShare = 60
	backsShare  = 30
)

// ProgressFunc receives a completion percentage and a short status message.
type ProgressFunc func(percent int, message string)

// Set holds loaded images keyed by their reference. Missing entries mean the
// image failed to load; the failure is kept in Errors.
type Set struct {
	mu     sync.RWMutex
	images map[string]image.Image
	errs   map[string]error
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{images: make(map[string]image.Image), errs: make(map[string]error)}
}

// Get returns the image for ref, or nil.
func (s *Set) Get(ref string) image.Image {
	if s == nil || ref == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.images[ref]
}

// Has reports whether ref was loaded or attempted.
func (s *Set) Has(ref string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.images[ref]
	_, failed := s.errs[ref]
	return ok || failed
}

// Put stores a loaded image.
func (s *Set) Put(ref string, img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[ref] = img
	delete(s.errs, ref)
}

func (s *Set) fail(ref string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[ref] = err
}

// Errors returns the references that failed to load.
func (s *Set) Errors() map[string]error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]error, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// Len returns the number of loaded images.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// Preload loads front references then back references one at a time,
// reporting progress. Individual failures are logged and recorded, never
// returned; only context cancellation stops the phase early.
func (l *Loader) Preload(ctx context.Context, fronts, backs []string, progress ProgressFunc) (*Set, error) {
	set := NewSet()
	report := func(p int, msg string) {
		if progress != nil {
			progress(p, msg)
		}
	}

	report(0, "Loading amiibo images...")
	if err := l.loadAll(ctx, set, fronts, 0, frontsShare, report); err != nil {
		return set, err
	}

	report(frontsShare, "Loading back designs...")
	if err := l.loadAll(ctx, set, backs, frontsShare, backsShare, report); err != nil {
		return set, err
	}

	report(100, "Done!")
	return set, nil
}

func (l *Loader) loadAll(ctx context.Context, set *Set, refs []string, base, share int, report ProgressFunc) error {
	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ref != "" && !set.Has(ref) {
			img, err := l.Load(ctx, ref)
			if err != nil {
				log.Printf("WARNING: failed to load image %s: %v", truncateRef(ref), err)
				set.fail(ref, err)
			} else {
				set.Put(ref, img)
			}
		}
		report(base+(i+1)*share/len(refs), "")
	}
	return nil
}
