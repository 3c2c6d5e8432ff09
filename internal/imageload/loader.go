// Package imageload fetches and decodes the artwork placed on sheets.
package imageload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// DefaultTimeout bounds a single remote fetch.
	DefaultTimeout = 15 * time.Second

	// DefaultMaxSize caps the longest edge of decoded images.
	DefaultMaxSize = 1920

	// MaxDownloadSize limits the bytes read from a remote image or data URL.
	MaxDownloadSize = 25 << 20
)

// ErrUnsupportedSource is returned for references that are neither data URLs,
// http(s) URLs nor file paths.
var ErrUnsupportedSource = errors.New("unsupported image source")

// ErrLocalFileDenied is returned for file paths the loader may not read.
var ErrLocalFileDenied = errors.New("local image file not allowed")

// Options configures a Loader.
type Options struct {
	Timeout  time.Duration
	MaxSize  int
	CacheDir string
	Client   *http.Client

	// AllowLocal permits reading any file path. Otherwise only files under
	// LocalRoot are read, and none when LocalRoot is empty.
	AllowLocal bool
	LocalRoot  string
}

// Loader resolves image references (data URLs, http(s) URLs, file paths).
// File paths are subject to the AllowLocal and LocalRoot options.
type Loader struct {
	client     *http.Client
	maxSize    int
	cacheDir   string
	allowLocal bool
	localRoot  string
}

// NewLoader creates a Loader with defaults applied.
func NewLoader(opts Options) *Loader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Loader{
		client:     client,
		maxSize:    maxSize,
		cacheDir:   opts.CacheDir,
		allowLocal: opts.AllowLocal,
		localRoot:  opts.LocalRoot,
	}
}

// Load fetches and decodes the image behind ref.
func (l *Loader) Load(ctx context.Context, ref string) (image.Image, error) {
	data, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	return l.Decode(data)
}

// Decode decodes image bytes, applying EXIF orientation and the size cap.
func (l *Loader) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > l.maxSize || b.Dy() > l.maxSize {
		img = imaging.Fit(img, l.maxSize, l.maxSize, imaging.Lanczos)
	}
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case ref == "":
		return nil, fmt.Errorf("%w: empty reference", ErrUnsupportedSource)
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURL(ref)
	case strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://"):
		return l.fetchRemote(ctx, ref)
	case strings.Contains(ref, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, truncateRef(ref))
	default:
		return l.readLocal(ref)
	}
}

func (l *Loader) readLocal(ref string) ([]byte, error) {
	path := ref
	if !l.allowLocal {
		var err error
		if path, err = l.underRoot(ref); err != nil {
			return nil, err
		}
	}
	data, err := os.ReadFile(path) //nolint:gosec // confined to localRoot unless allowLocal
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}
	return data, nil
}

// underRoot resolves ref and rejects it unless it lies inside localRoot.
func (l *Loader) underRoot(ref string) (string, error) {
	if l.localRoot == "" {
		return "", fmt.Errorf("%w: %s", ErrLocalFileDenied, truncateRef(ref))
	}
	root, err := filepath.Abs(l.localRoot)
	if err != nil {
		return "", fmt.Errorf("invalid local image root: %w", err)
	}
	path, err := filepath.Abs(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrLocalFileDenied, truncateRef(ref))
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrLocalFileDenied, truncateRef(ref))
	}
	return path, nil
}

func (l *Loader) fetchRemote(ctx context.Context, ref string) ([]byte, error) {
	cachePath := l.cachePath(ref)
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
	}

	if _, err := url.Parse(ref); err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	resp, err := l.client.Do(req) //nolint:gosec // image URLs come from the catalog or the template
	if err != nil {
		return nil, fmt.Errorf("could not fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image request failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read image body: %w", err)
	}
	if len(data) > MaxDownloadSize {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxDownloadSize)
	}

	if cachePath != "" {
		if err := saveToCache(cachePath, data); err != nil {
			log.Printf("WARNING: %v", err)
		}
	}
	return data, nil
}

// cachePath returns the cache file for a URL, or "" when caching is off.
func (l *Loader) cachePath(ref string) string {
	if l.cacheDir == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(ref))
	return filepath.Join(l.cacheDir, hex.EncodeToString(sum[:]))
}

func saveToCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// decodeDataURL extracts the payload of a data: URL. Only base64 payloads
// carry binary images, but percent-encoded ones are accepted too.
func decodeDataURL(ref string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL: missing comma")
	}
	if len(payload) > MaxDownloadSize*4/3+4 {
		return nil, fmt.Errorf("data URL exceeds %d bytes", MaxDownloadSize)
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, fmt.Errorf("malformed data URL payload: %w", err)
			}
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data URL payload: %w", err)
	}
	return []byte(s), nil
}

// EncodeDataURL returns a base64 data URL for data of the given MIME type.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func truncateRef(ref string) string {
	if len(ref) > 64 {
		return ref[:64] + "..."
	}
	return ref
}
