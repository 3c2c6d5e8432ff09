package export

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
)

// ErrNoPages is returned when there is nothing to export.
var ErrNoPages = errors.New("no pages to export")

// ExportError reports a failed export attempt. The rendered pages are not
// affected and the export may be retried.
type ExportError struct {
	Format string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Format, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// WritePNGs writes one PNG per page into dir and returns the written paths.
func WritePNGs(dir, list, templateType string, pages []image.Image) ([]string, error) {
	if len(pages) == 0 {
		return nil, &ExportError{Format: "png", Err: ErrNoPages}
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, &ExportError{Format: "png", Err: fmt.Errorf("create output directory: %w", err)}
	}

	paths := make([]string, 0, len(pages))
	for i, img := range pages {
		path := filepath.Join(dir, PageFileName(list, templateType, i))
		if err := writePNGFile(path, img); err != nil {
			return paths, &ExportError{Format: "png", Err: err}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNGFile(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // output path chosen by the user
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(f)
	if err := EncodePNG(bw, img); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteZip bundles the pages as individually named PNG files in one archive.
func WriteZip(w io.Writer, list, templateType string, pages []image.Image) error {
	if len(pages) == 0 {
		return &ExportError{Format: "zip", Err: ErrNoPages}
	}
	zw := zip.NewWriter(w)
	for i, img := range pages {
		// PNG data is already deflated.
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: PageFileName(list, templateType, i), Method: zip.Store})
		if err != nil {
			return &ExportError{Format: "zip", Err: fmt.Errorf("add page %d: %w", i+1, err)}
		}
		if err := EncodePNG(fw, img); err != nil {
			return &ExportError{Format: "zip", Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return &ExportError{Format: "zip", Err: fmt.Errorf("finish archive: %w", err)}
	}
	return nil
}
