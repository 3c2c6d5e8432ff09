package export

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/kozaktomas/amiibo-sheets/internal/layout"
)

// Orientation returns "L" when the page is wider than tall, otherwise "P".
func Orientation(size layout.PageSize) string {
	if size.WidthMM > size.HeightMM {
		return "L"
	}
	return "P"
}

// WritePDF assembles the pages into one document with one page per image.
// Every document page has the physical page size and the image fills it
// exactly, so sheets print at true size at 100% scale.
func WritePDF(w io.Writer, pages []image.Image, size layout.PageSize) error {
	if len(pages) == 0 {
		return &ExportError{Format: "pdf", Err: ErrNoPages}
	}
	if size.WidthMM <= 0 || size.HeightMM <= 0 {
		return &ExportError{Format: "pdf", Err: fmt.Errorf("invalid page size %.1fx%.1fmm", size.WidthMM, size.HeightMM)}
	}

	// fpdf swaps the declared size for landscape, so declare it portrait.
	orientation := Orientation(size)
	declared := fpdf.SizeType{Wd: size.WidthMM, Ht: size.HeightMM}
	if orientation == "L" {
		declared = fpdf.SizeType{Wd: size.HeightMM, Ht: size.WidthMM}
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "mm",
		Size:           declared,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, img := range pages {
		var buf bytes.Buffer
		if err := EncodePNG(&buf, img); err != nil {
			return &ExportError{Format: "pdf", Err: fmt.Errorf("page %d: %w", i+1, err)}
		}
		name := fmt.Sprintf("page-%d", i+1)
		pdf.RegisterImageOptionsReader(name, opts, &buf)
		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, size.WidthMM, size.HeightMM, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return &ExportError{Format: "pdf", Err: fmt.Errorf("page %d: %w", i+1, err)}
		}
	}

	if err := pdf.Output(w); err != nil {
		return &ExportError{Format: "pdf", Err: err}
	}
	return nil
}
