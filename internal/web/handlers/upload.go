package handlers

import (
	"io"
	"net/http"

	"github.com/kozaktomas/amiibo-sheets/internal/adjust"
	"github.com/kozaktomas/amiibo-sheets/internal/colorsample"
	"github.com/kozaktomas/amiibo-sheets/internal/constants"
	"github.com/kozaktomas/amiibo-sheets/internal/imageload"
)

// UploadHandler handles custom back image uploads.
type UploadHandler struct {
	loader *imageload.Loader
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(loader *imageload.Loader) *UploadHandler {
	return &UploadHandler{loader: loader}
}

// UploadResponse describes an accepted image. DataURL is stored in a
// template's customBackImages.
type UploadResponse struct {
	DataURL   string  `json:"data_url"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	CoverZoom float64 `json:"cover_zoom"`
	Color     string  `json:"color"`
}

// Upload accepts a multipart "file" field, checks that it decodes as an
// image and returns it as a data URL.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	img, err := h.loader.Decode(data)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "file is not a supported image")
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(data)
	}

	b := img.Bounds()
	respondJSON(w, http.StatusOK, UploadResponse{
		DataURL:   imageload.EncodeDataURL(mime, data),
		Width:     b.Dx(),
		Height:    b.Dy(),
		CoverZoom: adjust.CoverZoom(b.Dx(), b.Dy()),
		Color:     colorsample.CSS(colorsample.Dominant(img)),
	})
}
