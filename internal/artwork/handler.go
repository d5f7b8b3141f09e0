package artwork

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"github.com/printloom/printloom/backend-go/internal/typeid"
)

const maxUploadSize = 10 << 20 // 10MB

// UploadResponse is returned from the upload endpoint. PrintWidth and
// PrintHeight are the artwork's dimensions in inches at the configured DPI,
// ready to use as layer dimensions on a canvas.
type UploadResponse struct {
	ID          string  `json:"id"`
	URL         string  `json:"url"`
	PixelWidth  int     `json:"pixelWidth"`
	PixelHeight int     `json:"pixelHeight"`
	PrintWidth  float64 `json:"printWidth"`
	PrintHeight float64 `json:"printHeight"`
	Name        string  `json:"name"`
}

// Handler serves artwork upload and retrieval endpoints.
type Handler struct {
	dir string
	dpi float64
}

// NewHandler creates an artwork handler that stores files in dir and
// converts pixel dimensions to inches at the given DPI.
func NewHandler(dir string, dpi float64) *Handler {
	if err := os.MkdirAll(dir, 0755); err != nil {
		slog.Error("create artwork dir", "error", err, "dir", dir)
	}
	return &Handler{dir: dir, dpi: dpi}
}

// Upload handles POST /artwork/upload (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "file too large (max 10MB)", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/png") && !strings.HasPrefix(contentType, "image/jpeg") {
		http.Error(w, "only PNG and JPEG images are supported", http.StatusBadRequest)
		return
	}

	img, _, err := image.Decode(file)
	if err != nil {
		http.Error(w, "invalid image: "+err.Error(), http.StatusBadRequest)
		return
	}

	bounds := img.Bounds()
	pixelW := bounds.Dx()
	pixelH := bounds.Dy()

	artworkID := typeid.NewArtworkID()
	filename := artworkID + ".png"
	filePath := filepath.Join(h.dir, filename)

	out, err := os.Create(filePath)
	if err != nil {
		slog.Error("create artwork file", "error", err)
		http.Error(w, "failed to save file", http.StatusInternalServerError)
		return
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		slog.Error("encode png", "error", err)
		os.Remove(filePath)
		http.Error(w, "failed to encode image", http.StatusInternalServerError)
		return
	}

	resp := UploadResponse{
		ID:          artworkID,
		URL:         fmt.Sprintf("/artwork/%s", filename),
		PixelWidth:  pixelW,
		PixelHeight: pixelH,
		PrintWidth:  float64(pixelW) / h.dpi,
		PrintHeight: float64(pixelH) / h.dpi,
		Name:        header.Filename,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Serve returns an http.Handler that serves stored artwork with caching
// headers. Artwork ids are unique, so files are immutable.
func (h *Handler) Serve() http.Handler {
	fs := http.FileServer(http.Dir(h.dir))
	return http.StripPrefix("/artwork/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}

// Delete handles DELETE /api/artwork/{artworkId} and removes the stored
// file from disk.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	artworkID := mux.Vars(r)["artworkId"]
	if err := typeid.Validate(artworkID, typeid.PrefixArtwork); err != nil {
		http.Error(w, "invalid artwork id", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.dir, artworkID+".png")
	if err := os.Remove(path); err != nil {
		http.Error(w, "artwork not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
