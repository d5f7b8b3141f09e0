package canvas

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/printloom/printloom/backend-go/internal/auth"
)

const maxManifestSize = 5 << 20 // 5MB

type Handler struct {
	service        *Service
	defaultPadding float64
}

func NewHandler(service *Service, defaultPadding float64) *Handler {
	return &Handler{service: service, defaultPadding: defaultPadding}
}

type createRequest struct {
	Name    string   `json:"name"`
	Width   float64  `json:"width"`
	Height  float64  `json:"height"`
	Padding *float64 `json:"padding,omitempty"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	padding := h.defaultPadding
	if req.Padding != nil {
		padding = *req.Padding
	}

	canvas, err := h.service.Create(r.Context(), req.Name, userID, req.Width, req.Height, padding)
	if err != nil {
		if errors.Is(err, ErrInvalidDimensions) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "width and height must be positive, padding must not be negative"})
			return
		}
		slog.Error("create canvas failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, canvas)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	canvasID := mux.Vars(r)["canvasId"]

	canvas, err := h.service.Get(r.Context(), canvasID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, canvas)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	canvases, err := h.service.List(r.Context(), userID)
	if err != nil {
		slog.Error("list canvases failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, canvases)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	canvasID := mux.Vars(r)["canvasId"]

	if err := h.service.Delete(r.Context(), canvasID, userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	canvasID := mux.Vars(r)["canvasId"]

	doc, err := h.service.GetLatestSnapshot(r.Context(), canvasID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// ImportLayers handles POST /api/canvases/{canvasId}/layers/import
// (multipart form with a "manifest" XLSX file).
func (h *Handler) ImportLayers(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	canvasID := mux.Vars(r)["canvasId"]

	r.Body = http.MaxBytesReader(w, r.Body, maxManifestSize)
	if err := r.ParseMultipartForm(maxManifestSize); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "manifest too large (max 5MB)"})
		return
	}

	file, _, err := r.FormFile("manifest")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "manifest file is required"})
		return
	}
	defer file.Close()

	doc, added, err := h.service.ImportLayers(r.Context(), canvasID, userID, file)
	if err != nil {
		if errors.Is(err, ErrEmptyManifest) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "manifest contains no layers"})
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":    added,
		"document": doc,
	})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		slog.Error("canvas service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
