package export

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/printloom/printloom/backend-go/internal/auth"
	"github.com/printloom/printloom/backend-go/internal/canvas"
)

type Handler struct {
	canvases      *canvas.Service
	canvasBaseURL string
}

func NewHandler(canvases *canvas.Service, canvasBaseURL string) *Handler {
	return &Handler{canvases: canvases, canvasBaseURL: canvasBaseURL}
}

// Proof handles GET /api/canvases/{canvasId}/proof.pdf.
func (h *Handler) Proof(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	canvasID := mux.Vars(r)["canvasId"]

	doc, _, err := h.canvases.LoadDocument(r.Context(), canvasID, userID)
	if err != nil {
		switch {
		case errors.Is(err, canvas.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, canvas.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			slog.Error("load canvas for proof", "error", err, "canvas", canvasID)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	var buf bytes.Buffer
	canvasURL := fmt.Sprintf("%s/%s", h.canvasBaseURL, canvasID)
	if err := RenderProof(&buf, doc, canvasURL); err != nil {
		slog.Error("render proof", "error", err, "canvas", canvasID)
		http.Error(w, "failed to render proof", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", canvasID+"-proof.pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
