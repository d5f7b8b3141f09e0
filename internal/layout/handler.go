package layout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/printloom/printloom/backend-go/internal/auth"
	"github.com/printloom/printloom/backend-go/internal/canvas"
	"github.com/printloom/printloom/backend-go/internal/geometry"
	"github.com/printloom/printloom/backend-go/internal/ledger"
	"github.com/printloom/printloom/backend-go/internal/typeid"
)

// Broadcaster pushes applied-layout events to clients watching a canvas.
type Broadcaster interface {
	LayoutApplied(canvasID string, payload interface{})
}

// Handler is the HTTP boundary for the layout engines. It validates the
// geometry, clears the request through the credit gate, runs the engine,
// and persists the result, releasing the held charge if anything after the
// reservation fails.
type Handler struct {
	gate     ledger.Gate
	canvases *canvas.Service
	rooms    Broadcaster
}

func NewHandler(gate ledger.Gate, canvases *canvas.Service, rooms Broadcaster) *Handler {
	return &Handler{gate: gate, canvases: canvases, rooms: rooms}
}

type layerInput struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// layoutRequest carries optional geometry overrides. Anything omitted falls
// back to the stored canvas document.
type layoutRequest struct {
	SheetWidth  float64      `json:"sheetWidth,omitempty"`
	SheetHeight float64      `json:"sheetHeight,omitempty"`
	Layers      []layerInput `json:"layers,omitempty"`
	Padding     *float64     `json:"padding,omitempty"`
}

type autoNestResponse struct {
	Positions   []geometry.Placement `json:"positions"`
	Efficiency  int                  `json:"efficiency"`
	WastedSpace float64              `json:"wastedSpace"`
	Diagnostics []Diagnostic         `json:"diagnostics,omitempty"`
	Version     int32                `json:"version"`
}

type smartFillResponse struct {
	Duplicates []Duplicate `json:"duplicates"`
	Coverage   int         `json:"coverage"`
	TotalAdded int         `json:"totalAdded"`
	Version    int32       `json:"version"`
}

// AutoNest handles POST /api/canvases/{canvasId}/auto-nest.
func (h *Handler) AutoNest(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	canvasID := mux.Vars(r)["canvasId"]

	doc, version, req, ok := h.prepare(w, r, canvasID, userID)
	if !ok {
		return
	}

	sheet, layers, padding := resolveGeometry(doc, req)
	if err := Validate(sheet, layers, padding); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, ok := h.reserve(w, r, userID, ledger.FeatureAutoNest)
	if !ok {
		return
	}

	result := AutoNest(sheet, layers, padding)

	doc.ApplyPlacements(result.Placements)
	newVersion, err := h.canvases.SaveDocument(r.Context(), canvasID, version, doc)
	if err != nil {
		h.release(r, res)
		slog.Error("save auto-nest result", "error", err, "canvas", canvasID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.commit(r, res)

	h.rooms.LayoutApplied(canvasID, map[string]interface{}{
		"feature":    string(ledger.FeatureAutoNest),
		"version":    newVersion,
		"efficiency": result.EfficiencyPercent,
	})

	writeJSON(w, http.StatusOK, autoNestResponse{
		Positions:   result.Placements,
		Efficiency:  result.EfficiencyPercent,
		WastedSpace: result.WastedArea,
		Diagnostics: result.Diagnostics,
		Version:     newVersion,
	})
}

// SmartFill handles POST /api/canvases/{canvasId}/smart-fill.
func (h *Handler) SmartFill(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	canvasID := mux.Vars(r)["canvasId"]

	doc, version, req, ok := h.prepare(w, r, canvasID, userID)
	if !ok {
		return
	}

	sheet, layers, padding := resolveGeometry(doc, req)
	if err := Validate(sheet, layers, padding); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, ok := h.reserve(w, r, userID, ledger.FeatureSmartFill)
	if !ok {
		return
	}

	result := SmartFill(sheet, layers, padding)

	appendDuplicates(doc, result.Duplicates)
	newVersion, err := h.canvases.SaveDocument(r.Context(), canvasID, version, doc)
	if err != nil {
		h.release(r, res)
		slog.Error("save smart-fill result", "error", err, "canvas", canvasID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.commit(r, res)

	h.rooms.LayoutApplied(canvasID, map[string]interface{}{
		"feature":    string(ledger.FeatureSmartFill),
		"version":    newVersion,
		"totalAdded": result.TotalAdded,
		"coverage":   result.CoveragePercent,
	})

	writeJSON(w, http.StatusOK, smartFillResponse{
		Duplicates: result.Duplicates,
		Coverage:   result.CoveragePercent,
		TotalAdded: result.TotalAdded,
		Version:    newVersion,
	})
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request, canvasID, userID string) (*canvas.Document, int32, *layoutRequest, bool) {
	var req layoutRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return nil, 0, nil, false
		}
	}

	doc, version, err := h.canvases.LoadDocument(r.Context(), canvasID, userID)
	if err != nil {
		handleCanvasError(w, err)
		return nil, 0, nil, false
	}
	return doc, version, &req, true
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request, userID string, feature ledger.Feature) (*ledger.Reservation, bool) {
	res, err := h.gate.Reserve(r.Context(), userID, feature)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientCredits) {
			writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": "insufficient credits"})
			return nil, false
		}
		slog.Error("reserve credits", "error", err, "feature", feature)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return nil, false
	}
	return res, true
}

func (h *Handler) commit(r *http.Request, res *ledger.Reservation) {
	if err := h.gate.Commit(r.Context(), res.ID); err != nil {
		slog.Error("commit reservation", "error", err, "reservation", res.ID)
	}
}

func (h *Handler) release(r *http.Request, res *ledger.Reservation) {
	if err := h.gate.Release(r.Context(), res.ID); err != nil {
		slog.Error("release reservation", "error", err, "reservation", res.ID)
	}
}

// resolveGeometry merges request overrides over the stored document.
func resolveGeometry(doc *canvas.Document, req *layoutRequest) (geometry.Sheet, []geometry.Layer, float64) {
	sheet := doc.Sheet()
	if req.SheetWidth != 0 || req.SheetHeight != 0 {
		sheet = geometry.Sheet{Width: req.SheetWidth, Height: req.SheetHeight}
	}

	var layers []geometry.Layer
	if req.Layers != nil {
		layers = make([]geometry.Layer, len(req.Layers))
		for i, l := range req.Layers {
			layers[i] = geometry.Layer{ID: l.ID, Width: l.Width, Height: l.Height}
		}
	} else {
		layers = doc.EngineLayers()
	}

	padding := doc.Canvas.Padding
	if req.Padding != nil {
		padding = *req.Padding
	}

	return sheet, layers, padding
}

// appendDuplicates materializes smart-fill suggestions as real layers,
// cloning the geometry and artwork of their source layer.
func appendDuplicates(doc *canvas.Document, dups []Duplicate) {
	for _, d := range dups {
		src := doc.FindLayer(d.SourceID)
		if src == nil {
			continue
		}
		doc.Layers = append(doc.Layers, canvas.PlacedLayer{
			ID:         typeid.NewLayerID(),
			Name:       src.Name,
			Width:      src.Width,
			Height:     src.Height,
			X:          d.X,
			Y:          d.Y,
			Rotation:   d.Rotation,
			SourceID:   d.SourceID,
			ArtworkURL: src.ArtworkURL,
		})
	}
}

func handleCanvasError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, canvas.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, canvas.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		slog.Error("canvas error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
