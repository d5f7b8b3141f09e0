package ledger

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/printloom/printloom/backend-go/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetCredits handles GET /api/credits.
func (h *Handler) GetCredits(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	account, err := h.service.GetAccount(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "credit account not found"})
			return
		}
		slog.Error("get credits failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// GetCost handles GET /api/credits/cost?feature=auto-nest. The editor calls
// it before running an engine so it can tell the user whether the invocation
// will consume a free trial, spend a credit, or be declined.
func (h *Handler) GetCost(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	feature := Feature(r.URL.Query().Get("feature"))
	if _, err := Cost(feature); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown feature"})
		return
	}

	decision, err := h.service.CheckCost(r.Context(), userID, feature)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "credit account not found"})
			return
		}
		slog.Error("check cost failed", "error", err, "feature", feature)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, decision)
}

type topUpRequest struct {
	Amount int `json:"amount"`
}

// TopUp handles POST /api/credits/topup.
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be positive"})
		return
	}

	if err := h.service.AddCredits(r.Context(), userID, req.Amount); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "credit account not found"})
			return
		}
		slog.Error("top up failed", "error", err, "user", userID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	account, err := h.service.GetAccount(r.Context(), userID)
	if err != nil {
		slog.Error("get credits after top up", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
