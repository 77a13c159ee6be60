package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/teewatch/teewatch/internal/api/middleware"
	"github.com/teewatch/teewatch/internal/application/services"
	"github.com/teewatch/teewatch/internal/domain/entities"
)

// WatchHandler serves watch status, toggle and listing. Status fails
// open: an anonymous or failed lookup reads as "not watched".
type WatchHandler struct {
	watches *services.WatchService
}

// NewWatchHandler creates a new watch handler.
func NewWatchHandler(watches *services.WatchService) *WatchHandler {
	return &WatchHandler{watches: watches}
}

type toggleWatchRequest struct {
	Slot entities.DisplaySlot `json:"slot"`
	Date string               `json:"date"`
}

// CheckStatus handles GET /api/watches/status?url=
func (h *WatchHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		respondWithError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	email := ""
	if user := middleware.UserFromContext(r.Context()); user != nil {
		email = user.Email
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"url":     url,
		"watched": h.watches.CheckStatus(r.Context(), url, email),
	})
}

// Statuses handles POST /api/watches/statuses: batch status for the
// currently displayed slot set, returned as one complete mapping.
func (h *WatchHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slots []entities.DisplaySlot `json:"slots"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := ""
	if user := middleware.UserFromContext(r.Context()); user != nil {
		email = user.Email
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"statuses": h.watches.Statuses(r.Context(), email, req.Slots),
	})
}

// Toggle handles POST /api/watches/toggle
func (h *WatchHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "sign in to watch tee times")
		return
	}

	var req toggleWatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Slot.DetailURL == "" {
		respondWithError(w, http.StatusBadRequest, "slot detail_url is required")
		return
	}

	date, err := time.Parse(searchDateLayout, req.Date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	watched, err := h.watches.Toggle(r.Context(), user.Email, req.Slot, date)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"watched": watched,
	})
}

// ListWatches handles GET /api/watches
func (h *WatchHandler) ListWatches(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	watches, err := h.watches.List(r.Context(), user.Email)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if watches == nil {
		watches = []*entities.WatchEntry{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"watches": watches,
		"count":   len(watches),
	})
}
