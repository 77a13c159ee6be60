package handlers

import (
	"io"
	"net/http"

	"github.com/teewatch/teewatch/internal/infrastructure/clients/teeoff"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

// TeeOffHandler exposes the raw provider proxy endpoints. Both pass the
// upstream status and body through unchanged; the proxy adds nothing.
type TeeOffHandler struct {
	provider teeoff.Client
}

// NewTeeOffHandler creates a new provider proxy handler.
func NewTeeOffHandler(provider teeoff.Client) *TeeOffHandler {
	return &TeeOffHandler{provider: provider}
}

// GeoCity handles GET /api/teeoff?city=<string>
func (h *TeeOffHandler) GeoCity(w http.ResponseWriter, r *http.Request) {
	city := r.URL.Query().Get("city")
	if city == "" {
		respondWithError(w, http.StatusBadRequest, "city query parameter is required")
		return
	}

	raw, err := h.provider.GeoCityRaw(r.Context(), city)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			respondWithError(w, http.StatusBadRequest, "city query parameter is required")
			return
		}
		observability.LoggerFromContext(r.Context()).Error().
			Err(err).
			Str("city", city).
			Msg("geocity proxy fetch failed")
		respondWithError(w, http.StatusInternalServerError, "failed to fetch from tee-time provider")
		return
	}

	writeRaw(w, raw)
}

// SearchTeeTimes handles POST /api/tee-times. The request body is
// forwarded to the provider verbatim.
func (h *TeeOffHandler) SearchTeeTimes(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	raw, err := h.provider.SearchRaw(r.Context(), body)
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error().
			Err(err).
			Msg("tee-time proxy fetch failed")
		respondWithError(w, http.StatusInternalServerError, "failed to fetch from tee-time provider")
		return
	}

	writeRaw(w, raw)
}

func writeRaw(w http.ResponseWriter, raw *teeoff.RawResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(raw.StatusCode)
	w.Write(raw.Body)
}
