package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/teewatch/teewatch/internal/api/middleware"
	"github.com/teewatch/teewatch/internal/domain/providers"
)

// AuthHandler proxies the external auth service. No credential or token
// is validated locally.
type AuthHandler struct {
	auth providers.AuthProvider
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(auth providers.AuthProvider) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type recoverRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.auth.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, session)
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerFromHeader(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := h.auth.SignOut(r.Context(), token); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Recover handles POST /api/auth/recover
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		respondWithError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.auth.SendPasswordReset(r.Context(), req.Email, req.RedirectTo); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "password reset email sent",
	})
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, "no active session")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user": user,
	})
}

func bearerFromHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
