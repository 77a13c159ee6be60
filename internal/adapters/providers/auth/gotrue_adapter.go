package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/providers"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

// GoTrueAdapter implements AuthProvider against a GoTrue-compatible auth
// service. Tokens are never inspected locally; every check is a round trip.
type GoTrueAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGoTrueAdapter creates a new auth adapter.
func NewGoTrueAdapter(baseURL, apiKey string) providers.AuthProvider {
	return &GoTrueAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SignInWithPassword exchanges credentials for a session.
func (a *GoTrueAdapter) SignInWithPassword(ctx context.Context, email, password string) (*entities.Session, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode sign-in payload", err)
	}

	url := fmt.Sprintf("%s/auth/v1/token?grant_type=password", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build sign-in request", err)
	}
	a.addHeaders(req, "")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError("auth service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.NewAuthRequiredError("invalid email or password")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("auth service error: status %d", resp.StatusCode), nil)
	}

	var session entities.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, apperrors.NewUpstreamError("failed to decode auth response", err)
	}

	return &session, nil
}

// SignOut revokes the session behind the access token.
func (a *GoTrueAdapter) SignOut(ctx context.Context, accessToken string) error {
	url := fmt.Sprintf("%s/auth/v1/logout", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to build sign-out request", err)
	}
	a.addHeaders(req, accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("auth service unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return apperrors.NewUpstreamError(fmt.Sprintf("auth service error: status %d", resp.StatusCode), nil)
	}

	return nil
}

// SendPasswordReset asks the auth service to mail a reset link.
func (a *GoTrueAdapter) SendPasswordReset(ctx context.Context, email, redirectTo string) error {
	payload := map[string]string{"email": email}
	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewInternalError("failed to encode recover payload", err)
	}

	url := fmt.Sprintf("%s/auth/v1/recover", a.baseURL)
	if redirectTo != "" {
		url = fmt.Sprintf("%s?redirect_to=%s", url, redirectTo)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return apperrors.NewInternalError("failed to build recover request", err)
	}
	a.addHeaders(req, "")

	resp, err := a.client.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("auth service unreachable", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewUpstreamError(fmt.Sprintf("auth service error: status %d", resp.StatusCode), nil)
	}

	return nil
}

// GetUser resolves an access token to its user.
func (a *GoTrueAdapter) GetUser(ctx context.Context, accessToken string) (*entities.User, error) {
	url := fmt.Sprintf("%s/auth/v1/user", a.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user request", err)
	}
	a.addHeaders(req, accessToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError("auth service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, apperrors.NewAuthRequiredError("invalid or expired token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("auth service error: status %d", resp.StatusCode), nil)
	}

	var user entities.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, apperrors.NewUpstreamError("failed to decode user response", err)
	}

	return &user, nil
}

func (a *GoTrueAdapter) addHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("apikey", a.apiKey)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	}
}
