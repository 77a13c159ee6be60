package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/teewatch/teewatch/pkg/errors"
)

func TestGoTrueAdapter_SignInWithPassword(t *testing.T) {
	t.Run("returns a session on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/auth/v1/token", r.URL.Path)
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			assert.Equal(t, "test-key", r.Header.Get("apikey"))

			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "golfer@example.com", payload["email"])

			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "token-123",
				"refresh_token": "refresh-456",
				"expires_in":    3600,
				"user": map[string]string{
					"id":    "user-1",
					"email": "golfer@example.com",
				},
			})
		}))
		defer server.Close()

		adapter := NewGoTrueAdapter(server.URL, "test-key")
		session, err := adapter.SignInWithPassword(context.Background(), "golfer@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "token-123", session.AccessToken)
		assert.Equal(t, "golfer@example.com", session.User.Email)
	})

	t.Run("maps bad credentials to auth required", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		adapter := NewGoTrueAdapter(server.URL, "test-key")
		session, err := adapter.SignInWithPassword(context.Background(), "golfer@example.com", "wrong")
		assert.Nil(t, session)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthRequired))
	})
}

func TestGoTrueAdapter_GetUser(t *testing.T) {
	t.Run("resolves the token to a user", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/v1/user", r.URL.Path)
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]string{
				"id":    "user-1",
				"email": "golfer@example.com",
			})
		}))
		defer server.Close()

		adapter := NewGoTrueAdapter(server.URL, "test-key")
		user, err := adapter.GetUser(context.Background(), "token-123")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("maps expired tokens to auth required", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		adapter := NewGoTrueAdapter(server.URL, "test-key")
		user, err := adapter.GetUser(context.Background(), "stale-token")
		assert.Nil(t, user)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeAuthRequired))
	})
}

func TestGoTrueAdapter_SendPasswordReset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/recover", r.URL.Path)
		assert.Equal(t, "https://app.example.com/update-password", r.URL.Query().Get("redirect_to"))
	}))
	defer server.Close()

	adapter := NewGoTrueAdapter(server.URL, "test-key")
	err := adapter.SendPasswordReset(context.Background(), "golfer@example.com", "https://app.example.com/update-password")
	assert.NoError(t, err)
}
