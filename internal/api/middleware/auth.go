package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/teewatch/teewatch/internal/domain/entities"
	"github.com/teewatch/teewatch/internal/domain/providers"
	"github.com/teewatch/teewatch/internal/infrastructure/observability"
)

type contextKey string

const userContextKey contextKey = "auth.user"

const sessionCachePrefix = "session:"

// AuthMiddleware resolves Bearer tokens against the external auth
// service. Verification is always remote; a short Redis cache keeps the
// per-request cost down.
type AuthMiddleware struct {
	auth       providers.AuthProvider
	cache      providers.CacheProvider
	sessionTTL time.Duration
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(auth providers.AuthProvider, cache providers.CacheProvider, sessionTTL time.Duration) *AuthMiddleware {
	if sessionTTL <= 0 {
		sessionTTL = 5 * time.Minute
	}
	return &AuthMiddleware{
		auth:       auth,
		cache:      cache,
		sessionTTL: sessionTTL,
	}
}

// Optional resolves the user when a token is present and continues
// anonymously otherwise.
func (m *AuthMiddleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := m.resolve(r); user != nil {
			r = r.WithContext(WithUser(r.Context(), user))
		}
		next.ServeHTTP(w, r)
	})
}

// Required rejects requests without a resolvable user.
func (m *AuthMiddleware) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.resolve(r)
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) *entities.User {
	token := bearerToken(r)
	if token == "" {
		return nil
	}

	ctx := r.Context()
	cacheKey := sessionCachePrefix + token

	if m.cache != nil {
		if cached, err := m.cache.Get(ctx, cacheKey); err == nil {
			var user entities.User
			if err := json.Unmarshal(cached, &user); err == nil {
				return &user
			}
		}
	}

	user, err := m.auth.GetUser(ctx, token)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().
			Err(err).
			Msg("token did not resolve to a user")
		return nil
	}

	if m.cache != nil {
		if encoded, err := json.Marshal(user); err == nil {
			_ = m.cache.Set(ctx, cacheKey, encoded, int(m.sessionTTL.Seconds()))
		}
	}

	return user
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user *entities.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *entities.User {
	user, _ := ctx.Value(userContextKey).(*entities.User)
	return user
}
