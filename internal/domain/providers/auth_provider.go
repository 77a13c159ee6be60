package providers

import (
	"context"

	"github.com/teewatch/teewatch/internal/domain/entities"
)

// AuthProvider is the external auth service consumed as a black box.
// Every call is an opaque network round trip; token verification happens
// on the auth service, never locally.
type AuthProvider interface {
	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*entities.Session, error)

	// SignOut revokes the session behind the access token.
	SignOut(ctx context.Context, accessToken string) error

	// SendPasswordReset asks the auth service to mail a reset link.
	SendPasswordReset(ctx context.Context, email, redirectTo string) error

	// GetUser resolves an access token to its user.
	GetUser(ctx context.Context, accessToken string) (*entities.User, error)
}
