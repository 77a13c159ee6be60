package entities

// User is the authenticated principal as reported by the external auth
// service. Auth itself is delegated entirely; we only carry the identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated session issued by the external auth service.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         User   `json:"user"`
}
