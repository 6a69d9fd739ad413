package auth

import (
	"log/slog"
	"time"

	"github.com/teemow/contactkeeper/internal/logging"
)

// Credentials is the per-user credential record for one OAuth provider.
// Only the Manager mutates it; everything else treats it as read-only.
type Credentials struct {
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string

	// ExpiresAt is the absolute expiry of the access token. A zero
	// value means the token carries no expiry and is treated as valid.
	ExpiresAt time.Time

	Scopes []string
}

// Expired reports whether the access token is expired or will expire
// within the given safety margin.
func (c *Credentials) Expired(margin time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(c.ExpiresAt)
}

// Clone returns a deep copy of the credentials.
func (c *Credentials) Clone() *Credentials {
	out := *c
	if c.Scopes != nil {
		out.Scopes = append([]string(nil), c.Scopes...)
	}
	return &out
}

// LogValue implements slog.LogValuer so credentials are always redacted
// when logged. Token material never appears in plaintext.
func (c *Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user_hash", logging.AnonymizeUser(c.UserID)),
		slog.String("provider", c.Provider),
		slog.String("access_token", logging.SanitizeToken(c.AccessToken)),
		slog.String("refresh_token", logging.SanitizeToken(c.RefreshToken)),
		slog.Time("expires_at", c.ExpiresAt),
	)
}
