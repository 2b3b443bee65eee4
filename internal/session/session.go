// Package session issues and validates signed, time-bounded session tokens.
//
// Tokens are stateless HS256 JWTs carried in an HttpOnly cookie. Validation
// fails closed: any signature mismatch, malformed token or expiry resolves
// to "no identity" rather than an error. There is no server-side blacklist;
// revocation means clearing the cookie on the client.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/task-tracker/internal/model"
)

// CookieName is the session cookie used by the web layer.
const CookieName = "session"

type claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and validates session tokens.
type Manager struct {
	signKey      []byte
	duration     time.Duration
	activeWindow time.Duration
}

// NewManager constructs a Manager. duration is the token lifetime;
// activeWindow is the sliding-expiration window: a validated token with less
// than activeWindow of life left is reissued with a fresh duration.
func NewManager(signKey []byte, duration, activeWindow time.Duration) *Manager {
	return &Manager{signKey: signKey, duration: duration, activeWindow: activeWindow}
}

// Duration returns the configured token lifetime.
func (m *Manager) Duration() time.Duration { return m.duration }

// Issue produces a signed token embedding the identity and an expiry of now+duration.
func (m *Manager) Issue(id model.Identity) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.duration)
	c := claims{
		Username: id.Username,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := tok.SignedString(m.signKey)
	return signed, exp, err
}

// Validate resolves the identity from a token. It never returns an error:
// anything but a well-formed, correctly signed, unexpired token yields
// ok=false. When the token is inside the active window, refreshed carries a
// reissued token the caller should hand back to the client.
func (m *Manager) Validate(token string) (id model.Identity, refreshed string, ok bool) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.signKey, nil
	})
	if err != nil || !parsed.Valid || c.Subject == "" || c.ExpiresAt == nil {
		return model.Identity{}, "", false
	}

	id = model.Identity{UserID: c.Subject, Username: c.Username, Email: c.Email}

	if time.Until(c.ExpiresAt.Time) < m.activeWindow {
		if t, _, err := m.Issue(id); err == nil {
			refreshed = t
		}
	}
	return id, refreshed, true
}
