/*
guard.go - Session lifecycle

PURPOSE:
  Login, cookie-based authentication and logout. Sessions are opaque
  random tokens persisted server-side; the cookie carries only the token.

LIFECYCLE:
  Login   -> lockout check, credential check, new token, Set-Cookie
  Request -> lazy sweep of expired rows, token lookup, fresh user load
  Logout  -> delete row, clear cookie (idempotent)

  Role and department are NEVER cached in the session: every request
  reloads the user, so an admin demotion or a department move takes
  effect on the next request.

SEE ALSO:
  - limiter.go: login lockout
  - hash.go: password verification
*/
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/muster/personnel-engine/muster"
)

// CookieName is the session cookie.
const CookieName = "session_token"

var (
	// ErrInvalidCredentials is returned for a wrong username or password.
	// Deliberately one error for both.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotAuthenticated is returned when a request carries no valid session.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when an authenticated user lacks the role an
	// action requires.
	ErrForbidden = errors.New("insufficient privileges")
)

// LockedOutError is returned when the client hit the login attempt limit.
type LockedOutError struct {
	RetryAfter time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("too many failed attempts, retry in %d seconds", int(e.RetryAfter.Seconds()+0.5))
}

// Session is one server-side login session.
type Session struct {
	Token     string
	Username  string
	CreatedAt time.Time
}

// Store persists sessions. Implemented by store/sqlite.
type Store interface {
	SaveSession(ctx context.Context, s Session) error

	// GetSession returns a session or nil when absent.
	GetSession(ctx context.Context, token string) (*Session, error)

	// DeleteSession is a no-op for unknown tokens.
	DeleteSession(ctx context.Context, token string) error

	// DeleteSessionsBefore purges sessions created before cutoff and
	// returns how many rows went.
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Guard authenticates requests and manages the login/logout flow.
type Guard struct {
	sessions Store
	users    muster.UserStore
	hasher   Hasher
	limiter  Limiter
	ttl      time.Duration
	now      func() time.Time
}

type GuardOption func(*Guard)

// WithGuardClock overrides the wall clock (tests).
func WithGuardClock(now func() time.Time) GuardOption {
	return func(g *Guard) { g.now = now }
}

func NewGuard(sessions Store, users muster.UserStore, limiter Limiter, ttl time.Duration, opts ...GuardOption) *Guard {
	g := &Guard{
		sessions: sessions,
		users:    users,
		limiter:  limiter,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login checks the lockout limiter, then the credentials, and on success
// issues a fresh session. clientKey is the caller's remote address.
func (g *Guard) Login(ctx context.Context, clientKey, username, password string) (*muster.User, *http.Cookie, error) {
	if ok, retryAfter := g.limiter.Allow(clientKey); !ok {
		return nil, nil, &LockedOutError{RetryAfter: retryAfter}
	}

	user, err := g.users.GetUser(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil || !g.hasher.Verify(password, user.Salt, user.Key) {
		g.limiter.RecordFailure(clientKey)
		return nil, nil, ErrInvalidCredentials
	}
	g.limiter.RecordSuccess(clientKey)

	token, err := newToken()
	if err != nil {
		return nil, nil, err
	}
	now := g.now()
	if err := g.sessions.SaveSession(ctx, Session{Token: token, Username: username, CreatedAt: now}); err != nil {
		return nil, nil, err
	}
	return user, g.cookie(token, now), nil
}

// Authenticate resolves the request's session cookie to a freshly loaded
// user. Expired rows are swept opportunistically before the lookup.
func (g *Guard) Authenticate(ctx context.Context, r *http.Request) (*muster.User, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNotAuthenticated
	}

	now := g.now()
	// Best effort; a failed sweep must not block the request.
	_, _ = g.sessions.DeleteSessionsBefore(ctx, now.Add(-g.ttl))

	sess, err := g.sessions.GetSession(ctx, c.Value)
	if err != nil {
		return nil, err
	}
	if sess == nil || now.Sub(sess.CreatedAt) > g.ttl {
		return nil, ErrNotAuthenticated
	}

	user, err := g.users.GetUser(ctx, sess.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// Logout deletes the request's session, if any, and returns the clearing
// cookie. Idempotent: logging out twice succeeds both times.
func (g *Guard) Logout(ctx context.Context, r *http.Request) (*http.Cookie, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if err := g.sessions.DeleteSession(ctx, c.Value); err != nil {
			return nil, err
		}
	}
	return g.clearingCookie(), nil
}

func (g *Guard) cookie(token string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(g.ttl.Seconds()),
		Expires:  now.Add(g.ttl),
	}
}

func (g *Guard) clearingCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	}
}

// newToken returns a 32-hex-character random session token.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
