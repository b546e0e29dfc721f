package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muster/personnel-engine/muster"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeSessionStore struct {
	sessions map[string]Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]Session)}
}

func (f *fakeSessionStore) SaveSession(_ context.Context, s Session) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeSessionStore) GetSession(_ context.Context, token string) (*Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionStore) DeleteSessionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for token, s := range f.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(f.sessions, token)
			n++
		}
	}
	return n, nil
}

type fakeUserStore struct {
	users map[string]muster.User
}

func (f *fakeUserStore) GetUser(_ context.Context, username string) (*muster.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUserStore) SaveUser(_ context.Context, u muster.User) error {
	f.users[u.Username] = u
	return nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, u muster.User, _ bool) error {
	f.users[u.Username] = u
	return nil
}

func (f *fakeUserStore) DeleteUser(_ context.Context, username string) error {
	delete(f.users, username)
	return nil
}

func (f *fakeUserStore) SearchUsers(_ context.Context, _ string, _, _ int) ([]muster.User, int, error) {
	return nil, 0, nil
}

// =============================================================================
// SETUP
// =============================================================================

func newTestGuard(t *testing.T) (*Guard, *fakeSessionStore, *fakeUserStore, *time.Time) {
	t.Helper()

	hasher := Hasher{}
	salt, err := hasher.NewSalt()
	require.NoError(t, err)

	users := &fakeUserStore{users: map[string]muster.User{
		"somchai": {
			Username:   "somchai",
			Salt:       salt,
			Key:        hasher.Hash("Secret123", salt),
			Department: "กบว.",
			Role:       "user",
		},
	}}

	now := time.Unix(1_700_000_000, 0)
	sessions := newFakeSessionStore()
	g := NewGuard(sessions, users, NewLockoutLimiter(5, 5*time.Minute), 30*time.Minute,
		WithGuardClock(func() time.Time { return now }))
	return g, sessions, users, &now
}

func requestWithCookie(cookie *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api", nil)
	if cookie != nil {
		r.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	return r
}

// =============================================================================
// LOGIN
// =============================================================================

func TestGuard_Login_IssuesSessionCookie(t *testing.T) {
	g, sessions, _, _ := newTestGuard(t)
	ctx := context.Background()

	user, cookie, err := g.Login(ctx, "10.0.0.1", "somchai", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "somchai", user.Username)

	assert.Equal(t, CookieName, cookie.Name)
	assert.Len(t, cookie.Value, 32, "token is 32 hex characters")
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, 1800, cookie.MaxAge)

	_, ok := sessions.sessions[cookie.Value]
	assert.True(t, ok, "session persisted under the token")
}

func TestGuard_Login_WrongPassword(t *testing.T) {
	g, _, _, _ := newTestGuard(t)

	_, _, err := g.Login(context.Background(), "10.0.0.1", "somchai", "WrongPass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGuard_Login_UnknownUserSameError(t *testing.T) {
	// Unknown user and wrong password must be indistinguishable.
	g, _, _, _ := newTestGuard(t)

	_, _, err := g.Login(context.Background(), "10.0.0.1", "nobody", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGuard_Login_LockoutAfterRepeatedFailures(t *testing.T) {
	// GIVEN: five failed attempts from one address
	// WHEN: a sixth attempt arrives, even with the RIGHT password
	// THEN: it is refused before credentials are checked

	g, _, _, _ := newTestGuard(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _, err := g.Login(ctx, "10.0.0.1", "somchai", "WrongPass1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, _, err := g.Login(ctx, "10.0.0.1", "somchai", "Secret123")
	var locked *LockedOutError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 5*time.Minute, locked.RetryAfter)

	// Another address is unaffected.
	_, _, err = g.Login(ctx, "10.0.0.2", "somchai", "Secret123")
	assert.NoError(t, err)
}

// =============================================================================
// AUTHENTICATE
// =============================================================================

func TestGuard_Authenticate_ResolvesFreshUser(t *testing.T) {
	// Role changes take effect on the next request, not the next login.

	g, _, users, _ := newTestGuard(t)
	ctx := context.Background()

	_, cookie, err := g.Login(ctx, "10.0.0.1", "somchai", "Secret123")
	require.NoError(t, err)

	u := users.users["somchai"]
	u.Role = "admin"
	users.users["somchai"] = u

	resolved, err := g.Authenticate(ctx, requestWithCookie(cookie))
	require.NoError(t, err)
	assert.Equal(t, "admin", resolved.Role)
}

func TestGuard_Authenticate_ExpiredSessionPurged(t *testing.T) {
	// GIVEN: a session older than the 30 minute TTL
	// WHEN: the next request arrives
	// THEN: it is rejected and the stale row is swept

	g, sessions, _, now := newTestGuard(t)
	ctx := context.Background()

	_, cookie, err := g.Login(ctx, "10.0.0.1", "somchai", "Secret123")
	require.NoError(t, err)

	*now = now.Add(30*time.Minute + time.Second)

	_, err = g.Authenticate(ctx, requestWithCookie(cookie))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, sessions.sessions, "expired rows are swept lazily")
}

func TestGuard_Authenticate_NoCookie(t *testing.T) {
	g, _, _, _ := newTestGuard(t)

	_, err := g.Authenticate(context.Background(), requestWithCookie(nil))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestGuard_Authenticate_DeletedUserRejected(t *testing.T) {
	g, _, users, _ := newTestGuard(t)
	ctx := context.Background()

	_, cookie, err := g.Login(ctx, "10.0.0.1", "somchai", "Secret123")
	require.NoError(t, err)

	delete(users.users, "somchai")

	_, err = g.Authenticate(ctx, requestWithCookie(cookie))
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

// =============================================================================
// LOGOUT
// =============================================================================

func TestGuard_Logout_Idempotent(t *testing.T) {
	g, sessions, _, _ := newTestGuard(t)
	ctx := context.Background()

	_, cookie, err := g.Login(ctx, "10.0.0.1", "somchai", "Secret123")
	require.NoError(t, err)

	clearing, err := g.Logout(ctx, requestWithCookie(cookie))
	require.NoError(t, err)
	assert.Empty(t, sessions.sessions)
	assert.Equal(t, -1, clearing.MaxAge)
	assert.Empty(t, clearing.Value)

	// Second logout with the same (now dead) cookie still succeeds.
	_, err = g.Logout(ctx, requestWithCookie(cookie))
	assert.NoError(t, err)

	// And logging out with no cookie at all is fine too.
	_, err = g.Logout(ctx, requestWithCookie(nil))
	assert.NoError(t, err)
}
