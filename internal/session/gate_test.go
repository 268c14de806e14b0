package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/ellux/internal/storage"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate(t *testing.T) (*Gate, *storage.Store, *fakeClock) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	g := NewGate(store, DefaultTTL)
	g.now = clock.now
	return g, store, clock
}

func TestIsAuthenticated_FreshSession(t *testing.T) {
	g, _, _ := newTestGate(t)

	assert.False(t, g.IsAuthenticated())
	require.NoError(t, g.Record("tok", storage.User{ID: "u1"}))
	assert.True(t, g.IsAuthenticated())

	token, err := g.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestIsAuthenticated_ExpiresAtTTL(t *testing.T) {
	g, store, clock := newTestGate(t)

	require.NoError(t, g.Record("tok", storage.User{ID: "u1"}))
	store.Set(storage.KeyProfile, storage.Profile{User: storage.User{ID: "u1"}})

	clock.advance(DefaultTTL - time.Second)
	assert.True(t, g.IsAuthenticated(), "session should be live just before the TTL")

	clock.advance(time.Second)
	assert.False(t, g.IsAuthenticated(), "session should expire at exactly the TTL")
	assert.False(t, store.Has(storage.KeySession), "expired session must be cleared")
	assert.False(t, store.Has(storage.KeyProfile), "cached profile goes with the session")

	_, err := g.Token()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRecord_RejectsBadInput(t *testing.T) {
	g, _, _ := newTestGate(t)

	assert.Error(t, g.Record("", storage.User{ID: "u1"}))
	assert.ErrorIs(t, g.Record("tok", storage.User{Username: "no-id"}), storage.ErrMalformedUser)
	assert.False(t, g.IsAuthenticated())
}

func TestMalformedRecordsAreNotAuthenticated(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"wrong types", map[string]any{"token": 5, "issued_at": "yesterday"}},
		{"missing token", map[string]any{"issued_at": time.Now()}},
		{"missing issued at", map[string]any{"token": "tok"}},
		{"not an object", []int{1, 2, 3}},
		{"no user id", map[string]any{"token": "tok", "issued_at": time.Now(), "user": map[string]any{}}},
		{"no user", map[string]any{"token": "tok", "issued_at": time.Now()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, store, _ := newTestGate(t)
			require.True(t, store.Set(storage.KeySession, tt.value))

			assert.False(t, g.IsAuthenticated())
			id, ok := g.CurrentUserID()
			assert.False(t, ok)
			assert.Empty(t, id)
			assert.Equal(t, RedirectToSignin, g.GuardRoute("/profile.html"))
			assert.Equal(t, Allow, g.GuardRoute("/signin.html"))
		})
	}
}

func TestCurrentUserID(t *testing.T) {
	g, store, _ := newTestGate(t)

	_, ok := g.CurrentUserID()
	assert.False(t, ok)

	require.NoError(t, g.Record("tok", storage.User{ID: "u42", Username: "reader"}))
	id, ok := g.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, "u42", id)

	// A record written by an older client with a mongo-style id still resolves.
	require.True(t, store.Set(storage.KeySession, map[string]any{
		"token":     "tok",
		"issued_at": time.Now(),
		"user":      map[string]any{"_id": "m1"},
	}))
	id, ok = g.CurrentUserID()
	assert.True(t, ok)
	assert.Equal(t, "m1", id)
}

func TestGuardRoute(t *testing.T) {
	tests := []struct {
		path         string
		signedIn     Action
		signedOut    Action
		signedInDesc string
	}{
		{"/", Allow, RedirectToSignin, "home"},
		{"/index.html", Allow, RedirectToSignin, "index"},
		{"/profile.html?tab=1", Allow, RedirectToSignin, "profile with query"},
		{"/favorites.html", Allow, RedirectToSignin, "favorites"},
		{"/signin.html", RedirectToHome, Allow, "signin"},
		{"/auth/signup.html", RedirectToHome, Allow, "signup nested"},
		{"/about.html", Allow, Allow, "public page"},
		{"/forgot-password.html", Allow, Allow, "forgot password"},
	}

	for _, tt := range tests {
		t.Run(tt.signedInDesc, func(t *testing.T) {
			g, _, _ := newTestGate(t)
			assert.Equal(t, tt.signedOut, g.GuardRoute(tt.path), "signed out")

			require.NoError(t, g.Record("tok", storage.User{ID: "u1"}))
			assert.Equal(t, tt.signedIn, g.GuardRoute(tt.path), "signed in")
		})
	}
}

func TestGuardRoute_AfterExpiry(t *testing.T) {
	g, _, clock := newTestGate(t)
	require.NoError(t, g.Record("tok", storage.User{ID: "u1"}))

	clock.advance(2 * time.Hour)
	assert.Equal(t, RedirectToSignin, g.GuardRoute("/"))
	assert.Equal(t, Allow, g.GuardRoute("/signin.html"))
}

func TestTargetAndActionString(t *testing.T) {
	g, _, _ := newTestGate(t)

	assert.Equal(t, "/signin.html", g.Target(RedirectToSignin))
	assert.Equal(t, "/index.html", g.Target(RedirectToHome))
	assert.Empty(t, g.Target(Allow))

	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "redirect-signin", RedirectToSignin.String())
	assert.Equal(t, "redirect-home", RedirectToHome.String())
}

func TestClear(t *testing.T) {
	g, _, _ := newTestGate(t)
	require.NoError(t, g.Record("tok", storage.User{ID: "u1"}))

	g.Clear()
	assert.False(t, g.IsAuthenticated())
}

func TestNewGate_DefaultsTTL(t *testing.T) {
	g := NewGate(nil, 0)
	assert.Equal(t, time.Hour, g.TTL())
}
