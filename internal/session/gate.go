package session

import (
	"errors"
	"time"

	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/storage"
)

// DefaultTTL is how long a recorded session stays valid.
const DefaultTTL = time.Hour

// ErrNotAuthenticated is returned when an operation needs a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

// KV is the subset of the key-value adapter the gate needs.
type KV interface {
	Get(key string, out any) bool
	Set(key string, value any) bool
	Remove(key string)
}

// Action is the outcome of a route check.
type Action int

const (
	Allow Action = iota
	RedirectToSignin
	RedirectToHome
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case RedirectToSignin:
		return "redirect-signin"
	case RedirectToHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Gate decides whether the local session is live and which pages may render.
type Gate struct {
	kv     KV
	ttl    time.Duration
	routes Routes
	now    func() time.Time
}

func NewGate(kv KV, ttl time.Duration) *Gate {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Gate{kv: kv, ttl: ttl, routes: DefaultRoutes(), now: time.Now}
}

// TTL returns the session lifetime.
func (g *Gate) TTL() time.Duration {
	return g.ttl
}

// Routes returns the route table in use.
func (g *Gate) Routes() Routes {
	return g.routes
}

// SetRoutes replaces the route table.
func (g *Gate) SetRoutes(r Routes) {
	g.routes = r
}

// Record stores a fresh session issued now.
func (g *Gate) Record(token string, user storage.User) error {
	if token == "" {
		return errors.New("recording session: empty token")
	}
	if err := user.Validate(); err != nil {
		return err
	}
	s := storage.Session{Token: token, IssuedAt: g.now(), User: user}
	if !g.kv.Set(storage.KeySession, s) {
		return storage.ErrStorage
	}
	debuglog.WithFields(map[string]any{"user": user.ID}).Infof("session recorded")
	return nil
}

// Clear drops the session and the profile cached with it.
func (g *Gate) Clear() {
	g.kv.Remove(storage.KeySession)
	g.kv.Remove(storage.KeyProfile)
}

// load returns the stored session if it is well formed.
func (g *Gate) load() (storage.Session, bool) {
	var s storage.Session
	if !g.kv.Get(storage.KeySession, &s) {
		return storage.Session{}, false
	}
	if s.Token == "" || s.IssuedAt.IsZero() || s.User.Validate() != nil {
		debuglog.Warnf("session record malformed, treating as signed out")
		return storage.Session{}, false
	}
	return s, true
}

// IsAuthenticated reports whether a session exists and is younger than the
// TTL. An expired session is cleared.
func (g *Gate) IsAuthenticated() bool {
	_, ok := g.Current()
	return ok
}

// Current returns the live session, clearing it when expired.
func (g *Gate) Current() (storage.Session, bool) {
	s, ok := g.load()
	if !ok {
		return storage.Session{}, false
	}
	if g.now().Sub(s.IssuedAt) >= g.ttl {
		debuglog.Infof("session expired after %s", g.ttl)
		g.Clear()
		return storage.Session{}, false
	}
	return s, true
}

// Token returns the bearer token of the live session.
func (g *Gate) Token() (string, error) {
	s, ok := g.Current()
	if !ok {
		return "", ErrNotAuthenticated
	}
	return s.Token, nil
}

// CurrentUserID extracts the user id from the stored session record. A
// missing or malformed record yields ok == false.
func (g *Gate) CurrentUserID() (string, bool) {
	s, ok := g.load()
	if !ok || s.User.ID == "" {
		return "", false
	}
	return s.User.ID, true
}

// GuardRoute decides whether path may render for the current session.
func (g *Gate) GuardRoute(path string) Action {
	path = cleanPath(path)
	switch {
	case g.routes.isProtected(path) && !g.IsAuthenticated():
		return RedirectToSignin
	case g.routes.isAuthOnly(path) && g.IsAuthenticated():
		return RedirectToHome
	default:
		return Allow
	}
}

// Target returns the page an action redirects to, or "" for Allow.
func (g *Gate) Target(a Action) string {
	switch a {
	case RedirectToSignin:
		return g.routes.Signin
	case RedirectToHome:
		return g.routes.Home
	default:
		return ""
	}
}
