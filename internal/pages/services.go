// Package pages holds one controller per screen of the client. Controllers
// share a Services value and keep no other global state.
package pages

//go:generate mockgen -source=services.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/pders01/ellux/internal/backend"
	"github.com/pders01/ellux/internal/favorites"
	"github.com/pders01/ellux/internal/search"
	"github.com/pders01/ellux/internal/session"
	"github.com/pders01/ellux/internal/storage"
)

// Backend is the account service.
type Backend interface {
	Login(ctx context.Context, creds backend.Credentials) (backend.LoginResult, error)
	Signup(ctx context.Context, reg backend.Registration) error
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) (backend.ResetToken, error)
	ResetPassword(ctx context.Context, reset backend.PasswordReset) error
	GetProfile(ctx context.Context, token string) (storage.Profile, error)
	UpdateProfile(ctx context.Context, token string, fields storage.ProfileFields) (storage.Profile, error)
	DeleteProfile(ctx context.Context, token string) error
	Logout(ctx context.Context, token string) error
}

// NewsSource returns the articles for the home page and the name of the
// source that served them.
type NewsSource interface {
	Fetch(ctx context.Context) ([]storage.Article, string, error)
}

// Searcher finds favorites by text.
type Searcher interface {
	Search(userID, query string, limit int) ([]*search.Result, error)
}

// KV is the key-value adapter as seen by the pages.
type KV interface {
	Get(key string, out any) bool
	Set(key string, value any) bool
	Remove(key string)
}

// Services is everything a controller may use.
type Services struct {
	KV        KV
	Gate      *session.Gate
	Favorites *favorites.Store
	Backend   Backend
	News      NewsSource
	Search    Searcher
	PerPage   int
	Now       func() time.Time
}

func (s *Services) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// guard turns a route decision into a *Redirect error.
func (s *Services) guard(path string) error {
	action := s.Gate.GuardRoute(path)
	if action == session.Allow {
		return nil
	}
	return &Redirect{To: s.Gate.Target(action)}
}

// signedInUser returns the user of the live session. An expired session
// counts as signed out.
func (s *Services) signedInUser() (string, bool) {
	sess, ok := s.Gate.Current()
	if !ok {
		return "", false
	}
	return sess.User.ID, true
}

// rememberEmail keeps email for prefilling the next form.
func (s *Services) rememberEmail(email string) {
	s.KV.Set(storage.KeyTempEmail, email)
}

// RememberedEmail returns the email saved by sign-up or forgot-password.
func (s *Services) RememberedEmail() string {
	var email string
	s.KV.Get(storage.KeyTempEmail, &email)
	return email
}
