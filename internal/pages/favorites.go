package pages

import (
	"net/url"

	"github.com/pders01/ellux/internal/backend"
	"github.com/pders01/ellux/internal/search"
	"github.com/pders01/ellux/internal/storage"
)

const favoritesPath = "/favorites.html"

// Favorites shows the signed-in user's saved articles.
type Favorites struct {
	svc    *Services
	userID string
}

func NewFavorites(svc *Services) *Favorites {
	return &Favorites{svc: svc}
}

// Open requires a live session. Without one it redirects to sign-in with a
// redirect back to this page.
func (f *Favorites) Open() error {
	uid, ok := f.svc.Gate.CurrentUserID()
	if !f.svc.Gate.IsAuthenticated() || !ok {
		return &Redirect{
			To:    f.svc.Gate.Routes().Signin,
			Query: url.Values{"redirect": {"favorites.html"}},
		}
	}
	if err := f.svc.guard(favoritesPath); err != nil {
		return err
	}
	f.userID = uid
	return nil
}

// UserID is the user whose favorites are shown.
func (f *Favorites) UserID() string { return f.userID }

// List returns the favorites in insertion order.
func (f *Favorites) List() []storage.FavoriteArticle {
	return f.svc.Favorites.List(f.userID)
}

// Remove deletes the entry at index; out of range is ignored.
func (f *Favorites) Remove(index int) {
	f.svc.Favorites.RemoveAt(f.userID, index)
}

// Search finds favorites by text. Queries shorter than two characters
// return nothing.
func (f *Favorites) Search(query string, limit int) ([]*search.Result, error) {
	if f.svc.Search == nil {
		return []*search.Result{}, nil
	}
	results, err := f.svc.Search.Search(f.userID, query, limit)
	if err != nil {
		return nil, userError("favorites", backend.OpGeneral, err)
	}
	return results, nil
}
