// Package favorites keeps the per-user and anonymous sets of saved articles.
package favorites

import (
	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/storage"
)

// KV is the subset of the key-value adapter the store needs.
type KV interface {
	Get(key string, out any) bool
	Set(key string, value any) bool
	Remove(key string)
}

// Listener is told about every successful change to a user's set. The
// anonymous set is reported with an empty userID.
type Listener interface {
	OnFavoritesChanged(userID string, list []storage.FavoriteArticle)
}

type Store struct {
	kv        KV
	listeners []Listener
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// AddListener registers l for change notifications.
func (s *Store) AddListener(l Listener) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

// List returns the user's favorites in insertion order. An empty userID or a
// missing set yields an empty list.
func (s *Store) List(userID string) []storage.FavoriteArticle {
	if userID == "" {
		return []storage.FavoriteArticle{}
	}
	return s.load(storage.FavoritesKey(userID))
}

// ListAnonymous returns the favorites saved before signing in.
func (s *Store) ListAnonymous() []storage.FavoriteArticle {
	return s.load(storage.KeyAnonymousFavorites)
}

// Contains reports whether url is in the user's set.
func (s *Store) Contains(userID, url string) bool {
	if userID == "" || url == "" {
		return false
	}
	return indexOf(s.List(userID), url) >= 0
}

// ContainsAnonymous reports whether url is in the anonymous set.
func (s *Store) ContainsAnonymous(url string) bool {
	return url != "" && indexOf(s.ListAnonymous(), url) >= 0
}

// Toggle removes the article from the user's set if its url is already
// present and appends a trimmed copy otherwise. It returns false when nothing
// was persisted.
func (s *Store) Toggle(userID string, article storage.Article) bool {
	if userID == "" {
		debuglog.Warnf("favorites toggle without a user id")
		return false
	}
	return s.toggle(userID, storage.FavoritesKey(userID), article)
}

// ToggleAnonymous is Toggle against the anonymous set.
func (s *Store) ToggleAnonymous(article storage.Article) bool {
	return s.toggle("", storage.KeyAnonymousFavorites, article)
}

func (s *Store) toggle(userID, key string, article storage.Article) bool {
	if article.URL == "" {
		debuglog.Warnf("favorites toggle for article without url")
		return false
	}

	list := s.load(key)
	if i := indexOf(list, article.URL); i >= 0 {
		list = append(list[:i], list[i+1:]...)
	} else {
		list = append(list, article.Favorite())
	}
	return s.save(userID, key, list)
}

// RemoveAt deletes the entry at index. An out-of-range index is a logged
// no-op.
func (s *Store) RemoveAt(userID string, index int) {
	if userID == "" {
		return
	}
	key := storage.FavoritesKey(userID)
	list := s.load(key)
	if index < 0 || index >= len(list) {
		debuglog.WithFields(map[string]any{"user": userID, "index": index, "len": len(list)}).
			Warnf("favorites remove index out of range")
		return
	}
	list = append(list[:index], list[index+1:]...)
	s.save(userID, key, list)
}

// MigrateAnonymous appends every anonymous favorite the user does not
// already have and returns how many were added. The anonymous set is
// deleted only once something was migrated and persisted.
func (s *Store) MigrateAnonymous(userID string) int {
	if userID == "" {
		return 0
	}
	anon := s.ListAnonymous()
	if len(anon) == 0 {
		return 0
	}

	key := storage.FavoritesKey(userID)
	list := s.load(key)
	migrated := 0
	for _, fav := range anon {
		if fav.URL == "" || indexOf(list, fav.URL) >= 0 {
			continue
		}
		list = append(list, fav)
		migrated++
	}
	if migrated == 0 {
		return 0
	}
	if !s.save(userID, key, list) {
		return 0
	}

	s.kv.Remove(storage.KeyAnonymousFavorites)
	debuglog.WithFields(map[string]any{"user": userID, "count": migrated}).
		Infof("migrated anonymous favorites")
	return migrated
}

// DeleteAll drops the user's whole set.
func (s *Store) DeleteAll(userID string) {
	if userID == "" {
		return
	}
	s.kv.Remove(storage.FavoritesKey(userID))
	s.notify(userID, []storage.FavoriteArticle{})
}

func (s *Store) load(key string) []storage.FavoriteArticle {
	var list []storage.FavoriteArticle
	if !s.kv.Get(key, &list) || list == nil {
		return []storage.FavoriteArticle{}
	}
	return list
}

func (s *Store) save(userID, key string, list []storage.FavoriteArticle) bool {
	if !s.kv.Set(key, list) {
		return false
	}
	s.notify(userID, list)
	return true
}

func (s *Store) notify(userID string, list []storage.FavoriteArticle) {
	for _, l := range s.listeners {
		l.OnFavoritesChanged(userID, list)
	}
}

func indexOf(list []storage.FavoriteArticle, url string) int {
	for i, f := range list {
		if f.URL == url {
			return i
		}
	}
	return -1
}
