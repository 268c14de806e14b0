package storage

import "strings"

// Well-known keys. Everything the client persists lives under one of these.
const (
	KeySession            = "session"
	KeyProfile            = "userProfile"
	KeyAnonymousFavorites = "anonymous_favorites"
	KeyLastVisited        = "lastVisited"
	KeyTempEmail          = "temp-email"
)

const (
	favoritesPrefix = "user_"
	favoritesSuffix = "_favorites"
)

// FavoritesKey is the key of a user's favorites set.
func FavoritesKey(userID string) string {
	return favoritesPrefix + userID + favoritesSuffix
}

// FavoritesPrefix is the prefix shared by every user's favorites key.
func FavoritesPrefix() string { return favoritesPrefix }

// FavoritesOwner returns the user id a favorites key belongs to.
func FavoritesOwner(key string) (string, bool) {
	if len(key) <= len(favoritesPrefix)+len(favoritesSuffix) ||
		!strings.HasPrefix(key, favoritesPrefix) || !strings.HasSuffix(key, favoritesSuffix) {
		return "", false
	}
	return key[len(favoritesPrefix) : len(key)-len(favoritesSuffix)], true
}
