package search

import "github.com/pders01/ellux/internal/storage"

// Lister is the read side of the favorites store.
type Lister interface {
	List(userID string) []storage.FavoriteArticle
}

// Searcher defines the minimal search API used by the CLI and TUI.
type Searcher interface {
	Search(userID, query string, limit int) ([]*Result, error)
}

// DocCounter is implemented by engines that keep an external index.
type DocCounter interface {
	DocCount() (int, error)
}

// Result is one favorite matching a query.
type Result struct {
	Favorite storage.FavoriteArticle
	// Index is the position in the user's favorites list, or -1 when the
	// favorite has since been removed.
	Index   int
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "abstract", "section", "url"
	Text   string
	Weight float64
}
