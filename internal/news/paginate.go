package news

import (
	"strings"

	"github.com/pders01/ellux/internal/storage"
)

// DefaultPerPage is how many articles the home page shows at once.
const DefaultPerPage = 12

// Sections returns the distinct non-empty sections in first-seen order.
func Sections(articles []storage.Article) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range articles {
		if a.Section == "" || seen[a.Section] {
			continue
		}
		seen[a.Section] = true
		out = append(out, a.Section)
	}
	return out
}

// FilterSection keeps the articles of one section. An empty section or
// "all" keeps everything.
func FilterSection(articles []storage.Article, section string) []storage.Article {
	section = strings.TrimSpace(section)
	if section == "" || strings.EqualFold(section, "all") {
		return articles
	}
	out := make([]storage.Article, 0, len(articles))
	for _, a := range articles {
		if strings.EqualFold(a.Section, section) {
			out = append(out, a)
		}
	}
	return out
}

// Paginator slices articles into fixed-size pages numbered from 1.
type Paginator struct {
	PerPage int
}

func NewPaginator(perPage int) Paginator {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return Paginator{PerPage: perPage}
}

// Page returns page n. Pages past the end are empty.
func (p Paginator) Page(articles []storage.Article, n int) []storage.Article {
	if n < 1 {
		n = 1
	}
	start := (n - 1) * p.perPage()
	if start >= len(articles) {
		return []storage.Article{}
	}
	end := start + p.perPage()
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end]
}

// Upto returns everything shown after clicking "load more" until page n.
func (p Paginator) Upto(articles []storage.Article, n int) []storage.Article {
	if n < 1 {
		n = 1
	}
	end := n * p.perPage()
	if end > len(articles) {
		end = len(articles)
	}
	return articles[:end]
}

// HasMore reports whether a page follows page n.
func (p Paginator) HasMore(articles []storage.Article, n int) bool {
	if n < 1 {
		n = 1
	}
	return n*p.perPage() < len(articles)
}

// Pages returns the number of pages, at least 1.
func (p Paginator) Pages(articles []storage.Article) int {
	if len(articles) == 0 {
		return 1
	}
	return (len(articles) + p.perPage() - 1) / p.perPage()
}

func (p Paginator) perPage() int {
	if p.PerPage <= 0 {
		return DefaultPerPage
	}
	return p.PerPage
}
