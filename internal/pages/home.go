package pages

import (
	"context"
	"time"

	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/news"
	"github.com/pders01/ellux/internal/storage"
)

const homePath = "/index.html"

const (
	MsgArticlesFailed  = "Failed to load articles. Please try refreshing or check back later."
	MsgFavoritesFailed = "Could not update favorites."
)

// ArticleView is an article as listed on the home page.
type ArticleView struct {
	storage.Article
	Favorite bool
}

// Home lists the news, pages through it and toggles favorites.
type Home struct {
	svc       *Services
	paginator news.Paginator

	articles    []storage.Article
	source      string
	section     string
	page        int
	migrated    int
	lastVisited string
}

func NewHome(svc *Services) *Home {
	return &Home{svc: svc, paginator: news.NewPaginator(svc.PerPage), page: 1}
}

// Feed is one fetch of the news: the articles and the source that served them.
type Feed struct {
	Articles []storage.Article
	Source   string
}

// Load guards the page, fetches the articles and, for a signed-in user,
// folds any anonymous favorites into the user's set.
func (h *Home) Load(ctx context.Context) error {
	if err := h.Enter(); err != nil {
		return err
	}
	feed, err := h.Fetch(ctx)
	if err != nil {
		return err
	}
	h.Show(feed)
	return nil
}

// Enter runs the local part of Load: the route guard, the anonymous
// favorites migration and the last-visited stamp.
func (h *Home) Enter() error {
	if err := h.svc.guard(homePath); err != nil {
		return err
	}
	if uid, ok := h.svc.signedInUser(); ok {
		h.migrated = h.svc.Favorites.MigrateAnonymous(uid)
	}
	h.lastVisited = h.touchLastVisited()
	return nil
}

// Fetch asks the news source for articles. It does not touch the page state,
// so it may run off the goroutine that drives the page.
func (h *Home) Fetch(ctx context.Context) (Feed, error) {
	articles, source, err := h.svc.News.Fetch(ctx)
	if err != nil {
		debuglog.WithFields(map[string]any{"page": "home"}).Errorf("loading articles: %v", err)
		return Feed{}, &UserError{Message: MsgArticlesFailed, Err: err}
	}
	return Feed{Articles: articles, Source: source}, nil
}

// Show replaces the listed articles with feed and starts over at page one.
func (h *Home) Show(feed Feed) {
	h.articles = feed.Articles
	h.source = feed.Source
	h.page = 1
}

// touchLastVisited returns the relative time of the previous visit and
// records this one. The first visit yields "".
func (h *Home) touchLastVisited() string {
	now := h.svc.now()
	var prev time.Time
	found := h.svc.KV.Get(storage.KeyLastVisited, &prev)
	h.svc.KV.Set(storage.KeyLastVisited, now)
	if !found || prev.IsZero() {
		return ""
	}
	return RelativeTime(prev, now)
}

// Source names the news source that served the articles.
func (h *Home) Source() string { return h.source }

// Migrated is how many anonymous favorites the last Load moved over.
func (h *Home) Migrated() int { return h.migrated }

// LastVisited is the relative time of the previous visit, or "".
func (h *Home) LastVisited() string { return h.lastVisited }

// Sections lists the sections present in the loaded articles.
func (h *Home) Sections() []string { return news.Sections(h.articles) }

// Section is the current filter; "" means all.
func (h *Home) Section() string { return h.section }

// SetSection filters by section and starts over at the first page.
func (h *Home) SetSection(section string) {
	if section == "all" {
		section = ""
	}
	h.section = section
	h.page = 1
}

// Page is the number of pages currently shown.
func (h *Home) Page() int { return h.page }

// GoTo shows pages 1 through n.
func (h *Home) GoTo(n int) {
	if n < 1 {
		n = 1
	}
	h.page = n
}

// HasMore reports whether LoadMore would show anything new.
func (h *Home) HasMore() bool {
	return h.paginator.HasMore(h.filtered(), h.page)
}

// LoadMore shows the next page, reporting false at the end.
func (h *Home) LoadMore() bool {
	if !h.HasMore() {
		return false
	}
	h.page++
	return true
}

// Visible returns every article shown so far with its favorite marker.
func (h *Home) Visible() []ArticleView {
	return h.views(h.paginator.Upto(h.filtered(), h.page))
}

// PageItems returns only the articles of page n.
func (h *Home) PageItems(n int) []ArticleView {
	return h.views(h.paginator.Page(h.filtered(), n))
}

// Pages is the page count for the current filter.
func (h *Home) Pages() int { return h.paginator.Pages(h.filtered()) }

func (h *Home) filtered() []storage.Article {
	return news.FilterSection(h.articles, h.section)
}

func (h *Home) views(articles []storage.Article) []ArticleView {
	uid, signedIn := h.svc.signedInUser()
	out := make([]ArticleView, len(articles))
	for i, a := range articles {
		fav := false
		if signedIn {
			fav = h.svc.Favorites.Contains(uid, a.URL)
		} else {
			fav = h.svc.Favorites.ContainsAnonymous(a.URL)
		}
		out[i] = ArticleView{Article: a, Favorite: fav}
	}
	return out
}

// Find returns the loaded article with url.
func (h *Home) Find(url string) (storage.Article, bool) {
	for _, a := range h.articles {
		if a.URL == url {
			return a, true
		}
	}
	return storage.Article{}, false
}

// ToggleFavorite flips the favorite state of article and returns the new
// state. Signed-out users, and users whose session has expired, toggle the
// anonymous set.
func (h *Home) ToggleFavorite(article storage.Article) (bool, error) {
	var ok bool
	uid, signedIn := h.svc.signedInUser()
	if signedIn {
		ok = h.svc.Favorites.Toggle(uid, article)
	} else {
		ok = h.svc.Favorites.ToggleAnonymous(article)
	}
	if !ok {
		return false, &UserError{Message: MsgFavoritesFailed}
	}
	if signedIn {
		return h.svc.Favorites.Contains(uid, article.URL), nil
	}
	return h.svc.Favorites.ContainsAnonymous(article.URL), nil
}
