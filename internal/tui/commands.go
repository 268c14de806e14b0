package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/storage"
)

type articlesLoadedMsg struct {
	feed pages.Feed
	err  error
}

type articleRenderedMsg struct {
	content string
}

type favoriteToggledMsg struct {
	title string
	saved bool
	err   error
}

type searchResultsMsg struct {
	query   string
	results []searchResultItem
	err     error
}

type searchDebounceFireMsg struct {
	seq int
}

type openedMsg struct {
	err error
}

// loadArticles runs the local part of the home page load now and fetches in
// the returned command. The result is applied in Update.
func (a *App) loadArticles() tea.Cmd {
	if err := a.home.Enter(); err != nil {
		return func() tea.Msg { return articlesLoadedMsg{err: err} }
	}
	home, ctx := a.home, a.ctx
	return func() tea.Msg {
		feed, err := home.Fetch(ctx)
		return articlesLoadedMsg{feed: feed, err: err}
	}
}

func (a *App) renderArticle(article storage.Article) tea.Cmd {
	return func() tea.Msg {
		r, err := a.getRenderer()
		if err != nil {
			return articleRenderedMsg{content: "Error initializing renderer: " + err.Error()}
		}

		rendered, err := r.Render(articleMarkdown(article, a.now()))
		if err != nil {
			return articleRenderedMsg{content: fmt.Sprintf("# Error\n\nFailed to render article: %s\n\nPress Escape to go back.", err.Error())}
		}
		return articleRenderedMsg{content: rendered}
	}
}

// articleMarkdown lays out the details modal.
func articleMarkdown(article storage.Article, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", article.Title)

	var meta []string
	if article.Section != "" {
		meta = append(meta, article.Section)
	}
	if article.Byline != "" {
		meta = append(meta, article.Byline)
	}
	if !article.PublishedDate.IsZero() {
		meta = append(meta, article.PublishedDate.Format(time.RFC1123)+" ("+pages.RelativeTime(article.PublishedDate, now)+")")
	}
	if len(meta) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(meta, " • "))
	}

	if img := article.ImageURL(); img != "" {
		fmt.Fprintf(&b, "**Image:** %s\n\n", img)
	}
	if article.URL != "" {
		fmt.Fprintf(&b, "[Read Online](%s)\n\n", article.URL)
	}

	b.WriteString("---\n\n")
	if article.Abstract != "" {
		b.WriteString(article.Abstract)
	} else {
		b.WriteString("_No summary available._")
	}
	b.WriteString("\n")
	return b.String()
}

func (a *App) toggleFavorite(article storage.Article) tea.Cmd {
	return func() tea.Msg {
		saved, err := a.home.ToggleFavorite(article)
		return favoriteToggledMsg{title: article.Title, saved: saved, err: err}
	}
}

func (a *App) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := a.favs.Search(query, searchResultsMax)
		if err != nil {
			return searchResultsMsg{query: query, err: err}
		}
		items := make([]searchResultItem, len(results))
		for i, r := range results {
			items[i] = searchResultItem{result: r}
		}
		return searchResultsMsg{query: query, results: items}
	}
}

func (a *App) openURL(url string) tea.Cmd {
	return func() tea.Msg {
		return openedMsg{err: wrapErr("open", a.opener.Open(url))}
	}
}

// openFavorites switches to the favorites view, or explains why it cannot.
func (a *App) openFavorites() tea.Cmd {
	if err := a.favs.Open(); err != nil {
		if _, ok := pages.AsRedirect(err); ok {
			a.setStatus(MsgSignInToSave, StatusWarn)
			return nil
		}
		a.setError(err)
		return nil
	}
	a.view = ViewFavorites
	a.refreshFavorites()
	return nil
}
