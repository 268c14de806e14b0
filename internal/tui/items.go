package tui

import (
	"strings"

	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/search"
	"github.com/pders01/ellux/internal/storage"
)

const descriptionLength = 80

type articleItem struct {
	view pages.ArticleView
}

func (i articleItem) Title() string {
	if i.view.Favorite {
		return FavoriteStyle.Render("★ " + i.view.Article.Title)
	}
	return i.view.Article.Title
}

func (i articleItem) Description() string {
	return describe(i.view.Abstract, i.view.Section, i.view.PublishedDate.IsZero(), func() string {
		return i.view.PublishedDate.Format("Jan 2, 15:04")
	})
}

func (i articleItem) FilterValue() string { return i.view.Article.Title }

type favoriteItem struct {
	fav   storage.FavoriteArticle
	index int
}

func (i favoriteItem) Title() string       { return FavoriteStyle.Render("★ ") + i.fav.Title }
func (i favoriteItem) FilterValue() string { return i.fav.Title + " " + i.fav.Abstract }

func (i favoriteItem) Description() string {
	return describe(i.fav.Abstract, i.fav.Section, i.fav.PublishedDate == nil, func() string {
		return i.fav.PublishedDate.Format("Jan 2, 15:04")
	})
}

type searchResultItem struct {
	result *search.Result
}

func (i searchResultItem) Title() string { return i.result.Favorite.Title }

func (i searchResultItem) Description() string {
	var parts []string
	for _, m := range i.result.Matches {
		parts = append(parts, m.Field+": "+m.Text)
	}
	if len(parts) == 0 {
		return renderMuted(truncateEnd(i.result.Favorite.Abstract, 50))
	}
	return renderMuted(truncateEnd(strings.Join(parts, " • "), descriptionLength))
}

func (i searchResultItem) FilterValue() string { return i.result.Favorite.Title }

type sectionItem string

func (i sectionItem) Title() string {
	if i == "" {
		return "all"
	}
	return string(i)
}

func (i sectionItem) Description() string { return "" }
func (i sectionItem) FilterValue() string { return string(i) }

func describe(abstract, section string, noDate bool, date func() string) string {
	desc := truncateEnd(abstract, descriptionLength)
	if section != "" {
		desc = section + " • " + desc
	}
	timeStr := ""
	if !noDate {
		timeStr = TimeStyle.Render(" • " + date())
	}
	return renderMuted(desc) + timeStr
}

// favoriteArticle expands a favorite back into an article for the details
// view.
func favoriteArticle(f storage.FavoriteArticle) storage.Article {
	a := storage.Article{
		Title:    f.Title,
		URL:      f.URL,
		Abstract: f.Abstract,
		Section:  f.Section,
	}
	if f.PublishedDate != nil {
		a.PublishedDate = *f.PublishedDate
	}
	if f.ImageURL != "" {
		a.Multimedia = []storage.Multimedia{{URL: f.ImageURL}}
	}
	return a
}
