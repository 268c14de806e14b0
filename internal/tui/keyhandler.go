package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

type KeyHandler struct {
	app *App
}

func NewKeyHandler(app *App) *KeyHandler {
	return &KeyHandler{app: app}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if kh.isInTextInputMode() {
		return kh.handleTextInputMode(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToCharm(msg)
}

func (kh *KeyHandler) isInTextInputMode() bool {
	return kh.app.view == ViewSearch && kh.app.searchInput.Focused()
}

func (kh *KeyHandler) handleTextInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return kh.navigateBack()
	case "ctrl+c":
		return kh.app, tea.Quit
	case "enter", "tab", "down":
		if len(kh.app.searchList.Items()) > 0 {
			kh.app.searchInput.Blur()
			kh.app.searchList.Select(0)
		}
		return kh.app, nil
	default:
		return kh.delegateToSearchInput(msg)
	}
}

// delegateToSearchInput updates the query and schedules a debounced search.
func (kh *KeyHandler) delegateToSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	prev := kh.app.searchInput.Value()
	newSearchInput, cmd := kh.app.searchInput.Update(msg)
	kh.app.searchInput = newSearchInput

	if kh.app.searchInput.Value() == prev {
		return kh.app, cmd
	}
	kh.app.searchSeq++
	seq := kh.app.searchSeq
	wait := time.Duration(kh.app.searchDebounceMillis) * time.Millisecond
	return kh.app, tea.Batch(cmd, tea.Tick(wait, func(time.Time) tea.Msg { return searchDebounceFireMsg{seq: seq} }))
}

func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", "q":
		return kh.app, tea.Quit, true
	case "esc":
		model, cmd := kh.navigateBack()
		return model, cmd, true
	}

	switch kh.app.view {
	case ViewHome:
		return kh.handleHomeKeys(key)
	case ViewDetails:
		return kh.handleDetailsKeys(key)
	case ViewFavorites:
		return kh.handleFavoritesKeys(key)
	case ViewSearch:
		return kh.handleSearchResultKeys(key)
	case ViewSections:
		return kh.handleSectionKeys(key)
	default:
		return kh.app, nil, false
	}
}

func (kh *KeyHandler) selectedArticle() (articleItem, bool) {
	i, ok := kh.app.articleList.SelectedItem().(articleItem)
	return i, ok
}

func (kh *KeyHandler) handleHomeKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case "enter":
		if i, ok := kh.selectedArticle(); ok {
			return a, a.showDetails(i.view.Article), true
		}
		return a, nil, true
	case "f":
		if i, ok := kh.selectedArticle(); ok {
			return a, a.toggleFavorite(i.view.Article), true
		}
		return a, nil, true
	case "o":
		if i, ok := kh.selectedArticle(); ok {
			return a, a.openURL(i.view.URL), true
		}
		return a, nil, true
	case "i":
		if i, ok := kh.selectedArticle(); ok {
			return a, kh.openImage(i.view.ImageURL()), true
		}
		return a, nil, true
	case "m":
		if a.home.LoadMore() {
			a.refreshArticles()
		} else {
			a.setStatus(MsgNoMore, StatusInfo)
		}
		return a, nil, true
	case "s":
		a.showSections()
		return a, nil, true
	case "v":
		return a, a.openFavorites(), true
	case "r":
		if a.loading {
			return a, nil, true
		}
		a.loading = true
		return a, a.loadArticles(), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleDetailsKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if a.current == nil {
		return a, nil, false
	}
	switch key {
	case "o":
		return a, a.openURL(a.current.URL), true
	case "i":
		return a, kh.openImage(a.current.ImageURL()), true
	case "f":
		return a, a.toggleFavorite(*a.current), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleFavoritesKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case "enter":
		if i, ok := a.favoriteList.SelectedItem().(favoriteItem); ok {
			return a, a.showDetails(favoriteArticle(i.fav)), true
		}
		return a, nil, true
	case "o":
		if i, ok := a.favoriteList.SelectedItem().(favoriteItem); ok {
			return a, a.openURL(i.fav.URL), true
		}
		return a, nil, true
	case "x":
		if i, ok := a.favoriteList.SelectedItem().(favoriteItem); ok {
			a.favs.Remove(i.index)
			a.refreshFavorites()
			a.refreshArticles()
			a.setStatus(MsgRemoved, StatusInfo)
		}
		return a, nil, true
	case "/":
		a.view = ViewSearch
		a.searchInput.Reset()
		a.searchList.SetItems([]list.Item{})
		return a, a.searchInput.Focus(), true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleSearchResultKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	switch key {
	case "tab", "shift+tab", "/":
		return a, a.searchInput.Focus(), true
	case "up":
		if a.searchList.Index() == 0 {
			return a, a.searchInput.Focus(), true
		}
	case "enter":
		if i, ok := a.searchList.SelectedItem().(searchResultItem); ok {
			return a, a.showDetails(favoriteArticle(i.result.Favorite)), true
		}
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleSectionKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	if key != "enter" {
		return a, nil, false
	}
	if i, ok := a.sectionList.SelectedItem().(sectionItem); ok {
		a.home.SetSection(string(i))
		a.articleList.Select(0)
		a.refreshArticles()
	}
	a.view = ViewHome
	return a, nil, true
}

func (kh *KeyHandler) openImage(url string) tea.Cmd {
	if strings.TrimSpace(url) == "" {
		kh.app.setStatus(MsgNoImage, StatusWarn)
		return nil
	}
	return kh.app.openURL(url)
}

// delegateToCharm lets Charm handle navigation keys we don't intercept.
func (kh *KeyHandler) delegateToCharm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	var cmd tea.Cmd

	switch a.view {
	case ViewHome:
		a.articleList, cmd = a.articleList.Update(msg)
	case ViewFavorites:
		a.favoriteList, cmd = a.favoriteList.Update(msg)
	case ViewSearch:
		a.searchList, cmd = a.searchList.Update(msg)
	case ViewSections:
		a.sectionList, cmd = a.sectionList.Update(msg)
	case ViewDetails:
		a.viewport, cmd = a.viewport.Update(msg)
	}
	return a, cmd
}

// navigateBack returns to the view the current one was opened from.
func (kh *KeyHandler) navigateBack() (tea.Model, tea.Cmd) {
	a := kh.app
	switch a.view {
	case ViewDetails:
		a.view = a.detailsFrom
		a.current = nil
		if a.view == ViewSearch {
			a.searchInput.Blur()
		}
	case ViewSearch:
		a.view = ViewFavorites
		a.searchInput.Reset()
		a.searchInput.Blur()
		a.searchList.SetItems([]list.Item{})
	case ViewFavorites, ViewSections:
		a.view = ViewHome
	}
	return a, nil
}

// HelpForView lists the keys of the current view for the status bar.
func (kh *KeyHandler) HelpForView() []string {
	switch kh.app.view {
	case ViewHome:
		return []string{"enter: details", "f: favorite", "o: open", "i: image", "m: more", "s: section", "v: favorites", "r: reload", "q: quit"}
	case ViewDetails:
		return []string{"o: open", "i: image", "f: favorite", "esc: back"}
	case ViewFavorites:
		return []string{"enter: details", "o: open", "x: remove", "/: search", "esc: back"}
	case ViewSearch:
		return []string{"enter: details", "tab: search box", "esc: back"}
	case ViewSections:
		return []string{"enter: select", "esc: back"}
	default:
		return nil
	}
}
