package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/storage"
)

// Opener hands a URL to an external application.
type Opener interface {
	Open(url string) error
}

// App is the bubbletea model for browsing news and favorites.
type App struct {
	ctx        context.Context
	svc        *pages.Services
	home       *pages.Home
	favs       *pages.Favorites
	opener     Opener
	keyHandler *KeyHandler

	articleList  list.Model
	favoriteList list.Model
	searchList   list.Model
	sectionList  list.Model
	searchInput  textinput.Model
	viewport     viewport.Model

	view        View
	detailsFrom View
	current     *storage.Article

	searchSeq            int
	searchDebounceMillis int

	status   status
	loading  bool
	redirect string
	width    int
	height   int

	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
}

func newList(title string) list.Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

func NewApp(ctx context.Context, svc *pages.Services, opener Opener) *App {
	si := textinput.New()
	si.Placeholder = "Search your favorites..."
	si.CharLimit = 200

	app := &App{
		ctx:                  ctx,
		svc:                  svc,
		home:                 pages.NewHome(svc),
		favs:                 pages.NewFavorites(svc),
		opener:               opener,
		articleList:          newList("› news"),
		favoriteList:         newList("› favorites"),
		searchList:           newList("› results"),
		sectionList:          newList("› sections"),
		searchInput:          si,
		viewport:             viewport.New(0, 0),
		view:                 ViewHome,
		searchDebounceMillis: 150,
	}
	app.keyHandler = NewKeyHandler(app)
	return app
}

// Redirect is the page the user was sent to when the app quit because the
// home page is not available, or "".
func (a *App) Redirect() string { return a.redirect }

func (a *App) now() time.Time {
	if a.svc.Now != nil {
		return a.svc.Now()
	}
	return time.Now()
}

func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 8) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 20 {
		wordWrapWidth = 20
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}

	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	a.loading = true
	return tea.Batch(a.loadArticles(), tea.EnterAltScreen)
}

func (a *App) setStatus(text string, kind StatusKind) {
	a.status = status{text: text, kind: kind, expires: a.now().Add(statusLifetime)}
}

func (a *App) setError(err error) {
	a.status = status{text: "✗ " + displayError(err), kind: StatusError}
}

func (a *App) refreshArticles() {
	idx := a.articleList.Index()
	views := a.home.Visible()
	items := make([]list.Item, len(views))
	for i, v := range views {
		items[i] = articleItem{view: v}
	}
	a.articleList.SetItems(items)
	if idx < len(items) {
		a.articleList.Select(idx)
	}
}

func (a *App) refreshFavorites() {
	idx := a.favoriteList.Index()
	favs := a.favs.List()
	items := make([]list.Item, len(favs))
	for i, f := range favs {
		items[i] = favoriteItem{fav: f, index: i}
	}
	a.favoriteList.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		a.favoriteList.Select(idx)
	}
}

func (a *App) showSections() {
	sections := append([]string{""}, a.home.Sections()...)
	items := make([]list.Item, len(sections))
	selected := 0
	for i, s := range sections {
		items[i] = sectionItem(s)
		if s == a.home.Section() {
			selected = i
		}
	}
	a.sectionList.SetItems(items)
	a.sectionList.Select(selected)
	a.view = ViewSections
}

func (a *App) showDetails(article storage.Article) tea.Cmd {
	a.current = &article
	a.detailsFrom = a.view
	a.view = ViewDetails
	a.viewport.SetContent(renderMuted("Loading…"))
	return a.renderArticle(article)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height
	listHeight := height - 4
	if listHeight < 3 {
		listHeight = 3
	}
	a.articleList.SetSize(width, listHeight)
	a.favoriteList.SetSize(width, listHeight)
	a.sectionList.SetSize(width, listHeight)
	searchListHeight := height - 9
	if searchListHeight < 3 {
		searchListHeight = 3
	}
	a.searchList.SetSize(width, searchListHeight)
	a.viewport.Width = width - 4
	a.viewport.Height = height - 5
	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = width
	}
	a.searchInput.Width = inputWidth
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case articlesLoadedMsg:
		a.loading = false
		if r, ok := pages.AsRedirect(msg.err); ok {
			a.redirect = r.Target()
			return a, tea.Quit
		}
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		a.home.Show(msg.feed)
		a.refreshArticles()
		a.setStatus(MsgLoaded(len(a.home.Visible()), a.home.Source()), StatusInfo)
		if n := a.home.Migrated(); n > 0 {
			a.setStatus(MsgMigrated(n), StatusSuccess)
		}
		return a, nil

	case articleRenderedMsg:
		if a.view == ViewDetails {
			a.viewport.SetContent(msg.content)
			a.viewport.GotoTop()
		}
		return a, nil

	case favoriteToggledMsg:
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		if msg.saved {
			a.setStatus(MsgSaved, StatusSuccess)
		} else {
			a.setStatus(MsgUnsaved, StatusInfo)
		}
		a.refreshArticles()
		if a.favs.UserID() != "" {
			a.refreshFavorites()
		}
		return a, nil

	case searchDebounceFireMsg:
		if msg.seq != a.searchSeq {
			return a, nil
		}
		query := strings.TrimSpace(a.searchInput.Value())
		if len([]rune(query)) < 2 {
			a.searchList.SetItems([]list.Item{})
			return a, nil
		}
		return a, a.performSearch(query)

	case searchResultsMsg:
		if a.view != ViewSearch || msg.query != strings.TrimSpace(a.searchInput.Value()) {
			return a, nil
		}
		if msg.err != nil {
			a.setError(msg.err)
			return a, nil
		}
		items := make([]list.Item, len(msg.results))
		for i, r := range msg.results {
			items[i] = r
		}
		a.searchList.SetItems(items)
		if len(items) == 0 {
			a.setStatus(MsgNoResults, StatusInfo)
		} else {
			a.setStatus(MsgResultsCount(len(items)), StatusInfo)
		}
		return a, nil

	case openedMsg:
		if msg.err != nil {
			a.setError(msg.err)
		}
		return a, nil
	}

	return a, nil
}

func (a *App) contentHeight() int {
	h := a.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (a *App) View() string {
	var content string

	switch a.view {
	case ViewHome:
		switch {
		case a.loading:
			content = renderCentered(a.width, a.contentHeight(), renderMuted(MsgLoading))
		case len(a.articleList.Items()) == 0:
			content = renderCentered(a.width, a.contentHeight(), GetWelcomeMessage())
		default:
			content = lipgloss.JoinVertical(lipgloss.Top, renderHeader(CompactLogo, a.homeSubtitle(), a.width), a.articleList.View())
		}

	case ViewDetails:
		title := ""
		if a.current != nil {
			title = a.current.Title
		}
		content = lipgloss.JoinVertical(
			lipgloss.Top,
			renderHeader("› "+title, truncateMiddle(a.currentURL(), a.width-4), a.width),
			ModalStyle.Width(a.width-2).Render(a.viewport.View()),
		)

	case ViewFavorites:
		if len(a.favoriteList.Items()) == 0 {
			content = renderCentered(a.width, a.contentHeight(), renderHelp("No favorites yet • f on an article saves it"))
		} else {
			content = a.favoriteList.View()
		}

	case ViewSearch:
		helpText := "Type to search • Tab/↓: results • Esc: back"
		if !a.searchInput.Focused() {
			helpText = "↑↓: navigate • Enter: details • Tab: search box • Esc: back"
		}
		content = lipgloss.JoinVertical(
			lipgloss.Top,
			renderHeader("› search favorites", "", a.width),
			"",
			renderInputFrame(a.searchInput.View(), a.searchInput.Focused(), a.searchInput.Width),
			renderMuted(helpText),
			"",
			a.searchList.View(),
		)

	case ViewSections:
		content = a.sectionList.View()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(a.contentHeight()).
		MaxHeight(a.contentHeight()).
		Render(content)

	separatorWidth := a.width
	if separatorWidth < 1 {
		separatorWidth = 1
	}
	separator := SeparatorStyle.Render(strings.Repeat("─", separatorWidth))

	return lipgloss.JoinVertical(lipgloss.Top, content, separator, a.statusBar())
}

func (a *App) homeSubtitle() string {
	parts := []string{}
	if src := a.home.Source(); src != "" {
		parts = append(parts, "source: "+src)
	}
	section := a.home.Section()
	if section == "" {
		section = "all"
	}
	parts = append(parts, "section: "+section)
	parts = append(parts, fmt.Sprintf("page %d/%d", a.home.Page(), a.home.Pages()))
	if lv := a.home.LastVisited(); lv != "" {
		parts = append(parts, "last visit: "+lv)
	}
	return strings.Join(parts, " • ")
}

func (a *App) currentURL() string {
	if a.current == nil {
		return ""
	}
	return a.current.URL
}

func (a *App) statusBar() string {
	style := lipgloss.NewStyle().Width(a.width).Padding(0, 1)
	if a.status.visible(a.now()) {
		return style.Render(a.status.kind.style().Render(a.status.text))
	}
	return style.Foreground(MutedColor).Render(strings.Join(a.keyHandler.HelpForView(), " • "))
}
