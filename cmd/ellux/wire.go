package main

import (
	"fmt"
	"os"

	"github.com/pders01/ellux/internal/backend"
	"github.com/pders01/ellux/internal/config"
	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/favorites"
	"github.com/pders01/ellux/internal/media"
	"github.com/pders01/ellux/internal/news"
	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/search"
	"github.com/pders01/ellux/internal/session"
	"github.com/pders01/ellux/internal/storage"
	"github.com/pders01/ellux/internal/validation"
)

// app is the wired set of services behind every command.
type app struct {
	store    *storage.Store
	index    *search.BleveEngine
	svc      *pages.Services
	launcher *media.Launcher
}

func openApp(cfg *config.Config) (*app, error) {
	paths := validation.NewPermissivePathHandler()
	dbPath, err := paths.ValidateFile(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	store, err := storage.NewStoreWithTimeout(dbPath, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}

	gate := session.NewGate(store, cfg.Session.TTL)
	if cfg.Session.RoutesFile != "" {
		routes, err := loadRoutes(cfg.Session.RoutesFile)
		if err != nil {
			store.Close()
			return nil, err
		}
		gate.SetRoutes(routes)
	}

	favs := favorites.NewStore(store)
	a := &app{store: store, launcher: media.NewLauncher(media.Options{
		Opener:      cfg.Browser.Opener,
		ImageViewer: cfg.Browser.ImageViewer,
		HTTPSOnly:   cfg.Browser.HTTPSOnly,
	})}

	var searcher pages.Searcher = search.NewEngine(favs)
	if cfg.Database.SearchIndex != "" {
		indexPath, err := paths.ValidateDirectory(cfg.Database.SearchIndex, false)
		var idx *search.BleveEngine
		if err == nil {
			idx, err = search.NewBleveEngine(favs, indexPath)
		}
		if err != nil {
			debuglog.Warnf("search index unavailable, using in-memory search: %v", err)
		} else {
			a.index = idx
			searcher = idx
			favs.AddListener(idx)
			if uid, ok := gate.CurrentUserID(); ok {
				if err := idx.Reindex(uid); err != nil {
					debuglog.Warnf("reindexing favorites of %s: %v", uid, err)
				}
			}
		}
	}

	fetcher := news.NewFetcher(cfg.News.RatePerMinute, cfg.News.Timeout)
	registry := news.NewRegistry(
		news.NewTopStories(fetcher, cfg.News.TopStoriesURL, cfg.News.APIKey),
		news.NewRSS(fetcher, cfg.News.RSSURL),
	)
	if cfg.News.Source != "auto" {
		registry.Prefer(cfg.News.Source)
	}

	a.svc = &pages.Services{
		KV:        store,
		Gate:      gate,
		Favorites: favs,
		Backend:   backend.NewClient(cfg.API.BaseURL, cfg.API.Timeout, news.NewLimiter(cfg.API.RatePerMinute)),
		News:      registry,
		Search:    searcher,
		PerPage:   cfg.News.PerPage,
	}
	return a, nil
}

func loadRoutes(path string) (session.Routes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return session.Routes{}, fmt.Errorf("reading routes file: %w", err)
	}
	return session.ParseRoutes(data)
}

func (a *app) Close() error {
	if a.index != nil {
		if err := a.index.Close(); err != nil {
			debuglog.Warnf("closing search index: %v", err)
		}
	}
	return a.store.Close()
}
