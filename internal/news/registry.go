// Package news fetches articles for the home page from the configured
// sources.
package news

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/storage"
)

// ErrNoSource is returned when no registered source is available.
var ErrNoSource = errors.New("no news source available")

// Source delivers articles.
type Source interface {
	// Name identifies the source in config and logs.
	Name() string
	// Priority orders sources; higher is tried first.
	Priority() int
	// Available reports whether the source is configured well enough to try.
	Available() bool
	Fetch(ctx context.Context) ([]storage.Article, error)
}

// Registry manages all registered sources
type Registry struct {
	sources []Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds a source to the registry
func (r *Registry) Register(s Source) {
	if s != nil {
		r.sources = append(r.sources, s)
	}
}

// Sources returns the registered sources, highest priority first.
func (r *Registry) Sources() []Source {
	out := append([]Source(nil), r.sources...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() > out[j].Priority()
	})
	return out
}

// Prefer moves the named source to the front by giving it top priority.
// Unknown names are ignored.
func (r *Registry) Prefer(name string) {
	for i, s := range r.sources {
		if s.Name() == name {
			r.sources[i] = preferred{s}
			return
		}
	}
}

type preferred struct{ Source }

func (p preferred) Priority() int { return int(^uint(0) >> 1) }

// Fetch tries each available source in priority order and returns the first
// successful result with the name of the source that produced it.
func (r *Registry) Fetch(ctx context.Context) ([]storage.Article, string, error) {
	var errs []error
	for _, s := range r.Sources() {
		if !s.Available() {
			continue
		}
		articles, err := s.Fetch(ctx)
		if err == nil {
			debuglog.WithFields(map[string]any{"source": s.Name(), "count": len(articles)}).
				Debugf("fetched articles")
			return articles, s.Name(), nil
		}
		debuglog.WithFields(map[string]any{"source": s.Name()}).Warnf("fetch failed: %v", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return nil, "", ErrNoSource
	}
	return nil, "", errors.Join(errs...)
}
