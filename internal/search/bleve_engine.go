package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/storage"
)

// BleveEngine keeps a full-text index of every signed-in user's favorites.
type BleveEngine struct {
	favs Lister
	idx  bleve.Index
}

// NewBleveEngine creates or opens a Bleve index at indexPath.
func NewBleveEngine(favs Lister, indexPath string) (*BleveEngine, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if err != nil {
		idx, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("creating index: %w", err)
		}
	}
	return &BleveEngine{favs: favs, idx: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	abstract := bleve.NewTextFieldMapping()
	abstract.Analyzer = standard.Name
	abstract.Store = true

	section := bleve.NewTextFieldMapping()
	section.Analyzer = standard.Name
	section.Store = true

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = true

	// exact match only; used to scope queries and deletes
	user := bleve.NewTextFieldMapping()
	user.Analyzer = keyword.Name
	user.Store = true

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("abstract", abstract)
	dm.AddFieldMappingsAt("section", section)
	dm.AddFieldMappingsAt("url", url)
	dm.AddFieldMappingsAt("user", user)

	im.DefaultMapping = dm
	return im
}

// Close releases the index.
func (b *BleveEngine) Close() error {
	return b.idx.Close()
}

// Reindex rebuilds the user's documents from the favorites store.
func (b *BleveEngine) Reindex(userID string) error {
	if userID == "" {
		return nil
	}
	return b.replace(userID, b.favs.List(userID))
}

// OnFavoritesChanged re-indexes the user's set. The anonymous set is not
// indexed.
func (b *BleveEngine) OnFavoritesChanged(userID string, list []storage.FavoriteArticle) {
	if userID == "" {
		return
	}
	if err := b.replace(userID, list); err != nil {
		debuglog.WithFields(map[string]any{"user": userID}).Errorf("reindexing favorites: %v", err)
	}
}

func (b *BleveEngine) replace(userID string, list []storage.FavoriteArticle) error {
	ids, err := b.userDocIDs(userID)
	if err != nil {
		return err
	}

	batch := b.idx.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	for _, f := range list {
		if f.URL == "" {
			continue
		}
		if err := batch.Index(docID(userID, f.URL), map[string]any{
			"user":     userID,
			"title":    f.Title,
			"abstract": f.Abstract,
			"section":  f.Section,
			"url":      f.URL,
		}); err != nil {
			return err
		}
	}
	return b.idx.Batch(batch)
}

func (b *BleveEngine) userDocIDs(userID string) ([]string, error) {
	var ids []string
	from := 0
	size := 1000
	for {
		req := bleve.NewSearchRequestOptions(userQuery(userID), size, from, false)
		req.Fields = []string{}
		res, err := b.idx.Search(req)
		if err != nil {
			return nil, err
		}
		for _, h := range res.Hits {
			ids = append(ids, h.ID)
		}
		if len(res.Hits) < size {
			return ids, nil
		}
		from += size
	}
}

func userQuery(userID string) bleveQuery.Query {
	tq := bleve.NewTermQuery(userID)
	tq.SetField("user")
	return tq
}

// Search returns the user's favorites matching query, best first.
func (b *BleveEngine) Search(userID, query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 || userID == "" {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	// OR of per-term matches and prefixes across fields, with boosts
	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		for _, f := range []struct {
			name  string
			boost float64
		}{
			{"title", 4.0},
			{"abstract", 2.0},
			{"section", 1.0},
			{"url", 0.5},
		} {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(f.name)
			mq.SetBoost(f.boost)
			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f.name)
			pq.SetBoost(f.boost * 0.8)
			qs = append(qs, mq, pq)
		}
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	q := bleve.NewConjunctionQuery(userQuery(userID), bleve.NewDisjunctionQuery(qs...))
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"title", "abstract", "section", "url"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching favorites: %w", err)
	}

	current := b.favs.List(userID)
	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		fav := storage.FavoriteArticle{}
		if s, ok := h.Fields["title"].(string); ok {
			fav.Title = s
		}
		if s, ok := h.Fields["abstract"].(string); ok {
			fav.Abstract = s
		}
		if s, ok := h.Fields["section"].(string); ok {
			fav.Section = s
		}
		if s, ok := h.Fields["url"].(string); ok {
			fav.URL = s
		}

		r := &Result{Favorite: fav, Index: -1, Score: h.Score}
		for i, c := range current {
			if c.URL == fav.URL {
				r.Favorite = c
				r.Index = i
				break
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), 0, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return 0, err
	}
	return int(res.Total), nil
}

func docID(userID, url string) string { return "fav:" + userID + ":" + url }
