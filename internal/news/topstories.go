package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pders01/ellux/internal/storage"
)

// DefaultTopStoriesURL is the NYT Top Stories home feed.
const DefaultTopStoriesURL = "https://api.nytimes.com/svc/topstories/v2/home.json"

// TopStories reads the NYT Top Stories JSON API.
type TopStories struct {
	fetcher *Fetcher
	baseURL string
	apiKey  string
}

func NewTopStories(fetcher *Fetcher, baseURL, apiKey string) *TopStories {
	if baseURL == "" {
		baseURL = DefaultTopStoriesURL
	}
	return &TopStories{fetcher: fetcher, baseURL: baseURL, apiKey: apiKey}
}

func (t *TopStories) Name() string    { return "nyt" }
func (t *TopStories) Priority() int   { return 100 }
func (t *TopStories) Available() bool { return t.apiKey != "" }

type topStoriesResponse struct {
	Status  string           `json:"status"`
	Results []topStoriesItem `json:"results"`
}

type topStoriesItem struct {
	Title         string               `json:"title"`
	URL           string               `json:"url"`
	Abstract      string               `json:"abstract"`
	Section       string               `json:"section"`
	Subsection    string               `json:"subsection"`
	Byline        string               `json:"byline"`
	PublishedDate string               `json:"published_date"`
	Multimedia    []storage.Multimedia `json:"multimedia"`
}

// Fetch returns the current top stories. Items without a url are dropped.
func (t *TopStories) Fetch(ctx context.Context) ([]storage.Article, error) {
	u, err := url.Parse(t.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing top stories url: %w", err)
	}
	q := u.Query()
	q.Set("api-key", t.apiKey)
	u.RawQuery = q.Encode()

	resp, err := t.fetcher.Get(ctx, u.String(), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body topStoriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding top stories: %w", err)
	}

	articles := make([]storage.Article, 0, len(body.Results))
	for _, item := range body.Results {
		if item.URL == "" {
			continue
		}
		articles = append(articles, storage.Article{
			Title:         strings.TrimSpace(item.Title),
			URL:           item.URL,
			Abstract:      strings.TrimSpace(item.Abstract),
			Section:       item.Section,
			Subsection:    item.Subsection,
			Byline:        item.Byline,
			PublishedDate: parseTime(item.PublishedDate),
			Multimedia:    item.Multimedia,
		})
	}
	return articles, nil
}

// parseTime accepts RFC 3339 with or without fractional seconds. Anything
// else yields the zero time.
func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// redact hides the api key in urls that end up in errors and logs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("api-key") {
		q.Set("api-key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
