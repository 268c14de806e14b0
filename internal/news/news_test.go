package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/ellux/internal/storage"
)

const topStoriesBody = `{
  "status": "OK",
  "results": [
    {
      "section": "world",
      "subsection": "europe",
      "title": "  Talks resume in Geneva ",
      "abstract": "Diplomats met again.",
      "url": "https://www.nytimes.com/2025/01/02/world/europe/geneva.html",
      "byline": "By A Reporter",
      "published_date": "2025-01-02T05:00:04-05:00",
      "multimedia": [{"url": "https://static01.nyt.com/geneva.jpg", "format": "Super Jumbo", "caption": "Geneva"}]
    },
    {"section": "arts", "title": "No link", "url": ""},
    {"section": "arts", "title": "Gallery", "url": "https://www.nytimes.com/arts/gallery.html", "published_date": ""}
  ]
}`

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/" xmlns:dc="http://purl.org/dc/elements/1.1/">
	<channel>
		<title>Home</title>
		<link>https://www.nytimes.com</link>
		<item>
			<title>Storm heads north</title>
			<link>https://www.nytimes.com/weather/storm.html</link>
			<description><![CDATA[<p>The storm <b>strengthened</b> overnight.</p><img src="https://img.example.com/storm.jpg">]]></description>
			<category>Weather</category>
			<dc:creator>Jane Doe</dc:creator>
			<pubDate>Wed, 01 Jan 2025 12:00:00 GMT</pubDate>
			<media:content url="https://img.example.com/storm-large.jpg" medium="image"/>
		</item>
		<item>
			<title>Plain text item</title>
			<link>https://www.nytimes.com/us/plain.html</link>
			<description>Just text.</description>
		</item>
		<item>
			<title>Missing link</title>
		</item>
	</channel>
</rss>`

func TestTopStories_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api-key"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, topStoriesBody)
	}))
	defer server.Close()

	src := NewTopStories(NewFetcher(0, time.Second), server.URL+"/svc/topstories/v2/home.json", "secret")
	require.True(t, src.Available())

	articles, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2, "items without url are dropped")

	first := articles[0]
	assert.Equal(t, "Talks resume in Geneva", first.Title)
	assert.Equal(t, "world", first.Section)
	assert.Equal(t, "europe", first.Subsection)
	assert.Equal(t, "https://static01.nyt.com/geneva.jpg", first.ImageURL())
	assert.Equal(t, 2025, first.PublishedDate.Year())
	assert.True(t, articles[1].PublishedDate.IsZero())
}

func TestTopStories_ErrorsHideAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	src := NewTopStories(NewFetcher(0, time.Second), server.URL, "secret")
	_, err := src.Fetch(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Equal(t, 30*time.Second, statusErr.RetryAfter)
	assert.NotContains(t, statusErr.URL, "secret")
}

func TestTopStories_UnavailableWithoutKey(t *testing.T) {
	assert.False(t, NewTopStories(NewFetcher(0, 0), "", "").Available())
	assert.Equal(t, DefaultTopStoriesURL, NewTopStories(nil, "", "").baseURL)
}

func TestRSS_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "application/rss+xml")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody)
	}))
	defer server.Close()

	src := NewRSS(NewFetcher(0, time.Second), server.URL)
	articles, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	storm := articles[0]
	assert.Equal(t, "Storm heads north", storm.Title)
	assert.Equal(t, "The storm strengthened overnight.", storm.Abstract)
	assert.Equal(t, "weather", storm.Section)
	assert.Equal(t, "By Jane Doe", storm.Byline)
	assert.Equal(t, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), storm.PublishedDate.UTC())
	require.Len(t, storm.Multimedia, 2)
	assert.Equal(t, "https://img.example.com/storm-large.jpg", storm.ImageURL())
	assert.Equal(t, "https://img.example.com/storm.jpg", storm.Multimedia[1].URL)

	assert.Equal(t, "Just text.", articles[1].Abstract)
	assert.Empty(t, articles[1].Multimedia)
}

func TestRSS_ParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not a feed")
	}))
	defer server.Close()

	_, err := NewRSS(NewFetcher(0, time.Second), server.URL).Fetch(context.Background())
	assert.Error(t, err)
}

type stubSource struct {
	name      string
	priority  int
	available bool
	articles  []storage.Article
	err       error
	calls     int
}

func (s *stubSource) Name() string    { return s.name }
func (s *stubSource) Priority() int   { return s.priority }
func (s *stubSource) Available() bool { return s.available }
func (s *stubSource) Fetch(context.Context) ([]storage.Article, error) {
	s.calls++
	return s.articles, s.err
}

func TestRegistry_Fetch(t *testing.T) {
	primary := &stubSource{name: "primary", priority: 100, available: true, err: errors.New("boom")}
	fallback := &stubSource{name: "fallback", priority: 10, available: true, articles: []storage.Article{{URL: "u"}}}
	disabled := &stubSource{name: "disabled", priority: 1000, available: false}

	r := NewRegistry(fallback, primary, disabled, nil)
	articles, name, err := r.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fallback", name)
	assert.Len(t, articles, 1)
	assert.Equal(t, 1, primary.calls, "higher priority source is tried first")
	assert.Equal(t, 0, disabled.calls)
}

func TestRegistry_FetchErrors(t *testing.T) {
	_, _, err := NewRegistry().Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)

	boom := errors.New("boom")
	r := NewRegistry(&stubSource{name: "a", available: true, err: boom})
	_, _, err = r.Fetch(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.True(t, strings.HasPrefix(err.Error(), "a: "))
}

func TestRegistry_Prefer(t *testing.T) {
	low := &stubSource{name: "rss", priority: 10, available: true, articles: []storage.Article{{URL: "rss"}}}
	high := &stubSource{name: "nyt", priority: 100, available: true, articles: []storage.Article{{URL: "nyt"}}}
	r := NewRegistry(high, low)

	r.Prefer("rss")
	r.Prefer("unknown")
	_, name, err := r.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rss", name)
	assert.Equal(t, "rss", r.Sources()[0].Name())
}

func TestLimiter(t *testing.T) {
	unlimited := NewLimiter(0)
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.Allow())
	}

	limited := NewLimiter(5)
	assert.True(t, limited.Allow())
	assert.False(t, limited.Allow(), "burst of one at 5 per minute")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &Fetcher{client: http.DefaultClient, limiter: limited}
	_, err := f.Get(ctx, "http://127.0.0.1:1", "")
	assert.Error(t, err)
}
