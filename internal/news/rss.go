package news

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/ellux/internal/storage"
)

// DefaultRSSURL is the NYT home page RSS feed.
const DefaultRSSURL = "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"

// RSS reads any RSS or Atom feed. It is the fallback when no API key is set.
type RSS struct {
	fetcher *Fetcher
	url     string
	parser  *gofeed.Parser
}

func NewRSS(fetcher *Fetcher, feedURL string) *RSS {
	return &RSS{fetcher: fetcher, url: feedURL, parser: gofeed.NewParser()}
}

func (r *RSS) Name() string    { return "rss" }
func (r *RSS) Priority() int   { return 10 }
func (r *RSS) Available() bool { return r.url != "" }

func (r *RSS) Fetch(ctx context.Context) ([]storage.Article, error) {
	resp, err := r.fetcher.Get(ctx, r.url, "application/rss+xml, application/atom+xml, application/xml, text/xml")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	feed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	return articlesFromFeed(feed), nil
}

func articlesFromFeed(feed *gofeed.Feed) []storage.Article {
	articles := make([]storage.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}

		abstract, inlineImage := htmlSummary(item.Description)
		a := storage.Article{
			Title:    strings.TrimSpace(item.Title),
			URL:      item.Link,
			Abstract: abstract,
			Section:  itemSection(item),
		}
		if len(item.Authors) > 0 && item.Authors[0].Name != "" {
			a.Byline = "By " + item.Authors[0].Name
		}
		if item.PublishedParsed != nil {
			a.PublishedDate = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			a.PublishedDate = *item.UpdatedParsed
		}
		a.Multimedia = itemMedia(item, inlineImage)
		articles = append(articles, a)
	}
	return articles
}

// itemSection uses the first category, lowercased the way NYT section
// names are.
func itemSection(item *gofeed.Item) string {
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" {
			return strings.ToLower(c)
		}
	}
	return ""
}

func itemMedia(item *gofeed.Item, inlineImage string) []storage.Multimedia {
	var media []storage.Multimedia
	seen := make(map[string]bool)
	add := func(url, format string) {
		if url == "" || seen[url] {
			return
		}
		seen[url] = true
		media = append(media, storage.Multimedia{URL: url, Format: format})
	}

	if item.Image != nil {
		add(item.Image.URL, "image")
	}
	if ext, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, e := range ext[name] {
				add(e.Attrs["url"], e.Attrs["medium"])
			}
		}
	}
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") {
			add(enc.URL, enc.Type)
		}
	}
	add(inlineImage, "image")
	return media
}

// htmlSummary reduces an HTML description to plain text and returns the
// first inline image, if any.
func htmlSummary(html string) (text, image string) {
	if !strings.Contains(html, "<") {
		return strings.TrimSpace(html), ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html), ""
	}
	image, _ = doc.Find("img").First().Attr("src")
	text = strings.Join(strings.Fields(doc.Text()), " ")
	return text, image
}
