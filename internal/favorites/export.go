package favorites

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/pders01/ellux/internal/storage"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat accepts json, yaml/yml and toml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

type exportEntry struct {
	Title     string     `json:"title" yaml:"title" toml:"title"`
	URL       string     `json:"url" yaml:"url" toml:"url"`
	Published *time.Time `json:"published_date,omitempty" yaml:"published_date,omitempty" toml:"published_date,omitempty"`
	Abstract  string     `json:"abstract,omitempty" yaml:"abstract,omitempty" toml:"abstract,omitempty"`
	ImageURL  string     `json:"image_url,omitempty" yaml:"image_url,omitempty" toml:"image_url,omitempty"`
	Section   string     `json:"section,omitempty" yaml:"section,omitempty" toml:"section,omitempty"`
}

type exportDoc struct {
	User       string        `json:"user" yaml:"user" toml:"user"`
	ExportedAt time.Time     `json:"exported_at" yaml:"exported_at" toml:"exported_at"`
	Favorites  []exportEntry `json:"favorites" yaml:"favorites" toml:"favorites"`
}

// Export writes list to w in the given format.
func Export(w io.Writer, format Format, userID string, list []storage.FavoriteArticle) error {
	doc := exportDoc{
		User:       userID,
		ExportedAt: time.Now().UTC().Truncate(time.Second),
		Favorites:  make([]exportEntry, 0, len(list)),
	}
	for _, f := range list {
		doc.Favorites = append(doc.Favorites, exportEntry{
			Title:     f.Title,
			URL:       f.URL,
			Published: f.PublishedDate,
			Abstract:  f.Abstract,
			ImageURL:  f.ImageURL,
			Section:   f.Section,
		})
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(doc); err != nil {
			return fmt.Errorf("encoding toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
