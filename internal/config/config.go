package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	API      APIConfig      `mapstructure:"api"`
	News     NewsConfig     `mapstructure:"news"`
	Session  SessionConfig  `mapstructure:"session"`
	UI       UIConfig       `mapstructure:"ui"`
	Log      LogConfig      `mapstructure:"log"`
	Browser  BrowserConfig  `mapstructure:"browser"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
}

// NewsConfig selects the article source. Source is "auto", "nyt" or "rss";
// the NYT source is only available with an API key.
type NewsConfig struct {
	Source        string        `mapstructure:"source"`
	APIKey        string        `mapstructure:"api_key"`
	TopStoriesURL string        `mapstructure:"top_stories_url"`
	RSSURL        string        `mapstructure:"rss_url"`
	PerPage       int           `mapstructure:"per_page"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerMinute int           `mapstructure:"rate_per_minute"`
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
	// RoutesFile replaces the built-in route table when set.
	RoutesFile string `mapstructure:"routes_file"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type BrowserConfig struct {
	Opener      string `mapstructure:"opener"`
	ImageViewer string `mapstructure:"image_viewer"`
	HTTPSOnly   bool   `mapstructure:"https_only"`
}

const (
	DefaultBaseURL       = "https://ellux.onrender.com"
	DefaultTopStoriesURL = "https://api.nytimes.com/svc/topstories/v2/home.json"
	DefaultRSSURL        = "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"
)

// DefaultPath is where Load looks for the config file.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "ellux", "config.toml")
}

func defaultConfig() *Config {
	dataDir := filepath.Join(xdg.DataHome, "ellux")

	return &Config{
		Database: DatabaseConfig{
			Path:        filepath.Join(dataDir, "ellux.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(dataDir, "favorites.bleve"),
		},
		API: APIConfig{
			BaseURL:       DefaultBaseURL,
			Timeout:       30 * time.Second,
			RatePerMinute: 60,
		},
		News: NewsConfig{
			Source:        "auto",
			TopStoriesURL: DefaultTopStoriesURL,
			RSSURL:        DefaultRSSURL,
			PerPage:       12,
			Timeout:       30 * time.Second,
			RatePerMinute: 10,
		},
		Session: SessionConfig{
			TTL: time.Hour,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

// envKeys are bound explicitly so nested keys pick up ELLUX_* variables
// even when no config file mentions them.
var envKeys = []string{
	"database.path",
	"database.search_index",
	"api.base_url",
	"api.timeout",
	"news.source",
	"news.api_key",
	"news.rss_url",
	"news.per_page",
	"session.ttl",
	"session.routes_file",
	"log.level",
	"log.path",
	"browser.opener",
	"browser.https_only",
}

// Load reads configPath, or the default location when empty. A .env file in
// the working directory is loaded first; VITE_API_BASE_URL and NYT_API_KEY
// from it are honored when the ELLUX_ variables are unset.
func Load(configPath string) (*Config, error) {
	loadDotEnv(".env")

	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ELLUX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyLegacyEnv(v, &config)
	normalize(&config)
	expandPaths(&config)

	return &config, nil
}

func loadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// Existing environment variables win over the file.
		_ = godotenv.Load(f)
	}
}

func applyLegacyEnv(v *viper.Viper, cfg *Config) {
	if !v.InConfig("api.base_url") && os.Getenv("ELLUX_API_BASE_URL") == "" {
		if base := os.Getenv("VITE_API_BASE_URL"); base != "" {
			cfg.API.BaseURL = base
		}
	}
	if cfg.News.APIKey == "" {
		cfg.News.APIKey = os.Getenv("NYT_API_KEY")
	}
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)
	v.SetDefault("database.search_index", cfg.Database.SearchIndex)
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)
	v.SetDefault("api.rate_per_minute", cfg.API.RatePerMinute)
	v.SetDefault("news.source", cfg.News.Source)
	v.SetDefault("news.api_key", cfg.News.APIKey)
	v.SetDefault("news.top_stories_url", cfg.News.TopStoriesURL)
	v.SetDefault("news.rss_url", cfg.News.RSSURL)
	v.SetDefault("news.per_page", cfg.News.PerPage)
	v.SetDefault("news.timeout", cfg.News.Timeout)
	v.SetDefault("news.rate_per_minute", cfg.News.RatePerMinute)
	v.SetDefault("session.ttl", cfg.Session.TTL)
	v.SetDefault("session.routes_file", cfg.Session.RoutesFile)
	c := cfg.UI.Colors
	for key, value := range map[string]string{
		"primary": c.Primary, "secondary": c.Secondary, "accent": c.Accent,
		"text": c.Text, "muted": c.Muted, "error": c.Error, "success": c.Success,
	} {
		v.SetDefault("ui.colors."+key, value)
	}
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.path", cfg.Log.Path)
	v.SetDefault("browser.opener", cfg.Browser.Opener)
	v.SetDefault("browser.image_viewer", cfg.Browser.ImageViewer)
	v.SetDefault("browser.https_only", cfg.Browser.HTTPSOnly)
}

// normalize replaces values that would break the client with defaults.
func normalize(cfg *Config) {
	def := defaultConfig()
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = def.Session.TTL
	}
	if cfg.News.PerPage <= 0 {
		cfg.News.PerPage = def.News.PerPage
	}
	if cfg.Database.Timeout <= 0 {
		cfg.Database.Timeout = def.Database.Timeout
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = def.API.Timeout
	}
	if cfg.News.Timeout <= 0 {
		cfg.News.Timeout = def.News.Timeout
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	cfg.News.Source = strings.ToLower(strings.TrimSpace(cfg.News.Source))
	if cfg.News.Source == "" {
		cfg.News.Source = "auto"
	}
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Session.RoutesFile = expandPath(cfg.Session.RoutesFile)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

// Save writes config as TOML. The API key is never written.
func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	v.Set("database", map[string]any{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	})
	v.Set("api", map[string]any{
		"base_url":        config.API.BaseURL,
		"timeout":         config.API.Timeout.String(),
		"rate_per_minute": config.API.RatePerMinute,
	})
	v.Set("news", map[string]any{
		"source":          config.News.Source,
		"top_stories_url": config.News.TopStoriesURL,
		"rss_url":         config.News.RSSURL,
		"per_page":        config.News.PerPage,
		"timeout":         config.News.Timeout.String(),
		"rate_per_minute": config.News.RatePerMinute,
	})
	v.Set("session", map[string]any{
		"ttl":         config.Session.TTL.String(),
		"routes_file": config.Session.RoutesFile,
	})
	v.Set("ui", map[string]any{
		"colors": map[string]any{
			"primary":   config.UI.Colors.Primary,
			"secondary": config.UI.Colors.Secondary,
			"accent":    config.UI.Colors.Accent,
			"text":      config.UI.Colors.Text,
			"muted":     config.UI.Colors.Muted,
			"error":     config.UI.Colors.Error,
			"success":   config.UI.Colors.Success,
		},
	})
	v.Set("log", map[string]any{
		"level": config.Log.Level,
		"path":  config.Log.Path,
	})
	v.Set("browser", map[string]any{
		"opener":       config.Browser.Opener,
		"image_viewer": config.Browser.ImageViewer,
		"https_only":   config.Browser.HTTPSOnly,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
