package config

import (
	"path/filepath"
	"time"
)

// TestConfig returns a config suitable for testing, with data paths under dir.
func TestConfig(dir string) *Config {
	cfg := defaultConfig()
	cfg.Database.Path = filepath.Join(dir, "test.db")
	cfg.Database.SearchIndex = filepath.Join(dir, "test.bleve")
	cfg.API.BaseURL = "http://127.0.0.1:0"
	cfg.API.Timeout = 5 * time.Second
	cfg.API.RatePerMinute = 0
	cfg.News.Timeout = 5 * time.Second
	cfg.News.RatePerMinute = 0
	cfg.Browser.Opener = "true"
	return cfg
}
