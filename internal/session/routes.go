package session

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed routes.toml
var routesTOML []byte

// Routes tells the gate which pages need a session and which ones a
// signed-in user should not see.
type Routes struct {
	Protected []string `toml:"protected"`
	AuthOnly  []string `toml:"auth_only"`
	Signin    string   `toml:"signin"`
	Home      string   `toml:"home"`
}

// DefaultRoutes returns the built-in route table.
func DefaultRoutes() Routes {
	r, err := ParseRoutes(routesTOML)
	if err != nil {
		// The embedded table is part of the binary; failing here is a build defect.
		panic(err)
	}
	return r
}

// ParseRoutes decodes a route table and fills in missing redirect targets.
func ParseRoutes(data []byte) (Routes, error) {
	var r Routes
	if err := toml.Unmarshal(data, &r); err != nil {
		return Routes{}, fmt.Errorf("parsing routes: %w", err)
	}
	if r.Signin == "" {
		r.Signin = "/signin.html"
	}
	if r.Home == "" {
		r.Home = "/index.html"
	}
	return r, nil
}

func (r Routes) isProtected(path string) bool {
	for _, p := range r.Protected {
		if path == p {
			return true
		}
	}
	return false
}

func (r Routes) isAuthOnly(path string) bool {
	for _, p := range r.AuthOnly {
		if p != "" && strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// cleanPath drops the query string and fragment.
func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	return path
}
