package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// ArticleURLValidator checks URLs before they are handed to an external
// opener or stored as a favorite key.
type ArticleURLValidator struct {
	// AllowHTTP permits plain http URLs in addition to https
	AllowHTTP bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewArticleURLValidator accepts http and https URLs up to 2048 characters.
func NewArticleURLValidator() *ArticleURLValidator {
	return &ArticleURLValidator{
		AllowHTTP: true,
		MaxLength: 2048,
	}
}

// NewStrictArticleURLValidator only accepts https.
func NewStrictArticleURLValidator() *ArticleURLValidator {
	return &ArticleURLValidator{
		AllowHTTP: false,
		MaxLength: 2048,
	}
}

// Validate returns the parsed URL in canonical form.
func (v *ArticleURLValidator) Validate(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fail("url", "URL cannot be empty")
	}
	if len(input) > v.MaxLength {
		return "", fail("url", fmt.Sprintf("URL too long (max %d characters)", v.MaxLength))
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fail("url", "URL contains invalid characters")
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return "", fail("url", fmt.Sprintf("invalid URL format: %v", err))
	}

	switch parsed.Scheme {
	case "https":
	case "http":
		if !v.AllowHTTP {
			return "", fail("url", "URL must use https")
		}
	default:
		return "", fail("url", fmt.Sprintf("refusing URL with scheme %q", parsed.Scheme))
	}

	if parsed.Host == "" {
		return "", fail("url", "URL must have a valid hostname")
	}
	if strings.HasPrefix(strings.ToLower(parsed.RawQuery), "javascript:") {
		return "", fail("url", "suspicious query parameters detected")
	}

	return parsed.String(), nil
}
