package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// StatusKind indicates severity for status messages.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

func (k StatusKind) style() lipgloss.Style {
	switch k {
	case StatusSuccess:
		return StatusSuccessStyle
	case StatusWarn:
		return StatusWarnStyle
	case StatusError:
		return StatusErrorStyle
	default:
		return StatusInfoStyle
	}
}

// Canonical short status messages used across the app.
const (
	MsgLoading       = "Loading articles…"
	MsgNoResults     = "No results"
	MsgNoMore        = "No more articles"
	MsgSaved         = "Added to favorites"
	MsgUnsaved       = "Removed from favorites"
	MsgRemoved       = "Favorite removed"
	MsgNoImage       = "This article has no image"
	MsgSignInToSave  = "Sign in to see your favorites"
	statusLifetime   = 4 * time.Second
	searchResultsMax = 20
)

func MsgLoaded(count int, source string) string {
	return fmt.Sprintf("%d articles from %s", count, source)
}

func MsgMigrated(n int) string {
	if n == 1 {
		return "Moved 1 saved article to your account"
	}
	return fmt.Sprintf("Moved %d saved articles to your account", n)
}

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

type status struct {
	text    string
	kind    StatusKind
	expires time.Time
}

func (s status) visible(now time.Time) bool {
	return s.text != "" && (s.expires.IsZero() || now.Before(s.expires))
}
