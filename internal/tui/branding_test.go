package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/ellux/internal/config"
)

func TestBanner(t *testing.T) {
	out := Banner("1.0.0-test")

	if !strings.Contains(out, "News & Favorites") {
		t.Errorf("Expected banner to contain tagline, got: %s", out)
	}
	if !strings.Contains(out, "╔") || !strings.Contains(out, "╝") {
		t.Errorf("Expected banner to contain border characters, got: %s", out)
	}
	if !strings.Contains(out, "v1.0.0-test") {
		t.Errorf("Expected banner to contain version 'v1.0.0-test', got: %s", out)
	}
	if strings.Contains(Banner("dev"), "vdev") {
		t.Error("dev builds should not get a version tag")
	}
}

func TestGetCompactBanner(t *testing.T) {
	message := "Test message"
	result := GetCompactBanner(message)

	if !strings.Contains(result, message) {
		t.Errorf("Expected compact banner to contain '%s', got: %s", message, result)
	}
	if !strings.Contains(result, LogoLines[0]) {
		t.Errorf("Expected compact banner to contain logo elements, got: %s", result)
	}
}

func TestLogoLines(t *testing.T) {
	if len(LogoLines) != 4 {
		t.Errorf("Expected 4 logo lines, got %d", len(LogoLines))
	}
	width := len([]rune(LogoLines[0]))
	for i, line := range LogoLines {
		if got := len([]rune(line)); got != width {
			t.Errorf("logo line %d is %d runes wide, want %d", i, got, width)
		}
	}
}

func TestApplyColors(t *testing.T) {
	saved := PrimaryColor
	t.Cleanup(func() {
		PrimaryColor = saved
		buildStyles()
	})

	ApplyColors(config.UIColors{Primary: "#123456"})
	if PrimaryColor != lipgloss.Color("#123456") {
		t.Errorf("PrimaryColor = %v, want #123456", PrimaryColor)
	}
	if SecondaryColor == "" {
		t.Error("empty config color should keep the built-in one")
	}
}
