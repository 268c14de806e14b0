package media

import (
	"fmt"
	"os/exec"
	"path"
	"runtime"
	"strings"

	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/validation"
)

type Type int

const (
	TypePage Type = iota
	TypeImage
)

func (t Type) String() string {
	if t == TypeImage {
		return "image"
	}
	return "page"
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".svg": true, ".avif": true,
}

// DetectType tells article pages from image links by the path extension.
func DetectType(rawURL string) Type {
	p := strings.ToLower(rawURL)
	if i := strings.IndexAny(p, "?#"); i != -1 {
		p = p[:i]
	}
	if imageExtensions[path.Ext(p)] {
		return TypeImage
	}
	return TypePage
}

// Options configures a Launcher. Empty commands fall back to the platform
// opener. HTTPSOnly refuses plain http links.
type Options struct {
	Opener      string
	ImageViewer string
	HTTPSOnly   bool
}

// Launcher opens article and image links in external applications.
type Launcher struct {
	opener      string
	imageViewer string
	validator   *validation.ArticleURLValidator
	start       func(name string, args ...string) error
}

func NewLauncher(opts Options) *Launcher {
	l := &Launcher{
		opener:    strings.TrimSpace(opts.Opener),
		validator: validation.NewArticleURLValidator(),
		start:     startDetached,
	}
	if opts.HTTPSOnly {
		l.validator = validation.NewStrictArticleURLValidator()
	}
	if l.opener == "" {
		l.opener = DefaultOpener()
	}
	if viewer := strings.TrimSpace(opts.ImageViewer); viewer != "" {
		l.imageViewer = findCommand(viewer)
	}
	if l.imageViewer == "" {
		l.imageViewer = l.opener
	}
	return l
}

// DefaultOpener is the platform's URL handler.
func DefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "rundll32"
	default:
		return "xdg-open"
	}
}

// Command returns the program and arguments Open would run for rawURL.
func (l *Launcher) Command(rawURL string) (string, []string, error) {
	target, err := l.validator.Validate(rawURL)
	if err != nil {
		return "", nil, err
	}

	name := l.opener
	if DetectType(target) == TypeImage {
		name = l.imageViewer
	}
	if name == "" {
		return "", nil, fmt.Errorf("no application found to open URL")
	}

	fields := strings.Fields(name)
	args := append(fields[1:], target)
	if fields[0] == "rundll32" && len(fields) == 1 {
		args = []string{"url.dll,FileProtocolHandler", target}
	}
	return fields[0], args, nil
}

// Open validates rawURL and hands it to the matching application without
// waiting for it to exit.
func (l *Launcher) Open(rawURL string) error {
	name, args, err := l.Command(rawURL)
	if err != nil {
		return err
	}
	debuglog.Debugf("opening %s with %s", args[len(args)-1], name)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		fields := strings.Fields(cmd)
		if len(fields) == 0 {
			continue
		}
		if _, err := exec.LookPath(fields[0]); err == nil {
			return cmd
		}
	}
	return ""
}
