package tui

import (
	"errors"
	"fmt"

	"github.com/pders01/ellux/internal/pages"
)

// wrapErr formats an error with a contextual prefix.
func wrapErr(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// displayError is the text shown for err in the status bar. Page errors
// already carry a message meant for the user.
func displayError(err error) string {
	var ue *pages.UserError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return err.Error()
}
