package pages

import (
	"errors"
	"net/url"

	"github.com/pders01/ellux/internal/backend"
	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/validation"
)

// UserError carries a message meant for the user. The technical cause is
// kept for errors.Is/As and logging.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }
func (e *UserError) Unwrap() error { return e.Err }

// Redirect tells the caller to show another page instead.
type Redirect struct {
	To    string
	Query url.Values
}

func (r *Redirect) Error() string {
	return "redirect to " + r.Target()
}

// Target is To with the query string, if any.
func (r *Redirect) Target() string {
	if len(r.Query) == 0 {
		return r.To
	}
	return r.To + "?" + r.Query.Encode()
}

// AsRedirect reports whether err asks for a redirect.
func AsRedirect(err error) (*Redirect, bool) {
	var r *Redirect
	ok := errors.As(err, &r)
	return r, ok
}

// userError logs err and wraps it with the message the user should see.
// Validation errors already read well and are shown as they are.
func userError(page string, op backend.Op, err error) error {
	if err == nil {
		return nil
	}
	debuglog.WithFields(map[string]any{"page": page}).Warnf("%v", err)

	if errors.Is(err, validation.ErrValidation) {
		return &UserError{Message: err.Error(), Err: err}
	}
	return &UserError{Message: backend.FriendlyMessage(err, op), Err: err}
}
