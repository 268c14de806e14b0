package pages

import (
	"context"
	"errors"
	"strings"

	"github.com/pders01/ellux/internal/backend"
	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/storage"
	"github.com/pders01/ellux/internal/validation"
)

const (
	signinPath      = "/signin.html"
	signupPath      = "/signup.html"
	verifyEmailPath = "/verify-email.html"
	resetDonePath   = "/signin.html?reset=success"
)

// MsgUnexpectedFormat is shown when a login succeeds without a usable user.
const MsgUnexpectedFormat = "Server returned unexpected format"

// SignInForm is the sign-in form. Redirect is the page to return to, as
// passed in the "redirect" query parameter.
type SignInForm struct {
	Email    string
	Password string
	Redirect string
}

type SignIn struct {
	svc *Services
}

func NewSignIn(svc *Services) *SignIn {
	return &SignIn{svc: svc}
}

// Open redirects a signed-in user to the home page.
func (s *SignIn) Open() error {
	return s.svc.guard(signinPath)
}

// Submit validates the form, signs in and records the session. It returns
// the page to go to next.
func (s *SignIn) Submit(ctx context.Context, form SignInForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	err := validation.RequireFields(map[string]string{
		"email":    form.Email,
		"password": form.Password,
	}, "email", "password")
	if err == nil {
		err = validation.Email(form.Email)
	}
	if err != nil {
		return "", userError("signin", backend.OpLogin, err)
	}

	res, err := s.svc.Backend.Login(ctx, backend.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		return "", userError("signin", backend.OpLogin, err)
	}
	if err := s.svc.Gate.Record(res.Token, res.User); err != nil {
		if errors.Is(err, storage.ErrMalformedUser) {
			return "", userError("signin", backend.OpLogin, &UserError{Message: MsgUnexpectedFormat, Err: err})
		}
		return "", userError("signin", backend.OpLogin, &UserError{Message: "Could not save your session.", Err: err})
	}
	s.svc.KV.Remove(storage.KeyTempEmail)
	return s.next(form.Redirect), nil
}

// next resolves the redirect parameter to a page path. Only local page
// names are honored.
func (s *SignIn) next(redirect string) string {
	redirect = strings.TrimSpace(redirect)
	if redirect == "" || strings.Contains(redirect, "://") || strings.HasPrefix(redirect, "//") {
		return s.svc.Gate.Routes().Home
	}
	if !strings.HasPrefix(redirect, "/") {
		redirect = "/" + redirect
	}
	return redirect
}

// SignUpForm is the registration form.
type SignUpForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type SignUp struct {
	svc *Services
}

func NewSignUp(svc *Services) *SignUp {
	return &SignUp{svc: svc}
}

// Open redirects a signed-in user to the home page.
func (s *SignUp) Open() error {
	return s.svc.guard(signupPath)
}

// Submit validates and registers the account, remembering the email for the
// verification page. It returns the page to go to next.
func (s *SignUp) Submit(ctx context.Context, form SignUpForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	form.Username = strings.TrimSpace(form.Username)

	if err := validateSignUp(form); err != nil {
		return "", userError("signup", backend.OpGeneral, err)
	}

	err := s.svc.Backend.Signup(ctx, backend.Registration{
		Username:        form.Username,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		return "", userError("signup", backend.OpGeneral, err)
	}
	s.svc.rememberEmail(form.Email)
	return verifyEmailPath, nil
}

func validateSignUp(form SignUpForm) error {
	if err := validation.RequireFields(map[string]string{
		"username":        form.Username,
		"email":           form.Email,
		"password":        form.Password,
		"confirmPassword": form.ConfirmPassword,
	}, "username", "email", "password", "confirmPassword"); err != nil {
		return err
	}
	if err := validation.Email(form.Email); err != nil {
		return err
	}
	if err := validation.Username(form.Username); err != nil {
		return err
	}
	if err := validation.Password(form.Password); err != nil {
		return err
	}
	return validation.PasswordsMatch(form.Password, form.ConfirmPassword)
}

// ResetForm is the new-password form.
type ResetForm struct {
	Token              string
	NewPassword        string
	ConfirmNewPassword string
}

// PasswordReset drives the forgot-password and reset-password pages.
type PasswordReset struct {
	svc    *Services
	userID string
}

func NewPasswordReset(svc *Services) *PasswordReset {
	return &PasswordReset{svc: svc}
}

// Forgot asks for a reset mail and remembers the email.
func (p *PasswordReset) Forgot(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := validation.Email(email); err != nil {
		return userError("forgot-password", backend.OpGeneral, err)
	}
	if err := p.svc.Backend.ForgotPassword(ctx, email); err != nil {
		return userError("forgot-password", backend.OpGeneral, err)
	}
	p.svc.rememberEmail(email)
	return nil
}

// Verify checks the token from the reset link.
func (p *PasswordReset) Verify(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return &UserError{Message: "Invalid or expired reset token"}
	}
	info, err := p.svc.Backend.ValidateResetToken(ctx, token)
	if err != nil {
		return userError("reset-password", backend.OpGeneral, err)
	}
	if !info.Valid {
		return &UserError{Message: "Invalid or expired reset token"}
	}
	p.userID = info.UserID
	return nil
}

// Reset sets the new password and returns the page to go to next.
func (p *PasswordReset) Reset(ctx context.Context, form ResetForm) (string, error) {
	err := validation.RequireFields(map[string]string{
		"token":              form.Token,
		"newPassword":        form.NewPassword,
		"confirmNewPassword": form.ConfirmNewPassword,
	}, "token", "newPassword", "confirmNewPassword")
	if err == nil {
		err = validation.Password(form.NewPassword)
	}
	if err == nil {
		err = validation.PasswordsMatch(form.NewPassword, form.ConfirmNewPassword)
	}
	if err != nil {
		return "", userError("reset-password", backend.OpGeneral, err)
	}

	err = p.svc.Backend.ResetPassword(ctx, backend.PasswordReset{
		Token:              form.Token,
		NewPassword:        form.NewPassword,
		ConfirmNewPassword: form.ConfirmNewPassword,
		UserID:             p.userID,
	})
	if err != nil {
		return "", userError("reset-password", backend.OpGeneral, err)
	}
	return resetDonePath, nil
}

// Logout ends the session.
type Logout struct {
	svc *Services
}

func NewLogout(svc *Services) *Logout {
	return &Logout{svc: svc}
}

// Run tells the server, ignoring failures, and always clears the local
// session. It returns the sign-in page.
func (l *Logout) Run(ctx context.Context) string {
	if s, ok := l.svc.Gate.Current(); ok {
		if err := l.svc.Backend.Logout(ctx, s.Token); err != nil {
			debuglog.Warnf("server logout failed, clearing locally: %v", err)
		}
	}
	l.svc.Gate.Clear()
	return l.svc.Gate.Routes().Signin
}
