// Package backend talks to the account service: sign-in, sign-up,
// password reset, profile and logout.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/storage"
)

// DefaultBaseURL is the hosted account service.
const DefaultBaseURL = "https://ellux.onrender.com"

const (
	pathLogin          = "/api/users/login"
	pathSignup         = "/api/users/signup"
	pathForgotPassword = "/api/users/forgot-password"
	pathResetPassword  = "/api/users/reset-password"
	pathProfile        = "/api/users/profile"
	pathLogout         = "/api/users/logout"
)

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient returns a client for baseURL. A nil limiter means unlimited.
func NewClient(baseURL string, timeout time.Duration, limiter *rate.Limiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// BaseURL returns the service root without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Credentials is the sign-in form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// PasswordReset is the reset form.
type PasswordReset struct {
	Token              string `json:"token"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
	UserID             string `json:"userId,omitempty"`
}

// LoginResult is what a successful sign-in yields.
type LoginResult struct {
	Token string
	User  storage.User
}

// ResetToken describes a password reset token.
type ResetToken struct {
	UserID string `json:"userId"`
	Valid  bool   `json:"valid"`
}

// Login exchanges credentials for a token. The user record is read from a
// nested "user" object when present, else from the top level.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, pathLogin, "", creds, &raw); err != nil {
		return LoginResult{}, err
	}

	var body struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return LoginResult{}, fmt.Errorf("decoding login response: %w", err)
	}
	if body.Token == "" {
		return LoginResult{}, &APIError{Status: http.StatusOK, Message: "Server returned unexpected format"}
	}

	userJSON := []byte(body.User)
	if len(body.User) == 0 || string(body.User) == "null" {
		userJSON = raw
	}
	var user storage.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return LoginResult{}, fmt.Errorf("decoding login user: %w", err)
	}
	return LoginResult{Token: body.Token, User: user}, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, reg Registration) error {
	return c.do(ctx, http.MethodPost, pathSignup, "", reg, nil)
}

// ForgotPassword asks the service to mail a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, pathForgotPassword, "", map[string]string{"email": email}, nil)
}

// ValidateResetToken checks a reset token before showing the reset form.
func (c *Client) ValidateResetToken(ctx context.Context, token string) (ResetToken, error) {
	var out ResetToken
	path := pathResetPassword + "?token=" + url.QueryEscape(token)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return ResetToken{}, err
	}
	return out, nil
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, reset PasswordReset) error {
	return c.do(ctx, http.MethodPost, pathResetPassword, "", reset, nil)
}

// GetProfile fetches the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (storage.Profile, error) {
	var out storage.Profile
	if err := c.do(ctx, http.MethodGet, pathProfile, token, nil, &out); err != nil {
		return storage.Profile{}, err
	}
	return out, nil
}

// UpdateProfile sends the full set of profile fields and returns whatever
// the service echoes back; missing parts are left zero.
func (c *Client) UpdateProfile(ctx context.Context, token string, fields storage.ProfileFields) (storage.Profile, error) {
	var out storage.Profile
	if err := c.do(ctx, http.MethodPut, pathProfile, token, fields, &out); err != nil {
		return storage.Profile{}, err
	}
	return out, nil
}

// DeleteProfile deletes the account.
func (c *Client) DeleteProfile(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, pathProfile, token, nil, nil)
}

// Logout invalidates the token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, pathLogout, token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := debuglog.WithFields(map[string]any{"request_id": requestID, "method": method, "path": pathOnly(path)})
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warnf("request failed: %v", err)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	log.Debugf("status %d in %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// errorMessage pulls "message" (or "error") out of an error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

func pathOnly(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i]
	}
	return p
}
