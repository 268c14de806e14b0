package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/ellux/internal/storage"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", time.Second, nil)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0, nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 30*time.Second, c.http.Timeout)

	assert.Equal(t, "http://localhost:3000", NewClient("http://localhost:3000//", 0, nil).BaseURL())
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantID   string
		wantName string
	}{
		{"nested user", `{"token":"t1","user":{"id":"u1","username":"reader","email":"r@example.com"}}`, "u1", "reader"},
		{"top level mongo id", `{"token":"t1","_id":"m1","username":"reader","email":"r@example.com"}`, "m1", "reader"},
		{"numeric id", `{"token":"t1","user":{"id":42}}`, "42", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/users/login", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
				assert.NoError(t, err, "request id should be a uuid")

				var creds Credentials
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
				assert.Equal(t, Credentials{Email: "r@example.com", Password: "Abcdef1!"}, creds)

				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.response)
			})

			res, err := c.Login(context.Background(), Credentials{Email: "r@example.com", Password: "Abcdef1!"})
			require.NoError(t, err)
			assert.Equal(t, "t1", res.Token)
			assert.Equal(t, tt.wantID, res.User.ID)
			assert.Equal(t, tt.wantName, res.User.Username)
		})
	}
}

func TestLogin_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"bad credentials"}`)
	})
	_, err := c.Login(context.Background(), Credentials{})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	assert.Equal(t, MsgBadLogin, FriendlyMessage(err, OpLogin))

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"user":{"id":"u1"}}`)
	})
	_, err = c.Login(context.Background(), Credentials{})
	require.Error(t, err, "a response without token is rejected")
}

func TestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	c := NewClient(server.URL, time.Second, nil)
	server.Close()

	err := c.Signup(context.Background(), Registration{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, MsgConnect, FriendlyMessage(err, OpGeneral))
}

func TestPasswordResetFlow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/users/forgot-password":
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"email":"r@example.com"}`, string(body))
			fmt.Fprint(w, `{"message":"sent"}`)
		case r.URL.Path == "/api/users/reset-password" && r.Method == http.MethodGet:
			assert.Equal(t, "a b&c", r.URL.Query().Get("token"))
			fmt.Fprint(w, `{"userId":"u1","valid":true}`)
		case r.URL.Path == "/api/users/reset-password" && r.Method == http.MethodPost:
			var reset PasswordReset
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&reset))
			assert.Equal(t, "u1", reset.UserID)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
		}
	})

	ctx := context.Background()
	require.NoError(t, c.ForgotPassword(ctx, "r@example.com"))

	info, err := c.ValidateResetToken(ctx, "a b&c")
	require.NoError(t, err)
	assert.Equal(t, ResetToken{UserID: "u1", Valid: true}, info)

	require.NoError(t, c.ResetPassword(ctx, PasswordReset{Token: "a b&c", NewPassword: "Abcdef1!", ConfirmNewPassword: "Abcdef1!", UserID: info.UserID}))
}

func TestProfileCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/profile", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"user":{"_id":"u1","username":"reader"},"profile":{"firstName":"Ada","bio":"hi"}}`)
		case http.MethodPut:
			var fields storage.ProfileFields
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
			assert.Equal(t, "Lovelace", fields.LastName)
			fmt.Fprint(w, `{"profile":{"lastName":"Lovelace"}}`)
		case http.MethodDelete:
			w.WriteHeader(http.StatusOK)
		}
	})

	ctx := context.Background()
	p, err := c.GetProfile(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.User.ID)
	assert.Equal(t, "Ada", p.Profile.FirstName)

	updated, err := c.UpdateProfile(ctx, "tok", storage.ProfileFields{FirstName: "Ada", LastName: "Lovelace"})
	require.NoError(t, err)
	assert.Empty(t, updated.User.ID)
	assert.Equal(t, "Lovelace", updated.Profile.LastName)

	require.NoError(t, c.DeleteProfile(ctx, "tok"))
}

func TestLogout(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/users/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.Logout(context.Background(), "tok"))
	assert.Equal(t, 1, calls)
}

func TestFriendlyMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		op   Op
		want string
	}{
		{"nil", nil, OpGeneral, ""},
		{"network", fmt.Errorf("%w: refused", ErrNetwork), OpProfile, MsgConnect},
		{"not found", &APIError{Status: 404, Message: "nope"}, OpLogin, MsgUnavailable},
		{"login 401", &APIError{Status: 401}, OpLogin, MsgBadLogin},
		{"profile 401", &APIError{Status: 401}, OpProfile, MsgExpired},
		{"general 401 with message", &APIError{Status: 401, Message: "Token missing"}, OpGeneral, "Token missing"},
		{"server message", &APIError{Status: 400, Message: "Email already registered"}, OpGeneral, "Email already registered"},
		{"no message", &APIError{Status: 500}, OpGeneral, MsgUnexpected},
		{"plain error", errors.New("decoding response: eof"), OpGeneral, "decoding response: eof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FriendlyMessage(tt.err, tt.op))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "m", errorMessage([]byte(`{"message":"m","error":"e"}`)))
	assert.Equal(t, "e", errorMessage([]byte(`{"error":"e"}`)))
	assert.Empty(t, errorMessage([]byte(`<html>`)))
}
