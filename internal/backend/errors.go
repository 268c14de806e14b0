package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork wraps every transport failure: DNS, refused connections,
// timeouts and cancelled requests.
var ErrNetwork = errors.New("network error")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Op names the kind of call whose error is being shown; 401 means different
// things for a login and for a profile request.
type Op int

const (
	OpGeneral Op = iota
	OpLogin
	OpProfile
)

const (
	MsgConnect     = "Unable to connect to the server. Please check your internet connection."
	MsgUnavailable = "The service is currently unavailable. Please try again later."
	MsgBadLogin    = "Invalid email or password."
	MsgExpired     = "Session expired. Please sign in again."
	MsgUnexpected  = "An unexpected error occurred."
)

// FriendlyMessage turns err into text fit for the user.
func FriendlyMessage(err error, op Op) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNetwork) {
		return MsgConnect
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch {
	case apiErr.Status == http.StatusNotFound:
		return MsgUnavailable
	case apiErr.Status == http.StatusUnauthorized && op == OpLogin:
		return MsgBadLogin
	case apiErr.Status == http.StatusUnauthorized && op == OpProfile:
		return MsgExpired
	case apiErr.Message != "":
		return apiErr.Message
	default:
		return MsgUnexpected
	}
}
