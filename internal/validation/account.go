package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrValidation is the sentinel every *Error matches with errors.Is.
var ErrValidation = errors.New("validation failed")

// Error describes rejected input. Problems holds one entry per unmet rule.
type Error struct {
	Field    string
	Problems []string
}

func (e *Error) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrValidation
}

func fail(field string, problems ...string) *Error {
	return &Error{Field: field, Problems: problems}
}

// PasswordSymbols is the set of characters that satisfy the symbol rule.
const PasswordSymbols = "!@#$%^&*"

const (
	minPasswordLength = 8
	minUsernameLength = 3
	maxUsernameLength = 20
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

// RequireFields fails listing every field of record that is missing or
// blank, in the order the fields were given.
func RequireFields(record map[string]string, fields ...string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(record[f]) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &Error{
			Field:    strings.Join(missing, ","),
			Problems: []string{fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", "))},
		}
	}
	return nil
}

// Email accepts a simple local@domain.tld shape.
func Email(value string) error {
	if value == "" {
		return fail("email", "Email is required")
	}
	if !emailPattern.MatchString(value) {
		return fail("email", "Please enter a valid email")
	}
	return nil
}

// Password requires a minimum length plus an uppercase letter, a lowercase
// letter, a digit and a symbol from PasswordSymbols. Every unmet rule is
// reported.
func Password(value string) error {
	if value == "" {
		return fail("password", "Password is required")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		}
	}

	var problems []string
	if utf8.RuneCountInString(value) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if !hasUpper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		problems = append(problems, "Password must contain at least one number")
	}
	if !hasSymbol {
		problems = append(problems, fmt.Sprintf("Password must contain at least one special character (%s)", PasswordSymbols))
	}
	if len(problems) > 0 {
		return fail("password", problems...)
	}
	return nil
}

// Username allows 3 to 20 letters, digits or underscores.
func Username(value string) error {
	if value == "" {
		return fail("username", "Username is required")
	}
	n := utf8.RuneCountInString(value)
	if n < minUsernameLength {
		return fail("username", fmt.Sprintf("Username must be at least %d characters", minUsernameLength))
	}
	if n > maxUsernameLength {
		return fail("username", fmt.Sprintf("Username must be at most %d characters", maxUsernameLength))
	}
	if !usernamePattern.MatchString(value) {
		return fail("username", "Username can only contain letters, numbers and underscores")
	}
	return nil
}

// PasswordsMatch fails when the confirmation differs from the password.
func PasswordsMatch(password, confirm string) error {
	if password != confirm {
		return fail("confirmPassword", "Passwords do not match")
	}
	return nil
}
