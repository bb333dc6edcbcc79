package clierr

import (
	"errors"
	"fmt"

	"github.com/habedi/escola/client"
)

// Type categorizes a CLI-facing error for consistent messaging & exit codes.
type Type string

const (
	Validation Type = "validation"
	NotFound   Type = "not_found"
	Auth       Type = "auth"
	Forbidden  Type = "forbidden"
	Network    Type = "network"
	Download   Type = "download"
	Internal   Type = "internal"
)

// Error is a structured user-facing error.
type Error struct {
	Type    Type
	Message string
	Err     error // optional underlying error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// New constructs a new CLI Error.
func New(t Type, msg string, err error) *Error { return &Error{Type: t, Message: msg, Err: err} }

// ExitCode is the process status for an error of this type.
func (t Type) ExitCode() int {
	switch t {
	case Validation:
		return 2
	case Auth, Forbidden:
		return 3
	case NotFound:
		return 4
	case Network:
		return 5
	default:
		return 1
	}
}

// FromAPI turns a failed API call into a user-facing error. action describes what was being
// attempted, e.g. "list students".
func FromAPI(action string, err error) *Error {
	if err == nil {
		return nil
	}
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var apiErr *client.Error
	if !errors.As(err, &apiErr) {
		return New(Internal, fmt.Sprintf("Failed to %s: %v", action, err), err)
	}
	switch apiErr.Kind {
	case client.InvalidCredentials:
		return New(Auth, "Invalid email or password.", err)
	case client.SessionExpired, client.Unauthorized:
		return New(Auth, "Your session has expired. Please run `escola login` again.", err)
	case client.Forbidden:
		return New(Forbidden, fmt.Sprintf("You are not allowed to %s.", action), err)
	case client.NotFound:
		return New(NotFound, fmt.Sprintf("Failed to %s: not found.", action), err)
	case client.ValidationError:
		return New(Validation, fmt.Sprintf("Failed to %s: %s", action, apiErr.Error()), err)
	case client.NetworkUnavailable:
		return New(Network, "The server could not be reached. Check your connection and the API URL.", err)
	default:
		return New(Internal, fmt.Sprintf("Failed to %s: %s", action, apiErr.Error()), err)
	}
}
