package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind categorizes a failed API call.
type Kind int

const (
	KindUnknown Kind = iota
	// NetworkUnavailable means no response was received at all.
	NetworkUnavailable
	// InvalidCredentials is a 401 from the login endpoint.
	InvalidCredentials
	// SessionExpired means a 401 could not be recovered because the refresh failed.
	SessionExpired
	// ServerError covers 5xx responses and bodies that could not be understood.
	ServerError
	// ValidationError is a 4xx carrying field-level detail.
	ValidationError
	// Unauthorized is a 401 that was not recovered by a refresh.
	Unauthorized
	Forbidden
	NotFound
)

func (k Kind) String() string {
	switch k {
	case NetworkUnavailable:
		return "network unavailable"
	case InvalidCredentials:
		return "invalid credentials"
	case SessionExpired:
		return "session expired"
	case ServerError:
		return "server error"
	case ValidationError:
		return "validation error"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	default:
		return "unknown error"
	}
}

// Error is returned for every failed API call.
type Error struct {
	Kind       Kind
	StatusCode int                 // 0 when no response was received
	Detail     string              // the backend's "detail" message, if any
	Fields     map[string][]string // field-level messages, surfaced verbatim
	Body       []byte
	Err        error
}

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrNetworkUnavailable = &Error{Kind: NetworkUnavailable}
	ErrInvalidCredentials = &Error{Kind: InvalidCredentials}
	ErrSessionExpired     = &Error{Kind: SessionExpired}
	ErrServerError        = &Error{Kind: ServerError}
	ErrValidation         = &Error{Kind: ValidationError}
	ErrUnauthorized       = &Error{Kind: Unauthorized}
	ErrForbidden          = &Error{Kind: Forbidden}
	ErrNotFound           = &Error{Kind: NotFound}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "; %s: %s", k, strings.Join(e.Fields[k], " "))
	}
	if e.Err != nil && e.Detail == "" && len(e.Fields) == 0 {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the package sentinels by Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.StatusCode == 0 && t.Err == nil && t.Detail == "" && t.Kind == e.Kind
}

// withKind returns a copy of e re-categorized, keeping the response detail.
func (e *Error) withKind(k Kind) *Error {
	cp := *e
	cp.Kind = k
	return &cp
}

// kindForStatus maps an HTTP status to the error taxonomy.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return Unauthorized
	case status == http.StatusForbidden:
		return Forbidden
	case status == http.StatusNotFound:
		return NotFound
	case status >= 400 && status < 500:
		return ValidationError
	default:
		return ServerError
	}
}

// newHTTPError builds an Error from a non-2xx response. The body is parsed the way the
// backend formats errors: {"detail": "..."} or {"field": ["msg", ...], ...}.
func newHTTPError(status int, body []byte) *Error {
	e := &Error{Kind: kindForStatus(status), StatusCode: status, Body: body}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		e.Detail = bodyPreview(body)
		if e.Detail == "" {
			e.Detail = http.StatusText(status)
		}
		return e
	}

	for field, raw := range payload {
		if field == "detail" {
			var detail string
			if json.Unmarshal(raw, &detail) == nil {
				e.Detail = detail
				continue
			}
		}
		if msgs := fieldMessages(raw); len(msgs) > 0 {
			if e.Fields == nil {
				e.Fields = make(map[string][]string)
			}
			e.Fields[field] = msgs
		}
	}
	return e
}

func fieldMessages(raw json.RawMessage) []string {
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var single string
	if json.Unmarshal(raw, &single) == nil {
		return []string{single}
	}
	return []string{string(raw)}
}

func bodyPreview(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
