package siege

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnknownPlatform  = errors.New("unknown platform")
	ErrUnknownOperator  = errors.New("unknown operator")
	ErrInvalidProfileID = errors.New("invalid profile id")
	ErrNoStats          = errors.New("no statistics returned for profile")
	ErrNoRankedData     = errors.New("no ranked data in any region")
)

// AuthenticationError is returned when the identity service refuses a login.
type AuthenticationError struct {
	StatusCode int
	Payload    map[string]any
	Body       []byte
}

func (e *AuthenticationError) Error() string {
	if len(e.Payload) > 0 {
		return fmt.Sprintf("failed to authenticate: status %d: %v", e.StatusCode, e.Payload)
	}
	return fmt.Sprintf("failed to authenticate: status %d: %s", e.StatusCode, string(e.Body))
}

// Kind classifies a non-200 response from the game data service.
type Kind int

const (
	KindFailed Kind = iota
	KindNotFound
	KindUnauthorized
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindTransient:
		return "transient"
	default:
		return "failed"
	}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusTooManyRequests, status >= 500:
		return KindTransient
	default:
		return KindFailed
	}
}

// ResponseError is returned for any game data response that was not a 200,
// including a 401 that survived one relogin.
type ResponseError struct {
	Kind       Kind
	StatusCode int
	URL        string
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("GET %s: status %d (%s)", e.URL, e.StatusCode, e.Kind)
}

func hasKind(err error, kind Kind) bool {
	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.Kind == kind
}

func IsNotFound(err error) bool     { return hasKind(err, KindNotFound) }
func IsUnauthorized(err error) bool { return hasKind(err, KindUnauthorized) }
func IsTransient(err error) bool    { return hasKind(err, KindTransient) }
