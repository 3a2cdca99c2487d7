package semantic

import (
	"slices"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is returned when a required input is absent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrValidationFailed is returned when an input doesn't follow its grammar.
	ErrValidationFailed = errors.New("validation failed")
)

type Method string

// Reference: https://www.w3.org/Protocols/rfc2616/rfc2616-sec9.html
const (
	MethodOptions Method = "OPTIONS"
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodDelete  Method = "DELETE"
	MethodTrace   Method = "TRACE"
	MethodConnect Method = "CONNECT"
)

// Shortest method is GET and longest is OPTIONS.
const (
	MinMethodLen = 3
	MaxMethodLen = 7
)

func Methods() []Method {
	return []Method{
		MethodOptions, MethodGet, MethodHead, MethodPost,
		MethodPut, MethodDelete, MethodTrace, MethodConnect,
	}
}

func IsValidMethod(s string) bool {
	return slices.Contains(Methods(), Method(s))
}

func NewMethod(s string) (Method, error) {
	if s == "" {
		return "", errors.Wrap(ErrInvalidInput, "method is empty")
	}
	if !IsValidMethod(s) {
		return "", errors.Wrapf(ErrValidationFailed, "unknown method %q", s)
	}
	return Method(s), nil
}

// MatchesValue reports whether candidate names the same method as m.
// An unknown candidate never matches.
func (m Method) MatchesValue(candidate string) bool {
	return IsValidMethod(candidate) && string(m) == candidate
}

func (m Method) String() string { return string(m) }
