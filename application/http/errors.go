package http

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseErrorKind classifies why a request couldn't be parsed.
type ParseErrorKind uint8

const (
	// ErrNoMemory is reported when the request couldn't be built for lack of resources.
	ErrNoMemory ParseErrorKind = iota + 1
	// ErrInvalidFormat is reported when a required token is absent.
	ErrInvalidFormat
	// ErrValidationFailed is reported when a token is present but malformed.
	ErrValidationFailed
)

func (k ParseErrorKind) Error() string {
	switch k {
	case ErrNoMemory:
		return "no memory"
	case ErrInvalidFormat:
		return "invalid format"
	case ErrValidationFailed:
		return "validation failed"
	default:
		return fmt.Sprintf("unknown parse error: %d", k)
	}
}

// Stage names the part of the request being parsed when an error occurred.
type Stage string

const (
	StageRequestLine Stage = "request-line"
	StageMethod      Stage = "method"
	StageURI         Stage = "uri"
	StageVersion     Stage = "version"
	StageHeader      Stage = "header"
)

type ParseError struct {
	Kind  ParseErrorKind
	Stage Stage

	cause error
}

func newParseError(kind ParseErrorKind, stage Stage, cause error) *ParseError {
	return &ParseError{Kind: kind, Stage: stage, cause: cause}
}

// NewNoMemoryError reports a resource failure at stage.
func NewNoMemoryError(stage Stage, cause error) *ParseError {
	return newParseError(ErrNoMemory, stage, cause)
}

func (e *ParseError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("parsing %s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("parsing %s: %s: %s", e.Stage, e.Kind, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

// Is makes errors.Is(err, ErrValidationFailed) work on any wrapped ParseError.
func (e *ParseError) Is(target error) bool {
	kind, ok := target.(ParseErrorKind)
	return ok && kind == e.Kind
}

// AsParseError extracts *ParseError from err chain.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
