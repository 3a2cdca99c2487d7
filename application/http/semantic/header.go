package semantic

import (
	"strings"

	"static-server/application/util/rule"

	"github.com/pkg/errors"
)

type Header struct{ name, value string }

// NewHeader validates field name as a token and field value as visible characters.
// Empty value is allowed.
func NewHeader(name, value string) (Header, error) {
	if name == "" {
		return Header{}, errors.Wrap(ErrInvalidInput, "header name is empty")
	}
	if !rule.IsValidToken(name) {
		return Header{}, errors.Wrapf(ErrValidationFailed, "header name is not a token: %q", name)
	}
	if !rule.IsVisible(value) {
		return Header{}, errors.Wrapf(ErrValidationFailed, "header value has control character: %q", value)
	}

	return Header{name: name, value: value}, nil
}

func (h Header) Name() string  { return h.name }
func (h Header) Value() string { return h.value }

// HasName reports whether the field name equals name.
// Field names are case-insensitive.
func (h Header) HasName(name string) bool { return strings.EqualFold(h.name, name) }

func (h Header) String() string { return h.name + ": " + h.value }

// Headers is an ordered collection of header fields.
// Duplicated names are kept.
type Headers struct{ fields []Header }

func NewHeaders(fields ...Header) Headers {
	clone := make([]Header, len(fields))
	copy(clone, fields)
	return Headers{fields: clone}
}

// Prepend returns new headers with h in front.
func (hs Headers) Prepend(h Header) Headers {
	fields := make([]Header, 0, len(hs.fields)+1)
	fields = append(fields, h)
	fields = append(fields, hs.fields...)
	return Headers{fields: fields}
}

// Get returns the value of the first field named key.
func (hs Headers) Get(key string) (value string, ok bool) {
	for _, h := range hs.fields {
		if h.HasName(key) {
			return h.value, true
		}
	}
	return "", false
}

func (hs Headers) Values(key string) []string {
	var values []string
	for _, h := range hs.fields {
		if h.HasName(key) {
			values = append(values, h.value)
		}
	}
	return values
}

func (hs Headers) Len() int { return len(hs.fields) }

// All returns a copy of the fields.
func (hs Headers) All() []Header {
	clone := make([]Header, len(hs.fields))
	copy(clone, hs.fields)
	return clone
}
