package semantic

import (
	"strings"

	"static-server/application/util/rule"

	"github.com/pkg/errors"
)

// URI is a request target taken as-is from the request line.
// It is neither normalized nor percent-decoded.
type URI struct{ value string }

func NewURI(s string) (URI, error) {
	if s == "" {
		return URI{}, errors.Wrap(ErrInvalidInput, "uri is empty")
	}

	for idx := 0; idx < len(s); idx++ {
		if !rule.IsURIChar(s[idx]) {
			return URI{}, errors.Wrapf(ErrValidationFailed, "invalid character %q in uri at %d", s[idx], idx)
		}
	}

	// Not a canonicalization, only rejects the obvious traversal attempt.
	if strings.Contains(s, "..") {
		return URI{}, errors.Wrap(ErrValidationFailed, "uri contains consecutive dots")
	}

	return URI{value: s}, nil
}

func (u URI) String() string { return u.value }

// Extension returns the text after the last '.' in the final path segment.
// It returns empty string if there's none.
func (u URI) Extension() string {
	seg := u.value[strings.LastIndexByte(u.value, '/')+1:]
	idx := strings.LastIndexByte(seg, '.')
	if idx < 0 {
		return ""
	}
	return seg[idx+1:]
}

// Stem returns the uri without its extension.
func (u URI) Stem() string {
	ext := u.Extension()
	if ext == "" {
		return u.value
	}
	return u.value[:len(u.value)-len(ext)-1]
}
