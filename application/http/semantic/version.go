package semantic

import (
	"strings"

	"static-server/application/util/rule"

	"github.com/pkg/errors"
)

// Version is HTTP-Version of form HTTP/<digit>[.<digit>].
// Minor version is optional.
type Version struct {
	raw          string
	major, minor uint8
}

const versionPrefix = "HTTP/"

func NewVersion(s string) (Version, error) {
	if s == "" {
		return Version{}, errors.Wrap(ErrInvalidInput, "version is empty")
	}

	rest, found := strings.CutPrefix(s, versionPrefix)
	if !found {
		return Version{}, errors.Wrapf(ErrValidationFailed, "http version prefix not found: %q", s)
	}

	switch {
	case len(rest) == 1 && rule.IsDigit(rest[0]):
		return Version{raw: s, major: rest[0] - '0'}, nil
	case len(rest) == 3 && rule.IsDigit(rest[0]) && rest[1] == '.' && rule.IsDigit(rest[2]):
		return Version{raw: s, major: rest[0] - '0', minor: rest[2] - '0'}, nil
	}

	return Version{}, errors.Wrapf(ErrValidationFailed, "malformed http version: %q", s)
}

func (v Version) Major() uint { return uint(v.major) }

// Minor returns 0 if minor version was omitted.
func (v Version) Minor() uint { return uint(v.minor) }

func (v Version) String() string { return v.raw }
