package http

import (
	"bytes"

	"static-server/application/http/semantic"

	"github.com/pkg/errors"
)

var colonSpace = []byte(": ")

// ParseRequest parses raw into a validated request.
// Either the whole request is returned, or nil and a *ParseError.
//
// The grammar accepted is:
//
//	request-line = method SP uri SP version EOL
//	header-line  = name ": " value EOL
//	request      = *EOL request-line *header-line [ EOL body ]
//
// where EOL is LF optionally preceded by CR.
// Header lines must hold ": " exactly once. This is stricter than RFC 7230 on purpose.
func ParseRequest(raw []byte) (*semantic.Request, error) {
	l := newLexer(raw)

	line, err := readRequestLine(l)
	if err != nil {
		return nil, err
	}

	parts := fields(line)

	method, err := parseMethod(parts)
	if err != nil {
		return nil, err
	}

	uri, err := parseURI(parts)
	if err != nil {
		return nil, err
	}

	version, err := parseVersion(parts)
	if err != nil {
		return nil, err
	}

	headers, err := parseHeaders(l)
	if err != nil {
		return nil, err
	}

	body := semantic.EmptyBody()
	if rest := l.rest(); len(rest) > 0 {
		body = semantic.NewBody(rest)
	}

	// NewRequest only refuses zero parts, which the stages above never return.
	request, err := semantic.NewRequest(method, uri, version, headers, body)
	if err != nil {
		return nil, newParseError(ErrInvalidFormat, StageRequestLine, err)
	}

	return request, nil
}

func readRequestLine(l *lexer) ([]byte, error) {
	for {
		line, ok := l.line()
		if !ok {
			return nil, newParseError(ErrInvalidFormat, StageRequestLine, errors.New("no request line"))
		}

		// An empty line can be received before message.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
		if len(fields(line)) > 0 {
			return line, nil
		}
	}
}

func parseMethod(parts [][]byte) (semantic.Method, error) {
	if len(parts) < 1 {
		return "", newParseError(ErrInvalidFormat, StageMethod, errors.New("method not found"))
	}

	raw := parts[0]
	if len(raw) < semantic.MinMethodLen || len(raw) > semantic.MaxMethodLen {
		return "", newParseError(ErrValidationFailed, StageMethod,
			errors.Errorf("method length %d out of range", len(raw)))
	}

	method, err := semantic.NewMethod(string(raw))
	if err != nil {
		return "", newParseError(ErrValidationFailed, StageMethod, err)
	}

	return method, nil
}

func parseURI(parts [][]byte) (semantic.URI, error) {
	if len(parts) < 2 {
		return semantic.URI{}, newParseError(ErrInvalidFormat, StageURI, errors.New("uri not found"))
	}

	uri, err := semantic.NewURI(string(parts[1]))
	if err != nil {
		return semantic.URI{}, newParseError(ErrValidationFailed, StageURI, err)
	}

	return uri, nil
}

func parseVersion(parts [][]byte) (semantic.Version, error) {
	if len(parts) < 3 {
		return semantic.Version{}, newParseError(ErrInvalidFormat, StageVersion, errors.New("version not found"))
	}
	if len(parts) > 3 {
		return semantic.Version{}, newParseError(ErrValidationFailed, StageVersion,
			errors.Errorf("unexpected %q after version", parts[3]))
	}

	version, err := semantic.NewVersion(string(parts[2]))
	if err != nil {
		return semantic.Version{}, newParseError(ErrValidationFailed, StageVersion, err)
	}

	return version, nil
}

func parseHeaders(l *lexer) (semantic.Headers, error) {
	headers := semantic.NewHeaders()
	for {
		line, ok := l.line()
		if !ok || len(line) == 0 {
			// Either no more input or an empty line which ends the header section.
			return headers, nil
		}

		header, err := parseHeader(line)
		if err != nil {
			return semantic.Headers{}, newParseError(ErrValidationFailed, StageHeader, err)
		}

		headers = headers.Prepend(header)
	}
}

func parseHeader(line []byte) (semantic.Header, error) {
	if n := bytes.Count(line, colonSpace); n != 1 {
		return semantic.Header{}, errors.Errorf("expected exactly one %q in header line, got %d: %q", colonSpace, n, line)
	}

	name, value, _ := bytes.Cut(line, colonSpace)

	return semantic.NewHeader(string(name), string(value))
}
