package semantic

import (
	"github.com/pkg/errors"
)

// Request is a fully validated request.
// It can only be built from already validated parts.
type Request struct {
	method  Method
	uri     URI
	version Version
	headers Headers
	body    Body
}

func NewRequest(method Method, uri URI, version Version, headers Headers, body Body) (*Request, error) {
	if method == "" || uri.value == "" || version.raw == "" {
		return nil, errors.Wrap(ErrInvalidInput, "request line is incomplete")
	}

	if body.b == nil {
		body = EmptyBody()
	}

	return &Request{
		method:  method,
		uri:     uri,
		version: version,
		headers: NewHeaders(headers.fields...),
		body:    body,
	}, nil
}

func (r *Request) Method() Method   { return r.method }
func (r *Request) URI() URI         { return r.uri }
func (r *Request) Version() Version { return r.version }
func (r *Request) Headers() Headers { return r.headers }
func (r *Request) Body() Body       { return r.body }
