package semantic

import "bytes"

// Body is the raw payload following the header section.
// It is never nil. An absent body is an empty one.
type Body struct{ b []byte }

func EmptyBody() Body { return Body{b: []byte{}} }

func NewBody(b []byte) Body {
	if b == nil {
		return EmptyBody()
	}
	return Body{b: bytes.Clone(b)}
}

func (b Body) Bytes() []byte {
	if b.b == nil {
		return []byte{}
	}
	return bytes.Clone(b.b)
}

func (b Body) Len() int       { return len(b.b) }
func (b Body) String() string { return string(b.b) }
