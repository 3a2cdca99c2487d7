// Package mime maps file extensions to media types.
package mime

import (
	"strings"

	"github.com/pkg/errors"
)

// Type is a media type together with how its content should be transferred.
type Type struct {
	ContentType string
	// Binary content is streamed in chunks. Text content is sent at once.
	Binary bool
}

var defaultTypes = map[string]Type{
	"html": {ContentType: "text/html"},
	"css":  {ContentType: "text/css"},
	"js":   {ContentType: "application/javascript"},
	"svg":  {ContentType: "image/svg+xml", Binary: true},
	"jpeg": {ContentType: "image/jpeg", Binary: true},
	"jpg":  {ContentType: "image/jpeg", Binary: true},
}

// Registry is an immutable extension to [Type] table.
type Registry struct{ types map[string]Type }

// Default returns the registry of builtin types.
func Default() *Registry {
	r, _ := New(nil)
	return r
}

// New creates a registry of builtin types, overwritten by overrides.
// Extensions are given without the leading dot.
func New(overrides map[string]Type) (*Registry, error) {
	types := make(map[string]Type, len(defaultTypes)+len(overrides))
	for ext, t := range defaultTypes {
		types[ext] = t
	}

	for ext, t := range overrides {
		if ext == "" || strings.ContainsAny(ext, "./") {
			return nil, errors.Errorf("invalid extension: %q", ext)
		}
		if t.ContentType == "" {
			return nil, errors.Errorf("empty content type for extension %q", ext)
		}
		types[ext] = t
	}

	return &Registry{types: types}, nil
}

// Lookup finds the type of ext by exact match.
// ok is false if ext isn't registered.
func (r *Registry) Lookup(ext string) (t Type, ok bool) {
	t, ok = r.types[ext]
	return
}

// ParseOverrides parses comma separated "ext=content/type[;binary]" entries.
// e.g. "txt=text/plain,png=image/png;binary"
func ParseOverrides(s string) (map[string]Type, error) {
	overrides := make(map[string]Type)
	if strings.TrimSpace(s) == "" {
		return overrides, nil
	}

	for _, entry := range strings.Split(s, ",") {
		ext, rest, found := strings.Cut(strings.TrimSpace(entry), "=")
		if !found {
			return nil, errors.Errorf("missing '=' in mime entry: %q", entry)
		}

		contentType, flag, _ := strings.Cut(rest, ";")
		t := Type{ContentType: contentType}
		switch flag {
		case "":
		case "binary":
			t.Binary = true
		default:
			return nil, errors.Errorf("unknown flag %q in mime entry: %q", flag, entry)
		}

		overrides[ext] = t
	}

	return overrides, nil
}
