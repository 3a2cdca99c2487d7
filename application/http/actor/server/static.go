package server

import (
	"os"
	"strings"

	"static-server/application/http/mime"
	"static-server/application/http/semantic"
	"static-server/application/http/semantic/status"

	"github.com/pkg/errors"
)

var (
	ErrMethodNotServed  = errors.New("method is not served")
	ErrUnknownExtension = errors.New("unknown extension")
	ErrFileNotFound     = errors.New("file not found")
)

// StaticHandler serves files below root, typed by registry.
// The request uri is appended to root as is.
func StaticHandler(root string, registry *mime.Registry) HandleFunc {
	root = strings.TrimSuffix(root, "/")

	return func(c *HandleContext, request *semantic.Request) error {
		uri := request.URI()

		// Browsers ask for it on their own. Only the .ico flavor is worth a response.
		if uri.Stem() == "/favicon" && uri.Extension() != "ico" {
			c.Logger().Debug("dropping favicon request", "uri", uri.String())
			c.Drop()
			return nil
		}

		method := request.Method().String()
		isHead := semantic.MethodHead.MatchesValue(method)
		if !isHead && !semantic.MethodGet.MatchesValue(method) {
			return status.NewError(errors.Wrap(ErrMethodNotServed, method), status.BadRequest)
		}

		ext := uri.Extension()
		t, ok := registry.Lookup(ext)
		if !ok {
			return status.NewError(errors.Wrapf(ErrUnknownExtension, "%q", ext), status.BadRequest)
		}

		path := root + uri.String()
		f, err := os.Open(path)
		if err != nil {
			// Permission errors are reported the same as missing files.
			return status.NewError(errors.Wrap(ErrFileNotFound, err.Error()), status.NotFound)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			return status.NewError(errors.Wrap(ErrFileNotFound, path), status.NotFound)
		}

		if err := c.Response().WriteHead(status.OK, &t); err != nil {
			return err
		}
		if isHead {
			return nil
		}

		return c.Response().Stream(f, t)
	}
}
