package server

import (
	"context"
	"log/slog"

	"static-server/application/http/semantic"
	"static-server/transport"

	"github.com/pkg/errors"
)

// HandleFunc answers request through c.Response().
// Returning an error before the head is written makes the connection answer
// with the error's status (see [status.Error]), or 500 otherwise.
type HandleFunc func(c *HandleContext, request *semantic.Request) error

var ErrHandlerPanicked = errors.New("handler panicked")

type HandleContext struct {
	ctx context.Context

	remoteAddr transport.Addr
	logger     *slog.Logger
	response   *ResponseWriter

	dropped bool
}

func (c *HandleContext) doHandle(handle HandleFunc, request *semantic.Request) (err error) {
	defer func() {
		if e := recover(); e != nil {
			err = errors.Wrapf(ErrHandlerPanicked, "%v", e)
		}
	}()

	return handle(c, request)
}

func (c *HandleContext) Context() context.Context   { return c.ctx }
func (c *HandleContext) RemoteAddr() transport.Addr { return c.remoteAddr }
func (c *HandleContext) Logger() *slog.Logger       { return c.logger }
func (c *HandleContext) Response() *ResponseWriter  { return c.response }

// Drop closes the connection without sending anything.
// It has no effect once the head is written.
func (c *HandleContext) Drop() { c.dropped = true }
