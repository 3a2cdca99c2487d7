package server

import (
	"context"
	"log/slog"
	"time"

	"static-server/application/http"
	"static-server/application/http/semantic"
	"static-server/application/http/semantic/status"
	"static-server/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// conn serves exactly one request, then closes.
type conn struct {
	con       transport.Conn
	admission *Admission

	handle HandleFunc
	clock  clock.Clock
	logger *slog.Logger

	opts Options
}

func (c *conn) start(ctx context.Context) {
	started := c.clock.Now()

	// Shutting the server down aborts whatever the connection is blocked on.
	stop := context.AfterFunc(ctx, func() { _ = c.con.Close() })
	defer stop()

	if !c.admission.TryAcquire() {
		c.reject()
		return
	}
	defer c.admission.Release()
	defer c.close(started)

	c.logger.Debug("admitted", "in_flight", c.admission.Count())

	raw, err := c.receive()
	if err != nil {
		switch {
		case errors.Is(err, transport.ErrConnClosed):
			c.logger.Debug("peer closed before sending a request")
		case errors.Is(err, transport.ErrDeadLineExceeded):
			c.logger.Info("read timeout exceeded", "timeout", c.opts.Serve.Timeout.ReadTimeout)
		default:
			c.logger.Error("failed to read request", "error", err)
		}
		return
	}

	request, err := parse(raw)
	if err != nil {
		if errors.Is(err, http.ErrNoMemory) {
			c.logger.Error("could not build request", "error", err)
			return
		}

		if pe, ok := http.AsParseError(err); ok {
			c.logger.Info("invalid request", "stage", pe.Stage, "error", err)
		} else {
			c.logger.Info("invalid request", "error", err)
		}
		c.writeError(status.BadRequest)
		return
	}

	c.logger.Debug("serving",
		"method", request.Method(),
		"uri", request.URI().String(),
		"version", request.Version().String(),
	)
	c.serve(ctx, request)
}

// reject answers 503 without reading anything.
func (c *conn) reject() {
	c.logger.Warn("rejecting connection", "max", c.admission.Max())
	c.writeError(status.ServiceUnavailable)
	if err := c.con.Close(); err != nil {
		c.logger.Error("error when closing connection", "error", err)
	}
}

func (c *conn) close(started time.Time) {
	c.logger.Debug("closing connection", "elapsed", c.clock.Since(started))
	if err := c.con.Close(); err != nil {
		c.logger.Error("error when closing connection", "error", err)
	}
}

// receive takes a single read. Whatever doesn't fit in the buffer is ignored.
func (c *conn) receive() ([]byte, error) {
	if timeout := c.opts.Serve.Timeout.ReadTimeout; timeout > 0 {
		c.con.SetReadDeadLine(c.clock.Now().Add(timeout))
	}

	buf := make([]byte, c.opts.Serve.BufferSize)
	n, err := c.con.Read(buf)
	if err != nil {
		return nil, errors.Wrap(err, "receiving request")
	}
	if n == 0 {
		return nil, transport.ErrConnClosed
	}

	return buf[:n], nil
}

func parse(raw []byte) (request *semantic.Request, err error) {
	defer func() {
		if e := recover(); e != nil {
			request = nil
			err = http.NewNoMemoryError(http.StageRequestLine, errors.Errorf("parser panicked: %v", e))
		}
	}()

	return http.ParseRequest(raw)
}

func (c *conn) serve(ctx context.Context, request *semantic.Request) {
	hctx := &HandleContext{
		ctx:        ctx,
		remoteAddr: c.con.RemoteAddr(),
		logger:     c.logger,
		response:   newResponseWriter(c.con, int(c.opts.Serve.ChunkSize)),
	}

	// The write budget starts once the handler runs, not while it waits for the disk lock.
	handle := func() error {
		c.setWriteDeadline()
		return hctx.doHandle(c.handle, request)
	}

	var err error
	if c.opts.Serve.SerializeDiskIO {
		err = c.admission.Serialize(handle)
	} else {
		err = handle()
	}

	st, written := hctx.response.Status()
	switch {
	case written && err != nil:
		c.logger.Error("response aborted", "status", st.Code, "error", err)
	case written:
		c.logger.Info("served", "uri", request.URI().String(), "status", st.Code)
	case hctx.dropped:
		c.logger.Debug("dropped without response", "uri", request.URI().String())
	case errors.Is(err, transport.ErrConnClosed):
		c.logger.Info("connection closed while handling", "error", err)
	case err != nil:
		se := toStatusError(err)
		if se.Status.Code >= 500 {
			c.logger.Error("failed to handle request", "error", err)
		} else {
			c.logger.Info("request refused", "status", se.Status.Code, "error", err)
		}
		c.writeError(se.Status)
	default:
		c.logger.Error("handler returned without a response")
		c.writeError(status.InternalServerError)
	}
}

func (c *conn) setWriteDeadline() {
	if timeout := c.opts.Serve.Timeout.WriteTimeout; timeout > 0 {
		c.con.SetWriteDeadLine(c.clock.Now().Add(timeout))
	}
}

func (c *conn) writeError(st status.Status) {
	c.setWriteDeadline()

	rw := newResponseWriter(c.con, int(c.opts.Serve.ChunkSize))
	if err := rw.writeError(st); err != nil {
		c.logger.Error("failed to write error response", "status", st.Code, "error", err)
	}
}

// toStatusError maps an error a handler returned into the status to answer with.
func toStatusError(err error) status.Error {
	var se status.Error
	if errors.As(err, &se) {
		return se
	}

	if errors.Is(err, transport.ErrDeadLineExceeded) {
		return status.NewError(err, status.RequestTimeout)
	}

	if errors.Is(err, http.ErrInvalidFormat) || errors.Is(err, http.ErrValidationFailed) ||
		errors.Is(err, semantic.ErrValidationFailed) || errors.Is(err, semantic.ErrInvalidInput) {
		return status.NewError(err, status.BadRequest)
	}

	return status.NewError(err, status.InternalServerError)
}
