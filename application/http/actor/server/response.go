package server

import (
	"bytes"
	"io"

	"static-server/application/http/mime"
	"static-server/application/http/semantic/status"
	"static-server/application/util/rule"
	iolib "static-server/lib/io"

	"github.com/pkg/errors"
)

var (
	ErrHeadWritten    = errors.New("response head is already written")
	ErrHeadNotWritten = errors.New("response head is not written yet")
)

var busyBody = []byte("<!doctype html><html><body>Server is busy.</body></html>")

// ResponseWriter writes a single HTTP/1.1 response to a connection.
// The body has no framing: the connection is closed after it.
type ResponseWriter struct {
	w         io.Writer
	chunkSize int

	status *status.Status
}

func newResponseWriter(w io.Writer, chunkSize int) *ResponseWriter {
	return &ResponseWriter{w: w, chunkSize: chunkSize}
}

// WriteHead writes the status line and headers.
// Content-Type is sent when t is non-nil. Error statuses also carry "Connection: close".
func (rw *ResponseWriter) WriteHead(st status.Status, t *mime.Type) error {
	if rw.status != nil {
		return ErrHeadWritten
	}

	var head bytes.Buffer
	writeLine := func(parts ...string) {
		for _, p := range parts {
			head.WriteString(p)
		}
		head.Write(rule.CRLF)
	}

	writeLine("HTTP/1.1 ", st.Text())
	if t != nil {
		writeLine("Content-Type: ", t.ContentType)
	}
	if st.IsError() {
		writeLine("Connection: close")
	}
	writeLine()

	if _, err := iolib.WriteFull(rw.w, head.Bytes()); err != nil {
		return errors.Wrap(err, "writing response head")
	}

	rw.status = &st
	return nil
}

func (rw *ResponseWriter) Write(p []byte) (int, error) {
	if rw.status == nil {
		return 0, ErrHeadNotWritten
	}
	return iolib.WriteFull(rw.w, p)
}

// Stream writes r as the body.
// Binary content is copied in chunks. Text content is read into memory whole
// and written at once, which is only fit for small files.
func (rw *ResponseWriter) Stream(r io.Reader, t mime.Type) error {
	if rw.status == nil {
		return ErrHeadNotWritten
	}

	if t.Binary {
		_, err := iolib.CopyChunked(rw.w, r, rw.chunkSize)
		return errors.Wrap(err, "streaming binary body")
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading text body")
	}
	_, err = iolib.WriteFull(rw.w, content)
	return errors.Wrap(err, "writing text body")
}

// Status returns the written status. ok is false until WriteHead succeeds.
func (rw *ResponseWriter) Status() (st status.Status, ok bool) {
	if rw.status == nil {
		return status.Status{}, false
	}
	return *rw.status, true
}

// writeError writes a complete error response.
// 503 gets a small html page, the others have no body.
func (rw *ResponseWriter) writeError(st status.Status) error {
	if st != status.ServiceUnavailable {
		return rw.WriteHead(st, nil)
	}

	if err := rw.WriteHead(st, &mime.Type{ContentType: "text/html"}); err != nil {
		return err
	}
	_, err := rw.Write(busyBody)
	return errors.Wrap(err, "writing busy page")
}
