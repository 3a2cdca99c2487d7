package iolib

import (
	"io"

	"github.com/pkg/errors"
)

// WriteFull keeps writing until buf is drained or w fails.
// A writer that accepts nothing without an error is reported as [io.ErrShortWrite].
func WriteFull(w io.Writer, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// CopyChunked copies r to w in writes of at most size bytes until r is exhausted.
// Each chunk is fully written before the next one is read.
func CopyChunked(w io.Writer, r io.Reader, size int) (int64, error) {
	if size <= 0 {
		return 0, errors.Errorf("invalid chunk size %d", size)
	}

	buf := make([]byte, size)
	var copied int64
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			written, err := WriteFull(w, buf[:n])
			copied += int64(written)
			if err != nil {
				return copied, errors.Wrap(err, "writing chunk")
			}
		}

		if errors.Is(rerr, io.EOF) {
			return copied, nil
		}
		if rerr != nil {
			return copied, errors.Wrap(rerr, "reading chunk")
		}
	}
}
