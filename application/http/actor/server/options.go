package server

import (
	"time"

	"github.com/pkg/errors"
)

type Options struct {
	Serve ServeOptions
}

type ServeOptions struct {
	// Connections past this many in flight are answered with 503.
	MaxConns uint
	// A request must fit in a single read of this size.
	BufferSize uint
	// Binary files are written in chunks of this size.
	ChunkSize uint

	// SerializeDiskIO makes every handler run while holding the admission lock,
	// so at most one connection touches the filesystem at a time.
	SerializeDiskIO bool

	Timeout TimeoutOptions
}

// Zero value means no timeout.
type TimeoutOptions struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		Serve: ServeOptions{
			MaxConns:        10,
			BufferSize:      4096,
			ChunkSize:       4096,
			SerializeDiskIO: true,
		},
	}
}

func (o Options) Validate() error {
	switch {
	case o.Serve.MaxConns == 0:
		return errors.New("max connections must be positive")
	case o.Serve.BufferSize == 0:
		return errors.New("buffer size must be positive")
	case o.Serve.ChunkSize == 0:
		return errors.New("chunk size must be positive")
	case o.Serve.Timeout.ReadTimeout < 0:
		return errors.Errorf("negative read timeout: %s", o.Serve.Timeout.ReadTimeout)
	case o.Serve.Timeout.WriteTimeout < 0:
		return errors.Errorf("negative write timeout: %s", o.Serve.Timeout.WriteTimeout)
	}
	return nil
}
