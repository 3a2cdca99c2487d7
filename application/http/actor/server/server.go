package server

import (
	"context"
	"log/slog"
	"sync"

	"static-server/transport"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type Server struct {
	l         transport.ConnListener
	admission *Admission

	cancel   func()
	loopDone chan struct{}
	wg       sync.WaitGroup

	logger *slog.Logger
	opts   Options

	handle HandleFunc
	clock  clock.Clock
}

func New(
	l transport.ConnListener,
	logger *slog.Logger,
	clock clock.Clock,
	handle HandleFunc,
	opts Options,
) *Server {
	return &Server{
		l:         l,
		admission: NewAdmission(opts.Serve.MaxConns),
		logger:    logger,
		opts:      opts,
		handle:    handle,
		clock:     clock,
	}
}

// Admission is shared by every connection of s.
func (s *Server) Admission() *Admission { return s.admission }

// Start accepts connections in the background until Close is called.
// Each connection is served on its own goroutine.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loopDone = make(chan struct{})

	s.logger.Info("accepting connections",
		"addr", s.l.Addr().String(),
		"max_conns", s.opts.Serve.MaxConns,
	)

	go func() {
		defer close(s.loopDone)
		for {
			conn, err := s.acceptConn(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) && !errors.Is(err, transport.ErrConnListenerClosed) {
					s.logger.Error(
						"unexpected error when accepting connection",
						"error", err.Error(),
					)
				}
				return
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				conn.start(ctx)
			}()
		}
	}()
}

func (s *Server) acceptConn(ctx context.Context) (*conn, error) {
	con, err := s.l.Accept(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listening for connection")
	}

	return &conn{
		con:       con,
		admission: s.admission,
		handle:    s.handle,
		clock:     s.clock,
		logger:    s.logger.With("conn", con.RemoteAddr().String()),
		opts:      s.opts,
	}, nil
}

// Close stops accepting, closes the listener, and waits for in-flight connections,
// which are cut off.
func (s *Server) Close() error {
	if s.cancel == nil {
		return s.l.Close()
	}

	s.cancel()
	<-s.loopDone

	err := s.l.Close()
	if errors.Is(err, transport.ErrConnListenerClosed) {
		err = nil
	}

	s.wg.Wait()
	return err
}
