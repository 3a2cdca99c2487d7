package pipe

import (
	"context"
	"sync"

	"static-server/transport"

	"github.com/benbjohnson/clock"
)

// Transport routes in-memory dials to listeners by name.
type Transport struct {
	clock clock.Clock

	mu        sync.Mutex
	listeners map[Addr]*Listener
}

var _ transport.ConnDialer = (*Transport)(nil)

func NewTransport(clock clock.Clock) *Transport {
	return &Transport{
		clock:     clock,
		listeners: make(map[Addr]*Listener),
	}
}

func (t *Transport) Listen(addr Addr) (*Listener, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.listeners[addr]; ok {
		return nil, transport.ErrAddrAlreadyInUse
	}

	l := &Listener{
		addr:      addr,
		transport: t,
		requests:  make(chan *Conn),
		closed:    make(chan struct{}),
	}
	t.listeners[addr] = l

	return l, nil
}

// Dial blocks until a listener on addr accepts the connection.
// Nothing is buffered, so a listener that never accepts stalls the dial.
func (t *Transport) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	c, err := t.dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (t *Transport) dial(ctx context.Context, addr transport.Addr) (*Conn, error) {
	pa, ok := addr.(Addr)
	if !ok {
		return nil, transport.ErrNetUnreachable
	}

	t.mu.Lock()
	l, ok := t.listeners[pa]
	t.mu.Unlock()
	if !ok {
		return nil, transport.ErrNetUnreachable
	}

	local, remote := NewPair("dialer", pa.Name, t.clock)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, transport.ErrConnRefused
	case l.requests <- remote:
	}

	return local, nil
}

type Listener struct {
	addr      Addr
	transport *Transport

	requests chan *Conn

	closeOnce sync.Once
	closed    chan struct{}
}

var _ transport.ConnListener = (*Listener)(nil)

func (l *Listener) Addr() transport.Addr { return l.addr }

func (l *Listener) Accept(ctx context.Context) (transport.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, transport.ErrConnListenerClosed
	case c := <-l.requests:
		return c, nil
	}
}

// Close stops accepting and frees the address. Pending dials are refused.
func (l *Listener) Close() error {
	err := transport.ErrConnListenerClosed
	l.closeOnce.Do(func() {
		close(l.closed)

		l.transport.mu.Lock()
		delete(l.transport.listeners, l.addr)
		l.transport.mu.Unlock()

		err = nil
	})
	return err
}
