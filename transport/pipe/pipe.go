// Package pipe provides an in-memory [transport.Conn] pair and a transport
// built on it, for driving the server without sockets.
package pipe

import (
	"sync"
	"time"

	"static-server/transport"

	"github.com/benbjohnson/clock"
)

type Addr struct {
	Name string
}

func (a Addr) Network() string { return "pipe" }
func (a Addr) String() string  { return a.Name }

var _ transport.Addr = Addr{}

// Conn is one end of a synchronous, unbuffered pipe.
// A Write returns once the peer has read every byte of it.
type Conn struct {
	incoming chan []byte // chunks offered by the peer.
	consumed chan int    // how much of our last offered chunk the peer took.

	writeMu sync.Mutex

	closed    chan struct{}
	closeOnce sync.Once

	readDeadline  *deadline
	writeDeadline *deadline

	peer *Conn
	addr Addr
}

var _ transport.Conn = (*Conn)(nil)

func newConn(name string, clock clock.Clock) *Conn {
	return &Conn{
		incoming:      make(chan []byte),
		consumed:      make(chan int),
		closed:        make(chan struct{}),
		readDeadline:  newDeadline(clock),
		writeDeadline: newDeadline(clock),
		addr:          Addr{Name: name},
	}
}

// NewPair connects two conns named name1 and name2.
// Deadlines are measured against clock.
func NewPair(name1, name2 string, clock clock.Clock) (c1, c2 *Conn) {
	c1, c2 = newConn(name1, clock), newConn(name2, clock)
	c1.peer, c2.peer = c2, c1
	return c1, c2
}

func (c *Conn) LocalAddr() transport.Addr  { return c.addr }
func (c *Conn) RemoteAddr() transport.Addr { return c.peer.addr }

func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *Conn) Read(b []byte) (int, error) {
	if err := c.usable(c.readDeadline); err != nil {
		return 0, err
	}

	select {
	case chunk := <-c.incoming:
		n := copy(b, chunk)
		c.peer.consumed <- n
		return n, nil
	case <-c.closed:
		return 0, transport.ErrConnClosed
	case <-c.peer.closed:
		return 0, transport.ErrConnClosed
	case <-c.readDeadline.done():
		return 0, transport.ErrDeadLineExceeded
	}
}

func (c *Conn) Write(b []byte) (int, error) {
	if err := c.usable(c.writeDeadline); err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, nil
	}

	// Concurrent writes must not interleave.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	written := 0
	for len(b) > 0 {
		select {
		case c.peer.incoming <- b:
			n := <-c.consumed
			b = b[n:]
			written += n
		case <-c.closed:
			return written, transport.ErrConnClosed
		case <-c.peer.closed:
			return written, transport.ErrConnClosed
		case <-c.writeDeadline.done():
			return written, transport.ErrDeadLineExceeded
		}
	}

	return written, nil
}

func (c *Conn) usable(d *deadline) error {
	switch {
	case isClosed(c.closed), isClosed(c.peer.closed):
		return transport.ErrConnClosed
	case isClosed(d.done()):
		return transport.ErrDeadLineExceeded
	}
	return nil
}

func (c *Conn) SetReadDeadLine(t time.Time)  { c.readDeadline.set(t) }
func (c *Conn) SetWriteDeadLine(t time.Time) { c.writeDeadline.set(t) }

// deadline is a channel that gets closed when the configured time passes.
type deadline struct {
	clock clock.Clock

	mu     sync.Mutex
	timer  *clock.Timer
	expiry chan struct{}
}

func newDeadline(clock clock.Clock) *deadline {
	return &deadline{
		clock:  clock,
		expiry: make(chan struct{}),
	}
}

func (d *deadline) set(t time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if isClosed(d.expiry) {
		d.expiry = make(chan struct{})
	}

	if t.IsZero() {
		return
	}

	expiry := d.expiry
	wait := d.clock.Until(t)
	if wait <= 0 {
		close(expiry)
		return
	}
	d.timer = d.clock.AfterFunc(wait, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if !isClosed(expiry) {
			close(expiry)
		}
	})
}

func (d *deadline) done() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.expiry
}

func isClosed(c <-chan struct{}) bool {
	select {
	case <-c:
		return true
	default:
		return false
	}
}
