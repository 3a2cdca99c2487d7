// Package test holds behaviour every [transport.Conn] implementation must share.
package test

import (
	"bytes"
	"sync"
	"time"

	"static-server/transport"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

// ConnTestSuite runs against C1 and C2, which the embedding suite connects
// to each other in its own SetupTest after calling this one.
type ConnTestSuite struct {
	suite.Suite
	C1, C2 transport.Conn
	Clock  *clock.Mock

	done  chan struct{}
	timer *time.Timer
}

func (s *ConnTestSuite) SetupTest() {
	s.done = make(chan struct{})
	s.Clock = clock.NewMock()

	s.timer = time.AfterFunc(time.Second, func() {
		select {
		case <-s.done:
		default:
			s.Fail("timeout exceeded")
		}
	})
}

func (s *ConnTestSuite) TearDownTest() {
	defer goleak.VerifyNone(s.T())
	s.NoError(s.C1.Close())
	s.NoError(s.C2.Close())
	close(s.done)
	s.timer.Stop()
}

func (s *ConnTestSuite) TestReadWrite() {
	data := []byte("Hello, World!")

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(2)

	go func() {
		defer wg.Done()
		n, err := s.C1.Write(data)
		s.NoError(err)
		s.Equal(len(data), n)
	}()
	go func() {
		defer wg.Done()
		buf := make([]byte, 10)

		n, err := s.C2.Read(buf)
		s.NoError(err)
		s.Equal(len(buf), n)
		s.Equal(data[:n], buf)

		n, err = s.C2.Read(buf)
		s.NoError(err)
		s.Equal(len(data)-len(buf), n)
		s.Equal(data[len(buf):], buf[:n])
	}()
}

func (s *ConnTestSuite) TestConcurrentWritesDoNotInterleave() {
	data := []byte("ABCD")
	const writers = 10

	var wg sync.WaitGroup
	defer wg.Wait()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var got []byte

		b := make([]byte, 3)
		for {
			n, err := s.C2.Read(b)
			if err != nil {
				s.ErrorIs(err, transport.ErrConnClosed)
				s.Equal(bytes.Repeat(data, writers), got)
				return
			}
			got = append(got, b[:n]...)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		var wwg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wwg.Add(1)
			go func() {
				defer wwg.Done()
				n, err := s.C1.Write(data)
				s.NoError(err)
				s.Equal(len(data), n)
			}()
		}
		wwg.Wait()
		s.NoError(s.C1.Close())
	}()
}

func (s *ConnTestSuite) TestClose() {
	tryReadWrite := func(conn transport.Conn) {
		buf := make([]byte, 10)

		n, err := conn.Read(buf)
		s.ErrorIs(err, transport.ErrConnClosed)
		s.Zero(n)

		n, err = conn.Write(buf)
		s.ErrorIs(err, transport.ErrConnClosed)
		s.Zero(n)
	}

	s.Require().NoError(s.C1.Close())
	tryReadWrite(s.C1)
	tryReadWrite(s.C2)

	// Closing twice is harmless.
	s.NoError(s.C1.Close())
}

func (s *ConnTestSuite) TestBlockedReadUnblocksOnClose() {
	errc := make(chan error, 1)
	go func() {
		_, err := s.C1.Read(make([]byte, 1))
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Require().NoError(s.C2.Close())
	s.ErrorIs(<-errc, transport.ErrConnClosed)
}

func (s *ConnTestSuite) TestBlockedWriteUnblocksOnClose() {
	errc := make(chan error, 1)
	go func() {
		_, err := s.C1.Write([]byte("hey"))
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Require().NoError(s.C1.Close())
	s.ErrorIs(<-errc, transport.ErrConnClosed)
}

func (s *ConnTestSuite) TestPastDeadLine() {
	s.C1.SetReadDeadLine(s.Clock.Now().Add(-time.Second))
	s.C1.SetWriteDeadLine(s.Clock.Now().Add(-time.Second))

	n, err := s.C1.Read(make([]byte, 1))
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
	s.Zero(n)

	n, err = s.C1.Write(make([]byte, 1))
	s.ErrorIs(err, transport.ErrDeadLineExceeded)
	s.Zero(n)
}

func (s *ConnTestSuite) TestReadDeadLineFires() {
	s.C1.SetReadDeadLine(s.Clock.Now().Add(time.Second))

	errc := make(chan error, 1)
	go func() {
		_, err := s.C1.Read(make([]byte, 1))
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Clock.Add(time.Second)
	s.ErrorIs(<-errc, transport.ErrDeadLineExceeded)
}

func (s *ConnTestSuite) TestClearDeadLine() {
	s.C1.SetReadDeadLine(s.Clock.Now().Add(-time.Second))
	s.C1.SetReadDeadLine(time.Time{})

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.C2.Write([]byte("x"))
		s.NoError(err)
	}()

	n, err := s.C1.Read(make([]byte, 1))
	s.NoError(err)
	s.Equal(1, n)
}

func (s *ConnTestSuite) TestAddr() {
	local1, remote1 := s.C1.LocalAddr(), s.C1.RemoteAddr()
	local2, remote2 := s.C2.LocalAddr(), s.C2.RemoteAddr()

	s.Equal(local1, remote2)
	s.Equal(local2, remote1)
}
