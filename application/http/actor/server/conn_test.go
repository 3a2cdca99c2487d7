package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"static-server/application/http/mime"
	"static-server/application/http/semantic"
	"static-server/application/http/semantic/status"
	"static-server/transport"
	"static-server/transport/pipe"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

// readResponse reads from conn until the server closes it.
func readResponse(conn transport.Conn) (string, error) {
	var buf bytes.Buffer
	b := make([]byte, 512)
	for {
		n, err := conn.Read(b)
		buf.Write(b[:n])
		if errors.Is(err, transport.ErrConnClosed) {
			return buf.String(), nil
		}
		if err != nil {
			return buf.String(), err
		}
	}
}

type ConnTestSuite struct {
	suite.Suite

	ctx   context.Context
	clock *clock.Mock
	root  string

	admission *Admission
	opts      Options
	handle    HandleFunc
	logger    *slog.Logger
}

func TestConnTestSuite(t *testing.T) {
	suite.Run(t, new(ConnTestSuite))
}

func (s *ConnTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewMock()

	s.root = s.T().TempDir()
	s.Require().NoError(writePublicRoot(s.root))

	s.opts = DefaultOptions()
	s.admission = NewAdmission(s.opts.Serve.MaxConns)
	s.handle = StaticHandler(s.root, mime.Default())
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *ConnTestSuite) TearDownTest() {
	goleak.VerifyNone(s.T())
}

// startConn serves the server end of a new pipe in the background.
// The returned channel is closed once the connection is done.
func (s *ConnTestSuite) startConn() (client transport.Conn, done <-chan struct{}) {
	serverEnd, clientEnd := pipe.NewPair("server", "client", s.clock)

	c := &conn{
		con:       serverEnd,
		admission: s.admission,
		handle:    s.handle,
		clock:     s.clock,
		logger:    s.logger,
		opts:      s.opts,
	}

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		c.start(s.ctx)
	}()

	return clientEnd, finished
}

// roundTrip sends raw and returns everything the server wrote back.
func (s *ConnTestSuite) roundTrip(raw string) string {
	client, done := s.startConn()
	defer func() {
		s.NoError(client.Close())
		<-done
	}()

	_, err := client.Write([]byte(raw))
	s.Require().NoError(err)

	response, err := readResponse(client)
	s.Require().NoError(err)
	return response
}

func (s *ConnTestSuite) TestServe() {
	testcases := []struct {
		desc     string
		raw      string
		expected string
	}{
		{
			desc:     "html",
			raw:      "GET /page.html HTTP/1.1\r\nAccept: text/html\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n<html><body>page</body></html>",
		},
		{
			desc:     "jpeg",
			raw:      "GET /photo.jpg HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\nContent-Type: image/jpeg\r\n\r\n" + string(jpegContent),
		},
		{
			desc:     "not found",
			raw:      "GET /missing.html HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 404 Not Found\r\nConnection: close\r\n\r\n",
		},
		{
			desc:     "unknown extension",
			raw:      "GET /file.exe HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n",
		},
		{
			desc:     "unknown method",
			raw:      "HELLO /x HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n",
		},
		{
			desc:     "missing uri",
			raw:      "GET\r\n",
			expected: "HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n",
		},
		{
			desc:     "header without colon space",
			raw:      "GET /page.html HTTP/1.1\r\nBad-Header-NoColonSpace\r\n\r\n",
			expected: "HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n",
		},
		{
			desc:     "traversal",
			raw:      "GET /../etc/passwd.html HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n",
		},
		{
			desc:     "favicon dropped",
			raw:      "GET /favicon.png HTTP/1.1\r\n\r\n",
			expected: "",
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			s.Equal(tc.expected, s.roundTrip(tc.raw))
			s.Zero(s.admission.Count(), "slot is released")
		})
	}
}

func (s *ConnTestSuite) TestChunkedBinary() {
	s.opts.Serve.ChunkSize = 3

	response := s.roundTrip("GET /photo.jpg HTTP/1.1\r\n\r\n")
	s.Equal("HTTP/1.1 200 OK\r\nContent-Type: image/jpeg\r\n\r\n"+string(jpegContent), response)
}

func (s *ConnTestSuite) TestRejectWhenFull() {
	s.admission = NewAdmission(1)
	s.Require().True(s.admission.TryAcquire())

	// The rejected client never sends anything, the 503 comes first.
	client, done := s.startConn()
	response, err := readResponse(client)
	s.Require().NoError(err)
	s.NoError(client.Close())
	<-done

	s.Equal(
		"HTTP/1.1 503 Service Unavailable\r\nContent-Type: text/html\r\nConnection: close\r\n\r\n"+
			"<!doctype html><html><body>Server is busy.</body></html>",
		response,
	)
	s.Equal(uint(1), s.admission.Count(), "rejection doesn't take a slot")

	s.admission.Release()
	s.Equal(
		"HTTP/1.1 404 Not Found\r\nConnection: close\r\n\r\n",
		s.roundTrip("GET /missing.html HTTP/1.1\r\n\r\n"),
	)
	s.Zero(s.admission.Count())
}

func (s *ConnTestSuite) TestPeerClosesWithoutRequest() {
	client, done := s.startConn()

	s.Eventually(func() bool { return s.admission.Count() == 1 }, time.Second, time.Millisecond)
	s.Require().NoError(client.Close())
	<-done

	s.Zero(s.admission.Count())
}

func (s *ConnTestSuite) TestReadTimeout() {
	s.opts.Serve.Timeout.ReadTimeout = time.Second

	client, done := s.startConn()

	s.Eventually(func() bool {
		s.clock.Add(time.Second)
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	response, err := readResponse(client)
	s.NoError(err)
	s.Empty(response, "timed out connection is closed silently")
	s.Zero(s.admission.Count())
	s.NoError(client.Close())
}

func (s *ConnTestSuite) TestHandlerOutcomes() {
	testcases := []struct {
		desc     string
		handle   HandleFunc
		expected string
	}{
		{
			desc: "panic",
			handle: func(*HandleContext, *semantic.Request) error {
				panic("boom")
			},
			expected: "HTTP/1.1 500 Internal Server Error\r\nConnection: close\r\n\r\n",
		},
		{
			desc: "no response",
			handle: func(*HandleContext, *semantic.Request) error {
				return nil
			},
			expected: "HTTP/1.1 500 Internal Server Error\r\nConnection: close\r\n\r\n",
		},
		{
			desc: "plain error",
			handle: func(*HandleContext, *semantic.Request) error {
				return errors.New("disk on fire")
			},
			expected: "HTTP/1.1 500 Internal Server Error\r\nConnection: close\r\n\r\n",
		},
		{
			desc: "deadline",
			handle: func(*HandleContext, *semantic.Request) error {
				return errors.Wrap(transport.ErrDeadLineExceeded, "reading file")
			},
			expected: "HTTP/1.1 408 Request Timeout\r\nConnection: close\r\n\r\n",
		},
		{
			desc: "error after head",
			handle: func(c *HandleContext, _ *semantic.Request) error {
				if err := c.Response().WriteHead(status.OK, &mime.Type{ContentType: "text/css"}); err != nil {
					return err
				}
				return errors.New("lost the file")
			},
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/css\r\n\r\n",
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			s.handle = tc.handle
			s.Equal(tc.expected, s.roundTrip("GET /page.html HTTP/1.1\r\n\r\n"))
			s.Zero(s.admission.Count())
		})
	}
}

func (s *ConnTestSuite) TestSerializeDiskIO() {
	const conns = 5

	var active, peak atomic.Int32
	s.handle = func(c *HandleContext, r *semantic.Request) error {
		now := active.Add(1)
		defer active.Add(-1)
		if now > peak.Load() {
			peak.Store(now)
		}

		time.Sleep(5 * time.Millisecond)
		return StaticHandler(s.root, mime.Default())(c, r)
	}

	var wg sync.WaitGroup
	for i := 0; i < conns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			response := s.roundTrip("GET /style.css HTTP/1.1\r\n\r\n")
			s.Equal("HTTP/1.1 200 OK\r\nContent-Type: text/css\r\n\r\nbody { color: red; }", response)
		}()
	}
	wg.Wait()

	s.Equal(int32(1), peak.Load(), "handlers never overlap")
	s.Zero(s.admission.Count())
}

func (s *ConnTestSuite) TestParallelDiskIO() {
	s.opts.Serve.SerializeDiskIO = false

	// Both handlers must be inside at once to get past the barrier.
	var barrier sync.WaitGroup
	barrier.Add(2)
	s.handle = func(c *HandleContext, r *semantic.Request) error {
		barrier.Done()
		barrier.Wait()
		return StaticHandler(s.root, mime.Default())(c, r)
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			response := s.roundTrip("GET /style.css HTTP/1.1\r\n\r\n")
			s.Contains(response, "200 OK")
		}()
	}
	wg.Wait()
}

func (s *ConnTestSuite) TestWriteTimeoutExcludesLockWait() {
	s.opts.Serve.Timeout.WriteTimeout = time.Second

	holding := make(chan struct{})
	release := make(chan struct{})
	s.handle = func(c *HandleContext, r *semantic.Request) error {
		if r.URI().String() == "/page.html" {
			close(holding)
			<-release
			c.Drop()
			return nil
		}
		return StaticHandler(s.root, mime.Default())(c, r)
	}

	waiter, waiterDone := s.startConn()
	s.Require().Eventually(func() bool { return s.admission.Count() == 1 }, time.Second, time.Millisecond)

	holder, holderDone := s.startConn()
	_, err := holder.Write([]byte("GET /page.html HTTP/1.1\r\n\r\n"))
	s.Require().NoError(err)
	<-holding

	_, err = waiter.Write([]byte("GET /style.css HTTP/1.1\r\n\r\n"))
	s.Require().NoError(err)

	// The waiter sits on the disk lock for twice its write timeout.
	for i := 0; i < 4; i++ {
		time.Sleep(time.Millisecond)
		s.clock.Add(500 * time.Millisecond)
	}
	close(release)

	response, err := readResponse(waiter)
	s.Require().NoError(err)
	s.Equal("HTTP/1.1 200 OK\r\nContent-Type: text/css\r\n\r\nbody { color: red; }", response)

	response, err = readResponse(holder)
	s.Require().NoError(err)
	s.Empty(response)

	s.NoError(waiter.Close())
	s.NoError(holder.Close())
	<-waiterDone
	<-holderDone
	s.Zero(s.admission.Count())
}

func (s *ConnTestSuite) TestInvalidRequestLogsStage() {
	var logs bytes.Buffer
	s.logger = slog.New(slog.NewTextHandler(&logs, nil))

	response := s.roundTrip("GET /page.html HTTP/one\r\n\r\n")

	s.Equal("HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n", response)
	s.Contains(logs.String(), `msg="invalid request" stage=version`)
}

func (s *ConnTestSuite) TestOnlyGetAndHeadAreServed() {
	testcases := []struct {
		desc     string
		raw      string
		expected string
	}{
		{
			desc:     "head",
			raw:      "HEAD /page.html HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n",
		},
		{
			desc:     "post",
			raw:      "POST /page.html HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n",
		},
		{
			desc:     "options",
			raw:      "OPTIONS /page.html HTTP/1.1\r\n\r\n",
			expected: "HTTP/1.1 400 Bad Request\r\nConnection: close\r\n\r\n",
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			s.Equal(tc.expected, s.roundTrip(tc.raw))
		})
	}
}
