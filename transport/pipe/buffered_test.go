package pipe

import (
	"bytes"
	"chunked-write/transport"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

const bufSize = 20

type BufferedPipeTestSuite struct {
	suite.Suite

	C1, C2 *Conn
	Clock  *clock.Mock
}

func TestBufferedPipeTestSuite(t *testing.T) {
	suite.Run(t, new(BufferedPipeTestSuite))
}

func (s *BufferedPipeTestSuite) SetupTest() {
	s.Clock = clock.NewMock()
	s.C1, s.C2 = BufferedPipe(s.Clock, bufSize)
}

func (s *BufferedPipeTestSuite) TearDownTest() {
	defer goleak.VerifyNone(s.T())
	s.NoError(s.C1.Close())
	s.NoError(s.C2.Close())
}

func (s *BufferedPipeTestSuite) TestZeroBufSize() {
	s.Panics(func() { BufferedPipe(s.Clock, 0) })
}

func (s *BufferedPipeTestSuite) TestReadWrite() {
	data := []byte("Hello, World!")

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)

	go func() {
		defer wg.Done()
		n, err := s.C1.Write(data)
		s.NoError(err)
		s.Equal(len(data), n)
	}()

	buf := make([]byte, len(data))
	_, err := io.ReadFull(s.C2, buf)
	s.Require().NoError(err)
	s.Equal(data, buf)
}

func (s *BufferedPipeTestSuite) TestWriteLargerThanBuffer() {
	data := bytes.Repeat([]byte("ABCDEFG"), 3*bufSize)

	var wg sync.WaitGroup
	defer wg.Wait()
	wg.Add(1)

	go func() {
		defer wg.Done()
		// Blocks until the other end drains the buffer.
		n, err := s.C1.Write(data)
		s.NoError(err)
		s.Equal(len(data), n)
		s.NoError(s.C1.Close())
	}()

	got, err := io.ReadAll(s.C2)
	s.Require().NoError(err)
	s.Equal(data, got)
}

func (s *BufferedPipeTestSuite) TestBuffered() {
	s.Equal(uint(bufSize), s.C1.BufSize())
	s.Zero(s.C1.Buffered())

	_, err := s.C1.Write([]byte("Hello"))
	s.Require().NoError(err)
	s.Equal(5, s.C1.Buffered())
	s.Zero(s.C2.Buffered())

	_, err = s.C2.Read(make([]byte, 2))
	s.Require().NoError(err)
	s.Equal(3, s.C1.Buffered())
}

func (s *BufferedPipeTestSuite) TestBothDirections() {
	n, err := s.C1.Write([]byte("ping"))
	s.Require().NoError(err)
	s.Require().Equal(4, n)

	n, err = s.C2.Write([]byte("pong"))
	s.Require().NoError(err)
	s.Require().Equal(4, n)

	buf := make([]byte, 4)
	_, err = io.ReadFull(s.C2, buf)
	s.Require().NoError(err)
	s.Equal([]byte("ping"), buf)

	_, err = io.ReadFull(s.C1, buf)
	s.Require().NoError(err)
	s.Equal([]byte("pong"), buf)
}

func (s *BufferedPipeTestSuite) TestReadAfterClose() {
	n, err := s.C2.Write(make([]byte, bufSize))
	s.Require().NoError(err)
	s.Require().Equal(bufSize, n)

	s.Require().NoError(s.C2.Close())

	n, err = s.C1.Read(make([]byte, bufSize))
	s.Require().NoError(err)
	s.Equal(bufSize, n)

	n, err = s.C1.Read(make([]byte, 1))
	s.ErrorIs(err, io.EOF)
	s.Zero(n)
}

func (s *BufferedPipeTestSuite) TestWriteAfterClose() {
	s.Require().NoError(s.C2.Close())

	n, err := s.C1.Write([]byte("late"))
	s.ErrorIs(err, transport.ErrConnClosed)
	s.Zero(n)
}

func (s *BufferedPipeTestSuite) TestEmptyWriteOnFullBuffer() {
	_, err := s.C1.Write(make([]byte, bufSize))
	s.Require().NoError(err)

	n, err := s.C1.Write(nil)
	s.NoError(err)
	s.Zero(n)
}

func (s *BufferedPipeTestSuite) TestWriteDeadLine() {
	_, err := s.C1.Write(make([]byte, bufSize-3))
	s.Require().NoError(err)

	s.C1.SetWriteDeadLine(s.Clock.Now().Add(time.Second))

	errCh := make(chan error, 1)
	nCh := make(chan int, 1)
	go func() {
		// Only 3 bytes fit; the rest waits for a reader that never comes.
		n, err := s.C1.Write([]byte("Hello, World!"))
		nCh <- n
		errCh <- err
	}()

	s.Clock.Add(time.Second)

	s.ErrorIs(<-errCh, transport.ErrDeadLineExceeded)
	s.LessOrEqual(<-nCh, 3)
}

func (s *BufferedPipeTestSuite) TestReadDeadLine() {
	s.C2.SetReadDeadLine(s.Clock.Now().Add(time.Second))

	errCh := make(chan error, 1)
	go func() {
		_, err := s.C2.Read(make([]byte, 1))
		errCh <- err
	}()

	s.Clock.Add(time.Second)

	s.ErrorIs(<-errCh, transport.ErrDeadLineExceeded)
}

func (s *BufferedPipeTestSuite) TestClearDeadLine() {
	s.C1.SetWriteDeadLine(s.Clock.Now().Add(time.Second))
	s.C1.SetWriteDeadLine(time.Time{})

	s.Clock.Add(time.Minute)

	n, err := s.C1.Write([]byte("ok"))
	s.NoError(err)
	s.Equal(2, n)
}
