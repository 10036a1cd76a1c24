package pipe

import (
	"bytes"
	"chunked-write/transport"
	"io"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// half is one direction of a pipe: a bounded buffer shared by one writer and one reader.
type half struct {
	mu       sync.Mutex
	readable sync.Cond
	writable sync.Cond

	buf    *bytes.Buffer // protected by mu.
	size   int
	closed bool
}

func newHalf(size uint) *half {
	h := &half{
		buf:  bytes.NewBuffer(make([]byte, 0, size)),
		size: int(size),
	}
	h.readable.L, h.writable.L = &h.mu, &h.mu
	return h
}

func (h *half) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.readable.Broadcast()
	h.writable.Broadcast()
}

// wake lets blocked reads and writes re-check their conditions.
func (h *half) wake() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.readable.Broadcast()
	h.writable.Broadcast()
}

// Conn is one end of a buffered pipe.
type Conn struct {
	in, out *half

	serialMu sync.Mutex // For serialized write operations.

	rdeadline, wdeadline *deadline
}

var _ transport.Conn = (*Conn)(nil)

// BufferedPipe creates a pair of connected ends.
// Each direction holds at most bufSize bytes; writes block until the other end reads.
// Because data only moves through the buffer, bufSize MUST be more than 0.
func BufferedPipe(clock clock.Clock, bufSize uint) (c1, c2 *Conn) {
	if bufSize == 0 {
		panic("buffer size cannot be 0")
	}

	a, b := newHalf(bufSize), newHalf(bufSize)

	c1 = &Conn{in: a, out: b, rdeadline: newDeadline(clock), wdeadline: newDeadline(clock)}
	c2 = &Conn{in: b, out: a, rdeadline: newDeadline(clock), wdeadline: newDeadline(clock)}
	return c1, c2
}

// BufSize is how many bytes a Write can put in flight before the other end reads.
func (c *Conn) BufSize() uint { return uint(c.out.size) }

// Buffered reports how many written bytes the other end has not read yet.
func (c *Conn) Buffered() int {
	c.out.mu.Lock()
	defer c.out.mu.Unlock()

	return c.out.buf.Len()
}

// Close closes both directions. Buffered bytes can still be read by either end.
func (c *Conn) Close() error {
	c.rdeadline.stop()
	c.wdeadline.stop()

	c.in.close()
	c.out.close()
	return nil
}

func (c *Conn) Read(p []byte) (n int, err error) {
	h := c.in

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		// We must check for deadline first.
		if c.rdeadline.exceeded() {
			return 0, transport.ErrDeadLineExceeded
		}

		// Even if connection is closed, we must be able to read from buffer.
		if h.buf.Len() > 0 {
			n, _ = h.buf.Read(p)
			h.writable.Broadcast()
			return n, nil
		}

		if h.closed {
			return 0, io.EOF
		}

		h.readable.Wait()
	}
}

func (c *Conn) Write(p []byte) (n int, err error) {
	// Serialize write operations to prevent interleaving write.
	c.serialMu.Lock()
	defer c.serialMu.Unlock()

	h := c.out

	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		if c.wdeadline.exceeded() {
			return n, transport.ErrDeadLineExceeded
		}

		if h.closed {
			return n, transport.ErrConnClosed
		}

		if len(p) == 0 {
			return n, nil
		}

		// We don't want the buffer to grow.
		if room := h.size - h.buf.Len(); room > 0 {
			k := min(room, len(p))
			h.buf.Write(p[:k])
			p = p[k:]
			n += k

			h.readable.Broadcast()
			continue
		}

		h.writable.Wait()
	}
}

func (c *Conn) SetReadDeadLine(t time.Time)  { c.rdeadline.set(t, c.in.wake) }
func (c *Conn) SetWriteDeadLine(t time.Time) { c.wdeadline.set(t, c.out.wake) }

func newDeadline(clock clock.Clock) *deadline { return &deadline{clock: clock} }

type deadline struct {
	clock clock.Clock
	mu    sync.Mutex

	timer *clock.Timer
	t     time.Time
}

// set arms the deadline. onExceed runs without holding the deadline's lock,
// so it may take the lock of the half it wakes.
func (d *deadline) set(t time.Time, onExceed func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.t = t

	if !t.IsZero() {
		d.timer = d.clock.AfterFunc(d.clock.Until(t), onExceed)
	}
}

func (d *deadline) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *deadline) exceeded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.t.IsZero() {
		return false
	}

	return d.clock.Until(d.t) <= 0
}
