package transfer

import (
	"chunked-write/application/util/rule"
	iolib "chunked-write/lib/io"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("write on closed chunked writer")

// lastChunk is the zero size chunk followed by an empty trailer section.
var lastChunk = []byte("0\r\n\r\n")

// ChunkedWriter frames every Write as one chunk and writes it to the underlying writer.
// Payload bytes are passed through as-is, so a Write never copies or allocates.
//
// An empty Write produces "0\r\n\r\n", which is the same as the last chunk.
// Do not write zero length chunks unless the body should end there.
//
// ChunkedWriter is not safe for concurrent use.
type ChunkedWriter struct {
	w      io.Writer
	closed bool

	// size line: hex digits + CRLF.
	header [strconv.IntSize/4 + 2]byte
}

var _ io.WriteCloser = (*ChunkedWriter)(nil)

// NewChunkedWriter wraps w. Nothing is written until the first Write or Close.
func NewChunkedWriter(w io.Writer) *ChunkedWriter {
	return &ChunkedWriter{w: w}
}

// Write writes p as a single chunk.
// On success n is len(p), never the framed length.
// Errors from the underlying writer are returned unchanged, leaving the chunk incomplete.
func (cw *ChunkedWriter) Write(p []byte) (n int, err error) {
	if cw.closed {
		return 0, ErrClosed
	}

	header := strconv.AppendUint(cw.header[:0], uint64(len(p)), 16)
	header = append(header, rule.CR, rule.LF)

	if _, err := iolib.WriteFull(cw.w, header); err != nil {
		return 0, err
	}

	written, err := iolib.WriteFull(cw.w, p)
	if err != nil {
		return int(written), err
	}

	if _, err := iolib.WriteFull(cw.w, rule.CRLF); err != nil {
		return len(p), err
	}

	return len(p), nil
}

// Close writes the last chunk and flushes the underlying writer if it can be flushed.
// It is attempted once: later calls return nil without writing anything,
// even if the first attempt failed.
func (cw *ChunkedWriter) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true

	if _, err := iolib.WriteFull(cw.w, lastChunk); err != nil {
		return err
	}

	return cw.Flush()
}

// Closed reports whether Close has been called.
func (cw *ChunkedWriter) Closed() bool { return cw.closed }

type flusher interface {
	Flush() error
}

// Flush flushes the underlying writer, e.g. a [bufio.Writer].
// Writers without a Flush method are left alone.
func (cw *ChunkedWriter) Flush() error {
	if f, ok := cw.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
