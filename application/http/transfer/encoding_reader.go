package transfer

import (
	iolib "chunked-write/lib/io"
	"io"
)

// NewChunkedEncodingReader reads src and returns its content in chunked coding.
// Each non-empty read from src becomes one chunk and the last chunk follows src's EOF.
func NewChunkedEncodingReader(src io.Reader) io.Reader {
	return iolib.NewMiddlewareReader(src, func(w io.WriteCloser) io.WriteCloser {
		return NewChunkedWriter(w)
	})
}
