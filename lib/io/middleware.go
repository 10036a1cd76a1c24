package iolib

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// MiddlewareReader turns a write-side middleware into a reader:
// bytes pulled from src are pushed through the middleware and served from an internal buffer.
// The middleware is closed once src reaches EOF, so whatever it writes on Close is read last.
type MiddlewareReader struct {
	src  io.Reader
	buf  *bytes.Buffer
	bufw io.WriteCloser

	// err is returned once buf is drained. io.EOF after src ended.
	err error
}

func NewMiddlewareReader(
	src io.Reader, middleware func(io.WriteCloser) io.WriteCloser,
) *MiddlewareReader {
	mr := &MiddlewareReader{
		src: src,
		buf: bytes.NewBuffer(nil),
	}
	mr.bufw = middleware(NopWriteCloser(mr.buf))
	return mr
}

func (mr *MiddlewareReader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}

	for mr.buf.Len() == 0 {
		if mr.err != nil {
			return 0, mr.err
		}

		// Bytes that come with an error still go through the middleware.
		n, err := mr.src.Read(p)
		if _, err := WriteFull(mr.bufw, p[:n]); err != nil {
			return 0, errors.Wrap(err, "failed to write")
		}

		switch {
		case err == io.EOF:
			mr.err = io.EOF
			if err := mr.bufw.Close(); err != nil {
				return 0, errors.Wrap(err, "failed to close middleware")
			}
		case err != nil:
			mr.err = errors.Wrap(err, "reading from source")
		}
	}

	return mr.buf.Read(p)
}
