package iolib

import (
	"io"

	"github.com/pkg/errors"
)

var ErrBufferFull = errors.New("fixed buffer is full")

// FixedWriter writes into a caller-provided slice and never grows it.
type FixedWriter struct {
	buf []byte
	n   int
}

var _ io.Writer = (*FixedWriter)(nil)

func NewFixedWriter(buf []byte) *FixedWriter {
	return &FixedWriter{buf: buf}
}

// Write stores as much of p as fits.
// If p does not fit entirely, the stored prefix length is returned with [ErrBufferFull].
func (fw *FixedWriter) Write(p []byte) (n int, err error) {
	n = copy(fw.buf[fw.n:], p)
	fw.n += n
	if n < len(p) {
		return n, ErrBufferFull
	}
	return n, nil
}

func (fw *FixedWriter) Bytes() []byte  { return fw.buf[:fw.n] }
func (fw *FixedWriter) Len() int       { return fw.n }
func (fw *FixedWriter) Available() int { return len(fw.buf) - fw.n }
