package iolib

import "io"

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// NopWriteCloser lets a plain writer stand where a middleware expects to be closed.
func NopWriteCloser(w io.Writer) io.WriteCloser { return nopCloser{w} }

// WriteFull writes buf to w, retrying short writes with the remainder.
// A writer that makes no progress without reporting an error yields [io.ErrShortWrite].
func WriteFull(w io.Writer, buf []byte) (uint, error) {
	total := uint(0)
	for total < uint(len(buf)) {
		n, err := w.Write(buf[total:])
		total += uint(n)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}
