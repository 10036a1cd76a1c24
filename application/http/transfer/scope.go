package transfer

import (
	"io"
	"log/slog"
)

// WriteChunked hands fn a [ChunkedWriter] over w and closes it on every way out of fn,
// including panics and runtime.Goexit.
//
// If fn succeeds, the error from Close is returned.
// If fn fails, its error is returned and a Close error is only logged.
// If fn panics, there is nowhere to return a Close error, so it is logged and dropped.
// Callers that must know the last chunk went out should return nil from fn and check the result.
func WriteChunked(w io.Writer, logger *slog.Logger, fn func(cw *ChunkedWriter) error) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cw := NewChunkedWriter(w)

	returned := false
	defer func() {
		if returned {
			return
		}
		if err := cw.Close(); err != nil {
			logger.Error("dropping error from closing chunked body", slog.Any("error", err))
		}
	}()

	err := fn(cw)
	returned = true

	closeErr := cw.Close()
	if err != nil {
		if closeErr != nil {
			logger.Warn("closing chunked body after failed write", slog.Any("error", closeErr))
		}
		return err
	}

	return closeErr
}
