// Package raster reads and writes CUPS raster (v1) streams: a sync word
// followed by pages, each a fixed-size header and height lines of
// uncompressed pixel data.
package raster

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"syscall"
)

var (
	// ErrOpenFailed is returned when the sync word cannot be read or
	// written, or is not a recognized raster sync word.
	ErrOpenFailed = errors.New("raster: open failed")

	// ErrModeMismatch is returned when reading from a write stream or
	// writing to a read stream.
	ErrModeMismatch = errors.New("raster: wrong stream direction")

	// ErrIO is returned when a transfer could not be completed. The
	// stream should not be used afterwards.
	ErrIO = errors.New("raster: i/o failure")

	// ErrClosed is returned by operations on a closed stream.
	ErrClosed = errors.New("raster: stream closed")
)

// Mode is the direction of a stream, fixed when it is opened.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

// Stream is a raster stream handle.
type Stream struct {
	r        io.Reader
	w        io.Writer
	mode     Mode
	reversed bool
	closed   bool
}

// OpenReader reads the sync word from r and returns a read stream. The
// byte order of the stream is taken from the sync word.
func OpenReader(r io.Reader) (*Stream, error) {
	s := &Stream{r: r, mode: ModeRead}
	var sync [4]byte
	if _, err := s.ReadPixels(sync[:]); err != nil {
		return nil, fmt.Errorf("%w: read sync: %w", ErrOpenFailed, err)
	}
	switch sync {
	case Sync:
	case RevSync:
		s.reversed = true
	default:
		return nil, fmt.Errorf("%w: bad sync word %q", ErrOpenFailed, sync[:])
	}
	slog.Debug("raster stream opened", "mode", s.mode, "reversed", s.reversed)
	return s, nil
}

// OpenWriter writes the forward sync word to w and returns a write
// stream.
func OpenWriter(w io.Writer) (*Stream, error) {
	s := &Stream{w: w, mode: ModeWrite}
	if _, err := s.WritePixels(Sync[:]); err != nil {
		return nil, fmt.Errorf("%w: write sync: %w", ErrOpenFailed, err)
	}
	slog.Debug("raster stream opened", "mode", s.mode)
	return s, nil
}

// Mode returns the direction of the stream.
func (s *Stream) Mode() Mode { return s.mode }

// Reversed reports whether the stream was written in the opposite byte
// order.
func (s *Stream) Reversed() bool { return s.reversed }

func (s *Stream) check(want Mode) error {
	if s == nil || s.closed {
		return ErrClosed
	}
	if s.mode != want {
		return fmt.Errorf("%w: stream opened for %s", ErrModeMismatch, s.mode)
	}
	return nil
}

// ReadHeader reads the next page header.
func (s *Stream) ReadHeader() (*PageHeader, error) {
	if err := s.check(ModeRead); err != nil {
		return nil, err
	}
	buf := make([]byte, HeaderSize)
	if _, err := s.ReadPixels(buf); err != nil {
		return nil, fmt.Errorf("read page header: %w", err)
	}
	if s.reversed {
		swapHeader(buf)
	}
	return unmarshalHeader(buf)
}

// WriteHeader writes a page header. The pixel data of the page must
// follow through WritePixels.
func (s *Stream) WriteHeader(h *PageHeader) error {
	if err := s.check(ModeWrite); err != nil {
		return err
	}
	if _, err := s.WritePixels(marshalHeader(h)); err != nil {
		return fmt.Errorf("write page header: %w", err)
	}
	return nil
}

// ReadPixels fills p completely. It returns len(p) on success and 0
// with an error otherwise; a partial read is never reported.
// Interrupted reads are retried.
func (s *Stream) ReadPixels(p []byte) (int, error) {
	if err := s.check(ModeRead); err != nil {
		return 0, err
	}
	return transfer(s.r.Read, p)
}

// WritePixels writes p completely, with the same all-or-nothing
// result as ReadPixels.
func (s *Stream) WritePixels(p []byte) (int, error) {
	if err := s.check(ModeWrite); err != nil {
		return 0, err
	}
	return transfer(s.w.Write, p)
}

// Close releases the stream. The underlying channel is left open.
func (s *Stream) Close() error {
	if s == nil || s.closed {
		return ErrClosed
	}
	s.closed = true
	s.r, s.w = nil, nil
	return nil
}

func transfer(fn func([]byte) (int, error), p []byte) (int, error) {
	remaining := p
	for len(remaining) > 0 {
		n, err := fn(remaining)
		if n < 0 {
			n = 0
		}
		remaining = remaining[n:]
		if err != nil {
			if isInterrupted(err) {
				continue
			}
			if len(remaining) == 0 && err == io.EOF {
				break
			}
			return 0, fmt.Errorf("%w: %w", ErrIO, err)
		}
		if n == 0 {
			return 0, fmt.Errorf("%w: %w", ErrIO, io.ErrUnexpectedEOF)
		}
	}
	return len(p), nil
}

func isInterrupted(err error) bool {
	return errors.Is(err, syscall.EINTR)
}
