//go:build unix

package raster

import (
	"io"

	"golang.org/x/sys/unix"
)

// FDChannel is a raw file descriptor used as a stream channel. Unlike
// *os.File it hands EINTR back to the caller, which lets a Stream apply
// its own retry rule.
type FDChannel struct {
	fd int
}

// NewFDChannel wraps fd. The descriptor is not closed by the channel.
func NewFDChannel(fd int) *FDChannel {
	return &FDChannel{fd: fd}
}

// Fd returns the wrapped descriptor.
func (c *FDChannel) Fd() int { return c.fd }

func (c *FDChannel) Read(p []byte) (int, error) {
	n, err := unix.Read(c.fd, p)
	if n < 0 {
		n = 0
	}
	if err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (c *FDChannel) Write(p []byte) (int, error) {
	n, err := unix.Write(c.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}
