//go:build !unix

package raster

import "os"

// FDChannel is a file descriptor used as a stream channel. Outside unix
// it goes through *os.File, which never reports EINTR.
type FDChannel struct {
	fd int
	f  *os.File
}

// NewFDChannel wraps fd. The descriptor is not closed by the channel.
func NewFDChannel(fd int) *FDChannel {
	return &FDChannel{fd: fd, f: os.NewFile(uintptr(fd), "raster")}
}

// Fd returns the wrapped descriptor.
func (c *FDChannel) Fd() int { return c.fd }

func (c *FDChannel) Read(p []byte) (int, error) { return c.f.Read(p) }

func (c *FDChannel) Write(p []byte) (int, error) { return c.f.Write(p) }
