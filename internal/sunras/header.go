// Package sunras decodes Sun raster images into colorspace-converted rows.
package sunras

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic is the first word of every Sun raster file.
const Magic = 0x59a66a95

// Raster types.
const (
	TypeOld          = 0
	TypeStandard     = 1
	TypeByteEncoded  = 2
	TypeFormatRGB    = 3
	TypeFormatTIFF   = 4
	TypeFormatIFF    = 5
	TypeExperimental = 0xffff
)

// Color map types.
const (
	MapNone     = 0
	MapEqualRGB = 1
	MapRaw      = 2
)

// Image size limits used when Options leaves them unset.
const (
	DefaultMaxWidth  = 0x07ffffff
	DefaultMaxHeight = 0x3fffffff
)

const (
	headerSize   = 32
	maxMapLength = 768
	rleEscape    = 0x80
)

var (
	ErrFormatInvalid = errors.New("sunras: invalid raster image")
	ErrUnsupported   = errors.New("sunras: unsupported raster image")
)

// Header is the fixed 32-byte file header.
type Header struct {
	Magic     uint32
	Width     uint32
	Height    uint32
	Depth     uint32
	Length    uint32
	Type      uint32
	MapType   uint32
	MapLength uint32
}

// Sniff reports whether b starts with the Sun raster magic.
func Sniff(b []byte) bool {
	return len(b) >= 4 && binary.BigEndian.Uint32(b) == Magic
}

// ReadHeader reads and checks the magic of a file header.
func ReadHeader(r io.Reader) (*Header, error) {
	var b [headerSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrFormatInvalid, err)
	}
	w := func(i int) uint32 { return binary.BigEndian.Uint32(b[4*i:]) }
	h := &Header{
		Magic:     w(0),
		Width:     w(1),
		Height:    w(2),
		Depth:     w(3),
		Length:    w(4),
		Type:      w(5),
		MapType:   w(6),
		MapLength: w(7),
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %#08x", ErrFormatInvalid, h.Magic)
	}
	return h, nil
}

// Validate rejects headers no decoder can load. Zero limits mean the
// defaults.
func (h *Header) Validate(maxW, maxH int) error {
	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}
	switch {
	case h.MapLength > maxMapLength:
		return fmt.Errorf("%w: map length %d", ErrFormatInvalid, h.MapLength)
	case h.Width == 0 || uint64(h.Width) > uint64(maxW):
		return fmt.Errorf("%w: width %d", ErrFormatInvalid, h.Width)
	case h.Height == 0 || uint64(h.Height) > uint64(maxH):
		return fmt.Errorf("%w: height %d", ErrFormatInvalid, h.Height)
	case h.Depth == 0 || h.Depth > 32:
		return fmt.Errorf("%w: depth %d", ErrFormatInvalid, h.Depth)
	}
	return nil
}

// ScanWidth returns the stored bytes per row, padded to an even count.
func (h *Header) ScanWidth() int {
	n := (int(h.Width)*int(h.Depth) + 7) / 8
	if n&1 != 0 {
		n++
	}
	return n
}

// DataLength returns the image data length, computed from the geometry
// for old files that record zero.
func (h *Header) DataLength() int {
	if h.Length != 0 {
		return int(h.Length)
	}
	return h.ScanWidth() * int(h.Height)
}

// Palette holds the red, green and blue color map arrays.
type Palette [3][256]byte

// DefaultPalette maps index 0 to white and index 1 to black.
func DefaultPalette() *Palette {
	var p Palette
	for c := range p {
		p[c][0] = 255
	}
	return &p
}

// ReadPalette reads a color map of mapLength bytes: three equal arrays
// over the default palette. Bytes past the last full array are
// consumed and ignored.
func ReadPalette(r io.Reader, mapLength uint32) (*Palette, error) {
	if mapLength > maxMapLength {
		return nil, fmt.Errorf("%w: map length %d", ErrFormatInvalid, mapLength)
	}
	p := DefaultPalette()
	n := int(mapLength / 3)
	for c := range p {
		if _, err := io.ReadFull(r, p[c][:n]); err != nil {
			return nil, fmt.Errorf("%w: color map: %w", ErrFormatInvalid, err)
		}
	}
	if rest := int64(mapLength % 3); rest > 0 {
		if _, err := io.CopyN(io.Discard, r, rest); err != nil {
			return nil, fmt.Errorf("%w: color map: %w", ErrFormatInvalid, err)
		}
	}
	return p, nil
}
