package sunras

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mzyy94/rasterkit/internal/colorspace"
)

// RowSink receives decoded rows in order. samples holds width pixels
// in the image's output colorspace and is only valid during the call.
type RowSink interface {
	PutRow(y, width int, samples []byte) error
}

// A LayoutSink is told the output geometry and colorspace before the
// first row is delivered.
type LayoutSink interface {
	RowSink
	Layout(img *Image) error
}

// ErrIO is returned when image data ends or fails to read part way
// through the rows.
var ErrIO = errors.New("sunras: image data unreadable")

// RowSinkFunc adapts a function to RowSink.
type RowSinkFunc func(y, width int, samples []byte) error

func (f RowSinkFunc) PutRow(y, width int, samples []byte) error { return f(y, width, samples) }

// Options controls decoding.
type Options struct {
	MaxWidth  int
	MaxHeight int

	// Primary is used for color images, Secondary for gray ones.
	Primary   colorspace.Space
	Secondary colorspace.Space

	Saturation int // percent
	Hue        int // degrees
	LUT        []byte
}

// DefaultOptions returns options that keep samples unchanged apart
// from the colorspace conversion.
func DefaultOptions() Options {
	return Options{
		MaxWidth:   DefaultMaxWidth,
		MaxHeight:  DefaultMaxHeight,
		Primary:    colorspace.RGB,
		Secondary:  colorspace.White,
		Saturation: 100,
	}
}

// Image describes a decoded image.
type Image struct {
	Width    int
	Height   int
	Space    colorspace.Space
	Channels int
}

type expansion int

const (
	expandBits      expansion = iota // 1-bit, no palette: gray
	expandBitsMap                    // 1-bit, palette: RGB
	expandIndexed                    // 8-bit, palette: RGB
	expandBGR                        // 24-bit reversed order: RGB
	expandPassGray                   // 8-bit, no palette
	expandPassColor                  // 24-bit RGB order
)

func selectExpansion(h *Header) (expansion, error) {
	mapped := h.MapLength > 0
	switch {
	case h.Depth == 1 && !mapped:
		return expandBits, nil
	case h.Depth == 1:
		return expandBitsMap, nil
	case h.Depth == 8 && mapped:
		return expandIndexed, nil
	case h.Depth == 8:
		return expandPassGray, nil
	case h.Depth == 24 && h.Type == TypeFormatRGB:
		return expandPassColor, nil
	case h.Depth == 24:
		return expandBGR, nil
	}
	return 0, fmt.Errorf("%w: depth %d, map length %d", ErrUnsupported, h.Depth, h.MapLength)
}

// Decode reads a Sun raster image from r and hands each converted row
// to sink. Header and combination errors are reported before any row
// is produced.
func Decode(r io.Reader, opts Options, lib *colorspace.Library, sink RowSink) (*Image, error) {
	br := bufio.NewReader(r)

	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	slog.Debug("sun raster header",
		"width", h.Width, "height", h.Height, "depth", h.Depth,
		"type", h.Type, "length", h.DataLength(), "maplength", h.MapLength)

	if err := h.Validate(opts.MaxWidth, opts.MaxHeight); err != nil {
		return nil, err
	}
	exp, err := selectExpansion(h)
	if err != nil {
		return nil, err
	}

	pal := DefaultPalette()
	if h.MapLength > 0 {
		if pal, err = ReadPalette(br, h.MapLength); err != nil {
			return nil, err
		}
	}

	gray := h.Depth < 24 && h.MapLength == 0
	channels := 3
	if gray {
		channels = 1
	}
	space := colorspace.Select(gray, opts.Primary, opts.Secondary)
	policy, err := colorspace.NewPolicy(space, lib,
		colorspace.WithAdjust(opts.Saturation, opts.Hue),
		colorspace.WithLUT(opts.LUT))
	if err != nil {
		return nil, err
	}

	img := &Image{
		Width:    int(h.Width),
		Height:   int(h.Height),
		Space:    policy.Target(),
		Channels: policy.Target().Channels(),
	}
	slog.Debug("sun raster layout", "colorspace", img.Space, "bpp", img.Channels, "scanwidth", h.ScanWidth())
	if ls, ok := sink.(LayoutSink); ok {
		if err := ls.Layout(img); err != nil {
			return img, err
		}
	}

	d := &decoder{
		r:        br,
		rle:      h.Type == TypeByteEncoded,
		scanline: make([]byte, h.ScanWidth()),
		in:       make([]byte, img.Width*channels),
	}
	for y := range img.Height {
		if err := d.readScanline(); err != nil {
			return img, fmt.Errorf("%w: row %d: %w", ErrIO, y, err)
		}
		d.expand(exp, pal, img.Width)
		row, err := policy.Apply(d.in, channels, img.Width)
		if err != nil {
			return img, err
		}
		if err := sink.PutRow(y, img.Width, row); err != nil {
			return img, err
		}
	}
	return img, nil
}

type decoder struct {
	r        *bufio.Reader
	rle      bool
	runCount int
	runValue byte
	scanline []byte
	in       []byte
}

// readScanline fills the padded scanline. Run-length state carries over
// from the previous row.
func (d *decoder) readScanline() error {
	if !d.rle {
		_, err := io.ReadFull(d.r, d.scanline)
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	for i := range d.scanline {
		if d.runCount > 0 {
			d.scanline[i] = d.runValue
			d.runCount--
			continue
		}
		b, err := d.readByte()
		if err != nil {
			return err
		}
		d.runValue = b
		if b == rleEscape {
			c, err := d.readByte()
			if err != nil {
				return err
			}
			d.runCount = int(c)
			if d.runCount != 0 {
				if d.runValue, err = d.readByte(); err != nil {
					return err
				}
			}
		}
		d.scanline[i] = d.runValue
	}
	return nil
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return b, err
}

func (d *decoder) expand(exp expansion, pal *Palette, width int) {
	src, out := d.scanline, d.in
	switch exp {
	case expandBits:
		for x := range width {
			if src[x>>3]&(0x80>>(x&7)) != 0 {
				out[x] = 255
			} else {
				out[x] = 0
			}
		}
	case expandBitsMap:
		for x := range width {
			i := 0
			if src[x>>3]&(0x80>>(x&7)) != 0 {
				i = 1
			}
			out[3*x], out[3*x+1], out[3*x+2] = pal[0][i], pal[1][i], pal[2][i]
		}
	case expandIndexed:
		for x := range width {
			i := src[x]
			out[3*x], out[3*x+1], out[3*x+2] = pal[0][i], pal[1][i], pal[2][i]
		}
	case expandBGR:
		for x := range width {
			out[3*x], out[3*x+1], out[3*x+2] = src[3*x+2], src[3*x+1], src[3*x]
		}
	case expandPassGray:
		copy(out, src[:width])
	case expandPassColor:
		copy(out, src[:3*width])
	}
}
