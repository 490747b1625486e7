// Package colorspace decides which conversion a decoded row needs to
// reach the output colorspace. The conversions themselves come from a
// Library.
package colorspace

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned for a conversion the policy has no path for.
var ErrUnsupported = errors.New("colorspace: unsupported conversion")

// Space is an image colorspace.
type Space int

const (
	White   Space = iota // luminance, 255 = white
	RGB                  // red, green, blue
	Black                // ink coverage, 255 = black
	CMY                  // cyan, magenta, yellow
	CMYK                 // cyan, magenta, yellow, black
	RGBCMYK              // primary choice only: RGB for color sources
)

var spaceNames = map[Space]string{
	White:   "white",
	RGB:     "rgb",
	Black:   "black",
	CMY:     "cmy",
	CMYK:    "cmyk",
	RGBCMYK: "rgb_cmyk",
}

func (s Space) String() string {
	if n, ok := spaceNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Space(%d)", int(s))
}

// ParseSpace parses a colorspace name as printed by String.
func ParseSpace(name string) (Space, error) {
	for s, n := range spaceNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown colorspace %q", ErrUnsupported, name)
}

// Channels returns the number of samples per pixel.
func (s Space) Channels() int {
	switch s {
	case White, Black:
		return 1
	case CMYK:
		return 4
	default:
		return 3
	}
}

// Select picks the output colorspace for a source image: gray sources
// use the secondary choice, color sources the primary one.
func Select(gray bool, primary, secondary Space) Space {
	if gray {
		return secondary
	}
	if primary == RGBCMYK {
		return RGB
	}
	return primary
}

// Policy converts rows to one target colorspace.
type Policy struct {
	target     Space
	saturation int
	hue        int
	lut        []byte
	lib        *Library
	out        []byte
}

// Option configures a Policy.
type Option func(*Policy)

// WithAdjust sets the saturation (percent, 100 = unchanged) and hue
// rotation (degrees) applied to color rows.
func WithAdjust(saturation, hue int) Option {
	return func(p *Policy) {
		p.saturation = saturation
		p.hue = hue
	}
}

// WithLUT sets a 256-entry gamma/brightness table applied to every
// output sample. A nil table disables the lookup.
func WithLUT(lut []byte) Option {
	return func(p *Policy) { p.lut = lut }
}

// NewPolicy returns a policy producing rows in target.
func NewPolicy(target Space, lib *Library, opts ...Option) (*Policy, error) {
	if lib == nil {
		return nil, errors.New("colorspace: nil library")
	}
	if target == RGBCMYK {
		target = RGB
	}
	if _, ok := spaceNames[target]; !ok {
		return nil, fmt.Errorf("%w: target %v", ErrUnsupported, target)
	}
	p := &Policy{target: target, saturation: 100, lib: lib}
	for _, o := range opts {
		o(p)
	}
	if p.lut != nil && len(p.lut) < 256 {
		return nil, fmt.Errorf("colorspace: lookup table has %d entries, want 256", len(p.lut))
	}
	return p, nil
}

// Target returns the output colorspace.
func (p *Policy) Target() Space { return p.target }

func (p *Policy) adjusting() bool {
	return p.saturation != 100 || p.hue != 0
}

func (p *Policy) lookup(b []byte) {
	if p.lut != nil {
		p.lib.ApplyLUT(b, p.lut)
	}
}

func (p *Policy) scratch(n int) []byte {
	if cap(p.out) < n {
		p.out = make([]byte, n)
	}
	return p.out[:n]
}

// Apply converts one row of width pixels with channels samples each
// (1 for gray, 3 for RGB). The row may be modified in place; the
// returned slice is either row or the policy's scratch buffer and is
// valid until the next call.
func (p *Policy) Apply(row []byte, channels, width int) ([]byte, error) {
	if len(row) < width*channels {
		return nil, fmt.Errorf("colorspace: row has %d bytes, want %d", len(row), width*channels)
	}
	bpp := p.target.Channels()

	switch channels {
	case 1:
		if p.target == White {
			in := row[:width]
			p.lookup(in)
			return in, nil
		}
		fn, err := p.lib.fromWhite(p.target)
		if err != nil {
			return nil, err
		}
		out := p.scratch(width * bpp)
		fn(row[:width], out, width)
		p.lookup(out)
		return out, nil

	case 3:
		in := row[:width*3]
		if p.target == RGB {
			if p.adjusting() {
				p.lib.AdjustRGB(in, width, p.saturation, p.hue)
			}
			p.lookup(in)
			return in, nil
		}
		if p.adjusting() && bpp > 1 {
			p.lib.AdjustRGB(in, width, p.saturation, p.hue)
		}
		fn, err := p.lib.fromRGB(p.target)
		if err != nil {
			return nil, err
		}
		out := p.scratch(width * bpp)
		fn(in, out, width)
		p.lookup(out)
		return out, nil

	default:
		return nil, fmt.Errorf("%w: %d-channel row", ErrUnsupported, channels)
	}
}
