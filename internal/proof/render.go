// Package proof renders raster pages as PDF or TIFF files for checking
// what a job would print.
package proof

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/mzyy94/rasterkit/internal/raster"
)

// ErrUnsupported is returned for pages Render cannot display.
var ErrUnsupported = errors.New("proof: unsupported page format")

// Page is one raster page with its complete pixel data.
type Page struct {
	Header *raster.PageHeader
	Pix    []byte
}

// ReadPage reads the next page header and its pixel data from s.
func ReadPage(s *raster.Stream) (*Page, error) {
	h, err := s.ReadHeader()
	if err != nil {
		return nil, err
	}
	pix := make([]byte, h.PageBytes())
	if len(pix) > 0 {
		if _, err := s.ReadPixels(pix); err != nil {
			return nil, fmt.Errorf("read page data: %w", err)
		}
	}
	return &Page{Header: h, Pix: pix}, nil
}

var bitonal = color.Palette{color.White, color.Black}

// Render returns the page as an image. Supported pages are chunky
// 1-bit black or white, and 8-bit white, black, RGB, CMY or CMYK.
//
//   - 1-bit -> *image.Paletted (white, black)
//   - 8-bit white or black -> *image.Gray
//   - 8-bit RGB or CMY -> *image.RGBA
//   - 8-bit CMYK -> *image.CMYK
func Render(h *raster.PageHeader, pix []byte) (image.Image, error) {
	if h.CUPSColorOrder != raster.ChunkyPixels {
		return nil, fmt.Errorf("%w: color order %d", ErrUnsupported, h.CUPSColorOrder)
	}
	w, ht, bpl := int(h.CUPSWidth), int(h.CUPSHeight), int(h.CUPSBytesPerLine)
	if len(pix) < ht*bpl {
		return nil, fmt.Errorf("proof: %d bytes of pixel data, want %d", len(pix), ht*bpl)
	}
	r := image.Rect(0, 0, w, ht)
	space := h.CUPSColorSpace

	switch h.CUPSBitsPerColor {
	case 1:
		if space != raster.ColorSpaceBlack && space != raster.ColorSpaceGray {
			break
		}
		if bpl < (w+7)/8 {
			return nil, fmt.Errorf("%w: %d bytes per line for %d pixels", ErrUnsupported, bpl, w)
		}
		// Set bits are ink for black and paper for white.
		ink := uint8(1)
		if space == raster.ColorSpaceGray {
			ink = 0
		}
		img := image.NewPaletted(r, bitonal)
		for y := range ht {
			src := pix[y*bpl:]
			dst := img.Pix[y*img.Stride:]
			for x := range w {
				if src[x>>3]&(0x80>>(x&7)) != 0 {
					dst[x] = ink
				} else {
					dst[x] = 1 - ink
				}
			}
		}
		return img, nil

	case 8:
		if n := h.NumColors(); bpl < w*n {
			return nil, fmt.Errorf("%w: %d bytes per line for %d pixels of %d colors", ErrUnsupported, bpl, w, n)
		}
		switch space {
		case raster.ColorSpaceGray, raster.ColorSpaceBlack:
			img := image.NewGray(r)
			for y := range ht {
				dst := img.Pix[y*img.Stride : y*img.Stride+w]
				copy(dst, pix[y*bpl:])
				if space == raster.ColorSpaceBlack {
					for i, v := range dst {
						dst[i] = 255 - v
					}
				}
			}
			return img, nil

		case raster.ColorSpaceRGB, raster.ColorSpaceCMY:
			img := image.NewRGBA(r)
			for y := range ht {
				src := pix[y*bpl:]
				dst := img.Pix[y*img.Stride:]
				for x := range w {
					c := src[3*x : 3*x+3]
					if space == raster.ColorSpaceCMY {
						dst[4*x], dst[4*x+1], dst[4*x+2] = 255-c[0], 255-c[1], 255-c[2]
					} else {
						dst[4*x], dst[4*x+1], dst[4*x+2] = c[0], c[1], c[2]
					}
					dst[4*x+3] = 0xff
				}
			}
			return img, nil

		case raster.ColorSpaceCMYK:
			img := image.NewCMYK(r)
			for y := range ht {
				copy(img.Pix[y*img.Stride:y*img.Stride+4*w], pix[y*bpl:])
			}
			return img, nil
		}
	}
	return nil, fmt.Errorf("%w: %d-bit colorspace %d", ErrUnsupported, h.CUPSBitsPerColor, space)
}
