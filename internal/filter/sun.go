package filter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/mzyy94/rasterkit/internal/colorspace"
	"github.com/mzyy94/rasterkit/internal/raster"
	"github.com/mzyy94/rasterkit/internal/sunras"
)

// DefaultResolution is used when SunToRaster is given none.
const DefaultResolution = 300

var rasterSpaces = map[colorspace.Space]uint32{
	colorspace.White: raster.ColorSpaceGray,
	colorspace.RGB:   raster.ColorSpaceRGB,
	colorspace.Black: raster.ColorSpaceBlack,
	colorspace.CMY:   raster.ColorSpaceCMY,
	colorspace.CMYK:  raster.ColorSpaceCMYK,
}

// PageHeaderFor returns the header of an 8-bit chunky page holding a
// width x height image in space at res dots per inch.
func PageHeaderFor(width, height int, space colorspace.Space, res int) *raster.PageHeader {
	if res <= 0 {
		res = DefaultResolution
	}
	bpp := space.Channels()
	w, hgt := uint32(width), uint32(height)
	pw := uint32((width*72 + res - 1) / res)
	ph := uint32((height*72 + res - 1) / res)
	return &raster.PageHeader{
		MediaClass:         "PwgRaster",
		HWResolution:       [2]uint32{uint32(res), uint32(res)},
		ImagingBoundingBox: [4]uint32{0, 0, pw, ph},
		NumCopies:          1,
		PageSize:           [2]uint32{pw, ph},
		CUPSWidth:          w,
		CUPSHeight:         hgt,
		CUPSBitsPerColor:   8,
		CUPSBitsPerPixel:   uint32(8 * bpp),
		CUPSBytesPerLine:   uint32(width * bpp),
		CUPSColorOrder:     raster.ChunkyPixels,
		CUPSColorSpace:     rasterSpaces[space],
	}
}

// pageSink collects decoded rows into one raster page. Nothing is
// written until the whole image has decoded.
type pageSink struct {
	ctx    context.Context
	res    int
	header *raster.PageHeader
	pix    []byte
}

func (s *pageSink) Layout(img *sunras.Image) error {
	s.header = PageHeaderFor(img.Width, img.Height, img.Space, s.res)
	s.pix = make([]byte, s.header.PageBytes())
	return nil
}

func (s *pageSink) PutRow(y, width int, samples []byte) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	if y%progressRows == 0 {
		slog.Debug("converting", "row", y, "percent", 100*y/int(s.header.CUPSHeight))
	}
	bpl := int(s.header.CUPSBytesPerLine)
	copy(s.pix[y*bpl:(y+1)*bpl], samples)
	return nil
}

// SunToRaster decodes a Sun raster image from r and writes it to out as
// a single page at res dots per inch. The page is written only once
// the image has decoded completely.
func SunToRaster(ctx context.Context, r io.Reader, out *raster.Stream, opts sunras.Options, res int) error {
	br := bufio.NewReader(r)
	peek, err := br.Peek(4)
	if err != nil && len(peek) < 4 {
		return fmt.Errorf("%w: %w", sunras.ErrFormatInvalid, err)
	}
	if !sunras.Sniff(peek) {
		return fmt.Errorf("%w: not a Sun raster image", sunras.ErrFormatInvalid)
	}

	sink := &pageSink{ctx: ctx, res: res}
	img, err := sunras.Decode(br, opts, colorspace.Basic(), sink)
	if err != nil {
		return err
	}
	if err := out.WriteHeader(sink.header); err != nil {
		return err
	}
	if _, err := out.WritePixels(sink.pix); err != nil {
		return err
	}
	slog.Info("image converted", "width", img.Width, "height", img.Height, "colorspace", img.Space)
	return nil
}
