package filter

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mzyy94/rasterkit/internal/colorspace"
	"github.com/mzyy94/rasterkit/internal/raster"
	"github.com/mzyy94/rasterkit/internal/sunras"
)

func bitonalHeader(height uint32) *raster.PageHeader {
	return &raster.PageHeader{
		HWResolution:     [2]uint32{300, 300},
		PageSize:         [2]uint32{612, 792},
		NumCopies:        1,
		CUPSWidth:        8,
		CUPSHeight:       height,
		CUPSBitsPerColor: 1,
		CUPSBitsPerPixel: 1,
		CUPSBytesPerLine: 1,
		CUPSColorSpace:   raster.ColorSpaceBlack,
	}
}

// rasterJob builds a raster stream with one page per entry of pages;
// each entry lists the rows of that page.
func rasterJob(t *testing.T, height uint32, pages ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	s, err := raster.OpenWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for _, rows := range pages {
		if err := s.WriteHeader(bitonalHeader(height)); err != nil {
			t.Fatal(err)
		}
		if _, err := s.WritePixels(rows); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func openJob(t *testing.T, r io.Reader) *raster.Stream {
	t.Helper()
	s, err := raster.OpenReader(r)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRasterToPCL(t *testing.T) {
	job := rasterJob(t, 3, []byte{0, 0xF0, 0}, []byte{0x0F, 0, 0})
	var out bytes.Buffer
	n, err := RasterToPCL(context.Background(), openJob(t, bytes.NewReader(job)), &out, nil)
	if err != nil {
		t.Fatalf("RasterToPCL: %v", err)
	}
	if n != 2 {
		t.Errorf("pages = %d, want 2", n)
	}
	got := out.String()
	if !strings.HasPrefix(got, "\033E\033&l6D") || !strings.HasSuffix(got, "\f\033E") {
		t.Errorf("job framing wrong: %q", got)
	}
	if !strings.Contains(got, "\033*b1Y\033*b1W\xf0") {
		t.Errorf("page 1 body missing: %q", got)
	}
	if strings.Count(got, "\033*r0B\f") != 2 {
		t.Errorf("want two ejects: %q", got)
	}
}

func TestRasterToPCLNoPages(t *testing.T) {
	var out bytes.Buffer
	n, err := RasterToPCL(context.Background(), openJob(t, strings.NewReader("RaSt")), &out, nil)
	if !errors.Is(err, ErrNoPages) || n != 0 {
		t.Errorf("got %d, %v; want 0, ErrNoPages", n, err)
	}
	if out.String() != "\033E\033E" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRasterToPCLTruncatedPage(t *testing.T) {
	job := rasterJob(t, 3, []byte{0xFF})
	var out bytes.Buffer
	n, err := RasterToPCL(context.Background(), openJob(t, bytes.NewReader(job)), &out, nil)
	if !errors.Is(err, raster.ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
	if n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}
	if !strings.HasSuffix(out.String(), "\033*b1W\xff\033*r0B\f\033E") {
		t.Errorf("page not ejected before stopping: %q", out.String())
	}
}

func TestRasterToPCLBadPage(t *testing.T) {
	var buf bytes.Buffer
	s, _ := raster.OpenWriter(&buf)
	h := bitonalHeader(1)
	h.CUPSBitsPerColor = 8
	s.WriteHeader(h)
	s.WritePixels([]byte{0})

	var out bytes.Buffer
	_, err := RasterToPCL(context.Background(), openJob(t, &buf), &out, nil)
	if err == nil {
		t.Fatal("want error for 8-bit page")
	}
	if !strings.HasSuffix(out.String(), "\033E") {
		t.Errorf("printer not reset: %q", out.String())
	}
}

// cancelReader cancels its context once limit bytes have been read.
type cancelReader struct {
	r      io.Reader
	limit  int
	read   int
	cancel context.CancelFunc
}

func (c *cancelReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += n
	if c.read >= c.limit {
		c.cancel()
	}
	return n, err
}

func TestRasterToPCLCancel(t *testing.T) {
	job := rasterJob(t, 3, []byte{0xFF, 0xFF, 0xFF})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel once the first row has been read.
	r := &cancelReader{r: bytes.NewReader(job), limit: 4 + raster.HeaderSize + 1, cancel: cancel}
	var out bytes.Buffer
	n, err := RasterToPCL(ctx, openJob(t, r), &out, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n != 1 {
		t.Errorf("pages = %d, want 1", n)
	}
	got := out.String()
	if strings.Count(got, "\033*b1W\xff") != 1 {
		t.Errorf("want exactly one row before abort: %q", got)
	}
	if !strings.HasSuffix(got, strings.Repeat("\x00", 600)+"\033*r0B\f\033E") {
		t.Errorf("abort sequence missing at end of %q", got)
	}
}

func TestRasterToPCLCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	job := rasterJob(t, 1, []byte{0xFF})
	var out bytes.Buffer
	if _, err := RasterToPCL(ctx, openJob(t, bytes.NewReader(job)), &out, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if out.String() != "\033E\033E" {
		t.Errorf("output = %q", out.String())
	}
}

func sunFile(h sunras.Header, data []byte) []byte {
	var buf bytes.Buffer
	h.Magic = sunras.Magic
	binary.Write(&buf, binary.BigEndian, h)
	buf.Write(data)
	return buf.Bytes()
}

func TestSunToRaster(t *testing.T) {
	tests := []struct {
		name      string
		h         sunras.Header
		data      []byte
		primary   colorspace.Space
		secondary colorspace.Space
		space     uint32
		bpl       uint32
		rows      []byte
	}{
		{
			name: "bitmap_gray", h: sunras.Header{Width: 4, Height: 2, Depth: 1},
			data:    []byte{0b10100000, 0, 0b01010000, 0},
			primary: colorspace.RGB, secondary: colorspace.White,
			space: raster.ColorSpaceGray, bpl: 4,
			rows: []byte{255, 0, 255, 0, 0, 255, 0, 255},
		},
		{
			name: "bitmap_black", h: sunras.Header{Width: 2, Height: 1, Depth: 1},
			data:    []byte{0b10000000, 0},
			primary: colorspace.RGB, secondary: colorspace.Black,
			space: raster.ColorSpaceBlack, bpl: 2,
			rows: []byte{0, 255},
		},
		{
			name: "bgr_to_cmyk", h: sunras.Header{Width: 1, Height: 1, Depth: 24, Type: sunras.TypeStandard},
			data:    []byte{0, 0, 255, 0},
			primary: colorspace.CMYK, secondary: colorspace.White,
			space: raster.ColorSpaceCMYK, bpl: 4,
			rows: []byte{0, 255, 255, 0},
		},
		{
			name: "rgbcmyk_is_rgb", h: sunras.Header{Width: 1, Height: 1, Depth: 24, Type: sunras.TypeFormatRGB},
			data:    []byte{1, 2, 3, 0},
			primary: colorspace.RGBCMYK, secondary: colorspace.White,
			space: raster.ColorSpaceRGB, bpl: 3,
			rows: []byte{1, 2, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := sunras.DefaultOptions()
			opts.Primary, opts.Secondary = tt.primary, tt.secondary

			var buf bytes.Buffer
			out, _ := raster.OpenWriter(&buf)
			if err := SunToRaster(context.Background(), bytes.NewReader(sunFile(tt.h, tt.data)), out, opts, 150); err != nil {
				t.Fatalf("SunToRaster: %v", err)
			}

			in := openJob(t, &buf)
			h, err := in.ReadHeader()
			if err != nil {
				t.Fatal(err)
			}
			if h.CUPSColorSpace != tt.space || h.CUPSBytesPerLine != tt.bpl || h.CUPSBitsPerColor != 8 {
				t.Errorf("header: colorspace %d bpl %d bits %d", h.CUPSColorSpace, h.CUPSBytesPerLine, h.CUPSBitsPerColor)
			}
			if h.HWResolution != [2]uint32{150, 150} {
				t.Errorf("resolution = %v", h.HWResolution)
			}
			pix := make([]byte, len(tt.rows))
			if _, err := in.ReadPixels(pix); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(pix, tt.rows) {
				t.Errorf("pixels = %v, want %v", pix, tt.rows)
			}
			if _, err := in.ReadHeader(); err == nil {
				t.Error("want a single page")
			}
		})
	}
}

func TestSunToRasterInvalid(t *testing.T) {
	tests := []struct {
		name string
		file []byte
	}{
		{"not_sun", []byte("RaSt0000")},
		{"short", []byte{0x59, 0xa6}},
		{"zero_width", sunFile(sunras.Header{Width: 0, Height: 1, Depth: 8}, []byte{0, 0})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			out, _ := raster.OpenWriter(&buf)
			err := SunToRaster(context.Background(), bytes.NewReader(tt.file), out, sunras.DefaultOptions(), 0)
			if !errors.Is(err, sunras.ErrFormatInvalid) {
				t.Errorf("err = %v, want ErrFormatInvalid", err)
			}
			if buf.Len() != 4 {
				t.Errorf("wrote %d bytes past the sync word", buf.Len()-4)
			}
		})
	}
}

func TestSunToRasterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	out, _ := raster.OpenWriter(&buf)
	file := sunFile(sunras.Header{Width: 2, Height: 1, Depth: 8}, []byte{1, 2})
	if err := SunToRaster(ctx, bytes.NewReader(file), out, sunras.DefaultOptions(), 0); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if buf.Len() != 4 {
		t.Errorf("wrote %d bytes past the sync word", buf.Len()-4)
	}
}

func TestSunToRasterTruncated(t *testing.T) {
	tests := []struct {
		name string
		h    sunras.Header
		data []byte
	}{
		{"half_the_rows", sunras.Header{Width: 8, Height: 4, Depth: 8}, make([]byte, 16)},
		{"mid_row", sunras.Header{Width: 8, Height: 4, Depth: 8}, make([]byte, 20)},
		{"run_length", sunras.Header{Width: 8, Height: 4, Depth: 8, Type: sunras.TypeByteEncoded}, []byte{0x80, 15, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			out, _ := raster.OpenWriter(&buf)
			err := SunToRaster(context.Background(), bytes.NewReader(sunFile(tt.h, tt.data)), out, sunras.DefaultOptions(), 0)
			if !errors.Is(err, sunras.ErrIO) {
				t.Errorf("err = %v, want ErrIO", err)
			}
			if buf.Len() != 4 {
				t.Errorf("partial page written: %d bytes past the sync word", buf.Len()-4)
			}
		})
	}
}

func TestPageHeaderFor(t *testing.T) {
	h := PageHeaderFor(600, 300, colorspace.RGB, 0)
	if h.HWResolution[0] != DefaultResolution {
		t.Errorf("resolution = %d", h.HWResolution[0])
	}
	if h.PageSize != [2]uint32{144, 72} {
		t.Errorf("page size = %v", h.PageSize)
	}
	if h.CUPSBytesPerLine != 1800 || h.CUPSBitsPerPixel != 24 {
		t.Errorf("bpl %d bpp %d", h.CUPSBytesPerLine, h.CUPSBitsPerPixel)
	}
}
