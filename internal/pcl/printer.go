package pcl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mzyy94/rasterkit/internal/raster"
)

var (
	ErrBadHeader = errors.New("pcl: unusable page header")
	ErrPageEnded = errors.New("pcl: page already ended")
)

const (
	esc        = "\033"
	abortNULs  = 600
	modelColor = 2 // DeskJet with configure-image-data support
)

// Device holds the printer description values the encoder needs. A nil
// *Device means no description is available.
type Device struct {
	ModelNumber int
	PageLength  float64 // points
	PageTop     float64 // points
}

func (d *Device) model() int {
	if d == nil {
		return 0
	}
	return d.ModelNumber
}

// pageSizes maps a page length in points to its PCL page size code.
var pageSizes = map[uint32]int{
	540:  80,  // Monarch envelope
	624:  90,  // DL envelope
	649:  91,  // C5 envelope
	684:  81,  // COM-10 envelope
	709:  100, // B5 envelope
	756:  1,   // Executive
	792:  2,   // Letter
	842:  26,  // A4
	1008: 3,   // Legal
	1191: 27,  // A3
	1224: 6,   // Tabloid
}

// Printer writes a PCL job to an underlying writer.
type Printer struct {
	w     *bufio.Writer
	pages int
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: bufio.NewWriter(w)}
}

// Pages returns the number of pages started so far.
func (p *Printer) Pages() int { return p.pages }

// Setup resets the printer.
func (p *Printer) Setup() error {
	p.w.WriteString(esc + "E")
	return p.w.Flush()
}

// Shutdown resets the printer at the end of the job.
func (p *Printer) Shutdown() error {
	p.w.WriteString(esc + "E")
	return p.w.Flush()
}

// Abort leaves the printer in a state where the current page ejects
// cleanly, then shuts down. pg may be nil when no page is open.
func (p *Printer) Abort(pg *Page) error {
	p.w.Write(make([]byte, abortNULs))
	if pg != nil && !pg.ended {
		if _, err := pg.End(); err != nil {
			return err
		}
	}
	return p.Shutdown()
}

// Page is the state of one page in progress. Its buffers belong to the
// page and are dropped by End.
type Page struct {
	p           *Printer
	number      int
	duplex      bool
	width       int
	colorBits   int
	compression Compression

	line   []byte
	planes [][]byte
	bytes  int // output bytes per plane row
	bits   []byte
	comp   []byte

	feed    int
	printed bool
	ended   bool
}

func planeCount(h *raster.PageHeader, dev *Device) int {
	switch h.CUPSColorSpace {
	case raster.ColorSpaceKCMY:
		return 4
	case raster.ColorSpaceCMY:
		if dev.model() == modelColor {
			return 1
		}
		return 3
	}
	return 1
}

// StartPage validates h, sends the page setup commands and returns the
// page context.
func (p *Printer) StartPage(h *raster.PageHeader, dev *Device) (*Page, error) {
	if h.CUPSBitsPerColor != 1 && h.CUPSBitsPerColor != 2 {
		return nil, fmt.Errorf("%w: %d bits per color", ErrBadHeader, h.CUPSBitsPerColor)
	}
	if h.CUPSWidth == 0 || h.CUPSBytesPerLine == 0 {
		return nil, fmt.Errorf("%w: %dx%d, %d bytes per line", ErrBadHeader, h.CUPSWidth, h.CUPSHeight, h.CUPSBytesPerLine)
	}

	numPlanes := planeCount(h, dev)
	pg := &Page{
		p:           p,
		number:      p.pages + 1,
		duplex:      h.Duplex,
		width:       int(h.CUPSWidth),
		colorBits:   int(h.CUPSBitsPerColor),
		compression: Compression(h.CUPSCompression),
		bytes:       (int(h.CUPSWidth) + 7) / 8,
	}
	bpl := int(h.CUPSBytesPerLine)
	if bpl/numPlanes < (pg.width*pg.colorBits+7)/8 {
		return nil, fmt.Errorf("%w: %d bytes per line too short for %d planes of %d pixels",
			ErrBadHeader, bpl, numPlanes, pg.width)
	}
	if pg.compression < None || pg.compression > PackBits {
		slog.Warn("unknown compression mode, sending uncompressed", "mode", h.CUPSCompression)
		pg.compression = None
	}

	pg.line = make([]byte, bpl)
	pg.planes = make([][]byte, numPlanes)
	for i := range pg.planes {
		pg.planes[i] = pg.line[i*bpl/numPlanes : (i+1)*bpl/numPlanes]
	}
	if pg.colorBits > 1 {
		pg.bits = make([]byte, pg.colorBits*pg.bytes)
	}
	if pg.compression != None {
		pg.comp = make([]byte, 0, 2*bpl)
	}

	p.pages++
	p.writeSetup(h, dev, pg)
	if err := p.w.Flush(); err != nil {
		return nil, err
	}
	slog.Debug("page started", "page", pg.number, "planes", numPlanes, "bits", pg.colorBits, "compression", pg.compression)
	return pg, nil
}

func (p *Printer) writeSetup(h *raster.PageHeader, dev *Device, pg *Page) {
	w := p.w
	if !pg.duplex || pg.number&1 != 0 {
		w.WriteString(esc + "&l6D" + esc + "&k12H") // 6 LPI, 10 CPI
		w.WriteString(esc + "&l0O")                 // portrait
		if code, ok := pageSizes[h.PageSize[1]]; ok {
			fmt.Fprintf(w, esc+"&l%dA", code)
		}
		fmt.Fprintf(w, esc+"&l%dP", h.PageSize[1]/12)
		w.WriteString(esc + "&l0E")
		fmt.Fprintf(w, esc+"&l%dX", h.NumCopies)
		if h.MediaPosition != 0 {
			fmt.Fprintf(w, esc+"&l%dH", h.MediaPosition)
		}
		if h.CUPSMediaType != 0 {
			fmt.Fprintf(w, esc+"&l%dM", h.CUPSMediaType)
		}
		if h.Duplex {
			mode := 1
			if h.Tumble {
				mode = 2
			}
			fmt.Fprintf(w, esc+"&l%dS", mode)
		}
		w.WriteString(esc + "&l0L") // no perforation skip
		if dev.model() == modelColor {
			w.WriteString(esc + "&l-2H") // load media
		}
	} else {
		w.WriteString(esc + "&a2G") // back side
	}

	fmt.Fprintf(w, esc+"*t%dR", h.HWResolution[0])

	if dev.model() == modelColor {
		w.WriteString(esc + "*g26W")
		w.WriteByte(2)
		w.WriteByte(byte(len(pg.planes)))
		for range 4 { // K, C, M, Y
			w.WriteByte(byte(h.HWResolution[0] >> 8))
			w.WriteByte(byte(h.HWResolution[0]))
			w.WriteByte(byte(h.HWResolution[1] >> 8))
			w.WriteByte(byte(h.HWResolution[1]))
			w.WriteByte(0)
			w.WriteByte(byte(1 << pg.colorBits))
		}
	} else {
		switch len(pg.planes) {
		case 4:
			w.WriteString(esc + "*r-4U")
		case 3:
			w.WriteString(esc + "*r-3U")
		}
	}

	fmt.Fprintf(w, esc+"*r%dS", h.CUPSWidth)
	fmt.Fprintf(w, esc+"*r%dT", h.CUPSHeight)
	w.WriteString(esc + "&a0H")
	if dev != nil {
		fmt.Fprintf(w, esc+"&a%.0fV", 10*(dev.PageLength-dev.PageTop))
	} else {
		w.WriteString(esc + "&a0V")
	}
	w.WriteString(esc + "*r1A")
	if pg.compression != None {
		fmt.Fprintf(w, esc+"*b%dM", int(pg.compression))
	}
}

// Number returns the page's position in the job, starting at 1.
func (pg *Page) Number() int { return pg.number }

// Line returns the buffer the next scanline must be read into.
func (pg *Page) Line() []byte { return pg.line }

// Blank reports whether the current line has no ink.
func (pg *Page) Blank() bool {
	return pg.line[0] == 0 && bytes.Equal(pg.line[1:], pg.line[:len(pg.line)-1])
}

// WriteLine sends the scanline held in Line. Blank lines are counted
// and sent as one vertical skip before the next printed line; blank
// lines at the end of the page are never sent.
func (pg *Page) WriteLine() error {
	if pg.ended {
		return ErrPageEnded
	}
	if pg.Blank() {
		pg.feed++
		return nil
	}

	w := pg.p.w
	if pg.feed > 0 {
		fmt.Fprintf(w, esc+"*b%dY", pg.feed)
		pg.feed = 0
	}

	last := len(pg.planes) - 1
	for i, plane := range pg.planes {
		sel := byte('V')
		if i == last {
			sel = 'W'
		}
		if pg.colorBits == 1 {
			pg.send(plane[:pg.bytes], sel)
			continue
		}
		SplitBits(pg.bits, plane, pg.bytes)
		pg.send(pg.bits[:pg.bytes], 'V')
		pg.send(pg.bits[pg.bytes:2*pg.bytes], sel)
	}
	pg.printed = true
	return w.Flush()
}

// send frames one plane row as ESC * b <n> V|W.
func (pg *Page) send(data []byte, sel byte) {
	if pg.compression != None {
		pg.comp = Compress(pg.comp[:0], data, pg.compression)
		data = pg.comp
	}
	fmt.Fprintf(pg.p.w, esc+"*b%d%c", len(data), sel)
	pg.p.w.Write(data)
}

// End ejects the page and reports whether any line was printed. The
// front side of a duplex sheet is not ejected.
func (pg *Page) End() (bool, error) {
	if pg.ended {
		return pg.printed, nil
	}
	pg.ended = true

	w := pg.p.w
	eject := !(pg.duplex && pg.number&1 != 0)
	if len(pg.planes) > 1 {
		w.WriteString(esc + "*rC")
		if eject {
			w.WriteString(esc + "&l0H")
		}
	} else {
		w.WriteString(esc + "*r0B")
		if eject {
			w.WriteString("\f")
		}
	}
	pg.line, pg.planes, pg.bits, pg.comp = nil, nil, nil, nil
	return pg.printed, w.Flush()
}
