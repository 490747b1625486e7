package raster

import (
	"encoding/binary"
	"errors"
)

// PageHeader is the fixed-size record that precedes every page of a
// raster stream.
type PageHeader struct {
	MediaClass string
	MediaColor string
	MediaType  string
	OutputType string

	AdvanceDistance    uint32 // points
	AdvanceMedia       uint32
	Collate            bool
	CutMedia           uint32
	Duplex             bool
	HWResolution       [2]uint32 // dpi
	ImagingBoundingBox [4]uint32 // points: left, bottom, right, top
	InsertSheet        bool
	Jog                uint32
	LeadingEdge        uint32
	Margins            [2]uint32 // points: left, bottom
	ManualFeed         bool
	MediaPosition      uint32
	MediaWeight        uint32
	MirrorPrint        bool
	NegativePrint      bool
	NumCopies          uint32
	Orientation        uint32
	OutputFaceUp       bool
	PageSize           [2]uint32 // points: width, length
	Separations        bool
	TraySwitch         bool
	Tumble             bool

	CUPSWidth        uint32 // pixels
	CUPSHeight       uint32 // lines
	CUPSMediaType    uint32
	CUPSBitsPerColor uint32
	CUPSBitsPerPixel uint32
	CUPSBytesPerLine uint32
	CUPSColorOrder   uint32
	CUPSColorSpace   uint32
	CUPSCompression  uint32
	CUPSRowCount     uint32
	CUPSRowFeed      uint32
	CUPSRowStep      uint32
}

// NumColors returns the number of color components implied by the
// header's color space.
func (h *PageHeader) NumColors() int {
	switch h.CUPSColorSpace {
	case ColorSpaceRGB, ColorSpaceCMY, ColorSpaceYMC:
		return 3
	case ColorSpaceRGBA, ColorSpaceCMYK, ColorSpaceYMCK, ColorSpaceKCMY, ColorSpaceGMCK, ColorSpaceGMCS:
		return 4
	case ColorSpaceKCMYcm:
		return 6
	default:
		return 1
	}
}

// PageBytes returns the size of the pixel payload that follows the
// header.
func (h *PageHeader) PageBytes() int {
	return int(h.CUPSBytesPerLine) * int(h.CUPSHeight)
}

// swapHeader reverses every 32-bit word of the variable region of a
// raw header in place.
func swapHeader(b []byte) {
	for i := swapOffset; i+4 <= len(b); i += 4 {
		b[i], b[i+1], b[i+2], b[i+3] = b[i+3], b[i+2], b[i+1], b[i]
	}
}

// wordCursor walks the 32-bit words of a raw header.
type wordCursor struct {
	b   []byte
	off int
}

func (c *wordCursor) get() uint32 {
	v := binary.BigEndian.Uint32(c.b[c.off : c.off+4])
	c.off += 4
	return v
}

func (c *wordCursor) flag() bool { return c.get() == 1 }

func (c *wordCursor) put(v uint32) {
	binary.BigEndian.PutUint32(c.b[c.off:c.off+4], v)
	c.off += 4
}

func (c *wordCursor) putFlag(v bool) {
	if v {
		c.put(1)
	} else {
		c.put(0)
	}
}

func nullTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func putString(dst []byte, s string) {
	// Keep the terminating NUL.
	if len(s) > len(dst)-1 {
		s = s[:len(dst)-1]
	}
	copy(dst, s)
}

// unmarshalHeader decodes a raw header in canonical (forward) order.
func unmarshalHeader(b []byte) (*PageHeader, error) {
	if len(b) < HeaderSize {
		return nil, errors.New("page header too short")
	}
	h := &PageHeader{
		MediaClass: nullTerminated(b[0:stringSize]),
		MediaColor: nullTerminated(b[stringSize : 2*stringSize]),
		MediaType:  nullTerminated(b[2*stringSize : 3*stringSize]),
		OutputType: nullTerminated(b[3*stringSize : 4*stringSize]),
	}
	c := &wordCursor{b: b, off: swapOffset}
	h.AdvanceDistance = c.get()
	h.AdvanceMedia = c.get()
	h.Collate = c.flag()
	h.CutMedia = c.get()
	h.Duplex = c.flag()
	h.HWResolution[0] = c.get()
	h.HWResolution[1] = c.get()
	for i := range h.ImagingBoundingBox {
		h.ImagingBoundingBox[i] = c.get()
	}
	h.InsertSheet = c.flag()
	h.Jog = c.get()
	h.LeadingEdge = c.get()
	h.Margins[0] = c.get()
	h.Margins[1] = c.get()
	h.ManualFeed = c.flag()
	h.MediaPosition = c.get()
	h.MediaWeight = c.get()
	h.MirrorPrint = c.flag()
	h.NegativePrint = c.flag()
	h.NumCopies = c.get()
	h.Orientation = c.get()
	h.OutputFaceUp = c.flag()
	h.PageSize[0] = c.get()
	h.PageSize[1] = c.get()
	h.Separations = c.flag()
	h.TraySwitch = c.flag()
	h.Tumble = c.flag()
	h.CUPSWidth = c.get()
	h.CUPSHeight = c.get()
	h.CUPSMediaType = c.get()
	h.CUPSBitsPerColor = c.get()
	h.CUPSBitsPerPixel = c.get()
	h.CUPSBytesPerLine = c.get()
	h.CUPSColorOrder = c.get()
	h.CUPSColorSpace = c.get()
	h.CUPSCompression = c.get()
	h.CUPSRowCount = c.get()
	h.CUPSRowFeed = c.get()
	h.CUPSRowStep = c.get()
	return h, nil
}

// marshalHeader encodes h in canonical (forward) order.
func marshalHeader(h *PageHeader) []byte {
	b := make([]byte, HeaderSize)
	putString(b[0:stringSize], h.MediaClass)
	putString(b[stringSize:2*stringSize], h.MediaColor)
	putString(b[2*stringSize:3*stringSize], h.MediaType)
	putString(b[3*stringSize:4*stringSize], h.OutputType)

	c := &wordCursor{b: b, off: swapOffset}
	c.put(h.AdvanceDistance)
	c.put(h.AdvanceMedia)
	c.putFlag(h.Collate)
	c.put(h.CutMedia)
	c.putFlag(h.Duplex)
	c.put(h.HWResolution[0])
	c.put(h.HWResolution[1])
	for _, v := range h.ImagingBoundingBox {
		c.put(v)
	}
	c.putFlag(h.InsertSheet)
	c.put(h.Jog)
	c.put(h.LeadingEdge)
	c.put(h.Margins[0])
	c.put(h.Margins[1])
	c.putFlag(h.ManualFeed)
	c.put(h.MediaPosition)
	c.put(h.MediaWeight)
	c.putFlag(h.MirrorPrint)
	c.putFlag(h.NegativePrint)
	c.put(h.NumCopies)
	c.put(h.Orientation)
	c.putFlag(h.OutputFaceUp)
	c.put(h.PageSize[0])
	c.put(h.PageSize[1])
	c.putFlag(h.Separations)
	c.putFlag(h.TraySwitch)
	c.putFlag(h.Tumble)
	c.put(h.CUPSWidth)
	c.put(h.CUPSHeight)
	c.put(h.CUPSMediaType)
	c.put(h.CUPSBitsPerColor)
	c.put(h.CUPSBitsPerPixel)
	c.put(h.CUPSBytesPerLine)
	c.put(h.CUPSColorOrder)
	c.put(h.CUPSColorSpace)
	c.put(h.CUPSCompression)
	c.put(h.CUPSRowCount)
	c.put(h.CUPSRowFeed)
	c.put(h.CUPSRowStep)
	return b
}
