package raster

// Sync words. A stream written on a host of the other byte order starts
// with the reversed word and carries byte-swapped header fields.
var (
	Sync    = [4]byte{'R', 'a', 'S', 't'}
	RevSync = [4]byte{'t', 'S', 'a', 'R'}
)

// Page header layout (CUPS raster v1).
const (
	HeaderSize = 420

	// The four 64-byte media strings at the start of the header are
	// never byte-swapped, whatever order the stream was written in.
	swapOffset = 256

	stringSize = 64
)

const (
	AdvanceNever     = 0
	AdvanceAfterFile = 1
	AdvanceAfterJob  = 2
	AdvanceAfterSet  = 3
	AdvanceAfterPage = 4
)

const (
	CutNever     = 0
	CutAfterFile = 1
	CutAfterJob  = 2
	CutAfterSet  = 3
	CutAfterPage = 4
)

const (
	JogNever     = 0
	JogAfterFile = 1
	JogAfterJob  = 2
	JogAfterSet  = 3
)

const (
	EdgeTop    = 0
	EdgeRight  = 1
	EdgeBottom = 2
	EdgeLeft   = 3
)

const (
	RotateNone             = 0
	RotateCounterClockwise = 1
	RotateUpsideDown       = 2
	RotateClockwise        = 3
)

const (
	ChunkyPixels = 0
	BandedPixels = 1
	PlanarPixels = 2
)

const (
	ColorSpaceGray   = 0 // CUPS_CSPACE_W
	ColorSpaceRGB    = 1
	ColorSpaceRGBA   = 2
	ColorSpaceBlack  = 3 // CUPS_CSPACE_K
	ColorSpaceCMY    = 4
	ColorSpaceYMC    = 5
	ColorSpaceCMYK   = 6
	ColorSpaceYMCK   = 7
	ColorSpaceKCMY   = 8
	ColorSpaceKCMYcm = 9
	ColorSpaceGMCK   = 10
	ColorSpaceGMCS   = 11
	ColorSpaceWHITE  = 12
	ColorSpaceGOLD   = 13
	ColorSpaceSILVER = 14
)
