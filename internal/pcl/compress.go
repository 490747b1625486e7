// Package pcl encodes raster pages as HP PCL raster graphics.
package pcl

import "fmt"

// Compression is a PCL raster compression mode (ESC * b # M).
type Compression int

const (
	None     Compression = 0
	RLE      Compression = 1
	PackBits Compression = 2
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case RLE:
		return "rle"
	case PackBits:
		return "packbits"
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

const (
	maxRun     = 256 // RLE run
	maxRepeat  = 128 // packbits repeat run
	maxLiteral = 127 // packbits literal span
)

// CompressRLE appends the mode 1 encoding of src to dst: every run,
// including single bytes, becomes (count-1, value).
func CompressRLE(dst, src []byte) []byte {
	for i := 0; i < len(src); {
		n := 1
		for i+n < len(src) && src[i+n] == src[i] && n < maxRun {
			n++
		}
		dst = append(dst, byte(n-1), src[i])
		i += n
	}
	return dst
}

// CompressPackBits appends the mode 2 (TIFF PackBits) encoding of src
// to dst. Two equal bytes always form a repeat run.
func CompressPackBits(dst, src []byte) []byte {
	end := len(src)
	for i := 0; i < end; {
		switch {
		case i+1 >= end:
			dst = append(dst, 0, src[i])
			i++

		case src[i] == src[i+1]:
			n := 2
			for i+n < end && src[i+n] == src[i] && n < maxRepeat {
				n++
			}
			dst = append(dst, byte(257-n), src[i])
			i += n

		default:
			start := i
			i++
			n := 1
			for i < end-1 && src[i] != src[i+1] && n < maxLiteral {
				i++
				n++
			}
			dst = append(dst, byte(n-1))
			dst = append(dst, src[start:start+n]...)
		}
	}
	return dst
}

// Compress appends src encoded with mode to dst. Unknown modes copy
// src unchanged.
func Compress(dst, src []byte, mode Compression) []byte {
	switch mode {
	case RLE:
		return CompressRLE(dst, src)
	case PackBits:
		return CompressPackBits(dst, src)
	default:
		return append(dst, src...)
	}
}

// SplitBits separates 2-bit samples into low and high bit planes. Each
// pair of src bytes (eight samples) yields one byte of the low plane at
// dst[k] and one byte of the high plane at dst[bytes+k]. dst must hold
// 2*bytes bytes.
func SplitBits(dst, src []byte, bytes int) {
	for i, k := 0, 0; i < len(src) && k < bytes; i, k = i+2, k+1 {
		b := src[i]
		lo := (b&64)<<1 | (b&16)<<2 | (b&4)<<3 | (b&1)<<4
		hi := b&128 | (b&32)<<1 | (b&8)<<2 | (b&2)<<3
		if i+1 < len(src) {
			b = src[i+1]
			lo |= b&1 | (b&4)>>1 | (b&16)>>2 | (b&64)>>3
			hi |= (b&2)>>1 | (b&8)>>2 | (b&32)>>3 | (b&128)>>4
		}
		dst[k] = lo
		dst[bytes+k] = hi
	}
}
