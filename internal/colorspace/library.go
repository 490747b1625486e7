package colorspace

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/gift"
)

// ConvertFunc converts count pixels from in to out.
type ConvertFunc func(in, out []byte, count int)

// Library is the set of conversion primitives a Policy dispatches to.
type Library struct {
	WhiteToRGB   ConvertFunc
	WhiteToBlack ConvertFunc
	WhiteToCMY   ConvertFunc
	WhiteToCMYK  ConvertFunc

	RGBToWhite ConvertFunc
	RGBToBlack ConvertFunc
	RGBToCMY   ConvertFunc
	RGBToCMYK  ConvertFunc

	// AdjustRGB changes saturation (percent) and hue (degrees) of an
	// RGB row in place.
	AdjustRGB func(rgb []byte, count, saturation, hue int)

	// ApplyLUT maps every byte of buf through lut.
	ApplyLUT func(buf, lut []byte)
}

func (l *Library) fromWhite(dst Space) (ConvertFunc, error) {
	var fn ConvertFunc
	switch dst {
	case RGB:
		fn = l.WhiteToRGB
	case Black:
		fn = l.WhiteToBlack
	case CMY:
		fn = l.WhiteToCMY
	case CMYK:
		fn = l.WhiteToCMYK
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: white to %v", ErrUnsupported, dst)
	}
	return fn, nil
}

func (l *Library) fromRGB(dst Space) (ConvertFunc, error) {
	var fn ConvertFunc
	switch dst {
	case White:
		fn = l.RGBToWhite
	case Black:
		fn = l.RGBToBlack
	case CMY:
		fn = l.RGBToCMY
	case CMYK:
		fn = l.RGBToCMYK
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: rgb to %v", ErrUnsupported, dst)
	}
	return fn, nil
}

// Basic returns a Library with plain, profile-free conversions.
func Basic() *Library {
	return &Library{
		WhiteToRGB:   whiteToRGB,
		WhiteToBlack: whiteToBlack,
		WhiteToCMY:   whiteToCMY,
		WhiteToCMYK:  whiteToCMYK,
		RGBToWhite:   rgbToWhite,
		RGBToBlack:   rgbToBlack,
		RGBToCMY:     rgbToCMY,
		RGBToCMYK:    rgbToCMYK,
		AdjustRGB:    adjustRGB,
		ApplyLUT:     applyLUT,
	}
}

func whiteToRGB(in, out []byte, count int) {
	for i := range count {
		v := in[i]
		out[3*i], out[3*i+1], out[3*i+2] = v, v, v
	}
}

func whiteToBlack(in, out []byte, count int) {
	for i := range count {
		out[i] = 255 - in[i]
	}
}

func whiteToCMY(in, out []byte, count int) {
	for i := range count {
		v := 255 - in[i]
		out[3*i], out[3*i+1], out[3*i+2] = v, v, v
	}
}

func whiteToCMYK(in, out []byte, count int) {
	for i := range count {
		out[4*i], out[4*i+1], out[4*i+2] = 0, 0, 0
		out[4*i+3] = 255 - in[i]
	}
}

func luminance(r, g, b byte) byte {
	return byte((int(r)*31 + int(g)*61 + int(b)*8) / 100)
}

func rgbToWhite(in, out []byte, count int) {
	for i := range count {
		out[i] = luminance(in[3*i], in[3*i+1], in[3*i+2])
	}
}

func rgbToBlack(in, out []byte, count int) {
	for i := range count {
		out[i] = 255 - luminance(in[3*i], in[3*i+1], in[3*i+2])
	}
}

func rgbToCMY(in, out []byte, count int) {
	for i := range 3 * count {
		out[i] = 255 - in[i]
	}
}

func rgbToCMYK(in, out []byte, count int) {
	for i := range count {
		c := 255 - in[3*i]
		m := 255 - in[3*i+1]
		y := 255 - in[3*i+2]
		k := min(c, m, y)
		out[4*i] = c - k
		out[4*i+1] = m - k
		out[4*i+2] = y - k
		out[4*i+3] = k
	}
}

func adjustRGB(rgb []byte, count, saturation, hue int) {
	if count == 0 {
		return
	}
	src := image.NewNRGBA(image.Rect(0, 0, count, 1))
	for i := range count {
		copy(src.Pix[4*i:4*i+3], rgb[3*i:3*i+3])
		src.Pix[4*i+3] = 0xff
	}

	// gift takes saturation as a change in percent and hue in
	// [-180, 180].
	sat := float32(min(max(saturation-100, -100), 500))
	h := ((hue%360)+540)%360 - 180
	g := gift.New(gift.Saturation(sat), gift.Hue(float32(h)))
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	for i := range count {
		copy(rgb[3*i:3*i+3], dst.Pix[4*i:4*i+3])
	}
}

func applyLUT(buf, lut []byte) {
	for i, v := range buf {
		buf[i] = lut[v]
	}
}

// NewLUT builds a lookup table for the given gamma and brightness
// (percent). It returns nil when the table would be the identity.
func NewLUT(gamma float64, brightness int) []byte {
	if gamma <= 0 {
		gamma = 1
	}
	if gamma == 1 && brightness == 100 {
		return nil
	}
	b := float64(brightness) / 100
	lut := make([]byte, 256)
	for i := range lut {
		v := int(255*b*math.Pow(float64(i)/255, gamma) + 0.5)
		lut[i] = byte(min(max(v, 0), 255))
	}
	return lut
}
