package proof

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"log/slog"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/tiff"
)

const defaultDPI = 300

func pageDPI(v uint32) float64 {
	if v == 0 {
		return defaultDPI
	}
	return float64(v)
}

// WritePDF writes pages as a PDF document, one PDF page per raster page
// at the page's own resolution.
func WritePDF(w io.Writer, pages []*Page) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to write")
	}

	pdf := fpdf.New("P", "mm", "", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, p := range pages {
		img, err := Render(p.Header, p.Pix)
		if err != nil {
			return fmt.Errorf("render page %d: %w", i+1, err)
		}

		b := img.Bounds()
		widthMM := float64(b.Dx()) / pageDPI(p.Header.HWResolution[0]) * 25.4
		heightMM := float64(b.Dy()) / pageDPI(p.Header.HWResolution[1]) * 25.4
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: widthMM, Ht: heightMM})

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("encode page %d PNG: %w", i+1, err)
		}
		name := fmt.Sprintf("page%d", i)
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
		pdf.ImageOptions(name, 0, 0, widthMM, heightMM, false, fpdf.ImageOptions{}, 0, "")
		slog.Debug("proof page added", "page", i+1, "width_mm", widthMM, "height_mm", heightMM)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("generate PDF: %w", err)
	}
	return nil
}

// WriteTIFF writes one page as a deflate-compressed TIFF image.
func WriteTIFF(w io.Writer, p *Page) error {
	img, err := Render(p.Header, p.Pix)
	if err != nil {
		return err
	}
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return fmt.Errorf("encode TIFF: %w", err)
	}
	return nil
}
