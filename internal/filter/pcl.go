// Package filter runs complete conversion jobs: CUPS raster to PCL and
// Sun raster to CUPS raster.
package filter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mzyy94/rasterkit/internal/pcl"
	"github.com/mzyy94/rasterkit/internal/raster"
)

// ErrNoPages is returned when a job ends without a single page.
var ErrNoPages = errors.New("filter: no pages found")

const progressRows = 128

// RasterToPCL prints every page of in to w and returns the number of
// pages sent. Cancelling ctx ejects the current page at the next row
// boundary and resets the printer.
func RasterToPCL(ctx context.Context, in *raster.Stream, w io.Writer, dev *pcl.Device) (int, error) {
	p := pcl.NewPrinter(w)
	if err := p.Setup(); err != nil {
		return 0, err
	}

	for {
		if err := ctx.Err(); err != nil {
			p.Shutdown()
			return p.Pages(), err
		}

		h, err := in.ReadHeader()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("raster header unreadable, ending job", "err", err)
			}
			break
		}

		n, err := printPage(ctx, p, in, h, dev)
		if err != nil {
			// A cancelled page has already reset the printer.
			if ctx.Err() == nil {
				p.Shutdown()
			}
			return n, err
		}
	}

	if err := p.Shutdown(); err != nil {
		return p.Pages(), err
	}
	if p.Pages() == 0 {
		return 0, ErrNoPages
	}
	slog.Info("job complete", "pages", p.Pages())
	return p.Pages(), nil
}

// printPage sends one page. A read failure part way through still
// ejects the page before the error is returned.
func printPage(ctx context.Context, p *pcl.Printer, in *raster.Stream, h *raster.PageHeader, dev *pcl.Device) (int, error) {
	pg, err := p.StartPage(h, dev)
	if err != nil {
		return p.Pages(), err
	}
	slog.Info("page", "page", pg.Number(), "copies", h.NumCopies,
		"width", h.CUPSWidth, "height", h.CUPSHeight)

	height := int(h.CUPSHeight)
	var readErr error
	for y := range height {
		if err := ctx.Err(); err != nil {
			slog.Info("job cancelled, ejecting page", "page", pg.Number(), "row", y)
			if aerr := p.Abort(pg); aerr != nil {
				return p.Pages(), errors.Join(err, aerr)
			}
			return p.Pages(), err
		}
		if y%progressRows == 0 {
			slog.Info("printing", "page", pg.Number(), "percent", 100*y/height)
		}
		if _, err := in.ReadPixels(pg.Line()); err != nil {
			readErr = fmt.Errorf("page %d row %d: %w", pg.Number(), y, err)
			break
		}
		if err := pg.WriteLine(); err != nil {
			return p.Pages(), err
		}
	}

	printed, err := pg.End()
	if err != nil {
		return p.Pages(), err
	}
	if !printed {
		slog.Debug("page had no ink", "page", pg.Number())
	}
	return p.Pages(), readErr
}
