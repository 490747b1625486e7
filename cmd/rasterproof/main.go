// Command rasterproof renders a CUPS raster job as a PDF or TIFF proof.
//
// Usage: rasterproof [input [output]]
//
// The format comes from RASTERKIT_PROOF_FORMAT or the output file
// extension. A multi-page TIFF proof is written as one file per page,
// output-1.tif, output-2.tif and so on.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mzyy94/rasterkit/internal/config"
	"github.com/mzyy94/rasterkit/internal/proof"
	"github.com/mzyy94/rasterkit/internal/raster"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()})))

	settings, err := config.Load()
	if err != nil {
		slog.Error("failed to load settings", "err", err)
		os.Exit(1)
	}

	args := os.Args[1:]
	var input, output string
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 && args[1] != "-" {
		output = args[1]
	}
	format := settings.ProofFormat
	if ext := strings.ToLower(filepath.Ext(output)); ext == ".tif" || ext == ".tiff" {
		format = "tiff"
	} else if ext == ".pdf" {
		format = "pdf"
	}

	if err := run(input, output, format); err != nil {
		slog.Error("proof failed", "err", err)
		os.Exit(1)
	}
}

func run(input, output, format string) error {
	var src io.Reader = os.Stdin
	if input != "" && input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	s, err := raster.OpenReader(src)
	if err != nil {
		return err
	}
	defer s.Close()

	var pages []*proof.Page
	for {
		p, err := proof.ReadPage(s)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("stopped reading pages", "err", err)
			}
			break
		}
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages found")
	}
	slog.Info("rendering proof", "pages", len(pages), "format", format)

	switch format {
	case "pdf":
		return writeFile(output, func(w io.Writer) error { return proof.WritePDF(w, pages) })
	case "tiff":
		if len(pages) == 1 {
			return writeFile(output, func(w io.Writer) error { return proof.WriteTIFF(w, pages[0]) })
		}
		if output == "" {
			return fmt.Errorf("%d pages need an output file name for TIFF", len(pages))
		}
		base := strings.TrimSuffix(output, filepath.Ext(output))
		for i, p := range pages {
			name := fmt.Sprintf("%s-%d.tif", base, i+1)
			if err := writeFile(name, func(w io.Writer) error { return proof.WriteTIFF(w, p) }); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown proof format %q", format)
}

func writeFile(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	slog.Info("proof written", "path", path)
	return f.Close()
}
