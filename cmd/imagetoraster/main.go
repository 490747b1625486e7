// Command imagetoraster converts a Sun raster image to a CUPS raster
// page.
//
// Usage: imagetoraster [job-id user title copies options] [file]
//
// The image is read from file or standard input; the raster stream is
// written to standard output.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mzyy94/rasterkit/internal/config"
	"github.com/mzyy94/rasterkit/internal/filter"
	"github.com/mzyy94/rasterkit/internal/raster"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()})))

	settings, err := config.Load()
	if err != nil {
		slog.Error("failed to load settings", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, inputPath(os.Args[1:]), settings)
	cancel()
	if err != nil {
		slog.Error("image conversion failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string, settings config.Settings) error {
	opts, err := settings.DecodeOptions()
	if err != nil {
		return err
	}

	var src io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	out, err := raster.OpenWriter(raster.NewFDChannel(int(os.Stdout.Fd())))
	if err != nil {
		return err
	}
	defer out.Close()

	return filter.SunToRaster(ctx, src, out, opts, settings.Resolution)
}

func inputPath(args []string) string {
	switch len(args) {
	case 1:
		return args[0]
	case 6:
		return args[5]
	}
	return ""
}
