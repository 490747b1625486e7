// Command rastertohp converts a CUPS raster job to HP PCL.
//
// Usage: rastertohp [job-id user title copies options] [file]
//
// The raster stream is read from file or standard input; PCL is written
// to standard output.
package main

import (
	"context"
	"errors"
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
	pages, err := run(ctx, inputPath(os.Args[1:]), settings)
	cancel()

	switch {
	case errors.Is(err, filter.ErrNoPages):
		slog.Error("no pages found")
		os.Exit(1)
	case errors.Is(err, context.Canceled):
		slog.Info("job cancelled", "pages", pages)
	case err != nil:
		slog.Error("job failed", "pages", pages, "err", err)
		os.Exit(1)
	default:
		slog.Info("ready to print", "pages", pages)
	}
}

func run(ctx context.Context, path string, settings config.Settings) (int, error) {
	fd := int(os.Stdin.Fd())
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		fd = int(f.Fd())
	}

	in, err := raster.OpenReader(raster.NewFDChannel(fd))
	if err != nil {
		return 0, err
	}
	defer in.Close()

	return filter.RasterToPCL(ctx, in, os.Stdout, settings.Device())
}

// inputPath returns the file argument, given either alone or after the
// five standard filter arguments.
func inputPath(args []string) string {
	switch len(args) {
	case 1:
		return args[0]
	case 6:
		return args[5]
	}
	return ""
}
