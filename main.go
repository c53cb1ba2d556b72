package main

import (
	"errors"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"strings"

	"pixelart/mangle"
	"pixelart/palette"
	"pixelart/parallel"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"
)

var cli struct {
	Verbose   bool   `help:"Enable debug logging" short:"v"`
	LogFormat string `help:"Log output format" enum:"text,json" default:"text"`
	Workers   int    `help:"Number of images converted in parallel, 0 uses every CPU" default:"0" env:"PIXELART_WORKERS"`

	Convert mangle.CLICmd  `cmd:"" help:"Convert images to pixel art"`
	Palette palette.CLICmd `cmd:"" help:"Inspect, export and extract palettes"`
}

func setupLogging(w io.Writer, verbose bool, format string) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("pixelart"),
		kong.Description("Downsample, tone and palette-map pictures into pixel art."),
		kong.UsageOnError(),
		kong.Vars{"palettes": strings.Join(palette.Names(), ", ")},
		kong.Configuration(kong.JSON, "./pixelart.json", "~/.config/pixelart/config.json"),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)

	setupLogging(os.Stderr, cli.Verbose, cli.LogFormat)
	slog.Debug("running", "command", kctx.Command(), "workers", cli.Workers)

	pool := parallel.Start(cli.Workers)
	err := kctx.Run(parallel.WorkerFunc(pool.Do), parallel.WaitFunc(pool.Wait), kctx.Selected().Name)
	pool.Cancel()
	kctx.FatalIfErrorf(errors.Join(err, pool.Err()))
}
