package mangle

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"pixelart/palette"
	"pixelart/parallel"
	"pixelart/rgb"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Scan       string  `help:"Source folder to scan, or a single image file" default:"."`
	Dest       string  `help:"Destination folder for converted pictures. Relative to the scan folder if not absolute." default:"converted"`
	Suffix     string  `help:"Suffix added to converted file names" default:"_converted"`
	Force      bool    `help:"Overwrite existing destination files" default:"false"`
	Downsample int     `help:"Integer downsampling factor, 0 keeps the resolution" default:"0" group:"downsample"`
	Filter     Filter  `help:"Resampling filter: nearest or bicubic" default:"bicubic" group:"downsample"`
	Grayscale  bool    `help:"Collapse colors to their luma" default:"false" group:"tone"`
	Brightness float64 `help:"Brightness adjustment in [-1, 1]" default:"0" group:"tone"`
	Contrast   float64 `help:"Contrast adjustment in [-1, 1]" default:"0" group:"tone"`
	Palette    string  `help:"Palette to map colors to: builtin name (${palettes}), RIFF .pal file, hex color list, kmeans:N or dominant:N" env:"PIXELART_PALETTE" group:"palette"`
	Upscale    int     `help:"Enlarge the result by this factor with nearest neighbour sampling" default:"1" group:"output"`
	Format     string  `help:"Output format of converted images. 'same' keeps the source format when it can be encoded" enum:"same,png,gif,bmp,tiff,jpeg" default:"png" group:"output"`

	PaletteSpec *palette.Spec `kong:"-"`
	single      bool          `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	scan, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		info, err = os.Stat(scan)
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scan
	c.single = !info.IsDir()

	base := scan
	if c.single {
		base = filepath.Dir(scan)
	}
	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(base, c.Dest)
	}

	if c.Downsample < 0 {
		return fmt.Errorf("invalid downsample factor: %d", c.Downsample)
	}
	if c.Upscale < 1 {
		return fmt.Errorf("invalid upscale factor: %d", c.Upscale)
	}

	if c.Palette != "" {
		if c.PaletteSpec, err = palette.ParseSpec(c.Palette); err != nil {
			return err
		}
	}

	if err := c.params(nil).Check(); err != nil {
		return err
	}
	if c.Suffix == "" && c.Dest == base {
		return fmt.Errorf("empty suffix with destination %q would overwrite the sources", c.Dest)
	}

	return nil
}

// params builds the pipeline parameters; pal is the resolved palette, nil
// when no palette was requested.
func (c *CLICmd) params(pal palette.Palette) Params {
	p := Params{
		Grayscale: c.Grayscale,
		Palette:   pal,
	}
	if c.Downsample > 0 {
		p.Downsample = &DownsampleParams{Factor: c.Downsample, Filter: c.Filter}
	}
	if c.Brightness != 0 || c.Contrast != 0 {
		p.Tone = &ToneParams{Brightness: c.Brightness, Contrast: c.Contrast}
	}
	return p
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	var names []string
	if c.single {
		names = []string{c.Scan}
	} else {
		files, err := os.ReadDir(c.Scan)
		if err != nil {
			return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			names = append(names, filepath.Join(c.Scan, file.Name()))
		}
	}

	var staticPal palette.Palette
	if c.PaletteSpec != nil && !c.PaletteSpec.PerImage() {
		var err error
		if staticPal, err = c.PaletteSpec.Resolve(nil); err != nil {
			return err
		}
	}

	var processedCount, errCount atomic.Uint64
	for _, name := range names {
		worker(func() {
			logger := slog.Default().With("file", name)
			if err := c.convert(logger, name, staticPal); err != nil {
				errCount.Add(1)
				logger.Error("could not convert image", "error", err)
				return
			}
			processedCount.Add(1)
		})
	}

	wait(true)

	processed := processedCount.Load()
	errors := errCount.Load()
	slog.Info("stats", "processed", processed, "errors", errors,
		"total", processed+errors)

	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}

func (c *CLICmd) convert(logger *slog.Logger, name string, pal palette.Palette) error {
	img, imgType, err := decode(name)
	if err != nil {
		return err
	}
	logger = logger.With("format", imgType)

	destName, err := c.destName(filepath.Base(name), imgType)
	if err != nil {
		return err
	}
	dest := filepath.Join(c.Dest, destName)
	if err := checkDest(dest, c.Force); err != nil {
		return err
	}

	if c.PaletteSpec != nil && c.PaletteSpec.PerImage() {
		if pal, err = c.PaletteSpec.Resolve(img); err != nil {
			return fmt.Errorf("could not build palette %s: %w", c.PaletteSpec, err)
		}
		logger.Info("extracted palette", "palette", c.PaletteSpec, "colors", pal.String())
	}

	p := c.params(pal)
	b := img.Bounds()
	if err := p.Validate(b.Dx(), b.Dy()); err != nil {
		return err
	}

	out := rgb.FromImage(img)
	for _, s := range p.Stages() {
		logger.Debug("applying stage", "stage", s.Name(), "width", out.Width(), "height", out.Height())
		if out, err = s.Apply(out); err != nil {
			return fmt.Errorf("stage %s failed: %w", s.Name(), err)
		}
	}

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		mean, std := LumaStats(out)
		attrs := []any{"width", out.Width(), "height", out.Height(), "luma_mean", mean, "luma_stddev", std}
		if pal != nil {
			usage, entropy := PaletteUsage(out, pal)
			attrs = append(attrs, "palette_usage", usage, "palette_entropy", entropy)
		}
		logger.Debug("converted", attrs...)
	}

	var res image.Image = out
	if c.Upscale > 1 {
		res = upscale(out, c.Upscale)
	}

	logger.Info("saving", "dest", dest)
	return save(res, pal, c.outFormat(imgType), c.Dest, destName)
}

// outFormat resolves "same" against the decoded source format, falling
// back to PNG for formats without an encoder.
func (c *CLICmd) outFormat(imgType string) string {
	if c.Format != "same" {
		return c.Format
	}
	switch imgType {
	case "png", "gif", "bmp", "tiff", "jpeg":
		return imgType
	}
	return "png"
}

func (c *CLICmd) destName(srcName, imgType string) (string, error) {
	format := c.outFormat(imgType)
	ext := format
	if format == "jpeg" {
		ext = "jpg"
	}

	stem := strings.TrimSuffix(srcName, filepath.Ext(srcName))
	if stem == "" {
		return "", fmt.Errorf("cannot derive a destination name from %q", srcName)
	}
	return fmt.Sprintf("%s%s.%s", stem, c.Suffix, ext), nil
}
