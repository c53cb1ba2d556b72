package palette

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"
)

type CLICmd struct {
	List struct{} `cmd:"" help:"List builtin palettes"`
	Show struct {
		Spec string `arg:"" help:"Builtin name, RIFF .pal file or hex color list"`
	} `cmd:"" help:"Print the colors of a palette"`
	Export struct {
		Spec string `arg:"" help:"Builtin name, RIFF .pal file or hex color list"`
		File string `arg:"" help:"Destination RIFF .pal file" type:"path"`
	} `cmd:"" help:"Write a palette to a RIFF .pal file"`
	Extract struct {
		Image  string `arg:"" help:"Image to extract colors from" type:"existingfile"`
		Colors int    `help:"Number of colors" default:"8"`
		Method string `help:"Extraction method" enum:"kmeans,dominant" default:"dominant"`
		Out    string `help:"Also write the palette to this RIFF .pal file" type:"path"`
	} `cmd:"" help:"Derive a palette from an image"`
}

func (c *CLICmd) Run(subCmd string, stdout io.Writer) error {
	switch subCmd {
	case "list":
		return c.list(stdout)
	case "show":
		p, err := staticSpec(c.Show.Spec)
		if err != nil {
			return err
		}
		return printPalette(stdout, p)
	case "export":
		p, err := staticSpec(c.Export.Spec)
		if err != nil {
			return err
		}
		if err := SaveFile(c.Export.File, p); err != nil {
			return err
		}
		slog.Info("exported palette", "palette", c.Export.Spec, "colors", len(p), "file", c.Export.File)
		return nil
	case "extract":
		return c.extract(stdout)
	}
	return fmt.Errorf("unsupported palette command %q", subCmd)
}

func (c *CLICmd) list(w io.Writer) error {
	for _, name := range Names() {
		p, _ := Builtin(name)
		if _, err := fmt.Fprintf(w, "%-10s %3d colors\n", name, len(p)); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLICmd) extract(w io.Writer) error {
	m, err := ParseMethod(c.Extract.Method)
	if err != nil {
		return err
	}

	f, err := os.Open(c.Extract.Image)
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}
	img, _, err := image.Decode(f)
	if closeErr := f.Close(); closeErr != nil {
		slog.Error("could not close image", "file", c.Extract.Image, "error", closeErr)
	}
	if err != nil {
		return fmt.Errorf("could not decode image %q: %w", c.Extract.Image, err)
	}

	p, err := Extract(img, c.Extract.Colors, m)
	if err != nil {
		return err
	}
	slog.Debug("extracted palette", "file", c.Extract.Image, "method", m, "colors", len(p))

	if c.Extract.Out != "" {
		if err := SaveFile(c.Extract.Out, p); err != nil {
			return err
		}
	}
	return printPalette(w, p)
}

func staticSpec(s string) (Palette, error) {
	spec, err := ParseSpec(s)
	if err != nil {
		return nil, err
	}
	if spec.PerImage() {
		return nil, fmt.Errorf("palette %q is extracted per image, use the extract command", s)
	}
	return spec.Resolve(nil)
}

func printPalette(w io.Writer, p Palette) error {
	_, err := fmt.Fprintln(w, strings.Join(p.Hex(), "\n"))
	return err
}
