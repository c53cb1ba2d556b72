package mangle

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"pixelart/palette"
	"pixelart/parallel"
	"pixelart/rgb"
)

func writePNG(t *testing.T, name string, img image.Image) {
	t.Helper()
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func readImage(t *testing.T, name string) image.Image {
	t.Helper()
	img, _, err := decode(name)
	if err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return img
}

func newCmd(scan string) *CLICmd {
	return &CLICmd{
		Scan:    scan,
		Dest:    "converted",
		Suffix:  "_converted",
		Filter:  Bicubic,
		Upscale: 1,
		Format:  "png",
	}
}

func TestConvertFolder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), gradient(16, 8))
	writePNG(t, filepath.Join(dir, "b.png"), uniform(6, 6, rgb.Color{R: 200, G: 200, B: 200}))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newCmd(dir)
	c.Downsample = 2
	c.Filter = Nearest
	c.Palette = "bw"
	if err := c.Validate(nil); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	pool := parallel.Start(2)
	if err := c.Run(pool.Do, pool.Wait); err == nil {
		t.Fatal("Run reported no error for the undecodable file")
	}

	bw, _ := palette.Builtin("bw")
	for _, tc := range []struct {
		name string
		w, h int
	}{
		{"a_converted.png", 8, 4},
		{"b_converted.png", 3, 3},
	} {
		img := readImage(t, filepath.Join(dir, "converted", tc.name))
		b := img.Bounds()
		if b.Dx() != tc.w || b.Dy() != tc.h {
			t.Errorf("%s: got %dx%d, want %dx%d", tc.name, b.Dx(), b.Dy(), tc.w, tc.h)
		}
		out := rgb.FromImage(img)
		for i := 0; i < len(out.Pix); i += 3 {
			c := rgb.Color{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2]}
			if bw.Index(c) < 0 || bw.Convert(c) != c {
				t.Fatalf("%s: color %v is not in the palette", tc.name, c)
			}
		}
	}
}

func TestConvertRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	writePNG(t, src, gradient(4, 4))

	c := newCmd(src)
	if err := c.Validate(nil); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c.Dest != filepath.Join(dir, "converted") {
		t.Fatalf("got dest %q", c.Dest)
	}

	pool := parallel.Start(1)
	if err := c.Run(pool.Do, pool.Wait); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := c.Run(pool.Do, pool.Wait); err == nil {
		t.Fatal("second run overwrote the destination")
	}

	c.Force = true
	c.Grayscale = true
	if err := c.Run(pool.Do, pool.Wait); err != nil {
		t.Fatalf("forced run failed: %v", err)
	}
	out := rgb.FromImage(readImage(t, filepath.Join(dir, "converted", "in_converted.png")))
	if px := out.RGBAt(3, 0); px.R != px.G || px.G != px.B {
		t.Errorf("forced run did not rewrite the file: %v", px)
	}
}

func TestConvertValidate(t *testing.T) {
	dir := t.TempDir()

	for _, tc := range []struct {
		name string
		edit func(*CLICmd)
	}{
		{"missing scan", func(c *CLICmd) { c.Scan = filepath.Join(dir, "missing") }},
		{"negative downsample", func(c *CLICmd) { c.Downsample = -1 }},
		{"zero upscale", func(c *CLICmd) { c.Upscale = 0 }},
		{"brightness", func(c *CLICmd) { c.Brightness = 1.5 }},
		{"contrast", func(c *CLICmd) { c.Contrast = -2 }},
		{"palette", func(c *CLICmd) { c.Palette = "not-a-palette" }},
		{"overwrite sources", func(c *CLICmd) { c.Suffix = ""; c.Dest = "." }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newCmd(dir)
			tc.edit(c)
			if err := c.Validate(nil); err == nil {
				t.Error("Validate accepted invalid options")
			}
		})
	}

	c := newCmd(dir)
	c.Palette = "kmeans:4"
	if err := c.Validate(nil); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if c.PaletteSpec == nil || !c.PaletteSpec.PerImage() {
		t.Error("kmeans palette not parsed as per-image")
	}
}

func TestDestName(t *testing.T) {
	for _, tc := range []struct {
		format, src, imgType, want string
	}{
		{"png", "photo.jpeg", "jpeg", "photo_x.png"},
		{"same", "photo.jpeg", "jpeg", "photo_x.jpg"},
		{"same", "scan.tif", "tiff", "scan_x.tiff"},
		{"same", "pic.webp", "webp", "pic_x.png"},
		{"gif", "archive.tar.bmp", "bmp", "archive.tar_x.gif"},
	} {
		c := &CLICmd{Format: tc.format, Suffix: "_x"}
		got, err := c.destName(tc.src, tc.imgType)
		if err != nil || got != tc.want {
			t.Errorf("destName(%q, %q) with %s = %q, %v; want %q", tc.src, tc.imgType, tc.format, got, err, tc.want)
		}
	}

	if _, err := (&CLICmd{Format: "png"}).destName(".png", "png"); err == nil {
		t.Error("destName accepted a name without a stem")
	}
}

func TestCheckDest(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "exists.png")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := checkDest(filepath.Join(dir, "new.png"), false); err != nil {
		t.Errorf("new file: %v", err)
	}
	if err := checkDest(file, false); err == nil {
		t.Error("existing file accepted without force")
	}
	if err := checkDest(file, true); err != nil {
		t.Errorf("existing file with force: %v", err)
	}
	if err := checkDest(dir, true); err == nil {
		t.Error("directory accepted as destination")
	}
}

func TestUpscale(t *testing.T) {
	src := gradient(3, 2)
	out := upscale(src, 4)
	if b := out.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
		t.Fatalf("got %v", b)
	}
	for y := range 8 {
		for x := range 12 {
			want := src.RGBAt(x/4, y/4)
			got := out.RGBAAt(x, y)
			if got != (color.RGBA{R: want.R, G: want.G, B: want.B, A: 255}) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSaveGIFKeepsPalette(t *testing.T) {
	dir := t.TempDir()
	pal, _ := palette.Builtin("gameboy")
	img, err := Quantize(gradient(10, 10), pal)
	if err != nil {
		t.Fatal(err)
	}

	if err := save(img, pal, "gif", dir, "out.gif"); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "out.gif"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	g, err := gif.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	got := rgb.FromImage(g)
	for y := range 10 {
		for x := range 10 {
			if got.RGBAt(x, y) != img.RGBAt(x, y) {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got.RGBAt(x, y), img.RGBAt(x, y))
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}

func TestSaveFormats(t *testing.T) {
	dir := t.TempDir()
	img := gradient(5, 4)
	for _, format := range []string{"png", "bmp", "tiff", "jpeg"} {
		name := "out." + format
		if err := save(img, nil, format, dir, name); err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		got := readImage(t, filepath.Join(dir, name))
		if got.Bounds().Dx() != 5 || got.Bounds().Dy() != 4 {
			t.Errorf("%s: got bounds %v", format, got.Bounds())
		}
	}

	if err := save(img, nil, "xcf", dir, "out.xcf"); err == nil {
		t.Error("unsupported format accepted")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.xcf")); err == nil {
		t.Error("unsupported format left a file behind")
	}
}
