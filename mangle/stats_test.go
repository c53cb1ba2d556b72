package mangle

import (
	"math"
	"testing"

	"pixelart/palette"
	"pixelart/rgb"
)

func TestLumaStats(t *testing.T) {
	mean, std := LumaStats(uniform(4, 4, rgb.Color{128, 128, 128}))
	if mean != 128 || std != 0 {
		t.Errorf("uniform: got %v ± %v, want 128 ± 0", mean, std)
	}

	img := rgb.NewImage(2, 1)
	img.SetRGB(1, 0, rgb.Color{255, 255, 255})
	mean, std = LumaStats(img)
	if mean != 127.5 {
		t.Errorf("got mean %v, want 127.5", mean)
	}
	// sample standard deviation of {0, 255}
	if want := 255 / math.Sqrt2; math.Abs(std-want) > 1e-9 {
		t.Errorf("got std %v, want %v", std, want)
	}
}

func TestPaletteUsage(t *testing.T) {
	pal := palette.Palette{{0, 0, 0}, {255, 255, 255}, {0, 0, 0}}
	img := rgb.NewImage(4, 1)
	img.SetRGB(3, 0, rgb.Color{255, 255, 255})

	usage, entropy := PaletteUsage(img, pal)
	if usage[0] != 0.75 || usage[1] != 0.25 || usage[2] != 0 {
		t.Errorf("got usage %v, want [0.75 0.25 0]", usage)
	}
	want := -(0.75*math.Log(0.75) + 0.25*math.Log(0.25))
	if math.Abs(entropy-want) > 1e-12 {
		t.Errorf("got entropy %v, want %v", entropy, want)
	}
}
