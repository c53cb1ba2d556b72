package palette

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"pixelart/rgb"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered list of colors. Duplicates are allowed; when two
// entries are equally close to a color, the one with the lower index wins.
type Palette []rgb.Color

// Index returns the index of the entry closest to c by Euclidean RGB
// distance, or -1 for an empty palette. Squared distances are compared with
// a strict less-than so the first of several tied entries is kept.
func (p Palette) Index(c rgb.Color) int {
	ret, bestSum := -1, math.MaxInt32
	for i, v := range p {
		dr := int32(c.R) - int32(v.R)
		dg := int32(c.G) - int32(v.G)
		db := int32(c.B) - int32(v.B)
		sum := int(dr*dr + dg*dg + db*db)
		if sum < bestSum {
			if sum == 0 {
				return i
			}
			ret, bestSum = i, sum
		}
	}
	return ret
}

// Convert returns the closest palette entry to c.
func (p Palette) Convert(c rgb.Color) rgb.Color {
	if len(p) == 0 {
		return rgb.Color{}
	}
	return p[p.Index(c)]
}

// ColorPalette returns p as a standard library palette, usable with
// image.NewPaletted and the GIF encoder.
func (p Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, len(p))
	for i, c := range p {
		pal[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	return pal
}

// Hex renders every entry as #rrggbb.
func (p Palette) Hex() []string {
	res := make([]string, len(p))
	for i, c := range p {
		res[i] = toColorful(c).Hex()
	}
	return res
}

func (p Palette) String() string {
	return strings.Join(p.Hex(), ",")
}

// ParseHex reads a comma or whitespace separated list of #rgb / #rrggbb
// colors.
func ParseHex(s string) (Palette, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == ';'
	})

	p := make(Palette, 0, len(fields))
	for i, f := range fields {
		if !strings.HasPrefix(f, "#") {
			f = "#" + f
		}
		c, err := colorful.Hex(f)
		if err != nil {
			return nil, fmt.Errorf("could not read color %d %q: %w", i, f, err)
		}
		p = append(p, fromColorful(c))
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("no colors in %q", s)
	}

	return p, nil
}

func toColorful(c rgb.Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

func fromColorful(c colorful.Color) rgb.Color {
	r, g, b := c.Clamped().RGB255()
	return rgb.Color{R: r, G: g, B: b}
}
