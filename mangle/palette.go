package mangle

import (
	"pixelart/palette"
	"pixelart/parallel"
	"pixelart/rgb"
)

func checkPalette(pal palette.Palette) error {
	if len(pal) == 0 {
		return invalidParam("palette", "[]", "needs at least one color")
	}
	return nil
}

// Quantize replaces every pixel with the nearest palette entry. Ties go to
// the entry listed first.
func Quantize(img *rgb.Image, pal palette.Palette) (*rgb.Image, error) {
	if err := checkDimensions(img.Width(), img.Height()); err != nil {
		return nil, err
	}
	if err := checkPalette(pal); err != nil {
		return nil, err
	}

	dst := rgb.NewImage(img.Width(), img.Height())
	parallel.Rows(img.Height(), func(start, end int) {
		seen := make(map[rgb.Color]rgb.Color)
		for y := start; y < end; y++ {
			srow, drow := img.Row(y), dst.Row(y)
			for i := 0; i < len(srow); i += 3 {
				c := rgb.Color{R: srow[i], G: srow[i+1], B: srow[i+2]}
				q, ok := seen[c]
				if !ok {
					q = pal.Convert(c)
					seen[c] = q
				}
				drow[i], drow[i+1], drow[i+2] = q.R, q.G, q.B
			}
		}
	})

	return dst, nil
}
