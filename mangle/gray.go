package mangle

import (
	"pixelart/parallel"
	"pixelart/rgb"
)

// Luma is round(0.299*R + 0.587*G + 0.114*B), computed exactly in
// thousandths.
func Luma(c rgb.Color) uint8 {
	return uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B) + 500) / 1000)
}

// Grayscale replaces every pixel with its BT.601 luma on all three channels.
func Grayscale(img *rgb.Image) (*rgb.Image, error) {
	if err := checkDimensions(img.Width(), img.Height()); err != nil {
		return nil, err
	}

	dst := rgb.NewImage(img.Width(), img.Height())

	parallel.Rows(img.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			srow, drow := img.Row(y), dst.Row(y)
			for i := 0; i < len(srow); i += 3 {
				l := Luma(rgb.Color{R: srow[i], G: srow[i+1], B: srow[i+2]})
				drow[i], drow[i+1], drow[i+2] = l, l, l
			}
		}
	})

	return dst, nil
}
