package mangle

import (
	"pixelart/palette"
	"pixelart/rgb"

	"gonum.org/v1/gonum/stat"
)

// LumaStats returns the mean and standard deviation of the image luma.
func LumaStats(img *rgb.Image) (mean, stdDev float64) {
	lumas := make([]float64, 0, img.Width()*img.Height())
	for y := range img.Height() {
		row := img.Row(y)
		for i := 0; i < len(row); i += 3 {
			lumas = append(lumas, float64(Luma(rgb.Color{R: row[i], G: row[i+1], B: row[i+2]})))
		}
	}
	if len(lumas) < 2 {
		return stat.Mean(lumas, nil), 0
	}
	return stat.MeanStdDev(lumas, nil)
}

// PaletteUsage returns, for every palette entry, the share of pixels of img
// that equal it, and the Shannon entropy of that distribution in nats.
func PaletteUsage(img *rgb.Image, pal palette.Palette) ([]float64, float64) {
	usage := make([]float64, len(pal))
	total := img.Width() * img.Height()
	if len(pal) == 0 || total == 0 {
		return usage, 0
	}

	index := make(map[rgb.Color]int, len(pal))
	for i := len(pal) - 1; i >= 0; i-- {
		index[pal[i]] = i
	}
	for y := range img.Height() {
		row := img.Row(y)
		for i := 0; i < len(row); i += 3 {
			if j, ok := index[rgb.Color{R: row[i], G: row[i+1], B: row[i+2]}]; ok {
				usage[j]++
			}
		}
	}
	for i := range usage {
		usage[i] /= float64(total)
	}

	return usage, stat.Entropy(usage)
}
