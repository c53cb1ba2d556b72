package mangle

import (
	"math"

	"pixelart/parallel"
	"pixelart/rgb"
)

// truncEpsilon absorbs representation error before truncating, so that
// v/255*255 maps back onto v.
const truncEpsilon = 1e-9

func checkTone(brightness, contrast float64) error {
	if !(brightness >= -1 && brightness <= 1) {
		return invalidParam("brightness", brightness, "must be within [-1, 1]")
	}
	if !(contrast >= -1 && contrast <= 1) {
		return invalidParam("contrast", contrast, "must be within [-1, 1]")
	}
	return nil
}

// ToneCurve maps one normalized sample through the brightness curve and
// then the contrast curve. At contrast 1 the curve is a hard threshold
// around 0.5.
func ToneCurve(v, brightness, contrast float64) float64 {
	switch {
	case brightness < 0:
		v *= 1 + 0.5*brightness
	case brightness > 0:
		v += (1 - v) * 0.5 * brightness
	}

	switch {
	case contrast == 1:
		if v < 0.5 {
			v = 0
		} else if v > 0.5 {
			v = 1
		}
	case contrast != 0:
		v = (v-0.5)*math.Tan(0.25*(1+contrast)*math.Pi) + 0.5
	}

	return min(max(v, 0), 1)
}

func toneTable(brightness, contrast float64) *[256]uint8 {
	var lut [256]uint8
	for i := range lut {
		v := ToneCurve(float64(i)/255, brightness, contrast)
		lut[i] = uint8(math.Floor(v*255 + truncEpsilon))
	}
	return &lut
}

// AdjustTone remaps every channel through the brightness and contrast
// curves. Both values must be within [-1, 1]; zero leaves a curve out.
func AdjustTone(img *rgb.Image, brightness, contrast float64) (*rgb.Image, error) {
	if err := checkDimensions(img.Width(), img.Height()); err != nil {
		return nil, err
	}
	if err := checkTone(brightness, contrast); err != nil {
		return nil, err
	}
	if brightness == 0 && contrast == 0 {
		return img.Clone(), nil
	}

	lut := toneTable(brightness, contrast)
	dst := rgb.NewImage(img.Width(), img.Height())
	parallel.Rows(img.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			srow, drow := img.Row(y), dst.Row(y)
			for i, s := range srow {
				drow[i] = lut[s]
			}
		}
	})

	return dst, nil
}
