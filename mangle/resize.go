package mangle

import (
	"fmt"
	"math"
	"strings"

	"pixelart/parallel"
	"pixelart/rgb"
)

type Filter int

const (
	Nearest Filter = iota
	Bicubic
)

type resampler func(src *rgb.Image, width, height, factor int) *rgb.Image

var resamplers = [...]resampler{
	Nearest: resampleNearest,
	Bicubic: cubic{B: 0, C: 0.5}.resample,
}

func (f Filter) String() string {
	switch f {
	case Nearest:
		return "nearest"
	case Bicubic:
		return "bicubic"
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

func (f Filter) valid() bool {
	return f >= 0 && int(f) < len(resamplers)
}

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest":
		return Nearest, nil
	case "bicubic":
		return Bicubic, nil
	}
	return 0, fmt.Errorf("unknown resampling filter %q", s)
}

func (f *Filter) UnmarshalText(text []byte) error {
	v, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func (f Filter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// DownsampleSize returns the output size for factor, truncating.
func DownsampleSize(width, height, factor int) (int, int) {
	return width / factor, height / factor
}

func checkDownsample(width, height, factor int, filter Filter) error {
	if factor < 1 {
		return invalidParam("downsample factor", factor, "must be at least 1")
	}
	if !filter.valid() {
		return invalidParam("resample filter", filter, "unsupported filter")
	}
	if w, h := DownsampleSize(width, height, factor); w == 0 || h == 0 {
		return invalidParam("downsample factor", factor,
			fmt.Sprintf("shrinks %dx%d to an empty %dx%d image", width, height, w, h))
	}
	return nil
}

// Downsample shrinks img by an integer factor. Output pixel (dx, dy) is
// centred on source coordinate ((dx+0.5)*factor-0.5, (dy+0.5)*factor-0.5).
// A factor that would leave no rows or columns is rejected.
func Downsample(img *rgb.Image, factor int, filter Filter) (*rgb.Image, error) {
	if err := checkDimensions(img.Width(), img.Height()); err != nil {
		return nil, err
	}
	if err := checkDownsample(img.Width(), img.Height(), factor, filter); err != nil {
		return nil, err
	}

	w, h := DownsampleSize(img.Width(), img.Height(), factor)
	return resamplers[filter](img, w, h, factor), nil
}

// nearestIndex is round((i+0.5)*factor-0.5) with halves going down.
func nearestIndex(i, factor int) int {
	return i*factor + (factor-1)/2
}

func resampleNearest(src *rgb.Image, width, height, factor int) *rgb.Image {
	dst := rgb.NewImage(width, height)

	xs := make([]int, width)
	for dx := range xs {
		xs[dx] = nearestIndex(dx, factor) * 3
	}

	parallel.Rows(height, func(start, end int) {
		for dy := start; dy < end; dy++ {
			srow := src.Row(nearestIndex(dy, factor))
			drow := dst.Row(dy)
			for dx, sx := range xs {
				copy(drow[dx*3:dx*3+3], srow[sx:sx+3])
			}
		}
	})

	return dst
}

// cubic is the Mitchell-Netravali family of cubic kernels. B=0, C=0.5 is
// Catmull-Rom.
type cubic struct {
	B, C float64
}

func (k cubic) at(x float64) float64 {
	x = math.Abs(x)
	switch {
	case x < 1:
		return ((12-9*k.B-6*k.C)*x*x*x + (-18+12*k.B+6*k.C)*x*x + (6 - 2*k.B)) / 6
	case x < 2:
		return ((-k.B-6*k.C)*x*x*x + (6*k.B+30*k.C)*x*x + (-12*k.B-48*k.C)*x + (8*k.B + 24*k.C)) / 6
	}
	return 0
}

// taps holds the four source indices and weights feeding one output index.
type taps struct {
	idx [4]int
	w   [4]float64
}

func (k cubic) taps(n, srcLen, factor int) []taps {
	res := make([]taps, n)
	for i := range res {
		s := (float64(i)+0.5)*float64(factor) - 0.5
		base := math.Floor(s)
		t := s - base

		var sum float64
		for j := range 4 {
			res[i].idx[j] = min(max(int(base)+j-1, 0), srcLen-1)
			res[i].w[j] = k.at(t - float64(j-1))
			sum += res[i].w[j]
		}
		if sum != 0 && sum != 1 {
			for j := range 4 {
				res[i].w[j] /= sum
			}
		}
	}
	return res
}

func (k cubic) resample(src *rgb.Image, width, height, factor int) *rgb.Image {
	xt := k.taps(width, src.Width(), factor)
	yt := k.taps(height, src.Height(), factor)

	// horizontal pass over every source row, kept in float64 until the end
	tmp := make([]float64, src.Height()*width*3)
	parallel.Rows(src.Height(), func(start, end int) {
		for y := start; y < end; y++ {
			srow := src.Row(y)
			trow := tmp[y*width*3 : (y+1)*width*3]
			for dx, tp := range xt {
				for c := range 3 {
					var v float64
					for j := range 4 {
						v += tp.w[j] * float64(srow[tp.idx[j]*3+c])
					}
					trow[dx*3+c] = v
				}
			}
		}
	})

	dst := rgb.NewImage(width, height)
	parallel.Rows(height, func(start, end int) {
		for dy := start; dy < end; dy++ {
			tp := yt[dy]
			drow := dst.Row(dy)
			for i := range drow {
				var v float64
				for j := range 4 {
					v += tp.w[j] * tmp[tp.idx[j]*width*3+i]
				}
				drow[i] = clampUint8(math.Round(v))
			}
		}
	})

	return dst
}

func clampUint8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
