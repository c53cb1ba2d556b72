package palette

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"pixelart/rgb"

	"github.com/cenkalti/dominantcolor"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

type Method int

const (
	MethodDominant Method = iota
	MethodKMeans
)

func (m Method) String() string {
	switch m {
	case MethodKMeans:
		return "kmeans"
	default:
		return "dominant"
	}
}

func ParseMethod(s string) (Method, error) {
	switch s {
	case "kmeans":
		return MethodKMeans, nil
	case "dominant":
		return MethodDominant, nil
	}
	return 0, fmt.Errorf("unknown extraction method %q", s)
}

// maxSamples bounds the number of pixels fed to k-means.
const maxSamples = 12000

// Extract derives a palette of at most k colors from img, most frequent
// colors first.
func Extract(img image.Image, k int, method Method) (Palette, error) {
	if k < 1 {
		return nil, fmt.Errorf("invalid number of colors: %d", k)
	}

	var p Palette
	switch method {
	case MethodKMeans:
		var err error
		if p, err = extractKMeans(img, k); err != nil {
			return nil, err
		}
	default:
		p = extractDominant(img, k)
	}

	if len(p) == 0 {
		return nil, fmt.Errorf("could not extract any color with method %s", method)
	}
	return p, nil
}

func extractDominant(img image.Image, k int) Palette {
	found := dominantcolor.FindWeight(img, k)
	slices.SortStableFunc(found, func(a, b dominantcolor.Color) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return 0
	})

	p := make(Palette, 0, len(found))
	for _, c := range found {
		p = append(p, rgb.Color{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B})
	}
	return p
}

func extractKMeans(img image.Image, k int) (Palette, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty image")
	}

	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			c := rgb.Model.Convert(img.At(x, y)).(rgb.Color)
			dataset = append(dataset, clusters.Coordinates{
				float64(c.R) / 255,
				float64(c.G) / 255,
				float64(c.B) / 255,
			})
		}
	}

	k = min(k, len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil {
		return nil, fmt.Errorf("could not partition %d samples: %w", len(dataset), err)
	}

	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	p := make(Palette, 0, len(cc))
	for _, c := range cc {
		if len(c.Observations) == 0 {
			continue
		}
		p = append(p, mean(c.Observations))
	}
	return p, nil
}

// mean averages the members of a cluster instead of trusting its center,
// which is left at its random seed when the first assignment is stable.
func mean(obs clusters.Observations) rgb.Color {
	var sum [3]float64
	for _, o := range obs {
		c := o.Coordinates()
		sum[0] += c[0]
		sum[1] += c[1]
		sum[2] += c[2]
	}
	n := float64(len(obs))
	return rgb.Model.Convert(color.RGBA64{
		R: unit16(sum[0] / n),
		G: unit16(sum[1] / n),
		B: unit16(sum[2] / n),
		A: 0xffff,
	}).(rgb.Color)
}

func unit16(v float64) uint16 {
	return uint16(math.Round(max(0, min(1, v)) * 0xffff))
}
