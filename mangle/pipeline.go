package mangle

import (
	"image"

	"pixelart/palette"
	"pixelart/rgb"
)

type DownsampleParams struct {
	Factor int
	Filter Filter
}

type ToneParams struct {
	Brightness float64
	Contrast   float64
}

// Params selects the pipeline stages. A nil field skips its stage; the tone
// stage is also skipped when both of its values are zero. A non-nil but
// empty Palette is rejected.
type Params struct {
	Downsample *DownsampleParams
	Grayscale  bool
	Tone       *ToneParams
	Palette    palette.Palette
}

// Stage is one step of the pipeline.
type Stage interface {
	Name() string
	Apply(*rgb.Image) (*rgb.Image, error)
}

type stageFunc struct {
	name string
	fn   func(*rgb.Image) (*rgb.Image, error)
}

func (s stageFunc) Name() string                             { return s.name }
func (s stageFunc) Apply(img *rgb.Image) (*rgb.Image, error) { return s.fn(img) }

func (p Params) toneEnabled() bool {
	return p.Tone != nil && (p.Tone.Brightness != 0 || p.Tone.Contrast != 0)
}

// Check validates the parameters that do not depend on the image.
func (p Params) Check() error {
	if p.Downsample != nil {
		if p.Downsample.Factor < 1 {
			return invalidParam("downsample factor", p.Downsample.Factor, "must be at least 1")
		}
		if !p.Downsample.Filter.valid() {
			return invalidParam("resample filter", p.Downsample.Filter, "unsupported filter")
		}
	}
	if p.Tone != nil {
		if err := checkTone(p.Tone.Brightness, p.Tone.Contrast); err != nil {
			return err
		}
	}
	if p.Palette != nil {
		if err := checkPalette(p.Palette); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks p against a width x height source, so that Run fails
// before any stage has produced output.
func (p Params) Validate(width, height int) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}
	if err := p.Check(); err != nil {
		return err
	}
	if p.Downsample != nil {
		return checkDownsample(width, height, p.Downsample.Factor, p.Downsample.Filter)
	}
	return nil
}

// Stages returns the enabled stages in their fixed order: downsample,
// grayscale, tone, quantize.
func (p Params) Stages() []Stage {
	var stages []Stage

	if p.Downsample != nil {
		d := *p.Downsample
		stages = append(stages, stageFunc{"downsample", func(img *rgb.Image) (*rgb.Image, error) {
			return Downsample(img, d.Factor, d.Filter)
		}})
	}
	if p.Grayscale {
		stages = append(stages, stageFunc{"grayscale", func(img *rgb.Image) (*rgb.Image, error) {
			return Grayscale(img)
		}})
	}
	if p.toneEnabled() {
		t := *p.Tone
		stages = append(stages, stageFunc{"tone", func(img *rgb.Image) (*rgb.Image, error) {
			return AdjustTone(img, t.Brightness, t.Contrast)
		}})
	}
	if p.Palette != nil {
		pal := p.Palette
		stages = append(stages, stageFunc{"quantize", func(img *rgb.Image) (*rgb.Image, error) {
			return Quantize(img, pal)
		}})
	}

	return stages
}

// Run validates p and applies its stages to img. The result never shares
// pixels with img, even when every stage is skipped.
func Run(img *rgb.Image, p Params) (*rgb.Image, error) {
	if err := p.Validate(img.Width(), img.Height()); err != nil {
		return nil, err
	}

	out := img
	for _, s := range p.Stages() {
		var err error
		if out, err = s.Apply(out); err != nil {
			return nil, err
		}
	}

	if out == img {
		out = img.Clone()
	}
	return out, nil
}

// RunImage converts a decoded image, dropping alpha, and runs p on it.
func RunImage(img image.Image, p Params) (*rgb.Image, error) {
	b := img.Bounds()
	if err := p.Validate(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	return Run(rgb.FromImage(img), p)
}
