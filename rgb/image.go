package rgb

import (
	"image"
	"image/color"
)

// Color is an opaque 8-bit sRGB sample.
type Color struct {
	R, G, B uint8
}

func (c Color) RGBA() (uint32, uint32, uint32, uint32) {
	r, g, b := uint32(c.R), uint32(c.G), uint32(c.B)
	return r | r<<8, g | g<<8, b | b<<8, 0xffff
}

var Model = color.ModelFunc(rgbConvert)

// rgbConvert drops alpha without un-blending: colors that carry their
// non-premultiplied values keep them, everything else goes through NRGBA.
func rgbConvert(c color.Color) color.Color {
	switch col := c.(type) {
	case Color:
		return c
	case color.NRGBA:
		return Color{col.R, col.G, col.B}
	case color.NRGBA64:
		return Color{uint8(col.R >> 8), uint8(col.G >> 8), uint8(col.B >> 8)}
	}

	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B}
}

type Image struct {
	// Pix holds the image's pixels, in R, G, B order. The pixel at
	// (x, y) starts at Pix[y*Stride + x*3].
	Pix []uint8
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds. It is always anchored at (0, 0).
	Rect image.Rectangle
}

var _ image.Image = &Image{}

func NewImage(width, height int) *Image {
	return &Image{
		Pix:    make([]uint8, width*height*3),
		Stride: 3 * width,
		Rect:   image.Rect(0, 0, width, height),
	}
}

func (p *Image) Width() int  { return p.Rect.Dx() }
func (p *Image) Height() int { return p.Rect.Dy() }

func (p *Image) ColorModel() color.Model { return Model }

func (p *Image) Bounds() image.Rectangle { return p.Rect }

func (p *Image) At(x, y int) color.Color {
	return p.RGBAt(x, y)
}

func (p *Image) RGBAt(x, y int) Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return Color{}
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	return Color{s[0], s[1], s[2]}
}

func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB(x, y, Model.Convert(c).(Color))
}

func (p *Image) SetRGB(x, y int, c Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	s := p.Pix[i : i+3 : i+3]
	s[0], s[1], s[2] = c.R, c.G, c.B
}

func (p *Image) PixOffset(x, y int) int {
	return y*p.Stride + x*3
}

// Row returns the 3*width samples of row y.
func (p *Image) Row(y int) []uint8 {
	i := y * p.Stride
	return p.Pix[i : i+p.Stride : i+p.Stride]
}

func (p *Image) Clone() *Image {
	dst := &Image{
		Pix:    make([]uint8, len(p.Pix)),
		Stride: p.Stride,
		Rect:   p.Rect,
	}
	copy(dst.Pix, p.Pix)
	return dst
}

// FromImage copies img into a new Image anchored at (0, 0). Alpha is dropped,
// not blended: sources that store straight alpha keep their color values
// even when fully transparent.
func FromImage(img image.Image) *Image {
	if src, ok := img.(*Image); ok {
		return src.Clone()
	}

	b := img.Bounds()
	dst := NewImage(b.Dx(), b.Dy())
	switch src := img.(type) {
	case *image.NRGBA:
		for y := range b.Dy() {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := dst.Row(y)
			for x := range b.Dx() {
				row[x*3] = src.Pix[si]
				row[x*3+1] = src.Pix[si+1]
				row[x*3+2] = src.Pix[si+2]
				si += 4
			}
		}
	case *image.RGBA:
		for y := range b.Dy() {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			row := dst.Row(y)
			for x := range b.Dx() {
				c := rgbConvert(color.RGBA{src.Pix[si], src.Pix[si+1], src.Pix[si+2], src.Pix[si+3]}).(Color)
				row[x*3], row[x*3+1], row[x*3+2] = c.R, c.G, c.B
				si += 4
			}
		}
	default:
		for y := range b.Dy() {
			row := dst.Row(y)
			for x := range b.Dx() {
				c := rgbConvert(img.At(b.Min.X+x, b.Min.Y+y)).(Color)
				row[x*3], row[x*3+1], row[x*3+2] = c.R, c.G, c.B
			}
		}
	}

	return dst
}
