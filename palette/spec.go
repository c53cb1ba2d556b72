package palette

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Spec describes where a palette comes from. Static specs (builtin names,
// RIFF files and hex lists) resolve once; extraction specs need the image
// being converted.
type Spec struct {
	Raw     string
	static  Palette
	method  Method
	extract int
}

// ParseSpec accepts a builtin name, a path to a RIFF .pal file, a hex list
// such as "#000,#fff", or "kmeans:N" / "dominant:N".
func ParseSpec(s string) (*Spec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty palette")
	}

	if name, count, ok := strings.Cut(s, ":"); ok {
		if m, err := ParseMethod(name); err == nil {
			n, err := strconv.Atoi(count)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid color count in palette %q", s)
			}
			return &Spec{Raw: s, method: m, extract: n}, nil
		}
	}

	if p, ok := Builtin(s); ok {
		return &Spec{Raw: s, static: p}, nil
	}

	if strings.EqualFold(filepath.Ext(s), ".pal") {
		p, err := LoadFile(s)
		if err != nil {
			return nil, err
		}
		return &Spec{Raw: s, static: p}, nil
	}

	p, err := ParseHex(s)
	if err != nil {
		return nil, fmt.Errorf("palette %q is neither a builtin name, a .pal file nor a color list: %w", s, err)
	}
	return &Spec{Raw: s, static: p}, nil
}

// PerImage reports whether Resolve depends on its image argument.
func (s *Spec) PerImage() bool {
	return s.extract > 0
}

// Resolve returns the palette to use for img. img may be nil for static
// specs.
func (s *Spec) Resolve(img image.Image) (Palette, error) {
	if !s.PerImage() {
		return s.static, nil
	}
	if img == nil {
		return nil, fmt.Errorf("palette %q needs an image to extract colors from", s.Raw)
	}
	return Extract(img, s.extract, s.method)
}

func (s *Spec) String() string {
	return s.Raw
}

// LoadFile reads a RIFF .pal file.
func LoadFile(name string) (Palette, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open palette file %q: %w", name, err)
	}
	defer f.Close()

	p, err := ReadRIFFMerged(f)
	if err != nil {
		return nil, fmt.Errorf("could not load palette file %q: %w", name, err)
	}
	return p, nil
}

// SaveFile writes p to name as a RIFF .pal file.
func SaveFile(name string, p Palette) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create palette file %q: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close palette file %q: %w", name, cerr)
		}
	}()

	if _, err = WriteRIFF(f, p); err != nil {
		return fmt.Errorf("could not save palette file %q: %w", name, err)
	}
	return nil
}
