package palette

import (
	"fmt"
	"slices"
	"strings"

	"pixelart/rgb"
)

var builtins = map[string]Palette{
	"bw":    mustHex("#000000 #ffffff"),
	"rgb8":  mustHex("#000000 #0000ff #00ff00 #00ffff #ff0000 #ff00ff #ffff00 #ffffff"),
	"gray4": mustHex("#000000 #555555 #aaaaaa #ffffff"),
	"gray16": mustHex(`#000000 #111111 #222222 #333333 #444444 #555555 #666666 #777777
		#888888 #999999 #aaaaaa #bbbbbb #cccccc #dddddd #eeeeee #ffffff`),
	"gameboy":  mustHex("#0f380f #306230 #8bac0f #9bbc0f"),
	"spectra6": mustHex("#000000 #ffffff #ffff00 #ff0000 #0000ff #00ff00"),
	"pico8": mustHex(`#000000 #1d2b53 #7e2553 #008751 #ab5236 #5f574f #c2c3c7 #fff1e8
		#ff004d #ffa300 #ffec27 #00e436 #29adff #83769c #ff77a8 #ffccaa`),
	"vga16": mustHex(`#000000 #0000aa #00aa00 #00aaaa #aa0000 #aa00aa #aa5500 #aaaaaa
		#555555 #5555ff #55ff55 #55ffff #ff5555 #ff55ff #ffff55 #ffffff`),
	"websafe": websafe(),
}

// Builtin returns a copy of the named palette.
func Builtin(name string) (Palette, bool) {
	p, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return slices.Clone(p), true
}

// Names lists the builtin palettes in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func mustHex(s string) Palette {
	p, err := ParseHex(s)
	if err != nil {
		panic(fmt.Sprintf("bad builtin palette: %v", err))
	}
	return p
}

// websafe is the 6x6x6 color cube.
func websafe() Palette {
	p := make(Palette, 0, 216)
	for r := range 6 {
		for g := range 6 {
			for b := range 6 {
				p = append(p, rgb.Color{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51)})
			}
		}
	}
	return p
}
