package minimaptext

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Weight selects how the prebaked glyph coverage is softened, mirroring the
// editor's normal and light minimap font weights.
type Weight int

const (
	WeightNormal Weight = iota
	WeightLight
)

func (w Weight) String() string {
	switch w {
	case WeightLight:
		return "light"
	default:
		return "normal"
	}
}

// ParseWeight accepts "normal" or "light" (case insensitive).
func ParseWeight(s string) (Weight, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return WeightNormal, nil
	case "light":
		return WeightLight, nil
	}
	return WeightNormal, fmt.Errorf("unknown font weight %q", s)
}

// Glyph is the coverage of one character inside its 1x2 minimap cell.
type Glyph struct {
	Char   byte
	Top    uint8
	Bottom uint8
}

// Template is an ordered glyph table. When two glyphs composite to the same
// pixel pair the later one wins.
type Template []Glyph

// prebaked holds the editor's 1x2 minimap glyph data for ASCII 32..127,
// two bytes (top, bottom) per character.
const prebaked = "" +
	"0000511D6300CF609C709645A78432005642574171487021003C451900274D35" +
	"D762755E8B629C5BA856AF57BA649530C167D1512A272A3F6038604460398526" +
	"BCA2A968DB6F8957C768BE5FBE2FB467CF5D8D5B795DC7625B5DFF50DE64C466" +
	"DB2FC47CD860A65E9A2EB96CB54CE06DA763AB2EA26860524D37635366010051" +
	"16008177A8705E53AB738E6A982F88BAA35B5F5B626D9C636B449B737E5B7B67" +
	"8598869A662F6B5B8542706C704C80736A607578685B70594A49715A4522E792"

const firstChar = 32

// NewTemplate scales the prebaked table for the given weight: 12/15 for
// normal and 50/60 for light, truncating like the renderer does.
func NewTemplate(w Weight) Template {
	raw, err := hex.DecodeString(prebaked)
	if err != nil {
		panic(err)
	}
	num, den := 12, 15
	if w == WeightLight {
		num, den = 50, 60
	}
	t := make(Template, len(raw)/2)
	for i := range t {
		t[i] = Glyph{
			Char:   byte(firstChar + i),
			Top:    uint8(int(raw[2*i]) * num / den),
			Bottom: uint8(int(raw[2*i+1]) * num / den),
		}
	}
	return t
}

// Glyph returns the last glyph rendering c.
func (t Template) Glyph(c byte) (Glyph, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Char == c {
			return t[i], true
		}
	}
	return Glyph{}, false
}

// composite blends fg over bg with coverage a and rounds to nearest. The
// numerator is never an odd multiple of 255/2, so there are no ties.
func composite(bg, fg, a uint8) uint8 {
	v := int(bg)*255 + (int(fg)-int(bg))*int(a)
	return uint8((2*v + 255) / 510)
}

// Render composites fg over bg with the glyph's coverage.
func (g Glyph) Render(bg, fg Color) PixelPair {
	return PixelPair{
		Top: Color{
			R: composite(bg.R, fg.R, g.Top),
			G: composite(bg.G, fg.G, g.Top),
			B: composite(bg.B, fg.B, g.Top),
		},
		Bottom: Color{
			R: composite(bg.R, fg.R, g.Bottom),
			G: composite(bg.G, fg.G, g.Bottom),
			B: composite(bg.B, fg.B, g.Bottom),
		},
	}
}
