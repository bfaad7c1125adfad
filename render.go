package minimaptext

import (
	"image"
	"image/color"
	"slices"
	"strings"
)

// Unknown marks cells without a resolved character.
var Unknown = Color{R: 128, G: 128, B: 128}

// Render turns the buffer back into text lines and a diagnostic image of the
// same size. Each cell of the image is painted in the color credited with
// it: the background for blanks and given-up pairs, Unknown for pairs no
// cluster covered.
func Render(b *Buffer, bg Color, res *Resolution) ([]string, *image.RGBA) {
	blank := Blank(bg)
	lines := make([]string, b.Lines())
	diag := image.NewRGBA(image.Rect(0, 0, b.W, b.H))
	var sb strings.Builder
	for line := range b.Lines() {
		sb.Reset()
		for x := range b.W {
			p := b.Pair(x, line)
			ch, fill := byte('?'), Unknown
			switch {
			case p == blank:
				ch, fill = ' ', bg
			case res.Resolved(p):
				ch, fill = res.Answer[p], res.Refer[p]
			default:
				if c, ok := res.Refer[p]; ok {
					fill = c
				}
			}
			sb.WriteByte(ch)
			rgba := color.RGBA{R: fill.R, G: fill.G, B: fill.B, A: 255}
			diag.SetRGBA(x, 2*line, rgba)
			diag.SetRGBA(x, 2*line+1, rgba)
		}
		lines[line] = strings.TrimRight(sb.String(), " ")
	}
	return lines, diag
}

func reconstruct(b *Buffer, bg Color, tmpl Template, res *Resolution) *Buffer {
	blank := Blank(bg)
	out := &Buffer{W: b.W, H: b.H, Pix: make([]uint8, len(b.Pix))}
	for line := range b.Lines() {
		for x := range b.W {
			p := b.Pair(x, line)
			cell := Blank(Unknown)
			if p == blank {
				cell = blank
			} else if ch, ok := res.Answer[p]; ok {
				if g, ok := tmpl.Glyph(ch); ok {
					cell = g.Render(bg, res.Refer[p])
				}
			}
			out.SetPair(x, line, cell)
		}
	}
	return out
}

// Reconstruct renders the recovered text in the credited colors. On a fully
// resolved image it reproduces the input pixel for pixel.
func Reconstruct(b *Buffer, bg Color, tmpl Template, res *Resolution) *image.RGBA {
	r := reconstruct(b, bg, tmpl, res)
	img := image.NewRGBA(image.Rect(0, 0, r.W, r.H))
	for y := range r.H {
		for x := range r.W {
			c := r.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

// Mismatches counts cells whose reconstruction differs from the input.
func Mismatches(b *Buffer, bg Color, tmpl Template, res *Resolution) int {
	r := reconstruct(b, bg, tmpl, res)
	n := 0
	for line := range b.Lines() {
		for x := range b.W {
			if r.Pair(x, line) != b.Pair(x, line) {
				n++
			}
		}
	}
	return n
}

// CellCounts counts the resolved cells drawn in each credited color.
func CellCounts(b *Buffer, bg Color, res *Resolution) map[Color]int {
	blank := Blank(bg)
	counts := make(map[Color]int)
	for line := range b.Lines() {
		for x := range b.W {
			p := b.Pair(x, line)
			if p != blank && res.Resolved(p) {
				counts[res.Refer[p]]++
			}
		}
	}
	return counts
}

// Layers returns one layer per credited foreground color, ordered by color.
// A layer pixel carries its color with the glyph coverage of the resolved
// character as alpha.
func Layers(b *Buffer, bg Color, tmpl Template, res *Resolution) ([]Color, []*image.NRGBA) {
	index := make(map[Color]int)
	var colors []Color
	for p, c := range res.Refer {
		if !res.Resolved(p) {
			continue
		}
		if _, ok := index[c]; !ok {
			index[c] = 0
			colors = append(colors, c)
		}
	}
	slices.SortFunc(colors, Color.Compare)
	layers := make([]*image.NRGBA, len(colors))
	for i, c := range colors {
		index[c] = i
		layers[i] = image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	}

	blank := Blank(bg)
	for line := range b.Lines() {
		for x := range b.W {
			p := b.Pair(x, line)
			if p == blank || !res.Resolved(p) {
				continue
			}
			g, ok := tmpl.Glyph(res.Answer[p])
			if !ok {
				continue
			}
			c := res.Refer[p]
			layer := layers[index[c]]
			layer.SetNRGBA(x, 2*line, color.NRGBA{R: c.R, G: c.G, B: c.B, A: g.Top})
			layer.SetNRGBA(x, 2*line+1, color.NRGBA{R: c.R, G: c.G, B: c.B, A: g.Bottom})
		}
	}
	return colors, layers
}
