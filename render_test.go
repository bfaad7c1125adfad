package minimaptext

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	t.Parallel()
	bg := gray(30)
	known := PixelPair{Top: gray(149), Bottom: gray(30)}
	givenUp := PixelPair{Top: gray(40), Bottom: gray(20)}
	stray := PixelPair{Top: gray(90), Bottom: gray(90)}

	b := NewBuffer(5, 2)
	for line := range 2 {
		for x := range 5 {
			b.SetPair(x, line, Blank(bg))
		}
	}
	b.SetPair(1, 0, known)
	b.SetPair(2, 0, givenUp)
	b.SetPair(0, 1, stray)

	res := NewResolution()
	res.Record(GlyphMap{known: 'B'}, []PixelPair{known}, gray(220))
	res.giveUp([]PixelPair{givenUp}, bg)

	lines, diag := Render(b, bg, res)
	assert.Equal(t, []string{" B?", "?"}, lines)
	require.Equal(t, 5, diag.Bounds().Dx())
	require.Equal(t, 4, diag.Bounds().Dy())

	opaque := func(c Color) color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255} }
	assert.Equal(t, opaque(bg), diag.RGBAAt(0, 0))
	assert.Equal(t, opaque(gray(220)), diag.RGBAAt(1, 0))
	assert.Equal(t, opaque(gray(220)), diag.RGBAAt(1, 1))
	assert.Equal(t, opaque(bg), diag.RGBAAt(2, 1))
	assert.Equal(t, opaque(Unknown), diag.RGBAAt(0, 2))
	assert.Equal(t, opaque(Unknown), diag.RGBAAt(0, 3))
}

func TestReconstructAndLayers(t *testing.T) {
	t.Parallel()
	bg := gray(30)
	b := synth(t, bg, fourGlyphs, 4,
		[]span{{gray(220), "BC"}},
		[]span{{Color{R: 30, G: 200, B: 30}, "A"}},
	)
	res := NewResolution()
	s := NewSolver(bg, fourGlyphs)
	all := Catalog(b, bg)
	res.Record(s.GlyphMap(gray(220)), all, gray(220))
	res.Record(s.GlyphMap(Color{R: 30, G: 200, B: 30}), all, Color{R: 30, G: 200, B: 30})

	assert.Zero(t, Mismatches(b, bg, fourGlyphs, res))
	recon := Reconstruct(b, bg, fourGlyphs, res)
	for y := range b.H {
		for x := range b.W {
			c := b.At(x, y)
			assert.Equal(t, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}, recon.RGBAAt(x, y))
		}
	}

	colors, layers := Layers(b, bg, fourGlyphs, res)
	require.Len(t, layers, 2)
	assert.Equal(t, []Color{{R: 30, G: 200, B: 30}, gray(220)}, colors)
	assert.Equal(t, color.NRGBA{R: 30, G: 200, B: 30, A: 160}, layers[0].NRGBAAt(0, 3))
	assert.Equal(t, color.NRGBA{R: 220, G: 220, B: 220, A: 160}, layers[1].NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 220, G: 220, B: 220, A: 0}, layers[1].NRGBAAt(0, 1))
	assert.Equal(t, color.NRGBA{}, layers[1].NRGBAAt(3, 0))

	// an unexplained cell breaks the reconstruction
	b.SetPair(3, 1, PixelPair{Top: gray(90), Bottom: gray(90)})
	assert.Equal(t, 1, Mismatches(b, bg, fourGlyphs, res))
}
