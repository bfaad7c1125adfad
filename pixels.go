package minimaptext

import (
	"cmp"
	"errors"
	"image"
	"image/color"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyImage = errors.New("minimaptext: empty image")
	ErrOddHeight  = errors.New("minimaptext: image height is not a multiple of 2")
)

// Color is an opaque 8-bit RGB color.
type Color struct {
	R, G, B uint8
}

// RGBA implements image/color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * 0x101
	g = uint32(c.G) * 0x101
	b = uint32(c.B) * 0x101
	return r, g, b, 0xffff
}

func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}

func (c Color) String() string { return c.Hex() }

// Channel returns channel i (0=R, 1=G, 2=B).
func (c Color) Channel(i int) uint8 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

func (c Color) packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func colorFromPacked(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// Compare orders colors channel by channel, R first.
func (c Color) Compare(o Color) int {
	return cmp.Compare(c.packed(), o.packed())
}

// PixelPair is the top and bottom pixel of one character cell.
type PixelPair struct {
	Top, Bottom Color
}

// Blank is the whitespace pair for background bg.
func Blank(bg Color) PixelPair {
	return PixelPair{Top: bg, Bottom: bg}
}

// Channel returns the (top, bottom) values of channel i.
func (p PixelPair) Channel(i int) [2]uint8 {
	return [2]uint8{p.Top.Channel(i), p.Bottom.Channel(i)}
}

func (p PixelPair) String() string {
	return p.Top.Hex() + "/" + p.Bottom.Hex()
}

// Buffer is an interleaved 8-bit RGB pixel array. Rows 2k and 2k+1 hold the
// cells of source line k.
type Buffer struct {
	W, H int
	Pix  []uint8 // len = W*H*3
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

// NewBuffer allocates a buffer for lines rows of w cells.
func NewBuffer(w, lines int) *Buffer {
	return &Buffer{W: w, H: lines * 2, Pix: make([]uint8, w*lines*2*3)}
}

// BufferFromImage copies the straight (unpremultiplied) RGB of img into a
// Buffer, dropping alpha.
func BufferFromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}
	if h%2 != 0 {
		return nil, ErrOddHeight
	}
	buf := &Buffer{W: w, H: h, Pix: make([]uint8, w*h*3)}
	for y := range h {
		for x := range w {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			off := pixOffset(w, x, y)
			buf.Pix[off], buf.Pix[off+1], buf.Pix[off+2] = c.R, c.G, c.B
		}
	}
	return buf, nil
}

// Lines is the number of source lines in the buffer.
func (b *Buffer) Lines() int { return b.H / 2 }

func (b *Buffer) At(x, y int) Color {
	off := pixOffset(b.W, x, y)
	return Color{R: b.Pix[off], G: b.Pix[off+1], B: b.Pix[off+2]}
}

func (b *Buffer) Set(x, y int, c Color) {
	off := pixOffset(b.W, x, y)
	b.Pix[off], b.Pix[off+1], b.Pix[off+2] = c.R, c.G, c.B
}

// Pair returns the cell at column x of source line.
func (b *Buffer) Pair(x, line int) PixelPair {
	return PixelPair{Top: b.At(x, 2*line), Bottom: b.At(x, 2*line+1)}
}

// SetPair writes the cell at column x of source line.
func (b *Buffer) SetPair(x, line int, p PixelPair) {
	b.Set(x, 2*line, p.Top)
	b.Set(x, 2*line+1, p.Bottom)
}

// EstimateBackground returns the most frequent sub-pixel color. Which of
// several equally frequent colors wins is left to stat.Mode.
func EstimateBackground(b *Buffer) Color {
	n := b.W * b.H
	if n == 0 {
		return Color{}
	}
	values := make([]float64, n)
	for i := range n {
		off := i * 3
		values[i] = float64(Color{R: b.Pix[off], G: b.Pix[off+1], B: b.Pix[off+2]}.packed())
	}
	mode, _ := stat.Mode(values, nil)
	return colorFromPacked(uint32(mode))
}

// Catalog lists the distinct non-blank pairs of b. Pairs are ordered
// descending by their brighter then darker color, with mirrored pairs
// ordered by top then bottom, so clustering is reproducible.
func Catalog(b *Buffer, bg Color) []PixelPair {
	blank := Blank(bg)
	seen := make(map[PixelPair]struct{})
	var pairs []PixelPair
	for line := range b.Lines() {
		for x := range b.W {
			p := b.Pair(x, line)
			if p == blank {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			pairs = append(pairs, p)
		}
	}
	slices.SortFunc(pairs, comparePairsDesc)
	return pairs
}

func comparePairsDesc(a, b PixelPair) int {
	ahi, alo := a.Top, a.Bottom
	if ahi.Compare(alo) < 0 {
		ahi, alo = alo, ahi
	}
	bhi, blo := b.Top, b.Bottom
	if bhi.Compare(blo) < 0 {
		bhi, blo = blo, bhi
	}
	if c := bhi.Compare(ahi); c != 0 {
		return c
	}
	if c := blo.Compare(alo); c != 0 {
		return c
	}
	if c := b.Top.Compare(a.Top); c != 0 {
		return c
	}
	return b.Bottom.Compare(a.Bottom)
}
