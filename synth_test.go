package minimaptext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// span is a run of text in one foreground color.
type span struct {
	fg   Color
	text string
}

// synth renders lines of spans the way the editor draws its minimap.
func synth(t testing.TB, bg Color, tmpl Template, width int, lines ...[]span) *Buffer {
	t.Helper()
	b := NewBuffer(width, len(lines))
	for line, spans := range lines {
		x := 0
		for _, s := range spans {
			for i := range len(s.text) {
				require.Less(t, x, width, "line %d overflows", line)
				cell := Blank(bg)
				if s.text[i] != ' ' {
					g, ok := tmpl.Glyph(s.text[i])
					require.True(t, ok, "no glyph for %q", s.text[i])
					cell = g.Render(bg, s.fg)
				}
				b.SetPair(x, line, cell)
				x++
			}
		}
		for ; x < width; x++ {
			b.SetPair(x, line, Blank(bg))
		}
	}
	return b
}

var (
	darkBg  = Color{R: 30, G: 30, B: 30}
	keyword = Color{R: 86, G: 156, B: 214}
	strLit  = Color{R: 206, G: 145, B: 120}
	comment = Color{R: 106, G: 153, B: 85}
	plain   = Color{R: 212, G: 212, B: 212}
)

func sampleLines() [][]span {
	return [][]span{
		{{keyword, "package"}, {plain, " main"}},
		{},
		{{keyword, "import"}, {strLit, " \"fmt\""}},
		{},
		{{comment, "# greet prints a message"}},
		{{keyword, "func"}, {plain, " greet() {"}},
		{{plain, "    fmt.Println("}, {strLit, "\"hello, world\""}, {plain, ")"}},
		{{plain, "}"}},
	}
}
