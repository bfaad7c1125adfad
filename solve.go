package minimaptext

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/combin"
)

// ErrSignInconsistent is matched by *SignError.
var ErrSignInconsistent = errors.New("minimaptext: channel values straddle the background")

// SignError reports observed values of one channel lying on both sides of
// the background value, which no single foreground color can produce.
type SignError struct {
	Channel    int
	Background uint8
	Min, Max   uint8
}

func (e *SignError) Error() string {
	return fmt.Sprintf("channel %c: observed range [%d, %d] straddles background %d",
		"RGB"[e.Channel], e.Min, e.Max, e.Background)
}

func (e *SignError) Is(target error) bool { return target == ErrSignInconsistent }

// Solver finds foreground intensities explaining observed pixel pairs.
type Solver struct {
	bg   Color
	tmpl Template
}

func NewSolver(bg Color, tmpl Template) *Solver {
	return &Solver{bg: bg, tmpl: tmpl}
}

// ChannelCandidates returns every foreground value of channel ch for which
// each observed (top, bottom) value is the rendering of some glyph. When all
// values equal the background the channel is undetermined and the
// background value alone is returned.
func (s *Solver) ChannelCandidates(ch int, observed [][2]uint8) ([]uint8, error) {
	if len(observed) == 0 {
		return nil, nil
	}
	bg := s.bg.Channel(ch)
	lo, hi := observed[0][0], observed[0][0]
	want := make(map[[2]uint8]struct{}, len(observed))
	for _, v := range observed {
		lo = min(lo, v[0], v[1])
		hi = max(hi, v[0], v[1])
		want[v] = struct{}{}
	}
	if hi > bg && lo < bg {
		return nil, &SignError{Channel: ch, Background: bg, Min: lo, Max: hi}
	}

	first, last := int(lo), 255
	if hi <= bg {
		if lo == bg {
			return []uint8{bg}, nil
		}
		// compositing is monotonic: darker output needs a darker foreground
		first, last = 0, int(hi)
	}

	var out []uint8
	rendered := make(map[[2]uint8]struct{}, len(s.tmpl))
	for t := first; t <= last; t++ {
		clear(rendered)
		fg := uint8(t)
		for _, g := range s.tmpl {
			rendered[[2]uint8{composite(bg, fg, g.Top), composite(bg, fg, g.Bottom)}] = struct{}{}
		}
		ok := true
		for v := range want {
			if _, hit := rendered[v]; !hit {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, fg)
		}
	}
	return out, nil
}

// Candidates runs ChannelCandidates on R, G and B of pairs.
func (s *Solver) Candidates(pairs []PixelPair) ([3][]uint8, error) {
	var out [3][]uint8
	observed := make([][2]uint8, len(pairs))
	for ch := range 3 {
		for i, p := range pairs {
			observed[i] = p.Channel(ch)
		}
		c, err := s.ChannelCandidates(ch, observed)
		if err != nil {
			return out, err
		}
		out[ch] = c
	}
	return out, nil
}

// GlyphMap renders every glyph in fg. Colliding glyphs resolve to the later
// character.
func (s *Solver) GlyphMap(fg Color) GlyphMap {
	m := make(GlyphMap, len(s.tmpl))
	for _, g := range s.tmpl {
		m[g.Render(s.bg, fg)] = g.Char
	}
	return m
}

// GlyphMap maps rendered pixel pairs to characters for one foreground.
type GlyphMap map[PixelPair]byte

// Covers reports whether every pair is rendered by some glyph.
func (m GlyphMap) Covers(pairs []PixelPair) bool {
	for _, p := range pairs {
		if _, ok := m[p]; !ok {
			return false
		}
	}
	return true
}

// Score counts the pairs rendered by some glyph.
func (m GlyphMap) Score(pairs []PixelPair) int {
	n := 0
	for _, p := range pairs {
		if _, ok := m[p]; ok {
			n++
		}
	}
	return n
}

// eachColor walks the R x G x B product in row-major order until fn returns
// false.
func eachColor(cands [3][]uint8, fn func(Color) bool) {
	lens := []int{len(cands[0]), len(cands[1]), len(cands[2])}
	for _, n := range lens {
		if n == 0 {
			return
		}
	}
	gen := combin.NewCartesianGenerator(lens)
	idx := make([]int, len(lens))
	for gen.Next() {
		gen.Product(idx)
		c := Color{R: cands[0][idx[0]], G: cands[1][idx[1]], B: cands[2][idx[2]]}
		if !fn(c) {
			return
		}
	}
}
