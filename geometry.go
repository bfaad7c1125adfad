package minimaptext

import (
	"fmt"
	"math"
)

// Plane is a 2D projection of the color offset space.
type Plane int

const (
	PlaneRG Plane = iota
	PlaneGB
	PlaneBR
)

func (p Plane) String() string {
	switch p {
	case PlaneRG:
		return "R-G"
	case PlaneGB:
		return "G-B"
	default:
		return "B-R"
	}
}

// channels returns the two channel indices spanning the plane.
func (p Plane) channels() (int, int) {
	switch p {
	case PlaneRG:
		return 0, 1
	case PlaneGB:
		return 1, 2
	default:
		return 2, 0
	}
}

type rangeKind uint8

const (
	rangeArc rangeKind = iota
	rangeFull
	rangeEmpty
)

// AngleRange is an interval of directions [Lo, Hi] in radians. When Lo > Hi
// the interval wraps past ±π. The zero value is the arc [0, 0].
type AngleRange struct {
	Lo, Hi float64
	kind   rangeKind
}

func FullRange() AngleRange  { return AngleRange{Lo: -math.Pi, Hi: math.Pi, kind: rangeFull} }
func EmptyRange() AngleRange { return AngleRange{kind: rangeEmpty} }

// Arc returns the range from lo to hi, wrapping when lo > hi.
func Arc(lo, hi float64) AngleRange { return AngleRange{Lo: lo, Hi: hi} }

func (r AngleRange) IsFull() bool  { return r.kind == rangeFull }
func (r AngleRange) IsEmpty() bool { return r.kind == rangeEmpty }
func (r AngleRange) Wraps() bool   { return r.kind == rangeArc && r.Hi < r.Lo }

func (r AngleRange) Contains(theta float64) bool {
	switch {
	case r.IsFull():
		return true
	case r.IsEmpty():
		return false
	case r.Wraps():
		return theta >= r.Lo || theta <= r.Hi
	}
	return theta >= r.Lo && theta <= r.Hi
}

func (r AngleRange) String() string {
	switch r.kind {
	case rangeFull:
		return "full"
	case rangeEmpty:
		return "empty"
	}
	return fmt.Sprintf("[%.4f, %.4f]", r.Lo, r.Hi)
}

// Merge intersects two ranges. A full range is the identity and an empty
// range absorbs.
func (r AngleRange) Merge(o AngleRange) AngleRange {
	switch {
	case r.IsEmpty() || o.IsEmpty():
		return EmptyRange()
	case r.IsFull():
		return o
	case o.IsFull():
		return r
	}
	rw, ow := r.Wraps(), o.Wraps()
	switch {
	case rw && ow:
		// both contain ±π
		return Arc(max(r.Lo, o.Lo), min(r.Hi, o.Hi))
	case rw:
		return mergeWrapped(r, o)
	case ow:
		return mergeWrapped(o, r)
	}
	if r.Hi >= o.Lo && o.Hi >= r.Lo {
		return Arc(max(r.Lo, o.Lo), min(r.Hi, o.Hi))
	}
	return EmptyRange()
}

// mergeWrapped intersects the wrapping range w with the plain range p. Every
// non-full range is narrower than π, so p meets at most one arc of w.
func mergeWrapped(w, p AngleRange) AngleRange {
	if p.Lo <= w.Hi {
		return Arc(p.Lo, min(w.Hi, p.Hi))
	}
	if p.Hi >= w.Lo {
		return Arc(max(w.Lo, p.Lo), p.Hi)
	}
	return EmptyRange()
}

func offsetSign(v float64) int {
	if v > 0.5 {
		return 1
	}
	if v < -0.5 {
		return -1
	}
	return 0
}

// offsetRange returns the directions from the origin that reach some point
// rounding to the offset (a, b). The bounding rays pass through opposite
// corners of the rounding cell, chosen by the signs of a and b.
func offsetRange(a, b float64) AngleRange {
	sa, sb := offsetSign(a), offsetSign(b)
	if sa == 0 && sb == 0 {
		return FullRange()
	}
	var x0, x1, y0, y1 float64
	switch {
	case sb == 0 && sa > 0:
		x0, x1 = a-0.5, a-0.5
	case sb == 0:
		x0, x1 = a+0.5, a+0.5
	case sb > 0:
		x0, x1 = a+0.5, a-0.5
	default:
		x0, x1 = a-0.5, a+0.5
	}
	switch {
	case sa == 0 && sb > 0:
		y0, y1 = b-0.5, b-0.5
	case sa == 0:
		y0, y1 = b+0.5, b+0.5
	case sa > 0:
		y0, y1 = b-0.5, b+0.5
	default:
		y0, y1 = b+0.5, b-0.5
	}
	return Arc(math.Atan2(y0, x0), math.Atan2(y1, x1))
}

// Ranges holds one AngleRange per Plane.
type Ranges [3]AngleRange

func (r Ranges) Merge(o Ranges) Ranges {
	var out Ranges
	for i := range r {
		out[i] = r[i].Merge(o[i])
	}
	return out
}

// Possible reports whether no plane is empty.
func (r Ranges) Possible() bool {
	for _, a := range r {
		if a.IsEmpty() {
			return false
		}
	}
	return true
}

// Oracle answers whether two pixel pairs could share a foreground color,
// judged only by the direction of their offsets from the background.
type Oracle struct {
	bg    Color
	cache map[PixelPair]Ranges
}

func NewOracle(bg Color) *Oracle {
	return &Oracle{bg: bg, cache: make(map[PixelPair]Ranges)}
}

func (o *Oracle) Background() Color { return o.bg }

// ColorRanges projects c - background onto every plane.
func (o *Oracle) ColorRanges(c Color) Ranges {
	var v [3]float64
	for i := range v {
		v[i] = float64(int(c.Channel(i)) - int(o.bg.Channel(i)))
	}
	var r Ranges
	for p := PlaneRG; p <= PlaneBR; p++ {
		i, j := p.channels()
		r[p] = offsetRange(v[i], v[j])
	}
	return r
}

// PairRanges merges the ranges of both colors of p.
func (o *Oracle) PairRanges(p PixelPair) Ranges {
	if r, ok := o.cache[p]; ok {
		return r
	}
	r := o.ColorRanges(p.Top).Merge(o.ColorRanges(p.Bottom))
	o.cache[p] = r
	return r
}

// Compatible is a necessary condition for p and q sharing a foreground
// color. It is symmetric.
func (o *Oracle) Compatible(p, q PixelPair) bool {
	return o.PairRanges(p).Merge(o.PairRanges(q)).Possible()
}

// Clique reports whether every pair is possible on its own and every two
// members are compatible.
func (o *Oracle) Clique(pairs []PixelPair) bool {
	for i := range pairs {
		if !o.PairRanges(pairs[i]).Possible() {
			return false
		}
		for j := i + 1; j < len(pairs); j++ {
			if !o.Compatible(pairs[i], pairs[j]) {
				return false
			}
		}
	}
	return true
}
