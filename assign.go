package minimaptext

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Resolution accumulates the answer for every non-blank pair. Entries are
// written once and never replaced.
type Resolution struct {
	// Answer maps a resolved pair to its character.
	Answer map[PixelPair]byte
	// Refer maps a pair to the foreground color credited with it. Pairs
	// nothing could explain are credited to the background and have no
	// Answer entry.
	Refer map[PixelPair]Color
}

func NewResolution() *Resolution {
	return &Resolution{
		Answer: make(map[PixelPair]byte),
		Refer:  make(map[PixelPair]Color),
	}
}

func (r *Resolution) Resolved(p PixelPair) bool {
	_, ok := r.Answer[p]
	return ok
}

// Unresolved reports whether p was given up on.
func (r *Resolution) Unresolved(p PixelPair) bool {
	_, refer := r.Refer[p]
	return refer && !r.Resolved(p)
}

// Record credits fg with every pair of pairs it renders that is not
// resolved yet, and returns how many were new.
func (r *Resolution) Record(m GlyphMap, pairs []PixelPair, fg Color) int {
	n := 0
	for _, p := range pairs {
		if r.Resolved(p) {
			continue
		}
		if c, ok := m[p]; ok {
			r.Answer[p] = c
			r.Refer[p] = fg
			n++
		}
	}
	return n
}

func (r *Resolution) giveUp(pairs []PixelPair, bg Color) {
	for _, p := range pairs {
		if _, ok := r.Refer[p]; !ok {
			r.Refer[p] = bg
		}
	}
}

func (r *Resolution) pending(cl Cluster) []PixelPair {
	var out []PixelPair
	for _, p := range cl {
		if !r.Resolved(p) && !r.Unresolved(p) {
			out = append(out, p)
		}
	}
	return out
}

// Assign resolves clusters in order. A cluster whose members are pairwise
// compatible takes the first color of its candidate product that renders
// all of them; anything else goes through the exhaustive search. A
// *SignError from the exact pass or the good-pair step is returned.
func Assign(clusters []Cluster, o *Oracle, s *Solver, res *Resolution, log logrus.FieldLogger) error {
	e := &engine{oracle: o, solver: s, res: res, log: log}
	for i, cl := range clusters {
		clog := log.WithFields(logrus.Fields{"cluster": i, "pairs": len(cl)})
		if err := e.resolve(cl, clog); err != nil {
			return fmt.Errorf("cluster %d: %w", i, err)
		}
	}
	return nil
}

type engine struct {
	oracle *Oracle
	solver *Solver
	res    *Resolution
	log    logrus.FieldLogger
}

func (e *engine) resolve(cl Cluster, log logrus.FieldLogger) error {
	if !e.oracle.Clique(cl) {
		log.Info("cluster is not pairwise compatible")
		return e.exhaust(cl, log)
	}
	log.Info("cluster is pairwise compatible")
	cands, err := e.solver.Candidates(cl)
	if err != nil {
		return err
	}
	logCandidates(log, cands)
	found := false
	eachColor(cands, func(c Color) bool {
		m := e.solver.GlyphMap(c)
		if !m.Covers(cl) {
			return true
		}
		log.Infof("Chosen: %s", c.Hex())
		e.res.Record(m, cl, c)
		found = true
		return false
	})
	if found {
		return nil
	}
	log.Info("no single color renders the cluster")
	return e.exhaust(cl, log)
}

func logCandidates(log logrus.FieldLogger, cands [3][]uint8) {
	for ch, c := range cands {
		log.Debugf("%c %x", "RGB"[ch], c)
	}
}

// search holds the caches of one exhaustive pass. They are dropped with the
// cluster.
type search struct {
	*engine
	log       logrus.FieldLogger
	pairCands map[PixelPair][]Color
	failed    map[Color]struct{}
}

func (e *engine) newSearch(log logrus.FieldLogger) *search {
	return &search{
		engine:    e,
		log:       log,
		pairCands: make(map[PixelPair][]Color),
		failed:    make(map[Color]struct{}),
	}
}

// exhaust peels colors off the cluster until every pair is resolved or
// nothing explains the rest.
func (e *engine) exhaust(cl Cluster, log logrus.FieldLogger) error {
	s := e.newSearch(log)
	for {
		left := e.res.pending(cl)
		if len(left) == 0 {
			return nil
		}
		if good := s.goodPairs(left); len(good) > 0 {
			c, ok, err := s.bestForGood(good, left)
			if err != nil {
				return err
			}
			if ok {
				log.Infof("Chosen: %s", c.Hex())
				e.res.Record(e.solver.GlyphMap(c), left, c)
				continue
			}
			log.Debug("no color renders every mutually compatible pair")
		}
		c, score, ok := s.greedy(left)
		if !ok || score == 0 {
			log.WithField("unresolved", len(left)).Warn("no color explains the remaining pairs")
			e.res.giveUp(left, e.oracle.Background())
			return nil
		}
		log.Infof("Chosen: %s %.2f%%", c.Hex(), float64(score)*100/float64(len(left)))
		e.res.Record(e.solver.GlyphMap(c), left, c)
	}
}

// goodPairs returns the pairs compatible with every pair in left, itself
// included.
func (s *search) goodPairs(left []PixelPair) []PixelPair {
	var good []PixelPair
	for _, p := range left {
		ok := true
		for _, q := range left {
			if !s.oracle.Compatible(p, q) {
				ok = false
				break
			}
		}
		if ok {
			good = append(good, p)
		}
	}
	return good
}

// better orders (score, color) descending: higher score first, then the
// greater color.
func better(score int, c Color, bestScore int, best Color) bool {
	return score > bestScore || (score == bestScore && c.Compare(best) > 0)
}

func (s *search) bestForGood(good, left []PixelPair) (Color, bool, error) {
	cands, err := s.solver.Candidates(good)
	if err != nil {
		return Color{}, false, err
	}
	logCandidates(s.log, cands)
	var best Color
	bestScore, found := -1, false
	eachColor(cands, func(c Color) bool {
		m := s.solver.GlyphMap(c)
		if !m.Covers(good) {
			return true
		}
		if score := m.Score(left); better(score, c, bestScore, best) {
			best, bestScore, found = c, score, true
		}
		return true
	})
	return best, found, nil
}

// candidatesFor lists the colors able to render p alone. A pair whose own
// channels straddle the background has none.
func (s *search) candidatesFor(p PixelPair) []Color {
	if c, ok := s.pairCands[p]; ok {
		return c
	}
	var colors []Color
	cands, err := s.solver.Candidates([]PixelPair{p})
	switch {
	case errors.Is(err, ErrSignInconsistent):
		s.log.WithField("pair", p).Debug(err)
	case err == nil:
		eachColor(cands, func(c Color) bool {
			colors = append(colors, c)
			return true
		})
	}
	s.pairCands[p] = colors
	return colors
}

// greedy scores the union of every remaining pair's own candidates.
func (s *search) greedy(left []PixelPair) (Color, int, bool) {
	seen := make(map[Color]struct{})
	var best Color
	bestScore, found := -1, false
	for _, p := range left {
		for _, c := range s.candidatesFor(p) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			if _, ok := s.failed[c]; ok {
				continue
			}
			score := s.solver.GlyphMap(c).Score(left)
			if score == 0 {
				s.failed[c] = struct{}{}
				continue
			}
			if better(score, c, bestScore, best) {
				best, bestScore, found = c, score, true
			}
		}
	}
	if !found {
		return Color{}, 0, false
	}
	return best, bestScore, true
}
